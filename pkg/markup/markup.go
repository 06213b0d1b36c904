// Package markup is the parsed-markup view the binder matches against.
//
// It is not a Razor parser. Parse runs the golang.org/x/net/html tokenizer over a
// document and reports each start tag with its parent element and attributes, keeping
// names in their original case (the tokenizer lowercases them, components are case
// sensitive).
package markup

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DirectivePrefix marks a directive attribute.
const DirectivePrefix = "@"

type Attribute struct {
	Name string
	// Value is the unescaped literal value, empty when HasValue is false.
	Value    string
	HasValue bool
}

// IsDirective reports whether the attribute is a directive attribute (leading '@').
func (a Attribute) IsDirective() bool {
	return strings.HasPrefix(a.Name, DirectivePrefix)
}

type Tag struct {
	Name       string
	ParentName string
	Attributes []Attribute
	// SelfClosing is true for <tag/>.
	SelfClosing bool
	// Offset is the byte offset of the tag's '<' in the document.
	Offset int
}

// Attribute returns the first attribute with the given name, compared case-insensitively.
func (t Tag) Attribute(name string) (Attribute, bool) {
	for _, a := range t.Attributes {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Attribute{}, false
}

type Document struct {
	// Prefix is the argument of an @tagHelperPrefix directive, if the document has one.
	Prefix string
	Tags   []Tag
}

var prefixDirective = regexp.MustCompile(`(?m)^\s*@tagHelperPrefix\s+"([^"]*)"`)

// Parse tokenizes content and returns its start tags in document order.
func Parse(content []byte) (*Document, error) {
	doc := &Document{}
	if m := prefixDirective.FindSubmatch(content); m != nil {
		doc.Prefix = string(m[1])
	}

	z := html.NewTokenizer(bytes.NewReader(content))
	var open []string
	offset := 0

	for {
		tt := z.Next()
		// TagName and TagAttr lowercase the tokenizer's buffer in place.
		raw := bytes.Clone(z.Raw())
		start := offset
		offset += len(raw)

		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return doc, nil
			}
			return nil, errors.Errorf("tokenizing markup at offset %d: %w", start, z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			tag := readTag(z, raw)
			tag.Offset = start
			tag.SelfClosing = tt == html.SelfClosingTagToken
			if len(open) > 0 {
				tag.ParentName = open[len(open)-1]
			}
			doc.Tags = append(doc.Tags, tag)

			if !tag.SelfClosing && !isVoid(tag.Name) {
				open = append(open, tag.Name)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(open) - 1; i >= 0; i-- {
				if strings.EqualFold(open[i], string(name)) {
					open = open[:i]
					break
				}
			}
		}
	}
}

// readTag reads the current start tag. raw must be z.Raw() for the same token.
func readTag(z *html.Tokenizer, raw []byte) Tag {
	lower, hasAttr := z.TagName()
	name := string(lower)
	rawAttrs := scanRawAttributes(raw)
	if len(raw) > len(lower) && strings.EqualFold(string(raw[1:1+len(lower)]), name) {
		name = string(raw[1 : 1+len(lower)])
	}

	tag := Tag{Name: name}
	for i := 0; hasAttr; i++ {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		a := Attribute{Name: string(key), Value: string(val), HasValue: len(val) > 0}
		if i < len(rawAttrs) && strings.EqualFold(rawAttrs[i].Name, a.Name) {
			a.Name = rawAttrs[i].Name
			a.HasValue = rawAttrs[i].HasValue
		}
		if !a.HasValue {
			a.Value = ""
		}
		tag.Attributes = append(tag.Attributes, a)
	}
	return tag
}

// scanRawAttributes lists the attribute names of a raw start tag in source case, and
// whether each has a value.
func scanRawAttributes(raw []byte) []Attribute {
	s := string(raw)
	i := 1
	for i < len(s) && !isSpace(s[i]) && s[i] != '>' && s[i] != '/' {
		i++
	}

	var out []Attribute
	for i < len(s) {
		for i < len(s) && (isSpace(s[i]) || s[i] == '/') {
			i++
		}
		if i >= len(s) || s[i] == '>' {
			break
		}

		begin := i
		for i < len(s) && !isSpace(s[i]) && s[i] != '=' && s[i] != '>' && (s[i] != '/' || i == begin) {
			i++
		}
		a := Attribute{Name: s[begin:i]}

		j := i
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '=' {
			a.HasValue = true
			i = j + 1
			for i < len(s) && isSpace(s[i]) {
				i++
			}
			i = skipValue(s, i)
		}
		out = append(out, a)
	}
	return out
}

func skipValue(s string, i int) int {
	if i >= len(s) {
		return i
	}
	if q := s[i]; q == '"' || q == '\'' {
		if end := strings.IndexByte(s[i+1:], q); end >= 0 {
			return i + 1 + end + 1
		}
		return len(s)
	}
	for i < len(s) && !isSpace(s[i]) && s[i] != '>' {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

// isVoid reports whether name is an HTML void element, which never has an end tag.
func isVoid(name string) bool {
	return voidElements[atom.Lookup([]byte(strings.ToLower(name)))]
}
