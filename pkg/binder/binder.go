// Package binder matches parsed tags against the tag helper descriptors in scope.
//
// A Binder is built once per descriptor collection and is safe for concurrent use. Matching
// is a pure function of the collection and the tag: the same tag always yields the same
// Binding, descriptors in collection order.
package binder

import (
	"slices"
	"strings"

	"github.com/walteh/razortag/pkg/collection"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/markup"
)

type Binder struct {
	prefix      string
	descriptors *collection.Collection

	// byTagName holds collection indexes keyed by lowercased rule tag name.
	byTagName map[string][]int
	catchAll  []int
}

// NewBinder indexes descriptors for matching tags that carry prefix. An empty prefix
// matches every tag.
func NewBinder(prefix string, descriptors *collection.Collection) *Binder {
	b := &Binder{
		prefix:      prefix,
		descriptors: descriptors,
		byTagName:   map[string][]int{},
	}

	for i, d := range descriptors.All() {
		seenCatchAll := false
		var seen []string
		for _, rule := range d.TagMatchingRules {
			if rule.IsCatchAll() {
				if !seenCatchAll {
					b.catchAll = append(b.catchAll, i)
					seenCatchAll = true
				}
				continue
			}
			key := strings.ToLower(rule.TagName)
			if slices.Contains(seen, key) {
				continue
			}
			seen = append(seen, key)
			b.byTagName[key] = append(b.byTagName[key], i)
		}
	}
	return b
}

func (b *Binder) Prefix() string {
	return b.prefix
}

func (b *Binder) Descriptors() *collection.Collection {
	return b.descriptors
}

// GetBinding returns the descriptors whose rules match tag, or nil when none do or the
// tag does not carry the binder's prefix.
func (b *Binder) GetBinding(tag markup.Tag) *Binding {
	tagName, ok := b.stripPrefix(tag.Name)
	if !ok {
		return nil
	}
	parentTagName := tag.ParentName
	if stripped, ok := b.stripPrefix(parentTagName); ok {
		parentTagName = stripped
	}

	var matches []Match
	for _, i := range b.candidates(tagName) {
		d := b.descriptors.At(i)
		var rules []*descriptor.TagMatchingRuleDescriptor
		for _, rule := range d.TagMatchingRules {
			if SatisfiesRule(rule, tagName, parentTagName, tag.Attributes) {
				rules = append(rules, rule)
			}
		}
		if len(rules) > 0 {
			matches = append(matches, Match{Descriptor: d, Rules: rules})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	return &Binding{
		TagName:       tagName,
		ParentTagName: parentTagName,
		Attributes:    tag.Attributes,
		Prefix:        b.prefix,
		Matches:       matches,
	}
}

func (b *Binder) stripPrefix(name string) (string, bool) {
	if b.prefix == "" {
		return name, true
	}
	if len(name) <= len(b.prefix) || !strings.EqualFold(name[:len(b.prefix)], b.prefix) {
		return name, false
	}
	return name[len(b.prefix):], true
}

// candidates merges the tag name and catch-all indexes back into collection order.
func (b *Binder) candidates(tagName string) []int {
	named := b.byTagName[strings.ToLower(tagName)]
	out := make([]int, 0, len(named)+len(b.catchAll))
	i, j := 0, 0
	for i < len(named) || j < len(b.catchAll) {
		switch {
		case j == len(b.catchAll) || (i < len(named) && named[i] < b.catchAll[j]):
			out = append(out, named[i])
			i++
		case i == len(named) || b.catchAll[j] < named[i]:
			out = append(out, b.catchAll[j])
			j++
		default:
			out = append(out, named[i])
			i++
			j++
		}
	}
	return out
}
