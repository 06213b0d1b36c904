package producers

import (
	"strings"

	"github.com/walteh/razortag/pkg/descriptor"
	"gitlab.com/tozd/go/errors"
)

// parseRequiredAttributes parses the Attributes argument of [HtmlTargetElement]:
//
//	asp-for                 name must be present
//	asp-route-*             name prefix
//	[asp-for]               same as asp-for
//	[type=checkbox]         full value match, value may be quoted
//	[href^=http]            value prefix
//	[src$='.png']           value suffix
//
// Entries are comma separated. Commas inside quoted values do not split.
func parseRequiredAttributes(input string) ([]descriptor.RequiredAttributeBuilder, error) {
	var out []descriptor.RequiredAttributeBuilder
	for _, entry := range splitAttributeList(input) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		a, err := parseRequiredAttribute(entry)
		if err != nil {
			return nil, errors.Errorf("required attribute %q: %w", entry, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func splitAttributeList(input string) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ',':
			parts = append(parts, input[start:i])
			start = i + 1
		}
	}
	return append(parts, input[start:])
}

func parseRequiredAttribute(entry string) (descriptor.RequiredAttributeBuilder, error) {
	if !strings.HasPrefix(entry, "[") {
		a := descriptor.RequiredAttributeBuilder{Name: entry}
		if name, ok := strings.CutSuffix(entry, "*"); ok {
			if name == "" {
				return a, errors.New("prefix is empty")
			}
			a.Name = name
			a.NameComparison = descriptor.NamePrefixMatch
		}
		if strings.ContainsAny(a.Name, "[]=\"' ") {
			return a, errors.New("invalid character in attribute name")
		}
		return a, nil
	}

	if !strings.HasSuffix(entry, "]") {
		return descriptor.RequiredAttributeBuilder{}, errors.New("missing closing ']'")
	}
	body := strings.TrimSpace(entry[1 : len(entry)-1])

	eq := strings.IndexByte(body, '=')
	if eq < 0 {
		if body == "" {
			return descriptor.RequiredAttributeBuilder{}, errors.New("name is empty")
		}
		return descriptor.RequiredAttributeBuilder{Name: body}, nil
	}

	name := body[:eq]
	comparison := descriptor.ValueFullMatch
	switch {
	case strings.HasSuffix(name, "^"):
		comparison = descriptor.ValuePrefixMatch
		name = name[:len(name)-1]
	case strings.HasSuffix(name, "$"):
		comparison = descriptor.ValueSuffixMatch
		name = name[:len(name)-1]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return descriptor.RequiredAttributeBuilder{}, errors.New("name is empty")
	}

	value, err := unquote(strings.TrimSpace(body[eq+1:]))
	if err != nil {
		return descriptor.RequiredAttributeBuilder{}, err
	}

	return descriptor.RequiredAttributeBuilder{
		Name:            name,
		Value:           value,
		ValueComparison: comparison,
	}, nil
}

func unquote(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	q := v[0]
	if q != '\'' && q != '"' {
		if strings.ContainsAny(v, "'\"") {
			return "", errors.New("unbalanced quotes in value")
		}
		return v, nil
	}
	if len(v) < 2 || v[len(v)-1] != q {
		return "", errors.New("unterminated quoted value")
	}
	return v[1 : len(v)-1], nil
}
