package binder

import (
	"strings"

	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/markup"
)

const parameterSeparator = ":"

func equalName(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func hasNamePrefix(name, prefix string, caseSensitive bool) bool {
	if len(name) < len(prefix) {
		return false
	}
	return equalName(name[:len(prefix)], prefix, caseSensitive)
}

// SatisfiesRule reports whether rule matches a tag. tagName and parentTagName have the
// tag helper prefix already removed.
func SatisfiesRule(rule *descriptor.TagMatchingRuleDescriptor, tagName, parentTagName string, attributes []markup.Attribute) bool {
	return satisfiesTagName(rule, tagName) &&
		satisfiesParentTag(rule, parentTagName) &&
		satisfiesAttributes(rule, attributes)
}

func satisfiesTagName(rule *descriptor.TagMatchingRuleDescriptor, tagName string) bool {
	return rule.IsCatchAll() || equalName(rule.TagName, tagName, rule.CaseSensitive)
}

func satisfiesParentTag(rule *descriptor.TagMatchingRuleDescriptor, parentTagName string) bool {
	return rule.ParentTag == "" || equalName(rule.ParentTag, parentTagName, rule.CaseSensitive)
}

func satisfiesAttributes(rule *descriptor.TagMatchingRuleDescriptor, attributes []markup.Attribute) bool {
	for _, required := range rule.Attributes {
		satisfied := false
		for _, a := range attributes {
			if SatisfiesRequiredAttribute(required, a) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

// SatisfiesRequiredAttribute checks one attribute against one required attribute.
//
// A directive requirement only matches directive attributes, and when the requirement
// names no parameter the attribute's own `:param` suffix is ignored, so @bind:event
// counts towards a rule requiring @bind. Prefix matches need a strictly longer name.
func SatisfiesRequiredAttribute(required *descriptor.RequiredAttributeDescriptor, a markup.Attribute) bool {
	name := a.Name
	if required.IsDirectiveAttribute {
		if !a.IsDirective() {
			return false
		}
		if !strings.Contains(required.Name, parameterSeparator) {
			name, _, _ = strings.Cut(name, parameterSeparator)
		}
	}

	switch required.NameComparison {
	case descriptor.NamePrefixMatch:
		if len(name) <= len(required.Name) || !hasNamePrefix(name, required.Name, required.CaseSensitive) {
			return false
		}
	default:
		if !equalName(name, required.Name, required.CaseSensitive) {
			return false
		}
	}

	switch required.ValueComparison {
	case descriptor.ValueFullMatch:
		return a.Value == required.Value
	case descriptor.ValuePrefixMatch:
		return strings.HasPrefix(a.Value, required.Value)
	case descriptor.ValueSuffixMatch:
		return strings.HasSuffix(a.Value, required.Value)
	}
	return true
}

// AttributeMatch is what a markup attribute binds to on one descriptor.
type AttributeMatch struct {
	Attribute *descriptor.BoundAttributeDescriptor
	// Parameter is set when the markup attribute is a `name:param` form.
	Parameter *descriptor.BoundAttributeParameterDescriptor
	// IsIndexer is set when the name was matched through a dictionary prefix.
	IsIndexer bool
}

// MatchAttribute finds the first bound attribute of d that the markup attribute name
// binds to: an exact name, a dictionary indexer prefix, or for directive attributes
// either of those followed by a known `:param`.
func MatchAttribute(d *descriptor.TagHelperDescriptor, name string) (AttributeMatch, bool) {
	base, param, hasParam := strings.Cut(name, parameterSeparator)

	for _, bound := range d.BoundAttributes {
		if hasParam && bound.IsDirectiveAttribute {
			m, ok := matchBoundName(d, bound, base)
			if !ok {
				continue
			}
			if p := bound.Parameter(param); p != nil {
				m.Parameter = p
				return m, true
			}
			continue
		}
		if m, ok := matchBoundName(d, bound, name); ok {
			return m, true
		}
	}
	return AttributeMatch{}, false
}

func matchBoundName(d *descriptor.TagHelperDescriptor, bound *descriptor.BoundAttributeDescriptor, name string) (AttributeMatch, bool) {
	if bound.Name != "" && equalName(bound.Name, name, d.CaseSensitive) {
		return AttributeMatch{Attribute: bound}, true
	}
	if bound.IndexerNamePrefix != "" && hasNamePrefix(name, bound.IndexerNamePrefix, d.CaseSensitive) {
		return AttributeMatch{Attribute: bound, IsIndexer: true}, true
	}
	return AttributeMatch{}, false
}
