package binder

import (
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/markup"
)

// Match is one descriptor with the rules of it that matched.
type Match struct {
	Descriptor *descriptor.TagHelperDescriptor
	Rules      []*descriptor.TagMatchingRuleDescriptor
}

// RuleRef names a rule together with its descriptor.
type RuleRef struct {
	Descriptor *descriptor.TagHelperDescriptor
	Rule       *descriptor.TagMatchingRuleDescriptor
}

// StructureConflict records a matched rule whose tag structure lost to Winner.
type StructureConflict struct {
	Winner RuleRef
	Loser  RuleRef
}

// Binding is the result of matching one tag.
type Binding struct {
	TagName       string
	ParentTagName string
	Attributes    []markup.Attribute
	Prefix        string

	Matches []Match
}

// Descriptors lists the matched descriptors in collection order.
func (b *Binding) Descriptors() []*descriptor.TagHelperDescriptor {
	out := make([]*descriptor.TagHelperDescriptor, len(b.Matches))
	for i, m := range b.Matches {
		out[i] = m.Descriptor
	}
	return out
}

// Rules returns the matched rules of d, nil when d is not part of the binding.
func (b *Binding) Rules(d *descriptor.TagHelperDescriptor) []*descriptor.TagMatchingRuleDescriptor {
	for _, m := range b.Matches {
		if m.Descriptor == d {
			return m.Rules
		}
	}
	return nil
}

// IsAttributeMatch reports whether every matched descriptor only classifies attributes,
// leaving the tag itself as plain markup.
func (b *Binding) IsAttributeMatch() bool {
	for _, m := range b.Matches {
		if !m.Descriptor.ClassifyAttributesOnly {
			return false
		}
	}
	return true
}

type specificity struct {
	explicitTagName bool
	parentTag       bool
	attributes      int
}

func specificityOf(rule *descriptor.TagMatchingRuleDescriptor) specificity {
	return specificity{
		explicitTagName: !rule.IsCatchAll(),
		parentTag:       rule.ParentTag != "",
		attributes:      len(rule.Attributes),
	}
}

func (s specificity) greater(o specificity) bool {
	if s.explicitTagName != o.explicitTagName {
		return s.explicitTagName
	}
	if s.parentTag != o.parentTag {
		return s.parentTag
	}
	return s.attributes > o.attributes
}

// structured returns the matched rules with a tag structure and the most specific one.
// The first rule in match order wins a tie.
func (b *Binding) structured() (winner RuleRef, all []RuleRef) {
	var best specificity
	for _, m := range b.Matches {
		for _, rule := range m.Rules {
			if rule.TagStructure == descriptor.TagStructureUnspecified {
				continue
			}
			ref := RuleRef{Descriptor: m.Descriptor, Rule: rule}
			all = append(all, ref)
			if s := specificityOf(rule); winner.Rule == nil || s.greater(best) {
				winner, best = ref, s
			}
		}
	}
	return winner, all
}

// TagStructure resolves the tag structure the matched rules demand. A specified structure
// beats Unspecified; among specified ones the most specific rule wins: an explicit tag
// name over a catch-all, then a parent tag constraint, then more required attributes.
func (b *Binding) TagStructure() descriptor.TagStructure {
	winner, _ := b.structured()
	if winner.Rule == nil {
		return descriptor.TagStructureUnspecified
	}
	return winner.Rule.TagStructure
}

// StructureConflicts lists the matched rules whose specified structure differs from the
// one TagStructure picked.
func (b *Binding) StructureConflicts() []StructureConflict {
	winner, all := b.structured()
	var out []StructureConflict
	for _, ref := range all {
		if ref.Rule.TagStructure != winner.Rule.TagStructure {
			out = append(out, StructureConflict{Winner: winner, Loser: ref})
		}
	}
	return out
}

// AttributeClassification is the binding of one markup attribute. Descriptor is nil for
// plain HTML attributes.
type AttributeClassification struct {
	Attribute  markup.Attribute
	Descriptor *descriptor.TagHelperDescriptor
	Match      AttributeMatch
}

func (c AttributeClassification) IsHTML() bool {
	return c.Descriptor == nil
}

// ClassifyAttributes binds each attribute of the tag to the first matched descriptor that
// has a bound attribute for it. The @bind-... fallback only claims attributes no other
// descriptor does, wherever it sits in the collection.
func (b *Binding) ClassifyAttributes() []AttributeClassification {
	out := make([]AttributeClassification, len(b.Attributes))
	for i, a := range b.Attributes {
		out[i] = AttributeClassification{Attribute: a}
		for _, fallback := range []bool{false, true} {
			if out[i].Descriptor != nil {
				break
			}
			for _, m := range b.Matches {
				if isFallbackBind(m.Descriptor) != fallback {
					continue
				}
				if am, ok := MatchAttribute(m.Descriptor, a.Name); ok {
					out[i].Descriptor = m.Descriptor
					out[i].Match = am
					break
				}
			}
		}
	}
	return out
}
