package binder

import (
	"github.com/walteh/razortag/pkg/descriptor"
)

// PreferSpecificBinds narrows the bind descriptors of b to the most specific ones:
//
//   - element binds that apply to any input type are dropped when a descriptor constrained
//     to the tag's type attribute matched the same bind attribute, so
//     <input type="checkbox" @bind="x"> binds through the checkbox descriptor only;
//   - the @bind-... fallback is dropped when every bind attribute it would claim is claimed
//     by an element or component bind.
//
// b is not modified.
func PreferSpecificBinds(b *Binding) *Binding {
	if b == nil {
		return nil
	}

	specific := map[string]bool{}
	for _, m := range b.Matches {
		if meta := m.Descriptor.BindMetadata(); meta != nil && meta.IsTypeSpecific() {
			specific[bindAttributeName(m.Descriptor)] = true
		}
	}

	dropFallback := fallbackShadowed(b)
	if len(specific) == 0 && !dropFallback {
		return b
	}

	out := *b
	out.Matches = nil
	for _, m := range b.Matches {
		meta := m.Descriptor.BindMetadata()
		switch {
		case meta == nil:
		case meta.Target == descriptor.BindTargetElement && !meta.IsTypeSpecific() && specific[bindAttributeName(m.Descriptor)]:
			continue
		case meta.IsFallback() && dropFallback:
			continue
		}
		out.Matches = append(out.Matches, m)
	}
	return &out
}

// fallbackShadowed reports whether b matched the fallback and every attribute the fallback
// would claim is also claimed by another bind descriptor.
func fallbackShadowed(b *Binding) bool {
	var fallbacks, others []*descriptor.TagHelperDescriptor
	for _, m := range b.Matches {
		meta := m.Descriptor.BindMetadata()
		if meta == nil {
			continue
		}
		if meta.IsFallback() {
			fallbacks = append(fallbacks, m.Descriptor)
		} else {
			others = append(others, m.Descriptor)
		}
	}
	if len(fallbacks) == 0 || len(others) == 0 {
		return false
	}

	for _, a := range b.Attributes {
		if !claimedByAny(fallbacks, a.Name) {
			continue
		}
		if !claimedByAny(others, a.Name) {
			return false
		}
	}
	return true
}

func claimedByAny(ds []*descriptor.TagHelperDescriptor, name string) bool {
	for _, d := range ds {
		if _, ok := MatchAttribute(d, name); ok {
			return true
		}
	}
	return false
}

func isFallbackBind(d *descriptor.TagHelperDescriptor) bool {
	meta := d.BindMetadata()
	return meta != nil && meta.IsFallback()
}

func bindAttributeName(d *descriptor.TagHelperDescriptor) string {
	if len(d.BoundAttributes) == 0 {
		return ""
	}
	return d.BoundAttributes[0].Name
}
