package producers

import (
	"context"
	"strings"

	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/symbols"
)

const tagHelperSuffix = "TagHelper"

// DefaultProducer describes classes implementing ITagHelper. Matching rules come from
// [HtmlTargetElement], bound attributes from public properties.
type DefaultProducer struct{}

func newDefaultProducer() Producer {
	return &DefaultProducer{}
}

func (p *DefaultProducer) Kind() ProducerKind {
	return ProducerDefault
}

func (p *DefaultProducer) IsCandidateType(t *symbols.Type) bool {
	return t.IsPublic &&
		!t.IsAbstract &&
		!t.IsGeneric() &&
		t.Kind == symbols.TypeKindClass &&
		t.Implements(ITagHelperInterface)
}

func (p *DefaultProducer) AddTagHelpersForType(ctx context.Context, t *symbols.Type, results *Results) error {
	b := descriptor.NewBuilder(descriptor.KindITagHelper, t.FullName(), t.Assembly().Name)
	b.RuntimeKind = descriptor.RuntimeITagHelper
	b.SetTypeName(t.FullName(), t.Namespace, t.Name)

	targets := t.AttributesOf(HtmlTargetElementAttribute)
	if len(targets) == 0 {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = defaultTagName(t.Name)
		})
	}
	for _, a := range targets {
		rule, reason := decodeTargetElement(a)
		if reason != "" {
			results.skip(ctx, ProducerDefault, t, a, "%s", reason)
			continue
		}
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			*r = rule
		})
	}

	if hints := t.AttributesOf(OutputElementHintAttribute); len(hints) > 0 {
		a := hints[0]
		if len(a.ConstructorArguments) == 1 {
			hint, _ := a.ConstructorArguments[0].AsString()
			b.TagOutputHint = hint
		} else {
			results.skip(ctx, ProducerDefault, t, a, "expected one argument")
		}
	}

	for _, a := range t.AttributesOf(RestrictChildrenAttribute) {
		tags, ok := stringArguments(a)
		if !ok || len(tags) == 0 {
			results.skip(ctx, ProducerDefault, t, a, "expected child tag names")
			continue
		}
		for _, tag := range tags {
			b.AllowChildTag(tag)
		}
	}

	for _, prop := range t.AllProperties() {
		p.bindProperty(ctx, t, prop, b, results)
	}

	return results.Add(b)
}

func defaultTagName(typeName string) string {
	name := strings.TrimSuffix(typeName, tagHelperSuffix)
	if name == "" {
		name = typeName
	}
	return toHTMLCase(name)
}

// decodeTargetElement reads [HtmlTargetElement(tag, Attributes = ..., ParentTag = ...,
// TagStructure = ...)]. A non-empty reason means the application is skipped.
func decodeTargetElement(a *symbols.AttributeData) (rule descriptor.RuleBuilder, reason string) {
	rule.TagName = descriptor.CatchAllTagName
	switch len(a.ConstructorArguments) {
	case 0:
	case 1:
		tag, ok := a.ConstructorArguments[0].AsString()
		if !ok || strings.TrimSpace(tag) == "" {
			return rule, "tag name must be a non-empty string"
		}
		rule.TagName = tag
	default:
		return rule, "expected at most one constructor argument"
	}

	if parent, ok := a.NamedArguments["ParentTag"]; ok {
		s, ok := parent.AsString()
		if !ok {
			return rule, "ParentTag must be a string"
		}
		rule.ParentTag = s
	}

	if structure, ok := a.NamedArguments["TagStructure"]; ok {
		name, ok := structure.AsEnum()
		if !ok {
			return rule, "TagStructure must be an enum member"
		}
		ts, ok := descriptor.ParseTagStructure(name)
		if !ok {
			return rule, "unknown TagStructure " + name
		}
		rule.TagStructure = ts
	}

	var required []descriptor.RequiredAttributeBuilder
	if attrs, ok := a.NamedArguments["Attributes"]; ok {
		s, ok := attrs.AsString()
		if !ok {
			return rule, "Attributes must be a string"
		}
		parsed, err := parseRequiredAttributes(s)
		if err != nil {
			return rule, err.Error()
		}
		required = parsed
	}

	if rule.TagName == descriptor.CatchAllTagName && rule.ParentTag == "" && len(required) == 0 {
		return rule, "catch-all target needs required attributes or a parent tag"
	}

	for _, ra := range required {
		rule.RequireAttribute(func(dst *descriptor.RequiredAttributeBuilder) {
			*dst = ra
		})
	}
	return rule, ""
}

func (p *DefaultProducer) bindProperty(ctx context.Context, t *symbols.Type, prop *symbols.Property, b *descriptor.Builder, results *Results) {
	if prop.IsStatic || !prop.HasPublicGetter || prop.HasAttribute(HtmlAttributeNotBoundAttribute) {
		return
	}

	name := toHTMLCase(prop.Name)
	var prefix string
	var prefixSet bool
	if nameAttrs := prop.AttributesOf(HtmlAttributeNameAttribute); len(nameAttrs) > 0 {
		a := nameAttrs[0]
		switch len(a.ConstructorArguments) {
		case 0:
		case 1:
			s, ok := a.ConstructorArguments[0].AsString()
			if !ok {
				results.skip(ctx, ProducerDefault, t, a, "attribute name must be a string")
				return
			}
			name = s
		default:
			results.skip(ctx, ProducerDefault, t, a, "expected at most one constructor argument")
			return
		}
		prefix, prefixSet = a.NamedString("DictionaryAttributePrefix")
	}

	valueType, isDictionary := dictionaryValueType(prop.TypeName)
	if isDictionary && !prefixSet && name != "" {
		prefix = name + "-"
	}
	indexer := isDictionary && prefix != ""

	if !prop.HasPublicSetter {
		if !indexer {
			return
		}
		name = ""
	}
	if name == "" && !indexer {
		return
	}

	b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
		a.Name = name
		a.PropertyName = prop.Name
		a.TypeName = prop.TypeName
		a.IsEnum = prop.IsEnum
		if indexer {
			a.AsDictionary(prefix, valueType)
		}
	})
}

var dictionaryTypes = map[string]bool{
	"System.Collections.Generic.IDictionary": true,
	"System.Collections.Generic.Dictionary":  true,
}

// dictionaryValueType returns V for a string keyed dictionary type.
func dictionaryValueType(typeName string) (string, bool) {
	if !dictionaryTypes[symbols.GenericTypeDefinition(typeName)] {
		return "", false
	}
	args := symbols.GenericTypeArguments(typeName)
	if len(args) != 2 || (args[0] != stringTypeName && args[0] != "string") {
		return "", false
	}
	return args[1], true
}

func stringArguments(a *symbols.AttributeData) ([]string, bool) {
	out := make([]string, 0, len(a.ConstructorArguments))
	for _, arg := range a.ConstructorArguments {
		s, ok := arg.AsString()
		if !ok || s == "" {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
