package producers

import (
	"context"
	"strings"
	"sync"

	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/docs"
	"github.com/walteh/razortag/pkg/symbols"
	"go.uber.org/multierr"
)

const (
	bindAttributePrefix = "@bind-"
	changedSuffix       = "Changed"
	expressionSuffix    = "Expression"
)

// BindProducer produces the three families of bind tag helpers:
//
//	fallback   @bind-... on any tag, once for the assembly defining BindConverter
//	element    one per [BindElement] / [BindInputElement] application
//	component  one per Foo / FooChanged parameter pair on a component of the same type
type BindProducer struct {
	converter *symbols.Type
}

func newBindProducer(converter *symbols.Type) Producer {
	return &BindProducer{converter: converter}
}

func (p *BindProducer) Kind() ProducerKind {
	return ProducerBind
}

func (p *BindProducer) AddStaticTagHelpers(ctx context.Context, assembly *symbols.Assembly, results *Results) error {
	if !definedIn(p.converter, assembly) {
		return nil
	}
	d, err := fallbackBindTagHelper()
	if err != nil {
		return err
	}
	results.Descriptors = append(results.Descriptors, d)
	return nil
}

func (p *BindProducer) IsCandidateType(t *symbols.Type) bool {
	return t.HasAttribute(BindElementAttribute) ||
		t.HasAttribute(BindInputElementAttribute) ||
		t.Implements(IComponentInterface)
}

func (p *BindProducer) AddTagHelpersForType(ctx context.Context, t *symbols.Type, results *Results) error {
	var errs error
	for _, a := range t.Attributes {
		var (
			spec bindElement
			ok   bool
		)
		switch a.AttributeClass {
		case BindElementAttribute:
			spec, ok = decodeBindElement(a)
		case BindInputElementAttribute:
			spec, ok = decodeBindInputElement(a)
		default:
			continue
		}
		if !ok {
			results.skip(ctx, ProducerBind, t, a, "unexpected constructor arguments")
			continue
		}
		multierr.AppendInto(&errs, results.Add(elementBindBuilder(t, spec)))
	}

	for _, component := range results.OfKind(descriptor.KindComponent) {
		for _, b := range componentBindBuilders(component) {
			multierr.AppendInto(&errs, results.Add(b))
		}
	}
	return errs
}

var fallbackBindTagHelper = sync.OnceValues(func() (*descriptor.TagHelperDescriptor, error) {
	b := descriptor.NewBuilder(descriptor.KindBind, "Bind", ComponentsAssemblyName)
	b.SetTypeName(bindTypeName, "", "")
	b.CaseSensitive = true
	b.ClassifyAttributesOnly = true
	b.SetDocumentation(docs.New(docs.BindFallback))
	b.SetMetadata(&descriptor.BindMetadata{Target: descriptor.BindTargetFallback})

	b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
		r.TagName = descriptor.CatchAllTagName
		r.RequireAttribute(func(a *descriptor.RequiredAttributeBuilder) {
			a.Name = bindAttributePrefix
			a.NameComparison = descriptor.NamePrefixMatch
			a.IsDirectiveAttribute = true
		})
	})

	b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
		a.Name = bindAttributePrefix + "..."
		a.DisplayName = bindAttributePrefix + "..."
		a.PropertyName = "Bind"
		a.TypeName = "System.Collections.Generic.Dictionary<string, object>"
		a.IsDirectiveAttribute = true
		a.Documentation = docs.New(docs.BindFallback)
		a.AsDictionary(bindAttributePrefix, objectTypeName)

		a.BindParameter(func(p *descriptor.ParameterBuilder) {
			p.Name = "format"
			p.PropertyName = "Format"
			p.TypeName = stringTypeName
			p.Documentation = docs.New(docs.BindFallbackFormat)
		})
		a.BindParameter(func(p *descriptor.ParameterBuilder) {
			p.Name = "event"
			p.PropertyName = "Event"
			p.TypeName = stringTypeName
			p.Documentation = docs.New(docs.BindFallbackEvent, bindAttributePrefix+"...")
		})
		a.BindParameter(func(p *descriptor.ParameterBuilder) {
			p.Name = "culture"
			p.PropertyName = "Culture"
			p.TypeName = cultureInfoTypeName
			p.Documentation = docs.New(docs.BindElementCulture)
		})
		getSetAfterParameters(a)
	})

	return b.Build()
})

// getSetAfterParameters adds the :get, :set and :after parameters every bind attribute
// accepts.
func getSetAfterParameters(a *descriptor.BoundAttributeBuilder) {
	a.BindParameter(func(p *descriptor.ParameterBuilder) {
		p.Name = "get"
		p.PropertyName = "Get"
		p.TypeName = objectTypeName
		p.BindAttributeGetSet = true
		p.Documentation = docs.New(docs.BindGet)
	})
	a.BindParameter(func(p *descriptor.ParameterBuilder) {
		p.Name = "set"
		p.PropertyName = "Set"
		p.TypeName = delegateTypeName
		p.BindAttributeGetSet = true
		p.Documentation = docs.New(docs.BindSet)
	})
	a.BindParameter(func(p *descriptor.ParameterBuilder) {
		p.Name = "after"
		p.PropertyName = "After"
		p.TypeName = delegateTypeName
		p.Documentation = docs.New(docs.BindAfter)
	})
}

// bindElement is one decoded [BindElement] or [BindInputElement] application.
type bindElement struct {
	element            string
	typeAttribute      string
	suffix             string
	valueAttribute     string
	changeAttribute    string
	isInvariantCulture bool
	format             string
}

// decodeBindElement reads (element, suffix, valueAttribute, changeAttribute).
func decodeBindElement(a *symbols.AttributeData) (bindElement, bool) {
	args := a.ConstructorArguments
	if len(args) != 4 {
		return bindElement{}, false
	}
	var spec bindElement
	ok := decodeStrings(args, &spec.element, &spec.suffix, &spec.valueAttribute, &spec.changeAttribute)
	if !ok || spec.element == "" || spec.valueAttribute == "" || spec.changeAttribute == "" {
		return bindElement{}, false
	}
	return spec, true
}

// decodeBindInputElement reads (type, suffix, valueAttribute, changeAttribute,
// isInvariantCulture, format). The element is always input.
func decodeBindInputElement(a *symbols.AttributeData) (bindElement, bool) {
	args := a.ConstructorArguments
	if len(args) != 6 {
		return bindElement{}, false
	}
	spec := bindElement{element: "input"}
	if !decodeStrings(args[:4], &spec.typeAttribute, &spec.suffix, &spec.valueAttribute, &spec.changeAttribute) {
		return bindElement{}, false
	}
	invariant, ok := args[4].AsBool()
	if !ok {
		return bindElement{}, false
	}
	spec.isInvariantCulture = invariant
	if spec.format, ok = args[5].AsString(); !ok {
		return bindElement{}, false
	}
	if spec.valueAttribute == "" || spec.changeAttribute == "" {
		return bindElement{}, false
	}
	return spec, true
}

func decodeStrings(args []symbols.TypedConstant, into ...*string) bool {
	for i, dst := range into {
		s, ok := args[i].AsString()
		if !ok {
			return false
		}
		*dst = s
	}
	return true
}

func elementBindBuilder(t *symbols.Type, spec bindElement) *descriptor.Builder {
	name := "Bind"
	attributeName := "@bind"
	formatAttributeName := "format-" + spec.valueAttribute
	if spec.suffix != "" {
		name = "Bind_" + spec.suffix
		attributeName = "@bind-" + spec.suffix
		formatAttributeName = "format-" + spec.suffix
	}

	b := descriptor.NewBuilder(descriptor.KindBind, name, t.Assembly().Name)
	b.SetTypeName(t.FullName(), t.Namespace, t.Name)
	b.CaseSensitive = true
	b.SetDocumentation(docs.New(docs.BindElement, spec.valueAttribute, spec.changeAttribute))
	b.SetMetadata(&descriptor.BindMetadata{
		Target:             descriptor.BindTargetElement,
		ValueAttribute:     spec.valueAttribute,
		ChangeAttribute:    spec.changeAttribute,
		TypeAttribute:      spec.typeAttribute,
		IsInvariantCulture: spec.isInvariantCulture,
		Format:             spec.format,
	})

	requireType := func(r *descriptor.RuleBuilder) {
		if spec.typeAttribute == "" {
			return
		}
		r.RequireAttribute(func(a *descriptor.RequiredAttributeBuilder) {
			a.Name = "type"
			a.Value = spec.typeAttribute
			a.ValueComparison = descriptor.ValueFullMatch
		})
	}

	b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
		r.TagName = spec.element
		requireType(r)
		r.RequireDirectiveAttribute(attributeName)
	})
	b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
		r.TagName = spec.element
		requireType(r)
		r.RequireDirectiveAttribute(attributeName + ":get")
		r.RequireDirectiveAttribute(attributeName + ":set")
	})

	b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
		a.Name = attributeName
		a.PropertyName = name
		a.TypeName = objectTypeName
		a.IsDirectiveAttribute = true
		a.Documentation = docs.New(docs.BindElement, spec.valueAttribute, spec.changeAttribute)

		a.BindParameter(func(p *descriptor.ParameterBuilder) {
			p.Name = "format"
			p.PropertyName = "Format_" + spec.valueAttribute
			p.TypeName = stringTypeName
			p.Documentation = docs.New(docs.BindElementFormat, attributeName)
		})
		a.BindParameter(func(p *descriptor.ParameterBuilder) {
			p.Name = "event"
			p.PropertyName = "Event_" + spec.valueAttribute
			p.TypeName = stringTypeName
			p.Documentation = docs.New(docs.BindElementEvent, attributeName)
		})
		a.BindParameter(func(p *descriptor.ParameterBuilder) {
			p.Name = "culture"
			p.PropertyName = "Culture"
			p.TypeName = cultureInfoTypeName
			p.Documentation = docs.New(docs.BindElementCulture)
		})
		getSetAfterParameters(a)
	})

	// format-value predates the :format parameter and is still accepted.
	b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
		a.Name = formatAttributeName
		a.PropertyName = "Format_" + spec.valueAttribute
		a.TypeName = stringTypeName
		a.Documentation = docs.New(docs.BindElementFormat, attributeName)
	})

	return b
}

// componentBindBuilders infers bind tag helpers from a component's parameters. A
// parameter FooChanged shaped like an event callback or delegate pairs with Foo, and
// optionally FooExpression. Each change parameter yields at most one descriptor.
func componentBindBuilders(component *descriptor.TagHelperDescriptor) []*descriptor.Builder {
	var out []*descriptor.Builder
	for _, change := range component.BoundAttributes {
		if !strings.HasSuffix(change.Name, changedSuffix) || len(change.Name) == len(changedSuffix) {
			continue
		}
		if !change.Shape.IsEventCallback && !change.Shape.IsDelegate {
			continue
		}

		value := component.BoundAttribute(strings.TrimSuffix(change.Name, changedSuffix))
		if value == nil {
			continue
		}
		var expressionName string
		if expression := component.BoundAttribute(value.Name + expressionSuffix); expression != nil {
			expressionName = expression.Name
		}

		out = append(out, componentBindBuilder(component, value, change, expressionName))
	}
	return out
}

func componentBindBuilder(component *descriptor.TagHelperDescriptor, value, change *descriptor.BoundAttributeDescriptor, expression string) *descriptor.Builder {
	attributeName := bindAttributePrefix + value.Name

	b := descriptor.NewBuilder(descriptor.KindBind, component.Name, component.AssemblyName)
	b.DisplayName = component.DisplayName
	b.SetTypeName(component.TypeName, component.TypeNamespace, component.TypeNameIdentifier)
	b.CaseSensitive = true
	b.IsFullyQualifiedNameMatch = component.IsFullyQualifiedNameMatch
	b.SetDocumentation(docs.New(docs.BindComponent, value.Name, change.Name))
	b.SetMetadata(&descriptor.BindMetadata{
		Target:              descriptor.BindTargetComponent,
		ValueAttribute:      value.Name,
		ChangeAttribute:     change.Name,
		ExpressionAttribute: expression,
	})

	for _, rule := range component.TagMatchingRules {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = rule.TagName
			r.ParentTag = rule.ParentTag
			r.RequireDirectiveAttribute(attributeName)
		})
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = rule.TagName
			r.ParentTag = rule.ParentTag
			r.RequireDirectiveAttribute(attributeName + ":get")
			r.RequireDirectiveAttribute(attributeName + ":set")
		})
	}

	b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
		a.Name = attributeName
		a.PropertyName = value.PropertyName
		a.TypeName = change.TypeName
		a.IsDirectiveAttribute = true
		a.Documentation = docs.New(docs.BindComponent, value.Name, change.Name)
		a.SetContainingType(component.TypeName)
		getSetAfterParameters(a)
	})

	return b
}
