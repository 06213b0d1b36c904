package producers

import (
	"context"
	"slices"
	"strings"

	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/docs"
	"github.com/walteh/razortag/pkg/symbols"
	"go.uber.org/multierr"
)

const childContentContext = "Context"

// ComponentProducer describes IComponent implementations. Each component yields a
// descriptor matched by its short name and one matched by its fully qualified name, plus a
// child content descriptor per RenderFragment parameter of each.
type ComponentProducer struct{}

func newComponentProducer() Producer {
	return &ComponentProducer{}
}

func (p *ComponentProducer) Kind() ProducerKind {
	return ProducerComponent
}

func (p *ComponentProducer) IsCandidateType(t *symbols.Type) bool {
	return t.IsPublic &&
		!t.IsAbstract &&
		t.Kind == symbols.TypeKindClass &&
		t.Implements(IComponentInterface)
}

func (p *ComponentProducer) AddTagHelpersForType(ctx context.Context, t *symbols.Type, results *Results) error {
	var errs error
	var components []*descriptor.TagHelperDescriptor
	for _, fullyQualified := range []bool{false, true} {
		b := componentBuilder(t, fullyQualified)
		d, err := b.Build()
		if err != nil {
			multierr.AppendInto(&errs, err)
			continue
		}
		results.Descriptors = append(results.Descriptors, d)
		components = append(components, d)
	}

	for _, component := range components {
		for _, attr := range component.BoundAttributes {
			if !attr.Shape.IsChildContent {
				continue
			}
			multierr.AppendInto(&errs, results.Add(childContentBuilder(component, attr)))
		}
	}
	return errs
}

// componentTypeName renders t's full name with its type parameters, MyApp.Grid<TItem>.
func componentTypeName(t *symbols.Type) string {
	if !t.IsGeneric() {
		return t.FullName()
	}
	return t.FullName() + "<" + strings.Join(t.TypeParameters, ", ") + ">"
}

func componentBuilder(t *symbols.Type, fullyQualified bool) *descriptor.Builder {
	typeName := componentTypeName(t)

	b := descriptor.NewBuilder(descriptor.KindComponent, typeName, t.Assembly().Name)
	b.RuntimeKind = descriptor.RuntimeIComponent
	b.SetTypeName(typeName, "", "")
	b.CaseSensitive = true
	b.IsFullyQualifiedNameMatch = fullyQualified
	b.SetMetadata(&descriptor.ComponentMetadata{
		IsGeneric:      t.IsGeneric(),
		TypeParameters: slices.Clone(t.TypeParameters),
	})

	b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
		r.TagName = t.Name
		if fullyQualified {
			r.TagName = t.FullName()
		}
	})

	for _, prop := range t.AllProperties() {
		if !isComponentParameter(prop) {
			continue
		}
		b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
			a.Name = prop.Name
			a.PropertyName = prop.Name
			a.TypeName = prop.TypeName
			a.IsEnum = prop.IsEnum
			a.IsEditorRequired = prop.HasAttribute(EditorRequiredAttribute)
			a.Documentation = docs.New(docs.ComponentParameter, prop.Name, t.Name)
			a.Shape = shapeOf(prop)
		})
	}

	for _, tp := range t.TypeParameters {
		b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
			a.Name = tp
			a.PropertyName = tp
			a.TypeName = systemTypeTypeName
			a.Documentation = docs.New(docs.ComponentParameter, tp, t.Name)
		})
	}

	return b
}

func isComponentParameter(p *symbols.Property) bool {
	return !p.IsStatic && p.HasPublicSetter && p.HasAttribute(ParameterAttribute)
}

func shapeOf(p *symbols.Property) descriptor.PropertyShape {
	def := symbols.GenericTypeDefinition(p.TypeName)
	return descriptor.PropertyShape{
		IsEventCallback:             def == EventCallbackType,
		IsDelegate:                  p.TypeKind == symbols.TypeKindDelegate,
		IsChildContent:              def == RenderFragmentType,
		IsParameterizedChildContent: def == RenderFragmentType && def != p.TypeName,
		IsGenericTyped:              p.IsGenericTyped,
	}
}

// childContentBuilder describes <Param> nested directly inside the component's tag.
func childContentBuilder(component *descriptor.TagHelperDescriptor, attr *descriptor.BoundAttributeDescriptor) *descriptor.Builder {
	b := descriptor.NewBuilder(descriptor.KindChildContent, component.Name+"."+attr.Name, component.AssemblyName)
	b.DisplayName = component.DisplayName + "." + attr.Name
	b.SetTypeName(component.TypeName, component.TypeNamespace, component.TypeNameIdentifier)
	b.CaseSensitive = true
	b.IsFullyQualifiedNameMatch = component.IsFullyQualifiedNameMatch
	b.SetDocumentation(attr.Documentation)

	for _, rule := range component.TagMatchingRules {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = attr.Name
			r.ParentTag = rule.TagName
		})
	}

	if attr.Shape.IsParameterizedChildContent {
		b.SetMetadata(&descriptor.ChildContentMetadata{ParameterName: "context"})
		b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
			a.Name = childContentContext
			a.PropertyName = childContentContext
			a.TypeName = stringTypeName
			a.Documentation = docs.New(docs.ChildContent, attr.Name)
		})
	}

	return b
}
