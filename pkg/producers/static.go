package producers

import (
	"context"
	"sync"

	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/docs"
	"github.com/walteh/razortag/pkg/symbols"
)

// staticProducer emits one process wide descriptor for the assembly that defines marker.
type staticProducer struct {
	kind       ProducerKind
	marker     *symbols.Type
	descriptor func() (*descriptor.TagHelperDescriptor, error)
}

func (p *staticProducer) Kind() ProducerKind {
	return p.kind
}

func (p *staticProducer) AddStaticTagHelpers(ctx context.Context, assembly *symbols.Assembly, results *Results) error {
	if !definedIn(p.marker, assembly) {
		return nil
	}
	d, err := p.descriptor()
	if err != nil {
		return err
	}
	results.Descriptors = append(results.Descriptors, d)
	return nil
}

func definedIn(marker *symbols.Type, assembly *symbols.Assembly) bool {
	if marker == nil || assembly == nil || marker.Assembly() == nil {
		return false
	}
	return marker.Assembly() == assembly || marker.Assembly().Name == assembly.Name
}

func newKeyProducer(marker *symbols.Type) Producer {
	return &staticProducer{kind: ProducerKey, marker: marker, descriptor: keyTagHelper}
}

func newRefProducer(marker *symbols.Type) Producer {
	return &staticProducer{kind: ProducerRef, marker: marker, descriptor: refTagHelper}
}

func newSplatProducer(marker *symbols.Type) Producer {
	return &staticProducer{kind: ProducerSplat, marker: marker, descriptor: splatTagHelper}
}

func newRenderModeProducer(marker *symbols.Type) Producer {
	return &staticProducer{kind: ProducerRenderMode, marker: marker, descriptor: renderModeTagHelper}
}

func newFormNameProducer(marker *symbols.Type) Producer {
	return &staticProducer{kind: ProducerFormName, marker: marker, descriptor: formNameTagHelper}
}

// directiveTagHelper builds the shape shared by the framework directive attributes: a
// classify-only catch-all rule requiring the attribute, and one bound attribute.
func directiveTagHelper(kind descriptor.Kind, name, typeName, attributeName, propertyName, attributeType string, doc docs.ID) (*descriptor.TagHelperDescriptor, error) {
	b := descriptor.NewBuilder(kind, name, ComponentsAssemblyName)
	b.SetTypeName(typeName, "", "")
	b.CaseSensitive = true
	b.ClassifyAttributesOnly = true
	b.SetDocumentation(docs.New(doc))

	b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
		r.TagName = descriptor.CatchAllTagName
		r.RequireDirectiveAttribute(attributeName)
	})

	b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
		a.Name = attributeName
		a.PropertyName = propertyName
		a.TypeName = attributeType
		a.IsDirectiveAttribute = true
		a.Documentation = docs.New(doc)
	})

	return b.Build()
}

var keyTagHelper = sync.OnceValues(func() (*descriptor.TagHelperDescriptor, error) {
	return directiveTagHelper(descriptor.KindKey, "Key", keyTypeName, "@key", "Key", objectTypeName, docs.Key)
})

var refTagHelper = sync.OnceValues(func() (*descriptor.TagHelperDescriptor, error) {
	return directiveTagHelper(descriptor.KindRef, "Ref", refTypeName, "@ref", "Ref", objectTypeName, docs.Ref)
})

var splatTagHelper = sync.OnceValues(func() (*descriptor.TagHelperDescriptor, error) {
	return directiveTagHelper(descriptor.KindSplat, "Attributes", splatTypeName, "@attributes", "Attributes", objectTypeName, docs.Splat)
})

var renderModeTagHelper = sync.OnceValues(func() (*descriptor.TagHelperDescriptor, error) {
	return directiveTagHelper(descriptor.KindRenderMode, "RenderMode", renderModeTypeName, "@rendermode", "RenderMode", IComponentRenderModeInterface, docs.RenderMode)
})

var formNameTagHelper = sync.OnceValues(func() (*descriptor.TagHelperDescriptor, error) {
	return directiveTagHelper(descriptor.KindFormName, "FormName", formNameTypeName, "@formname", "FormName", objectTypeName, docs.FormName)
})
