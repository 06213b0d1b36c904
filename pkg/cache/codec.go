// Package cache persists discovered descriptor collections.
//
// Payloads are msgpack. Decoding never trusts the payload: every descriptor is rebuilt
// through descriptor.Builder, and a descriptor whose recomputed checksum differs from the
// stored one fails the whole decode.
package cache

import (
	"github.com/vmihailenco/msgpack/v5"
	"github.com/walteh/razortag/pkg/collection"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/docs"
	"gitlab.com/tozd/go/errors"
)

// schemaVersion changes whenever the payload layout does.
const schemaVersion uint16 = 2

var (
	ErrSchemaMismatch   = errors.New("cache payload schema mismatch")
	ErrChecksumMismatch = errors.New("cache payload checksum mismatch")
)

type payload struct {
	Schema      uint16              `msgpack:"schema"`
	Checksum    []byte              `msgpack:"checksum"`
	Descriptors []descriptorPayload `msgpack:"descriptors"`
}

type descriptorPayload struct {
	Kind                      uint8                   `msgpack:"kind"`
	RuntimeKind               uint8                   `msgpack:"runtime_kind"`
	Name                      string                  `msgpack:"name"`
	AssemblyName              string                  `msgpack:"assembly"`
	DisplayName               string                  `msgpack:"display_name"`
	TypeName                  string                  `msgpack:"type_name"`
	TypeNamespace             string                  `msgpack:"type_namespace"`
	TypeNameIdentifier        string                  `msgpack:"type_identifier"`
	CaseSensitive             bool                    `msgpack:"case_sensitive"`
	ClassifyAttributesOnly    bool                    `msgpack:"classify_only"`
	IsFullyQualifiedNameMatch bool                    `msgpack:"fully_qualified"`
	TagOutputHint             string                  `msgpack:"output_hint,omitempty"`
	AllowedChildTags          []string                `msgpack:"allowed_children,omitempty"`
	Rules                     []rulePayload           `msgpack:"rules"`
	BoundAttributes           []boundAttributePayload `msgpack:"attributes"`
	Metadata                  *metadataPayload        `msgpack:"metadata,omitempty"`
	Documentation             *documentationPayload   `msgpack:"docs,omitempty"`
	Checksum                  []byte                  `msgpack:"checksum"`
}

type rulePayload struct {
	TagName      string                     `msgpack:"tag"`
	ParentTag    string                     `msgpack:"parent,omitempty"`
	TagStructure uint8                      `msgpack:"structure"`
	Attributes   []requiredAttributePayload `msgpack:"attributes"`
}

type requiredAttributePayload struct {
	Name                 string `msgpack:"name"`
	NameComparison       uint8  `msgpack:"name_comparison"`
	Value                string `msgpack:"value,omitempty"`
	ValueComparison      uint8  `msgpack:"value_comparison"`
	IsDirectiveAttribute bool   `msgpack:"directive"`
	DisplayName          string `msgpack:"display_name"`
}

type boundAttributePayload struct {
	Name                 string                   `msgpack:"name"`
	PropertyName         string                   `msgpack:"property"`
	TypeName             string                   `msgpack:"type"`
	IsEnum               bool                     `msgpack:"enum"`
	IsDictionary         bool                     `msgpack:"dictionary"`
	IndexerNamePrefix    string                   `msgpack:"indexer_prefix,omitempty"`
	IndexerTypeName      string                   `msgpack:"indexer_type,omitempty"`
	IsDirectiveAttribute bool                     `msgpack:"directive"`
	IsWeaklyTyped        bool                     `msgpack:"weakly_typed"`
	IsEditorRequired     bool                     `msgpack:"editor_required"`
	DisplayName          string                   `msgpack:"display_name"`
	ContainingType       string                   `msgpack:"containing_type"`
	Documentation        *documentationPayload    `msgpack:"docs,omitempty"`
	Shape                descriptor.PropertyShape `msgpack:"shape"`
	Parameters           []parameterPayload       `msgpack:"parameters,omitempty"`
}

type parameterPayload struct {
	Name                string                `msgpack:"name"`
	PropertyName        string                `msgpack:"property"`
	TypeName            string                `msgpack:"type"`
	IsEnum              bool                  `msgpack:"enum"`
	BindAttributeGetSet bool                  `msgpack:"get_set"`
	DisplayName         string                `msgpack:"display_name"`
	Documentation       *documentationPayload `msgpack:"docs,omitempty"`
}

type documentationPayload struct {
	ID   uint8    `msgpack:"id"`
	Args []string `msgpack:"args,omitempty"`
}

// metadataPayload flattens the Metadata variants; Kind selects which fields are live.
type metadataPayload struct {
	Kind uint8 `msgpack:"kind"`

	BindTarget          uint8  `msgpack:"bind_target,omitempty"`
	ValueAttribute      string `msgpack:"value,omitempty"`
	ChangeAttribute     string `msgpack:"change,omitempty"`
	ExpressionAttribute string `msgpack:"expression,omitempty"`
	TypeAttribute       string `msgpack:"type,omitempty"`
	IsInvariantCulture  bool   `msgpack:"invariant,omitempty"`
	Format              string `msgpack:"format,omitempty"`

	EventArgsType string `msgpack:"event_args,omitempty"`

	IsGeneric      bool     `msgpack:"generic,omitempty"`
	TypeParameters []string `msgpack:"type_parameters,omitempty"`

	ParameterName string `msgpack:"parameter,omitempty"`
}

// Encode serializes c. Merged collections can repeat a descriptor across segments; the
// payload holds the deduplicated sequence, which is what Decode returns.
func Encode(c *collection.Collection) ([]byte, error) {
	c = collection.New(c.Slice()...)
	sum := c.Checksum()
	p := payload{
		Schema:      schemaVersion,
		Checksum:    sum[:],
		Descriptors: make([]descriptorPayload, 0, c.Count()),
	}
	for _, d := range c.All() {
		p.Descriptors = append(p.Descriptors, encodeDescriptor(d))
	}
	out, err := msgpack.Marshal(&p)
	if err != nil {
		return nil, errors.Errorf("encoding collection: %w", err)
	}
	return out, nil
}

// Decode rebuilds the collection serialized by Encode.
func Decode(data []byte) (*collection.Collection, error) {
	var p payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, errors.Errorf("decoding collection: %w", err)
	}
	if p.Schema != schemaVersion {
		return nil, errors.Errorf("%w: got %d, want %d", ErrSchemaMismatch, p.Schema, schemaVersion)
	}

	b := collection.NewBuilder()
	for i, dp := range p.Descriptors {
		d, err := decodeDescriptor(dp)
		if err != nil {
			return nil, errors.Errorf("descriptor %d (%s): %w", i, dp.Name, err)
		}
		if string(d.Checksum[:]) != string(dp.Checksum) {
			return nil, errors.Errorf("%w: descriptor %d (%s)", ErrChecksumMismatch, i, dp.Name)
		}
		b.Add(d)
	}

	c := b.Build()
	if sum := c.Checksum(); string(sum[:]) != string(p.Checksum) {
		return nil, errors.Errorf("%w: collection", ErrChecksumMismatch)
	}
	return c, nil
}

func encodeDescriptor(d *descriptor.TagHelperDescriptor) descriptorPayload {
	out := descriptorPayload{
		Kind:                      uint8(d.Kind),
		RuntimeKind:               uint8(d.RuntimeKind),
		Name:                      d.Name,
		AssemblyName:              d.AssemblyName,
		DisplayName:               d.DisplayName,
		TypeName:                  d.TypeName,
		TypeNamespace:             d.TypeNamespace,
		TypeNameIdentifier:        d.TypeNameIdentifier,
		CaseSensitive:             d.CaseSensitive,
		ClassifyAttributesOnly:    d.ClassifyAttributesOnly,
		IsFullyQualifiedNameMatch: d.IsFullyQualifiedNameMatch,
		TagOutputHint:             d.TagOutputHint,
		AllowedChildTags:          d.AllowedChildTags,
		Metadata:                  encodeMetadata(d.Metadata),
		Documentation:             encodeDocs(d.Documentation),
		Checksum:                  d.Checksum[:],
	}

	for _, r := range d.TagMatchingRules {
		rp := rulePayload{
			TagName:      r.TagName,
			ParentTag:    r.ParentTag,
			TagStructure: uint8(r.TagStructure),
		}
		for _, a := range r.Attributes {
			rp.Attributes = append(rp.Attributes, requiredAttributePayload{
				Name:                 a.Name,
				NameComparison:       uint8(a.NameComparison),
				Value:                a.Value,
				ValueComparison:      uint8(a.ValueComparison),
				IsDirectiveAttribute: a.IsDirectiveAttribute,
				DisplayName:          a.DisplayName,
			})
		}
		out.Rules = append(out.Rules, rp)
	}

	for _, a := range d.BoundAttributes {
		ap := boundAttributePayload{
			Name:                 a.Name,
			PropertyName:         a.PropertyName,
			TypeName:             a.TypeName,
			IsEnum:               a.IsEnum,
			IsDictionary:         a.IsDictionary,
			IndexerNamePrefix:    a.IndexerNamePrefix,
			IndexerTypeName:      a.IndexerTypeName,
			IsDirectiveAttribute: a.IsDirectiveAttribute,
			IsWeaklyTyped:        a.IsWeaklyTyped,
			IsEditorRequired:     a.IsEditorRequired,
			DisplayName:          a.DisplayName,
			ContainingType:       a.ContainingType,
			Documentation:        encodeDocs(a.Documentation),
			Shape:                a.Shape,
		}
		for _, p := range a.Parameters {
			ap.Parameters = append(ap.Parameters, parameterPayload{
				Name:                p.Name,
				PropertyName:        p.PropertyName,
				TypeName:            p.TypeName,
				IsEnum:              p.IsEnum,
				BindAttributeGetSet: p.BindAttributeGetSet,
				DisplayName:         p.DisplayName,
				Documentation:       encodeDocs(p.Documentation),
			})
		}
		out.BoundAttributes = append(out.BoundAttributes, ap)
	}
	return out
}

func decodeDescriptor(p descriptorPayload) (*descriptor.TagHelperDescriptor, error) {
	b := descriptor.NewBuilder(descriptor.Kind(p.Kind), p.Name, p.AssemblyName)
	b.RuntimeKind = descriptor.RuntimeKind(p.RuntimeKind)
	b.DisplayName = p.DisplayName
	b.CaseSensitive = p.CaseSensitive
	b.ClassifyAttributesOnly = p.ClassifyAttributesOnly
	b.IsFullyQualifiedNameMatch = p.IsFullyQualifiedNameMatch
	b.TagOutputHint = p.TagOutputHint
	b.SetTypeName(p.TypeName, p.TypeNamespace, p.TypeNameIdentifier)
	b.SetDocumentation(decodeDocs(p.Documentation))
	for _, tag := range p.AllowedChildTags {
		b.AllowChildTag(tag)
	}

	metadata, err := decodeMetadata(p.Metadata)
	if err != nil {
		return nil, err
	}
	b.SetMetadata(metadata)

	for _, rp := range p.Rules {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = rp.TagName
			r.ParentTag = rp.ParentTag
			r.TagStructure = descriptor.TagStructure(rp.TagStructure)
			for _, ap := range rp.Attributes {
				r.RequireAttribute(func(a *descriptor.RequiredAttributeBuilder) {
					a.Name = ap.Name
					a.NameComparison = descriptor.NameComparison(ap.NameComparison)
					a.Value = ap.Value
					a.ValueComparison = descriptor.ValueComparison(ap.ValueComparison)
					a.IsDirectiveAttribute = ap.IsDirectiveAttribute
					a.DisplayName = ap.DisplayName
				})
			}
		})
	}

	for _, ap := range p.BoundAttributes {
		b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
			a.Name = ap.Name
			a.PropertyName = ap.PropertyName
			a.TypeName = ap.TypeName
			a.IsEnum = ap.IsEnum
			a.IsDirectiveAttribute = ap.IsDirectiveAttribute
			a.IsWeaklyTyped = ap.IsWeaklyTyped
			a.IsEditorRequired = ap.IsEditorRequired
			a.DisplayName = ap.DisplayName
			a.Documentation = decodeDocs(ap.Documentation)
			a.Shape = ap.Shape
			a.SetContainingType(ap.ContainingType)
			if ap.IsDictionary {
				a.AsDictionary(ap.IndexerNamePrefix, ap.IndexerTypeName)
			}
			for _, pp := range ap.Parameters {
				a.BindParameter(func(param *descriptor.ParameterBuilder) {
					param.Name = pp.Name
					param.PropertyName = pp.PropertyName
					param.TypeName = pp.TypeName
					param.IsEnum = pp.IsEnum
					param.BindAttributeGetSet = pp.BindAttributeGetSet
					param.DisplayName = pp.DisplayName
					param.Documentation = decodeDocs(pp.Documentation)
				})
			}
		})
	}

	return b.Build()
}

func encodeDocs(d *docs.Descriptor) *documentationPayload {
	if d == nil {
		return nil
	}
	return &documentationPayload{ID: uint8(d.ID), Args: d.Args}
}

func decodeDocs(p *documentationPayload) *docs.Descriptor {
	if p == nil {
		return nil
	}
	return docs.New(docs.ID(p.ID), p.Args...)
}

func encodeMetadata(m descriptor.Metadata) *metadataPayload {
	switch m := m.(type) {
	case *descriptor.BindMetadata:
		return &metadataPayload{
			Kind:                uint8(descriptor.MetadataBind),
			BindTarget:          uint8(m.Target),
			ValueAttribute:      m.ValueAttribute,
			ChangeAttribute:     m.ChangeAttribute,
			ExpressionAttribute: m.ExpressionAttribute,
			TypeAttribute:       m.TypeAttribute,
			IsInvariantCulture:  m.IsInvariantCulture,
			Format:              m.Format,
		}
	case *descriptor.EventHandlerMetadata:
		return &metadataPayload{Kind: uint8(descriptor.MetadataEventHandler), EventArgsType: m.EventArgsType}
	case *descriptor.ComponentMetadata:
		return &metadataPayload{
			Kind:           uint8(descriptor.MetadataComponent),
			IsGeneric:      m.IsGeneric,
			TypeParameters: m.TypeParameters,
		}
	case *descriptor.ChildContentMetadata:
		return &metadataPayload{Kind: uint8(descriptor.MetadataChildContent), ParameterName: m.ParameterName}
	}
	return nil
}

func decodeMetadata(p *metadataPayload) (descriptor.Metadata, error) {
	if p == nil {
		return nil, nil
	}
	switch descriptor.MetadataKind(p.Kind) {
	case descriptor.MetadataBind:
		return &descriptor.BindMetadata{
			Target:              descriptor.BindTarget(p.BindTarget),
			ValueAttribute:      p.ValueAttribute,
			ChangeAttribute:     p.ChangeAttribute,
			ExpressionAttribute: p.ExpressionAttribute,
			TypeAttribute:       p.TypeAttribute,
			IsInvariantCulture:  p.IsInvariantCulture,
			Format:              p.Format,
		}, nil
	case descriptor.MetadataEventHandler:
		return &descriptor.EventHandlerMetadata{EventArgsType: p.EventArgsType}, nil
	case descriptor.MetadataComponent:
		return &descriptor.ComponentMetadata{IsGeneric: p.IsGeneric, TypeParameters: p.TypeParameters}, nil
	case descriptor.MetadataChildContent:
		return &descriptor.ChildContentMetadata{ParameterName: p.ParameterName}, nil
	}
	return nil, errors.Errorf("unknown metadata kind %d", p.Kind)
}
