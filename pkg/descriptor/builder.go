package descriptor

import (
	"slices"

	"github.com/walteh/razortag/pkg/docs"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidDescriptor is wrapped by every Build failure. It signals a producer bug,
	// callers are expected to surface it rather than drop it.
	ErrInvalidDescriptor = errors.New("invalid tag helper descriptor")

	ErrBuilderConsumed = errors.New("descriptor builder already built")
)

// Builder stages a TagHelperDescriptor. A builder is owned by one producer call and is
// consumed by Build.
type Builder struct {
	Kind         Kind
	RuntimeKind  RuntimeKind
	Name         string
	AssemblyName string
	DisplayName  string

	CaseSensitive             bool
	ClassifyAttributesOnly    bool
	IsFullyQualifiedNameMatch bool
	TagOutputHint             string

	typeName           string
	typeNamespace      string
	typeNameIdentifier string

	allowedChildTags []string
	rules            []*RuleBuilder
	attributes       []*BoundAttributeBuilder
	metadata         Metadata
	documentation    *docs.Descriptor

	built bool
}

func NewBuilder(kind Kind, name, assemblyName string) *Builder {
	return &Builder{
		Kind:         kind,
		Name:         name,
		AssemblyName: assemblyName,
	}
}

// SetTypeName records the implementing type. namespace and identifier are derived from
// fullName when empty.
func (b *Builder) SetTypeName(fullName, namespace, identifier string) *Builder {
	if namespace == "" && identifier == "" {
		namespace, identifier = SplitTypeName(fullName)
	}
	b.typeName = fullName
	b.typeNamespace = namespace
	b.typeNameIdentifier = identifier
	return b
}

func (b *Builder) TypeName() string {
	return b.typeName
}

func (b *Builder) SetMetadata(m Metadata) *Builder {
	b.metadata = m
	return b
}

func (b *Builder) SetDocumentation(d *docs.Descriptor) *Builder {
	b.documentation = d
	return b
}

func (b *Builder) AllowChildTag(name string) *Builder {
	b.allowedChildTags = append(b.allowedChildTags, name)
	return b
}

// TagMatchingRule adds a rule configured by configure.
func (b *Builder) TagMatchingRule(configure func(r *RuleBuilder)) *Builder {
	r := &RuleBuilder{}
	configure(r)
	b.rules = append(b.rules, r)
	return b
}

// BindAttribute adds a bound attribute configured by configure.
func (b *Builder) BindAttribute(configure func(a *BoundAttributeBuilder)) *Builder {
	a := &BoundAttributeBuilder{}
	configure(a)
	b.attributes = append(b.attributes, a)
	return b
}

// Build validates the staged content and produces the immutable descriptor.
func (b *Builder) Build() (*TagHelperDescriptor, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true

	if !b.Kind.Valid() {
		return nil, invalid(b.Name, "unknown kind %d", uint8(b.Kind))
	}
	if b.Name == "" {
		return nil, invalid(b.Name, "name is required")
	}
	if b.AssemblyName == "" {
		return nil, invalid(b.Name, "assembly name is required")
	}

	d := &TagHelperDescriptor{
		Kind:                      b.Kind,
		RuntimeKind:               b.RuntimeKind,
		Name:                      b.Name,
		AssemblyName:              b.AssemblyName,
		DisplayName:               b.DisplayName,
		TypeName:                  b.typeName,
		TypeNamespace:             b.typeNamespace,
		TypeNameIdentifier:        b.typeNameIdentifier,
		CaseSensitive:             b.CaseSensitive,
		ClassifyAttributesOnly:    b.ClassifyAttributesOnly,
		IsFullyQualifiedNameMatch: b.IsFullyQualifiedNameMatch,
		TagOutputHint:             b.TagOutputHint,
		AllowedChildTags:          slices.Clone(b.allowedChildTags),
		Metadata:                  b.metadata,
		Documentation:             b.documentation,
	}
	if d.DisplayName == "" {
		d.DisplayName = d.TypeName
	}
	if d.DisplayName == "" {
		d.DisplayName = d.Name
	}

	for _, tag := range d.AllowedChildTags {
		if err := validateTagName(tag); err != nil {
			return nil, invalid(b.Name, "allowed child tag %q: %w", tag, err)
		}
	}

	for i, rb := range b.rules {
		r, err := rb.build(d.CaseSensitive)
		if err != nil {
			return nil, invalid(b.Name, "rule %d: %w", i, err)
		}
		d.TagMatchingRules = append(d.TagMatchingRules, r)
	}

	for i, ab := range b.attributes {
		a, err := ab.build(d.CaseSensitive, d.TypeName)
		if err != nil {
			return nil, invalid(b.Name, "bound attribute %d: %w", i, err)
		}
		d.BoundAttributes = append(d.BoundAttributes, a)
	}

	d.Checksum = computeChecksum(d)

	return d, nil
}

// MustBuild is Build for descriptors whose content is fixed at compile time.
func (b *Builder) MustBuild() *TagHelperDescriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

func invalid(name string, format string, args ...any) error {
	return errors.Errorf("%w: %s: "+format, append([]any{ErrInvalidDescriptor, name}, args...)...)
}

// RuleBuilder stages a TagMatchingRuleDescriptor.
type RuleBuilder struct {
	TagName      string
	ParentTag    string
	TagStructure TagStructure

	attributes []*RequiredAttributeBuilder
}

// RequireAttribute adds a required attribute configured by configure.
func (r *RuleBuilder) RequireAttribute(configure func(a *RequiredAttributeBuilder)) *RuleBuilder {
	a := &RequiredAttributeBuilder{}
	configure(a)
	r.attributes = append(r.attributes, a)
	return r
}

// RequireDirectiveAttribute is RequireAttribute for the common full-match directive case.
func (r *RuleBuilder) RequireDirectiveAttribute(name string) *RuleBuilder {
	return r.RequireAttribute(func(a *RequiredAttributeBuilder) {
		a.Name = name
		a.IsDirectiveAttribute = true
	})
}

func (r *RuleBuilder) build(caseSensitive bool) (*TagMatchingRuleDescriptor, error) {
	if r.TagName == "" {
		return nil, errors.New("tag name is required")
	}
	if r.TagName != CatchAllTagName {
		if err := validateTagName(r.TagName); err != nil {
			return nil, errors.Errorf("tag name %q: %w", r.TagName, err)
		}
	}
	if r.ParentTag != "" {
		if err := validateTagName(r.ParentTag); err != nil {
			return nil, errors.Errorf("parent tag %q: %w", r.ParentTag, err)
		}
	}
	if r.TagName == CatchAllTagName && r.ParentTag == "" && len(r.attributes) == 0 {
		return nil, errors.New("catch-all rule without parent tag or required attributes matches every tag")
	}

	rule := &TagMatchingRuleDescriptor{
		TagName:       r.TagName,
		ParentTag:     r.ParentTag,
		TagStructure:  r.TagStructure,
		CaseSensitive: caseSensitive,
	}
	for i, ab := range r.attributes {
		a, err := ab.build(caseSensitive)
		if err != nil {
			return nil, errors.Errorf("required attribute %d: %w", i, err)
		}
		rule.Attributes = append(rule.Attributes, a)
	}
	return rule, nil
}

// RequiredAttributeBuilder stages a RequiredAttributeDescriptor.
type RequiredAttributeBuilder struct {
	Name                 string
	NameComparison       NameComparison
	Value                string
	ValueComparison      ValueComparison
	IsDirectiveAttribute bool
	DisplayName          string
}

func (a *RequiredAttributeBuilder) build(caseSensitive bool) (*RequiredAttributeDescriptor, error) {
	if a.Name == "" {
		return nil, errors.New("name is required")
	}
	if err := validateAttributeName(a.Name, a.IsDirectiveAttribute); err != nil {
		return nil, errors.Errorf("name %q: %w", a.Name, err)
	}
	display := a.DisplayName
	if display == "" {
		display = a.Name
		if a.NameComparison == NamePrefixMatch {
			display += "..."
		}
	}
	return &RequiredAttributeDescriptor{
		Name:                 a.Name,
		NameComparison:       a.NameComparison,
		Value:                a.Value,
		ValueComparison:      a.ValueComparison,
		IsDirectiveAttribute: a.IsDirectiveAttribute,
		CaseSensitive:        caseSensitive,
		DisplayName:          display,
	}, nil
}

// BoundAttributeBuilder stages a BoundAttributeDescriptor.
type BoundAttributeBuilder struct {
	Name                 string
	PropertyName         string
	TypeName             string
	IsEnum               bool
	IsDirectiveAttribute bool
	IsWeaklyTyped        bool
	IsEditorRequired     bool
	DisplayName          string
	Documentation        *docs.Descriptor
	Shape                PropertyShape

	isDictionary      bool
	indexerNamePrefix string
	indexerTypeName   string
	containingType    string

	parameters []*ParameterBuilder
}

// AsDictionary makes the attribute accept any name starting with prefix, each value of
// type valueTypeName.
func (a *BoundAttributeBuilder) AsDictionary(prefix, valueTypeName string) *BoundAttributeBuilder {
	a.isDictionary = true
	a.indexerNamePrefix = prefix
	a.indexerTypeName = valueTypeName
	return a
}

// SetContainingType overrides the containing type used for the display name.
func (a *BoundAttributeBuilder) SetContainingType(typeName string) *BoundAttributeBuilder {
	a.containingType = typeName
	return a
}

// BindParameter adds a `:name` parameter configured by configure.
func (a *BoundAttributeBuilder) BindParameter(configure func(p *ParameterBuilder)) *BoundAttributeBuilder {
	p := &ParameterBuilder{}
	configure(p)
	a.parameters = append(a.parameters, p)
	return a
}

func (a *BoundAttributeBuilder) build(caseSensitive bool, typeName string) (*BoundAttributeDescriptor, error) {
	if a.Name == "" && !a.isDictionary {
		return nil, errors.New("name is required")
	}
	if a.Name != "" && !a.isDictionary {
		if err := validateAttributeName(a.Name, a.IsDirectiveAttribute); err != nil {
			return nil, errors.Errorf("name %q: %w", a.Name, err)
		}
	}
	if a.isDictionary && a.indexerNamePrefix == "" {
		return nil, errors.Errorf("dictionary attribute %q has no indexer prefix", a.Name)
	}

	containingType := a.containingType
	if containingType == "" {
		containingType = typeName
	}
	display := a.DisplayName
	if display == "" {
		display = a.TypeName + " " + shortTypeName(containingType) + "." + a.PropertyName
	}

	out := &BoundAttributeDescriptor{
		Name:                 a.Name,
		PropertyName:         a.PropertyName,
		TypeName:             a.TypeName,
		IsEnum:               a.IsEnum,
		IsDictionary:         a.isDictionary,
		IndexerNamePrefix:    a.indexerNamePrefix,
		IndexerTypeName:      a.indexerTypeName,
		IsDirectiveAttribute: a.IsDirectiveAttribute,
		IsWeaklyTyped:        a.IsWeaklyTyped,
		IsEditorRequired:     a.IsEditorRequired,
		CaseSensitive:        caseSensitive,
		DisplayName:          display,
		ContainingType:       containingType,
		Documentation:        a.Documentation,
		Shape:                a.Shape,
	}

	for i, pb := range a.parameters {
		p, err := pb.build(caseSensitive)
		if err != nil {
			return nil, errors.Errorf("parameter %d: %w", i, err)
		}
		out.Parameters = append(out.Parameters, p)
	}

	return out, nil
}

// ParameterBuilder stages a BoundAttributeParameterDescriptor.
type ParameterBuilder struct {
	Name                string
	PropertyName        string
	TypeName            string
	IsEnum              bool
	BindAttributeGetSet bool
	DisplayName         string
	Documentation       *docs.Descriptor
}

func (p *ParameterBuilder) build(caseSensitive bool) (*BoundAttributeParameterDescriptor, error) {
	if p.Name == "" {
		return nil, errors.New("name is required")
	}
	if err := validateAttributeName(p.Name, false); err != nil {
		return nil, errors.Errorf("name %q: %w", p.Name, err)
	}
	display := p.DisplayName
	if display == "" {
		display = ":" + p.Name
	}
	return &BoundAttributeParameterDescriptor{
		Name:                p.Name,
		PropertyName:        p.PropertyName,
		TypeName:            p.TypeName,
		IsEnum:              p.IsEnum,
		BindAttributeGetSet: p.BindAttributeGetSet,
		CaseSensitive:       caseSensitive,
		DisplayName:         display,
		Documentation:       p.Documentation,
	}, nil
}
