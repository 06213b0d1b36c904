// Package symbols is the compiled-program metadata view discovery works against.
//
// It models just enough of a compiler's symbol table to discover tag helpers: assemblies,
// their public types, custom attribute applications with positional (and optionally
// named) constant arguments, properties, base types and implemented interfaces. A
// Compilation is either assembled in memory or loaded from Go source with LoadGoPackages.
package symbols

import (
	"strconv"
	"strings"
)

type TypeKind uint8

const (
	TypeKindClass TypeKind = iota
	TypeKindStruct
	TypeKindInterface
	TypeKindEnum
	TypeKindDelegate
)

func (k TypeKind) String() string {
	switch k {
	case TypeKindStruct:
		return "struct"
	case TypeKindInterface:
		return "interface"
	case TypeKindEnum:
		return "enum"
	case TypeKindDelegate:
		return "delegate"
	default:
		return "class"
	}
}

// Compilation is the program being analyzed plus the assemblies it references.
type Compilation struct {
	assembly   *Assembly
	references []*Assembly
}

func NewCompilation(assembly *Assembly, references ...*Assembly) *Compilation {
	return &Compilation{assembly: assembly, references: references}
}

func (c *Compilation) Assembly() *Assembly {
	return c.assembly
}

func (c *Compilation) References() []*Assembly {
	return c.references
}

// TypeByMetadataName looks a type up in the compilation first, then in references in
// order. It returns nil when no assembly defines the name.
func (c *Compilation) TypeByMetadataName(name string) *Type {
	if c.assembly != nil {
		if t := c.assembly.LookupType(name); t != nil {
			return t
		}
	}
	for _, ref := range c.references {
		if t := ref.LookupType(name); t != nil {
			return t
		}
	}
	return nil
}

type Assembly struct {
	Name  string
	types []*Type
}

func NewAssembly(name string) *Assembly {
	return &Assembly{Name: name}
}

// Types returns every type declared by the assembly in declaration order.
func (a *Assembly) Types() []*Type {
	return a.types
}

// PublicTypes returns the public types in declaration order.
func (a *Assembly) PublicTypes() []*Type {
	out := make([]*Type, 0, len(a.types))
	for _, t := range a.types {
		if t.IsPublic {
			out = append(out, t)
		}
	}
	return out
}

// LookupType returns the first type declared under metadataName. Names are computed at
// lookup, so type parameters set after NewType are seen.
func (a *Assembly) LookupType(metadataName string) *Type {
	for _, t := range a.types {
		if t.MetadataName() == metadataName {
			return t
		}
	}
	return nil
}

// NewType declares a public type in the assembly.
func (a *Assembly) NewType(namespace, name string, kind TypeKind) *Type {
	t := &Type{
		Name:      name,
		Namespace: namespace,
		Kind:      kind,
		IsPublic:  true,
		assembly:  a,
	}
	a.AddType(t)
	return t
}

// AddType adds t to the assembly, replacing nothing: the first type declared under a
// metadata name wins lookups.
func (a *Assembly) AddType(t *Type) {
	t.assembly = a
	a.types = append(a.types, t)
}

type Type struct {
	Name           string
	Namespace      string
	TypeParameters []string
	Kind           TypeKind
	IsPublic       bool
	IsAbstract     bool
	BaseType       *Type
	Interfaces     []*Type
	Attributes     []*AttributeData
	Properties     []*Property

	assembly *Assembly
}

func (t *Type) Assembly() *Assembly {
	return t.assembly
}

// FullName is the dotted name without generic arity.
func (t *Type) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// MetadataName is FullName plus "`N" for generic types.
func (t *Type) MetadataName() string {
	if len(t.TypeParameters) == 0 {
		return t.FullName()
	}
	return t.FullName() + "`" + strconv.Itoa(len(t.TypeParameters))
}

func (t *Type) IsGeneric() bool {
	return len(t.TypeParameters) > 0
}

// Implements reports whether t, its base types, or any interface reachable from them has
// the given metadata name.
func (t *Type) Implements(metadataName string) bool {
	seen := map[*Type]bool{}
	var visit func(x *Type) bool
	visit = func(x *Type) bool {
		if x == nil || seen[x] {
			return false
		}
		seen[x] = true
		if x != t && x.MetadataName() == metadataName {
			return true
		}
		for _, i := range x.Interfaces {
			if visit(i) {
				return true
			}
		}
		return visit(x.BaseType)
	}
	return visit(t)
}

// InheritsFrom reports whether a base type of t has the given metadata name.
func (t *Type) InheritsFrom(metadataName string) bool {
	for b := t.BaseType; b != nil; b = b.BaseType {
		if b.MetadataName() == metadataName {
			return true
		}
	}
	return false
}

// AttributesOf returns the applications of the named attribute class in declaration order.
func (t *Type) AttributesOf(attributeClass string) []*AttributeData {
	return filterAttributes(t.Attributes, attributeClass)
}

func (t *Type) HasAttribute(attributeClass string) bool {
	return len(t.AttributesOf(attributeClass)) > 0
}

// AllProperties returns t's properties followed by inherited ones that t does not
// redeclare.
func (t *Type) AllProperties() []*Property {
	var out []*Property
	seen := map[string]bool{}
	for x := t; x != nil; x = x.BaseType {
		for _, p := range x.Properties {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p)
		}
	}
	return out
}

// Implement adds interfaces to t.
func (t *Type) Implement(interfaces ...*Type) *Type {
	t.Interfaces = append(t.Interfaces, interfaces...)
	return t
}

// Inherit sets t's base type.
func (t *Type) Inherit(base *Type) *Type {
	t.BaseType = base
	return t
}

// Attribute adds an attribute application to t.
func (t *Type) Attribute(class string, args ...TypedConstant) *AttributeData {
	a := &AttributeData{AttributeClass: class, ConstructorArguments: args}
	t.Attributes = append(t.Attributes, a)
	return a
}

// Property declares a public get/set property on t.
func (t *Type) Property(name, typeName string) *Property {
	p := &Property{
		Name:            name,
		TypeName:        typeName,
		HasPublicGetter: true,
		HasPublicSetter: true,
	}
	t.Properties = append(t.Properties, p)
	return p
}

type Property struct {
	Name            string
	TypeName        string
	TypeKind        TypeKind
	IsEnum          bool
	IsGenericTyped  bool
	HasPublicGetter bool
	HasPublicSetter bool
	IsStatic        bool
	Attributes      []*AttributeData
}

func (p *Property) AttributesOf(attributeClass string) []*AttributeData {
	return filterAttributes(p.Attributes, attributeClass)
}

func (p *Property) HasAttribute(attributeClass string) bool {
	return len(p.AttributesOf(attributeClass)) > 0
}

// Attribute adds an attribute application to p.
func (p *Property) Attribute(class string, args ...TypedConstant) *AttributeData {
	a := &AttributeData{AttributeClass: class, ConstructorArguments: args}
	p.Attributes = append(p.Attributes, a)
	return a
}

// WithKind sets the property's type kind and returns p.
func (p *Property) WithKind(kind TypeKind) *Property {
	p.TypeKind = kind
	p.IsEnum = kind == TypeKindEnum
	return p
}

// ReadOnly drops the public setter.
func (p *Property) ReadOnly() *Property {
	p.HasPublicSetter = false
	return p
}

// GenericTypeArguments splits "A.B<X, Y<Z>>" into ["X", "Y<Z>"].
func GenericTypeArguments(typeName string) []string {
	open := strings.IndexByte(typeName, '<')
	if open < 0 || !strings.HasSuffix(typeName, ">") {
		return nil
	}
	inner := typeName[open+1 : len(typeName)-1]
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(inner[start:]))
}

// GenericTypeDefinition strips generic arguments: "A.B<X>" becomes "A.B".
func GenericTypeDefinition(typeName string) string {
	if i := strings.IndexByte(typeName, '<'); i >= 0 {
		return typeName[:i]
	}
	return typeName
}
