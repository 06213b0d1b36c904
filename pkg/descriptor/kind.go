package descriptor

import "fmt"

// Kind discriminates the families of tag helpers.
type Kind uint8

const (
	KindITagHelper Kind = iota + 1
	KindComponent
	KindChildContent
	KindBind
	KindEventHandler
	KindKey
	KindRef
	KindRenderMode
	KindSplat
	KindFormName
	KindViewComponent
)

var kindNames = map[Kind]string{
	KindITagHelper:    "ITagHelper",
	KindComponent:     "Components.Component",
	KindChildContent:  "Components.ChildContent",
	KindBind:          "Components.Bind",
	KindEventHandler:  "Components.EventHandler",
	KindKey:           "Components.Key",
	KindRef:           "Components.Ref",
	KindRenderMode:    "Components.RenderMode",
	KindSplat:         "Components.Splat",
	KindFormName:      "Components.FormName",
	KindViewComponent: "MVC.ViewComponent",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// RuntimeKind says what the generated code instantiates for a tag helper.
type RuntimeKind uint8

const (
	RuntimeNone RuntimeKind = iota
	RuntimeITagHelper
	RuntimeIComponent
)

func (k RuntimeKind) String() string {
	switch k {
	case RuntimeITagHelper:
		return "ITagHelper"
	case RuntimeIComponent:
		return "IComponent"
	default:
		return "None"
	}
}

// TagStructure is the structure a rule requires of the tag it matches.
type TagStructure uint8

const (
	TagStructureUnspecified TagStructure = iota
	TagStructureNormalOrSelfClosing
	TagStructureWithoutEndTag
)

func (s TagStructure) String() string {
	switch s {
	case TagStructureNormalOrSelfClosing:
		return "NormalOrSelfClosing"
	case TagStructureWithoutEndTag:
		return "WithoutEndTag"
	default:
		return "Unspecified"
	}
}

// ParseTagStructure accepts the names produced by TagStructure.String.
func ParseTagStructure(s string) (TagStructure, bool) {
	switch s {
	case "Unspecified", "":
		return TagStructureUnspecified, true
	case "NormalOrSelfClosing":
		return TagStructureNormalOrSelfClosing, true
	case "WithoutEndTag":
		return TagStructureWithoutEndTag, true
	}
	return TagStructureUnspecified, false
}

// NameComparison controls how a required attribute name is compared.
type NameComparison uint8

const (
	NameFullMatch NameComparison = iota
	NamePrefixMatch
)

func (c NameComparison) String() string {
	if c == NamePrefixMatch {
		return "PrefixMatch"
	}
	return "FullMatch"
}

// ValueComparison controls how a required attribute value is compared.
type ValueComparison uint8

const (
	ValueNone ValueComparison = iota
	ValueFullMatch
	ValuePrefixMatch
	ValueSuffixMatch
)

func (c ValueComparison) String() string {
	switch c {
	case ValueFullMatch:
		return "FullMatch"
	case ValuePrefixMatch:
		return "PrefixMatch"
	case ValueSuffixMatch:
		return "SuffixMatch"
	default:
		return "None"
	}
}
