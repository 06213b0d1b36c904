// Package descriptor is the immutable tag helper model.
//
// A TagHelperDescriptor is produced once by a Builder and never mutated afterwards; the
// exported fields are read-only by contract. Every descriptor carries a Checksum computed at
// build time over all of its structural content, and the checksum is what collections and
// caches use for identity.
package descriptor

import (
	"strings"

	"github.com/walteh/razortag/pkg/docs"
)

// CatchAllTagName is the tag name of a rule that applies to any tag.
const CatchAllTagName = "*"

type TagHelperDescriptor struct {
	Kind        Kind
	RuntimeKind RuntimeKind

	Name         string
	AssemblyName string
	DisplayName  string

	TypeName           string
	TypeNamespace      string
	TypeNameIdentifier string

	CaseSensitive             bool
	ClassifyAttributesOnly    bool
	IsFullyQualifiedNameMatch bool

	TagOutputHint    string
	AllowedChildTags []string

	TagMatchingRules []*TagMatchingRuleDescriptor
	BoundAttributes  []*BoundAttributeDescriptor

	Metadata      Metadata
	Documentation *docs.Descriptor

	Checksum Checksum
}

type TagMatchingRuleDescriptor struct {
	TagName       string
	ParentTag     string
	TagStructure  TagStructure
	CaseSensitive bool
	Attributes    []*RequiredAttributeDescriptor
}

type RequiredAttributeDescriptor struct {
	Name                 string
	NameComparison       NameComparison
	Value                string
	ValueComparison      ValueComparison
	IsDirectiveAttribute bool
	CaseSensitive        bool
	DisplayName          string
}

type BoundAttributeDescriptor struct {
	Name         string
	PropertyName string
	TypeName     string
	IsEnum       bool

	IsDictionary      bool
	IndexerNamePrefix string
	IndexerTypeName   string

	IsDirectiveAttribute bool
	IsWeaklyTyped        bool
	IsEditorRequired     bool
	CaseSensitive        bool

	DisplayName    string
	ContainingType string
	Documentation  *docs.Descriptor
	Shape          PropertyShape

	Parameters []*BoundAttributeParameterDescriptor
}

type BoundAttributeParameterDescriptor struct {
	Name                string
	PropertyName        string
	TypeName            string
	IsEnum              bool
	BindAttributeGetSet bool
	CaseSensitive       bool
	DisplayName         string
	Documentation       *docs.Descriptor
}

func (d *TagHelperDescriptor) String() string {
	return d.DisplayName
}

// Equal compares by checksum.
func (d *TagHelperDescriptor) Equal(other *TagHelperDescriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Checksum == other.Checksum
}

func (d *TagHelperDescriptor) IsComponent() bool {
	return d.Kind == KindComponent
}

func (d *TagHelperDescriptor) IsChildContent() bool {
	return d.Kind == KindChildContent
}

// BindMetadata returns the bind payload, or nil when d carries none.
func (d *TagHelperDescriptor) BindMetadata() *BindMetadata {
	m, _ := d.Metadata.(*BindMetadata)
	return m
}

// EventHandlerMetadata returns the event handler payload, or nil when d carries none.
func (d *TagHelperDescriptor) EventHandlerMetadata() *EventHandlerMetadata {
	m, _ := d.Metadata.(*EventHandlerMetadata)
	return m
}

// BoundAttribute finds a bound attribute by exact name using d's case sensitivity.
func (d *TagHelperDescriptor) BoundAttribute(name string) *BoundAttributeDescriptor {
	for _, a := range d.BoundAttributes {
		if equalFold(a.Name, name, d.CaseSensitive) {
			return a
		}
	}
	return nil
}

func (r *TagMatchingRuleDescriptor) IsCatchAll() bool {
	return r.TagName == CatchAllTagName
}

// IsStringProperty reports whether the attribute's value is a plain string.
func (a *BoundAttributeDescriptor) IsStringProperty() bool {
	return a.TypeName == "System.String" || a.TypeName == "string"
}

// IsBooleanProperty reports whether the attribute is a bool, which allows it to appear
// without a value.
func (a *BoundAttributeDescriptor) IsBooleanProperty() bool {
	return a.TypeName == "System.Boolean" || a.TypeName == "bool"
}

// Parameter finds a parameter by name.
func (a *BoundAttributeDescriptor) Parameter(name string) *BoundAttributeParameterDescriptor {
	for _, p := range a.Parameters {
		if equalFold(p.Name, name, p.CaseSensitive) {
			return p
		}
	}
	return nil
}

func equalFold(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}
