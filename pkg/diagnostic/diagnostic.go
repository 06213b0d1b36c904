// Package diagnostic reports problems found while binding a document: component-looking
// tags nothing bound, directive attributes no tag helper claims, required component
// parameters left unset, and rules whose tag structures disagree.
package diagnostic

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/razortag/pkg/binder"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/pipeline"
	"github.com/walteh/razortag/pkg/position"
	"gitlab.com/tozd/go/errors"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityHint    Severity = "hint"
)

// Code identifies the check that produced a diagnostic.
type Code string

const (
	UnknownComponent          Code = "unknown-component"
	UnknownDirectiveAttribute Code = "unknown-directive-attribute"
	MissingRequiredParameter  Code = "missing-required-parameter"
	ConflictingTagStructure   Code = "conflicting-tag-structure"
)

type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Range    position.Range
}

// Diagnostics are the findings for one document, grouped by severity in document order.
type Diagnostics struct {
	Path     string
	Errors   []Diagnostic
	Warnings []Diagnostic
	Hints    []Diagnostic
}

func (d *Diagnostics) add(diag Diagnostic) {
	switch diag.Severity {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Hints = append(d.Hints, diag)
	}
}

func (d *Diagnostics) Empty() bool {
	return len(d.Errors)+len(d.Warnings)+len(d.Hints) == 0
}

// All lists every diagnostic, errors first.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Hints))
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)
	return append(out, d.Hints...)
}

// Check inspects one matched document.
func Check(m pipeline.DocumentMatch) *Diagnostics {
	out := &Diagnostics{Path: m.Path}

	for _, t := range inDocumentOrder(m) {
		if t.Binding == nil {
			checkUnbound(out, m.Prefix, t)
		} else {
			checkBound(out, t)
		}
	}
	return out
}

// inDocumentOrder merges the bound and unbound tags back into one list.
func inDocumentOrder(m pipeline.DocumentMatch) []pipeline.TagMatch {
	out := make([]pipeline.TagMatch, 0, len(m.Tags)+len(m.Unbound))
	i, j := 0, 0
	for i < len(m.Tags) || j < len(m.Unbound) {
		if j == len(m.Unbound) || (i < len(m.Tags) && m.Tags[i].Tag.Offset < m.Unbound[j].Tag.Offset) {
			out = append(out, m.Tags[i])
			i++
		} else {
			out = append(out, m.Unbound[j])
			j++
		}
	}
	return out
}

func checkUnbound(out *Diagnostics, prefix string, t pipeline.TagMatch) {
	name := t.Tag.Name
	if prefix != "" {
		if len(name) <= len(prefix) || !strings.EqualFold(name[:len(prefix)], prefix) {
			// without the prefix the tag is plain markup
			return
		}
		name = name[len(prefix):]
	}
	if looksLikeComponent(name) {
		out.add(Diagnostic{
			Code:     UnknownComponent,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("found markup element with unexpected name %q; no discovered component is named that", name),
			Range:    t.Range,
		})
	}
	for _, a := range t.Tag.Attributes {
		if a.IsDirective() {
			out.add(unknownDirective(t, a.Name))
		}
	}
}

func checkBound(out *Diagnostics, t pipeline.TagMatch) {
	for _, c := range t.Binding.ClassifyAttributes() {
		if c.IsHTML() && c.Attribute.IsDirective() {
			out.add(unknownDirective(t, c.Attribute.Name))
		}
	}

	for _, d := range t.Binding.Descriptors() {
		if d.Kind != descriptor.KindComponent {
			continue
		}
		for _, a := range d.BoundAttributes {
			if !a.IsEditorRequired || a.Shape.IsChildContent || supplied(t.Binding, d, a) {
				continue
			}
			out.add(Diagnostic{
				Code:     MissingRequiredParameter,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("component %q expects a value for the parameter %q", d.Name, a.Name),
				Range:    t.Range,
			})
		}
	}

	for _, c := range t.Binding.StructureConflicts() {
		out.add(Diagnostic{
			Code:     ConflictingTagStructure,
			Severity: SeverityHint,
			Message: fmt.Sprintf("%s wants %s but %s wants %s; using %s",
				c.Winner.Descriptor.DisplayName, c.Winner.Rule.TagStructure,
				c.Loser.Descriptor.DisplayName, c.Loser.Rule.TagStructure,
				c.Winner.Rule.TagStructure),
			Range: t.Range,
		})
	}
}

func unknownDirective(t pipeline.TagMatch, name string) Diagnostic {
	return Diagnostic{
		Code:     UnknownDirectiveAttribute,
		Severity: SeverityError,
		Message:  fmt.Sprintf("the attribute %q on <%s> is not a known directive attribute", name, t.Tag.Name),
		Range:    t.Range,
	}
}

// supplied reports whether the tag sets a, directly or through @bind-<name>.
func supplied(b *binder.Binding, d *descriptor.TagHelperDescriptor, a *descriptor.BoundAttributeDescriptor) bool {
	bindName := "@bind-" + a.Name
	for _, attr := range b.Attributes {
		if m, ok := binder.MatchAttribute(d, attr.Name); ok && m.Attribute == a {
			return true
		}
		if attr.Name == bindName || strings.HasPrefix(attr.Name, bindName+":") {
			return true
		}
	}
	return false
}

// looksLikeComponent reports whether a tag name starts with an upper case letter, or has a
// dotted namespace, the way component tags are written.
func looksLikeComponent(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r) || strings.Contains(name, ".")
}

// lspSeverity numbers follow the language server protocol.
var lspSeverity = map[Severity]int{
	SeverityError:   1,
	SeverityWarning: 2,
	SeverityHint:    4,
}

type lspPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type lspRange struct {
	Start lspPosition `json:"start"`
	End   lspPosition `json:"end"`
}

type lspDiagnostic struct {
	Severity int      `json:"severity"`
	Code     Code     `json:"code"`
	Source   string   `json:"source"`
	Message  string   `json:"message"`
	Range    lspRange `json:"range"`
}

func toLSP(p position.Place) lspPosition {
	return lspPosition{Line: p.Line - 1, Character: p.Character - 1}
}

// FormatLSP renders the diagnostics of every document as a JSON object keyed by path,
// each value a list of language server diagnostics with zero-based positions.
func FormatLSP(all []*Diagnostics) ([]byte, error) {
	out := make(map[string][]lspDiagnostic, len(all))
	for _, ds := range all {
		if ds == nil {
			return nil, errors.New("diagnostics is nil")
		}
		list := make([]lspDiagnostic, 0, len(ds.Errors)+len(ds.Warnings)+len(ds.Hints))
		for _, d := range ds.All() {
			list = append(list, lspDiagnostic{
				Severity: lspSeverity[d.Severity],
				Code:     d.Code,
				Source:   "razortag",
				Message:  d.Message,
				Range:    lspRange{Start: toLSP(d.Range.Start), End: toLSP(d.Range.End)},
			})
		}
		out[ds.Path] = list
	}
	return json.MarshalIndent(out, "", "  ")
}
