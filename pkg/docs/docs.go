// Package docs holds the documentation ids attached to tag helpers, bound attributes and
// their parameters. Each id has a positional format; interpreting it is left to whoever
// renders hover text, a default English table is provided for the CLI and tests.
package docs

import (
	"fmt"
	"strings"
)

// ID identifies a documentation entry.
type ID uint8

const (
	None ID = iota
	BindFallback
	BindFallbackFormat
	BindFallbackEvent
	BindElement
	BindElementFormat
	BindElementEvent
	BindElementCulture
	BindComponent
	BindGet
	BindSet
	BindAfter
	ComponentParameter
	ChildContent
	EventHandler
	EventHandlerPreventDefault
	EventHandlerStopPropagation
	Key
	Ref
	RenderMode
	Splat
	FormName
)

var names = [...]string{
	None:                        "None",
	BindFallback:                "BindTagHelper_Fallback",
	BindFallbackFormat:          "BindTagHelper_Fallback_Format",
	BindFallbackEvent:           "BindTagHelper_Fallback_Event",
	BindElement:                 "BindTagHelper_Element",
	BindElementFormat:           "BindTagHelper_Element_Format",
	BindElementEvent:            "BindTagHelper_Element_Event",
	BindElementCulture:          "BindTagHelper_Element_Culture",
	BindComponent:               "BindTagHelper_Component",
	BindGet:                     "BindTagHelper_Get",
	BindSet:                     "BindTagHelper_Set",
	BindAfter:                   "BindTagHelper_After",
	ComponentParameter:          "ComponentParameter",
	ChildContent:                "ChildContentParameterName",
	EventHandler:                "EventHandlerTagHelper",
	EventHandlerPreventDefault:  "EventHandlerTagHelper_PreventDefault",
	EventHandlerStopPropagation: "EventHandlerTagHelper_StopPropagation",
	Key:                         "KeyTagHelper",
	Ref:                         "RefTagHelper",
	RenderMode:                  "RenderModeTagHelper",
	Splat:                       "SplatTagHelper",
	FormName:                    "FormNameTagHelper",
}

func (id ID) String() string {
	if int(id) < len(names) {
		return names[id]
	}
	return fmt.Sprintf("ID(%d)", uint8(id))
}

// Valid reports whether id is one of the declared ids.
func (id ID) Valid() bool {
	return int(id) < len(names)
}

// Descriptor is a documentation id plus the positional arguments its format expects.
// Arguments are strings so descriptors hash and serialize without reflection.
type Descriptor struct {
	ID   ID
	Args []string
}

// New creates a descriptor for id.
func New(id ID, args ...string) *Descriptor {
	return &Descriptor{ID: id, Args: args}
}

func (d *Descriptor) String() string {
	if d == nil {
		return ""
	}
	return Format(d)
}

// Format renders d with the default English table. Missing arguments render as "{n}".
func Format(d *Descriptor) string {
	if d == nil {
		return ""
	}
	format, ok := english[d.ID]
	if !ok {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '{' {
			sb.WriteByte(c)
			continue
		}
		end := strings.IndexByte(format[i:], '}')
		if end < 0 {
			sb.WriteString(format[i:])
			break
		}
		var n int
		if _, err := fmt.Sscanf(format[i+1:i+end], "%d", &n); err != nil || n >= len(d.Args) {
			sb.WriteString(format[i : i+end+1])
		} else {
			sb.WriteString(d.Args[n])
		}
		i += end
	}
	return sb.String()
}
