package symbols

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

type ConstantKind uint8

const (
	ConstantNull ConstantKind = iota
	ConstantString
	ConstantBool
	ConstantInt
	ConstantType
	ConstantEnum
)

func (k ConstantKind) String() string {
	switch k {
	case ConstantString:
		return "string"
	case ConstantBool:
		return "bool"
	case ConstantInt:
		return "int"
	case ConstantType:
		return "type"
	case ConstantEnum:
		return "enum"
	default:
		return "null"
	}
}

// TypedConstant is one attribute argument value.
type TypedConstant struct {
	Kind  ConstantKind
	Value any
}

func String(s string) TypedConstant    { return TypedConstant{Kind: ConstantString, Value: s} }
func Bool(b bool) TypedConstant        { return TypedConstant{Kind: ConstantBool, Value: b} }
func Int(n int64) TypedConstant        { return TypedConstant{Kind: ConstantInt, Value: n} }
func TypeOf(name string) TypedConstant { return TypedConstant{Kind: ConstantType, Value: name} }
func Enum(member string) TypedConstant { return TypedConstant{Kind: ConstantEnum, Value: member} }
func Null() TypedConstant              { return TypedConstant{Kind: ConstantNull} }

// AsString accepts strings and nulls; a null string argument is a valid "not set".
func (c TypedConstant) AsString() (string, bool) {
	switch c.Kind {
	case ConstantString:
		s, ok := c.Value.(string)
		return s, ok
	case ConstantNull:
		return "", true
	}
	return "", false
}

func (c TypedConstant) AsBool() (bool, bool) {
	if c.Kind != ConstantBool {
		return false, false
	}
	b, ok := c.Value.(bool)
	return b, ok
}

func (c TypedConstant) AsType() (string, bool) {
	if c.Kind != ConstantType {
		return "", false
	}
	s, ok := c.Value.(string)
	return s, ok && s != ""
}

// AsEnum returns the enum member name, without any type qualifier.
func (c TypedConstant) AsEnum() (string, bool) {
	if c.Kind != ConstantEnum {
		return "", false
	}
	s, ok := c.Value.(string)
	if !ok {
		return "", false
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return s, true
}

func (c TypedConstant) String() string {
	switch c.Kind {
	case ConstantString:
		return fmt.Sprintf("%q", c.Value)
	case ConstantType:
		return fmt.Sprintf("typeof(%v)", c.Value)
	case ConstantNull:
		return "null"
	default:
		return fmt.Sprint(c.Value)
	}
}

// AttributeData is one application of a custom attribute.
type AttributeData struct {
	AttributeClass       string
	ConstructorArguments []TypedConstant
	NamedArguments       map[string]TypedConstant
}

// Named sets a named argument and returns a.
func (a *AttributeData) Named(name string, value TypedConstant) *AttributeData {
	if a.NamedArguments == nil {
		a.NamedArguments = map[string]TypedConstant{}
	}
	a.NamedArguments[name] = value
	return a
}

// NamedString returns a named string argument, ok is false when absent or not a string.
func (a *AttributeData) NamedString(name string) (string, bool) {
	v, ok := a.NamedArguments[name]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (a *AttributeData) String() string {
	parts := make([]string, 0, len(a.ConstructorArguments)+len(a.NamedArguments))
	for _, arg := range a.ConstructorArguments {
		parts = append(parts, arg.String())
	}
	for _, k := range slices.Sorted(maps.Keys(a.NamedArguments)) {
		parts = append(parts, k+": "+a.NamedArguments[k].String())
	}
	return a.AttributeClass + "(" + strings.Join(parts, ", ") + ")"
}

func filterAttributes(attrs []*AttributeData, class string) []*AttributeData {
	var out []*AttributeData
	for _, a := range attrs {
		if a.AttributeClass == class {
			out = append(out, a)
		}
	}
	return out
}
