package symbols

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const directivePrefix = "//razor:"

// directive is one `//razor:<verb> <arg>` comment line.
type directive struct {
	verb string
	arg  string
	pos  token.Pos
}

func parseDirectives(groups ...*ast.CommentGroup) []directive {
	var out []directive
	for _, cg := range groups {
		if cg == nil {
			continue
		}
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, directivePrefix) {
				continue
			}
			text := strings.TrimSpace(strings.TrimPrefix(c.Text, directivePrefix))
			verb, arg, _ := strings.Cut(text, " ")
			if verb == "" {
				continue
			}
			out = append(out, directive{verb: verb, arg: strings.TrimSpace(arg), pos: c.Pos()})
		}
	}
	return out
}

// nameResolver maps a possibly unqualified name written in a directive to a full name.
type nameResolver func(name string) string

// parseAttribute parses the argument of a `//razor:attr` directive. Two forms are
// accepted: a call, `Name("a", typeof(T), true)`, carrying positional arguments, and a
// composite literal, `Name{"a", Attributes: "x"}`, which may also carry named arguments.
// A bare name applies the attribute without arguments.
func parseAttribute(src string, resolveAttr, resolveType nameResolver) (*AttributeData, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, errors.Errorf("parsing attribute %q: %w", src, err)
	}

	var nameExpr ast.Expr
	var args []ast.Expr
	switch e := expr.(type) {
	case *ast.CallExpr:
		nameExpr, args = e.Fun, e.Args
	case *ast.CompositeLit:
		nameExpr, args = e.Type, e.Elts
	case *ast.Ident, *ast.SelectorExpr:
		nameExpr = e
	default:
		return nil, errors.Errorf("attribute %q: unsupported expression %T", src, expr)
	}

	name, ok := dottedName(nameExpr)
	if !ok {
		return nil, errors.Errorf("attribute %q: invalid attribute name", src)
	}
	if !strings.HasSuffix(name, "Attribute") {
		name += "Attribute"
	}
	out := &AttributeData{AttributeClass: resolveAttr(name)}

	for _, arg := range args {
		if kv, ok := arg.(*ast.KeyValueExpr); ok {
			key, ok := kv.Key.(*ast.Ident)
			if !ok {
				return nil, errors.Errorf("attribute %q: named argument key must be an identifier", src)
			}
			v, err := parseConstant(kv.Value, resolveType)
			if err != nil {
				return nil, errors.Errorf("attribute %q: argument %s: %w", src, key.Name, err)
			}
			out.Named(key.Name, v)
			continue
		}
		if len(out.NamedArguments) > 0 {
			return nil, errors.Errorf("attribute %q: positional argument after named argument", src)
		}
		v, err := parseConstant(arg, resolveType)
		if err != nil {
			return nil, errors.Errorf("attribute %q: %w", src, err)
		}
		out.ConstructorArguments = append(out.ConstructorArguments, v)
	}

	return out, nil
}

func parseConstant(e ast.Expr, resolveType nameResolver) (TypedConstant, error) {
	switch v := e.(type) {
	case *ast.BasicLit:
		switch v.Kind {
		case token.STRING:
			s, err := strconv.Unquote(v.Value)
			if err != nil {
				return TypedConstant{}, errors.Errorf("invalid string %s: %w", v.Value, err)
			}
			return String(s), nil
		case token.INT:
			n, err := strconv.ParseInt(v.Value, 0, 64)
			if err != nil {
				return TypedConstant{}, errors.Errorf("invalid int %s: %w", v.Value, err)
			}
			return Int(n), nil
		}
		return TypedConstant{}, errors.Errorf("unsupported literal %s", v.Value)
	case *ast.Ident:
		switch v.Name {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "nil", "null":
			return Null(), nil
		}
		return Enum(v.Name), nil
	case *ast.SelectorExpr:
		name, ok := dottedName(v)
		if !ok {
			return TypedConstant{}, errors.New("invalid enum member")
		}
		return Enum(name), nil
	case *ast.CallExpr:
		fn, ok := v.Fun.(*ast.Ident)
		if !ok || fn.Name != "typeof" || len(v.Args) != 1 {
			return TypedConstant{}, errors.New("only typeof(T) calls are allowed")
		}
		name, ok := typeExprName(v.Args[0])
		if !ok {
			return TypedConstant{}, errors.New("invalid typeof operand")
		}
		return TypeOf(resolveType(name)), nil
	}
	return TypedConstant{}, errors.Errorf("unsupported argument %T", e)
}

func dottedName(e ast.Expr) (string, bool) {
	switch v := e.(type) {
	case *ast.Ident:
		return v.Name, true
	case *ast.SelectorExpr:
		head, ok := dottedName(v.X)
		if !ok {
			return "", false
		}
		return head + "." + v.Sel.Name, true
	}
	return "", false
}

// typeExprName renders a typeof operand. Generic instantiations are written with Go
// index syntax, `EventCallback[MouseEventArgs]`, and rendered with angle brackets.
func typeExprName(e ast.Expr) (string, bool) {
	switch v := e.(type) {
	case *ast.IndexExpr:
		head, ok := dottedName(v.X)
		if !ok {
			return "", false
		}
		arg, ok := typeExprName(v.Index)
		if !ok {
			return "", false
		}
		return head + "<" + arg + ">", true
	case *ast.IndexListExpr:
		head, ok := dottedName(v.X)
		if !ok {
			return "", false
		}
		args := make([]string, 0, len(v.Indices))
		for _, idx := range v.Indices {
			arg, ok := typeExprName(idx)
			if !ok {
				return "", false
			}
			args = append(args, arg)
		}
		return head + "<" + strings.Join(args, ", ") + ">", true
	}
	return dottedName(e)
}
