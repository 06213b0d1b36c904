package symbols

import (
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

// LoadGoPackages builds a Compilation from Go source.
//
// The packages matched by patterns form the compilation's assembly. Imported packages
// whose package comment carries `//razor:assembly <Name>` become referenced assemblies;
// other imports are ignored. Within a package:
//
//	//razor:assembly Microsoft.AspNetCore.Components   (package comment) assembly name
//	//razor:namespace Microsoft.AspNetCore.Components  (package comment) namespace, defaults to the import path
//	//razor:using Microsoft.AspNetCore.Components      (package comment) resolves unqualified names
//	//razor:attr EventHandler("onclick", typeof(MouseEventArgs), true, true)  (type or field comment)
//	//razor:implements Full.Interface.Name              (type comment)
//	//razor:abstract                                    (type comment)
//	//razor:readonly                                    (field comment)
//
// Exported struct fields are properties, an embedded struct is the base type, and
// interfaces are inferred from method sets.
func LoadGoPackages(ctx context.Context, dir string, patterns ...string) (*Compilation, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
		Env:     append(os.Environ(), "GO111MODULE=on"),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, errors.Errorf("no packages found in directory: %s", dir)
	}

	for _, pkg := range pkgs {
		for _, perr := range pkg.Errors {
			zerolog.Ctx(ctx).Debug().Str("package", pkg.PkgPath).Str("error", perr.Error()).Msg("package error")
		}
	}

	l := newLoader(ctx)
	return l.load(pkgs)
}

type packageInfo struct {
	pkg       *packages.Package
	assembly  *Assembly
	namespace string
	usings    []string
}

type pendingType struct {
	info *packageInfo
	obj  *types.TypeName
	typ  *Type
	spec *ast.TypeSpec
	doc  []*ast.CommentGroup
}

type loader struct {
	ctx        context.Context
	assemblies map[string]*Assembly
	order      []*Assembly
	infos      []*packageInfo
	objects    map[*types.TypeName]*Type
	pending    []*pendingType
}

func newLoader(ctx context.Context) *loader {
	return &loader{
		ctx:        ctx,
		assemblies: map[string]*Assembly{},
		objects:    map[*types.TypeName]*Type{},
	}
}

func (l *loader) load(roots []*packages.Package) (*Compilation, error) {
	rootSet := map[*packages.Package]bool{}
	for _, r := range roots {
		rootSet[r] = true
	}

	var all []*packages.Package
	packages.Visit(roots, nil, func(p *packages.Package) {
		all = append(all, p)
	})

	var compilation *Assembly
	for _, pkg := range all {
		info := l.packageInfo(pkg, rootSet[pkg])
		if info == nil {
			continue
		}
		l.infos = append(l.infos, info)
		if rootSet[pkg] && compilation == nil {
			compilation = info.assembly
		}
	}
	if compilation == nil {
		return nil, errors.New("no root package could be loaded")
	}

	for _, info := range l.infos {
		l.declareTypes(info)
	}
	for _, p := range l.pending {
		l.completeType(p)
	}

	var refs []*Assembly
	for _, a := range l.order {
		if a != compilation {
			refs = append(refs, a)
		}
	}

	zerolog.Ctx(l.ctx).Debug().
		Str("assembly", compilation.Name).
		Int("types", len(compilation.Types())).
		Int("references", len(refs)).
		Msg("loaded compilation from go source")

	return NewCompilation(compilation, refs...), nil
}

func (l *loader) packageInfo(pkg *packages.Package, isRoot bool) *packageInfo {
	if pkg.Types == nil || pkg.TypesInfo == nil {
		return nil
	}

	var docs []*ast.CommentGroup
	for _, f := range pkg.Syntax {
		docs = append(docs, f.Doc)
	}

	info := &packageInfo{pkg: pkg}
	var assemblyName string
	for _, d := range parseDirectives(docs...) {
		switch d.verb {
		case "assembly":
			assemblyName = d.arg
		case "namespace":
			info.namespace = d.arg
		case "using":
			info.usings = append(info.usings, d.arg)
		}
	}

	if assemblyName == "" {
		if !isRoot {
			return nil
		}
		assemblyName = pkg.PkgPath
		if pkg.Module != nil {
			assemblyName = pkg.Module.Path
		}
	}
	if info.namespace == "" {
		info.namespace = strings.ReplaceAll(pkg.PkgPath, "/", ".")
	}

	asm, ok := l.assemblies[assemblyName]
	if !ok {
		asm = NewAssembly(assemblyName)
		l.assemblies[assemblyName] = asm
		l.order = append(l.order, asm)
	}
	info.assembly = asm
	return info
}

func (l *loader) declareTypes(info *packageInfo) {
	for _, f := range info.pkg.Syntax {
		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || !ts.Name.IsExported() {
					continue
				}
				obj, ok := info.pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
				if !ok {
					continue
				}
				doc := []*ast.CommentGroup{ts.Doc}
				if len(gen.Specs) == 1 {
					doc = append(doc, gen.Doc)
				}

				t := &Type{
					Name:      obj.Name(),
					Namespace: info.namespace,
					Kind:      kindOf(obj.Type()),
					IsPublic:  true,
				}
				if named, ok := obj.Type().(*types.Named); ok && named.TypeParams() != nil {
					for i := 0; i < named.TypeParams().Len(); i++ {
						t.TypeParameters = append(t.TypeParameters, named.TypeParams().At(i).Obj().Name())
					}
				}
				info.assembly.AddType(t)
				l.objects[obj] = t
				l.pending = append(l.pending, &pendingType{info: info, obj: obj, typ: t, spec: ts, doc: doc})
			}
		}
	}
}

func kindOf(t types.Type) TypeKind {
	switch u := t.Underlying().(type) {
	case *types.Interface:
		return TypeKindInterface
	case *types.Signature:
		return TypeKindDelegate
	case *types.Basic:
		if u.Info()&types.IsInteger != 0 {
			return TypeKindEnum
		}
	}
	return TypeKindClass
}

func (l *loader) completeType(p *pendingType) {
	resolveAttr := l.resolver(p.info, true)
	resolveType := l.resolver(p.info, false)

	for _, d := range parseDirectives(p.doc...) {
		switch d.verb {
		case "attr":
			attr, err := parseAttribute(d.arg, resolveAttr, resolveType)
			if err != nil {
				l.skip(p.info, d.pos, err)
				continue
			}
			p.typ.Attributes = append(p.typ.Attributes, attr)
		case "abstract":
			p.typ.IsAbstract = true
		case "implements":
			if iface := l.lookup(resolveType(d.arg)); iface != nil {
				p.typ.Implement(iface)
			} else {
				zerolog.Ctx(l.ctx).Debug().Str("type", p.typ.FullName()).Str("interface", d.arg).Msg("unresolved interface")
			}
		}
	}

	switch u := p.obj.Type().Underlying().(type) {
	case *types.Struct:
		l.completeStruct(p, u)
	case *types.Interface:
		for i := 0; i < u.NumEmbeddeds(); i++ {
			if embedded := l.namedType(u.EmbeddedType(i)); embedded != nil {
				p.typ.Implement(embedded)
			}
		}
	}

	if p.typ.Kind != TypeKindInterface {
		for _, iface := range l.interfacesOf(p.obj) {
			if !containsType(p.typ.Interfaces, iface) {
				p.typ.Implement(iface)
			}
		}
	}
}

func (l *loader) completeStruct(p *pendingType, st *types.Struct) {
	fieldDocs := map[string][]*ast.CommentGroup{}
	if stx, ok := p.spec.Type.(*ast.StructType); ok {
		for _, f := range stx.Fields.List {
			for _, n := range f.Names {
				fieldDocs[n.Name] = append(fieldDocs[n.Name], f.Doc, f.Comment)
			}
		}
	}

	resolveAttr := l.resolver(p.info, true)
	resolveType := l.resolver(p.info, false)

	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Embedded() {
			if p.typ.BaseType == nil {
				if base := l.namedType(f.Type()); base != nil {
					p.typ.BaseType = base
				}
			}
			continue
		}
		if !f.Exported() {
			continue
		}

		name, kind, generic := l.typeName(f.Type())
		prop := &Property{
			Name:            f.Name(),
			TypeName:        name,
			TypeKind:        kind,
			IsEnum:          kind == TypeKindEnum,
			IsGenericTyped:  generic,
			HasPublicGetter: true,
			HasPublicSetter: true,
		}
		for _, d := range parseDirectives(fieldDocs[f.Name()]...) {
			switch d.verb {
			case "attr":
				attr, err := parseAttribute(d.arg, resolveAttr, resolveType)
				if err != nil {
					l.skip(p.info, d.pos, err)
					continue
				}
				prop.Attributes = append(prop.Attributes, attr)
			case "readonly":
				prop.HasPublicSetter = false
			}
		}
		p.typ.Properties = append(p.typ.Properties, prop)
	}
}

func (l *loader) skip(info *packageInfo, pos token.Pos, err error) {
	zerolog.Ctx(l.ctx).Warn().
		Str("position", info.pkg.Fset.Position(pos).String()).
		Err(err).
		Msg("skipping malformed razor directive")
}

// interfacesOf returns the loaded interface types obj satisfies, by value or pointer
// receiver, in declaration order. Empty interfaces are not reported.
func (l *loader) interfacesOf(obj *types.TypeName) []*Type {
	var out []*Type
	for _, p := range l.pending {
		if p.typ.Kind != TypeKindInterface || p.obj == obj {
			continue
		}
		iface, ok := p.obj.Type().Underlying().(*types.Interface)
		if !ok || iface.NumMethods() == 0 || p.typ.IsGeneric() {
			continue
		}
		if types.Implements(obj.Type(), iface) || types.Implements(types.NewPointer(obj.Type()), iface) {
			out = append(out, p.typ)
		}
	}
	return out
}

func (l *loader) namedType(t types.Type) *Type {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return nil
	}
	return l.objects[named.Origin().Obj()]
}

func (l *loader) lookup(fullName string) *Type {
	for _, a := range l.order {
		for _, t := range a.Types() {
			if t.FullName() == fullName || t.MetadataName() == fullName {
				return t
			}
		}
	}
	return nil
}

// resolver qualifies names written in directives. Qualified names pass through;
// unqualified ones are looked up in the package's own namespace, then in each using.
func (l *loader) resolver(info *packageInfo, attribute bool) nameResolver {
	var resolve nameResolver
	resolve = func(name string) string {
		if strings.Contains(name, "<") {
			parts := GenericTypeArguments(name)
			for i, a := range parts {
				parts[i] = resolve(a)
			}
			return resolve(GenericTypeDefinition(name)) + "<" + strings.Join(parts, ", ") + ">"
		}
		if strings.Contains(name, ".") {
			return name
		}
		if !attribute {
			if builtin, ok := builtinTypeNames[name]; ok {
				return builtin
			}
		}
		candidates := append([]string{info.namespace}, info.usings...)
		for _, ns := range candidates {
			if l.lookup(ns+"."+name) != nil {
				return ns + "." + name
			}
		}
		if len(info.usings) > 0 {
			return info.usings[0] + "." + name
		}
		return info.namespace + "." + name
	}
	return resolve
}

var builtinTypeNames = map[string]string{
	"string":  "System.String",
	"bool":    "System.Boolean",
	"int":     "System.Int32",
	"int8":    "System.SByte",
	"int16":   "System.Int16",
	"int32":   "System.Int32",
	"int64":   "System.Int64",
	"uint":    "System.UInt32",
	"uint8":   "System.Byte",
	"byte":    "System.Byte",
	"uint16":  "System.UInt16",
	"uint32":  "System.UInt32",
	"uint64":  "System.UInt64",
	"float32": "System.Single",
	"float64": "System.Double",
	"rune":    "System.Char",
	"any":     "System.Object",
	"object":  "System.Object",
	"error":   "System.Exception",
}

// typeName renders a Go type with the dotted names discovery expects.
func (l *loader) typeName(t types.Type) (name string, kind TypeKind, generic bool) {
	switch v := t.(type) {
	case *types.Basic:
		if n, ok := builtinTypeNames[v.Name()]; ok {
			return n, TypeKindStruct, false
		}
		return v.Name(), TypeKindStruct, false
	case *types.Pointer:
		return l.typeName(v.Elem())
	case *types.TypeParam:
		return v.Obj().Name(), TypeKindClass, true
	case *types.Slice:
		elem, _, g := l.typeName(v.Elem())
		return elem + "[]", TypeKindClass, g
	case *types.Array:
		elem, _, g := l.typeName(v.Elem())
		return elem + "[]", TypeKindClass, g
	case *types.Map:
		key, _, gk := l.typeName(v.Key())
		val, _, gv := l.typeName(v.Elem())
		return "System.Collections.Generic.IDictionary<" + key + ", " + val + ">", TypeKindInterface, gk || gv
	case *types.Interface:
		if v.Empty() {
			return "System.Object", TypeKindClass, false
		}
		return "System.Object", TypeKindInterface, false
	case *types.Signature:
		return l.delegateName(v)
	case *types.Named:
		return l.namedTypeName(v)
	case *types.Alias:
		return l.typeName(types.Unalias(v))
	}
	return t.String(), TypeKindClass, false
}

func (l *loader) namedTypeName(v *types.Named) (string, TypeKind, bool) {
	obj := v.Obj()
	var base string
	kind := kindOf(v)
	if known, ok := l.objects[v.Origin().Obj()]; ok {
		base = known.FullName()
		kind = known.Kind
	} else if obj.Pkg() == nil {
		if n, ok := builtinTypeNames[obj.Name()]; ok {
			return n, TypeKindClass, false
		}
		base = obj.Name()
	} else if obj.Pkg().Path() == "time" && obj.Name() == "Time" {
		return "System.DateTime", TypeKindStruct, false
	} else {
		base = strings.ReplaceAll(obj.Pkg().Path(), "/", ".") + "." + obj.Name()
	}

	args := v.TypeArgs()
	if args == nil || args.Len() == 0 {
		return base, kind, false
	}
	generic := false
	parts := make([]string, 0, args.Len())
	for i := 0; i < args.Len(); i++ {
		n, _, g := l.typeName(args.At(i))
		generic = generic || g
		parts = append(parts, n)
	}
	return base + "<" + strings.Join(parts, ", ") + ">", kind, generic
}

func (l *loader) delegateName(sig *types.Signature) (string, TypeKind, bool) {
	var parts []string
	generic := false
	for i := 0; i < sig.Params().Len(); i++ {
		n, _, g := l.typeName(sig.Params().At(i).Type())
		generic = generic || g
		parts = append(parts, n)
	}
	switch sig.Results().Len() {
	case 0:
		if len(parts) == 0 {
			return "System.Action", TypeKindDelegate, generic
		}
		return "System.Action<" + strings.Join(parts, ", ") + ">", TypeKindDelegate, generic
	default:
		n, _, g := l.typeName(sig.Results().At(0).Type())
		parts = append(parts, n)
		return "System.Func<" + strings.Join(parts, ", ") + ">", TypeKindDelegate, generic || g
	}
}

func containsType(list []*Type, t *Type) bool {
	for _, x := range list {
		if x == t {
			return true
		}
	}
	return false
}
