// Package symbolstest builds in-memory compilations shaped like the component framework,
// for tests and demos of discovery.
package symbolstest

import (
	"github.com/walteh/razortag/pkg/symbols"
)

const (
	ComponentsAssembly = "Microsoft.AspNetCore.Components"
	WebAssembly        = "Microsoft.AspNetCore.Components.Web"
	TagHelpersAssembly = "Microsoft.AspNetCore.Razor"

	componentsNamespace = "Microsoft.AspNetCore.Components"
	webNamespace        = "Microsoft.AspNetCore.Components.Web"
	tagHelpersNamespace = "Microsoft.AspNetCore.Razor.TagHelpers"
)

// Components returns the core component assembly: marker interfaces, parameter
// attributes, EventCallback, RenderFragment and the bind converter.
func Components() *symbols.Assembly {
	a := symbols.NewAssembly(ComponentsAssembly)

	icomponent := a.NewType(componentsNamespace, "IComponent", symbols.TypeKindInterface)
	a.NewType(componentsNamespace, "IComponentRenderMode", symbols.TypeKindInterface)

	base := a.NewType(componentsNamespace, "ComponentBase", symbols.TypeKindClass).Implement(icomponent)
	base.IsAbstract = true

	for _, name := range []string{
		"ParameterAttribute",
		"EditorRequiredAttribute",
		"EventHandlerAttribute",
		"BindElementAttribute",
		"BindInputElementAttribute",
		"BindConverter",
	} {
		a.NewType(componentsNamespace, name, symbols.TypeKindClass)
	}

	a.NewType(componentsNamespace, "EventCallback", symbols.TypeKindStruct)
	a.NewType(componentsNamespace, "EventCallback", symbols.TypeKindStruct).TypeParameters = []string{"TValue"}
	a.NewType(componentsNamespace, "RenderFragment", symbols.TypeKindDelegate)
	a.NewType(componentsNamespace, "RenderFragment", symbols.TypeKindDelegate).TypeParameters = []string{"TValue"}
	a.NewType(componentsNamespace+".Rendering", "RenderTreeBuilder", symbols.TypeKindClass)

	return a
}

// Web returns the web assembly: DOM event handlers and element bind mappings.
func Web() *symbols.Assembly {
	a := symbols.NewAssembly(WebAssembly)

	a.NewType(webNamespace, "MouseEventArgs", symbols.TypeKindClass)
	a.NewType(webNamespace, "ChangeEventArgs", symbols.TypeKindClass)

	handlers := a.NewType(webNamespace, "EventHandlers", symbols.TypeKindClass)
	handlers.Attribute(componentsNamespace+".EventHandlerAttribute",
		symbols.String("onclick"), symbols.TypeOf(webNamespace+".MouseEventArgs"), symbols.Bool(true), symbols.Bool(true))
	handlers.Attribute(componentsNamespace+".EventHandlerAttribute",
		symbols.String("onchange"), symbols.TypeOf(webNamespace+".ChangeEventArgs"))

	binds := a.NewType(webNamespace, "BindAttributes", symbols.TypeKindClass)
	binds.Attribute(componentsNamespace+".BindElementAttribute",
		symbols.String("select"), symbols.Null(), symbols.String("value"), symbols.String("onchange"))
	binds.Attribute(componentsNamespace+".BindInputElementAttribute",
		symbols.Null(), symbols.Null(), symbols.String("value"), symbols.String("onchange"), symbols.Bool(false), symbols.Null())
	binds.Attribute(componentsNamespace+".BindInputElementAttribute",
		symbols.String("checkbox"), symbols.Null(), symbols.String("checked"), symbols.String("onchange"), symbols.Bool(false), symbols.Null())

	return a
}

// TagHelpers returns the assembly defining ITagHelper and its attributes.
func TagHelpers() *symbols.Assembly {
	a := symbols.NewAssembly(TagHelpersAssembly)
	a.NewType(tagHelpersNamespace, "ITagHelper", symbols.TypeKindInterface)
	for _, name := range []string{
		"HtmlTargetElementAttribute",
		"HtmlAttributeNameAttribute",
		"HtmlAttributeNotBoundAttribute",
		"OutputElementHintAttribute",
		"RestrictChildrenAttribute",
	} {
		a.NewType(tagHelpersNamespace, name, symbols.TypeKindClass)
	}
	return a
}

// Compilation wraps app with references to every framework assembly.
func Compilation(app *symbols.Assembly) *symbols.Compilation {
	return symbols.NewCompilation(app, Components(), Web(), TagHelpers())
}

// Interface looks up a framework interface by full name so tests can implement it.
func Interface(c *symbols.Compilation, fullName string) *symbols.Type {
	t := c.TypeByMetadataName(fullName)
	if t == nil {
		panic("symbolstest: unknown type " + fullName)
	}
	return t
}
