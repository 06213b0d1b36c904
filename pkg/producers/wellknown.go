package producers

// Metadata names of the framework types discovery keys off.
const (
	componentsNamespace = "Microsoft.AspNetCore.Components"
	tagHelpersNamespace = "Microsoft.AspNetCore.Razor.TagHelpers"

	// ComponentsAssemblyName is the assembly the framework level component tag helpers
	// (fallback bind, key, ref, splat, render mode, form name) are attributed to.
	ComponentsAssemblyName = componentsNamespace

	ITagHelperInterface            = tagHelpersNamespace + ".ITagHelper"
	HtmlTargetElementAttribute     = tagHelpersNamespace + ".HtmlTargetElementAttribute"
	HtmlAttributeNameAttribute     = tagHelpersNamespace + ".HtmlAttributeNameAttribute"
	HtmlAttributeNotBoundAttribute = tagHelpersNamespace + ".HtmlAttributeNotBoundAttribute"
	OutputElementHintAttribute     = tagHelpersNamespace + ".OutputElementHintAttribute"
	RestrictChildrenAttribute      = tagHelpersNamespace + ".RestrictChildrenAttribute"

	IComponentInterface           = componentsNamespace + ".IComponent"
	IComponentRenderModeInterface = componentsNamespace + ".IComponentRenderMode"
	ParameterAttribute            = componentsNamespace + ".ParameterAttribute"
	EditorRequiredAttribute       = componentsNamespace + ".EditorRequiredAttribute"
	EventCallbackType             = componentsNamespace + ".EventCallback"
	RenderFragmentType            = componentsNamespace + ".RenderFragment"
	BindConverterType             = componentsNamespace + ".BindConverter"
	BindElementAttribute          = componentsNamespace + ".BindElementAttribute"
	BindInputElementAttribute     = componentsNamespace + ".BindInputElementAttribute"
	EventHandlerAttribute         = componentsNamespace + ".EventHandlerAttribute"
	RenderTreeBuilderType         = componentsNamespace + ".Rendering.RenderTreeBuilder"

	// The synthetic type names the framework tag helpers report.
	bindTypeName       = componentsNamespace + ".Bind"
	keyTypeName        = componentsNamespace + ".Key"
	refTypeName        = componentsNamespace + ".Ref"
	splatTypeName      = componentsNamespace + ".Attributes"
	renderModeTypeName = componentsNamespace + ".RenderMode"
	formNameTypeName   = componentsNamespace + ".FormName"
)

const (
	objectTypeName      = "System.Object"
	stringTypeName      = "System.String"
	booleanTypeName     = "System.Boolean"
	delegateTypeName    = "System.Delegate"
	systemTypeTypeName  = "System.Type"
	cultureInfoTypeName = "System.Globalization.CultureInfo"
)
