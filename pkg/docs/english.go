package docs

var english = map[ID]string{
	BindFallback: "Binds the provided expression to an attribute and a change event, based on the naming of the bind attribute. " +
		"For example: <code>@bind-value=\"...\"</code> and <code>@bind-value:event=\"onchange\"</code> will assign the current value " +
		"of the expression to the 'value' attribute, and assign a delegate that attempts to set the value to the 'onchange' attribute.",
	BindFallbackFormat:          "Specifies a format to convert the value specified by the corresponding bind attribute. For example: <code>@bind-value:format=\"...\"</code> will apply a format string to the value specified in <code>@bind-value=\"...\"</code>. The format string can currently only be used with expressions of type <code>DateTime</code>.",
	BindFallbackEvent:           "Specifies the event handler name to attach for change notifications for the value provided by the '{0}' attribute.",
	BindElement:                 "Binds the provided expression to the '{0}' attribute and a change event delegate to the '{1}' attribute.",
	BindElementFormat:           "Specifies a format to convert the value specified by the '{0}' attribute. The format string can currently only be used with expressions of type <code>DateTime</code>.",
	BindElementEvent:            "Specifies the event handler name to attach for change notifications for the value provided by the '{0}' attribute.",
	BindElementCulture:          "Specifies the culture to use for conversions.",
	BindComponent:               "Binds the provided expression to the '{0}' property and a change event delegate to the '{1}' property of the component.",
	BindGet:                     "Specifies the expression to use for binding the value to the attribute.",
	BindSet:                     "Specifies the expression to use for updating the bound value when a new value is available.",
	BindAfter:                   "Specifies an action to run after the new value has been set.",
	ComponentParameter:          "Sets the '{0}' parameter of the '{1}' component.",
	ChildContent:                "Specifies the parameter name for the '{0}' child content expression.",
	EventHandler:                "Sets the '{0}' attribute to the provided string or delegate value. A delegate value should be of type '{1}'.",
	EventHandlerPreventDefault:  "Specifies whether to cancel (if cancelable) the default action that belongs to the '{0}' event.",
	EventHandlerStopPropagation: "Specifies whether to prevent further propagation of the '{0}' event in the capturing and bubbling phases.",
	Key:                         "Ensures that the component or element will be preserved across renders if (and only if) the supplied key value matches.",
	Ref:                         "Populates the specified field or property with a reference to the element or component.",
	RenderMode:                  "Specifies the render mode for a component.",
	Splat:                       "Merges a collection of attributes into the current element or component.",
	FormName:                    "Specifies the form name.",
}
