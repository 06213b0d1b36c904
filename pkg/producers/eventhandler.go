package producers

import (
	"context"

	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/docs"
	"github.com/walteh/razortag/pkg/symbols"
	"go.uber.org/multierr"
)

type EventHandlerProducer struct{}

func newEventHandlerProducer() Producer {
	return &EventHandlerProducer{}
}

func (p *EventHandlerProducer) Kind() ProducerKind {
	return ProducerEventHandler
}

func (p *EventHandlerProducer) IsCandidateType(t *symbols.Type) bool {
	return t.HasAttribute(EventHandlerAttribute)
}

func (p *EventHandlerProducer) AddTagHelpersForType(ctx context.Context, t *symbols.Type, results *Results) error {
	var errs error
	for _, a := range t.AttributesOf(EventHandlerAttribute) {
		spec, ok := decodeEventHandler(a)
		if !ok {
			results.skip(ctx, ProducerEventHandler, t, a, "expected (name, eventArgsType) or (name, eventArgsType, bool, bool), got %d arguments", len(a.ConstructorArguments))
			continue
		}
		multierr.AppendInto(&errs, results.Add(eventHandlerBuilder(t, spec)))
	}
	return errs
}

type eventHandler struct {
	attribute             string
	eventArgsType         string
	enablePreventDefault  bool
	enableStopPropagation bool
}

// decodeEventHandler reads (attributeName, eventArgsType) or (attributeName,
// eventArgsType, enablePreventDefault, enableStopPropagation).
//
// In the four argument form the third argument lands on stop propagation and the fourth
// on prevent default. Generated output depends on that mapping so it is kept as is.
func decodeEventHandler(a *symbols.AttributeData) (eventHandler, bool) {
	args := a.ConstructorArguments
	if len(args) != 2 && len(args) != 4 {
		return eventHandler{}, false
	}

	var spec eventHandler
	var ok bool
	if spec.attribute, ok = args[0].AsString(); !ok || spec.attribute == "" {
		return eventHandler{}, false
	}
	if spec.eventArgsType, ok = args[1].AsType(); !ok {
		return eventHandler{}, false
	}
	if len(args) == 4 {
		if spec.enableStopPropagation, ok = args[2].AsBool(); !ok {
			return eventHandler{}, false
		}
		if spec.enablePreventDefault, ok = args[3].AsBool(); !ok {
			return eventHandler{}, false
		}
	}
	return spec, true
}

func eventHandlerBuilder(t *symbols.Type, spec eventHandler) *descriptor.Builder {
	attributeName := "@" + spec.attribute
	callbackType := EventCallbackType + "<" + spec.eventArgsType + ">"

	b := descriptor.NewBuilder(descriptor.KindEventHandler, spec.attribute, t.Assembly().Name)
	b.SetTypeName(t.FullName(), t.Namespace, t.Name)
	b.CaseSensitive = true
	b.ClassifyAttributesOnly = true
	b.SetDocumentation(docs.New(docs.EventHandler, attributeName, callbackType))
	b.SetMetadata(&descriptor.EventHandlerMetadata{EventArgsType: spec.eventArgsType})

	b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
		r.TagName = descriptor.CatchAllTagName
		r.RequireDirectiveAttribute(attributeName)
	})
	if spec.enablePreventDefault {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = descriptor.CatchAllTagName
			r.RequireDirectiveAttribute(attributeName + ":preventDefault")
		})
	}
	if spec.enableStopPropagation {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = descriptor.CatchAllTagName
			r.RequireDirectiveAttribute(attributeName + ":stopPropagation")
		})
	}

	b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
		a.Name = attributeName
		a.PropertyName = spec.attribute
		a.TypeName = callbackType
		a.IsWeaklyTyped = true
		a.IsDirectiveAttribute = true
		a.Documentation = docs.New(docs.EventHandler, attributeName, callbackType)
		a.Shape.IsEventCallback = true

		if spec.enablePreventDefault {
			a.BindParameter(func(p *descriptor.ParameterBuilder) {
				p.Name = "preventDefault"
				p.PropertyName = "PreventDefault"
				p.TypeName = booleanTypeName
				p.Documentation = docs.New(docs.EventHandlerPreventDefault, attributeName)
			})
		}
		if spec.enableStopPropagation {
			a.BindParameter(func(p *descriptor.ParameterBuilder) {
				p.Name = "stopPropagation"
				p.PropertyName = "StopPropagation"
				p.TypeName = booleanTypeName
				p.Documentation = docs.New(docs.EventHandlerStopPropagation, attributeName)
			})
		}
	})

	return b
}
