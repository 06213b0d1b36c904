package producers

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"github.com/walteh/razortag/pkg/symbols"
)

// factory resolves a producer against a compilation. ok is false when a marker type the
// producer depends on is missing.
type factory func(c *symbols.Compilation) (p Producer, ok bool)

// requires builds a factory that needs marker to resolve before calling build.
func requires(marker string, build func(marker *symbols.Type) Producer) factory {
	return func(c *symbols.Compilation) (Producer, bool) {
		t := c.TypeByMetadataName(marker)
		if t == nil {
			return nil, false
		}
		return build(t), true
	}
}

var factories = map[ProducerKind]factory{
	ProducerDefault: requires(ITagHelperInterface, func(*symbols.Type) Producer {
		return newDefaultProducer()
	}),
	ProducerComponent: requires(IComponentInterface, func(*symbols.Type) Producer {
		return newComponentProducer()
	}),
	ProducerBind: requires(BindConverterType, newBindProducer),
	ProducerEventHandler: requires(EventHandlerAttribute, func(*symbols.Type) Producer {
		return newEventHandlerProducer()
	}),
	ProducerKey:        requires(IComponentInterface, newKeyProducer),
	ProducerRef:        requires(IComponentInterface, newRefProducer),
	ProducerRenderMode: requires(IComponentRenderModeInterface, newRenderModeProducer),
	ProducerSplat:      requires(IComponentInterface, newSplatProducer),
	ProducerFormName:   requires(RenderTreeBuilderType, newFormNameProducer),
}

// Registry is the set of producer kinds enabled for discovery.
type Registry struct {
	kinds []ProducerKind
}

// NewRegistry enables kinds, or every kind when none are given. Duplicates are ignored.
func NewRegistry(kinds ...ProducerKind) *Registry {
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	enabled := make([]ProducerKind, 0, len(kinds))
	for _, k := range kinds {
		if _, ok := factories[k]; ok && !slices.Contains(enabled, k) {
			enabled = append(enabled, k)
		}
	}
	slices.Sort(enabled)
	return &Registry{kinds: enabled}
}

func (r *Registry) Kinds() []ProducerKind {
	return slices.Clone(r.kinds)
}

// Resolve returns the enabled producers that apply to c, in kind order. Producers whose
// marker types are missing from c are left out.
func (r *Registry) Resolve(ctx context.Context, c *symbols.Compilation) []Producer {
	out := make([]Producer, 0, len(r.kinds))
	for _, k := range r.kinds {
		p, ok := factories[k](c)
		if !ok {
			zerolog.Ctx(ctx).Debug().Str("producer", k.String()).Msg("producer unavailable, marker type not found")
			continue
		}
		out = append(out, p)
	}
	return out
}
