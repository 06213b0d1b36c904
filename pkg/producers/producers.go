// Package producers discovers tag helper descriptors from symbol metadata.
//
// Each Producer handles one family of tag helpers. A producer contributes through one or
// both capabilities:
//
//	StaticProducer   once per assembly, gated on the assembly that defines a marker type
//	TypeProducer     once per public type that passes IsCandidateType
//
// Producers never fail because an input does not apply to them. They skip malformed
// attribute applications (recorded on Results) and only return errors for descriptors
// that could not be built, which indicates a producer bug.
package producers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/symbols"
)

// ProducerKind identifies a producer. The numeric order is the order producers run in,
// which is also the registration order matching falls back to on ties.
type ProducerKind uint8

const (
	ProducerDefault ProducerKind = iota
	ProducerComponent
	ProducerBind
	ProducerEventHandler
	ProducerKey
	ProducerRef
	ProducerRenderMode
	ProducerSplat
	ProducerFormName
)

// AllKinds lists every producer kind in run order.
var AllKinds = []ProducerKind{
	ProducerDefault,
	ProducerComponent,
	ProducerBind,
	ProducerEventHandler,
	ProducerKey,
	ProducerRef,
	ProducerRenderMode,
	ProducerSplat,
	ProducerFormName,
}

var producerKindNames = [...]string{
	ProducerDefault:      "default",
	ProducerComponent:    "component",
	ProducerBind:         "bind",
	ProducerEventHandler: "event-handler",
	ProducerKey:          "key",
	ProducerRef:          "ref",
	ProducerRenderMode:   "render-mode",
	ProducerSplat:        "splat",
	ProducerFormName:     "form-name",
}

func (k ProducerKind) String() string {
	if int(k) < len(producerKindNames) {
		return producerKindNames[k]
	}
	return fmt.Sprintf("ProducerKind(%d)", uint8(k))
}

// ParseProducerKind is the inverse of ProducerKind.String.
func ParseProducerKind(s string) (ProducerKind, bool) {
	for i, name := range producerKindNames {
		if name == s {
			return ProducerKind(i), true
		}
	}
	return 0, false
}

type Producer interface {
	Kind() ProducerKind
}

// StaticProducer emits descriptors that exist once per defining assembly.
type StaticProducer interface {
	Producer
	AddStaticTagHelpers(ctx context.Context, assembly *symbols.Assembly, results *Results) error
}

// TypeProducer emits descriptors for individual types.
type TypeProducer interface {
	Producer
	IsCandidateType(t *symbols.Type) bool
	AddTagHelpersForType(ctx context.Context, t *symbols.Type, results *Results) error
}

// Capability is the set of ways a producer contributes.
type Capability uint8

const (
	CapabilityStatic Capability = 1 << iota
	CapabilityTypes
)

func (c Capability) Has(x Capability) bool {
	return c&x == x
}

func Capabilities(p Producer) Capability {
	var c Capability
	if _, ok := p.(StaticProducer); ok {
		c |= CapabilityStatic
	}
	if _, ok := p.(TypeProducer); ok {
		c |= CapabilityTypes
	}
	return c
}

// Skip records an attribute application a producer ignored.
type Skip struct {
	Producer  ProducerKind
	Type      string
	Attribute string
	Reason    string
}

func (s Skip) String() string {
	return fmt.Sprintf("%s: %s on %s: %s", s.Producer, s.Attribute, s.Type, s.Reason)
}

// Results is the scratch output of producer calls. Discovery hands each type (and each
// assembly's static pass) a fresh Results and publishes it whole, so producers later in
// the run order see what earlier ones produced for the same type.
type Results struct {
	Descriptors []*descriptor.TagHelperDescriptor
	Skipped     []Skip
}

// Add builds b and appends the descriptor.
func (r *Results) Add(b *descriptor.Builder) error {
	d, err := b.Build()
	if err != nil {
		return err
	}
	r.Descriptors = append(r.Descriptors, d)
	return nil
}

// OfKind returns the descriptors produced so far with the given kind.
func (r *Results) OfKind(kind descriptor.Kind) []*descriptor.TagHelperDescriptor {
	var out []*descriptor.TagHelperDescriptor
	for _, d := range r.Descriptors {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func (r *Results) skip(ctx context.Context, kind ProducerKind, t *symbols.Type, a *symbols.AttributeData, format string, args ...any) {
	s := Skip{
		Producer:  kind,
		Type:      t.FullName(),
		Attribute: a.String(),
		Reason:    fmt.Sprintf(format, args...),
	}
	r.Skipped = append(r.Skipped, s)

	zerolog.Ctx(ctx).Debug().
		Str("producer", kind.String()).
		Str("type", s.Type).
		Str("attribute", s.Attribute).
		Str("reason", s.Reason).
		Msg("skipping malformed attribute")
}
