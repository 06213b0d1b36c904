package descriptor

// MetadataKind identifies a Metadata variant.
type MetadataKind uint8

const (
	MetadataNone MetadataKind = iota
	MetadataBind
	MetadataEventHandler
	MetadataComponent
	MetadataChildContent
)

// Metadata is the closed set of kind specific payloads a descriptor can carry.
type Metadata interface {
	MetadataKind() MetadataKind
	writeTo(h *hasher)
}

// BindTarget says what a bind tag helper binds to.
type BindTarget uint8

const (
	BindTargetElement BindTarget = iota
	BindTargetComponent
	// BindTargetFallback is the catch-all @bind-... helper; it yields to any other bind.
	BindTargetFallback
)

func (t BindTarget) String() string {
	switch t {
	case BindTargetElement:
		return "element"
	case BindTargetComponent:
		return "component"
	case BindTargetFallback:
		return "fallback"
	}
	return "unknown"
}

// BindMetadata describes the attribute pair a bind tag helper expands to.
type BindMetadata struct {
	Target              BindTarget
	ValueAttribute      string
	ChangeAttribute     string
	ExpressionAttribute string
	// TypeAttribute is the value of the input type attribute the descriptor is
	// constrained to, empty when it applies to any type.
	TypeAttribute      string
	IsInvariantCulture bool
	Format             string
}

func (*BindMetadata) MetadataKind() MetadataKind { return MetadataBind }

// IsTypeSpecific reports whether the descriptor only applies to one input type.
func (m *BindMetadata) IsTypeSpecific() bool { return m.TypeAttribute != "" }

func (m *BindMetadata) IsFallback() bool { return m.Target == BindTargetFallback }

func (m *BindMetadata) writeTo(h *hasher) {
	h.u8(uint8(m.Target))
	h.str(m.ValueAttribute)
	h.str(m.ChangeAttribute)
	h.str(m.ExpressionAttribute)
	h.str(m.TypeAttribute)
	h.bool(m.IsInvariantCulture)
	h.str(m.Format)
}

// EventHandlerMetadata carries the event args type of an event handler tag helper.
type EventHandlerMetadata struct {
	EventArgsType string
}

func (*EventHandlerMetadata) MetadataKind() MetadataKind { return MetadataEventHandler }

func (m *EventHandlerMetadata) writeTo(h *hasher) {
	h.str(m.EventArgsType)
}

// ComponentMetadata describes a component's generic shape.
type ComponentMetadata struct {
	IsGeneric      bool
	TypeParameters []string
}

func (*ComponentMetadata) MetadataKind() MetadataKind { return MetadataComponent }

func (m *ComponentMetadata) writeTo(h *hasher) {
	h.bool(m.IsGeneric)
	h.strs(m.TypeParameters)
}

// ChildContentMetadata names the context parameter of a child content tag helper.
type ChildContentMetadata struct {
	ParameterName string
}

func (*ChildContentMetadata) MetadataKind() MetadataKind { return MetadataChildContent }

func (m *ChildContentMetadata) writeTo(h *hasher) {
	h.str(m.ParameterName)
}

// PropertyShape records what a component parameter's type looks like to the consumers
// that care (bind inference, child content).
type PropertyShape struct {
	IsEventCallback             bool
	IsDelegate                  bool
	IsChildContent              bool
	IsParameterizedChildContent bool
	IsGenericTyped              bool
}

func (s PropertyShape) writeTo(h *hasher) {
	h.bool(s.IsEventCallback)
	h.bool(s.IsDelegate)
	h.bool(s.IsChildContent)
	h.bool(s.IsParameterizedChildContent)
	h.bool(s.IsGenericTyped)
}
