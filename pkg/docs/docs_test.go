package docs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/razortag/pkg/docs"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    *docs.Descriptor
		expected string
	}{
		{
			name:     "nil",
			input:    nil,
			expected: "",
		},
		{
			name:     "substitutes positional args",
			input:    docs.New(docs.BindElement, "value", "onchange"),
			expected: "Binds the provided expression to the 'value' attribute and a change event delegate to the 'onchange' attribute.",
		},
		{
			name:     "missing args are kept verbatim",
			input:    docs.New(docs.EventHandler, "@onclick"),
			expected: "Sets the '@onclick' attribute to the provided string or delegate value. A delegate value should be of type '{1}'.",
		},
		{
			name:     "no text for none",
			input:    docs.New(docs.None),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, docs.Format(tt.input))
		})
	}
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "EventHandlerTagHelper_StopPropagation", docs.EventHandlerStopPropagation.String())
	assert.Equal(t, "ID(200)", docs.ID(200).String())
	assert.False(t, docs.ID(200).Valid())
}
