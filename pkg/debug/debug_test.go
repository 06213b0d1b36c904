package debug

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFuncName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		pkg      string
		function string
	}{
		{"function", "github.com/walteh/razortag/pkg/binder.NewBinder", "github.com/walteh/razortag/pkg/binder", "NewBinder"},
		{"pointer method", "github.com/walteh/razortag/pkg/binder.(*Binder).GetBinding", "github.com/walteh/razortag/pkg/binder", "(*Binder).GetBinding"},
		{"closure", "github.com/walteh/razortag/pkg/pipeline.(*Engine).MatchDocuments.func1", "github.com/walteh/razortag/pkg/pipeline", "(*Engine).MatchDocuments.func1"},
		{"no path", "main.main", "main", "main"},
		{"no dot", "weird", "weird", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, fn := SplitFuncName(tt.input)
			assert.Equal(t, tt.pkg, pkg)
			assert.Equal(t, tt.function, fn)
		})
	}
}

func TestFormatCaller(t *testing.T) {
	assert.Equal(t, "github.com/x/y:file.go:12", FormatCaller("github.com/x/y", "/src/y/file.go", 12, false))
	assert.Equal(t, "main:main.go:3", FormatCaller("main", "main.go", 3, false))

	colored := FormatCaller("main", "/a/main.go", 3, true)
	assert.Contains(t, colored, "main.go")
	assert.Contains(t, colored, "3")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, zerolog.InfoLevel, false)

	logger.Debug().Msg("hidden")
	logger.Info().Str("run", "abc").Msg("discovered")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "discovered")
	assert.Contains(t, out, "run=abc")
}
