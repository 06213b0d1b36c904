package discover

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/razortag/pkg/pipeline"
	"github.com/walteh/razortag/pkg/producers"
	"github.com/walteh/razortag/pkg/project"
	"github.com/walteh/razortag/pkg/symbols"
	"github.com/walteh/razortag/pkg/symbols/symbolstest"
)

func counterSnapshot(t *testing.T, opts pipeline.Options) (*pipeline.Engine, *pipeline.Snapshot) {
	t.Helper()
	app := symbols.NewAssembly("App")
	c := symbolstest.Compilation(app)
	counter := app.NewType("App", "Counter", symbols.TypeKindClass).
		Implement(symbolstest.Interface(c, producers.IComponentInterface))
	counter.Property("Value", "System.Int32").Attribute(producers.ParameterAttribute)
	counter.Property("ValueChanged", "Microsoft.AspNetCore.Components.EventCallback<System.Int32>").
		Attribute(producers.ParameterAttribute)

	e := pipeline.New(opts)
	snap, _, err := e.Discover(context.Background(), c)
	require.NoError(t, err)
	return e, snap
}

func TestPrint(t *testing.T) {
	color.NoColor = true
	_, snap := counterSnapshot(t, pipeline.Options{})

	var out bytes.Buffer
	Print(&out, snap, false)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, snap.Result.Merged.Count()+1)
	assert.Contains(t, lines[0], "App.Counter")
	assert.Contains(t, lines[0], "<Counter>")
	assert.Contains(t, out.String(), "<App.Counter>")
	assert.Contains(t, out.String(), "<* @onclick>")

	summary := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(summary, snap.Checksum().Short()))
	assert.Contains(t, summary, "compilation")

	out.Reset()
	Print(&out, snap, true)
	assert.Contains(t, out.String(), "System.Int32 Counter.Value")
	assert.Greater(t, len(strings.Split(out.String(), "\n")), len(lines)+1)
}

func TestHandler_RunFromCache(t *testing.T) {
	color.NoColor = true
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/razortag.hcl", []byte("cache {\n  dir = \".cache\"\n}\n"), 0o644))

	p, err := project.Open(context.Background(), fs, "/proj", "")
	require.NoError(t, err)

	app := symbols.NewAssembly("App")
	c := symbolstest.Compilation(app)
	app.NewType("App", "Counter", symbols.TypeKindClass).
		Implement(symbolstest.Interface(c, producers.IComponentInterface))
	snap, _, err := p.Engine().Discover(context.Background(), c)
	require.NoError(t, err)

	me := &Handler{flags: &project.Flags{Dir: "/proj"}, fs: fs, fromCache: snap.Checksum().String()}

	var out bytes.Buffer
	require.NoError(t, me.Run(context.Background(), &out))
	assert.Contains(t, out.String(), "App.Counter")
	assert.Contains(t, out.String(), snap.Checksum().Short())
	assert.Contains(t, out.String(), "0 compilation")
}
