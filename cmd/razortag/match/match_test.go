package match

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/razortag/pkg/cache"
	"github.com/walteh/razortag/pkg/discovery"
	"github.com/walteh/razortag/pkg/producers"
	"github.com/walteh/razortag/pkg/project"
	"github.com/walteh/razortag/pkg/symbols"
	"github.com/walteh/razortag/pkg/symbols/symbolstest"
)

// seedProject writes a project whose tag helpers are already cached, so the command runs
// without compiling.
func seedProject(t *testing.T) (afero.Fs, string) {
	t.Helper()
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	app := symbols.NewAssembly("App")
	c := symbolstest.Compilation(app)
	counter := app.NewType("App", "Counter", symbols.TypeKindClass).
		Implement(symbolstest.Interface(c, producers.IComponentInterface))
	counter.Property("Value", "System.Int32").Attribute(producers.ParameterAttribute)
	counter.Property("ValueChanged", "Microsoft.AspNetCore.Components.EventCallback<System.Int32>").
		Attribute(producers.ParameterAttribute)

	res, err := discovery.New(producers.NewRegistry(), 1).Discover(ctx, c)
	require.NoError(t, err)
	key, err := cache.NewStore(fs, "/proj/.cache").Put(ctx, res.Merged)
	require.NoError(t, err)

	files := map[string]string{
		"/proj/razortag.yaml":       "documents: [\"**/*.razor\"]\ncache:\n  dir: .cache\n",
		"/proj/Pages/Index.razor":   `<Counter @bind-Value="count" class="wide" /><p>plain</p>`,
		"/proj/Pages/Plain.razor":   `<div><span>text</span></div>`,
		"/proj/Shared/Button.razor": `<button @onclick="Go">go</button>`,
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs, key.String()
}

func TestHandler_Run(t *testing.T) {
	color.NoColor = true
	fs, key := seedProject(t)

	me := &Handler{flags: &project.Flags{Dir: "/proj"}, fs: fs, fromCache: key, attributes: true}

	var out bytes.Buffer
	require.NoError(t, me.Run(context.Background(), &out, nil))

	got := out.String()
	assert.Contains(t, got, "Pages/Index.razor 1/2 tags bound")
	assert.Contains(t, got, "Pages/Plain.razor 0/2 tags bound")
	assert.Contains(t, got, "Shared/Button.razor 1/1 tags bound")
	assert.Contains(t, got, "1:1 <Counter> App.Counter")
	assert.Contains(t, got, "class (html)")
	assert.Contains(t, got, "@onclick -> ")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Pages/Index.razor")), bytes.Index(out.Bytes(), []byte("Shared/Button.razor")))

	out.Reset()
	require.NoError(t, me.Run(context.Background(), &out, []string{"Shared/*.razor"}))
	assert.NotContains(t, out.String(), "Pages/")
	assert.Contains(t, out.String(), "Shared/Button.razor")
}

func TestHandler_RunCheck(t *testing.T) {
	color.NoColor = true
	fs, key := seedProject(t)
	require.NoError(t, afero.WriteFile(fs, "/proj/Pages/Bad.razor", []byte("<div @bogus=\"1\"></div>\n<Widget />"), 0o644))

	me := &Handler{flags: &project.Flags{Dir: "/proj"}, fs: fs, fromCache: key, check: true}

	var out bytes.Buffer
	err := me.Run(context.Background(), &out, nil)
	require.ErrorIs(t, err, ErrDiagnostics)
	assert.Contains(t, out.String(), "Pages/Bad.razor:1:1 error")
	assert.Contains(t, out.String(), "Pages/Bad.razor:2:1 warning")
	assert.Contains(t, out.String(), "[unknown-component]")
	assert.NotContains(t, out.String(), "Pages/Index.razor")

	out.Reset()
	require.NoError(t, me.Run(context.Background(), &out, []string{"Pages/Index.razor"}))
	assert.Empty(t, out.String())

	me.json = true
	out.Reset()
	require.ErrorIs(t, me.Run(context.Background(), &out, nil), ErrDiagnostics)

	var got map[string][]map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Len(t, got["Pages/Bad.razor"], 2)
	assert.Empty(t, got["Pages/Index.razor"])
}

func TestHandler_RunNotCached(t *testing.T) {
	fs, _ := seedProject(t)
	me := &Handler{flags: &project.Flags{Dir: "/proj"}, fs: fs, fromCache: "00"}

	var out bytes.Buffer
	assert.Error(t, me.Run(context.Background(), &out, nil))
	assert.Empty(t, out.String())
}
