package pipeline_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/razortag/pkg/cache"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/pipeline"
	"github.com/walteh/razortag/pkg/position"
	"github.com/walteh/razortag/pkg/producers"
	"github.com/walteh/razortag/pkg/symbols"
	"github.com/walteh/razortag/pkg/symbols/symbolstest"
)

func counterApp(t *testing.T) (*symbols.Assembly, *symbols.Compilation) {
	t.Helper()
	app := symbols.NewAssembly("App")
	c := symbolstest.Compilation(app)

	counter := app.NewType("App", "Counter", symbols.TypeKindClass).
		Implement(symbolstest.Interface(c, producers.IComponentInterface))
	counter.Property("Value", "System.Int32").Attribute(producers.ParameterAttribute)
	counter.Property("ValueChanged", "Microsoft.AspNetCore.Components.EventCallback<System.Int32>").
		Attribute(producers.ParameterAttribute)
	return app, c
}

func TestEngine_DiscoverCohost(t *testing.T) {
	ctx := context.Background()
	app, c := counterApp(t)
	e := pipeline.New(pipeline.Options{Cohost: true, Jobs: 2})

	first, changed, err := e.Discover(ctx, c)
	require.NoError(t, err)
	assert.True(t, changed)

	second, changed, err := e.Discover(ctx, c)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, first.Binder, second.Binder)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Checksum(), second.Checksum())

	app.NewType("App", "Other", symbols.TypeKindClass).
		Implement(symbolstest.Interface(c, producers.IComponentInterface))

	third, changed, err := e.Discover(ctx, c)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotSame(t, second.Binder, third.Binder)
	assert.NotEqual(t, second.Checksum(), third.Checksum())
}

func TestEngine_DiscoverWithoutCohost(t *testing.T) {
	ctx := context.Background()
	_, c := counterApp(t)
	e := pipeline.New(pipeline.Options{})

	first, changed, err := e.Discover(ctx, c)
	require.NoError(t, err)
	assert.True(t, changed)

	second, changed, err := e.Discover(ctx, c)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotSame(t, first.Binder, second.Binder)
	assert.True(t, first.Result.Merged.Equal(second.Result.Merged))
}

func TestEngine_DiscoverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, c := counterApp(t)

	snap, changed, err := pipeline.New(pipeline.Options{Cohost: true}).Discover(ctx, c)
	assert.Nil(t, snap)
	assert.False(t, changed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_StoreAndRestore(t *testing.T) {
	ctx := context.Background()
	_, c := counterApp(t)
	store := cache.NewStore(afero.NewMemMapFs(), "/cache")

	e := pipeline.New(pipeline.Options{Store: store, Prefix: "th:"})
	snap, _, err := e.Discover(ctx, c)
	require.NoError(t, err)

	restored, err := e.Restore(ctx, snap.Checksum())
	require.NoError(t, err)
	assert.True(t, snap.Result.Merged.Equal(restored.Binder.Descriptors()))
	assert.Equal(t, "th:", restored.Binder.Prefix())

	_, err = e.Restore(ctx, descriptor.Checksum{1})
	assert.ErrorIs(t, err, pipeline.ErrNotCached)

	_, err = pipeline.New(pipeline.Options{}).Restore(ctx, snap.Checksum())
	assert.ErrorIs(t, err, pipeline.ErrNotCached)
}

func TestEngine_MatchDocuments(t *testing.T) {
	ctx := context.Background()
	_, c := counterApp(t)
	e := pipeline.New(pipeline.Options{Jobs: 2})

	snap, _, err := e.Discover(ctx, c)
	require.NoError(t, err)

	docs := []pipeline.Document{
		{
			Path:    "Pages/Index.razor",
			Content: []byte(`<Counter Value="1" @bind-Value="count" /><div @onclick="Go">x</div><p>plain</p>`),
		},
		{
			Path:    "Pages/Prefixed.razor",
			Content: []byte("@tagHelperPrefix \"th:\"\n<th:Counter Value=\"2\"></th:Counter><Counter Value=\"3\" />"),
		},
		{
			Path:    "Pages/Empty.razor",
			Content: []byte("just text"),
		},
	}

	matches, err := e.MatchDocuments(ctx, snap, docs)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	index := matches[0]
	assert.Equal(t, "Pages/Index.razor", index.Path)
	assert.Empty(t, index.Prefix)
	assert.Equal(t, 3, index.TagCount)
	require.Len(t, index.Tags, 2)
	assert.Equal(t, "Counter", index.Tags[0].Tag.Name)
	assert.Equal(t, descriptor.KindComponent, index.Tags[0].Binding.Descriptors()[0].Kind)
	assert.Equal(t, "div", index.Tags[1].Tag.Name)
	assert.True(t, index.Tags[1].Binding.IsAttributeMatch())

	assert.Equal(t, position.Place{Line: 1, Character: 42}, index.Tags[1].Range.Start)

	prefixed := matches[1]
	assert.Equal(t, "th:", prefixed.Prefix)
	assert.Equal(t, 2, prefixed.TagCount)
	require.Len(t, prefixed.Tags, 1)
	assert.Equal(t, "Counter", prefixed.Tags[0].Binding.TagName)
	assert.Equal(t, position.Place{Line: 2, Character: 1}, prefixed.Tags[0].Range.Start)

	require.Len(t, prefixed.Unbound, 1)
	assert.Nil(t, prefixed.Unbound[0].Binding)
	assert.Equal(t, position.Place{Line: 2, Character: 36}, prefixed.Unbound[0].Range.Start)
	assert.Equal(t, position.Place{Line: 2, Character: 44}, prefixed.Unbound[0].Range.End)

	assert.Equal(t, 0, matches[2].TagCount)
	assert.Empty(t, matches[2].Tags)
}

func TestEngine_MatchDocumentsCancelled(t *testing.T) {
	_, c := counterApp(t)
	e := pipeline.New(pipeline.Options{Jobs: 1})
	snap, _, err := e.Discover(context.Background(), c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.MatchDocuments(ctx, snap, []pipeline.Document{{Path: "a.razor", Content: []byte("<p></p>")}})
	assert.ErrorIs(t, err, context.Canceled)
}
