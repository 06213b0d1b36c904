package discovery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/razortag/pkg/collection"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/discovery"
	"github.com/walteh/razortag/pkg/producers"
	"github.com/walteh/razortag/pkg/symbols"
	"github.com/walteh/razortag/pkg/symbols/symbolstest"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

type mockTypeProducer struct {
	mock.Mock
}

func (m *mockTypeProducer) Kind() producers.ProducerKind {
	return producers.ProducerDefault
}

func (m *mockTypeProducer) IsCandidateType(t *symbols.Type) bool {
	return m.Called(t).Bool(0)
}

func (m *mockTypeProducer) AddTagHelpersForType(ctx context.Context, t *symbols.Type, r *producers.Results) error {
	return m.Called(ctx, t, r).Error(0)
}

func named(name string) any {
	return mock.MatchedBy(func(t *symbols.Type) bool { return t.Name == name })
}

func tagHelper(name string) *descriptor.TagHelperDescriptor {
	b := descriptor.NewBuilder(descriptor.KindITagHelper, name, "App")
	b.TagMatchingRule(func(r *descriptor.RuleBuilder) { r.TagName = "div" })
	return b.MustBuild()
}

func appendDescriptor(name string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		r := args.Get(2).(*producers.Results)
		r.Descriptors = append(r.Descriptors, tagHelper(name))
	}
}

func only(ps ...producers.Producer) discovery.Resolver {
	return discovery.ResolverFunc(func(context.Context, *symbols.Compilation) []producers.Producer {
		return ps
	})
}

func names(c *collection.Collection) []string {
	var out []string
	for _, d := range c.All() {
		out = append(out, d.Name)
	}
	return out
}

func sampleApp(t *testing.T) *symbols.Compilation {
	t.Helper()
	app := symbols.NewAssembly("App")
	c := symbolstest.Compilation(app)

	base := c.TypeByMetadataName(producers.IComponentInterface)
	counter := app.NewType("App", "Counter", symbols.TypeKindClass).Implement(base)
	counter.Property("Value", "System.Int32").Attribute(producers.ParameterAttribute)
	counter.Property("ValueChanged", "Microsoft.AspNetCore.Components.EventCallback<System.Int32>").
		Attribute(producers.ParameterAttribute)

	itaghelper := c.TypeByMetadataName(producers.ITagHelperInterface)
	app.NewType("App", "HighlightTagHelper", symbols.TypeKindClass).Implement(itaghelper)

	app.NewType("App", "Plain", symbols.TypeKindClass)
	return c
}

func TestDiscover_Framework(t *testing.T) {
	ctx := context.Background()
	c := sampleApp(t)

	d := discovery.New(producers.NewRegistry(), 2)
	res, err := d.Discover(ctx, c)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"App.Counter",
		"App.Counter",
		"App.Counter",
		"App.Counter",
		"App.HighlightTagHelper",
	}, names(res.Compilation))
	assert.Equal(t, []descriptor.Kind{
		descriptor.KindComponent,
		descriptor.KindComponent,
		descriptor.KindBind,
		descriptor.KindBind,
		descriptor.KindITagHelper,
	}, kinds(res.Compilation))

	assert.Equal(t, []string{
		"Bind", "Key", "Ref", "RenderMode", "Attributes", "FormName",
		"onclick", "onchange",
		"Bind", "Bind", "Bind",
	}, names(res.References))
	assert.Equal(t, res.Compilation.Count()+res.References.Count(), res.Merged.Count())
	assert.Empty(t, res.Skipped)
}

func kinds(c *collection.Collection) []descriptor.Kind {
	var out []descriptor.Kind
	for _, d := range c.All() {
		out = append(out, d.Kind)
	}
	return out
}

func TestDiscover_Idempotent(t *testing.T) {
	ctx := context.Background()
	c := sampleApp(t)
	d := discovery.New(producers.NewRegistry(), 0)

	first, err := d.Discover(ctx, c)
	require.NoError(t, err)
	second, err := d.Discover(ctx, c)
	require.NoError(t, err)

	assert.True(t, first.Merged.Equal(second.Merged))
	assert.Equal(t, first.Merged.Checksum(), second.Merged.Checksum())
}

func TestDiscover_BuildErrorsKeepPartialResult(t *testing.T) {
	ctx := context.Background()
	app := symbols.NewAssembly("App")
	app.NewType("App", "Good", symbols.TypeKindClass)
	app.NewType("App", "Bad", symbols.TypeKindClass)
	app.NewType("App", "Ignored", symbols.TypeKindClass)

	p := &mockTypeProducer{}
	p.On("IsCandidateType", named("Good")).Return(true)
	p.On("IsCandidateType", named("Bad")).Return(true)
	p.On("IsCandidateType", named("Ignored")).Return(false)
	p.On("AddTagHelpersForType", mock.Anything, named("Good"), mock.Anything).
		Run(appendDescriptor("Good")).
		Return(nil)
	p.On("AddTagHelpersForType", mock.Anything, named("Bad"), mock.Anything).
		Run(appendDescriptor("BadSibling")).
		Return(errors.Errorf("%w: broken", descriptor.ErrInvalidDescriptor))

	res, err := discovery.New(only(p), 1).Discover(ctx, symbols.NewCompilation(app))
	require.Error(t, err)
	require.NotNil(t, res)

	assert.ErrorIs(t, err, descriptor.ErrInvalidDescriptor)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Equal(t, []string{"Good", "BadSibling"}, names(res.Compilation))
	p.AssertExpectations(t)
}

func TestDiscover_Cancelled(t *testing.T) {
	app := symbols.NewAssembly("App")
	app.NewType("App", "First", symbols.TypeKindClass)
	app.NewType("App", "Second", symbols.TypeKindClass)

	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := &mockTypeProducer{}
		res, err := discovery.New(only(p), 1).Discover(ctx, symbols.NewCompilation(app))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
		p.AssertNotCalled(t, "AddTagHelpersForType", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("between types", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		p := &mockTypeProducer{}
		p.On("IsCandidateType", mock.Anything).Return(true)
		p.On("AddTagHelpersForType", mock.Anything, named("First"), mock.Anything).
			Run(func(args mock.Arguments) {
				appendDescriptor("First")(args)
				cancel()
			}).
			Return(nil)

		res, err := discovery.New(only(p), 1).Discover(ctx, symbols.NewCompilation(app))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
		p.AssertNotCalled(t, "AddTagHelpersForType", mock.Anything, named("Second"), mock.Anything)
	})
}

func TestDiscover_SkippedNotes(t *testing.T) {
	app := symbols.NewAssembly("App")
	c := symbolstest.Compilation(app)
	odd := app.NewType("App", "OddEvents", symbols.TypeKindClass)
	odd.Attribute(producers.EventHandlerAttribute, symbols.String("onx"))

	res, err := discovery.New(producers.NewRegistry(producers.ProducerEventHandler), 1).Discover(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "App.OddEvents", res.Skipped[0].Type)
	assert.Equal(t, 0, res.Compilation.Count())
	assert.Equal(t, []string{"onclick", "onchange"}, names(res.References))
}
