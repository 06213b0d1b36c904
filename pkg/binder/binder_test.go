package binder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/razortag/pkg/binder"
	"github.com/walteh/razortag/pkg/collection"
	"github.com/walteh/razortag/pkg/descriptor"
	"github.com/walteh/razortag/pkg/discovery"
	"github.com/walteh/razortag/pkg/markup"
	"github.com/walteh/razortag/pkg/producers"
	"github.com/walteh/razortag/pkg/symbols"
	"github.com/walteh/razortag/pkg/symbols/symbolstest"
)

func attr(name, value string) markup.Attribute {
	return markup.Attribute{Name: name, Value: value, HasValue: true}
}

func tag(name string, attrs ...markup.Attribute) markup.Tag {
	return markup.Tag{Name: name, Attributes: attrs}
}

func discover(t *testing.T, c *symbols.Compilation, kinds ...producers.ProducerKind) *collection.Collection {
	t.Helper()
	res, err := discovery.New(producers.NewRegistry(kinds...), 1).Discover(context.Background(), c)
	require.NoError(t, err)
	return res.Merged
}

func tagHelper(t *testing.T, name string, configure func(b *descriptor.Builder)) *descriptor.TagHelperDescriptor {
	t.Helper()
	b := descriptor.NewBuilder(descriptor.KindITagHelper, name, "App")
	configure(b)
	d, err := b.Build()
	require.NoError(t, err)
	return d
}

func requireClass(r *descriptor.RuleBuilder) {
	r.RequireAttribute(func(a *descriptor.RequiredAttributeBuilder) { a.Name = "class" })
}

func TestBinding_TagStructureSpecificity(t *testing.T) {
	catchAll := tagHelper(t, "CatchAll", func(b *descriptor.Builder) {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = descriptor.CatchAllTagName
			requireClass(r)
		})
	})
	withoutEndTag := tagHelper(t, "Test", func(b *descriptor.Builder) {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = "test"
			r.TagStructure = descriptor.TagStructureWithoutEndTag
		})
	})
	catchAllSelfClosing := tagHelper(t, "VoidFallback", func(b *descriptor.Builder) {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = descriptor.CatchAllTagName
			r.TagStructure = descriptor.TagStructureNormalOrSelfClosing
			requireClass(r)
		})
	})
	sameTagSelfClosing := tagHelper(t, "TestToo", func(b *descriptor.Builder) {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = "test"
			r.TagStructure = descriptor.TagStructureNormalOrSelfClosing
		})
	})

	tests := []struct {
		name      string
		ds        []*descriptor.TagHelperDescriptor
		want      descriptor.TagStructure
		conflicts int
	}{
		{"unspecified catch-all loses to specified tag rule", []*descriptor.TagHelperDescriptor{catchAll, withoutEndTag}, descriptor.TagStructureWithoutEndTag, 0},
		{"explicit tag name beats specified catch-all", []*descriptor.TagHelperDescriptor{catchAllSelfClosing, withoutEndTag}, descriptor.TagStructureWithoutEndTag, 1},
		{"specified catch-all beats unspecified", []*descriptor.TagHelperDescriptor{catchAll, catchAllSelfClosing}, descriptor.TagStructureNormalOrSelfClosing, 0},
		{"full tie keeps collection order", []*descriptor.TagHelperDescriptor{sameTagSelfClosing, withoutEndTag}, descriptor.TagStructureNormalOrSelfClosing, 1},
		{"only unspecified", []*descriptor.TagHelperDescriptor{catchAll}, descriptor.TagStructureUnspecified, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := binder.NewBinder("", collection.New(tt.ds...))
			binding := b.GetBinding(tag("test", attr("class", "x")))
			require.NotNil(t, binding)
			assert.Len(t, binding.Matches, len(tt.ds))
			assert.Equal(t, tt.want, binding.TagStructure())
			assert.Len(t, binding.StructureConflicts(), tt.conflicts)
		})
	}
}

func TestBinding_StructureConflictNamesWinner(t *testing.T) {
	fallback := tagHelper(t, "VoidFallback", func(b *descriptor.Builder) {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = descriptor.CatchAllTagName
			r.ParentTag = "div"
			r.TagStructure = descriptor.TagStructureWithoutEndTag
		})
	})
	specific := tagHelper(t, "Specific", func(b *descriptor.Builder) {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = "test"
			r.TagStructure = descriptor.TagStructureNormalOrSelfClosing
		})
	})

	b := binder.NewBinder("", collection.New(fallback, specific))
	binding := b.GetBinding(markup.Tag{Name: "test", ParentName: "div"})
	require.NotNil(t, binding)

	conflicts := binding.StructureConflicts()
	require.Len(t, conflicts, 1)
	assert.Same(t, specific, conflicts[0].Winner.Descriptor)
	assert.Same(t, fallback, conflicts[0].Loser.Descriptor)
}

func TestGetBinding_BindFallback(t *testing.T) {
	c := symbols.NewCompilation(symbols.NewAssembly("App"), symbolstest.Components())
	coll := discover(t, c, producers.ProducerBind)
	require.Equal(t, 1, coll.Count())

	b := binder.NewBinder("", coll)

	binding := b.GetBinding(tag("input",
		attr("@bind-value", "x"),
		attr("@bind-value:event", "oninput"),
		attr("class", "c"),
	))
	require.NotNil(t, binding)
	require.Len(t, binding.Matches, 1)
	assert.True(t, binding.IsAttributeMatch())
	assert.True(t, binding.Matches[0].Descriptor.BindMetadata().IsFallback())

	classified := binding.ClassifyAttributes()
	require.Len(t, classified, 3)

	value := classified[0]
	require.False(t, value.IsHTML())
	assert.Equal(t, "Bind", value.Match.Attribute.PropertyName)
	assert.True(t, value.Match.IsIndexer)
	assert.Nil(t, value.Match.Parameter)

	event := classified[1]
	require.False(t, event.IsHTML())
	require.NotNil(t, event.Match.Parameter)
	assert.Equal(t, "event", event.Match.Parameter.Name)

	assert.True(t, classified[2].IsHTML())

	var params []string
	for _, p := range value.Match.Attribute.Parameters {
		params = append(params, p.Name)
	}
	assert.Equal(t, []string{"format", "event", "culture", "get", "set", "after"}, params)

	assert.Nil(t, b.GetBinding(tag("input", attr("value", "x"))))
	assert.Nil(t, b.GetBinding(tag("input", attr("@bind", "x"))), "the fallback needs a name after @bind-")
}

func counterApp(t *testing.T) *symbols.Compilation {
	t.Helper()
	app := symbols.NewAssembly("App")
	c := symbolstest.Compilation(app)

	counter := app.NewType("App", "Counter", symbols.TypeKindClass).
		Implement(symbolstest.Interface(c, producers.IComponentInterface))
	counter.Property("Value", "System.Int32").Attribute(producers.ParameterAttribute)
	counter.Property("ValueChanged", "Microsoft.AspNetCore.Components.EventCallback<System.Int32>").
		Attribute(producers.ParameterAttribute)
	return c
}

func TestGetBinding_Component(t *testing.T) {
	b := binder.NewBinder("", discover(t, counterApp(t)))

	binding := b.GetBinding(tag("Counter",
		attr("Value", "1"),
		attr("@bind-Value", "count"),
		attr("@onclick", "Click"),
		attr("title", "t"),
	))
	require.NotNil(t, binding)

	var kinds []descriptor.Kind
	for _, d := range binding.Descriptors() {
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []descriptor.Kind{
		descriptor.KindComponent,
		descriptor.KindBind,
		descriptor.KindBind,
		descriptor.KindEventHandler,
	}, kinds)
	assert.False(t, binding.Descriptors()[0].IsFullyQualifiedNameMatch)
	assert.False(t, binding.Descriptors()[1].BindMetadata().IsFallback())
	assert.True(t, binding.Descriptors()[2].BindMetadata().IsFallback())
	assert.False(t, binding.IsAttributeMatch())

	classified := binding.ClassifyAttributes()
	require.Len(t, classified, 4)
	assert.Equal(t, descriptor.KindComponent, classified[0].Descriptor.Kind)
	assert.Equal(t, "Value", classified[0].Match.Attribute.Name)

	assert.Equal(t, descriptor.KindBind, classified[1].Descriptor.Kind)
	assert.False(t, classified[1].Match.IsIndexer, "component bind wins over the fallback")
	assert.Equal(t, "@bind-Value", classified[1].Match.Attribute.Name)

	assert.Equal(t, descriptor.KindEventHandler, classified[2].Descriptor.Kind)
	assert.True(t, classified[3].IsHTML())

	assert.Len(t, binding.Rules(binding.Descriptors()[1]), 1)
	assert.Nil(t, binding.Rules(nil))
}

func TestGetBinding_CaseSensitiveComponents(t *testing.T) {
	b := binder.NewBinder("", discover(t, counterApp(t)))

	assert.Nil(t, b.GetBinding(tag("counter", attr("Value", "1"))))

	binding := b.GetBinding(tag("counter", attr("@onclick", "Click")))
	require.NotNil(t, binding)
	require.Len(t, binding.Matches, 1)
	assert.Equal(t, "onclick", binding.Matches[0].Descriptor.Name)
	assert.True(t, binding.IsAttributeMatch())

	fq := b.GetBinding(tag("App.Counter"))
	require.NotNil(t, fq)
	require.Len(t, fq.Matches, 1)
	assert.True(t, fq.Matches[0].Descriptor.IsFullyQualifiedNameMatch)
}

func TestGetBinding_Deterministic(t *testing.T) {
	b := binder.NewBinder("", discover(t, counterApp(t)))
	in := tag("Counter", attr("@bind-Value", "count"), attr("@key", "k"))

	first := b.GetBinding(in)
	require.NotNil(t, first)
	for range 5 {
		assert.Equal(t, first, b.GetBinding(in))
	}
}

func TestGetBinding_Prefix(t *testing.T) {
	highlight := tagHelper(t, "App.HighlightTagHelper", func(b *descriptor.Builder) {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) { r.TagName = "highlight" })
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) {
			r.TagName = "li"
			r.ParentTag = "ul"
		})
	})
	b := binder.NewBinder("th:", collection.New(highlight))

	binding := b.GetBinding(tag("th:highlight"))
	require.NotNil(t, binding)
	assert.Equal(t, "highlight", binding.TagName)
	assert.Equal(t, "th:", binding.Prefix)

	assert.NotNil(t, b.GetBinding(tag("TH:Highlight")), "prefix and tag name compare case-insensitively")
	assert.Nil(t, b.GetBinding(tag("highlight")))
	assert.Nil(t, b.GetBinding(tag("th:")))

	assert.NotNil(t, b.GetBinding(markup.Tag{Name: "th:li", ParentName: "th:ul"}))
	assert.NotNil(t, b.GetBinding(markup.Tag{Name: "th:li", ParentName: "ul"}))
	assert.Nil(t, b.GetBinding(markup.Tag{Name: "th:li", ParentName: "th:ol"}))
}

func TestPreferSpecificBinds(t *testing.T) {
	coll := discover(t, symbolstest.Compilation(symbols.NewAssembly("App")), producers.ProducerBind)
	b := binder.NewBinder("", coll)

	typeAttributes := func(binding *binder.Binding) []string {
		var out []string
		for _, d := range binding.Descriptors() {
			out = append(out, d.BindMetadata().TypeAttribute)
		}
		return out
	}

	checkbox := b.GetBinding(tag("input", attr("type", "checkbox"), attr("@bind", "done")))
	require.NotNil(t, checkbox)
	assert.Equal(t, []string{"", "checkbox"}, typeAttributes(checkbox))

	preferred := binder.PreferSpecificBinds(checkbox)
	assert.Equal(t, []string{"checkbox"}, typeAttributes(preferred))
	assert.Len(t, checkbox.Matches, 2, "input binding is left alone")

	text := b.GetBinding(tag("input", attr("type", "text"), attr("@bind", "name")))
	require.NotNil(t, text)
	assert.Same(t, text, binder.PreferSpecificBinds(text))
	assert.Equal(t, []string{""}, typeAttributes(text))

	getSet := b.GetBinding(tag("input", attr("type", "checkbox"), attr("@bind:get", "done"), attr("@bind:set", "SetDone")))
	require.NotNil(t, getSet)
	assert.Equal(t, []string{"checkbox"}, typeAttributes(binder.PreferSpecificBinds(getSet)))

	assert.Nil(t, binder.PreferSpecificBinds(nil))
}

func TestPreferSpecificBinds_ReferencedComponent(t *testing.T) {
	lib := symbols.NewAssembly("Lib")
	c := symbols.NewCompilation(symbols.NewAssembly("App"), symbolstest.Components(), symbolstest.Web(), lib)
	counter := lib.NewType("Lib", "Counter", symbols.TypeKindClass).
		Implement(symbolstest.Interface(c, producers.IComponentInterface))
	counter.Property("Value", "System.Int32").Attribute(producers.ParameterAttribute)
	counter.Property("ValueChanged", "Microsoft.AspNetCore.Components.EventCallback<System.Int32>").
		Attribute(producers.ParameterAttribute)

	b := binder.NewBinder("", discover(t, c))

	tests := []struct {
		name         string
		attrs        []markup.Attribute
		wantFallback bool
		wantTargets  []descriptor.BindTarget
	}{
		{
			name:        "component bind shadows the fallback",
			attrs:       []markup.Attribute{attr("@bind-Value", "x")},
			wantTargets: []descriptor.BindTarget{descriptor.BindTargetComponent},
		},
		{
			name:         "fallback kept for attributes the component does not bind",
			attrs:        []markup.Attribute{attr("@bind-Value", "x"), attr("@bind-Other", "y")},
			wantFallback: true,
			wantTargets:  []descriptor.BindTarget{descriptor.BindTargetComponent, descriptor.BindTargetFallback},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binding := b.GetBinding(tag("Counter", tt.attrs...))
			require.NotNil(t, binding)
			require.True(t, isFallbackFirst(binding), "the framework fallback precedes the library's binds")

			classified := binding.ClassifyAttributes()
			require.NotNil(t, classified[0].Descriptor)
			meta := classified[0].Descriptor.BindMetadata()
			require.NotNil(t, meta)
			assert.Equal(t, descriptor.BindTargetComponent, meta.Target)
			assert.False(t, classified[0].Match.IsIndexer)
			assert.Equal(t, "Lib.Counter", classified[0].Descriptor.DisplayName)

			preferred := binder.PreferSpecificBinds(binding)
			var targets []descriptor.BindTarget
			for _, d := range preferred.Descriptors() {
				if m := d.BindMetadata(); m != nil {
					targets = append(targets, m.Target)
				}
			}
			assert.ElementsMatch(t, tt.wantTargets, targets)

			if tt.wantFallback {
				last := preferred.ClassifyAttributes()[1]
				require.NotNil(t, last.Descriptor)
				assert.True(t, last.Descriptor.BindMetadata().IsFallback())
				assert.True(t, last.Match.IsIndexer)
			}
		})
	}
}

func isFallbackFirst(b *binder.Binding) bool {
	for _, d := range b.Descriptors() {
		if m := d.BindMetadata(); m != nil {
			return m.IsFallback()
		}
	}
	return false
}

func TestSatisfiesRequiredAttribute(t *testing.T) {
	tests := []struct {
		name     string
		required descriptor.RequiredAttributeDescriptor
		attr     markup.Attribute
		want     bool
	}{
		{"full match", descriptor.RequiredAttributeDescriptor{Name: "class"}, attr("class", ""), true},
		{"full match case-insensitive", descriptor.RequiredAttributeDescriptor{Name: "class"}, attr("CLASS", ""), true},
		{"full match case-sensitive", descriptor.RequiredAttributeDescriptor{Name: "class", CaseSensitive: true}, attr("CLASS", ""), false},
		{"prefix", descriptor.RequiredAttributeDescriptor{Name: "data-", NameComparison: descriptor.NamePrefixMatch}, attr("data-x", ""), true},
		{"prefix needs longer name", descriptor.RequiredAttributeDescriptor{Name: "data-", NameComparison: descriptor.NamePrefixMatch}, attr("data-", ""), false},
		{"directive needs directive attribute", descriptor.RequiredAttributeDescriptor{Name: "@bind", IsDirectiveAttribute: true}, attr("bind", ""), false},
		{"directive ignores parameter", descriptor.RequiredAttributeDescriptor{Name: "@bind", IsDirectiveAttribute: true}, attr("@bind:event", "oninput"), true},
		{"directive with parameter compares whole name", descriptor.RequiredAttributeDescriptor{Name: "@bind:get", IsDirectiveAttribute: true}, attr("@bind:set", ""), false},
		{"directive prefix with parameter", descriptor.RequiredAttributeDescriptor{Name: "@bind-", NameComparison: descriptor.NamePrefixMatch, IsDirectiveAttribute: true}, attr("@bind-value:format", ""), true},
		{"value full", descriptor.RequiredAttributeDescriptor{Name: "type", Value: "checkbox", ValueComparison: descriptor.ValueFullMatch}, attr("type", "checkbox"), true},
		{"value full is ordinal", descriptor.RequiredAttributeDescriptor{Name: "type", Value: "checkbox", ValueComparison: descriptor.ValueFullMatch}, attr("type", "Checkbox"), false},
		{"value prefix", descriptor.RequiredAttributeDescriptor{Name: "href", Value: "~/", ValueComparison: descriptor.ValuePrefixMatch}, attr("href", "~/home"), true},
		{"value suffix", descriptor.RequiredAttributeDescriptor{Name: "src", Value: ".png", ValueComparison: descriptor.ValueSuffixMatch}, attr("src", "a.jpg"), false},
		{"value missing", descriptor.RequiredAttributeDescriptor{Name: "type", Value: "text", ValueComparison: descriptor.ValueFullMatch}, markup.Attribute{Name: "type"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, binder.SatisfiesRequiredAttribute(&tt.required, tt.attr))
		})
	}
}

func TestMatchAttribute(t *testing.T) {
	d := tagHelper(t, "App.FormTagHelper", func(b *descriptor.Builder) {
		b.TagMatchingRule(func(r *descriptor.RuleBuilder) { r.TagName = "form" })
		b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
			a.Name = "asp-route"
			a.PropertyName = "Route"
			a.TypeName = "System.String"
		})
		b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
			a.Name = "asp-all-route-data"
			a.PropertyName = "RouteValues"
			a.TypeName = "System.Collections.Generic.IDictionary<string, string>"
			a.AsDictionary("asp-route-", "System.String")
		})
		b.BindAttribute(func(a *descriptor.BoundAttributeBuilder) {
			a.Name = "@ref"
			a.PropertyName = "Ref"
			a.TypeName = "System.Object"
			a.IsDirectiveAttribute = true
			a.BindParameter(func(p *descriptor.ParameterBuilder) {
				p.Name = "suppressField"
				p.TypeName = "System.Boolean"
			})
		})
	})

	tests := []struct {
		name      string
		attribute string
		property  string
		parameter string
		indexer   bool
		ok        bool
	}{
		{name: "exact", attribute: "asp-route", property: "Route", ok: true},
		{name: "case-insensitive descriptor", attribute: "ASP-ROUTE", property: "Route", ok: true},
		{name: "indexer", attribute: "asp-route-id", property: "RouteValues", indexer: true, ok: true},
		{name: "parameter", attribute: "@ref:suppressField", property: "Ref", parameter: "suppressField", ok: true},
		{name: "unknown parameter", attribute: "@ref:other"},
		{name: "html", attribute: "method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := binder.MatchAttribute(d, tt.attribute)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.property, m.Attribute.PropertyName)
			assert.Equal(t, tt.indexer, m.IsIndexer)
			if tt.parameter == "" {
				assert.Nil(t, m.Parameter)
			} else {
				require.NotNil(t, m.Parameter)
				assert.Equal(t, tt.parameter, m.Parameter.Name)
			}
		})
	}
}
