package symbols_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/razortag/pkg/symbols"
)

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestLoadGoPackages(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/app\n\ngo 1.22\n",
		"framework/framework.go": `//razor:assembly Microsoft.AspNetCore.Components
//razor:namespace Microsoft.AspNetCore.Components
package framework

type IComponent interface {
	SetParametersAsync(parameters map[string]any) error
}

type EventCallback[T any] struct {
	f func(T)
}

type ComponentBase struct{}

func (c *ComponentBase) SetParametersAsync(parameters map[string]any) error { return nil }
`,
		"app/counter.go": `//razor:using Microsoft.AspNetCore.Components
package app

import "example.com/app/framework"

// Counter counts.
//
//razor:attr Route("/counter")
type Counter struct {
	framework.ComponentBase

	//razor:attr Parameter
	Value int

	//razor:attr Parameter
	ValueChanged framework.EventCallback[int]

	//razor:readonly
	Label string

	internal string
}

//razor:attr Broken(
type Broken struct{}
`,
	})

	ctx := context.Background()
	c, err := symbols.LoadGoPackages(ctx, dir, "./app")
	require.NoError(t, err)

	assert.Equal(t, "example.com/app", c.Assembly().Name)
	require.Len(t, c.References(), 1)
	assert.Equal(t, "Microsoft.AspNetCore.Components", c.References()[0].Name)

	// without a namespace directive the namespace is the dotted import path
	counter := c.TypeByMetadataName("example.com.app.app.Counter")
	require.NotNil(t, counter)
	assert.Equal(t, "example.com.app.app", counter.Namespace)
	assert.True(t, counter.IsPublic)
	require.NotNil(t, counter.BaseType)
	assert.Equal(t, "Microsoft.AspNetCore.Components.ComponentBase", counter.BaseType.FullName())
	assert.True(t, counter.Implements("Microsoft.AspNetCore.Components.IComponent"))

	require.Len(t, counter.Attributes, 1)
	assert.Equal(t, "Microsoft.AspNetCore.Components.RouteAttribute", counter.Attributes[0].AttributeClass)
	assert.Equal(t, []symbols.TypedConstant{symbols.String("/counter")}, counter.Attributes[0].ConstructorArguments)

	require.Len(t, counter.Properties, 3)
	assert.Equal(t, "Value", counter.Properties[0].Name)
	assert.Equal(t, "System.Int32", counter.Properties[0].TypeName)
	assert.True(t, counter.Properties[0].HasAttribute("Microsoft.AspNetCore.Components.ParameterAttribute"))
	assert.Equal(t, "Microsoft.AspNetCore.Components.EventCallback<System.Int32>", counter.Properties[1].TypeName)
	assert.False(t, counter.Properties[2].HasPublicSetter)

	broken := c.TypeByMetadataName("example.com.app.app.Broken")
	require.NotNil(t, broken)
	assert.Empty(t, broken.Attributes, "malformed directives are skipped")

	generic := c.TypeByMetadataName("Microsoft.AspNetCore.Components.EventCallback`1")
	require.NotNil(t, generic)
	assert.Equal(t, []string{"T"}, generic.TypeParameters)
}

func TestLoadGoPackages_NoPackages(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/empty\n\ngo 1.22\n",
	})

	_, err := symbols.LoadGoPackages(context.Background(), dir, "./...")
	require.Error(t, err)
}
