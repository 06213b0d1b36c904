// Package diff renders readable differences between values for test failures.
package diff

import (
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
)

func printer() *pp.PrettyPrinter {
	p := pp.New()
	p.SetExportedOnly(true)
	p.SetColoringEnabled(false)
	return p
}

// Exported pretty prints want and got, exported fields only, and returns a line diff
// that turns got into want. Equal values give "".
func Exported[T any](want, got T) string {
	p := printer()
	d := diff.Diff(p.Sprint(got), p.Sprint(want))
	if d == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\ngot -> want (+ add, - remove):\n\n")
	b.WriteString(d)
	return b.String()
}
