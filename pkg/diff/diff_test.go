package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type rule struct {
	TagName    string
	Attributes []string
	hidden     int
}

func TestExported(t *testing.T) {
	a := rule{TagName: "input", Attributes: []string{"@bind"}, hidden: 1}

	assert.Empty(t, Exported(a, a))
	assert.Empty(t, Exported(a, rule{TagName: "input", Attributes: []string{"@bind"}, hidden: 2}), "unexported fields are ignored")

	d := Exported(a, rule{TagName: "select", Attributes: []string{"@bind"}})
	assert.Contains(t, d, "+")
	assert.Contains(t, d, "input")
	assert.Contains(t, d, "select")
}
