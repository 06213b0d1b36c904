// Package position converts byte offsets in a document to line and column places.
package position

import (
	"fmt"
	"slices"
)

// Place is a one-based line and column. Columns count bytes.
type Place struct {
	Line      int
	Character int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

type Range struct {
	Start Place
	End   Place
}

// RawPosition is a span of source text starting at Offset.
type RawPosition struct {
	Offset int
	Text   string
}

func (p RawPosition) Length() int {
	return len(p.Text)
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Index maps offsets of one document to places.
type Index struct {
	newlines []int
	size     int
}

func NewIndex(content []byte) *Index {
	idx := &Index{size: len(content)}
	for i, b := range content {
		if b == '\n' {
			idx.newlines = append(idx.newlines, i)
		}
	}
	return idx
}

// Place returns the place of offset, clamped to the document.
func (idx *Index) Place(offset int) Place {
	offset = min(max(offset, 0), idx.size)
	// number of newlines strictly before offset
	line, _ := slices.BinarySearch(idx.newlines, offset)
	lineStart := 0
	if line > 0 {
		lineStart = idx.newlines[line-1] + 1
	}
	return Place{Line: line + 1, Character: offset - lineStart + 1}
}

// Range returns the places spanned by p. The end is the place just past its text.
func (idx *Index) Range(p RawPosition) Range {
	return Range{Start: idx.Place(p.Offset), End: idx.Place(p.Offset + p.Length())}
}
