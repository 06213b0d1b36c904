// Package collection holds ordered, deduplicated sets of tag helper descriptors.
//
// A Collection is immutable. Merging two collections does not copy their elements: the
// merged collection keeps both as segments and indexes across them.
//
//	Merge(A, B)
//	┌──────────── A ────────────┬──────── B ────────┐
//	│ a0  a1  a2  ...  a(n-1)    │ b0  b1 ... b(m-1)  │
//	└────────────────────────────┴────────────────────┘
//	At(i) = A.At(i)          i <  n
//	At(i) = B.At(i - n)      i >= n
//
// Equality is by checksum sequence, which is what decides whether a consumer can skip
// re-matching after discovery reruns.
package collection

import (
	"crypto/sha256"
	"iter"

	"github.com/walteh/razortag/pkg/descriptor"
)

type Collection struct {
	items    []*descriptor.TagHelperDescriptor
	segments []*Collection
	count    int
}

// Empty is the collection with no descriptors.
var Empty = &Collection{}

// New builds a collection from descriptors, dropping later duplicates by checksum.
func New(descriptors ...*descriptor.TagHelperDescriptor) *Collection {
	b := NewBuilder()
	for _, d := range descriptors {
		b.Add(d)
	}
	return b.Build()
}

// Merge returns a collection reading a's elements followed by b's. Elements are not
// copied and duplicates across a and b are kept.
func Merge(a, b *Collection) *Collection {
	switch {
	case a == nil || a.count == 0:
		if b == nil {
			return Empty
		}
		return b
	case b == nil || b.count == 0:
		return a
	}
	return &Collection{segments: []*Collection{a, b}, count: a.count + b.count}
}

func (c *Collection) Count() int {
	if c == nil {
		return 0
	}
	return c.count
}

// At returns the i-th descriptor. It panics when i is out of range.
func (c *Collection) At(i int) *descriptor.TagHelperDescriptor {
	if i < 0 || i >= c.Count() {
		panic("collection: index out of range")
	}
	if c.segments == nil {
		return c.items[i]
	}
	for _, s := range c.segments {
		if i < s.count {
			return s.At(i)
		}
		i -= s.count
	}
	panic("unreachable")
}

// All yields the descriptors in order with their index.
func (c *Collection) All() iter.Seq2[int, *descriptor.TagHelperDescriptor] {
	return func(yield func(int, *descriptor.TagHelperDescriptor) bool) {
		c.walk(0, yield)
	}
}

func (c *Collection) walk(offset int, yield func(int, *descriptor.TagHelperDescriptor) bool) (int, bool) {
	if c == nil {
		return offset, true
	}
	if c.segments == nil {
		for _, d := range c.items {
			if !yield(offset, d) {
				return offset, false
			}
			offset++
		}
		return offset, true
	}
	for _, s := range c.segments {
		var ok bool
		if offset, ok = s.walk(offset, yield); !ok {
			return offset, false
		}
	}
	return offset, true
}

// Slice copies the descriptors into a new slice.
func (c *Collection) Slice() []*descriptor.TagHelperDescriptor {
	out := make([]*descriptor.TagHelperDescriptor, 0, c.Count())
	for _, d := range c.All() {
		out = append(out, d)
	}
	return out
}

// Equal reports whether c and other hold descriptors with the same checksums in the
// same order.
func (c *Collection) Equal(other *Collection) bool {
	if c.Count() != other.Count() {
		return false
	}
	if c == other {
		return true
	}
	for i := range c.Count() {
		if c.At(i).Checksum != other.At(i).Checksum {
			return false
		}
	}
	return true
}

// Checksum hashes the ordered member checksums.
func (c *Collection) Checksum() descriptor.Checksum {
	h := sha256.New()
	for _, d := range c.All() {
		h.Write(d.Checksum[:])
	}
	var sum descriptor.Checksum
	copy(sum[:], h.Sum(nil))
	return sum
}

// Where returns the descriptors of the given kinds as a new collection.
func (c *Collection) Where(kinds ...descriptor.Kind) *Collection {
	b := NewBuilder()
	for _, d := range c.All() {
		for _, k := range kinds {
			if d.Kind == k {
				b.Add(d)
				break
			}
		}
	}
	return b.Build()
}

// Builder accumulates descriptors in insertion order, ignoring checksum duplicates.
type Builder struct {
	items []*descriptor.TagHelperDescriptor
	seen  map[descriptor.Checksum]struct{}
}

func NewBuilder() *Builder {
	return &Builder{seen: map[descriptor.Checksum]struct{}{}}
}

// Add appends d unless a descriptor with the same checksum was added. It reports
// whether d was added.
func (b *Builder) Add(d *descriptor.TagHelperDescriptor) bool {
	if d == nil {
		return false
	}
	if _, ok := b.seen[d.Checksum]; ok {
		return false
	}
	b.seen[d.Checksum] = struct{}{}
	b.items = append(b.items, d)
	return true
}

// AddAll adds every descriptor of ds.
func (b *Builder) AddAll(ds []*descriptor.TagHelperDescriptor) {
	for _, d := range ds {
		b.Add(d)
	}
}

func (b *Builder) Len() int {
	return len(b.items)
}

// Build returns the collection. The builder can keep adding afterwards without affecting
// the returned collection.
func (b *Builder) Build() *Collection {
	if len(b.items) == 0 {
		return Empty
	}
	items := make([]*descriptor.TagHelperDescriptor, len(b.items))
	copy(items, b.items)
	return &Collection{items: items, count: len(items)}
}
