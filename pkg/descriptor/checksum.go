package descriptor

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"io"
	"math"

	"fortio.org/safecast"
	"github.com/walteh/razortag/pkg/docs"
	"gitlab.com/tozd/go/errors"
)

// Checksum is a content hash over every structural field of a descriptor.
type Checksum [32]byte

func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Short is the first eight hex digits, for logs.
func (c Checksum) Short() string {
	return hex.EncodeToString(c[:4])
}

// ParseChecksum reads the full hex form written by String.
func ParseChecksum(s string) (Checksum, error) {
	var c Checksum
	b, err := hex.DecodeString(s)
	if err != nil {
		return c, errors.Errorf("parsing checksum: %w", err)
	}
	if len(b) != len(c) {
		return c, errors.Errorf("parsing checksum: want %d bytes, got %d", len(c), len(b))
	}
	copy(c[:], b)
	return c, nil
}

func (c Checksum) IsZero() bool {
	return c == Checksum{}
}

type hasher struct {
	h   hash.Hash
	buf [8]byte
}

func newHasher() *hasher {
	return &hasher{h: sha256.New()}
}

func (h *hasher) u8(v uint8) {
	h.buf[0] = v
	_, _ = h.h.Write(h.buf[:1])
}

func (h *hasher) u32(v uint32) {
	binary.LittleEndian.PutUint32(h.buf[:4], v)
	_, _ = h.h.Write(h.buf[:4])
}

func (h *hasher) bool(v bool) {
	if v {
		h.u8(1)
		return
	}
	h.u8(0)
}

func (h *hasher) length(n int) {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		v = math.MaxUint32
	}
	h.u32(v)
}

func (h *hasher) str(s string) {
	h.length(len(s))
	_, _ = io.WriteString(h.h, s)
}

func (h *hasher) strs(ss []string) {
	h.length(len(ss))
	for _, s := range ss {
		h.str(s)
	}
}

func (h *hasher) sum() Checksum {
	var out Checksum
	copy(out[:], h.h.Sum(nil))
	return out
}

func computeChecksum(d *TagHelperDescriptor) Checksum {
	h := newHasher()
	h.u8(uint8(d.Kind))
	h.u8(uint8(d.RuntimeKind))
	h.str(d.Name)
	h.str(d.AssemblyName)
	h.str(d.DisplayName)
	h.str(d.TypeName)
	h.str(d.TypeNamespace)
	h.str(d.TypeNameIdentifier)
	h.bool(d.CaseSensitive)
	h.bool(d.ClassifyAttributesOnly)
	h.bool(d.IsFullyQualifiedNameMatch)
	h.str(d.TagOutputHint)
	h.strs(d.AllowedChildTags)
	writeDocs(h, d.Documentation)

	h.length(len(d.TagMatchingRules))
	for _, r := range d.TagMatchingRules {
		h.str(r.TagName)
		h.str(r.ParentTag)
		h.u8(uint8(r.TagStructure))
		h.bool(r.CaseSensitive)
		h.length(len(r.Attributes))
		for _, a := range r.Attributes {
			h.str(a.Name)
			h.u8(uint8(a.NameComparison))
			h.str(a.Value)
			h.u8(uint8(a.ValueComparison))
			h.bool(a.IsDirectiveAttribute)
			h.bool(a.CaseSensitive)
			h.str(a.DisplayName)
		}
	}

	h.length(len(d.BoundAttributes))
	for _, a := range d.BoundAttributes {
		h.str(a.Name)
		h.str(a.PropertyName)
		h.str(a.TypeName)
		h.bool(a.IsEnum)
		h.bool(a.IsDictionary)
		h.str(a.IndexerNamePrefix)
		h.str(a.IndexerTypeName)
		h.bool(a.IsDirectiveAttribute)
		h.bool(a.IsWeaklyTyped)
		h.bool(a.IsEditorRequired)
		h.bool(a.CaseSensitive)
		h.str(a.DisplayName)
		h.str(a.ContainingType)
		writeDocs(h, a.Documentation)
		a.Shape.writeTo(h)
		h.length(len(a.Parameters))
		for _, p := range a.Parameters {
			h.str(p.Name)
			h.str(p.PropertyName)
			h.str(p.TypeName)
			h.bool(p.IsEnum)
			h.bool(p.BindAttributeGetSet)
			h.bool(p.CaseSensitive)
			h.str(p.DisplayName)
			writeDocs(h, p.Documentation)
		}
	}

	if d.Metadata == nil {
		h.u8(uint8(MetadataNone))
	} else {
		h.u8(uint8(d.Metadata.MetadataKind()))
		d.Metadata.writeTo(h)
	}

	return h.sum()
}

func writeDocs(h *hasher, d *docs.Descriptor) {
	if d == nil {
		h.u8(0)
		return
	}
	h.u8(uint8(d.ID))
	h.strs(d.Args)
}
