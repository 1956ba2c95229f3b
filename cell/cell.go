// Package cell implements the bounded cell-tree primitive of the ABI
// codec: an immutable Cell with at most 1023 data bits and 4 child
// references, a mutable Builder that spills overflowing payloads into
// chained references, a Slice reader, and a bag-of-cells byte
// serializer.
//
// The Builder/spill-routine split mirrors the xssnick/tonutils
// cell-builder reference file's Builder type; the bag-of-cells format
// in boc.go mirrors the mr-tron/tongo boc.go reference file's
// topological-sort-and-descriptor approach.
package cell

import (
	"github.com/cvsouth/abicell/abierr"
	"github.com/cvsouth/abicell/bitstring"
)

// Capacity limits pinned by spec.md §3.
const (
	MaxDataBits = 1023
	MaxRefs     = 4
)

// Cell is an immutable node of the serialization DAG.
type Cell struct {
	Data *bitstring.Bitstring
	Refs []*Cell
}

// Builder is the mutable precursor of a Cell.
type Builder struct {
	data *bitstring.Bitstring
	refs []*Builder
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{data: bitstring.New()}
}

// BitsUsed reports the number of data bits appended so far.
func (b *Builder) BitsUsed() int { return b.data.Length() }

// BitsCapacity reports the fixed per-cell data-bit capacity.
func (b *Builder) BitsCapacity() int { return MaxDataBits }

// RefsUsed reports the number of child references appended so far.
func (b *Builder) RefsUsed() int { return len(b.refs) }

// RefsCapacity reports the fixed per-cell reference capacity.
func (b *Builder) RefsCapacity() int { return MaxRefs }

// AppendData appends bs to the builder's data region iff the
// remaining capacity suffices.
func (b *Builder) AppendData(bs *bitstring.Bitstring) error {
	if b.BitsUsed()+bs.Length() > MaxDataBits {
		return abierr.New(abierr.InvalidOperation,
			"append_data: %d bits exceeds remaining capacity %d",
			bs.Length(), MaxDataBits-b.BitsUsed())
	}
	b.data.Append(bs)
	return nil
}

// AppendReference adds child as the next (rightmost) reference.
func (b *Builder) AppendReference(child *Builder) error {
	if len(b.refs) >= MaxRefs {
		return abierr.New(abierr.InvalidOperation, "append_reference: builder already has %d references", MaxRefs)
	}
	b.refs = append(b.refs, child)
	return nil
}

// PrependReference inserts child as the leftmost reference.
func (b *Builder) PrependReference(child *Builder) error {
	if len(b.refs) >= MaxRefs {
		return abierr.New(abierr.InvalidOperation, "prepend_reference: builder already has %d references", MaxRefs)
	}
	b.refs = append([]*Builder{child}, b.refs...)
	return nil
}

// IntoCell finalizes the builder into an immutable Cell, recursively
// finalizing any child builders.
func (b *Builder) IntoCell() (*Cell, error) {
	refs := make([]*Cell, len(b.refs))
	for i, r := range b.refs {
		c, err := r.IntoCell()
		if err != nil {
			return nil, err
		}
		refs[i] = c
	}
	data, err := b.data.Bits(0, b.data.Length())
	if err != nil {
		return nil, err
	}
	return &Cell{Data: data, Refs: refs}, nil
}

// PutDataIntoChain is the canonical spill routine (spec.md §4.2): it
// appends data to builder, wrapping into freshly allocated parent
// builders whenever the current builder's data capacity is exhausted,
// filling from the TAIL of data toward its head: builder receives the
// last bits of data, each freshly allocated parent receives earlier
// ones, and the returned (outermost) builder holds the first bits. A
// Slice reads a cell's own data before descending into its first
// reference, so a chain built from an empty builder reads back in data
// order. See spec.md §4.2 and §9 "Chaining direction".
func PutDataIntoChain(builder *Builder, data *bitstring.Bitstring) (*Builder, error) {
	size := data.Length()
	cur := builder
	for size != 0 {
		if cur.BitsUsed() == MaxDataBits {
			parent := NewBuilder()
			if err := parent.AppendReference(cur); err != nil {
				return nil, err
			}
			cur = parent
		}
		adding := MaxDataBits - cur.BitsUsed()
		if adding > size {
			adding = size
		}
		cut, err := data.Bits(size-adding, size)
		if err != nil {
			return nil, err
		}
		if err := cur.AppendData(cut); err != nil {
			return nil, err
		}
		size -= adding
	}
	return cur, nil
}
