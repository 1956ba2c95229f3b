package cell

import (
	"math/big"

	"github.com/cvsouth/abicell/abierr"
	"github.com/cvsouth/abicell/bitstring"
)

// Slice is a positional read cursor over a Cell tree (spec.md §4.3).
type Slice struct {
	cell       *Cell
	dataOffset int
	refOffset  int
}

// NewSlice returns a Slice positioned at the start of c.
func NewSlice(c *Cell) *Slice {
	return &Slice{cell: c}
}

// IsExhausted reports whether no further bits can be read: the
// current cell's data is consumed and no reference provides
// continuation.
func (s *Slice) IsExhausted() bool {
	return s.dataOffset >= s.cell.Data.Length() && s.refOffset >= len(s.cell.Refs)
}

// GetNextBit reads the next bit, auto-descending into the next
// unconsumed child reference (checked_drain_reference, spec.md §4.3)
// when the current cell's data is exhausted.
func (s *Slice) GetNextBit() (int, error) {
	for s.dataOffset >= s.cell.Data.Length() {
		if s.refOffset >= len(s.cell.Refs) {
			return 0, abierr.New(abierr.DataExhausted, "slice exhausted")
		}
		s.cell = s.cell.Refs[s.refOffset]
		s.dataOffset = 0
		s.refOffset = 0
	}
	bit, err := s.cell.Data.Bit(s.dataOffset)
	if err != nil {
		return 0, abierr.Wrap(abierr.InternalError, err, "read bit at offset %d", s.dataOffset)
	}
	s.dataOffset++
	return bit, nil
}

// GetNextBits reads the next n bits as a fresh Bitstring.
func (s *Slice) GetNextBits(n int) (*bitstring.Bitstring, error) {
	out := bitstring.New()
	for i := 0; i < n; i++ {
		bit, err := s.GetNextBit()
		if err != nil {
			return nil, err
		}
		out.AppendBit(bit)
	}
	return out, nil
}

// GetNextBool reads a single bit as a bool.
func (s *Slice) GetNextBool() (bool, error) {
	bit, err := s.GetNextBit()
	if err != nil {
		return false, err
	}
	return bit != 0, nil
}

// GetNextByte reads the next 8 bits as a byte.
func (s *Slice) GetNextByte() (byte, error) {
	bs, err := s.GetNextBits(8)
	if err != nil {
		return 0, err
	}
	return bs.Bytes()[0], nil
}

func bitsToUnsigned(bs *bitstring.Bitstring) *big.Int {
	v := new(big.Int)
	one := big.NewInt(1)
	for i := 0; i < bs.Length(); i++ {
		v.Lsh(v, 1)
		bit, _ := bs.Bit(i)
		if bit != 0 {
			v.Or(v, one)
		}
	}
	return v
}

// GetNextUint reads an N-bit big-endian unsigned integer.
func (s *Slice) GetNextUint(bits int) (*big.Int, error) {
	bs, err := s.GetNextBits(bits)
	if err != nil {
		return nil, err
	}
	return bitsToUnsigned(bs), nil
}

// GetNextInt reads an N-bit big-endian two's-complement signed
// integer.
func (s *Slice) GetNextInt(bits int) (*big.Int, error) {
	bs, err := s.GetNextBits(bits)
	if err != nil {
		return nil, err
	}
	v := bitsToUnsigned(bs)
	topBit, _ := bs.Bit(0)
	if topBit != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		v.Sub(v, mod)
	}
	return v, nil
}

// CheckedDrainReference returns the next unconsumed child reference
// of the current cell without following it, for composite decoders
// that need to open a dedicated sub-Slice over a referenced payload.
func (s *Slice) CheckedDrainReference() (*Cell, error) {
	if s.refOffset >= len(s.cell.Refs) {
		return nil, abierr.New(abierr.DataExhausted, "no more references to drain")
	}
	c := s.cell.Refs[s.refOffset]
	s.refOffset++
	return c, nil
}
