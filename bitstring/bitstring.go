// Package bitstring implements an append-only sequence of bits with
// bit-level slicing and big-endian integer append helpers.
//
// The packed representation (a []byte plus a bit-length counter,
// MSB-first within each byte) is grounded on the byte-oriented
// bit-packing style of the xssnick/tonutils cell builder reference
// file (MustStoreUInt/StoreSlice), rather than a []bool slice, so
// Append meets the O(bits appended) guarantee spec.md §4.1 requires.
package bitstring

import (
	"math/big"

	"github.com/cvsouth/abicell/abierr"
)

// Bitstring is a mutable, append-only sequence of bits. Methods that
// take a slice or sub-range ("view" operations) return an independent
// copy, matching spec.md's "values (copy on modification)" semantics;
// append operations mutate the receiver in place, as every reference
// cell-builder in the example pack does for its own builder type.
type Bitstring struct {
	data   []byte
	bitsSz int
}

// New returns an empty Bitstring.
func New() *Bitstring {
	return &Bitstring{}
}

// Length reports the exact number of bits appended so far, including
// non-byte-aligned tails.
func (b *Bitstring) Length() int {
	return b.bitsSz
}

func (b *Bitstring) ensureCapacity(bits int) {
	neededBytes := (bits + 7) / 8
	if len(b.data) < neededBytes {
		b.data = append(b.data, make([]byte, neededBytes-len(b.data))...)
	}
}

// AppendBit appends a single bit (0 or nonzero treated as 1).
func (b *Bitstring) AppendBit(bit int) *Bitstring {
	b.ensureCapacity(b.bitsSz + 1)
	byteIdx := b.bitsSz / 8
	bitOff := uint(b.bitsSz % 8)
	if bit != 0 {
		b.data[byteIdx] |= 0x80 >> bitOff
	}
	b.bitsSz++
	return b
}

// AppendBool appends a single bit, true -> 1, false -> 0.
func (b *Bitstring) AppendBool(v bool) *Bitstring {
	if v {
		return b.AppendBit(1)
	}
	return b.AppendBit(0)
}

// Bit returns the bit at position i (0 = first appended).
func (b *Bitstring) Bit(i int) (int, error) {
	if i < 0 || i >= b.bitsSz {
		return 0, abierr.New(abierr.DataExhausted, "bit index %d out of range (length %d)", i, b.bitsSz)
	}
	byteIdx := i / 8
	bitOff := uint(i % 8)
	if b.data[byteIdx]&(0x80>>bitOff) != 0 {
		return 1, nil
	}
	return 0, nil
}

// Append appends other's bits to b, in order, and returns b.
func (b *Bitstring) Append(other *Bitstring) *Bitstring {
	for i := 0; i < other.bitsSz; i++ {
		bit, _ := other.Bit(i)
		b.AppendBit(bit)
	}
	return b
}

// Bits returns an independent copy of the bits in [from, to).
func (b *Bitstring) Bits(from, to int) (*Bitstring, error) {
	if from < 0 || to > b.bitsSz || from > to {
		return nil, abierr.New(abierr.InvalidArg, "invalid bit range [%d, %d) of length %d", from, to, b.bitsSz)
	}
	out := New()
	for i := from; i < to; i++ {
		bit, _ := b.Bit(i)
		out.AppendBit(bit)
	}
	return out, nil
}

// Bytes returns the packed bytes; the final byte is zero-padded if
// the length is not a multiple of 8.
func (b *Bitstring) Bytes() []byte {
	n := (b.bitsSz + 7) / 8
	out := make([]byte, n)
	copy(out, b.data[:n])
	return out
}

// Create builds a Bitstring from bytes, truncating or zero-padding to
// exactly bitLength bits (matching spec.md §4.1's create(bytes,
// bit_length)).
func Create(data []byte, bitLength int) *Bitstring {
	out := New()
	out.ensureCapacity(bitLength)
	out.bitsSz = bitLength
	n := (bitLength + 7) / 8
	for i := 0; i < n && i < len(data); i++ {
		out.data[i] = data[i]
	}
	if bitLength%8 != 0 {
		// zero any bits past bitLength in the final byte.
		mask := byte(0xFF << uint(8-bitLength%8))
		out.data[n-1] &= mask
	}
	return out
}

// twosComplement returns the non-negative bits-wide two's-complement
// representation of v (which may be negative) as a big.Int, i.e.
// v mod 2^bits. A negative v is converted explicitly to v + 2^bits
// once up front, and the non-negative result is then read bit-by-bit
// via big.Int.Bit.
func twosComplement(v *big.Int, bits int) *big.Int {
	if v.Sign() >= 0 {
		return v
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return new(big.Int).Add(v, mod)
}

// AppendUint appends the bits-wide big-endian unsigned representation
// of v. v must be non-negative and fit in bits bits.
func (b *Bitstring) AppendUint(v *big.Int, bits int) (*Bitstring, error) {
	if v.Sign() < 0 {
		return nil, abierr.New(abierr.InvalidArg, "uint%d: negative value %s", bits, v.String())
	}
	if v.BitLen() > bits {
		return nil, abierr.New(abierr.InvalidArg, "uint%d: value %s does not fit", bits, v.String())
	}
	for i := bits - 1; i >= 0; i-- {
		b.AppendBit(int(v.Bit(i)))
	}
	return b, nil
}

// AppendInt appends the bits-wide big-endian two's-complement
// representation of v. v must fit in the signed bits-wide range.
func (b *Bitstring) AppendInt(v *big.Int, bits int) (*Bitstring, error) {
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min := new(big.Int).Neg(max)
	if v.Cmp(min) < 0 || v.Cmp(new(big.Int).Sub(max, big.NewInt(1))) > 0 {
		return nil, abierr.New(abierr.InvalidArg, "int%d: value %s out of range", bits, v.String())
	}
	tc := twosComplement(v, bits)
	for i := bits - 1; i >= 0; i-- {
		b.AppendBit(int(tc.Bit(i)))
	}
	return b, nil
}
