// Package abivalue implements typed ABI values and the encoder/decoder
// traversals of spec.md §4.5-§4.6: a tagged-variant representation
// (spec.md §9's "runtime tagged variant AbiValue" option) carrying its
// own abitype.Type, plus dint/duint's SLEB128/LEB128 encoding.
package abivalue

import (
	"math/big"

	"github.com/cvsouth/abicell/abierr"
	"github.com/cvsouth/abicell/abitype"
	"github.com/cvsouth/abicell/bitstring"
)

// Value is a tagged ABI value: exactly one of Int, Bool, Payload,
// Array, or Tuple is meaningful, selected by Type.Kind.
type Value struct {
	Type    abitype.Type
	Int     *big.Int              // Uint, Int, Dint, Duint
	Bool    bool                  // Bool
	Payload *bitstring.Bitstring  // Bits, BitstringKind
	Array   []Value               // FixedArray, DynamicArray
	Tuple   []Value               // Tuple
}

func Uint(width int, v *big.Int) Value { return Value{Type: abitype.UintN(width), Int: v} }
func Int(width int, v *big.Int) Value  { return Value{Type: abitype.IntN(width), Int: v} }
func Bool(v bool) Value                { return Value{Type: abitype.BoolT(), Bool: v} }
func Dint(v *big.Int) Value            { return Value{Type: abitype.DintT(), Int: v} }
func Duint(v *big.Int) Value           { return Value{Type: abitype.DuintT(), Int: v} }

func Bits(width int, bits *bitstring.Bitstring) Value {
	return Value{Type: abitype.BitsN(width), Payload: bits}
}

func BitstringV(bits *bitstring.Bitstring) Value {
	return Value{Type: abitype.BitstringT(), Payload: bits}
}

func FixedArray(elemType abitype.Type, elems []Value) Value {
	return Value{Type: abitype.ArrayN(elemType, len(elems)), Array: elems}
}

func DynamicArray(elemType abitype.Type, elems []Value) Value {
	return Value{Type: abitype.ArrayDyn(elemType), Array: elems}
}

func TupleV(fields ...Value) Value {
	types := make([]abitype.Type, len(fields))
	for i, f := range fields {
		types[i] = f.Type
	}
	return Value{Type: abitype.TupleOf(types...), Tuple: fields}
}

// EncodeDuint renders v as a standard unsigned LEB128 byte stream: 7
// bits of magnitude per byte, low-order group first, high bit of each
// byte set iff another byte follows.
func EncodeDuint(v *big.Int) (*bitstring.Bitstring, error) {
	if v.Sign() < 0 {
		return nil, abierr.New(abierr.InvalidArg, "duint: negative value %s", v.String())
	}
	out := bitstring.New()
	val := new(big.Int).Set(v)
	zero := big.NewInt(0)
	for {
		group := new(big.Int).And(val, big.NewInt(0x7F))
		val.Rsh(val, 7)
		more := val.Cmp(zero) != 0
		b := byte(group.Int64())
		if more {
			b |= 0x80
		}
		if _, err := out.AppendUint(big.NewInt(int64(b)), 8); err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return out, nil
}

// EncodeDint renders v as a standard signed LEB128 (SLEB128) byte
// stream, relying on math/big's documented arithmetic-shift-consistent
// Rsh for negative operands (floor division by 2^n, i.e. sign
// extension on repeated shifts) to make the per-byte sign-termination
// check correct without a separate two's-complement conversion.
func EncodeDint(v *big.Int) (*bitstring.Bitstring, error) {
	out := bitstring.New()
	val := new(big.Int).Set(v)
	negOne := big.NewInt(-1)
	for {
		group := new(big.Int).And(val, big.NewInt(0x7F))
		b := byte(group.Int64())
		val.Rsh(val, 7)
		signBitSet := b&0x40 != 0
		done := (val.Sign() == 0 && !signBitSet) || (val.Cmp(negOne) == 0 && signBitSet)
		if !done {
			b |= 0x80
		}
		if _, err := out.AppendUint(big.NewInt(int64(b)), 8); err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return out, nil
}
