// Package abitype implements the ABI type grammar and canonical
// signature rendering of spec.md §3-§4.4.
package abitype

import (
	"fmt"
	"strings"

	"github.com/cvsouth/abicell/abierr"
)

// Kind enumerates the recursive type grammar's forms.
type Kind int

const (
	Uint Kind = iota
	Int
	Bool
	Dint
	Duint
	Bits
	BitstringKind
	FixedArray
	DynamicArray
	Tuple
)

// Type is a node of the ABI type grammar. Width carries the bit width
// for Uint/Int/Bits and the element count for FixedArray. Elem carries
// the element type for FixedArray/DynamicArray. Fields carries the
// member types for Tuple.
type Type struct {
	Kind   Kind
	Width  int
	Elem   *Type
	Fields []Type
}

// UintN, IntN: N must be one of 8, 16, 32, 64, 128 per spec.md §3.
func UintN(n int) Type { return Type{Kind: Uint, Width: n} }
func IntN(n int) Type  { return Type{Kind: Int, Width: n} }

func BoolT() Type   { return Type{Kind: Bool} }
func DintT() Type   { return Type{Kind: Dint} }
func DuintT() Type  { return Type{Kind: Duint} }
func BitsN(n int) Type { return Type{Kind: Bits, Width: n} }
func BitstringT() Type { return Type{Kind: BitstringKind} }

// ArrayN builds a fixed array T[n].
func ArrayN(elem Type, n int) Type {
	e := elem
	return Type{Kind: FixedArray, Width: n, Elem: &e}
}

// ArrayDyn builds a dynamic array T[].
func ArrayDyn(elem Type) Type {
	e := elem
	return Type{Kind: DynamicArray, Elem: &e}
}

// TupleOf builds a tuple (T1, ..., Tk).
func TupleOf(fields ...Type) Type {
	return Type{Kind: Tuple, Fields: fields}
}

// IsFixedWidth reports whether t's packed payload has a size known
// from the type alone: uint/int/bool primitives, and tuples and fixed
// arrays composed entirely of such. A fixed array still carries its
// two-bit placement header when encoded, on top of that payload.
func (t Type) IsFixedWidth() bool {
	switch t.Kind {
	case Uint, Int, Bool:
		return true
	case FixedArray:
		return t.Elem.IsFixedWidth()
	case Tuple:
		for _, f := range t.Fields {
			if !f.IsFixedWidth() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// BitWidth returns the exact payload bit width of a fixed-width type
// (for a fixed array, excluding its placement header). It panics if
// called on a type for which IsFixedWidth is false.
func (t Type) BitWidth() int {
	switch t.Kind {
	case Uint, Int:
		return t.Width
	case Bool:
		return 1
	case FixedArray:
		return t.Width * t.Elem.BitWidth()
	case Tuple:
		sum := 0
		for _, f := range t.Fields {
			sum += f.BitWidth()
		}
		return sum
	default:
		panic("abitype: BitWidth called on a variable-width type")
	}
}

// Signature renders t's canonical textual signature per spec.md §4.4.
func (t Type) Signature() (string, error) {
	switch t.Kind {
	case Uint:
		return fmt.Sprintf("uint%d", t.Width), nil
	case Int:
		return fmt.Sprintf("int%d", t.Width), nil
	case Bool:
		return "bool", nil
	case Dint:
		return "dint", nil
	case Duint:
		return "duint", nil
	case Bits:
		return fmt.Sprintf("bits%d", t.Width), nil
	case BitstringKind:
		return "bitstring", nil
	case FixedArray:
		elemSig, err := t.Elem.Signature()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%d]", elemSig, t.Width), nil
	case DynamicArray:
		elemSig, err := t.Elem.Signature()
		if err != nil {
			return "", err
		}
		return elemSig + "[]", nil
	case Tuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			sig, err := f.Signature()
			if err != nil {
				return "", err
			}
			parts[i] = sig
		}
		return "(" + strings.Join(parts, ",") + ")", nil
	default:
		return "", abierr.New(abierr.InternalError, "unknown type kind %d", t.Kind)
	}
}
