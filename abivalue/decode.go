package abivalue

import (
	"github.com/cvsouth/abicell/abierr"
	"github.com/cvsouth/abicell/abitype"
	"github.com/cvsouth/abicell/bitstring"
	"github.com/cvsouth/abicell/cell"
)

// Decode is the dual of Encode/flattenElement (spec.md §4.6). It is
// fully general: it interprets whatever placement header bits are
// actually present at any nesting depth, so it correctly decodes
// values this package's own encoder produced (which only ever writes
// `00` at the outermost composite of a call site, per
// SPEC_FULL.md §4.2a) as well as any other validly-encoded cell tree.
func Decode(s *cell.Slice, t abitype.Type) (Value, error) {
	switch t.Kind {
	case abitype.Uint:
		n, err := s.GetNextUint(t.Width)
		if err != nil {
			return Value{}, err
		}
		return Uint(t.Width, n), nil
	case abitype.Int:
		n, err := s.GetNextInt(t.Width)
		if err != nil {
			return Value{}, err
		}
		return Int(t.Width, n), nil
	case abitype.Bool:
		b, err := s.GetNextBool()
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case abitype.Dint:
		n, err := DecodeDint(s)
		if err != nil {
			return Value{}, err
		}
		return Dint(n), nil
	case abitype.Duint:
		n, err := DecodeDuint(s)
		if err != nil {
			return Value{}, err
		}
		return Duint(n), nil
	case abitype.Bits:
		bits, err := decodeBitsLike(s, t.Width, false)
		if err != nil {
			return Value{}, err
		}
		return Bits(t.Width, bits), nil
	case abitype.BitstringKind:
		bits, err := decodeBitsLike(s, 0, true)
		if err != nil {
			return Value{}, err
		}
		return BitstringV(bits), nil
	case abitype.FixedArray:
		elems, err := decodeArray(s, *t.Elem, t.Width, false)
		if err != nil {
			return Value{}, err
		}
		return FixedArray(*t.Elem, elems), nil
	case abitype.DynamicArray:
		elems, err := decodeArray(s, *t.Elem, 0, true)
		if err != nil {
			return Value{}, err
		}
		return DynamicArray(*t.Elem, elems), nil
	case abitype.Tuple:
		fields := make([]Value, len(t.Fields))
		for i, ft := range t.Fields {
			v, err := Decode(s, ft)
			if err != nil {
				return Value{}, err
			}
			fields[i] = v
		}
		return TupleV(fields...), nil
	default:
		return Value{}, abierr.New(abierr.InternalError, "decode: unknown type kind %d", t.Kind)
	}
}

// readHeader reads the two-bit placement header and rejects the
// reserved combinations (spec.md §4.6, §9).
func readHeader(s *cell.Slice) (inline bool, err error) {
	hi, err := s.GetNextBit()
	if err != nil {
		return false, err
	}
	lo, err := s.GetNextBit()
	if err != nil {
		return false, err
	}
	switch {
	case hi == 1 && lo == 0:
		return true, nil
	case hi == 0 && lo == 0:
		return false, nil
	default:
		return false, abierr.New(abierr.InvalidData, "reserved placement header bits %d%d", hi, lo)
	}
}

func decodeBitsLike(s *cell.Slice, width int, hasLength bool) (*bitstring.Bitstring, error) {
	inline, err := readHeader(s)
	if err != nil {
		return nil, err
	}
	if inline {
		n := width
		if hasLength {
			lb, err := s.GetNextByte()
			if err != nil {
				return nil, err
			}
			n = int(lb)
		}
		return s.GetNextBits(n)
	}
	ref, err := s.CheckedDrainReference()
	if err != nil {
		return nil, err
	}
	sub := cell.NewSlice(ref)
	if hasLength {
		// Referenced bitstrings carry no length byte: the payload is
		// everything in the dedicated chain.
		return readAllBits(sub)
	}
	return sub.GetNextBits(width)
}

func decodeArray(s *cell.Slice, elemType abitype.Type, fixedLen int, isDynamic bool) ([]Value, error) {
	inline, err := readHeader(s)
	if err != nil {
		return nil, err
	}
	if inline {
		n := fixedLen
		if isDynamic {
			lb, err := s.GetNextByte()
			if err != nil {
				return nil, err
			}
			n = int(lb)
		}
		elems := make([]Value, n)
		for i := 0; i < n; i++ {
			v, err := Decode(s, elemType)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil
	}

	ref, err := s.CheckedDrainReference()
	if err != nil {
		return nil, err
	}
	sub := cell.NewSlice(ref)
	if !isDynamic {
		elems := make([]Value, fixedLen)
		for i := 0; i < fixedLen; i++ {
			v, err := Decode(sub, elemType)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil
	}
	// Referenced dynamic arrays carry no length byte: read elements
	// until the dedicated chain is exhausted.
	var elems []Value
	for !sub.IsExhausted() {
		v, err := Decode(sub, elemType)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return elems, nil
}

func readAllBits(s *cell.Slice) (*bitstring.Bitstring, error) {
	out := bitstring.New()
	for !s.IsExhausted() {
		bit, err := s.GetNextBit()
		if err != nil {
			return nil, err
		}
		out.AppendBit(bit)
	}
	return out, nil
}
