package abivalue

import (
	"math/big"

	"github.com/cvsouth/abicell/abierr"
	"github.com/cvsouth/abicell/abitype"
	"github.com/cvsouth/abicell/bitstring"
	"github.com/cvsouth/abicell/cell"
)

func bigFromInt(n int) *big.Int { return big.NewInt(int64(n)) }

const dynamicArrayLenBits = 8
const maxDynamicArrayLen = 255

// Encode is the top-level inductive encoder of spec.md §4.5: it
// consumes v and returns the builder to continue appending to. Only a
// "top-level" value — a function argument, or a field of a tuple that
// itself reached this function — gets to make its own
// real inline/referenced placement decision against builder's actual
// remaining capacity; array/bitstring elements nested inside another
// composite's own payload are encoded via flattenElement instead (see
// SPEC_FULL.md §4.2a).
func Encode(builder *cell.Builder, v Value) (*cell.Builder, error) {
	switch v.Type.Kind {
	case abitype.Uint:
		bits := bitstring.New()
		if _, err := bits.AppendUint(v.Int, v.Type.Width); err != nil {
			return nil, err
		}
		return cell.PutDataIntoChain(builder, bits)
	case abitype.Int:
		bits := bitstring.New()
		if _, err := bits.AppendInt(v.Int, v.Type.Width); err != nil {
			return nil, err
		}
		return cell.PutDataIntoChain(builder, bits)
	case abitype.Bool:
		bits := bitstring.New().AppendBool(v.Bool)
		return cell.PutDataIntoChain(builder, bits)
	case abitype.Dint:
		bits, err := EncodeDint(v.Int)
		if err != nil {
			return nil, err
		}
		return cell.PutDataIntoChain(builder, bits)
	case abitype.Duint:
		bits, err := EncodeDuint(v.Int)
		if err != nil {
			return nil, err
		}
		return cell.PutDataIntoChain(builder, bits)
	case abitype.Bits:
		return encodeBitsLike(builder, v, false)
	case abitype.BitstringKind:
		return encodeBitsLike(builder, v, true)
	case abitype.FixedArray, abitype.DynamicArray:
		return encodeArray(builder, v)
	case abitype.Tuple:
		cur := builder
		var err error
		for _, f := range v.Tuple {
			cur, err = Encode(cur, f)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil
	default:
		return nil, abierr.New(abierr.InternalError, "encode: unknown type kind %d", v.Type.Kind)
	}
}

// encodeBitsLike handles `bits<N>` (hasLength=false) and `bitstring`
// (hasLength=true), per spec.md §4.5.
func encodeBitsLike(builder *cell.Builder, v Value, hasLength bool) (*cell.Builder, error) {
	content := v.Payload
	lenBits := 0
	if hasLength {
		if content.Length() > 255 {
			return nil, abierr.New(abierr.InvalidArg, "bitstring length %d exceeds 255", content.Length())
		}
		lenBits = 8
	}
	fitsInline := builder.BitsUsed()+2+lenBits+content.Length() <= cell.MaxDataBits

	if fitsInline {
		cur, err := cell.PutDataIntoChain(builder, header(true))
		if err != nil {
			return nil, err
		}
		if hasLength {
			lenBs := bitstring.New()
			if _, err := lenBs.AppendUint(bigFromInt(content.Length()), 8); err != nil {
				return nil, err
			}
			if cur, err = cell.PutDataIntoChain(cur, lenBs); err != nil {
				return nil, err
			}
		}
		return cell.PutDataIntoChain(cur, content)
	}

	cur, err := cell.PutDataIntoChain(builder, header(false))
	if err != nil {
		return nil, err
	}
	child, err := cell.PutDataIntoChain(cell.NewBuilder(), content)
	if err != nil {
		return nil, err
	}
	if err := cur.AppendReference(child); err != nil {
		return nil, err
	}
	return cur, nil
}

// encodeArray handles T[N] and T[] per spec.md §4.5. Elements are
// flattened via flattenElement: only the array itself (as the
// top-level composite at this call site) makes a real placement
// decision; nested composite elements always flatten inline into the
// array's own payload (SPEC_FULL.md §4.2a).
func encodeArray(builder *cell.Builder, v Value) (*cell.Builder, error) {
	isDynamic := v.Type.Kind == abitype.DynamicArray
	if isDynamic && len(v.Array) > maxDynamicArrayLen {
		return nil, abierr.New(abierr.InvalidArg, "dynamic array length %d exceeds %d", len(v.Array), maxDynamicArrayLen)
	}

	content := bitstring.New()
	for _, e := range v.Array {
		sub, err := flattenElement(e)
		if err != nil {
			return nil, err
		}
		content.Append(sub)
	}

	lenBits := 0
	if isDynamic {
		lenBits = dynamicArrayLenBits
	}
	fitsInline := builder.BitsUsed()+2+lenBits+content.Length() <= cell.MaxDataBits

	if fitsInline {
		cur, err := cell.PutDataIntoChain(builder, header(true))
		if err != nil {
			return nil, err
		}
		if isDynamic {
			lenBs := bitstring.New()
			if _, err := lenBs.AppendUint(bigFromInt(len(v.Array)), dynamicArrayLenBits); err != nil {
				return nil, err
			}
			if cur, err = cell.PutDataIntoChain(cur, lenBs); err != nil {
				return nil, err
			}
		}
		return cell.PutDataIntoChain(cur, content)
	}

	cur, err := cell.PutDataIntoChain(builder, header(false))
	if err != nil {
		return nil, err
	}
	// Referenced dynamic arrays carry no length byte: the decoder
	// reads elements until the dedicated chain is exhausted.
	child, err := cell.PutDataIntoChain(cell.NewBuilder(), content)
	if err != nil {
		return nil, err
	}
	if err := cur.AppendReference(child); err != nil {
		return nil, err
	}
	return cur, nil
}

// flattenElement recursively renders v as a flat Bitstring with no
// awareness of any enclosing builder's remaining capacity: composite
// values (arrays, bits<N>, bitstring) always choose the inline `10`
// placement header when nested this way, per SPEC_FULL.md §4.2a.
func flattenElement(v Value) (*bitstring.Bitstring, error) {
	switch v.Type.Kind {
	case abitype.Uint:
		bs := bitstring.New()
		_, err := bs.AppendUint(v.Int, v.Type.Width)
		return bs, err
	case abitype.Int:
		bs := bitstring.New()
		_, err := bs.AppendInt(v.Int, v.Type.Width)
		return bs, err
	case abitype.Bool:
		return bitstring.New().AppendBool(v.Bool), nil
	case abitype.Dint:
		return EncodeDint(v.Int)
	case abitype.Duint:
		return EncodeDuint(v.Int)
	case abitype.Bits:
		out := header(true)
		out.Append(v.Payload)
		return out, nil
	case abitype.BitstringKind:
		if v.Payload.Length() > 255 {
			return nil, abierr.New(abierr.InvalidArg, "bitstring length %d exceeds 255", v.Payload.Length())
		}
		out := header(true)
		lenBs := bitstring.New()
		if _, err := lenBs.AppendUint(bigFromInt(v.Payload.Length()), 8); err != nil {
			return nil, err
		}
		out.Append(lenBs)
		out.Append(v.Payload)
		return out, nil
	case abitype.FixedArray, abitype.DynamicArray:
		out := header(true)
		if v.Type.Kind == abitype.DynamicArray {
			if len(v.Array) > maxDynamicArrayLen {
				return nil, abierr.New(abierr.InvalidArg, "dynamic array length %d exceeds %d", len(v.Array), maxDynamicArrayLen)
			}
			lenBs := bitstring.New()
			if _, err := lenBs.AppendUint(bigFromInt(len(v.Array)), dynamicArrayLenBits); err != nil {
				return nil, err
			}
			out.Append(lenBs)
		}
		for _, e := range v.Array {
			sub, err := flattenElement(e)
			if err != nil {
				return nil, err
			}
			out.Append(sub)
		}
		return out, nil
	case abitype.Tuple:
		out := bitstring.New()
		for _, f := range v.Tuple {
			sub, err := flattenElement(f)
			if err != nil {
				return nil, err
			}
			out.Append(sub)
		}
		return out, nil
	default:
		return nil, abierr.New(abierr.InternalError, "flattenElement: unknown type kind %d", v.Type.Kind)
	}
}

// header builds the two-bit placement header: `10` for inline, `00`
// for referenced (spec.md §4.5).
func header(inline bool) *bitstring.Bitstring {
	out := bitstring.New()
	if inline {
		out.AppendBit(1).AppendBit(0)
	} else {
		out.AppendBit(0).AppendBit(0)
	}
	return out
}
