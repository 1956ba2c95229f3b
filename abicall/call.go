// Package abicall implements the function-call framing of spec.md
// §4.7: the ABI version + function-id prefix, argument encoding into
// a root cell, and signed-call attachment/verification.
package abicall

import (
	"math/big"

	"github.com/cvsouth/abicell/abitype"
	"github.com/cvsouth/abicell/abivalue"
	"github.com/cvsouth/abicell/bitstring"
	"github.com/cvsouth/abicell/cell"
)

// ABIVersion is the pinned leading byte of every encoded call
// (spec.md §3, §9: upgrades must extend, not replace, the framer).
const ABIVersion = 0x00

// EncodeFunctionCallIntoCell builds the unsigned root cell for a call
// to name with the given input tuple, per spec.md §4.7 step 1-3.
func EncodeFunctionCallIntoCell(name string, inTypes, outTypes []abitype.Type, input abivalue.Value) (*cell.Cell, error) {
	sig, err := abitype.FunctionSignature(name, inTypes, outTypes)
	if err != nil {
		return nil, err
	}
	funcID := abitype.GetFunctionID([]byte(sig))

	hdr := bitstring.New()
	if _, err := hdr.AppendUint(big.NewInt(int64(ABIVersion)), 8); err != nil {
		return nil, err
	}
	if _, err := hdr.AppendUint(big.NewInt(int64(funcID)), 32); err != nil {
		return nil, err
	}

	b := cell.NewBuilder()
	if err := b.AppendData(hdr); err != nil {
		return nil, err
	}
	b, err = abivalue.Encode(b, input)
	if err != nil {
		return nil, err
	}
	return b.IntoCell()
}

// EncodeFunctionCall is EncodeFunctionCallIntoCell followed by
// bag-of-cells serialization (spec.md §6's encode_function_call).
func EncodeFunctionCall(name string, inTypes, outTypes []abitype.Type, input abivalue.Value) ([]byte, error) {
	root, err := EncodeFunctionCallIntoCell(name, inTypes, outTypes, input)
	if err != nil {
		return nil, err
	}
	return cell.Serialize(root)
}

// DecodeResponseFromSlice decodes outTypes as a tuple from s.
func DecodeResponseFromSlice(s *cell.Slice, outTypes []abitype.Type) (abivalue.Value, error) {
	return abivalue.Decode(s, abitype.TupleOf(outTypes...))
}

// DecodeResponse deserializes data as a bag-of-cells and decodes
// outTypes from its root.
func DecodeResponse(data []byte, outTypes []abitype.Type) (abivalue.Value, error) {
	root, err := cell.Deserialize(data)
	if err != nil {
		return abivalue.Value{}, err
	}
	return DecodeResponseFromSlice(cell.NewSlice(root), outTypes)
}

// GetFunctionID computes the function id of a raw signature string,
// spec.md §6's get_function_id.
func GetFunctionID(signature []byte) uint32 {
	return abitype.GetFunctionID(signature)
}
