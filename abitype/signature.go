package abitype

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// FunctionSignature renders name(inTypes)(outTypes) per spec.md §3/§4.4:
// name + "(" + csv(inputs) + ")(" + csv(outputs) + ")", csv separated by
// a literal comma with no spaces.
func FunctionSignature(name string, inTypes, outTypes []Type) (string, error) {
	inSigs := make([]string, len(inTypes))
	for i, t := range inTypes {
		sig, err := t.Signature()
		if err != nil {
			return "", err
		}
		inSigs[i] = sig
	}
	outSigs := make([]string, len(outTypes))
	for i, t := range outTypes {
		sig, err := t.Signature()
		if err != nil {
			return "", err
		}
		outSigs[i] = sig
	}
	return name + "(" + strings.Join(inSigs, ",") + ")(" + strings.Join(outSigs, ",") + ")", nil
}

// GetFunctionID computes the first 4 bytes (big-endian) of
// SHA-256(signature) as a uint32, per spec.md §3/§6.
func GetFunctionID(signature []byte) uint32 {
	sum := sha256.Sum256(signature)
	return binary.BigEndian.Uint32(sum[0:4])
}
