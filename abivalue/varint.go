package abivalue

import (
	"math/big"

	"github.com/cvsouth/abicell/cell"
)

// DecodeDuint is the dual of EncodeDuint.
func DecodeDuint(s *cell.Slice) (*big.Int, error) {
	result := new(big.Int)
	shift := uint(0)
	for {
		b, err := s.GetNextByte()
		if err != nil {
			return nil, err
		}
		chunk := new(big.Int).Lsh(big.NewInt(int64(b&0x7F)), shift)
		result.Or(result, chunk)
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	return result, nil
}

// DecodeDint is the dual of EncodeDint: standard SLEB128 decoding,
// sign-extending from the final byte's bit 6 once the continuation
// bit clears.
func DecodeDint(s *cell.Slice) (*big.Int, error) {
	result := new(big.Int)
	shift := uint(0)
	var last byte
	for {
		b, err := s.GetNextByte()
		if err != nil {
			return nil, err
		}
		last = b
		chunk := new(big.Int).Lsh(big.NewInt(int64(b&0x7F)), shift)
		result.Or(result, chunk)
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if last&0x40 != 0 {
		ext := new(big.Int).Lsh(big.NewInt(1), shift)
		result.Sub(result, ext)
	}
	return result, nil
}
