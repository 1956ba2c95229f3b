package abicall

import (
	"crypto/ed25519"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cvsouth/abicell/abitype"
	"github.com/cvsouth/abicell/abivalue"
	"github.com/cvsouth/abicell/cell"
)

func TestSignedCallRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	inTypes := []abitype.Type{abitype.UintN(128)}
	outTypes := []abitype.Type{abitype.BoolT()}
	input := abivalue.TupleV(abivalue.Uint(128, big.NewInt(1979)))

	data, err := EncodeSignedFunctionCall("test_one_input_and_output", inTypes, outTypes, input, priv)
	if err != nil {
		t.Fatal(err)
	}

	root, err := cell.Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Refs) == 0 {
		t.Fatal("expected at least one reference (signature cell)")
	}
	if root.Refs[0].Data.Length() != signatureBits+publicKeyBits {
		t.Fatalf("signature cell length = %d, want %d", root.Refs[0].Data.Length(), signatureBits+publicKeyBits)
	}

	body, err := VerifySignedCall(data, pub)
	if err != nil {
		t.Fatalf("verification failed: %v", err)
	}

	// The body still begins with the version byte and function id,
	// which DecodeResponse does not skip: decode them as a uint8 and a
	// uint32 ahead of the argument.
	frameTypes := append([]abitype.Type{abitype.UintN(8), abitype.UintN(32)}, inTypes...)
	got, err := DecodeResponse(body, frameTypes)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tuple[2].Int.Cmp(big.NewInt(1979)) != 0 {
		t.Fatalf("decoded value = %v, want 1979", got.Tuple[2].Int)
	}
}

func TestSignedCallRejectsTampering(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	input := abivalue.TupleV(abivalue.Bool(true))
	data, err := EncodeSignedFunctionCall("test_flag", nil, nil, input, priv)
	if err != nil {
		t.Fatal(err)
	}

	tampered := append([]byte(nil), data...)
	tampered[len(tampered)-1] ^= 0xFF
	if _, err := VerifySignedCall(tampered, pub); err == nil {
		t.Fatal("expected verification to fail after tampering with the tail byte")
	}
}

func TestSignedCallRejectsWrongKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	input := abivalue.TupleV(abivalue.Bool(false))
	data, err := EncodeSignedFunctionCall("test_flag", nil, nil, input, priv)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifySignedCall(data, otherPub); err == nil {
		t.Fatal("expected verification to fail against an unrelated public key")
	}
}

func TestSignedCallAcceptsNilExpectedKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	input := abivalue.TupleV(abivalue.Bool(true))
	data, err := EncodeSignedFunctionCall("test_flag", nil, nil, input, priv)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifySignedCall(data, nil); err != nil {
		t.Fatalf("verification with no expected key should still succeed: %v", err)
	}
}
