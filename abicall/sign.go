package abicall

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha512"

	"filippo.io/edwards25519"

	"github.com/cvsouth/abicell/abierr"
	"github.com/cvsouth/abicell/abitype"
	"github.com/cvsouth/abicell/abivalue"
	"github.com/cvsouth/abicell/bitstring"
	"github.com/cvsouth/abicell/cell"
)

const (
	signatureBits = ed25519.SignatureSize * 8 // 64 bytes
	publicKeyBits = ed25519.PublicKeySize * 8 // 32 bytes
)

// EncodeSignedFunctionCall implements spec.md §4.7's signed encoding:
// build the unsigned root R, sign sha512(serialize(R)) with priv, and
// wrap R into R' whose first reference is a signature cell carrying
// signature_bytes ++ public_key_bytes as raw bits.
func EncodeSignedFunctionCall(name string, inTypes, outTypes []abitype.Type, input abivalue.Value, priv ed25519.PrivateKey) ([]byte, error) {
	unsignedRoot, err := EncodeFunctionCallIntoCell(name, inTypes, outTypes, input)
	if err != nil {
		return nil, err
	}
	serialized, err := cell.Serialize(unsignedRoot)
	if err != nil {
		return nil, err
	}
	digest := sha512.Sum512(serialized)
	sig := ed25519.Sign(priv, digest[:])
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, abierr.New(abierr.InternalError, "private key did not yield an ed25519 public key")
	}

	sigData := bitstring.New()
	sigData.Append(bitstring.Create(sig, signatureBits))
	sigData.Append(bitstring.Create(pub, publicKeyBits))
	sigBuilder := cell.NewBuilder()
	if err := sigBuilder.AppendData(sigData); err != nil {
		return nil, err
	}
	sigCell, err := sigBuilder.IntoCell()
	if err != nil {
		return nil, err
	}

	refs := append([]*cell.Cell{sigCell}, unsignedRoot.Refs...)
	if len(refs) > cell.MaxRefs {
		return nil, abierr.New(abierr.InvalidOperation, "signed call: %d references exceeds capacity %d", len(refs), cell.MaxRefs)
	}
	wrapped := &cell.Cell{Data: unsignedRoot.Data, Refs: refs}
	return cell.Serialize(wrapped)
}

// VerifySignedCall is the "consuming VM" verification hook of spec.md
// §4.7: pop the first reference as the signature cell, reconstruct
// the unsigned body, and verify the Ed25519 signature against the
// embedded public key (cross-checked against the caller-supplied pub
// when non-nil). On success it returns the unsigned body bytes, whose
// root data still begins with the version byte and function id.
func VerifySignedCall(data []byte, pub ed25519.PublicKey) ([]byte, error) {
	root, err := cell.Deserialize(data)
	if err != nil {
		return nil, err
	}
	if len(root.Refs) == 0 {
		return nil, abierr.New(abierr.SignatureError, "signed call is missing its signature reference")
	}
	sigCell := root.Refs[0]
	unsigned := &cell.Cell{Data: root.Data, Refs: root.Refs[1:]}
	body, err := cell.Serialize(unsigned)
	if err != nil {
		return nil, err
	}
	digest := sha512.Sum512(body)

	sigSlice := cell.NewSlice(sigCell)
	sigBits, err := sigSlice.GetNextBits(signatureBits)
	if err != nil {
		return nil, abierr.Wrap(abierr.SignatureError, err, "read signature cell")
	}
	pubBits, err := sigSlice.GetNextBits(publicKeyBits)
	if err != nil {
		return nil, abierr.Wrap(abierr.SignatureError, err, "read embedded public key")
	}
	sigBytes := sigBits.Bytes()
	pubBytes := pubBits.Bytes()

	// Reject a malformed embedded key before handing it to
	// ed25519.Verify, the same defensive check onion/address.go and
	// onion/blind.go apply to externally-supplied Ed25519 points.
	if _, err := new(edwards25519.Point).SetBytes(pubBytes); err != nil {
		return nil, abierr.Wrap(abierr.SignatureError, err, "embedded public key is not a valid curve point")
	}

	if pub != nil && !bytes.Equal(pub, pubBytes) {
		return nil, abierr.New(abierr.SignatureError, "embedded public key does not match expected signer")
	}

	if !ed25519.Verify(ed25519.PublicKey(pubBytes), digest[:], sigBytes) {
		return nil, abierr.New(abierr.SignatureError, "ed25519 signature verification failed")
	}
	return body, nil
}
