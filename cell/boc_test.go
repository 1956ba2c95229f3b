package cell

import (
	"testing"

	"github.com/cvsouth/abicell/bitstring"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	payload := bitstring.New()
	for i := 0; i < 4096; i++ {
		if i%3 == 0 {
			payload.AppendBit(1)
		} else {
			payload.AppendBit(0)
		}
	}
	head, err := PutDataIntoChain(NewBuilder(), payload)
	if err != nil {
		t.Fatal(err)
	}
	root, err := head.IntoCell()
	if err != nil {
		t.Fatal(err)
	}

	data, err := Serialize(root)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}

	s1, s2 := NewSlice(root), NewSlice(got)
	for i := 0; i < 4096; i++ {
		b1, err1 := s1.GetNextBit()
		b2, err2 := s2.GetNextBit()
		if err1 != nil || err2 != nil {
			t.Fatalf("bit %d: errs %v %v", i, err1, err2)
		}
		if b1 != b2 {
			t.Fatalf("bit %d mismatch: %d != %d", i, b1, b2)
		}
	}
}

func TestDeserializeRejectsTamperedCRC(t *testing.T) {
	root := &Cell{Data: bitstring.Create([]byte{0x01, 0x02}, 16)}
	data, err := Serialize(root)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xFF
	if _, err := Deserialize(data); err == nil {
		t.Fatal("expected CRC mismatch error")
	}
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	root := &Cell{Data: bitstring.Create([]byte{0xFF}, 8)}
	data, err := Serialize(root)
	if err != nil {
		t.Fatal(err)
	}
	data[0] ^= 0xFF
	if _, err := Deserialize(data); err == nil {
		t.Fatal("expected bad-magic error")
	}
}
