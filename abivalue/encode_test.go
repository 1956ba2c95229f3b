package abivalue

import (
	"math/big"
	"testing"

	"github.com/cvsouth/abicell/abitype"
	"github.com/cvsouth/abicell/bitstring"
	"github.com/cvsouth/abicell/cell"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	b, err := Encode(cell.NewBuilder(), v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	root, err := b.IntoCell()
	if err != nil {
		t.Fatalf("into cell: %v", err)
	}
	got, err := Decode(cell.NewSlice(root), v.Type)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func TestRoundTripPrimitives(t *testing.T) {
	cases := []Value{
		Uint(128, big.NewInt(1123)),
		Int(32, big.NewInt(-9434567)),
		Bool(true),
		Bool(false),
	}
	for _, v := range cases {
		got := roundTrip(t, v)
		if got.Int != nil && v.Int != nil && got.Int.Cmp(v.Int) != 0 {
			t.Fatalf("round-trip mismatch: got %v want %v", got.Int, v.Int)
		}
		if v.Type.Kind == abitype.Bool && got.Bool != v.Bool {
			t.Fatalf("round-trip bool mismatch")
		}
	}
}

func TestRoundTripSmallStaticArray(t *testing.T) {
	elems := make([]Value, 8)
	for i := range elems {
		elems[i] = Uint(32, big.NewInt(int64(i+1)))
	}
	v := FixedArray(abitype.UintN(32), elems)
	got := roundTrip(t, v)
	if len(got.Array) != 8 {
		t.Fatalf("length = %d, want 8", len(got.Array))
	}
	for i, e := range got.Array {
		if e.Int.Cmp(big.NewInt(int64(i+1))) != 0 {
			t.Fatalf("element %d = %v, want %d", i, e.Int, i+1)
		}
	}
}

func TestSmallStaticArrayChoosesInlineHeader(t *testing.T) {
	elems := make([]Value, 8)
	for i := range elems {
		elems[i] = Uint(32, big.NewInt(int64(i+1)))
	}
	v := FixedArray(abitype.UintN(32), elems)
	b, err := Encode(cell.NewBuilder(), v)
	if err != nil {
		t.Fatal(err)
	}
	root, err := b.IntoCell()
	if err != nil {
		t.Fatal(err)
	}
	s := cell.NewSlice(root)
	hi, _ := s.GetNextBit()
	lo, _ := s.GetNextBit()
	if hi != 1 || lo != 0 {
		t.Fatalf("header = %d%d, want 10 (inline)", hi, lo)
	}
	if len(root.Refs) != 0 {
		t.Fatalf("expected no references for an inline array, got %d", len(root.Refs))
	}
}

func TestBigStaticArraySpillsIntoReferencedChain(t *testing.T) {
	elems := make([]Value, 32)
	for i := range elems {
		elems[i] = Uint(128, big.NewInt(int64(i)))
	}
	v := FixedArray(abitype.UintN(128), elems)
	b, err := Encode(cell.NewBuilder(), v)
	if err != nil {
		t.Fatal(err)
	}
	root, err := b.IntoCell()
	if err != nil {
		t.Fatal(err)
	}
	s := cell.NewSlice(root)
	hi, _ := s.GetNextBit()
	lo, _ := s.GetNextBit()
	if hi != 0 || lo != 0 {
		t.Fatalf("header = %d%d, want 00 (referenced)", hi, lo)
	}
	if len(root.Refs) != 1 {
		t.Fatalf("expected exactly one reference, got %d", len(root.Refs))
	}
	// 32*128 = 4096 bits spilled into ceil(4096/1023) = 5 chained cells.
	count := 0
	c := root.Refs[0]
	for {
		count++
		if len(c.Refs) == 0 {
			break
		}
		c = c.Refs[0]
	}
	if count != 5 {
		t.Fatalf("chain length = %d, want 5", count)
	}

	got, err := Decode(cell.NewSlice(root), v.Type)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range got.Array {
		if e.Int.Cmp(big.NewInt(int64(i))) != 0 {
			t.Fatalf("element %d = %v, want %d", i, e.Int, i)
		}
	}
}

func TestRoundTripDynamicArray(t *testing.T) {
	v := DynamicArray(abitype.UintN(16), nil)
	got := roundTrip(t, v)
	if len(got.Array) != 0 {
		t.Fatalf("length = %d, want 0", len(got.Array))
	}

	elems := make([]Value, 255)
	for i := range elems {
		elems[i] = Uint(16, big.NewInt(int64(i)))
	}
	v = DynamicArray(abitype.UintN(16), elems)
	got = roundTrip(t, v)
	if len(got.Array) != 255 {
		t.Fatalf("length = %d, want 255", len(got.Array))
	}
}

func TestRoundTripTuple(t *testing.T) {
	v := TupleV(Bool(true), Int(32, big.NewInt(9434567)))
	got := roundTrip(t, v)
	if len(got.Tuple) != 2 || !got.Tuple[0].Bool || got.Tuple[1].Int.Cmp(big.NewInt(9434567)) != 0 {
		t.Fatalf("tuple round-trip mismatch: %+v", got)
	}
}

func TestRoundTripDintDuintBoundaryValues(t *testing.T) {
	two63 := new(big.Int).Lsh(big.NewInt(1), 63)
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(-1),
		new(big.Int).Sub(two63, big.NewInt(1)),
		new(big.Int).Neg(two63),
	}
	for _, n := range cases {
		got := roundTrip(t, Dint(n))
		if got.Int.Cmp(n) != 0 {
			t.Fatalf("dint round-trip: got %v want %v", got.Int, n)
		}
	}
	duintCases := []*big.Int{big.NewInt(0), big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 100)}
	for _, n := range duintCases {
		got := roundTrip(t, Duint(n))
		if got.Int.Cmp(n) != 0 {
			t.Fatalf("duint round-trip: got %v want %v", got.Int, n)
		}
	}
}

func TestRoundTripBitsAndBitstring(t *testing.T) {
	small := bitstring.New()
	for i := 0; i < 982; i++ {
		small.AppendBit(1)
	}
	got := roundTrip(t, Bits(982, small))
	if got.Payload.Length() != 982 {
		t.Fatalf("bits length = %d, want 982", got.Payload.Length())
	}

	bigBits := bitstring.New()
	for i := 0; i < 1024; i++ {
		bigBits.AppendBit(i % 2)
	}
	got = roundTrip(t, Bits(1024, bigBits))
	if got.Payload.Length() != 1024 {
		t.Fatalf("bits length = %d, want 1024", got.Payload.Length())
	}
	for i := 0; i < 1024; i++ {
		gotBit, _ := got.Payload.Bit(i)
		if gotBit != i%2 {
			t.Fatalf("bit %d mismatch", i)
		}
	}

	bsVal := bitstring.New()
	for i := 0; i < 200; i++ {
		bsVal.AppendBit(1)
	}
	got = roundTrip(t, BitstringV(bsVal))
	if got.Payload.Length() != 200 {
		t.Fatalf("bitstring length = %d, want 200", got.Payload.Length())
	}
}
