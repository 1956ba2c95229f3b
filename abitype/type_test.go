package abitype

import "testing"

func TestSignatureRendersPrimitives(t *testing.T) {
	cases := []struct {
		ty   Type
		want string
	}{
		{UintN(128), "uint128"},
		{IntN(32), "int32"},
		{BoolT(), "bool"},
		{DintT(), "dint"},
		{DuintT(), "duint"},
		{BitsN(982), "bits982"},
		{BitstringT(), "bitstring"},
	}
	for _, c := range cases {
		got, err := c.ty.Signature()
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Fatalf("got %q, want %q", got, c.want)
		}
	}
}

func TestSignatureRendersArraysAndTuples(t *testing.T) {
	arr := ArrayN(UintN(32), 8)
	got, err := arr.Signature()
	if err != nil {
		t.Fatal(err)
	}
	if got != "uint32[8]" {
		t.Fatalf("got %q", got)
	}

	dyn := ArrayDyn(IntN(64))
	got, err = dyn.Signature()
	if err != nil {
		t.Fatal(err)
	}
	if got != "int64[]" {
		t.Fatalf("got %q", got)
	}

	tup := TupleOf(UintN(32), BoolT())
	got, err = tup.Signature()
	if err != nil {
		t.Fatal(err)
	}
	if got != "(uint32,bool)" {
		t.Fatalf("got %q", got)
	}
}

func TestFunctionSignatureAndID(t *testing.T) {
	sig, err := FunctionSignature("test_empty_params", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sig != "test_empty_params()()" {
		t.Fatalf("got %q", sig)
	}
	id := GetFunctionID([]byte(sig))
	// determinism: recomputing from the same bytes yields the same id.
	if GetFunctionID([]byte(sig)) != id {
		t.Fatal("GetFunctionID is not deterministic")
	}
}

func TestFixedWidthDetection(t *testing.T) {
	if !TupleOf(UintN(32), BoolT()).IsFixedWidth() {
		t.Fatal("expected (uint32,bool) to be fixed-width")
	}
	if ArrayDyn(UintN(8)).IsFixedWidth() {
		t.Fatal("dynamic arrays are never fixed-width")
	}
	if TupleOf(UintN(32), DintT()).IsFixedWidth() {
		t.Fatal("a tuple containing dint is not fixed-width")
	}
}
