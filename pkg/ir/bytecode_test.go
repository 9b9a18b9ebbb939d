package ir

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	unit := Unit{
		Entries: []Program{
			{
				Name:       "main",
				ReturnType: ScalarType{Kind: ScalarInteger, Bitlength: 8, Size: 1},
				Body: []Instruction{
					{Op: OpPush, ConstantText: "2", Type: ScalarType{Kind: ScalarInteger, Bitlength: 8, Size: 1}},
					{Op: OpPush, ConstantText: "3", Type: ScalarType{Kind: ScalarInteger, Bitlength: 8, Size: 1}},
					{Op: OpAdd},
					{Op: OpOutput, Type: ScalarType{Kind: ScalarInteger, Bitlength: 8, Size: 1}},
				},
			},
		},
		Types: []TypeEntry{{Name: "u8", Type: ScalarType{Kind: ScalarInteger, Bitlength: 8, Size: 1}}},
	}

	data, err := Encode(unit)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Entries) != 1 || got.Entries[0].Name != "main" {
		t.Fatalf("got entries %+v", got.Entries)
	}

	if len(got.Entries[0].Body) != 4 || got.Entries[0].Body[2].Op != OpAdd {
		t.Fatalf("got body %+v", got.Entries[0].Body)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := make([]byte, 16)
	copy(data, "notazincfilexxx")

	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for bad magic")
	}
}
