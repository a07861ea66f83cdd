package v850

import "testing"

func decodeOne(t *testing.T, arch *Arch, code []byte, addr uint32) DecodedInstruction {
	t.Helper()
	inst, err := arch.Decode(code, addr)
	if err != nil {
		t.Fatal(err)
	}
	return inst
}

func TestBranchesConditional(t *testing.T) {
	arch := NewV850E2()
	inst := decodeOne(t, arch, []byte{0xe2, 0xfd}, 0x2000)
	edges := arch.Branches(inst, 0x2000)
	if len(edges) != 2 {
		t.Fatalf("got %d edges", len(edges))
	}
	if edges[0].Kind != EdgeTrue || edges[0].Target != 0x1ffc {
		t.Fatalf("true edge %+v", edges[0])
	}
	if edges[1].Kind != EdgeFalse || edges[1].Target != 0x2002 {
		t.Fatalf("false edge %+v", edges[1])
	}
}

func TestBranchesAlwaysCollapses(t *testing.T) {
	arch := NewV850E2()
	w := uint16(0x580) | 3<<4 | uint16(CondT)
	inst := decodeOne(t, arch, le16(w), 0x100)
	edges := arch.Branches(inst, 0x100)
	if len(edges) != 1 || edges[0].Kind != EdgeUnconditional || edges[0].Target != 0x106 {
		t.Fatalf("edges %+v", edges)
	}
}

func TestBranchesJumpForms(t *testing.T) {
	arch := NewV850E2()
	cases := []struct {
		name   string
		code   []byte
		kind   EdgeKind
		target uint32
		has    bool
	}{
		{"jr", []byte{0x80, 0x07, 0x10, 0x00}, EdgeUnconditional, 0x110, true},
		{"jarl", []byte{0x80, 0xff, 0x00, 0x01}, EdgeCall, 0x200, true},
		{"jmp reg", []byte{0x6b, 0x00}, EdgeIndirect, 0, false},
		{"jmp lp", []byte{0x7f, 0x00}, EdgeReturn, 0, false},
		{"switch", []byte{0x45, 0x00}, EdgeIndirect, 0, false},
		{"reti", []byte{0xe0, 0x07, 0x40, 0x01}, EdgeReturn, 0, false},
		{"dispose lp", []byte{0x42, 0x06, 0x3f, 0x00}, EdgeReturn, 0, false},
	}
	for _, tc := range cases {
		inst := decodeOne(t, arch, tc.code, 0x100)
		edges := arch.Branches(inst, 0x100)
		if len(edges) != 1 {
			t.Fatalf("%s: got %d edges", tc.name, len(edges))
		}
		e := edges[0]
		if e.Kind != tc.kind || e.HasTarget != tc.has {
			t.Fatalf("%s: edge %+v", tc.name, e)
		}
		if tc.has && e.Target != tc.target {
			t.Fatalf("%s: target %#x, want %#x", tc.name, e.Target, tc.target)
		}
	}
}

func TestBranchesJmpAbsolute(t *testing.T) {
	arch := NewV850E2()
	// jmp disp32[r0] resolves to an absolute target
	w1 := uint16(0x37 << 5)
	inst := decodeOne(t, arch, append(le16(w1), 0x78, 0x56, 0x34, 0x12), 0x100)
	edges := arch.Branches(inst, 0x100)
	if len(edges) != 1 || edges[0].Kind != EdgeUnconditional || edges[0].Target != 0x12345678 {
		t.Fatalf("edges %+v", edges)
	}

	// with a non-zero base it stays indirect
	w1 |= 4
	inst = decodeOne(t, arch, append(le16(w1), 0x78, 0x56, 0x34, 0x12), 0x100)
	edges = arch.Branches(inst, 0x100)
	if len(edges) != 1 || edges[0].Kind != EdgeIndirect || edges[0].HasTarget {
		t.Fatalf("edges %+v", edges)
	}
}

func TestBranchesSequentialHasNone(t *testing.T) {
	arch := NewV850E2()
	for _, code := range [][]byte{
		{0x00, 0x00},             // nop
		{0xc3, 0x21},             // add
		{0x42, 0x06, 0x00, 0x00}, // dispose without a link register
	} {
		inst := decodeOne(t, arch, code, 0)
		if edges := arch.Branches(inst, 0); len(edges) != 0 {
			t.Fatalf("%v: unexpected edges %+v", code, edges)
		}
	}
}
