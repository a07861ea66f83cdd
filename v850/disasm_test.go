package v850

import "testing"

func TestRender(t *testing.T) {
	arch := NewV850E2()
	cases := []struct {
		code []byte
		addr uint32
		want string
	}{
		{[]byte{0x00, 0x00}, 0, "nop"},
		{[]byte{0xc3, 0x21}, 0, "add     sp, r4"},
		{[]byte{0x23, 0x06, 0x78, 0x56, 0x34, 0x12}, 0, "mov     0x12345678, r3"},
		{[]byte{0xe2, 0xfd}, 0x2000, "bz      0x1ffc"},
		{[]byte{0x6b, 0x00}, 0, "jmp     [r11]"},
		{[]byte{0x45, 0x00}, 0, "switch  r5"},
		{[]byte{0x80, 0x07, 0x10, 0x00}, 0x100, "jr      0x110"},
		{[]byte{0x80, 0xff, 0x00, 0x01}, 0x100, "jarl    0x200, lp"},
		{[]byte{0x84, 0x07, 0x3b, 0x08, 0x78, 0x56, 0x34, 0x12}, 0, "prepare {lp, r20}, 0x2, 0x12345678"},
		{[]byte{0x42, 0x06, 0x3f, 0x00}, 0, "dispose 0x1, {lp}, [lp]"},
		{[]byte{0xe0, 0x07, 0x40, 0x01}, 0, "reti"},
	}
	for _, tc := range cases {
		inst, err := arch.Decode(tc.code, tc.addr)
		if err != nil {
			t.Fatalf("%v: %v", tc.code, err)
		}
		if got := arch.Render(inst, tc.addr); got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}
}

func TestRenderMemoryForms(t *testing.T) {
	arch := NewV850E2()

	// sld.w 8[ep], r10
	w := uint16(10)<<11 | 0x28<<5 | 0x04
	inst, err := arch.Decode(le16(w), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := arch.Render(inst, 0); got != "sld.w   0x8[ep], r10" {
		t.Fatalf("got %q", got)
	}

	// st.b r9, 0x20[r3]
	w1 := uint16(0x3a<<5) | 3 | 9<<11
	inst, err = arch.Decode(append(le16(w1), 0x20, 0x00), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := arch.Render(inst, 0); got != "st.b    r9, 0x20[sp]" {
		t.Fatalf("got %q", got)
	}

	// negative displacement
	inst, err = arch.Decode([]byte{0x23, 0x57, 0x00, 0x80}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := arch.Render(inst, 0); got != "ld.h    -0x8000[sp], r10" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderBitAndCondForms(t *testing.T) {
	arch := NewV850E2()

	// set1 3, 0x10[r2]
	w1 := uint16(0x3e<<5) | 2 | 3<<11
	inst, err := arch.Decode(append(le16(w1), 0x10, 0x00), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := arch.Render(inst, 0); got != "set1    3, 0x10[r2]" {
		t.Fatalf("got %q", got)
	}

	// setf z, r6
	code := append(le16(0x3f<<5|uint16(CondZ)|6<<11), 0x00, 0x00)
	inst, err = arch.Decode(code, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := arch.Render(inst, 0); got != "setf    z, r6" {
		t.Fatalf("got %q", got)
	}
}
