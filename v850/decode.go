package v850

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrTruncated reports an instruction window shorter than the
	// encoding it selects.
	ErrTruncated = errors.New("truncated instruction window")
	// ErrNoEncoding reports a bit pattern matching no instruction.
	ErrNoEncoding = errors.New("unrecognized encoding")
)

// Revision selects the decoded instruction surface.
type Revision int

const (
	// RevV850E is the baseline revision.
	RevV850E Revision = iota
	// RevV850E2 adds the extended subopcode class, the exact 32-bit
	// zero-operand patterns and the 23-bit displacement loads/stores.
	RevV850E2
)

// Arch bundles one architecture revision. It holds no mutable state;
// a single value may be shared by any number of goroutines.
type Arch struct {
	rev Revision
}

func NewV850E() *Arch  { return &Arch{rev: RevV850E} }
func NewV850E2() *Arch { return &Arch{rev: RevV850E2} }

func (a *Arch) Revision() Revision { return a.rev }

// word returns the n-th 16-bit little-endian word of the window.
func word(code []byte, n int) (uint16, bool) {
	if len(code) < 2*n+2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(code[2*n:]), true
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

func truncated(need, have int) error {
	return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, need, have)
}

// fixedPatterns16 maps exact first words to zero-operand mnemonics.
var fixedPatterns16 = map[uint16]Mnemonic{
	0x0000: NOP,
	0x001d: SYNCE,
	0x001e: SYNCM,
	0x001f: SYNCP,
	0x0040: RIE,
}

// fixedPatterns32 maps exact two-word patterns (w1 | w2<<16) to the
// privileged zero-operand forms of the later revision.
var fixedPatterns32 = map[uint32]Mnemonic{
	0x0120_07e0: HALT,
	0x0140_07e0: RETI,
	0x0144_07e0: CTRET,
	0x0160_07e0: DI,
	0x0160_87e0: EI,
}

// Decode classifies the instruction window at addr into one canonical
// record. It is total: every failure is reported as an error, and no
// byte beyond the window is ever consulted.
func (a *Arch) Decode(code []byte, addr uint32) (DecodedInstruction, error) {
	w1, ok := word(code, 0)
	if !ok {
		return DecodedInstruction{}, truncated(2, len(code))
	}

	if m, ok := fixedPatterns16[w1]; ok {
		return record(m, 2), nil
	}
	if a.rev == RevV850E2 {
		if w2, ok := word(code, 1); ok {
			if m, ok := fixedPatterns32[uint32(w1)|uint32(w2)<<16]; ok {
				return record(m, 4), nil
			}
		}
	}

	opcode := (w1 >> 5) & 0x3f
	reg1 := Register(w1 & 0x1f)
	reg2 := Register((w1 >> 11) & 0x1f)

	switch {
	case opcode <= 0x0f && opcode != 0x03:
		return decodeRegReg(opcode, reg1, reg2)
	case opcode == 0x03 || (opcode >= 0x10 && opcode <= 0x16):
		return decodeImmReg(opcode, w1, reg1, reg2)
	case opcode == 0x17:
		return decodeMulhJrJarl(code, reg1, reg2)
	case opcode >= 0x18 && opcode <= 0x2b:
		return decodeShortMem(opcode, w1, reg2)
	case opcode >= 0x2c && opcode <= 0x2f:
		disp := uint32(reg2)<<3 | uint32((w1>>4)&0x7)
		return branchRecord(Condition(w1&0xf), signExtend(disp, 8)*2), nil
	case opcode >= 0x30 && opcode <= 0x3b:
		return decodeTwoWord(code, opcode, w1, reg1, reg2)
	case opcode == 0x3c || opcode == 0x3d:
		return a.decodeComposite(code, w1, reg1, reg2)
	case opcode == 0x3e:
		return decodeBitManip(code, w1, reg1)
	case opcode == 0x3f && a.rev == RevV850E2:
		return decodeExtended(code, w1, reg1, reg2)
	}
	return DecodedInstruction{}, fmt.Errorf("%w: opcode %#02x", ErrNoEncoding, opcode)
}

// decodeRegReg handles the register-register class. Several opcodes are
// aliased: a zero reg2 (or reg1) field reroutes to an unrelated
// one-operand form.
func decodeRegReg(opcode uint16, reg1, reg2 Register) (DecodedInstruction, error) {
	switch opcode {
	case 0x00:
		return regRegRecord(MOV, reg1, reg2), nil
	case 0x01:
		return regRegRecord(NOT, reg1, reg2), nil
	case 0x02:
		if reg2 == R0 {
			return oneRegRecord(SWITCH, reg1), nil
		}
		if reg1 == R0 {
			return immRecord(FETRAP, 2, int32(reg2)&0xf), nil
		}
		return regRegRecord(DIVH, reg1, reg2), nil
	case 0x04:
		if reg2 == R0 {
			return oneRegRecord(ZXB, reg1), nil
		}
		return regRegRecord(SATSUBR, reg1, reg2), nil
	case 0x05:
		if reg2 == R0 {
			return oneRegRecord(SXB, reg1), nil
		}
		return regRegRecord(SATSUB, reg1, reg2), nil
	case 0x06:
		if reg2 == R0 {
			return oneRegRecord(ZXH, reg1), nil
		}
		return regRegRecord(SATADD, reg1, reg2), nil
	case 0x07:
		if reg2 == R0 {
			return oneRegRecord(SXH, reg1), nil
		}
		return regRegRecord(MULH, reg1, reg2), nil
	case 0x08:
		return regRegRecord(OR, reg1, reg2), nil
	case 0x09:
		return regRegRecord(XOR, reg1, reg2), nil
	case 0x0a:
		return regRegRecord(AND, reg1, reg2), nil
	case 0x0b:
		return regRegRecord(TST, reg1, reg2), nil
	case 0x0c:
		return regRegRecord(SUBR, reg1, reg2), nil
	case 0x0d:
		return regRegRecord(SUB, reg1, reg2), nil
	case 0x0e:
		return regRegRecord(ADD, reg1, reg2), nil
	case 0x0f:
		return regRegRecord(CMP, reg1, reg2), nil
	}
	return DecodedInstruction{}, fmt.Errorf("%w: reg-reg opcode %#02x", ErrNoEncoding, opcode)
}

// decodeImmReg handles the 5-bit immediate class, including the aliased
// jmp/sld and callt/shift reroutes.
func decodeImmReg(opcode, w1 uint16, reg1, reg2 Register) (DecodedInstruction, error) {
	imm5 := uint32(w1 & 0x1f)
	switch opcode {
	case 0x03:
		if reg2 == R0 {
			rec := record(JMP, 2)
			rec.Reg1 = reg1
			return rec, nil
		}
		if imm5&0x10 != 0 {
			return memRecord(SLD_HU, 2, RegNone, reg2, int32(imm5&0xf)<<1), nil
		}
		return memRecord(SLD_BU, 2, RegNone, reg2, int32(imm5&0xf)), nil
	case 0x10:
		return immRegRecord(MOV, 2, signExtend(imm5, 5), reg2), nil
	case 0x11:
		return immRegRecord(SATADD, 2, signExtend(imm5, 5), reg2), nil
	case 0x12:
		return immRegRecord(ADD, 2, signExtend(imm5, 5), reg2), nil
	case 0x13:
		return immRegRecord(CMP, 2, signExtend(imm5, 5), reg2), nil
	case 0x14:
		if reg1 == R0 {
			return immRecord(CALLT, 2, int32(reg2)<<1), nil
		}
		return immRegRecord(SHR, 2, int32(imm5), reg2), nil
	case 0x15:
		if reg1 == R0 {
			return immRecord(CALLT, 2, (int32(reg2)|0x20)<<1), nil
		}
		return immRegRecord(SAR, 2, int32(imm5), reg2), nil
	case 0x16:
		return immRegRecord(SHL, 2, int32(imm5), reg2), nil
	}
	return DecodedInstruction{}, fmt.Errorf("%w: imm-reg opcode %#02x", ErrNoEncoding, opcode)
}

// decodeMulhJrJarl disambiguates the three unrelated forms sharing
// opcode 0x17 by the zero pattern of the register fields.
func decodeMulhJrJarl(code []byte, reg1, reg2 Register) (DecodedInstruction, error) {
	if reg2 != R0 {
		return immRegRecord(MULH, 2, signExtend(uint32(reg1), 5), reg2), nil
	}
	w2, ok := word(code, 1)
	if !ok {
		return DecodedInstruction{}, truncated(6, len(code))
	}
	w3, ok := word(code, 2)
	if !ok {
		return DecodedInstruction{}, truncated(6, len(code))
	}
	disp := int32(uint32(w3)<<16 | uint32(w2))
	if reg1 == R0 {
		return immRecord(JR, 6, disp), nil
	}
	rec := immRecord(JARL, 6, disp)
	rec.Reg2 = reg1 // link register
	return rec, nil
}

// decodeShortMem handles the element-pointer relative loads and stores.
// Displacements are scaled to byte units here.
func decodeShortMem(opcode, w1 uint16, reg2 Register) (DecodedInstruction, error) {
	disp := int32(w1 & 0x7f)
	switch opcode >> 2 {
	case 0x6:
		return memRecord(SLD_B, 2, RegNone, reg2, disp), nil
	case 0x7:
		return memRecord(SST_B, 2, RegNone, reg2, disp), nil
	case 0x8:
		return memRecord(SLD_H, 2, RegNone, reg2, disp<<1), nil
	case 0x9:
		return memRecord(SST_H, 2, RegNone, reg2, disp<<1), nil
	case 0xa:
		if disp&0x1 == 0 {
			return memRecord(SLD_W, 2, RegNone, reg2, disp<<1), nil
		}
		return memRecord(SST_W, 2, RegNone, reg2, (disp&0x7e)<<1), nil
	}
	return DecodedInstruction{}, fmt.Errorf("%w: short load/store opcode %#02x", ErrNoEncoding, opcode)
}

// decodeTwoWord handles the 32-bit immediate class, with the reg2==0
// reroutes into mov imm32, dispose and the 6-byte register jump.
func decodeTwoWord(code []byte, opcode, w1 uint16, reg1, reg2 Register) (DecodedInstruction, error) {
	w2, ok := word(code, 1)
	if !ok {
		return DecodedInstruction{}, truncated(4, len(code))
	}
	se16 := signExtend(uint32(w2), 16)

	switch opcode {
	case 0x30:
		return twoWordOp(ADDI, reg1, reg2, se16), nil
	case 0x31:
		if reg2 != R0 {
			return twoWordOp(MOVEA, reg1, reg2, se16), nil
		}
		w3, ok := word(code, 2)
		if !ok {
			return DecodedInstruction{}, truncated(6, len(code))
		}
		return immRegRecord(MOV, 6, int32(uint32(w3)<<16|uint32(w2)), reg1), nil
	case 0x32:
		if reg2 != R0 {
			return twoWordOp(MOVHI, reg1, reg2, int32(uint32(w2)<<16)), nil
		}
		return decodeDispose(w1, w2), nil
	case 0x33:
		if reg2 != R0 {
			return twoWordOp(SATSUBI, reg1, reg2, se16), nil
		}
		return decodeDispose(w1, w2), nil
	case 0x34:
		return twoWordOp(ORI, reg1, reg2, int32(w2)&0xffff), nil
	case 0x35:
		return twoWordOp(XORI, reg1, reg2, int32(w2)&0xffff), nil
	case 0x36:
		return twoWordOp(ANDI, reg1, reg2, int32(w2)&0xffff), nil
	case 0x37:
		if reg2 != R0 {
			return twoWordOp(MULHI, reg1, reg2, se16), nil
		}
		w3, ok := word(code, 2)
		if !ok {
			return DecodedInstruction{}, truncated(6, len(code))
		}
		rec := immRecord(JMP, 6, int32(uint32(w3)<<16|uint32(w2)))
		rec.Reg1 = reg1
		return rec, nil
	case 0x38:
		return memRecord(LD_B, 4, reg1, reg2, se16), nil
	case 0x39:
		if w2&0x1 == 0 {
			return memRecord(LD_H, 4, reg1, reg2, se16), nil
		}
		return memRecord(LD_W, 4, reg1, reg2, signExtend(uint32(w2&0xfffe), 16)), nil
	case 0x3a:
		return memRecord(ST_B, 4, reg1, reg2, se16), nil
	case 0x3b:
		if w2&0x1 == 0 {
			return memRecord(ST_H, 4, reg1, reg2, se16), nil
		}
		return memRecord(ST_W, 4, reg1, reg2, signExtend(uint32(w2&0xfffe), 16)), nil
	}
	return DecodedInstruction{}, fmt.Errorf("%w: two-word opcode %#02x", ErrNoEncoding, opcode)
}

func twoWordOp(m Mnemonic, reg1, reg2 Register, imm int32) DecodedInstruction {
	rec := record(m, 4)
	rec.Reg1 = reg1
	rec.Reg2 = reg2
	rec.Imm = imm
	rec.HasImm = true
	return rec
}

func decodeDispose(w1, w2 uint16) DecodedInstruction {
	rec := record(DISPOSE, 4)
	rec.Imm = int32((w1>>1)&0x1f) << 2
	rec.HasImm = true
	rec.List = RegList(w2 >> 5)
	rec.HasList = true
	if r := Register(w2 & 0x1f); r != R0 {
		rec.Reg1 = r // register jumped through after the frame is torn down
	}
	return rec
}

// longMemEntry describes one composite-opcode load/store form; odd
// forms carry the displacement's low bit inside the opcode itself.
type longMemEntry struct {
	mnem Mnemonic
	odd  bool
}

var longMemInstructions = map[int]longMemEntry{
	0x05: {LD_B, false},
	0x15: {LD_B, true},
	0x07: {LD_H, false},
	0x09: {LD_W, false},
	0x0d: {ST_B, false},
	0x1d: {ST_B, true},
	0x0f: {ST_W, false},
	0x25: {LD_BU, false},
	0x35: {LD_BU, true},
	0x27: {LD_HU, false},
	0x2d: {ST_H, false},
}

// decodeComposite handles the two opcode values sharing the jarl/jr,
// ld.bu, prepare and long load/store encodings. The second word's low
// bit and the reg2 field pick the branch forms first; the prepare
// subopcode directly determines how many immediate words follow.
func (a *Arch) decodeComposite(code []byte, w1 uint16, reg1, reg2 Register) (DecodedInstruction, error) {
	w2, ok := word(code, 1)
	if !ok {
		return DecodedInstruction{}, truncated(4, len(code))
	}

	if w2&0x1 == 0 {
		disp := signExtend(uint32(w1&0x3f)<<16|uint32(w2), 22)
		if reg2 == R0 {
			return immRecord(JR, 4, disp), nil
		}
		rec := immRecord(JARL, 4, disp)
		rec.Reg2 = reg2
		return rec, nil
	}

	if reg2 != R0 {
		low := uint32(w1>>5) & 0x1
		disp := signExtend(uint32(w2&0xfffe)|low, 16)
		return memRecord(LD_BU, 4, reg1, reg2, disp), nil
	}

	list := RegList(w2 >> 5)
	frame := int32((w1>>1)&0x1f) << 2

	prepare := func(length int) DecodedInstruction {
		rec := record(PREPARE, length)
		rec.Imm = frame
		rec.HasImm = true
		rec.List = list
		rec.HasList = true
		return rec
	}

	switch w2 & 0x1f {
	case 0x01:
		return prepare(4), nil
	case 0x03:
		rec := prepare(4)
		rec.Reg3 = SP // element pointer is loaded from sp
		return rec, nil
	case 0x0b, 0x13:
		w3, ok := word(code, 2)
		if !ok {
			return DecodedInstruction{}, truncated(6, len(code))
		}
		rec := prepare(6)
		if w2&0x1f == 0x0b {
			rec.Imm2 = signExtend(uint32(w3), 16)
		} else {
			rec.Imm2 = int32(uint32(w3) << 16)
		}
		rec.HasImm2 = true
		return rec, nil
	case 0x1b:
		w3, ok := word(code, 2)
		if !ok {
			return DecodedInstruction{}, truncated(8, len(code))
		}
		w4, ok := word(code, 3)
		if !ok {
			return DecodedInstruction{}, truncated(8, len(code))
		}
		rec := prepare(8)
		rec.Imm2 = int32(uint32(w4)<<16 | uint32(w3))
		rec.HasImm2 = true
		return rec, nil
	}

	if a.rev != RevV850E2 {
		return DecodedInstruction{}, fmt.Errorf("%w: composite subopcode %#02x", ErrNoEncoding, w2&0x1f)
	}

	composite := int(w1&0x20) | int(w2&0x1f)
	entry, ok := longMemInstructions[composite]
	if !ok {
		return DecodedInstruction{}, fmt.Errorf("%w: composite opcode %#02x", ErrNoEncoding, composite)
	}
	w3, ok := word(code, 2)
	if !ok {
		return DecodedInstruction{}, truncated(6, len(code))
	}
	data := Register((w2 >> 11) & 0x1f)
	disp := uint32(w3)<<6 | uint32(w2>>5)&0x3f
	disp = disp << 1
	if entry.odd {
		disp |= 0x1
	}
	return memRecord(entry.mnem, 6, reg1, data, signExtend(disp, 23)), nil
}

var bitManipMnemonics = [4]Mnemonic{SET1, NOT1, CLR1, TST1}

func decodeBitManip(code []byte, w1 uint16, reg1 Register) (DecodedInstruction, error) {
	w2, ok := word(code, 1)
	if !ok {
		return DecodedInstruction{}, truncated(4, len(code))
	}
	rec := record(bitManipMnemonics[w1>>14], 4)
	rec.Reg1 = reg1
	rec.Imm = signExtend(uint32(w2), 16)
	rec.HasImm = true
	rec.Imm2 = int32((w1 >> 11) & 0x7)
	rec.HasImm2 = true
	return rec, nil
}
