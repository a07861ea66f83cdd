package v850

// DecodedInstruction is the canonical record every format class
// normalizes into. Unused operand slots hold RegNone; optional
// immediates, the register-list mask and the branch condition carry
// explicit presence markers. Immediates are stored fully sign- or
// zero-extended and scaled to byte units at decode time.
type DecodedInstruction struct {
	Mnemonic Mnemonic
	Length   int // bytes: 2, 4, 6 or 8

	Reg1 Register
	Reg2 Register
	Reg3 Register
	Reg4 Register

	Imm    int32
	HasImm bool

	// Imm2 carries the second immediate of the few double-immediate
	// forms: the prepare element-pointer value and the bit number of
	// the bit-manipulation instructions.
	Imm2    int32
	HasImm2 bool

	List    RegList
	HasList bool

	Cond Condition
}

func record(m Mnemonic, length int) DecodedInstruction {
	return DecodedInstruction{
		Mnemonic: m,
		Length:   length,
		Reg1:     RegNone,
		Reg2:     RegNone,
		Reg3:     RegNone,
		Reg4:     RegNone,
		Cond:     CondNone,
	}
}

// regRegRecord builds a two-operand register form: reg1 is the source
// slot, reg2 the destination slot.
func regRegRecord(m Mnemonic, reg1, reg2 Register) DecodedInstruction {
	rec := record(m, 2)
	rec.Reg1 = reg1
	rec.Reg2 = reg2
	return rec
}

func oneRegRecord(m Mnemonic, reg1 Register) DecodedInstruction {
	rec := record(m, 2)
	rec.Reg1 = reg1
	return rec
}

// immRegRecord builds an immediate/register form with reg2 as the
// destination slot.
func immRegRecord(m Mnemonic, length int, imm int32, reg2 Register) DecodedInstruction {
	rec := record(m, length)
	rec.Reg2 = reg2
	rec.Imm = imm
	rec.HasImm = true
	return rec
}

func immRecord(m Mnemonic, length int, imm int32) DecodedInstruction {
	rec := record(m, length)
	rec.Imm = imm
	rec.HasImm = true
	return rec
}

// memRecord builds a load or store form. For loads reg2 is the
// destination, for stores the source; base is RegNone when the element
// pointer is implied. disp is a byte offset.
func memRecord(m Mnemonic, length int, base, reg2 Register, disp int32) DecodedInstruction {
	rec := record(m, length)
	rec.Reg1 = base
	rec.Reg2 = reg2
	rec.Imm = disp
	rec.HasImm = true
	return rec
}

func branchRecord(cond Condition, disp int32) DecodedInstruction {
	rec := record(BCOND, 2)
	rec.Cond = cond
	rec.Imm = disp
	rec.HasImm = true
	return rec
}

// threeRegRecord builds an extended three-operand form.
func threeRegRecord(m Mnemonic, reg1, reg2, reg3 Register) DecodedInstruction {
	rec := record(m, 4)
	rec.Reg1 = reg1
	rec.Reg2 = reg2
	rec.Reg3 = reg3
	return rec
}
