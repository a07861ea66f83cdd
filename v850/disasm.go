package v850

import (
	"fmt"
	"strings"
)

// Render formats one decoded instruction the way an assembler listing
// would: mnemonic padded to seven columns, operands in source, dest
// order, displacements as disp[base], branch targets resolved against
// addr.
func (a *Arch) Render(inst DecodedInstruction, addr uint32) string {
	mnem := inst.Mnemonic.String()
	if inst.Mnemonic == BCOND {
		mnem = "b" + inst.Cond.String()
	}
	ops := operands(inst, addr)
	if ops == "" {
		return mnem
	}
	return fmt.Sprintf("%-7s %s", mnem, ops)
}

func fmtImm(v int32) string {
	if v < 0 {
		return fmt.Sprintf("-%#x", uint32(-v))
	}
	return fmt.Sprintf("%#x", v)
}

// fmtMem renders a displacement-addressed slot; an absent base is the
// element pointer.
func fmtMem(base Register, disp int32) string {
	if base == RegNone {
		base = EP
	}
	return fmt.Sprintf("%s[%s]", fmtImm(disp), base)
}

func operands(inst DecodedInstruction, addr uint32) string {
	switch inst.Mnemonic {
	case NOP, SYNCE, SYNCM, SYNCP, HALT, RETI, CTRET, DI, EI:
		return ""

	case RIE:
		if !inst.HasImm {
			return ""
		}
		return fmt.Sprintf("%d, %d", inst.Imm, inst.Imm2)

	case SWITCH:
		return inst.Reg1.String()
	case ZXB, SXB, ZXH, SXH:
		return inst.Reg1.String()

	case FETRAP, TRAP, CALLT:
		return fmtImm(inst.Imm)

	case JMP:
		if inst.HasImm {
			if inst.Reg1 == RegNone || inst.Reg1 == R0 {
				return fmtImm(inst.Imm)
			}
			return fmtMem(inst.Reg1, inst.Imm)
		}
		return "[" + inst.Reg1.String() + "]"

	case JR:
		return fmt.Sprintf("%#x", addr+uint32(inst.Imm))
	case JARL:
		return fmt.Sprintf("%#x, %s", addr+uint32(inst.Imm), inst.Reg2)
	case BCOND:
		return fmt.Sprintf("%#x", addr+uint32(inst.Imm))

	case SLD_B, SLD_BU, SLD_H, SLD_HU, SLD_W, LD_B, LD_BU, LD_H, LD_HU, LD_W:
		return fmt.Sprintf("%s, %s", fmtMem(inst.Reg1, inst.Imm), inst.Reg2)
	case SST_B, SST_H, SST_W, ST_B, ST_H, ST_W:
		return fmt.Sprintf("%s, %s", inst.Reg2, fmtMem(inst.Reg1, inst.Imm))

	case SET1, NOT1, CLR1, TST1:
		if inst.HasImm {
			return fmt.Sprintf("%d, %s", inst.Imm2, fmtMem(inst.Reg1, inst.Imm))
		}
		return fmt.Sprintf("%s, [%s]", inst.Reg2, inst.Reg1)

	case PREPARE:
		s := fmt.Sprintf("%s, %s", inst.List, fmtImm(inst.Imm>>2))
		if inst.Reg3 == SP {
			return s + ", sp"
		}
		if inst.HasImm2 {
			return s + ", " + fmtImm(inst.Imm2)
		}
		return s
	case DISPOSE:
		s := fmt.Sprintf("%s, %s", fmtImm(inst.Imm>>2), inst.List)
		if inst.Reg1 != RegNone {
			return s + ", [" + inst.Reg1.String() + "]"
		}
		return s

	case SETF:
		return fmt.Sprintf("%s, %s", inst.Cond, inst.Reg2)
	case CMOV:
		return fmt.Sprintf("%s, %s, %s, %s", inst.Cond, inst.Reg1, inst.Reg2, inst.Reg3)
	case BSW, BSH, HSW, SCH0L, SCH1L, SCH0R, SCH1R:
		return fmt.Sprintf("%s, %s", inst.Reg2, inst.Reg3)
	case CAXI:
		return fmt.Sprintf("[%s], %s, %s", inst.Reg1, inst.Reg2, inst.Reg3)
	case MAC, MACU:
		return fmt.Sprintf("%s, %s, %s, %s", inst.Reg1, inst.Reg2, inst.Reg3, inst.Reg4)
	}

	// The remaining forms compose from the populated operand slots:
	// immediate first, then reg1, reg2, reg3.
	var parts []string
	if inst.HasImm {
		parts = append(parts, fmtImm(inst.Imm))
	}
	if inst.Reg1 != RegNone {
		parts = append(parts, inst.Reg1.String())
	}
	if inst.Reg2 != RegNone {
		parts = append(parts, inst.Reg2.String())
	}
	if inst.Reg3 != RegNone {
		parts = append(parts, inst.Reg3.String())
	}
	return strings.Join(parts, ", ")
}
