package v850

import "fmt"

// decodeExtended handles the two-word class of the later revision. The
// second word carries a 6-bit subopcode keyed further by a 5-bit
// sub-subopcode; unassigned combinations are decode failures. When the
// subopcode is zero a single bit of the second word separates setf from
// the reserved-instruction-with-vector form.
func decodeExtended(code []byte, w1 uint16, reg1, reg2 Register) (DecodedInstruction, error) {
	w2, ok := word(code, 1)
	if !ok {
		return DecodedInstruction{}, truncated(4, len(code))
	}
	reg3 := Register((w2 >> 11) & 0x1f)
	subop := (w2 >> 5) & 0x3f
	subsub := w2 & 0x1f

	switch subop {
	case 0x00:
		if w2&0x10 == 0 {
			rec := record(SETF, 4)
			rec.Cond = Condition(w1 & 0xf)
			rec.Reg2 = reg2
			return rec, nil
		}
		rec := immRecord(RIE, 4, int32(w1)&0x1f)
		rec.Imm2 = int32(reg2) & 0xf
		rec.HasImm2 = true
		return rec, nil

	case 0x01:
		if subsub == 0 {
			return regRegExt(LDSR, reg1, reg2), nil
		}
	case 0x02:
		if subsub == 0 {
			return regRegExt(STSR, reg1, reg2), nil
		}

	case 0x04, 0x05, 0x06:
		m := [3]Mnemonic{SHR, SAR, SHL}[subop-0x04]
		switch subsub {
		case 0x00:
			return regRegExt(m, reg1, reg2), nil
		case 0x02:
			return threeRegRecord(m, reg1, reg2, reg3), nil
		}

	case 0x07:
		switch subsub {
		case 0x00:
			return regRegExt(SET1, reg1, reg2), nil
		case 0x02:
			return regRegExt(NOT1, reg1, reg2), nil
		case 0x04:
			return regRegExt(CLR1, reg1, reg2), nil
		case 0x06:
			return regRegExt(TST1, reg1, reg2), nil
		case 0x0e:
			return threeRegRecord(CAXI, reg1, reg2, reg3), nil
		}

	case 0x08:
		if subsub == 0 {
			return immRecord(TRAP, 4, int32(reg1)), nil
		}

	case 0x11:
		switch subsub {
		case 0x00:
			return threeRegRecord(MUL, reg1, reg2, reg3), nil
		case 0x02:
			return threeRegRecord(MULU, reg1, reg2, reg3), nil
		}
	case 0x14:
		switch subsub {
		case 0x00:
			return threeRegRecord(DIVH, reg1, reg2, reg3), nil
		case 0x02:
			return threeRegRecord(DIVHU, reg1, reg2, reg3), nil
		}
	case 0x16:
		switch subsub {
		case 0x00:
			return threeRegRecord(DIV, reg1, reg2, reg3), nil
		case 0x02:
			return threeRegRecord(DIVU, reg1, reg2, reg3), nil
		}

	case 0x19:
		if subsub&0x1 == 0 {
			rec := threeRegRecord(CMOV, reg1, reg2, reg3)
			rec.Cond = Condition(subsub >> 1)
			return rec, nil
		}

	case 0x1a:
		switch subsub {
		case 0x00:
			return swapRecord(BSW, reg2, reg3), nil
		case 0x02:
			return swapRecord(BSH, reg2, reg3), nil
		case 0x04:
			return swapRecord(HSW, reg2, reg3), nil
		}

	case 0x1b:
		switch subsub {
		case 0x00:
			return swapRecord(SCH0L, reg2, reg3), nil
		case 0x02:
			return swapRecord(SCH1L, reg2, reg3), nil
		case 0x04:
			return swapRecord(SCH0R, reg2, reg3), nil
		case 0x06:
			return swapRecord(SCH1R, reg2, reg3), nil
		}

	case 0x1d:
		switch subsub {
		case 0x00:
			return threeRegRecord(SATADD, reg1, reg2, reg3), nil
		case 0x02:
			return threeRegRecord(SATSUB, reg1, reg2, reg3), nil
		}

	case 0x1e:
		m := MAC
		if subsub&0x1 != 0 {
			m = MACU
		}
		rec := threeRegRecord(m, reg1, reg2, reg3)
		rec.Reg4 = Register(subsub & 0x1e)
		return rec, nil
	}

	return DecodedInstruction{}, fmt.Errorf("%w: extended subopcode %#02x/%#02x", ErrNoEncoding, subop, subsub)
}

// regRegExt builds a 4-byte two-register extended form.
func regRegExt(m Mnemonic, reg1, reg2 Register) DecodedInstruction {
	rec := record(m, 4)
	rec.Reg1 = reg1
	rec.Reg2 = reg2
	return rec
}

// swapRecord builds the one-source one-destination extended forms
// (byte/halfword swaps and bit search): reg2 in, reg3 out.
func swapRecord(m Mnemonic, reg2, reg3 Register) DecodedInstruction {
	rec := record(m, 4)
	rec.Reg2 = reg2
	rec.Reg3 = reg3
	return rec
}
