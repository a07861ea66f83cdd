package v850

import (
	"fmt"

	"github.com/colorfulnotion/v850/log"
)

// Lift lowers one decoded instruction into an ordered IR operation
// list. Operations execute in list order; an operation's expressions
// are evaluated just before its own side effect commits. Flags named by
// a write tag are derived from the written value and operation; an
// explicit SetFlagOp overrides the tag-derived value of that flag.
//
// The resolver may be nil, in which case every branch target is lowered
// through a fabricated local label.
func (a *Arch) Lift(inst DecodedInstruction, addr uint32, res LabelResolver) ([]Op, error) {
	if inst.Mnemonic == MnemNone {
		return nil, fmt.Errorf("%w: cannot lift an empty record", ErrNoEncoding)
	}
	l := &lifter{inst: inst, addr: addr, res: res}
	l.lift()
	return l.ops, nil
}

type lifter struct {
	inst   DecodedInstruction
	addr   uint32
	res    LabelResolver
	labels labelAlloc
	ops    []Op
}

func (l *lifter) emit(op Op) { l.ops = append(l.ops, op) }

// writeReg enforces the r0 rule: writes to r0 are never committed, but
// a flag-bearing computation still defines its flags.
func (l *lifter) writeReg(dst Register, src Expr, flags FlagWriteType) {
	if dst == R0 {
		if flags != FlagsNone {
			l.emit(FlagUpdateOp{Src: src, Flags: flags})
		}
		return
	}
	l.emit(RegWriteOp{Dst: dst, Src: src, Flags: flags})
}

// clearOV emits the architectural overflow clear that follows every
// logical and shift form.
func (l *lifter) clearOV() {
	l.emit(SetFlagOp{Flag: FlagOV, Val: ImmExpr{0}})
}

func (l *lifter) unmodeled() {
	log.Trace(log.LiftMonitoring, "unmodeled instruction",
		"mnemonic", l.inst.Mnemonic.String(), "addr", fmt.Sprintf("%#x", l.addr))
	l.emit(UnmodeledOp{Mnemonic: l.inst.Mnemonic})
}

// memAddr builds the effective address of a load/store slot; an absent
// base register selects the element pointer.
func memAddr(base Register, disp int32) Expr {
	if base == RegNone {
		base = EP
	}
	if disp == 0 {
		return reg(base)
	}
	return bin(OpAdd, reg(base), imm(disp))
}

func (l *lifter) lift() {
	in := l.inst
	switch in.Mnemonic {
	case NOP, SYNCE, SYNCM, SYNCP:
		l.emit(NopOp{})

	case MOV:
		if in.HasImm {
			l.writeReg(in.Reg2, imm(in.Imm), FlagsNone)
		} else {
			l.writeReg(in.Reg2, reg(in.Reg1), FlagsNone)
		}
	case MOVEA, MOVHI:
		l.writeReg(in.Reg2, bin(OpAdd, reg(in.Reg1), imm(in.Imm)), FlagsNone)

	case NOT:
		l.writeReg(in.Reg2, un(OpNot, reg(in.Reg1)), FlagsLogical)
		l.clearOV()
	case OR, XOR, AND:
		op := map[Mnemonic]BinOp{OR: OpOr, XOR: OpXor, AND: OpAnd}[in.Mnemonic]
		l.writeReg(in.Reg2, bin(op, reg(in.Reg2), reg(in.Reg1)), FlagsLogical)
		l.clearOV()
	case ORI, XORI, ANDI:
		op := map[Mnemonic]BinOp{ORI: OpOr, XORI: OpXor, ANDI: OpAnd}[in.Mnemonic]
		l.writeReg(in.Reg2, bin(op, reg(in.Reg1), imm(in.Imm)), FlagsLogical)
		l.clearOV()
	case TST:
		l.emit(FlagUpdateOp{Src: bin(OpAnd, reg(in.Reg2), reg(in.Reg1)), Flags: FlagsLogical})
		l.clearOV()

	case ADD:
		rhs := reg(in.Reg1)
		if in.HasImm {
			rhs = imm(in.Imm)
		}
		l.writeReg(in.Reg2, bin(OpAdd, reg(in.Reg2), rhs), FlagsArith)
	case ADDI:
		l.writeReg(in.Reg2, bin(OpAdd, reg(in.Reg1), imm(in.Imm)), FlagsArith)
	case SUB:
		l.writeReg(in.Reg2, bin(OpSub, reg(in.Reg2), reg(in.Reg1)), FlagsArith)
	case SUBR:
		l.writeReg(in.Reg2, bin(OpSub, reg(in.Reg1), reg(in.Reg2)), FlagsArith)
	case CMP:
		rhs := reg(in.Reg1)
		if in.HasImm {
			rhs = imm(in.Imm)
		}
		l.emit(FlagUpdateOp{Src: bin(OpSub, reg(in.Reg2), rhs), Flags: FlagsArith})

	case SATADD:
		l.liftSat(OpAddSat)
	case SATSUB:
		l.liftSat(OpSubSat)
	case SATSUBR:
		l.writeReg(in.Reg2, bin(OpSubSat, reg(in.Reg1), reg(in.Reg2)), FlagsSat)
	case SATSUBI:
		l.writeReg(in.Reg2, bin(OpSubSat, reg(in.Reg1), imm(in.Imm)), FlagsSat)

	case MULH:
		rhs := un(OpSxh, reg(in.Reg1))
		if in.HasImm {
			rhs = imm(in.Imm)
		}
		l.writeReg(in.Reg2, bin(OpMul, un(OpSxh, reg(in.Reg2)), rhs), FlagsNone)
	case MULHI:
		l.writeReg(in.Reg2, bin(OpMul, un(OpSxh, reg(in.Reg1)), imm(in.Imm)), FlagsNone)
	case MUL:
		l.liftMul(OpMulHighS)
	case MULU:
		l.liftMul(OpMulHighU)

	case DIVH:
		if in.Reg3 == RegNone {
			l.writeReg(in.Reg2, bin(OpDivS, reg(in.Reg2), un(OpSxh, reg(in.Reg1))), FlagsDiv)
			break
		}
		l.liftDiv(OpDivS, OpModS, un(OpSxh, reg(in.Reg1)))
	case DIVHU:
		l.liftDiv(OpDivU, OpModU, un(OpZxh, reg(in.Reg1)))
	case DIV:
		l.liftDiv(OpDivS, OpModS, reg(in.Reg1))
	case DIVU:
		l.liftDiv(OpDivU, OpModU, reg(in.Reg1))

	case ZXB:
		l.writeReg(in.Reg1, un(OpZxb, reg(in.Reg1)), FlagsNone)
	case SXB:
		l.writeReg(in.Reg1, un(OpSxb, reg(in.Reg1)), FlagsNone)
	case ZXH:
		l.writeReg(in.Reg1, un(OpZxh, reg(in.Reg1)), FlagsNone)
	case SXH:
		l.writeReg(in.Reg1, un(OpSxh, reg(in.Reg1)), FlagsNone)

	case SHR:
		l.liftShift(OpShr)
	case SAR:
		l.liftShift(OpSar)
	case SHL:
		l.liftShift(OpShl)

	case SLD_B, LD_B:
		l.liftLoad(1, true)
	case SLD_BU, LD_BU:
		l.liftLoad(1, false)
	case SLD_H, LD_H:
		l.liftLoad(2, true)
	case SLD_HU, LD_HU:
		l.liftLoad(2, false)
	case SLD_W, LD_W:
		l.liftLoad(4, false)
	case SST_B, ST_B:
		l.liftStore(1)
	case SST_H, ST_H:
		l.liftStore(2)
	case SST_W, ST_W:
		l.liftStore(4)

	case SET1, NOT1, CLR1, TST1:
		l.liftBitOp()

	case SWITCH:
		// The jump table sits after the switch itself: a halfword is
		// fetched relative to addr+2, doubled, and added back to the
		// same base.
		base := ImmExpr{Val: l.addr + 2}
		entry := LoadExpr{Size: 2, Signed: true,
			Addr: bin(OpAdd, base, bin(OpShl, reg(in.Reg1), imm(1)))}
		l.emit(JumpOp{Target: bin(OpAdd, base, bin(OpShl, entry, imm(1)))})

	case JMP:
		l.liftJmp()
	case JR:
		l.jumpTo(l.addr + uint32(in.Imm))
	case JARL:
		target := l.addr + uint32(in.Imm)
		if in.Reg2 == LP {
			l.emit(CallOp{Target: ImmExpr{Val: target}})
			break
		}
		l.writeReg(in.Reg2, ImmExpr{Val: l.addr + uint32(in.Length)}, FlagsNone)
		l.emit(JumpOp{Target: ImmExpr{Val: target}})
	case BCOND:
		l.liftBranch()

	case PREPARE:
		l.liftPrepare()
	case DISPOSE:
		l.liftDispose()

	case SETF:
		switch in.Cond {
		case CondT:
			l.writeReg(in.Reg2, imm(1), FlagsNone)
		case CondSA:
			l.unmodeled()
		default:
			l.writeReg(in.Reg2, condExpr(in.Cond), FlagsNone)
		}

	case RETI, CTRET:
		l.emit(RetOp{})

	default:
		// rie, halt, di, ei, trap, fetrap, callt, ldsr, stsr, caxi,
		// cmov, the swaps, bit search and multiply-accumulate all
		// decode with known lengths but have no lowering yet.
		l.unmodeled()
	}
}

func (l *lifter) liftSat(op BinOp) {
	in := l.inst
	rhs := reg(in.Reg1)
	if in.HasImm {
		rhs = imm(in.Imm)
	}
	if in.Reg3 != RegNone {
		l.writeReg(in.Reg3, bin(op, reg(in.Reg2), reg(in.Reg1)), FlagsSat)
		return
	}
	l.writeReg(in.Reg2, bin(op, reg(in.Reg2), rhs), FlagsSat)
}

// liftMul lowers the 32x32->64 multiplies: the high half goes to reg3,
// the low half to reg2. When the destinations coincide only the high
// write is emitted.
func (l *lifter) liftMul(high BinOp) {
	in := l.inst
	l.writeReg(in.Reg3, bin(high, reg(in.Reg2), reg(in.Reg1)), FlagsNone)
	if in.Reg3 != in.Reg2 {
		l.writeReg(in.Reg2, bin(OpMul, reg(in.Reg2), reg(in.Reg1)), FlagsNone)
	}
}

// liftDiv lowers quotient to reg2 and remainder to reg3. The remainder
// write comes first so its operands are still unclobbered; a coinciding
// destination pair keeps only the quotient.
func (l *lifter) liftDiv(quot, rem BinOp, divisor Expr) {
	in := l.inst
	if in.Reg3 != RegNone && in.Reg3 != in.Reg2 {
		l.writeReg(in.Reg3, bin(rem, reg(in.Reg2), divisor), FlagsNone)
	}
	l.writeReg(in.Reg2, bin(quot, reg(in.Reg2), divisor), FlagsDiv)
}

// liftShift lowers the three shift forms. The carry produced by a shift
// is the last bit shifted out, derived by the consumer from the write
// tag; a zero immediate amount shifts nothing out, so that case moves
// the value through unchanged and clears carry explicitly.
func (l *lifter) liftShift(op BinOp) {
	in := l.inst
	dst := in.Reg2
	if in.Reg3 != RegNone {
		dst = in.Reg3
	}
	val := reg(in.Reg2)
	if in.HasImm {
		n := in.Imm & 0x1f
		if n == 0 {
			l.writeReg(dst, val, FlagsShift)
			l.clearOV()
			l.emit(SetFlagOp{Flag: FlagCY, Val: ImmExpr{0}})
			return
		}
		l.writeReg(dst, bin(op, val, imm(n)), FlagsShift)
		l.clearOV()
		return
	}
	l.writeReg(dst, bin(op, val, bin(OpAnd, reg(in.Reg1), imm(31))), FlagsShift)
	l.clearOV()
}

func (l *lifter) liftLoad(size int, signed bool) {
	in := l.inst
	src := LoadExpr{Size: size, Signed: signed, Addr: memAddr(in.Reg1, in.Imm)}
	l.writeReg(in.Reg2, src, FlagsNone)
}

func (l *lifter) liftStore(size int) {
	in := l.inst
	l.emit(StoreOp{Size: size, Addr: memAddr(in.Reg1, in.Imm), Src: reg(in.Reg2)})
}

// liftBitOp lowers both bit-manipulation forms: displacement-addressed
// with an immediate bit number, and register-addressed with the bit
// number in a register. All four test the bit into Z before mutating.
func (l *lifter) liftBitOp() {
	in := l.inst
	var addr, mask Expr
	if in.HasImm {
		addr = memAddr(in.Reg1, in.Imm)
		mask = imm(1 << uint(in.Imm2&0x7))
	} else {
		addr = reg(in.Reg1)
		mask = bin(OpShl, imm(1), bin(OpAnd, reg(in.Reg2), imm(7)))
	}
	loaded := LoadExpr{Size: 1, Addr: addr}
	l.emit(FlagUpdateOp{Src: bin(OpAnd, loaded, mask), Flags: FlagsBitTest})
	switch in.Mnemonic {
	case SET1:
		l.emit(StoreOp{Size: 1, Addr: addr, Src: bin(OpOr, loaded, mask)})
	case CLR1:
		l.emit(StoreOp{Size: 1, Addr: addr, Src: bin(OpAnd, loaded, un(OpNot, mask))})
	case NOT1:
		l.emit(StoreOp{Size: 1, Addr: addr, Src: bin(OpXor, loaded, mask)})
	case TST1:
		// test only
	}
}

func (l *lifter) liftJmp() {
	in := l.inst
	if in.HasImm {
		if in.Reg1 == RegNone || in.Reg1 == R0 {
			l.emit(JumpOp{Target: ImmExpr{Val: uint32(in.Imm)}})
			return
		}
		l.emit(JumpOp{Target: bin(OpAdd, reg(in.Reg1), imm(in.Imm))})
		return
	}
	if in.Reg1 == LP {
		l.emit(RetOp{Target: reg(LP)})
		return
	}
	l.emit(JumpOp{Target: reg(in.Reg1)})
}

// jumpTo lowers an unconditional transfer to a resolved address,
// through the consumer's label when it claims the target.
func (l *lifter) jumpTo(target uint32) {
	if l.res != nil {
		if known, ok := l.res.LabelForAddress(target); ok {
			known.Known = true
			l.emit(GotoOp{Label: known})
			return
		}
	}
	l.emit(JumpOp{Target: ImmExpr{Val: target}})
}

// liftBranch lowers a conditional branch to exactly one true edge and
// one false edge. An unclaimed target goes through a fabricated local
// label so the consumer still sees single-entry/single-exit structure.
// The always condition collapses to a plain jump; the saturated
// condition has no flag lowering and stays unmodeled.
func (l *lifter) liftBranch() {
	in := l.inst
	target := l.addr + uint32(in.Imm)
	switch in.Cond {
	case CondT:
		l.jumpTo(target)
	case CondSA:
		l.unmodeled()
	default:
		cond := condExpr(in.Cond)
		falseLbl := l.labels.fresh(l.addr + uint32(in.Length))
		if l.res != nil {
			if known, ok := l.res.LabelForAddress(target); ok {
				known.Known = true
				l.emit(IfOp{Cond: cond, True: known, False: falseLbl})
				l.emit(LabelOp{Label: falseLbl})
				return
			}
		}
		trueLbl := l.labels.fresh(target)
		l.emit(IfOp{Cond: cond, True: trueLbl, False: falseLbl})
		l.emit(LabelOp{Label: trueLbl})
		l.emit(JumpOp{Target: ImmExpr{Val: target}})
		l.emit(LabelOp{Label: falseLbl})
	}
}

// liftPrepare pushes the register list in ascending mask-bit order,
// then drops the stack pointer by the frame size, then loads the
// element pointer when the encoding supplies a value for it.
func (l *lifter) liftPrepare() {
	in := l.inst
	for _, r := range in.List.Registers() {
		l.emit(PushOp{Reg: r})
	}
	if in.Imm != 0 {
		l.writeReg(SP, bin(OpSub, reg(SP), imm(in.Imm)), FlagsNone)
	}
	if in.Reg3 == SP {
		l.writeReg(EP, reg(SP), FlagsNone)
	} else if in.HasImm2 {
		l.writeReg(EP, imm(in.Imm2), FlagsNone)
	}
}

// liftDispose mirrors prepare: stack-pointer adjust, pops in descending
// mask-bit order, then the optional return through the link slot.
func (l *lifter) liftDispose() {
	in := l.inst
	if in.Imm != 0 {
		l.writeReg(SP, bin(OpAdd, reg(SP), imm(in.Imm)), FlagsNone)
	}
	regs := in.List.Registers()
	for i := len(regs) - 1; i >= 0; i-- {
		l.emit(PopOp{Reg: regs[i]})
	}
	if in.Reg1 == RegNone {
		return
	}
	if in.Reg1 == LP {
		l.emit(RetOp{Target: reg(LP)})
		return
	}
	l.emit(JumpOp{Target: reg(in.Reg1)})
}

// condExpr builds the flag expression of a branch condition. CondT and
// CondSA never reach here.
func condExpr(c Condition) Expr {
	s := FlagExpr{Flag: FlagS}
	z := FlagExpr{Flag: FlagZ}
	cy := FlagExpr{Flag: FlagCY}
	ov := FlagExpr{Flag: FlagOV}
	switch c {
	case CondV:
		return ov
	case CondNV:
		return isZero(ov)
	case CondL:
		return cy
	case CondNL:
		return isZero(cy)
	case CondZ:
		return z
	case CondNZ:
		return isZero(z)
	case CondN:
		return s
	case CondP:
		return isZero(s)
	case CondNH:
		return bin(OpOr, cy, z)
	case CondH:
		return isZero(bin(OpOr, cy, z))
	case CondLT:
		return bin(OpXor, s, ov)
	case CondGE:
		return isZero(bin(OpXor, s, ov))
	case CondLE:
		return bin(OpOr, bin(OpXor, s, ov), z)
	case CondGT:
		return isZero(bin(OpOr, bin(OpXor, s, ov), z))
	}
	return ImmExpr{0}
}

func isZero(x Expr) Expr { return bin(OpEq, x, imm(0)) }
