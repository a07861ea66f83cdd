package v850

import "fmt"

// Mnemonic is the closed instruction vocabulary. Conditional branches
// share one mnemonic and carry their condition in the record.
type Mnemonic int

const (
	MnemNone Mnemonic = iota

	// zero-operand forms
	NOP
	SYNCE
	SYNCM
	SYNCP
	RIE
	HALT
	RETI
	CTRET
	DI
	EI

	// moves and arithmetic
	MOV
	MOVEA
	MOVHI
	NOT
	DIVH
	DIVHU
	SATSUBR
	SATSUB
	SATSUBI
	SATADD
	MULH
	MULHI
	MUL
	MULU
	DIV
	DIVU
	OR
	ORI
	XOR
	XORI
	AND
	ANDI
	TST
	SUBR
	SUB
	ADD
	ADDI
	CMP

	// one-register forms
	SWITCH
	FETRAP
	ZXB
	SXB
	ZXH
	SXH

	// control transfer
	JMP
	JR
	JARL
	CALLT
	BCOND

	// shifts
	SHR
	SAR
	SHL

	// short (ep-relative) loads and stores
	SLD_B
	SLD_BU
	SLD_H
	SLD_HU
	SLD_W
	SST_B
	SST_H
	SST_W

	// loads and stores
	LD_B
	LD_BU
	LD_H
	LD_HU
	LD_W
	ST_B
	ST_H
	ST_W

	// bit manipulation
	SET1
	NOT1
	CLR1
	TST1

	// stack frame
	PREPARE
	DISPOSE

	// extended two/three-word forms
	SETF
	LDSR
	STSR
	TRAP
	CAXI
	CMOV
	BSW
	BSH
	HSW
	SCH0L
	SCH1L
	SCH0R
	SCH1R
	MAC
	MACU

	mnemonicCount
)

// MnemonicNames maps mnemonics to their assembler spelling. BCOND is
// spelled "b" and gets its condition suffix during rendering.
var MnemonicNames = map[Mnemonic]string{
	NOP:     "nop",
	SYNCE:   "synce",
	SYNCM:   "syncm",
	SYNCP:   "syncp",
	RIE:     "rie",
	HALT:    "halt",
	RETI:    "reti",
	CTRET:   "ctret",
	DI:      "di",
	EI:      "ei",
	MOV:     "mov",
	MOVEA:   "movea",
	MOVHI:   "movhi",
	NOT:     "not",
	DIVH:    "divh",
	DIVHU:   "divhu",
	SATSUBR: "satsubr",
	SATSUB:  "satsub",
	SATSUBI: "satsubi",
	SATADD:  "satadd",
	MULH:    "mulh",
	MULHI:   "mulhi",
	MUL:     "mul",
	MULU:    "mulu",
	DIV:     "div",
	DIVU:    "divu",
	OR:      "or",
	ORI:     "ori",
	XOR:     "xor",
	XORI:    "xori",
	AND:     "and",
	ANDI:    "andi",
	TST:     "tst",
	SUBR:    "subr",
	SUB:     "sub",
	ADD:     "add",
	ADDI:    "addi",
	CMP:     "cmp",
	SWITCH:  "switch",
	FETRAP:  "fetrap",
	ZXB:     "zxb",
	SXB:     "sxb",
	ZXH:     "zxh",
	SXH:     "sxh",
	JMP:     "jmp",
	JR:      "jr",
	JARL:    "jarl",
	CALLT:   "callt",
	BCOND:   "b",
	SHR:     "shr",
	SAR:     "sar",
	SHL:     "shl",
	SLD_B:   "sld.b",
	SLD_BU:  "sld.bu",
	SLD_H:   "sld.h",
	SLD_HU:  "sld.hu",
	SLD_W:   "sld.w",
	SST_B:   "sst.b",
	SST_H:   "sst.h",
	SST_W:   "sst.w",
	LD_B:    "ld.b",
	LD_BU:   "ld.bu",
	LD_H:    "ld.h",
	LD_HU:   "ld.hu",
	LD_W:    "ld.w",
	ST_B:    "st.b",
	ST_H:    "st.h",
	ST_W:    "st.w",
	SET1:    "set1",
	NOT1:    "not1",
	CLR1:    "clr1",
	TST1:    "tst1",
	PREPARE: "prepare",
	DISPOSE: "dispose",
	SETF:    "setf",
	LDSR:    "ldsr",
	STSR:    "stsr",
	TRAP:    "trap",
	CAXI:    "caxi",
	CMOV:    "cmov",
	BSW:     "bsw",
	BSH:     "bsh",
	HSW:     "hsw",
	SCH0L:   "sch0l",
	SCH1L:   "sch1l",
	SCH0R:   "sch0r",
	SCH1R:   "sch1r",
	MAC:     "mac",
	MACU:    "macu",
}

func (m Mnemonic) String() string {
	if name, ok := MnemonicNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mnem?%d", int(m))
}

// Condition is the 4-bit branch condition code.
type Condition int

const (
	CondV  Condition = 0x0 // overflow
	CondL  Condition = 0x1 // lower (carry)
	CondZ  Condition = 0x2 // zero
	CondNH Condition = 0x3 // not higher
	CondN  Condition = 0x4 // negative
	CondT  Condition = 0x5 // always
	CondLT Condition = 0x6 // signed less than
	CondLE Condition = 0x7 // signed less or equal
	CondNV Condition = 0x8 // no overflow
	CondNL Condition = 0x9 // not lower
	CondNZ Condition = 0xa // not zero
	CondH  Condition = 0xb // higher
	CondP  Condition = 0xc // positive
	CondSA Condition = 0xd // saturated; no flag-condition lowering exists
	CondGE Condition = 0xe // signed greater or equal
	CondGT Condition = 0xf // signed greater than

	CondNone Condition = -1
)

var conditionNames = [...]string{
	"v", "l", "z", "nh", "n", "t", "lt", "le",
	"nv", "nl", "nz", "h", "p", "sa", "ge", "gt",
}

func (c Condition) String() string {
	if c >= 0 && int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return fmt.Sprintf("cond?%d", int(c))
}

// FlagWriteType declares exactly which status flags an IR write defines.
// Flags outside the set are untouched by the instruction.
type FlagWriteType int

const (
	FlagsNone    FlagWriteType = iota
	FlagsArith                 // cy, ov, s, z
	FlagsLogical               // ov, s, z; ov is then forced to zero
	FlagsShift                 // cy, ov, s, z; ov forced zero, cy is the last bit shifted out
	FlagsSat                   // sat, cy, ov, s, z
	FlagsDiv                   // ov, s, z
	FlagsBitTest               // z only
)

var flagWriteSets = map[FlagWriteType][]Flag{
	FlagsNone:    nil,
	FlagsArith:   {FlagCY, FlagOV, FlagS, FlagZ},
	FlagsLogical: {FlagOV, FlagS, FlagZ},
	FlagsShift:   {FlagCY, FlagOV, FlagS, FlagZ},
	FlagsSat:     {FlagSAT, FlagCY, FlagOV, FlagS, FlagZ},
	FlagsDiv:     {FlagOV, FlagS, FlagZ},
	FlagsBitTest: {FlagZ},
}

// Written returns the flags defined by this write type.
func (t FlagWriteType) Written() []Flag {
	return flagWriteSets[t]
}

var flagWriteNames = map[FlagWriteType]string{
	FlagsNone:    "none",
	FlagsArith:   "arith",
	FlagsLogical: "logical",
	FlagsShift:   "shift",
	FlagsSat:     "sat",
	FlagsDiv:     "div",
	FlagsBitTest: "bittest",
}

func (t FlagWriteType) String() string {
	if name, ok := flagWriteNames[t]; ok {
		return name
	}
	return fmt.Sprintf("flags?%d", int(t))
}
