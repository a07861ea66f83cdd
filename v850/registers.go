package v850

import "fmt"

// Register identifies one of the 32 general purpose registers or the
// virtual program counter. r0 is hard-wired to zero: reads yield 0 and
// writes are dropped when IR is emitted.
type Register int

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	R16
	R17
	R18
	R19
	R20
	R21
	R22
	R23
	R24
	R25
	R26
	R27
	R28
	R29
	EP // element pointer, implicit base for short load/store forms
	LP // link pointer, holds the return address for call forms
	PC
)

// Architectural aliases.
const (
	SP = R3 // stack pointer

	// RegNone marks an absent operand slot.
	RegNone Register = -1
)

// RegisterNames lists the assembler names, indexed by register number.
var RegisterNames = []string{
	"r0", "r1", "r2", "sp", "r4", "r5", "r6", "r7",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"r16", "r17", "r18", "r19", "r20", "r21", "r22", "r23",
	"r24", "r25", "r26", "r27", "r28", "r29", "ep", "lp",
	"pc",
}

func (r Register) String() string {
	if r >= 0 && int(r) < len(RegisterNames) {
		return RegisterNames[r]
	}
	return fmt.Sprintf("r?%d", int(r))
}

// Flag is one of the five program status word condition bits.
type Flag int

const (
	FlagSAT Flag = iota // saturation
	FlagCY              // carry
	FlagOV              // overflow
	FlagS               // sign
	FlagZ               // zero
)

var flagNames = [...]string{"sat", "cy", "ov", "s", "z"}

func (f Flag) String() string {
	if f >= 0 && int(f) < len(flagNames) {
		return flagNames[f]
	}
	return fmt.Sprintf("flag?%d", int(f))
}
