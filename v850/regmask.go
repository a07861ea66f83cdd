package v850

import (
	"math/bits"
	"strings"
)

// RegList is the 11-bit packed register mask carried by prepare and
// dispose. Bit positions map to a fixed, non-monotonic subset of the
// upper registers; the decoder and the lifter share this mapping, and
// push/pop order is defined by bit position, not register number.
type RegList uint16

const regListBits = 11

// maskRegisters maps mask bit position to register, bit 0 first.
var maskRegisters = [regListBits]Register{
	LP,  // bit 0  (r31)
	R29, // bit 1
	R28, // bit 2
	R23, // bit 3
	R22, // bit 4
	R21, // bit 5
	R20, // bit 6
	R26, // bit 7
	R25, // bit 8
	R24, // bit 9
	EP,  // bit 10 (r30)
}

// MakeRegList packs a set of registers into a mask. Registers outside
// the mappable set are reported back to the caller.
func MakeRegList(regs ...Register) (RegList, bool) {
	var l RegList
	for _, r := range regs {
		found := false
		for bit, mr := range maskRegisters {
			if mr == r {
				l |= 1 << bit
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return l, true
}

// Registers returns the encoded registers in ascending bit order, the
// order prepare pushes them.
func (l RegList) Registers() []Register {
	regs := make([]Register, 0, bits.OnesCount16(uint16(l)))
	for bit := 0; bit < regListBits; bit++ {
		if l&(1<<bit) != 0 {
			regs = append(regs, maskRegisters[bit])
		}
	}
	return regs
}

func (l RegList) Has(r Register) bool {
	for bit, mr := range maskRegisters {
		if mr == r && l&(1<<bit) != 0 {
			return true
		}
	}
	return false
}

func (l RegList) Count() int {
	return bits.OnesCount16(uint16(l) & (1<<regListBits - 1))
}

func (l RegList) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, r := range l.Registers() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
