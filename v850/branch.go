package v850

import "fmt"

// EdgeKind classifies one outgoing control-flow edge.
type EdgeKind int

const (
	EdgeUnconditional EdgeKind = iota
	EdgeTrue
	EdgeFalse
	EdgeCall
	EdgeReturn
	EdgeIndirect
)

var edgeKindNames = [...]string{
	"uncond", "true", "false", "call", "return", "indirect",
}

func (k EdgeKind) String() string {
	if k >= 0 && int(k) < len(edgeKindNames) {
		return edgeKindNames[k]
	}
	return fmt.Sprintf("edge?%d", int(k))
}

// BranchEdge is one outgoing edge of an instruction. Indirect edges and
// returns carry no resolved target.
type BranchEdge struct {
	Kind      EdgeKind
	Target    uint32
	HasTarget bool
}

func edgeTo(kind EdgeKind, target uint32) BranchEdge {
	return BranchEdge{Kind: kind, Target: target, HasTarget: true}
}

// Branches classifies the outgoing control flow of one decoded
// instruction. Sequential instructions return no edges; the implicit
// fall-through is the caller's concern. A conditional branch always
// returns exactly one true and one false edge, in that order.
func (a *Arch) Branches(inst DecodedInstruction, addr uint32) []BranchEdge {
	switch inst.Mnemonic {
	case BCOND:
		target := addr + uint32(inst.Imm)
		if inst.Cond == CondT {
			return []BranchEdge{edgeTo(EdgeUnconditional, target)}
		}
		return []BranchEdge{
			edgeTo(EdgeTrue, target),
			edgeTo(EdgeFalse, addr+uint32(inst.Length)),
		}

	case JR:
		return []BranchEdge{edgeTo(EdgeUnconditional, addr+uint32(inst.Imm))}

	case JARL:
		return []BranchEdge{edgeTo(EdgeCall, addr+uint32(inst.Imm))}

	case JMP:
		if inst.HasImm {
			if inst.Reg1 == RegNone || inst.Reg1 == R0 {
				return []BranchEdge{edgeTo(EdgeUnconditional, uint32(inst.Imm))}
			}
			return []BranchEdge{{Kind: EdgeIndirect}}
		}
		if inst.Reg1 == LP {
			return []BranchEdge{{Kind: EdgeReturn}}
		}
		return []BranchEdge{{Kind: EdgeIndirect}}

	case DISPOSE:
		switch inst.Reg1 {
		case RegNone:
			return nil
		case LP:
			return []BranchEdge{{Kind: EdgeReturn}}
		}
		return []BranchEdge{{Kind: EdgeIndirect}}

	case RETI, CTRET:
		return []BranchEdge{{Kind: EdgeReturn}}

	case SWITCH, CALLT:
		return []BranchEdge{{Kind: EdgeIndirect}}
	}
	return nil
}
