package v850

import (
	"fmt"
	"sort"
)

// BlockInstruction is one decoded instruction placed at an address
// inside a block.
type BlockInstruction struct {
	Addr uint32
	Inst DecodedInstruction
}

// BasicBlock is a straight-line run of instructions ending at the first
// control transfer (or at a decode failure, recorded in Err). Edges are
// the terminator's classification; a block that simply runs into the
// next one carries a single fall-through style unconditional edge.
type BasicBlock struct {
	Start        uint32
	End          uint32 // address one past the last instruction
	Instructions []BlockInstruction
	Edges        []BranchEdge
	Err          error
}

func (bb *BasicBlock) String() string {
	return fmt.Sprintf("block %#x..%#x (%d instructions)", bb.Start, bb.End, len(bb.Instructions))
}

// terminates reports whether the instruction ends a basic block.
func terminates(inst DecodedInstruction) bool {
	switch inst.Mnemonic {
	case BCOND, JR, JMP, SWITCH, CALLT, RETI, CTRET, HALT, TRAP, FETRAP, RIE:
		return true
	case DISPOSE:
		return inst.Reg1 != RegNone
	}
	return false
}

// ScanBlock decodes linearly from start until a block terminator, a
// decode failure or the end of code. code holds the bytes beginning at
// base; start must lie inside that window.
func (a *Arch) ScanBlock(code []byte, base, start uint32) *BasicBlock {
	bb := &BasicBlock{Start: start, End: start}
	for {
		off := bb.End - base
		if off >= uint32(len(code)) {
			return bb
		}
		inst, err := a.Decode(code[off:], bb.End)
		if err != nil {
			bb.Err = err
			return bb
		}
		bb.Instructions = append(bb.Instructions, BlockInstruction{Addr: bb.End, Inst: inst})
		addr := bb.End
		bb.End += uint32(inst.Length)
		if terminates(inst) {
			bb.Edges = a.Branches(inst, addr)
			return bb
		}
	}
}

// ScanBlocks walks the reachable straight-line blocks from start,
// following resolved unconditional, true and false edges. Call edges
// are recorded but not followed. Blocks come back ordered by start
// address.
func (a *Arch) ScanBlocks(code []byte, base, start uint32) []*BasicBlock {
	seen := make(map[uint32]*BasicBlock)
	work := []uint32{start}
	for len(work) > 0 {
		at := work[len(work)-1]
		work = work[:len(work)-1]
		if _, ok := seen[at]; ok {
			continue
		}
		if at < base || at-base >= uint32(len(code)) {
			continue
		}
		bb := a.ScanBlock(code, base, at)
		seen[at] = bb
		for _, e := range bb.Edges {
			if !e.HasTarget || e.Kind == EdgeCall {
				continue
			}
			work = append(work, e.Target)
		}
	}

	blocks := make([]*BasicBlock, 0, len(seen))
	for _, bb := range seen {
		blocks = append(blocks, bb)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
	return blocks
}
