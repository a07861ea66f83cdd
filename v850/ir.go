package v850

import "fmt"

// BinOp is the binary operator vocabulary of lifted expressions.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpAnd
	OpOr
	OpXor
	OpMul      // low 32 bits of the signed 64-bit product
	OpMulHighS // high 32 bits, signed
	OpMulHighU // high 32 bits, unsigned
	OpDivS
	OpDivU
	OpModS
	OpModU
	OpShl
	OpShr // logical shift right
	OpSar // arithmetic shift right
	OpAddSat
	OpSubSat
	OpEq // 1 if equal, else 0
	OpNe
)

var binOpNames = [...]string{
	"add", "sub", "and", "or", "xor",
	"mul", "mulhs", "mulhu",
	"divs", "divu", "mods", "modu",
	"shl", "shr", "sar",
	"addsat", "subsat",
	"eq", "ne",
}

func (op BinOp) String() string {
	if op >= 0 && int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return fmt.Sprintf("binop?%d", int(op))
}

// UnOp is the unary operator vocabulary.
type UnOp int

const (
	OpNot UnOp = iota
	OpSxb
	OpSxh
	OpZxb
	OpZxh
)

var unOpNames = [...]string{"not", "sxb", "sxh", "zxb", "zxh"}

func (op UnOp) String() string {
	if op >= 0 && int(op) < len(unOpNames) {
		return unOpNames[op]
	}
	return fmt.Sprintf("unop?%d", int(op))
}

// Expr is a side-effect free value expression.
type Expr interface {
	isExpr()
	String() string
}

// RegExpr reads a register. Reads of r0 are lowered to the constant 0
// before an Expr is built, so r0 never appears here.
type RegExpr struct{ Reg Register }

// ImmExpr is a 32-bit constant.
type ImmExpr struct{ Val uint32 }

type BinExpr struct {
	Op   BinOp
	L, R Expr
}

type UnExpr struct {
	Op UnOp
	X  Expr
}

// LoadExpr reads Size bytes of memory; sub-word loads extend according
// to Signed.
type LoadExpr struct {
	Size   int
	Signed bool
	Addr   Expr
}

// FlagExpr reads one status flag as 0 or 1.
type FlagExpr struct{ Flag Flag }

func (RegExpr) isExpr()  {}
func (ImmExpr) isExpr()  {}
func (BinExpr) isExpr()  {}
func (UnExpr) isExpr()   {}
func (LoadExpr) isExpr() {}
func (FlagExpr) isExpr() {}

func (e RegExpr) String() string { return e.Reg.String() }

func (e ImmExpr) String() string {
	if int32(e.Val) < 0 && int32(e.Val) > -0x10000 {
		return fmt.Sprintf("-%#x", uint32(-int32(e.Val)))
	}
	return fmt.Sprintf("%#x", e.Val)
}

func (e BinExpr) String() string {
	return fmt.Sprintf("%s(%s, %s)", e.Op, e.L, e.R)
}

func (e UnExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Op, e.X)
}

func (e LoadExpr) String() string {
	sign := "u"
	if e.Signed {
		sign = "s"
	}
	if e.Size == 4 {
		sign = ""
	}
	return fmt.Sprintf("load.%d%s[%s]", e.Size, sign, e.Addr)
}

func (e FlagExpr) String() string { return "flag." + e.Flag.String() }

// reg builds a register read, folding r0 to the constant 0.
func reg(r Register) Expr {
	if r == R0 {
		return ImmExpr{0}
	}
	return RegExpr{Reg: r}
}

func imm(v int32) Expr { return ImmExpr{Val: uint32(v)} }

func bin(op BinOp, l, r Expr) Expr { return BinExpr{Op: op, L: l, R: r} }

func un(op UnOp, x Expr) Expr { return UnExpr{Op: op, X: x} }

// Label names a lift-local or consumer-owned branch anchor. Labels are
// allocated fresh for every lift call and never cross calls.
type Label struct {
	ID    int
	Addr  uint32
	Known bool // owned by the consumer's resolver
}

func (l Label) String() string {
	if l.Known {
		return fmt.Sprintf("@%#x", l.Addr)
	}
	return fmt.Sprintf("L%d", l.ID)
}

// LabelResolver lets the lift consumer claim branch targets it already
// knows how to place; targets it does not claim are lowered through a
// fabricated local label.
type LabelResolver interface {
	LabelForAddress(addr uint32) (Label, bool)
}

type labelAlloc struct{ next int }

func (la *labelAlloc) fresh(addr uint32) Label {
	la.next++
	return Label{ID: la.next, Addr: addr}
}

// Op is one lifted IR operation.
type Op interface {
	isOp()
	String() string
}

// NopOp marks an instruction with no architectural effect.
type NopOp struct{}

// RegWriteOp commits Src to Dst and defines the flags named by Flags.
// The lifter never emits a RegWriteOp for r0.
type RegWriteOp struct {
	Dst   Register
	Src   Expr
	Flags FlagWriteType
}

// FlagUpdateOp defines flags from Src without committing a register,
// used by compares, bit tests and suppressed r0 writes.
type FlagUpdateOp struct {
	Src   Expr
	Flags FlagWriteType
}

// SetFlagOp assigns one flag explicitly, independent of any write tag.
type SetFlagOp struct {
	Flag Flag
	Val  Expr
}

type StoreOp struct {
	Size int
	Addr Expr
	Src  Expr
}

type PushOp struct{ Reg Register }

type PopOp struct{ Reg Register }

// JumpOp transfers control to a computed target.
type JumpOp struct{ Target Expr }

// GotoOp transfers control to a label.
type GotoOp struct{ Label Label }

// IfOp branches to True when Cond is non-zero, else to False.
type IfOp struct {
	Cond  Expr
	True  Label
	False Label
}

type LabelOp struct{ Label Label }

type CallOp struct{ Target Expr }

// RetOp returns; Target names the register holding the return address
// when one is architecturally visible.
type RetOp struct{ Target Expr }

// UnmodeledOp marks a decoded instruction whose semantics are not yet
// lowered. Length is known; callers treat this as "disassembled,
// semantics unknown".
type UnmodeledOp struct{ Mnemonic Mnemonic }

func (NopOp) isOp()        {}
func (RegWriteOp) isOp()   {}
func (FlagUpdateOp) isOp() {}
func (SetFlagOp) isOp()    {}
func (StoreOp) isOp()      {}
func (PushOp) isOp()       {}
func (PopOp) isOp()        {}
func (JumpOp) isOp()       {}
func (GotoOp) isOp()       {}
func (IfOp) isOp()         {}
func (LabelOp) isOp()      {}
func (CallOp) isOp()       {}
func (RetOp) isOp()        {}
func (UnmodeledOp) isOp()  {}

func (NopOp) String() string { return "nop" }

func (o RegWriteOp) String() string {
	if o.Flags != FlagsNone {
		return fmt.Sprintf("%s = %s {%s}", o.Dst, o.Src, o.Flags)
	}
	return fmt.Sprintf("%s = %s", o.Dst, o.Src)
}

func (o FlagUpdateOp) String() string {
	return fmt.Sprintf("flags(%s) = %s", o.Flags, o.Src)
}

func (o SetFlagOp) String() string {
	return fmt.Sprintf("flag.%s = %s", o.Flag, o.Val)
}

func (o StoreOp) String() string {
	return fmt.Sprintf("store.%d[%s] = %s", o.Size, o.Addr, o.Src)
}

func (o PushOp) String() string { return "push " + o.Reg.String() }

func (o PopOp) String() string { return "pop " + o.Reg.String() }

func (o JumpOp) String() string { return "jump " + o.Target.String() }

func (o GotoOp) String() string { return "goto " + o.Label.String() }

func (o IfOp) String() string {
	return fmt.Sprintf("if %s then %s else %s", o.Cond, o.True, o.False)
}

func (o LabelOp) String() string { return o.Label.String() + ":" }

func (o CallOp) String() string { return "call " + o.Target.String() }

func (o RetOp) String() string {
	if o.Target == nil {
		return "ret"
	}
	return "ret " + o.Target.String()
}

func (o UnmodeledOp) String() string {
	return "unmodeled " + o.Mnemonic.String()
}
