package expr

import (
	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/reg"
	"github.com/danmaku-tools/dmktk/value"
)

// Status is an expression-lowering outcome (spec.md §4.9's state machine).
// Any value other than Success aborts the enclosing statement; the
// assembler logs it and continues with the next statement.
type Status int

const (
	Success Status = iota
	BadTypes
	BadLValue
	NoInstruction
	NoScript
	RegisterFull
	DivideByZero
)

func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case BadTypes:
		return "BadTypes"
	case BadLValue:
		return "BadLValue"
	case NoInstruction:
		return "NoInstruction"
	case NoScript:
		return "NoScript"
	case RegisterFull:
		return "RegisterFull"
	case DivideByZero:
		return "DivideByZero"
	default:
		return "Unknown"
	}
}

// Kind distinguishes an AST node's shape.
type Kind int

const (
	KindVal Kind = iota
	KindOp
	KindAssign
)

// Node is one node of the expression AST (spec.md §4.9: `Val(param) |
// Op(operator, children) | Assign(lvalue_reg, rhs)`).
type Node struct {
	Kind Kind

	// KindVal
	Type  value.Tag // TagS32 or TagFloat
	Int   int64
	Float float64
	Reg   *reg.Register // non-nil when this value is a register reference rather than a literal

	// KindOp, KindAssign
	Symbol   Symbol
	Children []*Node
}

// Val returns a literal KindVal node.
func Val(t value.Tag, i int64, f float64) *Node {
	return &Node{Kind: KindVal, Type: t, Int: i, Float: f}
}

// ValReg returns a KindVal node referencing a register.
func ValReg(r *reg.Register) *Node {
	t := r.Type
	return &Node{Kind: KindVal, Type: t, Reg: r}
}

// Op returns a KindOp node.
func Op(symbol Symbol, children ...*Node) *Node {
	return &Node{Kind: KindOp, Symbol: symbol, Children: children}
}

// Assign returns a KindAssign node: target must be a KindVal register
// reference.
func Assign(target, rhs *Node) *Node {
	return &Node{Kind: KindAssign, Symbol: Symbol(0), Children: []*Node{target, rhs}}
}

// usesReg reports whether n reads r anywhere in its subtree.
func usesReg(n *Node, r *reg.Register) bool {
	if n.Kind == KindVal {
		return n.Reg == r
	}
	for _, c := range n.Children {
		if usesReg(c, r) {
			return true
		}
	}
	return false
}

// fold attempts compile-time constant evaluation of n (spec.md §4.9 step
// 3): if every child is a non-register KindVal of matching type, evaluate
// the arithmetic operator now and replace n with the result, in place.
// Returns DivideByZero if a constant division/modulo by zero is detected;
// Success otherwise (whether or not folding actually happened — check
// n.Kind == KindVal after the call to tell).
func fold(n *Node) Status {
	if n.Kind != KindOp {
		return Success
	}

	for _, c := range n.Children {
		if c.Kind != KindVal || c.Reg != nil {
			return Success
		}
	}
	if len(n.Children) == 0 {
		return Success
	}
	t := n.Children[0].Type
	for _, c := range n.Children[1:] {
		if c.Type != t {
			return Success
		}
	}

	var a, b *Node
	a = n.Children[0]
	if len(n.Children) > 1 {
		b = n.Children[1]
	}

	var resInt int64
	var resFloat float64
	switch n.Symbol {
	case Add:
		if b == nil {
			return Success
		}
		if t == value.TagS32 {
			resInt = a.Int + b.Int
		} else {
			resFloat = a.Float + b.Float
		}
	case Subtract:
		if b == nil {
			return Success
		}
		if t == value.TagS32 {
			resInt = a.Int - b.Int
		} else {
			resFloat = a.Float - b.Float
		}
	case Multiply:
		if b == nil {
			return Success
		}
		if t == value.TagS32 {
			resInt = a.Int * b.Int
		} else {
			resFloat = a.Float * b.Float
		}
	case Divide:
		if b == nil {
			return Success
		}
		if t == value.TagS32 {
			if b.Int == 0 {
				return DivideByZero
			}
			resInt = a.Int / b.Int
		} else {
			if b.Float == 0 {
				return DivideByZero
			}
			resFloat = a.Float / b.Float
		}
	case Modulo:
		if b == nil {
			return Success
		}
		if t == value.TagS32 {
			if b.Int == 0 {
				return DivideByZero
			}
			resInt = a.Int % b.Int
		} else {
			if b.Float == 0 {
				return DivideByZero
			}
			resFloat = mod32(a.Float, b.Float)
		}
	default:
		// Rand is never evaluable; Sin/Cos/Tan/Acos/Atan take a single
		// float operand whose evaluation the original compiler leaves to
		// the runtime too (no unary-math folding observed in expr.c).
		return Success
	}

	n.Kind = KindVal
	n.Children = nil
	n.Type = t
	n.Int = resInt
	n.Float = resFloat
	return Success
}

func mod32(a, b float64) float64 {
	q := float64(int64(a / b))
	return a - q*b
}

// Emitted is one lowered instruction: an opcode id plus parameter nodes
// (destination first, matching expr_output's param list).
type Emitted struct {
	Opcode int
	Params []*Node
}

// Lowerer lowers an expression AST to a flat instruction list against one
// sub-program's register file, following spec.md §4.9's recursive
// algorithm.
type Lowerer struct {
	Version int
	Regs    *reg.File
	Insns   []Emitted
}

// NewLowerer returns a Lowerer bound to a version's operator table and
// register file.
func NewLowerer(version int, regs *reg.File) *Lowerer {
	return &Lowerer{Version: version, Regs: regs}
}

// Lower lowers n, writing instructions to l.Insns, and returns the node n
// reduces to (always a KindVal on Success) plus the outcome status.
func (l *Lowerer) Lower(n *Node, out *reg.Register) (*Node, Status) {
	if n.Kind == KindVal {
		return n, Success
	}

	var target *reg.Register
	if n.Kind == KindAssign {
		target = n.Children[0].Reg
		if _, ok := Lookup(AssignOp, l.Version); !ok {
			return nil, NoInstruction
		}
		if target != nil && !usesReg(n.Children[1], target) {
			out = target
		} else {
			out = nil
		}
	}

	// Lower each child; only the first may inherit out.
	childOut := out
	for i, c := range n.Children {
		if n.Kind == KindAssign && i == 0 {
			continue // the assignment target is never itself lowered
		}
		if c.Kind != KindVal {
			lowered, status := l.Lower(c, childOut)
			if status != Success {
				return nil, status
			}
			n.Children[i] = lowered
		}
		childOut = nil
	}

	// Type check across children (skipping the assign target, which is
	// checked separately below).
	checkChildren := n.Children
	if n.Kind == KindAssign {
		checkChildren = n.Children[1:]
	}
	var t value.Tag
	for _, c := range checkChildren {
		if t == 0 {
			t = c.Type
		} else if c.Type != t {
			return nil, BadTypes
		}
	}
	if out != nil && out.Type != t {
		return nil, BadTypes
	}

	symbol := n.Symbol
	if n.Kind == KindAssign {
		// Fold the assignment's RHS like any other operator expression.
		if status := fold(n.Children[1]); status != Success {
			return nil, status
		}
		if n.Children[1].Kind == KindVal && target == nil {
			return nil, BadLValue
		}
	} else {
		if status := fold(n); status != Success {
			return nil, status
		}
		if n.Kind == KindVal {
			return n, Success
		}
	}

	if l.Regs == nil {
		return nil, NoScript
	}

	if out == nil {
		if n.Kind == KindAssign {
			if target == nil {
				return nil, BadLValue
			}
			out = target
		} else {
			out = l.firstExprTempChild(n)
			if out == nil {
				out = l.Regs.Acquire(reg.PurposeExpr, t)
				if out == nil {
					return nil, RegisterFull
				}
			}
		}
	}

	op, ok := Lookup(symbol, l.Version)
	if n.Kind == KindAssign {
		op, ok = Lookup(AssignOp, l.Version)
	}
	if !ok {
		return nil, NoInstruction
	}

	ids := op.idsFor(t)
	useShort, ignore := l.selectShort(n, op, out, ids)
	id := ids.Normal
	if useShort {
		id = ids.Short
	}
	if id < 0 {
		return nil, NoInstruction
	}

	rhs := n.Children
	if n.Kind == KindAssign {
		rhs = n.Children[1:]
	}
	params := []*Node{ValReg(out)}
	for _, c := range rhs {
		if c == ignore {
			continue
		}
		params = append(params, c)
	}

	// Guard against emitting a no-op like iset(x, x): only suppressed when
	// the assignment's RHS is itself exactly the out register (spec.md
	// §4.9's failsafe for EXPR_ASSIGN+OP_ASSIGN).
	skipEmit := false
	if n.Kind == KindAssign && op.Shape == ShapeAssign && len(rhs) > 0 {
		last := rhs[len(rhs)-1]
		skipEmit = last.Reg == out && out != nil
	}
	if !skipEmit {
		l.Insns = append(l.Insns, Emitted{Opcode: id, Params: params})
	}

	for _, c := range rhs {
		if c.Reg != nil && c.Reg.Lock == reg.LockExprTemp && c.Reg != out {
			reg.Release(c.Reg)
		}
	}

	return ValReg(out), Success
}

// firstExprTempChild finds a child value already holding an ExprTemp
// register, so the result can reuse it instead of acquiring a new one
// (spec.md §4.9 step 5's "free temporaries... unless reused as out").
func (l *Lowerer) firstExprTempChild(n *Node) *reg.Register {
	for _, c := range n.Children {
		if c.Kind == KindVal && c.Reg != nil && c.Reg.Lock == reg.LockExprTemp {
			return c.Reg
		}
	}
	return nil
}

// selectShort decides whether the short two-address opcode form applies:
// the chosen out register must already be one of the operands (any
// operand for a commutative operator, only the first for a non-commutative
// one). Returns the child to omit from the emitted parameter list when the
// short form is used.
func (l *Lowerer) selectShort(n *Node, op Operation, out *reg.Register, ids idPair) (bool, *Node) {
	if ids.Short < 0 || op.Shape == ShapeUnary || op.Shape == ShapeAssign {
		return false, nil
	}
	rhs := n.Children
	if n.Kind == KindAssign {
		rhs = n.Children[1:]
	}
	for i, c := range rhs {
		if c.Reg == out {
			if i == 0 || op.Shape == ShapeBinaryCommut {
				return true, c
			}
		}
	}
	return false, nil
}

// ToParam converts a lowered value node into an ir.Param ready for
// instruction assembly.
func ToParam(n *Node) ir.Param {
	if n.Reg != nil {
		tag := byte(value.TagS32)
		if n.Reg.Type == value.TagFloat {
			tag = byte(value.TagFloat)
		}
		return ir.Param{Tag: tag, Int: int64(n.Reg.ID), IsStackRef: true}
	}
	if n.Type == value.TagFloat {
		return ir.Param{Tag: byte(value.TagFloat), Float: n.Float}
	}
	return ir.Param{Tag: byte(value.TagS32), Int: n.Int}
}
