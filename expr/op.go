// Package expr implements the ANM expression compiler (spec.md §4.9): a
// small arithmetic sublanguage lowered to stack-register bytecode
// instructions with constant folding and short/normal opcode selection.
package expr

import "github.com/danmaku-tools/dmktk/value"

// Symbol identifies an operator independent of its per-version opcode.
type Symbol int

const (
	AssignOp Symbol = iota
	Add
	Subtract
	Multiply
	Divide
	Modulo
	Rand
	Sin
	Cos
	Tan
	Acos
	Atan
)

// Shape classifies an operator's arity/commutativity, which governs
// whether a short (two-address) opcode form can ever apply.
type Shape int

const (
	ShapeAssign         Shape = iota // unary: target := value
	ShapeBinaryCommut                // a OP b == b OP a; short form usable with either operand as out
	ShapeBinaryNonCommut             // short form only usable when out == the first operand
	ShapeUnary                       // one operand, no short form
)

// idPair is the (normal, short) opcode pair for one (operator, type).
// -1 means "no such opcode for this version/type".
type idPair struct {
	Normal int
	Short  int
}

// Operation is one operator's entry in a version's table.
type Operation struct {
	Symbol Symbol
	Shape  Shape
	IDS    idPair // TagS32 operands
	IDF    idPair // TagFloat operands
}

// idsFor returns the (normal, short) pair for the operand type t, or
// (-1, -1) if t is neither int nor float.
func (op Operation) idsFor(t value.Tag) idPair {
	if t == value.TagFloat {
		return op.IDF
	}
	return op.IDS
}

// opTableFor returns the operator table for an ANM version, or nil if no
// table is known (version 0 has no variables and so no operators, per
// original_source/thanm/expr.c's own comment).
func opTableFor(version int) []Operation {
	switch version {
	case 2, 3:
		return opsV2V3
	case 4, 7:
		return opsV4V7
	case 8:
		return opsV8
	default:
		return nil
	}
}

// Lookup finds the operation entry for symbol in version's table.
func Lookup(symbol Symbol, version int) (Operation, bool) {
	for _, op := range opTableFor(version) {
		if op.Symbol == symbol {
			return op, true
		}
	}
	return Operation{}, false
}

var opsV2V3 = []Operation{
	{Symbol: AssignOp, Shape: ShapeAssign, IDS: idPair{37, -1}, IDF: idPair{38, -1}},
	{Symbol: Add, Shape: ShapeBinaryCommut, IDS: idPair{49, 39}, IDF: idPair{50, 40}},
	{Symbol: Subtract, Shape: ShapeBinaryNonCommut, IDS: idPair{51, 41}, IDF: idPair{52, 42}},
	{Symbol: Multiply, Shape: ShapeBinaryCommut, IDS: idPair{53, 43}, IDF: idPair{54, 44}},
	{Symbol: Divide, Shape: ShapeBinaryNonCommut, IDS: idPair{55, 45}, IDF: idPair{56, 46}},
	{Symbol: Modulo, Shape: ShapeBinaryNonCommut, IDS: idPair{57, 47}, IDF: idPair{58, 48}},
	{Symbol: Rand, Shape: ShapeUnary, IDS: idPair{59, -1}, IDF: idPair{60, -1}},
	{Symbol: Sin, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{61, -1}},
	{Symbol: Cos, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{62, -1}},
	{Symbol: Tan, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{63, -1}},
	{Symbol: Acos, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{64, -1}},
	{Symbol: Atan, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{65, -1}},
}

var opsV4V7 = []Operation{
	{Symbol: AssignOp, Shape: ShapeAssign, IDS: idPair{6, -1}, IDF: idPair{7, -1}},
	{Symbol: Add, Shape: ShapeBinaryCommut, IDS: idPair{18, 8}, IDF: idPair{19, 9}},
	{Symbol: Subtract, Shape: ShapeBinaryNonCommut, IDS: idPair{20, 10}, IDF: idPair{21, 11}},
	{Symbol: Multiply, Shape: ShapeBinaryCommut, IDS: idPair{22, 12}, IDF: idPair{23, 13}},
	{Symbol: Divide, Shape: ShapeBinaryNonCommut, IDS: idPair{24, 14}, IDF: idPair{25, 15}},
	{Symbol: Modulo, Shape: ShapeBinaryNonCommut, IDS: idPair{26, 16}, IDF: idPair{27, 17}},
	{Symbol: Rand, Shape: ShapeUnary, IDS: idPair{40, -1}, IDF: idPair{41, -1}},
	{Symbol: Sin, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{42, -1}},
	{Symbol: Cos, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{43, -1}},
	{Symbol: Tan, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{44, -1}},
	{Symbol: Acos, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{45, -1}},
	{Symbol: Atan, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{46, -1}},
}

var opsV8 = []Operation{
	{Symbol: AssignOp, Shape: ShapeAssign, IDS: idPair{100, -1}, IDF: idPair{101, -1}},
	{Symbol: Add, Shape: ShapeBinaryCommut, IDS: idPair{112, 102}, IDF: idPair{113, 103}},
	{Symbol: Subtract, Shape: ShapeBinaryNonCommut, IDS: idPair{114, 104}, IDF: idPair{115, 105}},
	{Symbol: Multiply, Shape: ShapeBinaryCommut, IDS: idPair{116, 106}, IDF: idPair{117, 107}},
	{Symbol: Divide, Shape: ShapeBinaryNonCommut, IDS: idPair{118, 108}, IDF: idPair{119, 109}},
	{Symbol: Modulo, Shape: ShapeBinaryNonCommut, IDS: idPair{120, 110}, IDF: idPair{121, 111}},
	{Symbol: Rand, Shape: ShapeUnary, IDS: idPair{122, -1}, IDF: idPair{123, -1}},
	{Symbol: Sin, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{124, -1}},
	{Symbol: Cos, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{125, -1}},
	{Symbol: Tan, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{127, -1}},
	{Symbol: Acos, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{128, -1}},
	{Symbol: Atan, Shape: ShapeUnary, IDS: idPair{-1, -1}, IDF: idPair{129, -1}},
}
