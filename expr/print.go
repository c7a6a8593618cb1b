package expr

import (
	"fmt"
	"strconv"

	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/value"
)

// reverseOp finds the operator table entry whose normal or short opcode
// id matches opcode for the given type and version, the inverse of
// Operation.idsFor used by the assembler side.
func reverseOp(version int, t value.Tag, opcode uint16) (Operation, bool, bool) {
	for _, op := range opTableFor(version) {
		ids := op.idsFor(t)
		if ids.Normal == int(opcode) {
			return op, false, true
		}
		if ids.Short == int(opcode) {
			return op, true, true
		}
	}
	return Operation{}, false, false
}

func symbolText(s Symbol) string {
	switch s {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Modulo:
		return "%"
	case Rand:
		return "rand"
	case Sin:
		return "sin"
	case Cos:
		return "cos"
	case Tan:
		return "tan"
	case Acos:
		return "acos"
	case Atan:
		return "atan"
	default:
		return "="
	}
}

func paramText(p ir.Param) string {
	if p.IsStackRef {
		return "$" + strconv.FormatInt(p.Int, 10)
	}
	v := value.Value{Tag: value.Tag(p.Tag), Int: p.Int, Float: p.Float, Str: p.Str, Blob: p.Blob, CastType: p.CastType, CastValue: p.CastValue}
	return value.ToText(v)
}

// Pretty renders one instruction stream as infix-folded text where
// possible (spec.md §4.6/§4.7 step 4: "collapse sequences of
// expression-push instructions followed by an operator instruction into
// an infix expression"). It tracks, for each register id, the text of
// the expression most recently written into it; when an operator
// instruction's register operands were each themselves defined by a
// still-unconsumed substitution, their text is inlined rather than
// printed as a bare register reference. Any instruction that isn't a
// recognised operator for version falls back to its raw ins_<opcode>(...)
// form, and any substituted register's definition line is dropped from
// the output since its value now appears inline at the use site.
//
// This is a best-effort textual convenience, not parsed back by the
// assembler: round-tripping a pretty-printed script requires disabling
// pretty-printing first (spec.md §8's raw-mode round trip).
func Pretty(insns []*ir.Instruction, version int) []string {
	defText := make(map[int64]string)
	definedAt := make(map[int64]int) // register id -> index of its defining line in out, for suppression
	var out []string

	for _, inst := range insns {
		op, isShort, matched := matchOperator(inst, version)
		if !matched || len(inst.Params) == 0 || !inst.Params[0].IsStackRef {
			out = append(out, rawText(inst))
			continue
		}

		dst := inst.Params[0].Int
		operands := inst.Params[1:]
		texts := make([]string, 0, len(operands)+1)

		if isShort {
			// The short form's destination also serves as the first
			// operand; substitute its own prior definition if one exists.
			if t, ok := defText[dst]; ok {
				texts = append(texts, t)
				delete(defText, dst)
				if idx, ok := definedAt[dst]; ok {
					out[idx] = "" // suppress the now-inlined definition line
					delete(definedAt, dst)
				}
			} else {
				texts = append(texts, "$"+strconv.FormatInt(dst, 10))
			}
		}
		for _, p := range operands {
			if p.IsStackRef {
				if t, ok := defText[p.Int]; ok {
					texts = append(texts, t)
					delete(defText, p.Int)
					if idx, ok := definedAt[p.Int]; ok {
						out[idx] = "" // suppress the now-inlined definition line
						delete(definedAt, p.Int)
					}
					continue
				}
			}
			texts = append(texts, paramText(p))
		}

		var expr string
		if op.Shape == ShapeAssign {
			expr = texts[0]
		} else if op.Shape == ShapeUnary {
			expr = fmt.Sprintf("%s(%s)", symbolText(op.Symbol), texts[0])
		} else if len(texts) == 2 {
			expr = fmt.Sprintf("(%s %s %s)", texts[0], symbolText(op.Symbol), texts[1])
		} else {
			expr = fmt.Sprintf("%s(%s)", symbolText(op.Symbol), joinComma(texts))
		}

		line := fmt.Sprintf("$%d = %s;", dst, expr)
		defText[dst] = expr
		definedAt[dst] = len(out)
		out = append(out, line)
	}

	filtered := out[:0]
	for _, l := range out {
		if l != "" {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

func matchOperator(inst *ir.Instruction, version int) (Operation, bool, bool) {
	if len(inst.Params) == 0 {
		return Operation{}, false, false
	}
	t := value.TagS32
	if value.Tag(inst.Params[0].Tag) == value.TagFloat {
		t = value.TagFloat
	}
	return reverseOp(version, t, inst.Opcode)
}

func rawText(inst *ir.Instruction) string {
	texts := make([]string, 0, len(inst.Params))
	for _, p := range inst.Params {
		if p.IsStackRef {
			texts = append(texts, "$"+strconv.FormatInt(p.Int, 10))
			continue
		}
		texts = append(texts, paramText(p))
	}
	return fmt.Sprintf("ins_%d(%s);", inst.Opcode, joinComma(texts))
}

func joinComma(texts []string) string {
	var out string
	for i, t := range texts {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}
