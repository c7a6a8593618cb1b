package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/mnemonic"
	"github.com/danmaku-tools/dmktk/value"
)

// Print renders sub back to the textual statement form Parser accepts
// (spec.md §8 scenarios 4 and 6: assemble, disassemble, print, reparse,
// reassemble must reproduce identical bytes). mnemonics is optional; when
// nil, or when it has no name for a given opcode, the instruction falls
// back to the literal "ins_<n>" form buildInstruction already understands.
//
// An 'o'-tagged parameter is never printed as its raw relative offset:
// Print resolves it against sub's label table and emits the label name
// instead, since re-parsing a raw number back through buildParam would
// read it as a literal rather than a reference and the label's intent
// would be lost on the next assembly pass.
func Print(sub *ir.Sub, mnemonics *mnemonic.Map) string {
	offsets := labelOffsets(sub)

	var sb strings.Builder
	var curTime int32
	for _, n := range sub.Nodes {
		switch n.Kind {
		case ir.NodeLabel:
			sb.WriteString(n.LabelName)
			sb.WriteString(":\n")

		case ir.NodeTimeMarker:
			// MarkerTime is the time in effect after the marker; a relative
			// marker prints its step from the previous marker's time.
			t := n.MarkerTime
			if n.Relative {
				sb.WriteByte('+')
				t -= curTime
			}
			sb.WriteString(strconv.FormatInt(int64(t), 10))
			sb.WriteString(":\n")
			curTime = n.MarkerTime

		case ir.NodeRankMarker:
			sb.WriteString(rankMaskText(n.MarkerRank))
			sb.WriteByte('\n')

		case ir.NodeInstruction:
			sb.WriteString(instructionText(n.Instruction, offsets, mnemonics))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// labelOffsets maps a sub-program's byte offsets to the label bound
// immediately before the instruction at that offset, including a label
// trailing the last instruction (sub.AddLabel/insertLabels both bind a
// label to "the next real instruction", so the label belonging to an
// offset is whichever one was seen since the previous instruction node).
func labelOffsets(sub *ir.Sub) map[uint32]string {
	offsets := make(map[uint32]string)
	pending := ""
	var end uint32
	for _, n := range sub.Nodes {
		switch n.Kind {
		case ir.NodeLabel:
			pending = n.LabelName
		case ir.NodeInstruction:
			if pending != "" {
				offsets[n.Instruction.Offset] = pending
				pending = ""
			}
			end = n.Instruction.Offset + uint32(n.Instruction.Size)
		}
	}
	if pending != "" {
		offsets[end] = pending
	}
	return offsets
}

// rankMaskText reconstructs a "!ENHL"-style mask from its bitfield, the
// inverse of parseRankMask. A mask of 0xff (every bit set, the "applies
// everywhere" default) prints as the bare "!" Parser's lexer still
// tokenizes as an empty TokenRankMask.
func rankMaskText(mask uint8) string {
	if mask == 0xff {
		return "!"
	}
	var sb strings.Builder
	sb.WriteByte('!')
	for _, letter := range []byte{'E', 'N', 'H', 'L', 'W', 'X', 'Y', 'Z'} {
		if mask&rankLetterBits[letter] != 0 {
			sb.WriteByte(letter)
		}
	}
	return sb.String()
}

func instructionText(inst *ir.Instruction, offsets map[uint32]string, mnemonics *mnemonic.Map) string {
	name := fmt.Sprintf("ins_%d", inst.Opcode)
	if mnemonics != nil {
		if n, ok := mnemonics.InsName(int(inst.Opcode)); ok {
			name = n
		}
	}

	args := make([]string, 0, len(inst.Params))
	for _, p := range inst.Params {
		args = append(args, paramText(p, inst, offsets))
	}
	return fmt.Sprintf("%s(%s);", name, strings.Join(args, ", "))
}

// paramText renders one parameter, special-casing stack references (the
// raw "[N]" form Parser's ArgRawStackRef accepts) and 'o' offsets
// (resolved against offsets rather than printed as a raw relative
// number).
func paramText(p ir.Param, inst *ir.Instruction, offsets map[uint32]string) string {
	if p.IsStackRef {
		return "[" + strconv.FormatInt(p.Int, 10) + "]"
	}
	if value.Tag(p.Tag) == value.TagOffset {
		target := uint32(int64(inst.Offset) + p.Int)
		if name, ok := offsets[target]; ok {
			return name
		}
	}
	v := value.Value{Tag: value.Tag(p.Tag), Int: p.Int, Float: p.Float, Str: p.Str, Blob: p.Blob, CastType: p.CastType, CastValue: p.CastValue}
	return value.ToText(v)
}
