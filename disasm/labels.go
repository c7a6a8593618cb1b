package disasm

import (
	"fmt"

	"github.com/danmaku-tools/dmktk/ir"
)

// insertLabels walks every instruction's 'o'-typed parameter and inserts a
// label node immediately before the instruction whose Offset matches the
// target, or appends one after the last instruction when the target is
// the sub-program's end offset (spec.md §4.6 step 2). Label names are
// synthetic (`off_<hex>`) since the binary carries no names for them; the
// textual printer and a later re-assembly only need the name to be
// unique and stable for one disassembly pass.
func insertLabels(sub *ir.Sub) {
	targets := map[uint32]bool{}
	for i := range sub.Nodes {
		if sub.Nodes[i].Kind != ir.NodeInstruction {
			continue
		}
		inst := sub.Nodes[i].Instruction
		for _, p := range inst.Params {
			if p.Tag == 'o' {
				targets[uint32(int64(inst.Offset)+p.Int)] = true
			}
		}
	}
	if len(targets) == 0 {
		return
	}

	endOffset := uint32(0)
	if n := len(sub.Nodes); n > 0 {
		for i := n - 1; i >= 0; i-- {
			if sub.Nodes[i].Kind == ir.NodeInstruction {
				inst := sub.Nodes[i].Instruction
				endOffset = inst.Offset + uint32(inst.Size)
				break
			}
		}
	}

	out := make([]ir.Node, 0, len(sub.Nodes)+len(targets))
	placed := map[uint32]bool{}
	for i := range sub.Nodes {
		if sub.Nodes[i].Kind == ir.NodeInstruction {
			off := sub.Nodes[i].Instruction.Offset
			if targets[off] && !placed[off] {
				out = append(out, labelNode(off))
				placed[off] = true
			}
		}
		out = append(out, sub.Nodes[i])
	}
	if targets[endOffset] && !placed[endOffset] {
		out = append(out, labelNode(endOffset))
		placed[endOffset] = true
	}

	sub.Nodes = out
	sub.Labels = make(map[string]int, len(placed))
	for i := range sub.Nodes {
		if sub.Nodes[i].Kind == ir.NodeLabel {
			sub.Labels[sub.Nodes[i].LabelName] = i
		}
	}
}

func labelNode(offset uint32) ir.Node {
	return ir.Node{Kind: ir.NodeLabel, LabelName: fmt.Sprintf("off_%x", offset)}
}
