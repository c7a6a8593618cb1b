package disasm

import (
	"testing"

	"github.com/danmaku-tools/dmktk/ir"
)

func TestInsertLabelsPlacesLabelBeforeTarget(t *testing.T) {
	sub := ir.NewSub("")
	sub.AddInstruction(&ir.Instruction{Offset: 0, Size: 10, Params: []ir.Param{{Tag: 'o', Int: 10}}})
	sub.AddInstruction(&ir.Instruction{Offset: 10, Size: 5})

	insertLabels(sub)

	if len(sub.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3 (2 instructions + 1 label)", len(sub.Nodes))
	}
	if sub.Nodes[1].Kind != ir.NodeLabel {
		t.Fatalf("expected a label node immediately before the offset-10 instruction, got node kind %v", sub.Nodes[1].Kind)
	}
	if sub.Nodes[2].Instruction.Offset != 10 {
		t.Fatalf("label was not placed directly before its target instruction")
	}
	if _, ok := sub.Labels[sub.Nodes[1].LabelName]; !ok {
		t.Fatalf("label name not recorded in sub.Labels")
	}
}

func TestInsertLabelsAppendsLabelAtEndOfSub(t *testing.T) {
	sub := ir.NewSub("")
	// Jump target equals end-of-sub offset (10+5=15), past the last instruction.
	sub.AddInstruction(&ir.Instruction{Offset: 0, Size: 10, Params: []ir.Param{{Tag: 'o', Int: 15}}})
	sub.AddInstruction(&ir.Instruction{Offset: 10, Size: 5})

	insertLabels(sub)

	last := sub.Nodes[len(sub.Nodes)-1]
	if last.Kind != ir.NodeLabel {
		t.Fatalf("expected the end-of-sub label to be the final node, got kind %v", last.Kind)
	}
}

func TestInsertLabelsNoOffsetParamsLeavesSubUnchanged(t *testing.T) {
	sub := ir.NewSub("")
	sub.AddInstruction(&ir.Instruction{Offset: 0, Size: 4, Params: []ir.Param{{Tag: 'S', Int: 1}}})

	insertLabels(sub)

	if len(sub.Nodes) != 1 {
		t.Fatalf("expected no labels inserted when no instruction has an 'o' parameter")
	}
}

func TestInsertLabelsDedupesSharedTarget(t *testing.T) {
	sub := ir.NewSub("")
	sub.AddInstruction(&ir.Instruction{Offset: 0, Size: 10, Params: []ir.Param{{Tag: 'o', Int: 10}}})
	sub.AddInstruction(&ir.Instruction{Offset: 10, Size: 10, Params: []ir.Param{{Tag: 'o', Int: 0}}})

	insertLabels(sub)

	labelCount := 0
	for _, n := range sub.Nodes {
		if n.Kind == ir.NodeLabel {
			labelCount++
		}
	}
	// Both 'o' params are relative: 0+10 and 10+0 both target offset 10.
	if labelCount != 1 {
		t.Fatalf("got %d labels, want exactly 1 (both jumps share target offset 10)", labelCount)
	}
}
