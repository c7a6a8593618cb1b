package ir_test

import (
	"testing"

	"github.com/danmaku-tools/dmktk/ir"
)

func TestSubAddInstructionAndLabel(t *testing.T) {
	sub := ir.NewSub("main")
	i0 := sub.AddInstruction(&ir.Instruction{Opcode: 1})
	labelIdx := sub.AddLabel("loop")
	i1 := sub.AddInstruction(&ir.Instruction{Opcode: 2})

	if i0 != 0 || labelIdx != 1 || i1 != 2 {
		t.Fatalf("unexpected node indices: %d %d %d", i0, labelIdx, i1)
	}
	if sub.Labels["loop"] != 1 {
		t.Fatalf("label table entry = %d, want 1", sub.Labels["loop"])
	}
	if sub.Nodes[1].Kind != ir.NodeLabel {
		t.Fatalf("node 1 kind = %v, want NodeLabel", sub.Nodes[1].Kind)
	}
}

func TestSubInstructionsSkipsLabelsAndMarkers(t *testing.T) {
	sub := ir.NewSub("main")
	sub.AddInstruction(&ir.Instruction{Opcode: 1})
	sub.AddLabel("skip")
	sub.Nodes = append(sub.Nodes, ir.Node{Kind: ir.NodeTimeMarker, MarkerTime: 30})
	sub.AddInstruction(&ir.Instruction{Opcode: 2})

	got := sub.Instructions()
	if len(got) != 2 || got[0].Opcode != 1 || got[1].Opcode != 2 {
		t.Fatalf("Instructions() = %+v, want opcodes [1 2]", got)
	}
}

func TestLanguageString(t *testing.T) {
	if ir.LangECL.String() != "ECL" {
		t.Fatalf("LangECL.String() = %q, want ECL", ir.LangECL.String())
	}
	if ir.LangANM.String() != "ANM" {
		t.Fatalf("LangANM.String() = %q, want ANM", ir.LangANM.String())
	}
}

func TestAnmEntryHasDataDistinguishesSharedPixelBlobs(t *testing.T) {
	blob := &ir.PixelBlob{Format: 1, Width: 64, Height: 64, Size: 4096}
	owner := &ir.AnmEntry{Name: "sprite0", Pixels: blob, HasData: true}
	sharer := &ir.AnmEntry{Name: "sprite1", Pixels: blob, HasData: false}

	if !owner.HasData {
		t.Fatalf("owner entry should have HasData true")
	}
	if sharer.HasData {
		t.Fatalf("sharing entry should have HasData false")
	}
	if sharer.Pixels != owner.Pixels {
		t.Fatalf("sharing entry should point at the same PixelBlob instance")
	}
}
