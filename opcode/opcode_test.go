package opcode_test

import (
	"testing"

	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/opcode"
)

func TestSetAndLookup(t *testing.T) {
	tbl := opcode.NewTable(ir.LangECL, 99)
	tbl.Set(5, "Sf")
	format, ok := tbl.Lookup(5)
	if !ok || format != "Sf" {
		t.Fatalf("Lookup(5) = %q, %v; want \"Sf\", true", format, ok)
	}
	if _, ok := tbl.Lookup(6); ok {
		t.Fatalf("Lookup(6) should miss on an empty table")
	}
}

func TestInheritFromIsAdditiveNotOverwriting(t *testing.T) {
	base := opcode.NewTable(ir.LangECL, 1)
	base.Set(1, "S")
	base.Set(2, "SS")

	derived := opcode.NewTable(ir.LangECL, 2)
	derived.Set(2, "SSS") // overridden by the newer version
	derived.Set(3, "f")
	derived.InheritFrom(base)

	if f, _ := derived.Lookup(1); f != "S" {
		t.Fatalf("inherited opcode 1 = %q, want \"S\"", f)
	}
	if f, _ := derived.Lookup(2); f != "SSS" {
		t.Fatalf("own definition of opcode 2 must win over inherited one, got %q", f)
	}
	if f, _ := derived.Lookup(3); f != "f" {
		t.Fatalf("own-only opcode 3 = %q, want \"f\"", f)
	}
}

func TestOpcodesReturnsSortedKeys(t *testing.T) {
	tbl := opcode.NewTable(ir.LangANM, 0)
	for _, op := range []uint16{30, 1, 15, 2} {
		tbl.Set(op, "")
	}
	got := tbl.Opcodes()
	want := []uint16{1, 2, 15, 30}
	if len(got) != len(want) {
		t.Fatalf("Opcodes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Opcodes() = %v, want %v", got, want)
		}
	}
}

func TestRegisteredECLMainlineTablesAreReachable(t *testing.T) {
	t10 := opcode.LookupTable(ir.LangECL, 10)
	if t10 == nil {
		t.Fatalf("expected a registered ECL v10 table")
	}
	if f, ok := t10.Lookup(12); !ok || f != "oS" {
		t.Fatalf("ECL v10 opcode 12 = %q, %v; want \"oS\", true", f, ok)
	}

	t11 := opcode.LookupTable(ir.LangECL, 11)
	if t11 == nil {
		t.Fatalf("expected a registered ECL v11 table")
	}
	if f, ok := t11.Lookup(12); !ok || f != "oS" {
		t.Fatalf("ECL v11 should inherit opcode 12 from v10, got %q, %v", f, ok)
	}
	if f, ok := t11.Lookup(275); !ok || f != "fS" {
		t.Fatalf("ECL v11 own opcode 275 = %q, %v; want \"fS\", true", f, ok)
	}
}

func TestRegisteredECLLegacyTableInheritsForward(t *testing.T) {
	t9 := opcode.LookupTable(ir.LangECL, 9)
	if t9 == nil {
		t.Fatalf("expected a registered ECL v9 table")
	}
	if f, ok := t9.Lookup(67); !ok || f != "ssSSffffS" {
		t.Fatalf("ECL v9 opcode 67 = %q, %v; want \"ssSSffffS\", true", f, ok)
	}
}

func TestRegisteredANMTablesDiffer(t *testing.T) {
	v0 := opcode.LookupTable(ir.LangANM, 0)
	v2 := opcode.LookupTable(ir.LangANM, 2)
	if v0 == nil || v2 == nil {
		t.Fatalf("expected registered ANM v0 and v2 tables")
	}
	if f, ok := v0.Lookup(5); !ok || f != "o" {
		t.Fatalf("ANM v0 opcode 5 = %q, %v; want \"o\", true", f, ok)
	}
	if f, ok := v2.Lookup(5); !ok || f != "Sot" {
		t.Fatalf("ANM v2 opcode 5 = %q, %v; want \"Sot\", true", f, ok)
	}
	if f, ok := v2.Lookup(32); !ok || f != "SSfff" {
		t.Fatalf("ANM v2 opcode 32 = %q, %v; want \"SSfff\", true", f, ok)
	}
}

func TestUnknownOpcodeMisses(t *testing.T) {
	t10 := opcode.LookupTable(ir.LangECL, 10)
	if _, ok := t10.Lookup(9999); ok {
		t.Fatalf("opcode 9999 should be unregistered")
	}
}
