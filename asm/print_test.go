package asm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/danmaku-tools/dmktk/asm"
	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/mnemonic"
	"github.com/danmaku-tools/dmktk/opcode"
)

func buildFrom(t *testing.T, tbl *opcode.Table, source string) *ir.Sub {
	t.Helper()
	stmts := parseOne(t, source)
	b := asm.NewBuilder(asm.DialectECLMainline, tbl, nil)
	sub := b.Build("main", stmts)
	if b.Errors().HasErrors() {
		t.Fatalf("unexpected build errors: %v", b.Errors())
	}
	return sub
}

func TestPrintLabelJumpReassemblesToIdenticalBytes(t *testing.T) {
	tbl := opcode.NewTable(ir.LangECL, 10)
	tbl.Set(1, "S")
	tbl.Set(12, "o")

	sub := buildFrom(t, tbl, `
ins_12(target);
ins_1(0);
target:
ins_1(1);
`)
	want, err := asm.Serialize(sub, asm.DialectECLMainline)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	text := asm.Print(sub, nil)

	stmts2 := parseOne(t, text)
	b2 := asm.NewBuilder(asm.DialectECLMainline, tbl, nil)
	sub2 := b2.Build("main", stmts2)
	if b2.Errors().HasErrors() {
		t.Fatalf("unexpected build errors reparsing printed text %q: %v", text, b2.Errors())
	}
	got, err := asm.Serialize(sub2, asm.DialectECLMainline)
	if err != nil {
		t.Fatalf("Serialize (reparsed): %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch\n printed: %s\n got:  % x\n want: % x", text, got, want)
	}
}

func TestPrintTimeAndRankMarkersReassembleIdentically(t *testing.T) {
	tbl := opcode.NewTable(ir.LangECL, 10)
	tbl.Set(1, "S")

	sub := buildFrom(t, tbl, `
+50:
!EN
ins_1(7);
100:
ins_1(8);
`)
	want, err := asm.Serialize(sub, asm.DialectECLMainline)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	text := asm.Print(sub, nil)
	stmts2 := parseOne(t, text)
	b2 := asm.NewBuilder(asm.DialectECLMainline, tbl, nil)
	sub2 := b2.Build("main", stmts2)
	if b2.Errors().HasErrors() {
		t.Fatalf("unexpected build errors reparsing printed text %q: %v", text, b2.Errors())
	}
	got, err := asm.Serialize(sub2, asm.DialectECLMainline)
	if err != nil {
		t.Fatalf("Serialize (reparsed): %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch\n printed: %s\n got:  % x\n want: % x", text, got, want)
	}
}

func TestPrintUsesNamedMnemonicWhenMapProvided(t *testing.T) {
	tbl := opcode.NewTable(ir.LangECL, 10)
	tbl.Set(3, "S")
	sub := buildFrom(t, tbl, "ins_3(9);")

	m, err := mnemonic.Load(strings.NewReader("!ins_names\n3 delete\n"), "map.msc")
	if err != nil {
		t.Fatalf("mnemonic.Load: %v", err)
	}
	text := asm.Print(sub, m)
	if !contains(text, "delete(9);") {
		t.Fatalf("printed text %q does not use named mnemonic", text)
	}
}

func TestPrintReassemblesThroughNamedMnemonic(t *testing.T) {
	tbl := opcode.NewTable(ir.LangECL, 10)
	tbl.Set(3, "S")
	sub := buildFrom(t, tbl, "ins_3(9);")
	want, err := asm.Serialize(sub, asm.DialectECLMainline)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	m, err := mnemonic.Load(strings.NewReader("!ins_names\n3 delete\n"), "map.msc")
	if err != nil {
		t.Fatalf("mnemonic.Load: %v", err)
	}
	text := asm.Print(sub, m)

	stmts2 := parseOne(t, text)
	b2 := asm.NewBuilder(asm.DialectECLMainline, tbl, nil)
	b2.Mnemonics = m
	sub2 := b2.Build("main", stmts2)
	if b2.Errors().HasErrors() {
		t.Fatalf("unexpected build errors reparsing printed text %q: %v", text, b2.Errors())
	}
	got, err := asm.Serialize(sub2, asm.DialectECLMainline)
	if err != nil {
		t.Fatalf("Serialize (reparsed): %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch\n printed: %s\n got:  % x\n want: % x", text, got, want)
	}
}

func TestPrintStackReferenceReassemblesIdentically(t *testing.T) {
	tbl := opcode.NewTable(ir.LangECL, 10)
	tbl.Set(5, "ff")
	sub := buildFrom(t, tbl, "ins_5([2], 1.5f);")
	want, err := asm.Serialize(sub, asm.DialectECLMainline)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	text := asm.Print(sub, nil)
	if !contains(text, "[2]") {
		t.Fatalf("printed text %q does not preserve stack reference", text)
	}
	stmts2 := parseOne(t, text)
	b2 := asm.NewBuilder(asm.DialectECLMainline, tbl, nil)
	sub2 := b2.Build("main", stmts2)
	if b2.Errors().HasErrors() {
		t.Fatalf("unexpected build errors reparsing printed text %q: %v", text, b2.Errors())
	}
	got, err := asm.Serialize(sub2, asm.DialectECLMainline)
	if err != nil {
		t.Fatalf("Serialize (reparsed): %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch\n printed: %s\n got:  % x\n want: % x", text, got, want)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
