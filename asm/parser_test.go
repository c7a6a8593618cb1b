package asm_test

import (
	"testing"

	"github.com/danmaku-tools/dmktk/asm"
)

func TestParserParsesLabelTimeRankAndInstruction(t *testing.T) {
	p := asm.NewParser(`
loop:
+30:
!ENHL
ins_1(1, 2.5f, $x);
`, "test.ecl")
	stmts := p.ParseStatements()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(stmts) != 4 {
		t.Fatalf("got %d statements, want 4: %+v", len(stmts), stmts)
	}
	if stmts[0].Kind != asm.StmtLabel || stmts[0].LabelName != "loop" {
		t.Fatalf("stmt0 = %+v, want label \"loop\"", stmts[0])
	}
	if stmts[1].Kind != asm.StmtTime || !stmts[1].Relative || stmts[1].Time != 30 {
		t.Fatalf("stmt1 = %+v, want relative time +30", stmts[1])
	}
	if stmts[2].Kind != asm.StmtRank || stmts[2].RankLetters != "ENHL" {
		t.Fatalf("stmt2 = %+v, want rank ENHL", stmts[2])
	}
	if stmts[3].Kind != asm.StmtInstruction || stmts[3].Mnemonic != "ins_1" || len(stmts[3].Args) != 3 {
		t.Fatalf("stmt3 = %+v, want ins_1 with 3 args", stmts[3])
	}
}

func TestParserAbsoluteTimeMarker(t *testing.T) {
	p := asm.NewParser("100:\nins_0();", "test.ecl")
	stmts := p.ParseStatements()
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if stmts[0].Kind != asm.StmtTime || stmts[0].Relative || stmts[0].Time != 100 {
		t.Fatalf("stmt0 = %+v, want absolute time 100", stmts[0])
	}
}

func TestParserLabelRefArgument(t *testing.T) {
	p := asm.NewParser("ins_12(done);", "test.ecl")
	stmts := p.ParseStatements()
	if len(stmts) != 1 || len(stmts[0].Args) != 1 {
		t.Fatalf("got %+v", stmts)
	}
	arg := stmts[0].Args[0]
	if arg.Kind != asm.ArgLabelRef || arg.Str != "done" {
		t.Fatalf("arg = %+v, want label ref \"done\"", arg)
	}
}

func TestParserRecoversAfterSyntaxError(t *testing.T) {
	p := asm.NewParser("ins_1(1,,2);\nins_2();", "test.ecl")
	stmts := p.ParseStatements()
	if !p.Errors().HasErrors() {
		t.Fatalf("expected a syntax error for the doubled comma")
	}
	var sawIns2 bool
	for _, s := range stmts {
		if s.Kind == asm.StmtInstruction && s.Mnemonic == "ins_2" {
			sawIns2 = true
		}
	}
	if !sawIns2 {
		t.Fatalf("parser should recover and still see ins_2, got %+v", stmts)
	}
}
