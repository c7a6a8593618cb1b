package disasm_test

import (
	"strings"
	"testing"

	"github.com/danmaku-tools/dmktk/disasm"
)

func TestErrorFormatsWithAndWithoutSub(t *testing.T) {
	withSub := &disasm.Error{Kind: disasm.ErrorShortRead, Offset: 0x10, Sub: "main", Message: "truncated"}
	if !strings.Contains(withSub.Error(), "main") {
		t.Fatalf("expected sub name in error text: %s", withSub.Error())
	}

	noSub := &disasm.Error{Kind: disasm.ErrorUnknownOpcode, Offset: 4, Message: "bad opcode"}
	if strings.Contains(noSub.Error(), `""`) {
		t.Fatalf("empty sub name should be omitted from error text: %s", noSub.Error())
	}
}

func TestErrorListRespectsCap(t *testing.T) {
	list := disasm.NewErrorList(2)
	if !list.Add(&disasm.Error{Kind: disasm.ErrorShortRead}) {
		t.Fatalf("first Add should report more room available")
	}
	if list.Add(&disasm.Error{Kind: disasm.ErrorShortRead}) {
		t.Fatalf("second Add should report the cap has been reached")
	}
	if list.Add(&disasm.Error{Kind: disasm.ErrorShortRead}) {
		t.Fatalf("Add past the cap should be refused and report no room")
	}
	if len(list.Errors) != 2 {
		t.Fatalf("got %d errors stored, want exactly 2 (capped)", len(list.Errors))
	}
}

func TestErrorListUnlimitedWhenCapIsZero(t *testing.T) {
	list := disasm.NewErrorList(0)
	for i := 0; i < 5; i++ {
		list.Add(&disasm.Error{Kind: disasm.ErrorShortRead})
	}
	if len(list.Errors) != 5 {
		t.Fatalf("got %d errors, want 5 with an unlimited cap", len(list.Errors))
	}
	if !list.HasErrors() {
		t.Fatalf("HasErrors should report true once errors exist")
	}
}
