package disasm_test

import (
	"encoding/binary"
	"testing"

	"github.com/danmaku-tools/dmktk/disasm"
	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/opcode"
)

func v0Instr(id uint16, time int16, params []byte) []byte {
	buf := make([]byte, 6+len(params))
	binary.LittleEndian.PutUint16(buf[0:], uint16(time))
	binary.LittleEndian.PutUint16(buf[2:], id)
	binary.LittleEndian.PutUint16(buf[4:], uint16(len(params)))
	copy(buf[6:], params)
	return buf
}

func mainlineAnmInstr(id uint16, time int16, params []byte) []byte {
	length := 8 + len(params)
	buf := make([]byte, length)
	binary.LittleEndian.PutUint16(buf[0:], id)
	binary.LittleEndian.PutUint16(buf[2:], uint16(length))
	binary.LittleEndian.PutUint16(buf[4:], uint16(time))
	binary.LittleEndian.PutUint16(buf[6:], 0) // param_mask
	copy(buf[8:], params)
	return buf
}

func TestDisassembleAnmSubV0(t *testing.T) {
	table := opcode.NewTable(ir.LangANM, 0)
	table.Set(5, "S")

	var sParam [4]byte
	neg := int32(-3)
	binary.LittleEndian.PutUint32(sParam[:], uint32(neg))

	var data []byte
	data = append(data, v0Instr(5, 10, sParam[:])...)
	data = append(data, v0Instr(0, 0, nil)...) // v0 terminator: id==0 && time==0

	sub, err := disasm.DisassembleAnmSub(data, disasm.AnmDialectV0, table)
	if err != nil {
		t.Fatalf("DisassembleAnmSub: %v", err)
	}
	insns := sub.Instructions()
	if len(insns) != 1 {
		t.Fatalf("got %d instructions, want 1 (terminator must not be emitted)", len(insns))
	}
	if insns[0].Opcode != 5 || insns[0].Params[0].Int != -3 {
		t.Fatalf("unexpected v0 instruction: %+v", insns[0])
	}

	sawTime := false
	for _, n := range sub.Nodes {
		if n.Kind == ir.NodeTimeMarker && n.MarkerTime == 10 {
			sawTime = true
		}
	}
	if !sawTime {
		t.Fatalf("expected a time marker for time 10")
	}
}

func TestDisassembleAnmSubMainlineTerminator(t *testing.T) {
	table := opcode.NewTable(ir.LangANM, 8)
	table.Set(1, "")

	var data []byte
	data = append(data, mainlineAnmInstr(1, 0, nil)...)
	term := make([]byte, 8)
	binary.LittleEndian.PutUint16(term[0:], 0xffff)
	data = append(data, term...)

	sub, err := disasm.DisassembleAnmSub(data, disasm.AnmDialectMainline, table)
	if err != nil {
		t.Fatalf("DisassembleAnmSub: %v", err)
	}
	insns := sub.Instructions()
	if len(insns) != 1 || insns[0].Opcode != 1 {
		t.Fatalf("unexpected mainline instructions: %+v", insns)
	}
}

func TestDisassembleAnmSubUnknownOpcodeRawFallback(t *testing.T) {
	table := opcode.NewTable(ir.LangANM, 8)
	data := mainlineAnmInstr(77, 0, []byte{9, 9})

	sub, err := disasm.DisassembleAnmSub(data, disasm.AnmDialectMainline, table)
	if err != nil {
		t.Fatalf("DisassembleAnmSub: %v", err)
	}
	insns := sub.Instructions()
	if len(insns) != 1 || insns[0].Params[0].Tag != 'm' {
		t.Fatalf("expected raw blob fallback, got %+v", insns)
	}
}

func TestDisassembleAnmSubShortBodyIsError(t *testing.T) {
	table := opcode.NewTable(ir.LangANM, 8)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:], 1)
	binary.LittleEndian.PutUint16(buf[2:], 20) // claims 20 bytes but none follow
	_, err := disasm.DisassembleAnmSub(buf, disasm.AnmDialectMainline, table)
	if err == nil {
		t.Fatalf("expected a short-read error")
	}
}
