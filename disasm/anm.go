package disasm

import (
	"encoding/binary"

	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/opcode"
)

// AnmDialect distinguishes the two ANM script instruction-header layouts
// (grounded on original_source/thanm/thanm.c's anm_instr0_t vs anm_instr_t
// handling, version == 0 taking the older 6-byte-header branch).
type AnmDialect int

const (
	// AnmDialectV0 is version 0's 6-byte header: time int16, type uint16,
	// length uint16. Its terminator is type == 0 && time == 0 rather than
	// a sentinel opcode, since 0 is otherwise a valid type/time pair for
	// later versions only.
	AnmDialectV0 AnmDialect = iota
	// AnmDialectMainline is version 2 and later's 8-byte header: type
	// uint16, length uint16, time int16, param_mask uint16. Its
	// terminator is type == 0xffff.
	AnmDialectMainline
)

const (
	anmV0HeaderSize       = 6
	anmMainlineHeaderSize = 8
	anmTerminatorOpcode   = 0xffff
)

// DisassembleAnmSub walks one script's raw instruction stream (already
// sliced to the script's own bytes) into IR, the ANM-language counterpart
// of DisassembleECLSub. Legacy ANM instructions carry no rank mask or
// explicit stack-reference bitmask of their own (param_mask is synthesised
// as 0 for v0, as thanm.c itself does when converting anm_instr0_t into
// anm_instr_t), so no rank marker nodes are ever emitted for ANM scripts.
func DisassembleAnmSub(data []byte, dialect AnmDialect, table *opcode.Table) (*ir.Sub, error) {
	sub := ir.NewSub("")
	time := int32(0)
	firstInstr := true
	offset := uint32(0)

	for {
		if dialect == AnmDialectV0 {
			if int(offset)+anmV0HeaderSize > len(data) {
				break
			}
			raw := data[offset:]
			instrTime := int32(int16(binary.LittleEndian.Uint16(raw[0:])))
			opcodeID := binary.LittleEndian.Uint16(raw[2:])
			length := binary.LittleEndian.Uint16(raw[4:])
			if opcodeID == 0 && instrTime == 0 {
				break
			}
			if int(offset)+anmV0HeaderSize+int(length) > len(data) {
				return nil, &Error{Kind: ErrorShortRead, Offset: offset, Message: "v0 instruction body runs past end of script"}
			}

			if err := appendAnmInstruction(sub, table, &time, &firstInstr, offset, opcodeID, instrTime, anmV0HeaderSize+uint16(length), 0, data[offset+anmV0HeaderSize:offset+anmV0HeaderSize+uint32(length)]); err != nil {
				return nil, err
			}
			offset += anmV0HeaderSize + uint32(length)
			continue
		}

		if int(offset)+anmMainlineHeaderSize > len(data) {
			break
		}
		raw := data[offset:]
		opcodeID := binary.LittleEndian.Uint16(raw[0:])
		length := binary.LittleEndian.Uint16(raw[2:])
		instrTime := int32(int16(binary.LittleEndian.Uint16(raw[4:])))
		paramMask := uint32(binary.LittleEndian.Uint16(raw[6:]))
		if opcodeID == anmTerminatorOpcode {
			break
		}
		if length < anmMainlineHeaderSize {
			return nil, &Error{Kind: ErrorShortRead, Offset: offset, Message: "instruction length smaller than header"}
		}
		if int(offset)+int(length) > len(data) {
			return nil, &Error{Kind: ErrorShortRead, Offset: offset, Message: "instruction body runs past end of script"}
		}

		if err := appendAnmInstruction(sub, table, &time, &firstInstr, offset, opcodeID, instrTime, length, paramMask, raw[anmMainlineHeaderSize:length]); err != nil {
			return nil, err
		}
		offset += uint32(length)
	}

	insertLabels(sub)
	return sub, nil
}

func appendAnmInstruction(sub *ir.Sub, table *opcode.Table, time *int32, firstInstr *bool, offset uint32, opcodeID uint16, instrTime int32, totalSize uint16, stackMask uint32, paramData []byte) error {
	if *firstInstr || instrTime != *time {
		sub.Nodes = append(sub.Nodes, ir.Node{Kind: ir.NodeTimeMarker, MarkerTime: instrTime})
		*time = instrTime
	}
	*firstInstr = false

	inst := &ir.Instruction{
		Opcode: opcodeID,
		Time:   instrTime,
		Size:   totalSize,
		Offset: offset,

		StackRefMask: uint8(stackMask),
	}

	format, ok := table.Lookup(opcodeID)
	if !ok {
		inst.Params = []ir.Param{{Tag: 'm', Blob: append([]byte(nil), paramData...)}}
	} else {
		params, err := decodeParams(format, stackMask, paramData)
		if err != nil {
			return &Error{Kind: ErrorUnknownOpcode, Offset: offset, Message: err.Error()}
		}
		inst.Params = params
	}

	sub.AddInstruction(inst)
	return nil
}
