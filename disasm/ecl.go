package disasm

import (
	"encoding/binary"
	"fmt"

	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/opcode"
)

// ECLDialect distinguishes the two ECL instruction-header layouts
// (spec.md §4.8's per-version size rules; headers grounded on
// original_source/thecl06.c's th06_instr_t and thecl10.c's th10_instr_t).
type ECLDialect int

const (
	// ECLDialectLegacy covers versions 6-9: a 12-byte instruction header
	// (time u32, id u16, size u16, rank_mask u16, param_mask u16).
	ECLDialectLegacy ECLDialect = iota
	// ECLDialectMainline covers version 10 and later: a 16-byte
	// instruction header (time u32, id u16, size u16, param_mask u16,
	// rank_mask u8, param_count u8, zero u32).
	ECLDialectMainline
)

const (
	eclLegacyHeaderSize   = 12
	eclMainlineHeaderSize = 16
)

// DisassembleECLSub walks one sub-program's raw instruction stream
// (already sliced to just that sub's bytes, past its ECLH/sub header) and
// returns its IR, including time markers, rank markers, and labels
// (spec.md §4.6). table resolves each opcode's parameter format; an
// opcode missing from table falls back to a raw format (spec.md §9):
// its trailing bytes are kept as a single opaque blob parameter so
// re-assembly can still reproduce the original bytes exactly.
func DisassembleECLSub(data []byte, dialect ECLDialect, table *opcode.Table) (*ir.Sub, error) {
	sub := ir.NewSub("")
	headerSize := eclMainlineHeaderSize
	if dialect == ECLDialectLegacy {
		headerSize = eclLegacyHeaderSize
	}

	time := int32(0)
	rank := uint8(0xff)
	firstInstr := true
	offset := uint32(0)

	for offset < uint32(len(data)) {
		if int(offset)+headerSize > len(data) {
			return nil, &Error{Kind: ErrorShortRead, Offset: offset, Message: "instruction header runs past end of sub-program"}
		}

		raw := data[offset:]
		var instrTime int32
		var id uint16
		var size uint16
		var paramMask uint32
		var rankMask uint8

		switch dialect {
		case ECLDialectLegacy:
			instrTime = int32(binary.LittleEndian.Uint32(raw[0:]))
			id = binary.LittleEndian.Uint16(raw[4:])
			size = binary.LittleEndian.Uint16(raw[6:])
			rankMask = uint8(binary.LittleEndian.Uint16(raw[8:]))
			paramMask = uint32(binary.LittleEndian.Uint16(raw[10:]))
		case ECLDialectMainline:
			instrTime = int32(binary.LittleEndian.Uint32(raw[0:]))
			id = binary.LittleEndian.Uint16(raw[4:])
			size = binary.LittleEndian.Uint16(raw[6:])
			paramMask = uint32(binary.LittleEndian.Uint16(raw[8:]))
			rankMask = raw[10]
		}

		if size < uint16(headerSize) {
			return nil, &Error{Kind: ErrorShortRead, Offset: offset, Message: fmt.Sprintf("instruction size %d smaller than header %d", size, headerSize)}
		}
		if int(offset)+int(size) > len(data) {
			return nil, &Error{Kind: ErrorShortRead, Offset: offset, Message: "instruction body runs past end of sub-program"}
		}

		if firstInstr || instrTime != time {
			sub.Nodes = append(sub.Nodes, ir.Node{Kind: ir.NodeTimeMarker, MarkerTime: instrTime})
			time = instrTime
		}
		if firstInstr || rankMask != rank {
			sub.Nodes = append(sub.Nodes, ir.Node{Kind: ir.NodeRankMarker, MarkerRank: rankMask})
			rank = rankMask
		}
		firstInstr = false

		inst := &ir.Instruction{
			Opcode:       id,
			Time:         instrTime,
			RankMask:     rankMask,
			Size:         size,
			StackRefMask: uint8(paramMask),
			Offset:       offset,
		}

		paramData := raw[headerSize:size]
		format, ok := table.Lookup(id)
		if !ok {
			// Raw fallback (spec.md §9): preserve the exact trailing bytes
			// as an opaque blob so a subsequent assembly round-trips them
			// unchanged even though their semantics are unknown.
			inst.Params = []ir.Param{{Tag: 'm', Blob: append([]byte(nil), paramData...)}}
		} else {
			params, err := decodeParams(format, paramMask, paramData)
			if err != nil {
				return nil, &Error{Kind: ErrorUnknownOpcode, Offset: offset, Message: err.Error()}
			}
			inst.Params = params
		}

		sub.AddInstruction(inst)
		offset += uint32(size)
	}

	insertLabels(sub)
	return sub, nil
}
