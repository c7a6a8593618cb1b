package disasm

import (
	"fmt"

	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/value"
)

// decodeParams decodes the parameter list of one instruction's trailing
// data according to an opcode format string (spec.md §4.4), mirroring
// value_list_from_data/th10_value_from_data: 'm'/'x' are a 4-byte
// little-endian length prefix followed by that many raw bytes (with 'x'
// additionally XOR-descrambled), delegated to value.FromBytes; 'D' is a
// fixed 8-byte cast pair, 'o' is a plain signed 32-bit relative offset,
// and every other tag uses its fixed binary width. A '*' before a tag
// repeats it until the data is exhausted; a '?' before a tag makes it
// optional, silently dropped if no bytes remain (spec.md §4.3,
// original_source/instr.c's instr_parse). stackMask's bit i marks
// parameter i as a stack reference rather than an immediate.
func decodeParams(format string, stackMask uint32, data []byte) ([]ir.Param, error) {
	var params []ir.Param
	pos := 0
	paramIndex := 0

	for i := 0; i < len(format); i++ {
		repeat := false
		optional := false
		ch := format[i]
		switch ch {
		case value.FormatRepeat:
			i++
			if i >= len(format) {
				return nil, fmt.Errorf("disasm: format %q ends with a dangling '*'", format)
			}
			ch = format[i]
			repeat = true
		case value.FormatOptional:
			i++
			if i >= len(format) {
				return nil, fmt.Errorf("disasm: format %q ends with a dangling '?'", format)
			}
			ch = format[i]
			optional = true
		}

		if optional && pos >= len(data) {
			continue
		}

		for {
			if repeat && pos >= len(data) {
				break
			}
			tag, ok := value.FormatTag(ch)
			if !ok {
				return nil, fmt.Errorf("disasm: unrecognised format character %q in %q", ch, format)
			}

			p := ir.Param{Tag: byte(tag), IsStackRef: stackMask&(1<<uint(paramIndex)) != 0}

			switch tag {
			case value.TagCast:
				if pos+8 > len(data) {
					return nil, fmt.Errorf("disasm: short read for cast pair at offset %d", pos)
				}
				v, _, err := value.FromBytes(data[pos:pos+8], value.TagCast)
				if err != nil {
					return nil, err
				}
				p.CastType = v.CastType
				p.CastValue = v.CastValue
				pos += 8
			default:
				width := value.Width(tag)
				if width < 0 {
					width = len(data) - pos
				}
				if pos+width > len(data) {
					return nil, fmt.Errorf("disasm: short read for tag %q at offset %d", tag, pos)
				}
				v, n, err := value.FromBytes(data[pos:pos+width], tag)
				if err != nil {
					return nil, err
				}
				p.Int = v.Int
				p.Float = v.Float
				p.Str = v.Str
				p.Blob = v.Blob
				pos += n
			}

			params = append(params, p)
			paramIndex++
			if !repeat {
				break
			}
		}
	}

	return params, nil
}

