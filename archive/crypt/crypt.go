// Package crypt implements the additive XOR "ladder" ciphers used to
// obfuscate archive bodies and entry tables (spec.md §4.5/§6). Both
// directions of the cipher are the same XOR transform: applying a Schedule
// twice to the same byte range restores the original bytes.
package crypt

// Schedule parameterises one ladder cipher pass: up to Limit bytes of the
// input are XORed with a running key, starting at Key and advancing by
// Step1 after every byte; when Step2 is non-zero Step1 itself advances by
// Step2 after every byte too (the "stepped" ladder). Block groups the
// ladder into chunks for callers that want to report progress, but it does
// not reset the key or step state — the key keeps advancing across chunk
// boundaries, which is what makes the cipher involutive regardless of how
// Block divides Limit.
type Schedule struct {
	Key   byte
	Step1 byte
	Step2 byte
	Block uint32
	Limit uint32
}

// Apply returns a copy of data with the first min(Limit, len(data)) bytes
// XORed by the ladder; any bytes beyond Limit are copied unchanged. Apply
// is involutive: Apply(Apply(data)) == data for the same Schedule.
func (s Schedule) Apply(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	limit := s.Limit
	if uint32(len(out)) < limit {
		limit = uint32(len(out))
	}

	key := s.Key
	step1 := s.Step1
	for i := uint32(0); i < limit; i++ {
		out[i] ^= key
		key += step1
		step1 += s.Step2
	}
	return out
}

// HeaderSchedule is the alternating-halves ladder variant: each
// Block-sized chunk is split into two halves, and bytes are consumed from
// the two halves alternately so that adjacent key steps land in opposite
// halves of the chunk. This is still a pure XOR transform driven by the
// same key ladder, so it remains involutive. The archive codecs do not
// use it: the mainline header is scrambled with the plain Schedule that
// HeaderLadderSchedule returns.
type HeaderSchedule struct {
	Key   byte
	Step1 byte
	Step2 byte
	Block uint32
	Limit uint32
}

// Apply returns a copy of data with the ladder applied using the
// alternating-halves chunk order.
func (s HeaderSchedule) Apply(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	limit := s.Limit
	if uint32(len(out)) < limit {
		limit = uint32(len(out))
	}

	key := s.Key
	step1 := s.Step1

	for chunkStart := uint32(0); chunkStart < limit; chunkStart += s.Block {
		chunkEnd := chunkStart + s.Block
		if chunkEnd > limit {
			chunkEnd = limit
		}
		chunkLen := chunkEnd - chunkStart
		half := chunkLen / 2

		lo, hi := uint32(0), half
		for lo < half || hi < chunkLen {
			if lo < half {
				out[chunkStart+lo] ^= key
				key += step1
				step1 += s.Step2
				lo++
			}
			if hi < chunkLen {
				out[chunkStart+hi] ^= key
				key += step1
				step1 += s.Step2
				hi++
			}
		}
	}
	return out
}

// Known filename-extension schedules (spec.md §6), used by the marked
// archive family to pick a per-entry crypt schedule from its extension.
var (
	ScheduleDefault = Schedule{Key: 0x35, Step1: 0x97, Block: 0x80, Limit: 0x2800}
	ScheduleANM     = Schedule{Key: 0xc1, Step1: 0x51, Block: 0x1400, Limit: 0x2000}
	ScheduleECL     = Schedule{Key: 0xab, Step1: 0xcd, Block: 0x0200, Limit: 0x1000}
	ScheduleJPG     = Schedule{Key: 0x03, Step1: 0x19, Block: 0x1400, Limit: 0x7800}
	ScheduleMSG     = Schedule{Key: 0x1b, Step1: 0x37, Block: 0x0040, Limit: 0x2000}
	ScheduleTXT     = Schedule{Key: 0x51, Step1: 0xe9, Block: 0x0040, Limit: 0x3000}
	ScheduleWAV     = Schedule{Key: 0x12, Step1: 0x34, Block: 0x0400, Limit: 0x2800}
)

// ScheduleForExtension picks the marked-family schedule for a filename
// extension (case-insensitive, with or without the leading dot).
func ScheduleForExtension(ext string) Schedule {
	switch normalizeExt(ext) {
	case "anm":
		return ScheduleANM
	case "ecl":
		return ScheduleECL
	case "jpg":
		return ScheduleJPG
	case "msg":
		return ScheduleMSG
	case "txt":
		return ScheduleTXT
	case "wav":
		return ScheduleWAV
	default:
		return ScheduleDefault
	}
}

func normalizeExt(ext string) string {
	for len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	out := make([]byte, len(ext))
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// HeaderLadderSchedule is the fixed schedule used to scramble the
// mainline archive header itself (key 0x1b, step1 0x37, block/limit equal
// to the header size, set by the caller).
func HeaderLadderSchedule(headerSize uint32) Schedule {
	return Schedule{Key: 0x1b, Step1: 0x37, Block: headerSize, Limit: headerSize}
}

// InstructionBlobSchedule is the fixed schedule used to scramble 'x'-tagged
// instruction parameter blobs, grounded on original_source/thecl10.c's
// util_xor(data, length, 0x77, 7, 16) call: the same additive ladder as
// Schedule, just with no Block chunking and Limit equal to the blob's own
// length.
func InstructionBlobSchedule(length uint32) Schedule {
	return Schedule{Key: 0x77, Step1: 7, Step2: 16, Block: length, Limit: length}
}

// AppendixSchedule returns the fixed key 0x3e/step1 0x9b schedule with
// Limit set to the appendix/table size by the caller. Nothing in this
// module calls it: the mainline archive codec scrambles its entry table
// with its own schedule value carrying the same parameters, and its three
// masked header fields go through HeaderLadderSchedule with the magic.
func AppendixSchedule(tableSize uint32) Schedule {
	return Schedule{Key: 0x3e, Step1: 0x9b, Block: 0x0080, Limit: tableSize}
}
