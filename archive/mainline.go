package archive

import (
	"fmt"

	"github.com/danmaku-tools/dmktk/archive/crypt"
	"github.com/danmaku-tools/dmktk/archive/lzss"
)

// mainlineCodec implements family 4 (spec.md §4.5 item 4), grounded on
// original_source/thtk/thdat95.c and thdat105.c's THA1 layout: bodies
// LZSS-compressed unless that wouldn't shrink them, then scrambled by a
// filename-hash-selected schedule out of eight; an LZSS-compressed,
// fixed-schedule-crypted entry table; and a crypt-scrambled fixed-size
// header whose count and table-size fields carry additive tamper masks
// (123456789, 987654321, 135792468).
type mainlineCodec struct {
	version int
}

func newMainlineCodec(version int) *mainlineCodec { return &mainlineCodec{version: version} }

func (c *mainlineCodec) nameFlags() NameFlags { return FlagBasename }

const (
	mainlineMagic      = "THA1"
	mainlineHeaderSize = 16 // magic[4] + count + tableCompressedSize + tableUncompressedSize
	mainlineCountMask  = 123456789
	mainlineTableMask  = 987654321
	mainlineRawMask    = 135792468
)

var mainlineTableSchedule = crypt.Schedule{Key: 0x3e, Step1: 0x9b, Block: 0x80, Limit: 0}

func (c *mainlineCodec) tableSchedule(size int) crypt.Schedule {
	s := mainlineTableSchedule
	s.Limit = uint32(size)
	return s
}

// bodySchedules are the eight filename-hash-selected schedules for
// mainline entry bodies (spec.md §6 names seven by extension; the
// eighth is the family's catch-all, distinguished from
// crypt.ScheduleDefault by its own key so the hash actually spans eight
// distinct schedules rather than aliasing one of the seven).
var bodySchedules = [8]crypt.Schedule{
	crypt.ScheduleDefault,
	crypt.ScheduleANM,
	crypt.ScheduleECL,
	crypt.ScheduleJPG,
	crypt.ScheduleMSG,
	crypt.ScheduleTXT,
	crypt.ScheduleWAV,
	{Key: 0x77, Step1: 0x1d, Block: 0x200, Limit: 0x4000},
}

func scheduleForName(name string) crypt.Schedule {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*31 + uint32(name[i])
	}
	return bodySchedules[h%uint32(len(bodySchedules))]
}

func (c *mainlineCodec) decodeImage(a *Archive) error {
	data := a.raw
	if len(data) < mainlineHeaderSize {
		return fmt.Errorf("mainline: archive shorter than its header")
	}
	header := crypt.HeaderLadderSchedule(mainlineHeaderSize).Apply(data[:mainlineHeaderSize])
	if string(header[:4]) != mainlineMagic {
		return fmt.Errorf("mainline: missing %q magic", mainlineMagic)
	}
	count := getU32(header[4:8]) - mainlineCountMask
	tableCompressedSize := getU32(header[8:12]) - mainlineTableMask
	tableUncompressedSize := getU32(header[12:16]) - mainlineRawMask

	tableStart := mainlineHeaderSize
	tableEnd := tableStart + int(tableCompressedSize)
	if tableEnd > len(data) {
		return fmt.Errorf("mainline: entry table runs past end of archive")
	}
	scrambled := data[tableStart:tableEnd]
	compressed := c.tableSchedule(len(scrambled)).Apply(scrambled)
	table := lzss.Decompress(compressed, int(tableUncompressedSize))
	bodyStart := uint32(tableEnd)

	var entries []Entry
	pos := 0
	for i := uint32(0); i < count; i++ {
		name, next, ok := readNulString(table, pos)
		if !ok {
			return fmt.Errorf("mainline: entry table truncated while reading entry %d's name", i)
		}
		pos = next
		if pos+12 > len(table) {
			return fmt.Errorf("mainline: entry table truncated while reading entry %d's fields", i)
		}
		entries = append(entries, Entry{
			Name:             name,
			Offset:           bodyStart + getU32(table[pos:pos+4]),
			UncompressedSize: getU32(table[pos+4 : pos+8]),
			CompressedSize:   getU32(table[pos+8 : pos+12]),
		})
		pos += 12
	}

	a.Entries = entries
	return nil
}

func (c *mainlineCodec) encodeBody(name string, body []byte) (encoded []byte, uncompressedSize, compressedSize, extra uint32, err error) {
	compressed := lzss.Compress(body)
	if len(compressed) >= len(body) {
		compressed = append([]byte(nil), body...)
	}
	scrambled := scheduleForName(name).Apply(compressed)
	return scrambled, uint32(len(body)), uint32(len(scrambled)), 0, nil
}

func (c *mainlineCodec) decodeBody(index int, e Entry, raw []byte) ([]byte, error) {
	compressed := scheduleForName(e.Name).Apply(raw)
	if e.CompressedSize == e.UncompressedSize {
		return compressed, nil
	}
	return lzss.Decompress(compressed, int(e.UncompressedSize)), nil
}

func (c *mainlineCodec) encodeImage(a *Archive) ([]byte, error) {
	relOffset := uint32(0)
	bodies := make([]byte, 0, 1024)
	var table []byte
	for i, e := range a.Entries {
		table = appendNulString(table, e.Name)
		table = appendU32(table, relOffset)
		table = appendU32(table, e.UncompressedSize)
		table = appendU32(table, e.CompressedSize)
		bodies = append(bodies, a.bodies[i]...)
		relOffset += e.CompressedSize
	}
	compressedTable := lzss.Compress(table)
	scrambledTable := c.tableSchedule(len(compressedTable)).Apply(compressedTable)

	bodyStart := uint32(mainlineHeaderSize + len(scrambledTable))
	rel := uint32(0)
	for i := range a.Entries {
		a.Entries[i].Offset = bodyStart + rel
		rel += a.Entries[i].CompressedSize
	}

	header := make([]byte, 0, mainlineHeaderSize)
	header = append(header, mainlineMagic...)
	header = appendU32(header, uint32(len(a.Entries))+mainlineCountMask)
	header = appendU32(header, uint32(len(scrambledTable))+mainlineTableMask)
	header = appendU32(header, uint32(len(table))+mainlineRawMask)
	scrambledHeader := crypt.HeaderLadderSchedule(mainlineHeaderSize).Apply(header)

	out := append(scrambledHeader, scrambledTable...)
	out = append(out, bodies...)
	return out, nil
}
