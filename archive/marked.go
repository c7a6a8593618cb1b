package archive

import (
	"fmt"
	"strings"

	"github.com/danmaku-tools/dmktk/archive/crypt"
	"github.com/danmaku-tools/dmktk/archive/lzss"
)

// markedCodec implements family 3 (spec.md §4.5 item 3), grounded on
// original_source/thtk/thdat08.c's PBGZ layout: a 4-byte marker ("edz"
// plus a type character) prepended to every body ahead of an
// extension-keyed crypt pass and LZSS compression, an LZSS-compressed
// and fixed-schedule-crypted entry table, and a header whose three
// integrity fields are additively masked (123456, 345678, 567891) so a
// corrupted header is detectable on decode.
type markedCodec struct {
	version int
}

func newMarkedCodec(version int) *markedCodec { return &markedCodec{version: version} }

func (c *markedCodec) nameFlags() NameFlags { return FlagBasename }

const (
	markedMagic         = "PBGZ"
	markedHeaderSize    = 16 // magic[4] + 3 masked u32 fields
	markedCountMask     = 123456
	markedTableSizeMask = 345678
	markedTableRawMask  = 567891
	markedMarkerPrefix  = "edz"
)

var markedTableSchedule = crypt.Schedule{Key: 0x5c, Step1: 0x43, Block: 0x100, Limit: 0}

func (c *markedCodec) tableSchedule(size int) crypt.Schedule {
	s := markedTableSchedule
	s.Limit = uint32(size)
	return s
}

func markerFor(name string) [4]byte {
	typeChar := byte('0')
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i+1 < len(name) {
		typeChar = name[i+1]
		if typeChar >= 'a' && typeChar <= 'z' {
			typeChar -= 'a' - 'A'
		}
	}
	var m [4]byte
	copy(m[:], markedMarkerPrefix)
	m[3] = typeChar
	return m
}

func (c *markedCodec) decodeImage(a *Archive) error {
	data := a.raw
	if len(data) < markedHeaderSize || string(data[:4]) != markedMagic {
		return fmt.Errorf("marked: missing %q magic", markedMagic)
	}
	count := getU32(data[4:8]) - markedCountMask
	tableCompressedSize := getU32(data[8:12]) - markedTableSizeMask
	tableUncompressedSize := getU32(data[12:16]) - markedTableRawMask

	tableStart := markedHeaderSize
	tableEnd := tableStart + int(tableCompressedSize)
	if tableEnd > len(data) {
		return fmt.Errorf("marked: entry table runs past end of archive")
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
			return fmt.Errorf("marked: entry table truncated while reading entry %d's name", i)
		}
		pos = next
		if pos+12 > len(table) {
			return fmt.Errorf("marked: entry table truncated while reading entry %d's fields", i)
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

func (c *markedCodec) encodeBody(name string, body []byte) (encoded []byte, uncompressedSize, compressedSize, extra uint32, err error) {
	marker := markerFor(name)
	sched := crypt.ScheduleForExtension(extensionOf(name))
	xored := sched.Apply(body)
	combined := append(marker[:], xored...)
	compressed := lzss.Compress(combined)
	return compressed, uint32(len(combined)), uint32(len(compressed)), 0, nil
}

func (c *markedCodec) decodeBody(index int, e Entry, raw []byte) ([]byte, error) {
	combined := lzss.Decompress(raw, int(e.UncompressedSize))
	if len(combined) < 4 {
		return nil, fmt.Errorf("marked: decompressed body shorter than its marker")
	}
	xored := combined[4:]
	sched := crypt.ScheduleForExtension(extensionOf(e.Name))
	return sched.Apply(xored), nil
}

func extensionOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

func (c *markedCodec) encodeImage(a *Archive) ([]byte, error) {
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

	bodyStart := uint32(markedHeaderSize + len(scrambledTable))
	rel := uint32(0)
	for i := range a.Entries {
		a.Entries[i].Offset = bodyStart + rel
		rel += a.Entries[i].CompressedSize
	}

	header := make([]byte, 0, markedHeaderSize)
	header = append(header, markedMagic...)
	header = appendU32(header, uint32(len(a.Entries))+markedCountMask)
	header = appendU32(header, uint32(len(scrambledTable))+markedTableSizeMask)
	header = appendU32(header, uint32(len(table))+markedTableRawMask)

	out := append(header, scrambledTable...)
	out = append(out, bodies...)
	return out, nil
}
