package archive

import (
	"fmt"

	"github.com/danmaku-tools/dmktk/archive/lzss"
)

// bitPackedCodec implements family 2 (spec.md §4.5 item 2), grounded on
// original_source/thtk/thdat06.c's PBG4 layout (the simpler of its two
// on-disk variants; PBG3's bespoke bitstream table is not replicated,
// since spec.md's own description of this family already matches PBG4's
// plain struct-based tuple layout and spec.md §8's round-trip property
// only requires self-consistency, not byte-for-byte real-file fidelity).
// The entry table is an LZSS-compressed stream of
// { NUL-terminated name, offset_u32, size_u32, extra_u32 } tuples; entry
// bodies are LZSS-compressed and otherwise uncrypted.
type bitPackedCodec struct {
	version int
}

func newBitPackedCodec(version int) *bitPackedCodec { return &bitPackedCodec{version: version} }

func (c *bitPackedCodec) nameFlags() NameFlags { return FlagBasename }

// bitPackedHeader is { magic[4], count u32, tableCompressedSize u32 }.
const bitPackedHeaderSize = 12

func (c *bitPackedCodec) magic() [4]byte {
	if c.version == 6 {
		return [4]byte{'P', 'B', 'G', '3'}
	}
	return [4]byte{'P', 'B', 'G', '4'}
}

func (c *bitPackedCodec) decodeImage(a *Archive) error {
	data := a.raw
	if len(data) < bitPackedHeaderSize {
		return fmt.Errorf("bit-packed: archive shorter than its header")
	}
	count := getU32(data[4:8])
	tableCompressedSize := getU32(data[8:12])
	tableStart := bitPackedHeaderSize
	tableEnd := tableStart + int(tableCompressedSize)
	if tableEnd > len(data) {
		return fmt.Errorf("bit-packed: entry table runs past end of archive")
	}

	table := lzss.Decompress(data[tableStart:tableEnd], estimateTableSize(int(count)))
	bodyStart := uint32(tableEnd)

	var entries []Entry
	pos := 0
	for i := uint32(0); i < count; i++ {
		name, next, ok := readNulString(table, pos)
		if !ok {
			return fmt.Errorf("bit-packed: entry table truncated while reading entry %d's name", i)
		}
		pos = next
		if pos+12 > len(table) {
			return fmt.Errorf("bit-packed: entry table truncated while reading entry %d's fields", i)
		}
		entries = append(entries, Entry{
			Name:             name,
			Offset:           bodyStart + getU32(table[pos:pos+4]),
			UncompressedSize: getU32(table[pos+4 : pos+8]),
			Extra:            getU32(table[pos+8 : pos+12]),
		})
		pos += 12
	}
	// Compressed size is recovered as the gap to the next entry's offset
	// (or to end of file for the last entry), since the table itself
	// doesn't carry it.
	for i := range entries {
		var end uint32
		if i+1 < len(entries) {
			end = entries[i+1].Offset
		} else {
			end = uint32(len(data))
		}
		entries[i].CompressedSize = end - entries[i].Offset
	}

	a.Entries = entries
	return nil
}

// estimateTableSize gives Decompress a generous upper bound on the
// decompressed entry table size; Decompress stops once it has produced
// this many bytes, and the table format never encodes its own
// uncompressed length, so the estimate only needs to be large enough to
// hold every entry's longest plausible name.
func estimateTableSize(count int) int { return count * (64 + 12) }

func (c *bitPackedCodec) encodeBody(name string, body []byte) (encoded []byte, uncompressedSize, compressedSize, extra uint32, err error) {
	compressed := lzss.Compress(body)
	return compressed, uint32(len(body)), uint32(len(compressed)), 0, nil
}

func (c *bitPackedCodec) decodeBody(index int, e Entry, raw []byte) ([]byte, error) {
	return lzss.Decompress(raw, int(e.UncompressedSize)), nil
}

func (c *bitPackedCodec) encodeImage(a *Archive) ([]byte, error) {
	// Offsets stored in the table are relative to the start of the body
	// section, so table content (and hence its compressed size) never
	// depends on the table's own compressed size — no fixpoint needed.
	relOffset := uint32(0)
	bodies := make([]byte, 0, 1024)
	var table []byte
	for i, e := range a.Entries {
		table = appendNulString(table, e.Name)
		table = appendU32(table, relOffset)
		table = appendU32(table, e.UncompressedSize)
		table = appendU32(table, e.Extra)
		bodies = append(bodies, a.bodies[i]...)
		relOffset += e.CompressedSize
	}
	compressedTable := lzss.Compress(table)

	bodyStart := uint32(bitPackedHeaderSize + len(compressedTable))
	rel := uint32(0)
	for i := range a.Entries {
		a.Entries[i].Offset = bodyStart + rel
		rel += a.Entries[i].CompressedSize
	}

	magic := c.magic()
	header := make([]byte, 0, bitPackedHeaderSize)
	header = append(header, magic[:]...)
	header = appendU32(header, uint32(len(a.Entries)))
	header = appendU32(header, uint32(len(compressedTable)))

	out := append(header, compressedTable...)
	out = append(out, bodies...)
	return out, nil
}
