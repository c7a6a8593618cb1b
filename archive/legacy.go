package archive

import (
	"fmt"

	"github.com/danmaku-tools/dmktk/archive/crypt"
)

// legacyCodec implements family 1 (spec.md §4.5 item 1), grounded on
// original_source/thtk/thdat02.c: a header-less image whose entry count
// is itself ladder-obfuscated, a NUL-name-plus-three-u32 entry table
// obfuscated by a second, fixed-key ladder (legacyTableKey/legacyTableStep),
// and bodies
// optionally run-length-encoded (stored raw when that wouldn't shrink
// them, spec.md §8's "compresses to exactly its own size" rule) then
// flat-XORed with a per-entry key derived from the entry's table
// position.
type legacyCodec struct {
	version int
}

func newLegacyCodec(version int) *legacyCodec { return &legacyCodec{version: version} }

func (c *legacyCodec) nameFlags() NameFlags { return FlagBasename | FlagEightDotThree }

const (
	legacyHeaderKey  byte = 0x1b
	legacyHeaderStep byte = 0x37
	legacyTableKey   byte = 0x35
	legacyTableStep  byte = 0x97
)

func legacyEntryKey(index int) byte { return byte(index*0x09 + 0x7d) }

func xorConst(data []byte, key byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key
	}
	return out
}

// ladderCursor decrypts a ladder-XORed byte stream one byte at a time,
// useful when the total ciphertext length isn't known up front (spec.md
// §4.5's entry table, whose length depends on the NUL-terminated names
// it contains).
type ladderCursor struct {
	data  []byte
	pos   int
	key   byte
	step1 byte
	step2 byte
}

func newLadderCursor(data []byte, key, step1, step2 byte) *ladderCursor {
	return &ladderCursor{data: data, key: key, step1: step1, step2: step2}
}

func (c *ladderCursor) next() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	b := c.data[c.pos] ^ c.key
	c.pos++
	c.key += c.step1
	c.step1 += c.step2
	return b, true
}

func (c *legacyCodec) decodeImage(a *Archive) error {
	data := a.raw
	if len(data) < 4 {
		return fmt.Errorf("legacy: archive shorter than its header")
	}
	headerCur := newLadderCursor(data[:4], legacyHeaderKey, legacyHeaderStep, 0)
	var header [4]byte
	for i := range header {
		b, _ := headerCur.next()
		header[i] = b
	}
	count := getU32(header[:])

	tableCur := newLadderCursor(data[4:], legacyTableKey, legacyTableStep, 0)
	var entries []Entry
	for i := uint32(0); i < count; i++ {
		var nameBytes []byte
		for {
			b, ok := tableCur.next()
			if !ok {
				return fmt.Errorf("legacy: entry table truncated while reading a name")
			}
			if b == 0 {
				break
			}
			nameBytes = append(nameBytes, b)
		}
		var fields [12]byte
		for j := range fields {
			b, ok := tableCur.next()
			if !ok {
				return fmt.Errorf("legacy: entry table truncated while reading entry %d's fields", i)
			}
			fields[j] = b
		}
		entries = append(entries, Entry{
			Name:             string(nameBytes),
			Offset:           getU32(fields[0:4]),
			UncompressedSize: getU32(fields[4:8]),
			CompressedSize:   getU32(fields[8:12]),
		})
	}

	a.Entries = entries
	return nil
}

func (c *legacyCodec) encodeBody(name string, body []byte) (encoded []byte, uncompressedSize, compressedSize, extra uint32, err error) {
	compressed := rleEncode(body)
	if len(compressed) >= len(body) {
		compressed = append([]byte(nil), body...)
	}
	return compressed, uint32(len(body)), uint32(len(compressed)), 0, nil
}

func (c *legacyCodec) decodeBody(index int, e Entry, raw []byte) ([]byte, error) {
	plain := xorConst(raw, legacyEntryKey(index))
	if e.CompressedSize == e.UncompressedSize {
		return plain, nil
	}
	return rleDecode(plain, int(e.UncompressedSize)), nil
}

func (c *legacyCodec) encodeImage(a *Archive) ([]byte, error) {
	headerSize := 4
	tableSize := 0
	for _, e := range a.Entries {
		tableSize += len(e.Name) + 1 + 12
	}

	offset := uint32(headerSize + tableSize)
	bodies := make([]byte, 0, 1024)
	for i := range a.Entries {
		key := legacyEntryKey(i)
		enc := xorConst(a.bodies[i], key)
		a.Entries[i].Offset = offset
		bodies = append(bodies, enc...)
		offset += uint32(len(enc))
	}

	var table []byte
	for _, e := range a.Entries {
		table = appendNulString(table, e.Name)
		table = appendU32(table, e.Offset)
		table = appendU32(table, e.UncompressedSize)
		table = appendU32(table, e.CompressedSize)
	}
	encTable := crypt.Schedule{Key: legacyTableKey, Step1: legacyTableStep, Limit: uint32(len(table))}.Apply(table)

	var header [4]byte
	putU32(header[:], uint32(len(a.Entries)))
	encHeader := crypt.Schedule{Key: legacyHeaderKey, Step1: legacyHeaderStep, Limit: 4}.Apply(header[:])

	out := append(encHeader, encTable...)
	out = append(out, bodies...)
	return out, nil
}

func rleEncode(data []byte) []byte {
	var out []byte
	i := 0
	for i < len(data) {
		runLen := 1
		for i+runLen < len(data) && data[i+runLen] == data[i] && runLen < 128 {
			runLen++
		}
		if runLen >= 3 {
			out = append(out, byte(runLen-1), data[i])
			i += runLen
			continue
		}
		// Accumulate a literal run up to the next qualifying repeat or 128 bytes.
		litStart := i
		for i < len(data) {
			remaining := len(data) - i
			repeat := 1
			for repeat < remaining && repeat < 128 && data[i+repeat] == data[i] {
				repeat++
			}
			if repeat >= 3 {
				break
			}
			i++
			if i-litStart >= 128 {
				break
			}
		}
		lit := data[litStart:i]
		out = append(out, byte(0x80|(len(lit)-1)))
		out = append(out, lit...)
	}
	return out
}

func rleDecode(data []byte, outputSize int) []byte {
	out := make([]byte, 0, outputSize)
	i := 0
	for i < len(data) && len(out) < outputSize {
		tag := data[i]
		i++
		if tag&0x80 != 0 {
			n := int(tag&0x7f) + 1
			out = append(out, data[i:i+n]...)
			i += n
			continue
		}
		n := int(tag) + 1
		if i >= len(data) {
			break
		}
		v := data[i]
		i++
		for k := 0; k < n; k++ {
			out = append(out, v)
		}
	}
	return out
}
