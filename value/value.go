// Package value implements the tagged Value union and its binary/text
// codecs (spec.md §3, §4.3): the primitive types instructions and textual
// bytecode source share.
package value

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danmaku-tools/dmktk/archive/crypt"
)

// Tag identifies a Value's interpretation. The letter is the same one
// used in opcode format strings and in error messages, matching the
// original format-string vocabulary.
type Tag byte

const (
	TagByteU   Tag = 'b' // unsigned byte
	TagByteS   Tag = 'c' // signed byte
	TagU16     Tag = 'u' // unsigned 16-bit
	TagS16     Tag = 's' // signed 16-bit
	TagU32     Tag = 'U' // unsigned 32-bit
	TagS32     Tag = 'S' // signed 32-bit
	TagFloat   Tag = 'f' // IEEE-754 binary32
	TagDouble  Tag = 'd' // IEEE-754 binary64
	TagString  Tag = 'z' // NUL-terminated text
	TagBlob    Tag = 'm' // length-prefixed opaque bytes
	TagOffset  Tag = 'o' // jump-target offset, wire width of S
	TagTime    Tag = 't' // label time, wire width of S
	TagSprite  Tag = 'n' // sprite-number reference, wire width of S
	TagScript  Tag = 'N' // script-number reference, wire width of S
	TagCast    Tag = 'D' // typed cast pair
	TagXored   Tag = 'x' // like 'm' but XOR-descrambled with a known key
)

// Format-string modifiers (spec.md §4.3), not value tags themselves.
const (
	FormatOptional = '?'
	FormatRepeat   = '*'
)

// Value is the tagged union described in spec.md §3. Only the field(s)
// matching Tag are meaningful.
//
// D is 8 bytes on the wire: a 4-byte cast-kind tag (one of the ASCII
// pairs "ff", "fi", "if", "ii", read as a little-endian uint32) followed
// by one raw 32-bit word, reinterpreted by the consumer as a float or an
// int32 according to the tag's second letter (original_source/thecl10.c's
// th10_stringify_param resolves this ambiguity in spec.md §3's looser
// "16-bit type prefix" wording).
type Value struct {
	Tag       Tag
	Int       int64  // b, c, u, s, U, S, o, t, n, N (sign-extended)
	Float     float64
	Str       string // z
	Blob      []byte // m, x
	CastType  uint32 // D: the 4-byte cast-kind tag
	CastValue int32  // D: the raw 32-bit word (bit-reinterpret per CastType)
}

// FormatTag resolves one character of an opcode format string (spec.md
// §4.3) to the Tag it denotes. 'i' is not in the value-tag table but
// appears in format strings such as "oi" (spec.md §4.4); the original
// disassembler treats it as a plain signed 32-bit integer identical to
// 'S', so FormatTag aliases it there rather than inventing a ninth signed
// integer representation.
func FormatTag(ch byte) (Tag, bool) {
	switch Tag(ch) {
	case TagByteU, TagByteS, TagU16, TagS16, TagU32, TagS32, TagFloat, TagDouble,
		TagString, TagBlob, TagOffset, TagTime, TagSprite, TagScript, TagCast, TagXored:
		return Tag(ch), true
	case 'i':
		return TagS32, true
	default:
		return 0, false
	}
}

// Width returns the fixed binary width of tag t, or -1 for variable-width
// tags (z, m, x).
func Width(t Tag) int {
	switch t {
	case TagByteU, TagByteS:
		return 1
	case TagU16, TagS16:
		return 2
	case TagU32, TagS32, TagOffset, TagTime, TagSprite, TagScript:
		return 4
	case TagFloat:
		return 4
	case TagDouble:
		return 8
	case TagCast:
		return 8 // 4-byte cast-kind tag + one 32-bit word
	default:
		return -1
	}
}

// FromBytes decodes one Value of the given tag from the front of data,
// returning the value and the number of bytes consumed. For the
// fixed-width numeric tags this is Width(t); for z it consumes the whole
// of data (callers slice the format string so that 'z' only sees its own
// field); for m/x it reads a 4-byte little-endian length prefix followed
// by that many bytes (x additionally XOR-descrambled with
// crypt.InstructionBlobSchedule), mirroring decodeParams' own inline
// parsing of the same wire shape.
func FromBytes(data []byte, t Tag) (Value, int, error) {
	need := Width(t)
	if need >= 0 {
		if len(data) < need {
			return Value{}, 0, fmt.Errorf("value: short read for tag %q: need %d, have %d", t, need, len(data))
		}
	}

	v := Value{Tag: t}
	switch t {
	case TagByteU:
		v.Int = int64(data[0])
	case TagByteS:
		v.Int = int64(int8(data[0]))
	case TagU16:
		v.Int = int64(binary.LittleEndian.Uint16(data))
	case TagS16:
		v.Int = int64(int16(binary.LittleEndian.Uint16(data)))
	case TagU32:
		v.Int = int64(binary.LittleEndian.Uint32(data))
	case TagS32, TagOffset, TagTime, TagSprite, TagScript:
		// o/t/n/N are all serialized as S (spec.md §3's "(serialized as S)"
		// notes); original_source/thecl10.c's th10_value_from_data decodes
		// 'o' by delegating to the 'S' case rather than treating it as
		// unsigned.
		v.Int = int64(int32(binary.LittleEndian.Uint32(data)))
	case TagFloat:
		v.Float = float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
	case TagDouble:
		v.Float = math.Float64frombits(binary.LittleEndian.Uint64(data))
	case TagCast:
		v.CastType = binary.LittleEndian.Uint32(data)
		v.CastValue = int32(binary.LittleEndian.Uint32(data[4:]))
	case TagString:
		v.Str = string(data)
		return v, len(data), nil
	case TagBlob, TagXored:
		if len(data) < 4 {
			return Value{}, 0, fmt.Errorf("value: short read for tag %q length prefix: need 4, have %d", t, len(data))
		}
		length := binary.LittleEndian.Uint32(data)
		if uint64(len(data)) < 4+uint64(length) {
			return Value{}, 0, fmt.Errorf("value: short read for tag %q: need %d, have %d", t, 4+length, len(data))
		}
		blob := append([]byte(nil), data[4:4+length]...)
		if t == TagXored {
			blob = crypt.InstructionBlobSchedule(length).Apply(blob)
		}
		v.Blob = blob
		return v, 4 + int(length), nil
	default:
		return Value{}, 0, fmt.Errorf("value: invalid tag %q", t)
	}
	return v, need, nil
}

// ToBytes appends the binary encoding of v to dst and returns the result.
func ToBytes(dst []byte, v Value) ([]byte, error) {
	switch v.Tag {
	case TagByteU:
		return append(dst, byte(v.Int)), nil
	case TagByteS:
		return append(dst, byte(int8(v.Int))), nil
	case TagU16, TagS16:
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v.Int))
		return append(dst, b[:]...), nil
	case TagU32, TagS32, TagOffset, TagTime, TagSprite, TagScript:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v.Int))
		return append(dst, b[:]...), nil
	case TagFloat:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v.Float)))
		return append(dst, b[:]...), nil
	case TagDouble:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v.Float))
		return append(dst, b[:]...), nil
	case TagCast:
		var b [8]byte
		binary.LittleEndian.PutUint32(b[0:], v.CastType)
		binary.LittleEndian.PutUint32(b[4:], uint32(v.CastValue))
		return append(dst, b[:]...), nil
	case TagString:
		return append(dst, []byte(v.Str)...), nil
	case TagBlob, TagXored:
		blob := v.Blob
		if v.Tag == TagXored {
			blob = crypt.InstructionBlobSchedule(uint32(len(blob))).Apply(blob)
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(len(blob)))
		dst = append(dst, b[:]...)
		return append(dst, blob...), nil
	default:
		return nil, fmt.Errorf("value: invalid tag %q", v.Tag)
	}
}

// Size returns the number of bytes v would occupy on the wire.
func Size(v Value) int {
	if w := Width(v.Tag); w >= 0 {
		return w
	}
	switch v.Tag {
	case TagString:
		return len(v.Str)
	case TagBlob, TagXored:
		return 4 + len(v.Blob)
	default:
		return 0
	}
}

// ToText renders v using the stable textual form for its tag.
//
// f is printed as the shortest decimal that round-trips through
// ParseFloat, suffixed "f" (spec.md §4.3); z is quoted with
// backslash-escaped quotes; the remaining numeric tags print as plain
// decimal integers. m has no stable textual form (spec.md §8 excludes it
// from the text round-trip property) and is rendered as a quoted string
// of its raw bytes for diagnostic purposes only.
func ToText(v Value) string {
	switch v.Tag {
	case TagFloat:
		return shortestFloat(v.Float, 32) + "f"
	case TagDouble:
		return shortestFloat(v.Float, 64)
	case TagString:
		return quoteText(v.Str)
	case TagBlob, TagXored:
		return quoteText(string(v.Blob))
	case TagCast:
		return fmt.Sprintf("D(%d,%d)", v.CastType, v.CastValue)
	default:
		return strconv.FormatInt(v.Int, 10)
	}
}

// FromText parses text into a Value of tag t, the inverse of ToText for
// every tag other than m.
func FromText(text string, t Tag) (Value, error) {
	v := Value{Tag: t}
	switch t {
	case TagFloat:
		text = strings.TrimSuffix(text, "f")
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid float %q: %w", text, err)
		}
		v.Float = f
		return v, nil
	case TagDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid double %q: %w", text, err)
		}
		v.Float = f
		return v, nil
	case TagString:
		s, err := unquoteText(text)
		if err != nil {
			return Value{}, err
		}
		v.Str = s
		return v, nil
	case TagBlob, TagXored:
		s, err := unquoteText(text)
		if err != nil {
			return Value{}, err
		}
		v.Blob = []byte(s)
		return v, nil
	case TagByteU, TagByteS, TagU16, TagS16, TagU32, TagS32, TagOffset, TagTime, TagSprite, TagScript:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid integer %q for tag %q: %w", text, t, err)
		}
		v.Int = n
		return v, nil
	case TagCast:
		var castType uint32
		var castValue int32
		if _, err := fmt.Sscanf(text, "D(%d,%d)", &castType, &castValue); err != nil {
			return Value{}, fmt.Errorf("value: invalid cast %q: %w", text, err)
		}
		v.CastType = castType
		v.CastValue = castValue
		return v, nil
	default:
		return Value{}, fmt.Errorf("value: invalid tag %q", t)
	}
}

// shortestFloat finds the shortest decimal representation of f that
// re-parses (at the given bit size) to exactly f, trying 1..50 fractional
// digits as spec.md §4.3 directs.
func shortestFloat(f float64, bitSize int) string {
	for prec := 1; prec <= 50; prec++ {
		s := strconv.FormatFloat(f, 'f', prec, bitSize)
		parsed, err := strconv.ParseFloat(s, bitSize)
		if err == nil && parsed == f {
			return trimTrailingZeros(s)
		}
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

// trimTrailingZeros drops redundant trailing fractional zeros while
// keeping at least one digit after the decimal point.
func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

func quoteText(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func unquoteText(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("value: malformed quoted text %q", s)
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			i++
			b.WriteByte(inner[i])
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}
