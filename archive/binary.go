package archive

import "encoding/binary"

func getU32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

func appendU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendU16(dst []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

func appendNulString(dst []byte, s string) []byte {
	dst = append(dst, []byte(s)...)
	return append(dst, 0)
}

// readNulString reads a NUL-terminated string starting at data[pos],
// returning the string and the position just past the terminator.
func readNulString(data []byte, pos int) (string, int, bool) {
	start := pos
	for pos < len(data) && data[pos] != 0 {
		pos++
	}
	if pos >= len(data) {
		return "", pos, false
	}
	return string(data[start:pos]), pos + 1, true
}
