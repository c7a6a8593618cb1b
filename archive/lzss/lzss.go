// Package lzss implements the fixed 8192-byte/13-bit-offset/4-bit-length
// LZSS dictionary codec used by the archive engine and by some instruction
// table blobs. The wire format is bespoke (not zlib/LZ4 compatible), so it
// is hand-rolled rather than built on an ecosystem compression library.
package lzss

import "github.com/danmaku-tools/dmktk/bitio"

const (
	dictSize     = 0x2000
	dictMask     = 0x1fff
	minMatch     = 3
	maxMatch     = 18
	hashSize     = 0x10000
	hashNull     = 0
	dictHeadInit = 1
)

type hashTable struct {
	hash [hashSize]uint32
	prev [dictSize]uint32
	next [dictSize]uint32
}

func generateKey(dict *[dictSize]byte, base uint32) uint32 {
	return (uint32(dict[(base+1)&dictMask])<<8|uint32(dict[(base+2)&dictMask]))^(uint32(dict[base])<<4)
}

func (h *hashTable) remove(key, offset uint32) {
	h.next[h.prev[offset]] = hashNull
	if h.prev[offset] == hashNull && h.hash[key] == offset {
		h.hash[key] = hashNull
	}
}

func (h *hashTable) add(key, offset uint32) {
	h.next[offset] = h.hash[key]
	h.prev[offset] = hashNull
	h.prev[h.hash[key]] = offset
	h.hash[key] = offset
}

// Compress encodes src and returns the LZSS bitstream. The output never
// exceeds len(src)*9/8 plus a small constant, and is deterministic for a
// given input: ties between equal-length matches are broken by preferring
// the most recently inserted dictionary position.
func Compress(src []byte) []byte {
	w := bitio.NewWriter(len(src) + 16)

	var dict [dictSize]byte
	var hash hashTable

	dictHead := uint32(dictHeadInit)
	bytesRead := 0

	waiting := 0
	for i := 0; i < maxMatch && i < len(src); i++ {
		dict[dictHeadInit+i] = src[i]
		waiting++
		bytesRead++
	}

	dictHeadKey := generateKey(&dict, dictHead)

	for waiting > 0 {
		matchLen := uint32(minMatch - 1)
		matchOffset := uint32(0)

		for offset := hash.hash[dictHeadKey]; offset != hashNull && uint32(waiting) > matchLen; offset = hash.next[offset] {
			if dict[(dictHead+matchLen)&dictMask] == dict[(offset+matchLen)&dictMask] {
				var i uint32
				for i = 0; i < matchLen && dict[(dictHead+i)&dictMask] == dict[(offset+i)&dictMask]; i++ {
				}
				if i < matchLen {
					continue
				}
				for matchLen++; matchLen < uint32(waiting) && dict[(dictHead+matchLen)&dictMask] == dict[(offset+matchLen)&dictMask]; matchLen++ {
				}
				matchOffset = offset
			}
		}

		if matchLen < minMatch {
			matchLen = 1
			w.Write1(1)
			w.Write(8, uint32(dict[dictHead]))
		} else {
			w.Write1(0)
			w.Write(13, matchOffset)
			w.Write(4, matchLen-minMatch)
		}

		for i := uint32(0); i < matchLen; i++ {
			offset := (dictHead + maxMatch) & dictMask
			if offset != hashNull {
				hash.remove(generateKey(&dict, offset), offset)
			}
			if dictHead != hashNull {
				hash.add(dictHeadKey, dictHead)
			}

			if bytesRead < len(src) {
				dict[offset] = src[bytesRead]
				bytesRead++
			} else {
				waiting--
			}

			dictHead = (dictHead + 1) & dictMask
			dictHeadKey = generateKey(&dict, dictHead)
		}
	}

	w.Write1(0)
	w.Write(13, hashNull)
	w.Write(4, 0)
	w.Finish()

	return w.Bytes()
}

// Decompress reads an LZSS bitstream from src until outputSize bytes have
// been produced or an offset-0 terminator token is encountered. A
// terminator seen before outputSize bytes are produced yields a short
// result; it is the caller's responsibility to treat that as an error if
// the exact size was expected.
func Decompress(src []byte, outputSize int) []byte {
	r := bitio.NewReader(src)

	var dict [dictSize]byte
	dictHead := uint32(dictHeadInit)

	out := make([]byte, 0, outputSize)

	for len(out) < outputSize {
		bit, err := r.Read1()
		if err != nil {
			return out
		}
		if bit != 0 {
			c, err := r.Read(8)
			if err != nil {
				return out
			}
			out = append(out, byte(c))
			dict[dictHead] = byte(c)
			dictHead = (dictHead + 1) & dictMask
			continue
		}

		matchOffset, err := r.Read(13)
		if err != nil {
			return out
		}
		matchLenRaw, err := r.Read(4)
		if err != nil {
			return out
		}
		matchLen := matchLenRaw + minMatch

		if matchOffset == 0 {
			return out
		}

		for i := uint32(0); i < matchLen; i++ {
			c := dict[(matchOffset+i)&dictMask]
			out = append(out, c)
			dict[dictHead] = c
			dictHead = (dictHead + 1) & dictMask
		}
	}

	if len(out) > outputSize {
		out = out[:outputSize]
	}

	return out
}
