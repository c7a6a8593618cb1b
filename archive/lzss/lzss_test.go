package lzss_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/danmaku-tools/dmktk/archive/lzss"
)

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sizes := []int{0, 1, 2, 17, 18, 19, 100, 4096, 8192, 20000}
	for _, size := range sizes {
		src := make([]byte, size)
		rng.Read(src)
		compressed := lzss.Compress(src)
		got := lzss.Decompress(compressed, size)
		if !bytes.Equal(got, src) {
			t.Fatalf("round trip mismatch at size %d", size)
		}
	}
}

func TestRoundTripRepeatingPattern(t *testing.T) {
	src := bytes.Repeat([]byte("ABCDEFG"), 500)
	compressed := lzss.Compress(src)
	got := lzss.Decompress(compressed, len(src))
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch for repeating pattern")
	}
	if len(compressed) >= len(src) {
		t.Fatalf("expected repeating data to compress, got %d >= %d", len(compressed), len(src))
	}
}

func TestEmptyInputProducesTerminatorOnly(t *testing.T) {
	out := lzss.Compress(nil)
	// 1 flag bit (0) + 13 bit offset (0) + 4 bit length (0) = 18 bits -> 3 bytes.
	if len(out) != 3 {
		t.Fatalf("expected 3 bytes for empty input, got %d: %x", len(out), out)
	}
	got := lzss.Decompress(out, 0)
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}

func TestOutputNeverExceedsNineEighthsPlusConstant(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	src := make([]byte, 1<<16)
	rng.Read(src)
	compressed := lzss.Compress(src)
	limit := len(src)*9/8 + 32
	if len(compressed) > limit {
		t.Fatalf("compressed size %d exceeds bound %d", len(compressed), limit)
	}
}
