package value_test

import (
	"testing"

	"github.com/danmaku-tools/dmktk/value"
)

func TestBinaryRoundTrip(t *testing.T) {
	cases := []value.Value{
		{Tag: value.TagByteU, Int: 200},
		{Tag: value.TagByteS, Int: -5},
		{Tag: value.TagU16, Int: 60000},
		{Tag: value.TagS16, Int: -1234},
		{Tag: value.TagU32, Int: 4000000000},
		{Tag: value.TagS32, Int: -123456},
		{Tag: value.TagFloat, Float: 3.5},
		{Tag: value.TagDouble, Float: 2.718281828},
		{Tag: value.TagOffset, Int: 16},
		{Tag: value.TagTime, Int: -1},
		{Tag: value.TagCast, CastType: 0x6969, CastValue: -7},
	}
	for _, v := range cases {
		bytes, err := value.ToBytes(nil, v)
		if err != nil {
			t.Fatalf("ToBytes(%v): %v", v, err)
		}
		got, n, err := value.FromBytes(bytes, v.Tag)
		if err != nil {
			t.Fatalf("FromBytes: %v", err)
		}
		if n != len(bytes) {
			t.Fatalf("consumed %d, want %d", n, len(bytes))
		}
		if got.Int != v.Int || got.Float != v.Float || got.CastType != v.CastType || got.CastValue != v.CastValue {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, v)
		}
	}
}

func TestBlobAndXoredRoundTripThroughBytes(t *testing.T) {
	cases := []value.Value{
		{Tag: value.TagBlob, Blob: []byte("raw bytes, no crypt")},
		{Tag: value.TagXored, Blob: []byte("hello, world")},
	}
	for _, v := range cases {
		bytes, err := value.ToBytes(nil, v)
		if err != nil {
			t.Fatalf("ToBytes(%v): %v", v, err)
		}
		if len(bytes) != value.Size(v) {
			t.Fatalf("ToBytes produced %d bytes, Size reports %d", len(bytes), value.Size(v))
		}
		got, n, err := value.FromBytes(bytes, v.Tag)
		if err != nil {
			t.Fatalf("FromBytes: %v", err)
		}
		if n != len(bytes) {
			t.Fatalf("consumed %d, want %d", n, len(bytes))
		}
		if string(got.Blob) != string(v.Blob) {
			t.Fatalf("blob round trip mismatch: got %q want %q", got.Blob, v.Blob)
		}
	}
}

func TestXoredBlobIsScrambledOnWire(t *testing.T) {
	v := value.Value{Tag: value.TagXored, Blob: []byte("plaintext")}
	bytes, err := value.ToBytes(nil, v)
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	wireBlob := bytes[4:]
	if string(wireBlob) == string(v.Blob) {
		t.Fatalf("xored blob was written unscrambled")
	}
}

func TestTextRoundTripExcludingBlob(t *testing.T) {
	cases := []value.Value{
		{Tag: value.TagByteU, Int: 7},
		{Tag: value.TagByteS, Int: -7},
		{Tag: value.TagU16, Int: 1000},
		{Tag: value.TagS16, Int: -1000},
		{Tag: value.TagU32, Int: 123456},
		{Tag: value.TagS32, Int: -123456},
		{Tag: value.TagFloat, Float: float64(float32(0.1))},
		{Tag: value.TagFloat, Float: -16},
		{Tag: value.TagDouble, Float: 123.456789},
		{Tag: value.TagString, Str: `hello "world"`},
		{Tag: value.TagOffset, Int: 48},
		{Tag: value.TagTime, Int: -5},
		{Tag: value.TagSprite, Int: 3},
		{Tag: value.TagScript, Int: 9},
		{Tag: value.TagCast, CastType: 0x6669, CastValue: 42},
	}
	for _, v := range cases {
		text := value.ToText(v)
		got, err := value.FromText(text, v.Tag)
		if err != nil {
			t.Fatalf("FromText(%q, %q): %v", text, v.Tag, err)
		}
		if got.Int != v.Int || got.Float != v.Float || got.Str != v.Str || got.CastType != v.CastType || got.CastValue != v.CastValue {
			t.Fatalf("text round trip mismatch for %+v: text=%q got=%+v", v, text, got)
		}
	}
}

func TestFloatTextHasShortestRoundTrippingForm(t *testing.T) {
	v := value.Value{Tag: value.TagFloat, Float: 16}
	text := value.ToText(v)
	if text != "16.0f" {
		t.Fatalf("expected 16.0f, got %q", text)
	}
}

func TestWidthTable(t *testing.T) {
	widths := map[value.Tag]int{
		value.TagByteU:  1,
		value.TagByteS:  1,
		value.TagU16:    2,
		value.TagS16:    2,
		value.TagU32:    4,
		value.TagS32:    4,
		value.TagFloat:  4,
		value.TagDouble: 8,
		value.TagOffset: 4,
		value.TagTime:   4,
		value.TagSprite: 4,
		value.TagScript: 4,
		value.TagCast:   8,
		value.TagString: -1,
		value.TagBlob:   -1,
	}
	for tag, want := range widths {
		if got := value.Width(tag); got != want {
			t.Errorf("Width(%q) = %d, want %d", tag, got, want)
		}
	}
}

func TestShortReadIsHardFailure(t *testing.T) {
	if _, _, err := value.FromBytes([]byte{1, 2}, value.TagU32); err == nil {
		t.Fatalf("expected short-read error")
	}
}
