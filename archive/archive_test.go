package archive_test

import (
	"bytes"
	"testing"

	"github.com/danmaku-tools/dmktk/archive"
)

// TestArchiveOneEntryMainline is spec.md §8's scenario 3 verbatim: create
// version 14, add entry "a" with body "hello", close, re-open, read entry
// 0, and check both the body and the name round-trip.
func TestArchiveOneEntryMainline(t *testing.T) {
	a := archive.Create(14)
	if err := a.AddEntry("a", []byte("hello")); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	data, err := a.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := archive.Open(14, data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(reopened.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(reopened.Entries))
	}
	if reopened.Entries[0].Name != "a" {
		t.Fatalf("got name %q, want %q", reopened.Entries[0].Name, "a")
	}
	body, err := reopened.ReadEntry(0)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(body, []byte("hello")) {
		t.Fatalf("got body %q, want %q", body, "hello")
	}
}

// roundTripVersions covers one representative version per family (spec.md
// §4.5's four pipelines).
var roundTripVersions = map[string]int{
	"legacy":     3,
	"bit-packed": 6,
	"marked":     8,
	"mainline":   14,
}

func TestArchiveRoundTripPerFamily(t *testing.T) {
	entries := map[string]string{
		"a.txt":   "hello, world",
		"b.anm":   "",
		"long.ecl": string(bytes.Repeat([]byte("xyzzy"), 200)),
	}

	for family, version := range roundTripVersions {
		version := version
		t.Run(family, func(t *testing.T) {
			a := archive.Create(version)
			for _, name := range []string{"a.txt", "b.anm", "long.ecl"} {
				if err := a.AddEntry(name, []byte(entries[name])); err != nil {
					t.Fatalf("AddEntry(%q): %v", name, err)
				}
			}

			data, err := a.Close()
			if err != nil {
				t.Fatalf("Close: %v", err)
			}

			reopened, err := archive.Open(version, data)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if len(reopened.Entries) != len(entries) {
				t.Fatalf("got %d entries, want %d", len(reopened.Entries), len(entries))
			}
			for i, e := range reopened.Entries {
				want, ok := entries[e.Name]
				if !ok {
					t.Fatalf("entry %d: unexpected name %q", i, e.Name)
				}
				body, err := reopened.ReadEntry(i)
				if err != nil {
					t.Fatalf("ReadEntry(%d): %v", i, err)
				}
				if string(body) != want {
					t.Fatalf("entry %q: got body %q, want %q", e.Name, body, want)
				}
			}
		})
	}
}

func TestArchiveFamilyMatchesVersion(t *testing.T) {
	cases := []struct {
		version int
		want    archive.Family
	}{
		{1, archive.FamilyLegacy},
		{5, archive.FamilyLegacy},
		{6, archive.FamilyBitPacked},
		{7, archive.FamilyBitPacked},
		{8, archive.FamilyMarked},
		{9, archive.FamilyMarked},
		{10, archive.FamilyMainline},
		{21, archive.FamilyMainline},
	}
	for _, c := range cases {
		a := archive.Create(c.version)
		if a.Family != c.want {
			t.Fatalf("version %d: got family %v, want %v", c.version, a.Family, c.want)
		}
	}
}

func TestReadEntryRejectsOutOfRangeIndex(t *testing.T) {
	a := archive.Create(14)
	if err := a.AddEntry("a", []byte("x")); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if _, err := a.ReadEntry(1); err == nil {
		t.Fatal("expected an error reading an out-of-range entry index")
	}
}
