package integrity_test

import (
	"path/filepath"
	"testing"

	"github.com/danmaku-tools/dmktk/archive/integrity"
)

func TestVerifyAcceptsMatchingBody(t *testing.T) {
	idx := integrity.NewIndex()
	idx.Record("a.txt", []byte("hello"))

	ok, err := idx.Verify("a.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected matching body to verify")
	}
}

func TestVerifyRejectsChangedBody(t *testing.T) {
	idx := integrity.NewIndex()
	idx.Record("a.txt", []byte("hello"))

	ok, err := idx.Verify("a.txt", []byte("hellx"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected a changed body to fail verification")
	}
}

func TestVerifyRejectsUnrecordedName(t *testing.T) {
	idx := integrity.NewIndex()
	if _, err := idx.Verify("missing.txt", []byte("x")); err == nil {
		t.Fatal("expected an error for an unrecorded name")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := integrity.NewIndex()
	idx.Record("a.txt", []byte("hello"))
	idx.Record("b.anm", []byte{1, 2, 3})

	path := filepath.Join(t.TempDir(), "index.toml")
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := integrity.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for name, want := range idx.Entries {
		got, ok := loaded.Entries[name]
		if !ok {
			t.Fatalf("loaded index missing entry %q", name)
		}
		if got != want {
			t.Fatalf("entry %q: got hash %d, want %d", name, got, want)
		}
	}
}
