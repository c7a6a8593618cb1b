// Package archive implements the content-addressed container format
// spec.md §4.5 describes: per-entry LZSS compression, per-entry XOR-ladder
// obfuscation, and a version-parameterised entry-table layout, unified
// across four pipeline families (legacy, bit-packed, marked, mainline).
package archive

import (
	"fmt"
	"sync"
)

// codec implements one family's encode/decode pipeline (spec.md §4.5's
// four numbered pipelines). Everything except the shared write cursor may
// run concurrently across entries (spec.md §5): encodeBody/decodeBody
// take no lock themselves, and Archive.AddEntry only holds a.mu for the
// bookkeeping that actually touches shared state.
type codec interface {
	nameFlags() NameFlags
	decodeImage(a *Archive) error
	encodeImage(a *Archive) ([]byte, error)
	encodeBody(name string, body []byte) (encoded []byte, uncompressedSize, compressedSize, extra uint32, err error)
	decodeBody(index int, e Entry, raw []byte) ([]byte, error)
}

// Archive is an open or in-progress archive (spec.md §3): { version,
// entries[], body_stream }.
type Archive struct {
	Version int
	Family  Family

	Entries []Entry

	raw    []byte   // full source bytes, set by Open; entry bodies are sliced from this
	bodies [][]byte // encoded body bytes awaiting layout, set by AddEntry; index-aligned with Entries

	codec codec
	mu    sync.Mutex
}

func newCodec(family Family, version int) codec {
	switch family {
	case FamilyLegacy:
		return newLegacyCodec(version)
	case FamilyBitPacked:
		return newBitPackedCodec(version)
	case FamilyMarked:
		return newMarkedCodec(version)
	default:
		return newMainlineCodec(version)
	}
}

// Open parses an existing archive image: header, entry table (expanding
// it through LZSS/crypt as the family requires), and the ordered entry
// list. Entry bodies are not decoded until ReadEntry is called.
func Open(version int, data []byte) (*Archive, error) {
	a := &Archive{Version: version, Family: familyFor(version), raw: data}
	a.codec = newCodec(a.Family, version)
	if err := a.codec.decodeImage(a); err != nil {
		return nil, fmt.Errorf("archive: open version %d: %w", version, err)
	}
	return a, nil
}

// Create returns an empty archive ready to accumulate entries via
// AddEntry; its final bytes are produced by Close.
func Create(version int) *Archive {
	a := &Archive{Version: version, Family: familyFor(version)}
	a.codec = newCodec(a.Family, version)
	return a
}

// AddEntry normalises name per the family's flags, runs the body through
// the version-specific encode pipeline, and records the entry. Safe to
// call concurrently: the encode pipeline itself runs outside any lock,
// and only the final append to the shared entry/body lists is
// serialised (spec.md §5's "shared stored_offset counter" contract,
// simplified here since final offsets are only assigned once at Close).
func (a *Archive) AddEntry(name string, body []byte) error {
	normalized, err := NormalizeName(name, a.codec.nameFlags())
	if err != nil {
		return fmt.Errorf("archive: add entry: %w", err)
	}

	encoded, usize, csize, extra, err := a.codec.encodeBody(normalized, body)
	if err != nil {
		return fmt.Errorf("archive: encode entry %q: %w", normalized, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, Entry{
		Name:             normalized,
		UncompressedSize: usize,
		CompressedSize:   csize,
		Extra:            extra,
	})
	a.bodies = append(a.bodies, encoded)
	return nil
}

// ReadEntry decodes entry i's body from the archive's source image.
// Per-entry failures are independent: a caller doing bulk extraction can
// keep going past one entry's error (spec.md §4.10).
func (a *Archive) ReadEntry(i int) ([]byte, error) {
	if i < 0 || i >= len(a.Entries) {
		return nil, fmt.Errorf("archive: entry index %d out of range", i)
	}
	e := a.Entries[i]
	if int(e.Offset)+int(e.CompressedSize) > len(a.raw) {
		return nil, fmt.Errorf("archive: entry %q: stored range runs past end of archive", e.Name)
	}
	raw := a.raw[e.Offset : e.Offset+e.CompressedSize]
	body, err := a.codec.decodeBody(i, e, raw)
	if err != nil {
		return nil, fmt.Errorf("archive: entry %q: %w", e.Name, err)
	}
	return body, nil
}

// Close lays entry bodies out in Entries order (so offsets increase with
// the entry index and no separate sort is performed) and serialises the
// full archive image: header, entry table, and bodies, per the family's
// pipeline (spec.md §4.5's close step).
func (a *Archive) Close() ([]byte, error) {
	out, err := a.codec.encodeImage(a)
	if err != nil {
		return nil, fmt.Errorf("archive: close: %w", err)
	}
	return out, nil
}
