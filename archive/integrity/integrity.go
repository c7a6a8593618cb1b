// Package integrity gives spec.md §1's "content-addressed container"
// language literal teeth without touching the archive on-disk format:
// a sidecar index maps entry name to an xxHash64 of its body, recorded
// at add-time and checked at extraction-time by `dmktk verify`.
package integrity

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/cespare/xxhash/v2"
)

// Index is a name -> content-hash sidecar, independent of any one
// Archive's in-memory or on-disk state.
type Index struct {
	Entries map[string]uint64 `toml:"entries"`
}

// NewIndex returns an empty index ready to Record into.
func NewIndex() *Index {
	return &Index{Entries: make(map[string]uint64)}
}

// Record hashes body and stores it under name, overwriting any prior
// hash recorded for that name.
func (idx *Index) Record(name string, body []byte) {
	idx.Entries[name] = xxhash.Sum64(body)
}

// Verify reports whether body's hash matches the one recorded for name.
// A name with no recorded hash is reported as a mismatch rather than
// silently passing, since an unrecorded entry gives no actual
// assurance.
func (idx *Index) Verify(name string, body []byte) (bool, error) {
	want, ok := idx.Entries[name]
	if !ok {
		return false, fmt.Errorf("integrity: no recorded hash for %q", name)
	}
	return xxhash.Sum64(body) == want, nil
}

// onDiskIndex mirrors Index but stores each hash as a hex string: TOML
// integers are signed 64-bit, so a raw uint64 with its high bit set
// would not round-trip through the encoder/decoder faithfully.
type onDiskIndex struct {
	Entries map[string]string `toml:"entries"`
}

// Load reads an index previously written by Save.
func Load(path string) (*Index, error) {
	var onDisk onDiskIndex
	if _, err := toml.DecodeFile(path, &onDisk); err != nil {
		return nil, fmt.Errorf("integrity: load %s: %w", path, err)
	}
	idx := NewIndex()
	for name, hex := range onDisk.Entries {
		hash, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("integrity: load %s: entry %q: %w", path, name, err)
		}
		idx.Entries[name] = hash
	}
	return idx, nil
}

// Save writes idx to path, creating or truncating it.
func (idx *Index) Save(path string) error {
	onDisk := onDiskIndex{Entries: make(map[string]string, len(idx.Entries))}
	for name, hash := range idx.Entries {
		onDisk.Entries[name] = strconv.FormatUint(hash, 16)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("integrity: save %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(onDisk); err != nil {
		return fmt.Errorf("integrity: encode %s: %w", path, err)
	}
	return nil
}
