package archive

// Entry is one named archive member (spec.md §3): { name, stored_offset,
// uncompressed_size, compressed_size }. No per-entry key is stored: each
// family derives it (legacy from the entry's table position, marked from
// the name's extension, mainline from a hash of the name). Extra carries
// a format-specific 32-bit field; only the bit-packed family's entry
// table stores it, and every other family leaves it zero.
type Entry struct {
	Name             string
	Offset           uint32
	UncompressedSize uint32
	CompressedSize   uint32
	Extra            uint32
}
