// Package opcode holds the per-(version, language) mapping from numeric
// opcode to parameter-format string (spec.md §4.4). Tables are additive:
// a version's table is built by inheriting a base version's entries and
// then overlaying anything new or changed.
package opcode

import "github.com/danmaku-tools/dmktk/ir"

// Table is the opcode table for one (language, version) pair.
type Table struct {
	Language ir.Language
	Version  int
	formats  map[uint16]string
}

// NewTable returns an empty table for the given language and version.
func NewTable(lang ir.Language, version int) *Table {
	return &Table{Language: lang, Version: version, formats: make(map[uint16]string)}
}

// Set registers the format string for an opcode, overwriting any
// inherited entry.
func (t *Table) Set(opcode uint16, format string) {
	t.formats[opcode] = format
}

// Lookup returns an opcode's format string. ok is false when the opcode
// is unregistered: the disassembler falls back to a raw hex dump and the
// assembler reports UnknownOpcode (spec.md §4.4).
func (t *Table) Lookup(opcode uint16) (string, bool) {
	f, ok := t.formats[opcode]
	return f, ok
}

// InheritFrom copies every entry of base into t that t does not already
// define, implementing the "newer versions often inherit older entries"
// additive model.
func (t *Table) InheritFrom(base *Table) *Table {
	for op, format := range base.formats {
		if _, exists := t.formats[op]; !exists {
			t.formats[op] = format
		}
	}
	return t
}

// Opcodes returns the sorted set of registered opcode numbers, used by
// tooling that wants to enumerate a table (e.g. mnemonic map validation).
func (t *Table) Opcodes() []uint16 {
	out := make([]uint16, 0, len(t.formats))
	for op := range t.formats {
		out = append(out, op)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// registry holds one Table per (language, version).
type registryKey struct {
	lang    ir.Language
	version int
}

var registry = make(map[registryKey]*Table)

// Register installs t in the package-level registry, keyed by its own
// Language and Version fields.
func Register(t *Table) {
	registry[registryKey{t.Language, t.Version}] = t
}

// LookupTable returns the registered table for (lang, version), or nil if no
// table has been registered for that pair.
func LookupTable(lang ir.Language, version int) *Table {
	return registry[registryKey{lang, version}]
}
