package asm

// label records where a source label was bound: the byte offset of the
// instruction immediately following it, and the time in effect at that
// point (spec.md §4.8: "Bind each label to the current byte_offset and
// time").
type label struct {
	Offset uint32
	Time   int32
}

// labelTable is the symbol table for one sub-program's local label
// namespace.
type labelTable struct {
	entries map[string]label
}

func newLabelTable() *labelTable {
	return &labelTable{entries: make(map[string]label)}
}

// Bind records name's offset/time, returning false (and leaving the first
// binding in place) if the name is already bound within this sub-program;
// Builder.Build reports that case as ErrorDuplicateLabel (spec.md §3:
// "labels are local to a sub-program's namespace").
func (t *labelTable) Bind(name string, offset uint32, time int32) bool {
	if _, exists := t.entries[name]; exists {
		return false
	}
	t.entries[name] = label{Offset: offset, Time: time}
	return true
}

func (t *labelTable) Lookup(name string) (label, bool) {
	l, ok := t.entries[name]
	return l, ok
}

// SymbolTable resolves 'n' (sprite) and 'N' (script) references by
// linear search over an ANM entry's name-indexed tables, mirroring
// original_source/thanm's "resolve by scanning the sprite/script array
// for a matching name" behaviour (no index is built; entry counts are
// small enough that a scan is the actual production algorithm too).
type SymbolTable struct {
	sprites []string
	scripts []string
}

// NewSymbolTable returns a table seeded with an entry's sprite and
// script name lists, in declaration order (their position is the id
// used in the assembled 'n'/'N' parameter).
func NewSymbolTable(sprites, scripts []string) *SymbolTable {
	return &SymbolTable{sprites: sprites, scripts: scripts}
}

// ResolveSprite returns the index of name within the sprite table.
func (t *SymbolTable) ResolveSprite(name string) (int32, bool) {
	for i, s := range t.sprites {
		if s == name {
			return int32(i), true
		}
	}
	return 0, false
}

// ResolveScript returns the index of name within the script table.
func (t *SymbolTable) ResolveScript(name string) (int32, bool) {
	for i, s := range t.scripts {
		if s == name {
			return int32(i), true
		}
	}
	return 0, false
}
