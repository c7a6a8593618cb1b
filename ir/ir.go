// Package ir is the in-memory bytecode representation shared by the ECL
// and ANM languages (spec.md §3, §4.6). Instructions and labels live in a
// per-sub-program arena: Sub.Nodes owns every node, and a label resolves
// to a plain slice index rather than a pointer, so edits during assembly
// never invalidate a previously recorded reference (spec.md §9).
package ir

// Language distinguishes which bytecode dialect a Program holds.
type Language int

const (
	LangECL Language = iota
	LangANM
)

func (l Language) String() string {
	if l == LangANM {
		return "ANM"
	}
	return "ECL"
}

// Param is one instruction operand: a typed value, tagged as either an
// immediate or a stack (register) reference.
type Param struct {
	Tag        byte // the value-codec tag (value.Tag), kept untyped here to avoid an import cycle with the text layer
	Int        int64
	Float      float64
	Str        string
	Blob       []byte
	CastType   uint32 // set only when Tag == 'D' (value.TagCast)
	CastValue  int32  // set only when Tag == 'D' (value.TagCast)
	IsStackRef bool
	Label      string // set during text parsing for 'o'/'t' params, resolved to Int during assembly pass 2
}

// Instruction is one bytecode instruction (spec.md §3).
type Instruction struct {
	Opcode       uint16
	Time         int32
	RankMask     uint8 // bits 0-3 difficulty (E N H L), bits 4-7 auxiliary flags; 0xff = all active
	Size         uint16
	StackRefMask uint8 // bit i mirrors Params[i].IsStackRef
	Params       []Param

	// Offset is the instruction's byte offset within its sub-program,
	// known after disassembly (from the source image) or after assembler
	// pass 1 (from the running byte_offset counter).
	Offset uint32
}

// NodeKind distinguishes the four kinds of entries a sub-program's
// instruction list can hold; only Instruction ever reaches the binary
// encoding (spec.md §3: "these never appear in binary").
type NodeKind int

const (
	NodeInstruction NodeKind = iota
	NodeLabel
	NodeTimeMarker
	NodeRankMarker
)

// Node is one entry in a Sub's arena-ordered instruction list.
type Node struct {
	Kind NodeKind

	Instruction *Instruction // NodeInstruction

	LabelName string // NodeLabel: binds to the offset of the next real instruction

	MarkerTime int32 // NodeTimeMarker
	Relative   bool  // NodeTimeMarker: true for "+N:" cumulative time, false for "N:" absolute

	MarkerRank uint8 // NodeRankMarker
}

// Sub is one named block of instructions (spec.md §3). Labels are local
// to a sub-program's namespace.
type Sub struct {
	Name         string
	Nodes        []Node
	Labels       map[string]int // label name -> index into Nodes
	Locals       []string
	Arity        int
	StackSize    int
	OffsetInFile uint32
}

// NewSub returns an empty sub-program ready to accumulate nodes.
func NewSub(name string) *Sub {
	return &Sub{Name: name, Labels: make(map[string]int)}
}

// AddInstruction appends an instruction node and returns its index.
func (s *Sub) AddInstruction(inst *Instruction) int {
	s.Nodes = append(s.Nodes, Node{Kind: NodeInstruction, Instruction: inst})
	return len(s.Nodes) - 1
}

// AddLabel appends a label node bound to the given name and records it in
// the symbol table. Label names must be unique within a sub-program.
func (s *Sub) AddLabel(name string) int {
	idx := len(s.Nodes)
	s.Nodes = append(s.Nodes, Node{Kind: NodeLabel, LabelName: name})
	s.Labels[name] = idx
	return idx
}

// Instructions returns only the instruction nodes, in order, skipping
// labels and markers.
func (s *Sub) Instructions() []*Instruction {
	out := make([]*Instruction, 0, len(s.Nodes))
	for i := range s.Nodes {
		if s.Nodes[i].Kind == NodeInstruction {
			out = append(out, s.Nodes[i].Instruction)
		}
	}
	return out
}

// ECLProgram is the ECL-language Program (spec.md §3).
type ECLProgram struct {
	Version  int
	AnimRefs []string
	EcliRefs []string
	Subs     []*Sub
	Extras   [][]byte
}

// Sprite is one entry in an ANM entry's sprite table.
type Sprite struct {
	ID     int32
	X, Y   float32
	W, H   float32
}

// AnmScript pairs a script id with its instruction sub-program.
type AnmScript struct {
	ID  int32
	Sub *Sub
}

// PixelBlob is an ANM entry's optional "THTX" texture payload. Width *
// height * bytes-per-pixel is not cross-checked against Size: some texture
// entries in the wild have a declared size that doesn't match the
// dimensions, and the declared Size is what must be trusted (spec.md §9).
type PixelBlob struct {
	Format uint16
	Width  uint16
	Height uint16
	Size   uint32
	Pixels []byte
}

// AnmEntry is one linked-list node of an ANM file (spec.md §6): a header,
// a sprite table, a set of named scripts, and an optional pixel blob.
type AnmEntry struct {
	Name         string
	Width        uint16
	Height       uint16
	Format       uint16
	SpriteTable  []Sprite
	Scripts      []AnmScript
	Pixels       *PixelBlob
	HasData      bool // false for entries that share pixel data with a previous entry
}

// AnmProgram is the ANM-language Program (spec.md §3).
type AnmProgram struct {
	Version     int
	Entries     []*AnmEntry
	SpriteTable []Sprite
	ScriptTable []AnmScript
	PixelBlobs  []*PixelBlob
}
