package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/mnemonic"
	"github.com/danmaku-tools/dmktk/opcode"
	"github.com/danmaku-tools/dmktk/value"
)

// Dialect selects an instruction header layout's fixed size, mirroring
// disasm's ECLDialect/AnmDialect split (spec.md §4.8: "ECL v10+ uses a
// fixed 16-byte instruction header; ECL v6-v9 uses a 12-byte header; ANM
// v0 uses a 4-byte header" -- ANM's v0 on-disk header is 6 bytes, but the
// encoded size here only ever concerns the fields the assembler itself
// must lay out before the parameter blob, which is what HeaderSize
// reports).
type Dialect int

const (
	DialectECLLegacy Dialect = iota
	DialectECLMainline
	DialectAnmV0
	DialectAnmMainline
)

func (d Dialect) HeaderSize() int {
	switch d {
	case DialectECLLegacy:
		return 12
	case DialectECLMainline:
		return 16
	case DialectAnmV0:
		return 6
	case DialectAnmMainline:
		return 8
	default:
		return 0
	}
}

// rankLetterBits maps spec.md §6's rank-mask letters to their bit
// position, grounded on original_source/thecl10.c's RANK_* constants.
var rankLetterBits = map[byte]uint8{
	'E': 1 << 0,
	'N': 1 << 1,
	'H': 1 << 2,
	'L': 1 << 3,
	'W': 1 << 4,
	'X': 1 << 5,
	'Y': 1 << 6,
	'Z': 1 << 7,
}

// parseRankMask converts a "!ENHL"-style mask (letters already stripped
// of the leading '!') into its bitfield, defaulting unset bits to 0.
// An empty mask means "all ranks" (0xff), matching the textual format's
// convention that an instruction with no explicit rank statement applies
// everywhere.
func parseRankMask(letters string) (uint8, error) {
	if letters == "" {
		return 0xff, nil
	}
	var mask uint8
	for i := 0; i < len(letters); i++ {
		bit, ok := rankLetterBits[letters[i]]
		if !ok {
			return 0, fmt.Errorf("asm: unrecognised rank letter %q", letters[i])
		}
		mask |= bit
	}
	return mask, nil
}

// resolveMnemonic turns a statement's mnemonic text into a numeric
// opcode. Only the literal "ins_<n>" form is supported directly; a named
// mnemonic map (spec.md §4.5's !ins_names) is a lookup a caller can layer
// on top by pre-rewriting Stmt.Mnemonic before calling BuildSub, or by
// setting Builder.Mnemonics so named mnemonics resolve directly.
func resolveMnemonic(name string) (uint16, bool) {
	if !strings.HasPrefix(name, "ins_") {
		return 0, false
	}
	n, err := strconv.ParseUint(name[len("ins_"):], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

// pendingRef records one unresolved o/t/n/N parameter awaiting pass 2,
// alongside enough context to produce a precise error.
type pendingRef struct {
	inst   *ir.Instruction
	param  int
	tag    value.Tag
	name   string
	pos    Position
}

// Builder drives pass 1 of assembly (spec.md §4.8): turning a parsed
// statement list into an *ir.Sub with a running byte_offset, and
// collecting every label/symbol reference pass 2 must resolve.
type Builder struct {
	Dialect   Dialect
	Table     *opcode.Table
	Symbols   *SymbolTable
	Mnemonics *mnemonic.Map // optional; nil means only the literal "ins_<n>" form resolves

	errors  *ErrorList
	subName string
}

// NewBuilder returns a Builder for one sub-program, resolving opcodes
// against table and o/t/n/N textual argument names against symbols
// (sprite/script names may be nil when building ECL, which has no such
// references).
func NewBuilder(dialect Dialect, table *opcode.Table, symbols *SymbolTable) *Builder {
	return &Builder{Dialect: dialect, Table: table, Symbols: symbols, errors: &ErrorList{}}
}

// Errors returns every error accumulated across Build calls.
func (b *Builder) Errors() *ErrorList { return b.errors }

// Build runs pass 1 then pass 2 over stmts, producing a fully resolved,
// serialisation-ready *ir.Sub for a sub-program named subName.
func (b *Builder) Build(subName string, stmts []Stmt) *ir.Sub {
	b.subName = subName
	sub := ir.NewSub(subName)
	labels := newLabelTable()

	offset := uint32(0)
	time := int32(0)
	rank := uint8(0xff)
	var pending []pendingRef

	for _, stmt := range stmts {
		switch stmt.Kind {
		case StmtLabel:
			if !labels.Bind(stmt.LabelName, offset, time) {
				b.errors.Add(&Error{Kind: ErrorDuplicateLabel, Pos: stmt.Pos, Sub: subName, Symbol: stmt.LabelName, Message: "label already bound in this sub-program"})
				continue
			}
			sub.AddLabel(stmt.LabelName)

		case StmtTime:
			if stmt.Relative {
				time += stmt.Time
			} else {
				time = stmt.Time
			}
			sub.Nodes = append(sub.Nodes, ir.Node{Kind: ir.NodeTimeMarker, MarkerTime: time, Relative: stmt.Relative})

		case StmtRank:
			m, err := parseRankMask(stmt.RankLetters)
			if err != nil {
				b.errors.Add(&Error{Kind: ErrorSyntax, Pos: stmt.Pos, Sub: subName, Message: err.Error()})
				continue
			}
			rank = m
			sub.Nodes = append(sub.Nodes, ir.Node{Kind: ir.NodeRankMarker, MarkerRank: rank})

		case StmtInstruction:
			inst, refs, ok := b.buildInstruction(stmt, offset, time, rank)
			if !ok {
				continue
			}
			sub.AddInstruction(inst)
			pending = append(pending, refs...)
			offset += uint32(inst.Size)
		}
	}

	b.resolve(pending, labels)
	return sub
}

// buildInstruction converts one StmtInstruction into an *ir.Instruction,
// computing its final size from the header plus the width of each
// argument under the opcode's format string, and queuing any o/t/n/N
// argument for pass 2 resolution.
func (b *Builder) buildInstruction(stmt Stmt, offset uint32, time int32, rank uint8) (*ir.Instruction, []pendingRef, bool) {
	opcodeID, ok := resolveMnemonic(stmt.Mnemonic)
	if !ok && b.Mnemonics != nil {
		if id, found := b.Mnemonics.OpcodeForName(stmt.Mnemonic); found {
			opcodeID, ok = uint16(id), true
		}
	}
	if !ok {
		b.errors.Add(&Error{Kind: ErrorUnknownOpcode, Pos: stmt.Pos, Sub: b.subName, Symbol: stmt.Mnemonic, Message: "unrecognised mnemonic"})
		return nil, nil, false
	}
	format, ok := b.Table.Lookup(opcodeID)
	if !ok {
		b.errors.Add(&Error{Kind: ErrorUnknownOpcode, Pos: stmt.Pos, Sub: b.subName, Symbol: stmt.Mnemonic, Message: "opcode has no registered parameter format"})
		return nil, nil, false
	}

	tags, err := expandFormat(format, len(stmt.Args))
	if err != nil {
		b.errors.Add(&Error{Kind: ErrorArityMismatch, Pos: stmt.Pos, Sub: b.subName, Symbol: stmt.Mnemonic, Message: err.Error()})
		return nil, nil, false
	}
	if len(tags) != len(stmt.Args) {
		b.errors.Add(&Error{Kind: ErrorArityMismatch, Pos: stmt.Pos, Sub: b.subName, Symbol: stmt.Mnemonic, Message: fmt.Sprintf("expected %d arguments, got %d", len(tags), len(stmt.Args))})
		return nil, nil, false
	}

	inst := &ir.Instruction{Opcode: opcodeID, Time: time, RankMask: rank, Offset: offset}
	var pending []pendingRef
	var stackMask uint8
	size := b.Dialect.HeaderSize()

	for i, tag := range tags {
		arg := stmt.Args[i]
		param, ref, width, ok := b.buildParam(stmt.Pos, tag, arg)
		if !ok {
			return nil, nil, false
		}
		if param.IsStackRef {
			stackMask |= 1 << uint(i)
		}
		inst.Params = append(inst.Params, param)
		if ref != nil {
			ref.param = i
			ref.inst = inst
			pending = append(pending, *ref)
		}
		size += width
	}

	inst.Size = uint16(size)
	inst.StackRefMask = stackMask
	return inst, pending, true
}

// buildParam converts one textual argument into an ir.Param under the
// format tag it must satisfy. o/t/n/N arguments that name a label/symbol
// rather than carry a literal are returned with a zero placeholder value
// and a pendingRef for pass 2 to fill in.
func (b *Builder) buildParam(pos Position, tag value.Tag, arg Arg) (ir.Param, *pendingRef, int, bool) {
	width := value.Width(tag)

	switch tag {
	case value.TagOffset, value.TagTime, value.TagSprite, value.TagScript:
		if arg.Kind == ArgLabelRef {
			return ir.Param{Tag: byte(tag), Label: arg.Str}, &pendingRef{tag: tag, name: arg.Str, pos: pos}, width, true
		}
		if arg.Kind != ArgInt {
			b.errors.Add(&Error{Kind: ErrorTypeMismatch, Pos: pos, Sub: b.subName, Message: fmt.Sprintf("expected an integer or label for a %q parameter", tag)})
			return ir.Param{}, nil, 0, false
		}
		return ir.Param{Tag: byte(tag), Int: arg.Int}, nil, width, true

	case value.TagBlob, value.TagXored:
		if arg.Kind != ArgString {
			b.errors.Add(&Error{Kind: ErrorTypeMismatch, Pos: pos, Sub: b.subName, Message: fmt.Sprintf("expected a string literal for a %q parameter", tag)})
			return ir.Param{}, nil, 0, false
		}
		blob := []byte(arg.Str)
		w := 4 + len(blob)
		return ir.Param{Tag: byte(tag), Blob: blob}, nil, w, true

	case value.TagFloat, value.TagDouble:
		if arg.Kind == ArgStackRefName || arg.Kind == ArgRawStackRef {
			return ir.Param{Tag: byte(tag), Int: arg.Int, IsStackRef: true}, nil, width, true
		}
		if arg.Kind != ArgFloat && arg.Kind != ArgInt {
			b.errors.Add(&Error{Kind: ErrorTypeMismatch, Pos: pos, Sub: b.subName, Message: fmt.Sprintf("expected a float literal for a %q parameter", tag)})
			return ir.Param{}, nil, 0, false
		}
		f := arg.Float
		if arg.Kind == ArgInt {
			f = float64(arg.Int)
		}
		return ir.Param{Tag: byte(tag), Float: f}, nil, width, true

	default:
		if arg.Kind == ArgStackRefName || arg.Kind == ArgRawStackRef {
			return ir.Param{Tag: byte(tag), Int: arg.Int, IsStackRef: true}, nil, width, true
		}
		if arg.Kind != ArgInt {
			b.errors.Add(&Error{Kind: ErrorStackReferenceMismatch, Pos: pos, Sub: b.subName, Message: fmt.Sprintf("expected an integer literal or stack reference for a %q parameter", tag)})
			return ir.Param{}, nil, 0, false
		}
		return ir.Param{Tag: byte(tag), Int: arg.Int}, nil, width, true
	}
}

// expandFormat resolves a format string's tags against an argument
// count, expanding a single trailing "*x" repeat group to match. A
// "?x" tag is optional (spec.md §4.3, original_source/instr.c's
// instr_parse): trailing optional tags beyond argc are dropped, silently
// omitted if the caller didn't supply an argument for them.
func expandFormat(format string, argc int) ([]value.Tag, error) {
	var fixed []value.Tag
	var optional []bool
	var repeatTag value.Tag
	hasRepeat := false

	for i := 0; i < len(format); i++ {
		ch := format[i]
		switch ch {
		case value.FormatRepeat:
			i++
			if i >= len(format) {
				return nil, fmt.Errorf("asm: format %q ends with a dangling '*'", format)
			}
			tag, ok := value.FormatTag(format[i])
			if !ok {
				return nil, fmt.Errorf("asm: unrecognised format character %q", format[i])
			}
			hasRepeat = true
			repeatTag = tag
			continue
		case value.FormatOptional:
			i++
			if i >= len(format) {
				return nil, fmt.Errorf("asm: format %q ends with a dangling '?'", format)
			}
			tag, ok := value.FormatTag(format[i])
			if !ok {
				return nil, fmt.Errorf("asm: unrecognised format character %q", format[i])
			}
			fixed = append(fixed, tag)
			optional = append(optional, true)
			continue
		}
		tag, ok := value.FormatTag(ch)
		if !ok {
			return nil, fmt.Errorf("asm: unrecognised format character %q", ch)
		}
		fixed = append(fixed, tag)
		optional = append(optional, false)
	}

	for len(fixed) > argc && len(optional) > 0 && optional[len(optional)-1] {
		fixed = fixed[:len(fixed)-1]
		optional = optional[:len(optional)-1]
	}

	if !hasRepeat {
		return fixed, nil
	}
	for len(fixed) < argc {
		fixed = append(fixed, repeatTag)
	}
	return fixed, nil
}

// resolve is assembler pass 2 (spec.md §4.8): every queued o/t/n/N
// reference is resolved against the sub-program's label table (o, t) or
// the ANM entry's sprite/script symbol tables (n, N). Unresolved
// references are reported with file, line, sub-program, and symbol, and
// left as zero in the emitted instruction.
func (b *Builder) resolve(pending []pendingRef, labels *labelTable) {
	for _, ref := range pending {
		switch ref.tag {
		case value.TagOffset:
			target, ok := labels.Lookup(ref.name)
			if !ok {
				b.unresolved(ref)
				continue
			}
			ref.inst.Params[ref.param].Int = int64(int32(target.Offset) - int32(ref.inst.Offset))

		case value.TagTime:
			target, ok := labels.Lookup(ref.name)
			if !ok {
				b.unresolved(ref)
				continue
			}
			ref.inst.Params[ref.param].Int = int64(target.Time)

		case value.TagSprite:
			if b.Symbols == nil {
				b.unresolved(ref)
				continue
			}
			id, ok := b.Symbols.ResolveSprite(ref.name)
			if !ok {
				b.unresolved(ref)
				continue
			}
			ref.inst.Params[ref.param].Int = int64(id)

		case value.TagScript:
			if b.Symbols == nil {
				b.unresolved(ref)
				continue
			}
			id, ok := b.Symbols.ResolveScript(ref.name)
			if !ok {
				b.unresolved(ref)
				continue
			}
			ref.inst.Params[ref.param].Int = int64(id)
		}
	}
}

func (b *Builder) unresolved(ref pendingRef) {
	b.errors.Add(&Error{
		Kind:    ErrorUnresolvedSymbol,
		Pos:     ref.pos,
		Sub:     b.subName,
		Symbol:  ref.name,
		Message: fmt.Sprintf("unresolved %q reference", ref.tag),
	})
}

// Serialize encodes a fully resolved sub's instructions to bytes,
// dialect header first, followed by each parameter in format order
// (spec.md §4.8's final "serialise the result to bytes" step).
func Serialize(sub *ir.Sub, dialect Dialect) ([]byte, error) {
	var out []byte
	for _, inst := range sub.Instructions() {
		out = append(out, encodeHeader(inst, dialect)...)
		for _, p := range inst.Params {
			v := value.Value{Tag: value.Tag(p.Tag), Int: p.Int, Float: p.Float, Blob: p.Blob, CastType: p.CastType, CastValue: p.CastValue}
			var err error
			out, err = value.ToBytes(out, v)
			if err != nil {
				return nil, fmt.Errorf("asm: sub %q: %w", sub.Name, err)
			}
		}
	}
	return out, nil
}

func encodeHeader(inst *ir.Instruction, dialect Dialect) []byte {
	switch dialect {
	case DialectECLLegacy:
		b := make([]byte, 12)
		putU32(b[0:], uint32(inst.Time))
		putU16(b[4:], inst.Opcode)
		putU16(b[6:], inst.Size)
		putU16(b[8:], uint16(inst.RankMask))
		putU16(b[10:], uint16(inst.StackRefMask))
		return b
	case DialectECLMainline:
		b := make([]byte, 16)
		putU32(b[0:], uint32(inst.Time))
		putU16(b[4:], inst.Opcode)
		putU16(b[6:], inst.Size)
		putU16(b[8:], uint16(inst.StackRefMask))
		b[10] = inst.RankMask
		return b
	case DialectAnmV0:
		b := make([]byte, 6)
		putU16(b[0:], uint16(int16(inst.Time)))
		putU16(b[2:], inst.Opcode)
		putU16(b[4:], inst.Size-6)
		return b
	case DialectAnmMainline:
		b := make([]byte, 8)
		putU16(b[0:], inst.Opcode)
		putU16(b[2:], inst.Size)
		putU16(b[4:], uint16(int16(inst.Time)))
		putU16(b[6:], uint16(inst.StackRefMask))
		return b
	default:
		return nil
	}
}

func putU16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
