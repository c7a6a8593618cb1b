// Command dmktk is the toolkit's command-line front end: a dispatcher over
// one subcommand per concern (extract, create, list, disasm, asm, verify,
// tui, gui), each with its own flat flag.FlagSet, mirroring the teacher's
// main.go (a single flag block deciding which mode to run) except split one
// set per subcommand instead of one set for the whole program.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danmaku-tools/dmktk/archive"
	"github.com/danmaku-tools/dmktk/archive/integrity"
	"github.com/danmaku-tools/dmktk/asm"
	"github.com/danmaku-tools/dmktk/config"
	"github.com/danmaku-tools/dmktk/disasm"
	"github.com/danmaku-tools/dmktk/gui"
	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/mnemonic"
	"github.com/danmaku-tools/dmktk/opcode"
	"github.com/danmaku-tools/dmktk/tui"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "create":
		err = runCreate(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "disasm":
		err = runDisasm(os.Args[2:])
	case "asm":
		err = runAsm(os.Args[2:])
	case "tui":
		err = runTUI(os.Args[2:])
	case "gui":
		err = runGUI(os.Args[2:])
	case "-version", "--version", "version":
		fmt.Println("dmktk", version)
		return
	case "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "dmktk: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "dmktk: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `dmktk: a toolkit for danmaku archive/script formats

Usage:
  dmktk extract -version N <archive> <outdir>
  dmktk create  -version N <srcdir> <archive>
  dmktk list    -version N <archive>
  dmktk verify  -version N [-index <path>] <archive>
  dmktk disasm  -lang ecl|anm -version N [-mnemonics path] <script-file>
  dmktk asm     -lang ecl|anm -version N [-mnemonics path] -out <file> <source.dasm>
  dmktk tui     -lang ecl|anm -version N [-mnemonics path] <script-file>...
  dmktk gui     [-config path] <anm-program-description>
  dmktk version
  dmktk help`)
}

// --- extract -----------------------------------------------------------

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	ver := fs.Int("version", 0, "archive version number")
	verbose := fs.Bool("verbose", false, "log each extracted entry")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("extract: usage: dmktk extract -version N <archive> <outdir>")
	}
	archivePath, outDir := fs.Arg(0), fs.Arg(1)

	data, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	a, err := archive.Open(*ver, data)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	var failures int
	for i, e := range a.Entries {
		body, err := a.ReadEntry(i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "extract: entry %q: %v\n", e.Name, err)
			failures++
			continue
		}
		dest := filepath.Join(outDir, e.Name)
		if err := os.WriteFile(dest, body, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "extract: entry %q: %v\n", e.Name, err)
			failures++
			continue
		}
		if *verbose {
			fmt.Printf("extract: %s (%d bytes)\n", e.Name, len(body))
		}
	}
	fmt.Printf("extract: %d entries, %d failed\n", len(a.Entries), failures)
	if failures > 0 {
		return fmt.Errorf("extract: %d entr%s failed", failures, pluralY(failures))
	}
	return nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// --- create --------------------------------------------------------------

func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	ver := fs.Int("version", 0, "archive version number")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("create: usage: dmktk create -version N <srcdir> <archive>")
	}
	srcDir, archivePath := fs.Arg(0), fs.Arg(1)

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	a := archive.Create(*ver)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		body, err := os.ReadFile(filepath.Join(srcDir, e.Name()))
		if err != nil {
			return fmt.Errorf("create: %w", err)
		}
		if err := a.AddEntry(e.Name(), body); err != nil {
			return fmt.Errorf("create: %w", err)
		}
	}

	out, err := a.Close()
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if err := os.WriteFile(archivePath, out, 0o644); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	fmt.Printf("create: wrote %s (%d entries, %d bytes)\n", archivePath, len(a.Entries), len(out))
	return nil
}

// --- list ------------------------------------------------------------

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	ver := fs.Int("version", 0, "archive version number")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("list: usage: dmktk list -version N <archive>")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	a, err := archive.Open(*ver, data)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	var total uint64
	for _, e := range a.Entries {
		fmt.Printf("%10d %10d  %s\n", e.UncompressedSize, e.CompressedSize, e.Name)
		total += uint64(e.UncompressedSize)
	}
	fmt.Printf("%d entries, %d bytes uncompressed\n", len(a.Entries), total)
	return nil
}

// --- verify ----------------------------------------------------------

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	ver := fs.Int("version", 0, "archive version number")
	indexPath := fs.String("index", "", "integrity index file (if empty, the index is built and discarded)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("verify: usage: dmktk verify -version N [-index path] <archive>")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	a, err := archive.Open(*ver, data)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	var idx *integrity.Index
	if *indexPath != "" {
		if existing, err := integrity.Load(*indexPath); err == nil {
			idx = existing
		}
	}
	building := idx == nil
	if building {
		idx = integrity.NewIndex()
	}

	var mismatches int
	for i, e := range a.Entries {
		body, err := a.ReadEntry(i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "verify: entry %q: %v\n", e.Name, err)
			mismatches++
			continue
		}
		if building {
			idx.Record(e.Name, body)
			continue
		}
		ok, err := idx.Verify(e.Name, body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "verify: entry %q: %v\n", e.Name, err)
			mismatches++
			continue
		}
		if !ok {
			fmt.Printf("verify: MISMATCH %s\n", e.Name)
			mismatches++
		}
	}

	if building && *indexPath != "" {
		if err := idx.Save(*indexPath); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		fmt.Printf("verify: recorded %d entries to %s\n", len(a.Entries), *indexPath)
		return nil
	}

	fmt.Printf("verify: %d entries, %d mismatch(es)\n", len(a.Entries), mismatches)
	if mismatches > 0 {
		return fmt.Errorf("verify: %d mismatch(es)", mismatches)
	}
	return nil
}

// --- disasm ------------------------------------------------------------

func runDisasm(args []string) error {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	lang := fs.String("lang", "ecl", "script language: ecl or anm")
	ver := fs.Int("version", 10, "bytecode version number")
	mnemonicsPath := fs.String("mnemonics", "", "optional !ins_names/!gvar_names map file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("disasm: usage: dmktk disasm -lang ecl|anm -version N [-mnemonics path] <script-file>")
	}

	sub, mnemonics, err := disassembleFile(*lang, *ver, *mnemonicsPath, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Print(asm.Print(sub, mnemonics))
	return nil
}

func disassembleFile(lang string, ver int, mnemonicsPath, path string) (*ir.Sub, *mnemonic.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("disasm: %w", err)
	}

	var mnemonics *mnemonic.Map
	if mnemonicsPath != "" {
		mnemonics, err = mnemonic.LoadFile(mnemonicsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("disasm: %w", err)
		}
	}

	switch strings.ToLower(lang) {
	case "ecl":
		table := opcode.LookupTable(ir.LangECL, ver)
		if table == nil {
			return nil, nil, fmt.Errorf("disasm: no opcode table registered for ecl version %d", ver)
		}
		dialect := disasm.ECLDialectMainline
		if ver < 10 {
			dialect = disasm.ECLDialectLegacy
		}
		sub, err := disasm.DisassembleECLSub(data, dialect, table)
		if err != nil {
			return nil, nil, fmt.Errorf("disasm: %w", err)
		}
		return sub, mnemonics, nil

	case "anm":
		table := opcode.LookupTable(ir.LangANM, ver)
		if table == nil {
			return nil, nil, fmt.Errorf("disasm: no opcode table registered for anm version %d", ver)
		}
		dialect := disasm.AnmDialectMainline
		if ver < 2 {
			dialect = disasm.AnmDialectV0
		}
		sub, err := disasm.DisassembleAnmSub(data, dialect, table)
		if err != nil {
			return nil, nil, fmt.Errorf("disasm: %w", err)
		}
		return sub, mnemonics, nil

	default:
		return nil, nil, fmt.Errorf("disasm: unknown language %q (want ecl or anm)", lang)
	}
}

// --- asm -------------------------------------------------------------

func runAsm(args []string) error {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	lang := fs.String("lang", "ecl", "script language: ecl or anm")
	ver := fs.Int("version", 10, "bytecode version number")
	out := fs.String("out", "", "output binary file (required)")
	mnemonicsPath := fs.String("mnemonics", "", "optional !ins_names/!gvar_names map file")
	fs.Parse(args)

	if fs.NArg() != 1 || *out == "" {
		return fmt.Errorf("asm: usage: dmktk asm -lang ecl|anm -version N [-mnemonics path] -out <file> <source.dasm>")
	}
	src, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("asm: %w", err)
	}

	var dialect asm.Dialect
	var language ir.Language
	switch strings.ToLower(*lang) {
	case "ecl":
		language = ir.LangECL
		if *ver < 10 {
			dialect = asm.DialectECLLegacy
		} else {
			dialect = asm.DialectECLMainline
		}
	case "anm":
		language = ir.LangANM
		if *ver < 2 {
			dialect = asm.DialectAnmV0
		} else {
			dialect = asm.DialectAnmMainline
		}
	default:
		return fmt.Errorf("asm: unknown language %q (want ecl or anm)", *lang)
	}

	table := opcode.LookupTable(language, *ver)
	if table == nil {
		return fmt.Errorf("asm: no opcode table registered for %s version %d", *lang, *ver)
	}

	parser := asm.NewParser(string(src), fs.Arg(0))
	stmts := parser.ParseStatements()
	if parser.Errors().HasErrors() {
		return fmt.Errorf("asm: %w", parser.Errors())
	}

	builder := asm.NewBuilder(dialect, table, asm.NewSymbolTable(nil, nil))
	if *mnemonicsPath != "" {
		m, err := mnemonic.LoadFile(*mnemonicsPath)
		if err != nil {
			return fmt.Errorf("asm: %w", err)
		}
		builder.Mnemonics = m
	}
	sub := builder.Build(filepath.Base(fs.Arg(0)), stmts)
	if builder.Errors().HasErrors() {
		return fmt.Errorf("asm: %w", builder.Errors())
	}

	encoded, err := asm.Serialize(sub, dialect)
	if err != nil {
		return fmt.Errorf("asm: %w", err)
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		return fmt.Errorf("asm: %w", err)
	}
	fmt.Printf("asm: wrote %s (%d bytes)\n", *out, len(encoded))
	return nil
}

// --- tui -------------------------------------------------------------

func runTUI(args []string) error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	lang := fs.String("lang", "ecl", "script language: ecl or anm")
	ver := fs.Int("version", 10, "bytecode version number")
	mnemonicsPath := fs.String("mnemonics", "", "optional !ins_names/!gvar_names map file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("tui: usage: dmktk tui -lang ecl|anm -version N [-mnemonics path] <script-file>...")
	}

	var subs []*ir.Sub
	var mnemonics *mnemonic.Map
	for _, path := range fs.Args() {
		sub, m, err := disassembleFile(*lang, *ver, *mnemonicsPath, path)
		if err != nil {
			return err
		}
		sub.Name = filepath.Base(path)
		subs = append(subs, sub)
		mnemonics = m
	}

	source := &tui.Source{Title: "dmktk", Subs: subs, Mnemonics: mnemonics}
	return tui.NewTUI(source).Run()
}

// --- gui -------------------------------------------------------------

func runGUI(args []string) error {
	fs := flag.NewFlagSet("gui", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file path (defaults to the platform config location)")
	fs.Parse(args)

	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, err = config.LoadFrom(*cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("gui: %w", err)
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("gui: usage: dmktk gui [-config path] <anm-program-file>")
	}

	program, err := loadAnmProgram(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("gui: %w", err)
	}

	decoder := gui.NewDefaultPixelDecoder()
	fmt.Printf("gui: sprite overlay default %v, zoom %.2fx\n", cfg.GUI.ShowSpriteRects, cfg.GUI.DefaultZoom)
	return gui.RunGUI(program, decoder)
}

// loadAnmProgram disassembles one already-extracted ANM script file (as a
// version 8 mainline script) into a single-entry ir.AnmProgram holding that
// one script. The entry has no sprite table and no pixel data: no
// container-level ANM header/sprite-table/pixel-blob parser exists in this
// module.
func loadAnmProgram(scriptPath string) (*ir.AnmProgram, error) {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, err
	}
	table := opcode.LookupTable(ir.LangANM, 8)
	sub, err := disasm.DisassembleAnmSub(data, disasm.AnmDialectMainline, table)
	if err != nil {
		return nil, err
	}
	entry := &ir.AnmEntry{
		Name:    filepath.Base(scriptPath),
		HasData: false,
		Scripts: []ir.AnmScript{{ID: 0, Sub: sub}},
	}
	return &ir.AnmProgram{Version: 8, Entries: []*ir.AnmEntry{entry}}, nil
}
