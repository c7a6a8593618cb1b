package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Archive.DefaultVersion != 14 {
		t.Errorf("Archive.DefaultVersion = %d, want 14", cfg.Archive.DefaultVersion)
	}
	if cfg.Archive.IntegrityIndex != "integrity.toml" {
		t.Errorf("Archive.IntegrityIndex = %q, want integrity.toml", cfg.Archive.IntegrityIndex)
	}

	if !cfg.Disasm.PrettyExpr {
		t.Error("Disasm.PrettyExpr = false, want true")
	}
	if cfg.Disasm.InstructionCtx != 5 {
		t.Errorf("Disasm.InstructionCtx = %d, want 5", cfg.Disasm.InstructionCtx)
	}

	if !cfg.Asm.StrictArity {
		t.Error("Asm.StrictArity = false, want true")
	}

	if cfg.Display.BytesPerLine != 16 {
		t.Errorf("Display.BytesPerLine = %d, want 16", cfg.Display.BytesPerLine)
	}
	if cfg.Display.NumberFormat != "hex" {
		t.Errorf("Display.NumberFormat = %q, want hex", cfg.Display.NumberFormat)
	}

	if cfg.TUI.HistorySize != 1000 {
		t.Errorf("TUI.HistorySize = %d, want 1000", cfg.TUI.HistorySize)
	}

	if cfg.GUI.DefaultZoom != 1.0 {
		t.Errorf("GUI.DefaultZoom = %v, want 1.0", cfg.GUI.DefaultZoom)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Fatal("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "dmktk" && path != "config.toml" {
			t.Errorf("expected path in dmktk directory or fallback, got %s", path)
		}
	}
}

func TestGetLogPath(t *testing.T) {
	path := GetLogPath()

	if path == "" {
		t.Fatal("GetLogPath returned empty string")
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "logs" {
			t.Errorf("expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		if filepath.Base(path) != "logs" {
			t.Errorf("expected path to end with logs, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Archive.DefaultVersion = 8
	cfg.Archive.VerifyOnExtract = true
	cfg.Disasm.MnemonicMap = "ins_names.msc"
	cfg.Display.ColorOutput = false
	cfg.GUI.BackgroundColor = "#000000"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if loaded.Archive.DefaultVersion != 8 {
		t.Errorf("Archive.DefaultVersion = %d, want 8", loaded.Archive.DefaultVersion)
	}
	if !loaded.Archive.VerifyOnExtract {
		t.Error("Archive.VerifyOnExtract = false, want true")
	}
	if loaded.Disasm.MnemonicMap != "ins_names.msc" {
		t.Errorf("Disasm.MnemonicMap = %q, want ins_names.msc", loaded.Disasm.MnemonicMap)
	}
	if loaded.Display.ColorOutput {
		t.Error("Display.ColorOutput = true, want false")
	}
	if loaded.GUI.BackgroundColor != "#000000" {
		t.Errorf("GUI.BackgroundColor = %q, want #000000", loaded.GUI.BackgroundColor)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on a missing file: %v", err)
	}
	if cfg.Archive.DefaultVersion != 14 {
		t.Error("expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[archive]
default_version = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected an error loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}
	if _, err := os.Stat(filepath.Dir(configPath)); os.IsNotExist(err) {
		t.Error("parent directories were not created")
	}
}
