// Package config holds dmktk's persistent tool configuration: archive
// defaults, disassembly/assembly defaults, and the tui/gui front ends'
// display preferences, loaded from and saved to a platform-specific TOML
// file (teacher's config/config.go shape, re-keyed to this toolkit's
// concerns).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is dmktk's persistent configuration.
type Config struct {
	// Archive settings
	Archive struct {
		DefaultVersion   int    `toml:"default_version"`
		VerifyOnExtract  bool   `toml:"verify_on_extract"`
		IntegrityIndex   string `toml:"integrity_index"` // sidecar filename, relative to the archive
		PreferCompressed bool   `toml:"prefer_compressed"`
	} `toml:"archive"`

	// Disassembly settings
	Disasm struct {
		MnemonicMap    string `toml:"mnemonic_map"` // path to a !ins_names/!gvar_names/!gvar_types file
		PrettyExpr     bool   `toml:"pretty_expr"`  // fold expr register pushes into infix form
		ShowOffsets    bool   `toml:"show_offsets"`
		InstructionCtx int    `toml:"instruction_context"`
	} `toml:"disasm"`

	// Assembly settings
	Asm struct {
		MnemonicMap string `toml:"mnemonic_map"`
		StrictArity bool   `toml:"strict_arity"`
	} `toml:"asm"`

	// Display settings shared by the CLI, tui, and disasm text output
	Display struct {
		ColorOutput  bool   `toml:"color_output"`
		BytesPerLine int    `toml:"bytes_per_line"`
		NumberFormat string `toml:"number_format"` // hex, dec, both
	} `toml:"display"`

	// tui settings
	TUI struct {
		HistorySize   int  `toml:"history_size"`
		ShowStatusBar bool `toml:"show_status_bar"`
		TreeExpanded  bool `toml:"tree_expanded"`
	} `toml:"tui"`

	// gui settings
	GUI struct {
		ShowSpriteRects bool    `toml:"show_sprite_rects"`
		BackgroundColor string  `toml:"background_color"`
		DefaultZoom     float64 `toml:"default_zoom"`
	} `toml:"gui"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Archive.DefaultVersion = 14 // mainline/THA1, the most recent family
	cfg.Archive.VerifyOnExtract = false
	cfg.Archive.IntegrityIndex = "integrity.toml"
	cfg.Archive.PreferCompressed = true

	cfg.Disasm.MnemonicMap = ""
	cfg.Disasm.PrettyExpr = true
	cfg.Disasm.ShowOffsets = true
	cfg.Disasm.InstructionCtx = 5

	cfg.Asm.MnemonicMap = ""
	cfg.Asm.StrictArity = true

	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 16
	cfg.Display.NumberFormat = "hex"

	cfg.TUI.HistorySize = 1000
	cfg.TUI.ShowStatusBar = true
	cfg.TUI.TreeExpanded = false

	cfg.GUI.ShowSpriteRects = true
	cfg.GUI.BackgroundColor = "#202020"
	cfg.GUI.DefaultZoom = 1.0

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "dmktk")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "dmktk")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "dmktk", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "dmktk", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, returning default values
// untouched if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path, creating parent directories as
// needed.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("config: failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: failed to encode %s: %w", path, err)
	}

	return nil
}
