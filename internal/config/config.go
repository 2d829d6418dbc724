// Package config loads the YAML settings shared by the command-line tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"skelanim/internal/crypto"
)

const (
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// Config holds all configurable paths, render and animation settings.
type Config struct {
	// Paths
	BaseDir   string `yaml:"base_dir"`
	ModelDir  string `yaml:"model_dir"`
	OutputDir string `yaml:"output_dir"`
	// ClipStore is the gdata app name clips are persisted under. Empty
	// disables persistence.
	ClipStore string `yaml:"clip_store"`

	// Render settings
	RenderSize  int    `yaml:"render_size"`
	Supersample int    `yaml:"supersample"`
	Workers     int    `yaml:"workers"`
	Frames      int    `yaml:"frames"`
	Format      string `yaml:"format"`
	ShowBones   bool   `yaml:"show_bones"`

	// Animation settings
	SamplingRate float64 `yaml:"sampling_rate"`
	BlendSeconds float64 `yaml:"blend_seconds"`

	Keys KeysConfig `yaml:"keys"`
}

// KeysConfig holds hex-encoded cipher keys for encrypted model versions.
type KeysConfig struct {
	XOR string `yaml:"xor"`
	LEA string `yaml:"lea"`
}

// Load reads a YAML config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.DataDir != "" {
		c.BaseDir = flags.DataDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}

	// Auto-detect base dir if still empty
	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		if c.ModelDir == "" {
			c.ModelDir = filepath.Join(c.BaseDir, "Data", "Player")
		} else if !filepath.IsAbs(c.ModelDir) {
			c.ModelDir = filepath.Join(c.BaseDir, c.ModelDir)
		}

		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.BaseDir, "Data", "Animation-renders")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
		}
	}

	// Defaults for render settings
	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Frames <= 0 {
		c.Frames = 8
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format != FormatTGA {
		c.Format = FormatWebP
	}

	// Defaults for animation settings
	if c.SamplingRate <= 0 {
		c.SamplingRate = 1.0 / 24
	}
	if c.BlendSeconds < 0 {
		c.BlendSeconds = 0
	} else if c.BlendSeconds == 0 {
		c.BlendSeconds = 0.2
	}
}

// CipherKeys decodes the configured keys.
func (c *Config) CipherKeys() (crypto.Keys, error) {
	keys, err := crypto.ParseKeys(c.Keys.XOR, c.Keys.LEA)
	if err != nil {
		return crypto.Keys{}, fmt.Errorf("config: %w", err)
	}
	return keys, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir   string
	OutputDir string
	Workers   int
	Frames    int
	Format    string
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if _, err := os.Stat(filepath.Join(base, "Data", "Player")); err == nil {
				return base
			}
		}
	}

	// Try current working directory and its parent
	cwd, _ := os.Getwd()
	for _, base := range []string{cwd, filepath.Dir(cwd)} {
		if _, err := os.Stat(filepath.Join(base, "Data", "Player")); err == nil {
			return base
		}
	}

	return ""
}
