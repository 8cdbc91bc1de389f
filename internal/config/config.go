package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"nif-optimizer/internal/optimize"
)

// Config holds all configurable paths and optimizer settings.
type Config struct {
	// Paths
	BaseDir         string `yaml:"base_dir"`
	InputDir        string `yaml:"input_dir"`
	OutputDir       string `yaml:"output_dir"`
	PreviewDir      string `yaml:"preview_dir"`
	TextureDir      string `yaml:"texture_dir"`
	MetricsTextfile string `yaml:"metrics_textfile"`

	// Optimizer settings
	Spells                    []string `yaml:"spells"`
	Exclude                   []string `yaml:"exclude"`
	StripLengthCutoff         *float64 `yaml:"strip_length_cutoff"`
	Stitch                    *bool    `yaml:"stitch"`
	MergeControlledProperties bool     `yaml:"merge_controlled_properties"`

	// MergeVeto replaces the block types that keep a graph out of
	// cleaning and merging; unset keeps the default.
	MergeVeto []string `yaml:"merge_veto"`

	DryRun bool `yaml:"dry_run"`

	// Precision of the vertex weld; zero fields keep the defaults.
	Precision optimize.Precision `yaml:"precision"`

	// Run settings
	Workers     int `yaml:"workers"`
	PreviewSize int `yaml:"preview_size"`
	Supersample int `yaml:"supersample"`
}

// Load reads a YAML config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.PreviewDir != "" {
		c.PreviewDir = flags.PreviewDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if len(flags.Spells) > 0 {
		c.Spells = flags.Spells
	}
	if len(flags.Exclude) > 0 {
		c.Exclude = append(c.Exclude, flags.Exclude...)
	}
	if flags.StripLengthCutoff != nil {
		c.StripLengthCutoff = flags.StripLengthCutoff
	}
	if flags.NoStitch {
		off := false
		c.Stitch = &off
	}
	if flags.DryRun {
		c.DryRun = true
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.InputDir = under(c.BaseDir, c.InputDir)
		c.OutputDir = under(c.BaseDir, c.OutputDir)
		c.PreviewDir = under(c.BaseDir, c.PreviewDir)
		c.TextureDir = under(c.BaseDir, c.TextureDir)
	}
	if c.TextureDir == "" && c.InputDir != "" {
		c.TextureDir = c.InputDir
	}

	// Defaults for optimizer settings
	if len(c.Spells) == 0 {
		c.Spells = []string{"optimize"}
	}
	if c.StripLengthCutoff == nil {
		cutoff := 10.0
		c.StripLengthCutoff = &cutoff
	}
	if c.Stitch == nil {
		on := true
		c.Stitch = &on
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir          string
	OutputDir         string
	PreviewDir        string
	Workers           int
	Spells            []string
	Exclude           []string
	StripLengthCutoff *float64
	NoStitch          bool
	DryRun            bool
}

func under(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
