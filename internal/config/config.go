package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"divmap/internal/platform"
)

// Config describes one analysis run: which files form the codebase and
// which platforms to compare.
type Config struct {
	Version     string `yaml:"version" json:"version"`
	ProjectName string `yaml:"project_name,omitempty" json:"project_name,omitempty"`

	// Codebase membership
	Codebase CodebaseConfig `yaml:"codebase" json:"codebase"`

	// Platform definitions, one per target configuration
	Platforms []PlatformConfig `yaml:"platforms" json:"platforms"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`
}

type CodebaseConfig struct {
	// Include patterns (relative to the root directory). Files outside
	// the include set are still parsed but contribute no lines to the
	// aggregated maps.
	Include []string `yaml:"include" json:"include"`

	// Exclude patterns
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Languages recognized as source files (enry language names).
	// Empty means the default C-family set.
	Languages []string `yaml:"languages,omitempty" json:"languages,omitempty"`
}

type PlatformConfig struct {
	// Name uniquely identifies the platform in all reports.
	Name string `yaml:"name" json:"name"`

	// Defines lists the macros set for this platform, as "NAME" or
	// "NAME=VALUE" specs.
	Defines []string `yaml:"defines" json:"defines"`
}

type OutputConfig struct {
	// Default output format
	Format string `yaml:"format" json:"format"`

	// Colorized console output
	Colors bool `yaml:"colors" json:"colors"`

	// Reports to produce (summary, filemap, clustering, all)
	Reports []string `yaml:"reports" json:"reports"`

	// Directory for generated report files
	OutputDir string `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
}

// DefaultLanguages is the source-language set analyzed when the config
// does not override it.
var DefaultLanguages = []string{"C", "C++", "Cuda", "Objective-C", "Fortran"}

func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Codebase: CodebaseConfig{
			Include: []string{"*"},
			Exclude: []string{},
		},
		Output: OutputConfig{
			Format:  "console",
			Colors:  true,
			Reports: []string{"all"},
		},
	}
}

// LoadConfig loads configuration from file, falling back to discovery
// of the default config filenames.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath == "" {
		return nil, errors.New("no configuration file found; run with --generate-config to create one")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", configPath)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration %s", configPath)
	}
	return cfg, nil
}

// findConfigFile looks for config files in common locations.
func findConfigFile() string {
	possiblePaths := []string{
		".divmap.yml",
		".divmap.yaml",
		"divmap.yml",
		"divmap.yaml",
		"config.yaml",
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks that the configuration describes a runnable analysis.
func (c *Config) Validate() error {
	if len(c.Platforms) == 0 {
		return errors.New("at least one platform must be defined")
	}
	seen := make(map[string]struct{}, len(c.Platforms))
	for _, p := range c.Platforms {
		if p.Name == "" {
			return errors.New("platform name must not be empty")
		}
		if _, ok := seen[p.Name]; ok {
			return errors.Newf("duplicate platform name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	switch c.Output.Format {
	case "console", "json":
	default:
		return errors.Newf("invalid output format %q (valid: console, json)", c.Output.Format)
	}

	for _, report := range c.Output.Reports {
		switch report {
		case "all", "summary", "filemap", "clustering":
		default:
			return errors.Newf("unknown report %q (valid: all, summary, filemap, clustering)", report)
		}
	}
	return nil
}

// PlatformList builds the platform objects for this run, with each
// platform's defines applied to its symbol table.
func (c *Config) PlatformList() []*platform.Platform {
	platforms := make([]*platform.Platform, 0, len(c.Platforms))
	for _, pc := range c.Platforms {
		p := platform.New(pc.Name)
		for _, spec := range pc.Defines {
			p.DefineSpec(spec)
		}
		platforms = append(platforms, p)
	}
	return platforms
}

// Languages returns the configured source languages, or the default set.
func (c *Config) Languages() []string {
	if len(c.Codebase.Languages) > 0 {
		return c.Codebase.Languages
	}
	return DefaultLanguages
}

// ReportEnabled reports whether the named report should be produced.
func (c *Config) ReportEnabled(name string) bool {
	for _, report := range c.Output.Reports {
		if report == "all" || report == name {
			return true
		}
	}
	return false
}

// SaveConfig saves the configuration to file.
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing config file %s", configPath)
	}
	return nil
}

// GenerateConfig creates a sample configuration file with two example
// platforms.
func GenerateConfig(configPath string) error {
	cfg := DefaultConfig()
	cfg.Platforms = []PlatformConfig{
		{Name: "cpu", Defines: []string{"USE_CPU"}},
		{Name: "gpu", Defines: []string{"USE_GPU", "GPU_ARCH=80"}},
	}
	return cfg.SaveConfig(configPath)
}
