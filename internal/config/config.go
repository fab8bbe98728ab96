package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the per-project config file.
const FileName = "webui-embed.yaml"

// Built-in defaults, relative to the project directory.
const (
	DefaultWebUIDir          = "webui"
	DefaultDistDir           = "webui/dist"
	DefaultSettingsSource    = "src/SettingsManager.cpp"
	DefaultHeader            = "src/EmbeddedWebUI.h"
	DefaultOverrides         = "config.json"
	DefaultBuildCommand      = "npm run build"
	DefaultCompressThreshold = 100
	DefaultDebounce          = 300 * time.Millisecond
)

// Duration wraps time.Duration with YAML unmarshalling for human-readable strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// WatchConfig holds watch-subcommand settings.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Config is the top-level configuration file structure.
type Config struct {
	WebUIDir          string      `yaml:"webui_dir"`
	DistDir           string      `yaml:"dist_dir"`
	SettingsSource    string      `yaml:"settings_source"`
	Header            string      `yaml:"header"`
	Overrides         string      `yaml:"overrides"`
	BuildCommand      string      `yaml:"build_command"`
	Compress          *bool       `yaml:"compress"`
	CompressThreshold int         `yaml:"compress_threshold"`
	LogLevel          string      `yaml:"log_level"`
	LogFormat         string      `yaml:"log_format"`
	Watch             WatchConfig `yaml:"watch"`
}

// Paths is a Config resolved against a project directory, with every
// default filled in and every path made absolute.
type Paths struct {
	ProjectDir        string
	WebUIDir          string
	DistDir           string
	SettingsSource    string
	Header            string
	Overrides         string
	BuildCommand      string
	Compress          bool
	CompressThreshold int
	Debounce          time.Duration
}

// DefaultPath returns the config file path inside projectDir.
func DefaultPath(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Load reads and parses a YAML config file. If the file does not exist,
// it returns an empty Config and a nil error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.CompressThreshold < 0 {
		return nil, fmt.Errorf("parsing config %s: compress_threshold must not be negative", path)
	}
	return &cfg, nil
}

// Resolve fills in defaults and anchors relative paths at projectDir.
func (c *Config) Resolve(projectDir string) (Paths, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return Paths{}, fmt.Errorf("resolve project dir: %w", err)
	}

	p := Paths{
		ProjectDir:        abs,
		WebUIDir:          anchor(abs, c.WebUIDir, DefaultWebUIDir),
		DistDir:           anchor(abs, c.DistDir, DefaultDistDir),
		SettingsSource:    anchor(abs, c.SettingsSource, DefaultSettingsSource),
		Header:            anchor(abs, c.Header, DefaultHeader),
		Overrides:         anchor(abs, c.Overrides, DefaultOverrides),
		BuildCommand:      c.BuildCommand,
		Compress:          true,
		CompressThreshold: c.CompressThreshold,
		Debounce:          time.Duration(c.Watch.Debounce),
	}
	// A custom webui_dir without a custom dist_dir moves dist along with it.
	if c.WebUIDir != "" && c.DistDir == "" {
		p.DistDir = filepath.Join(p.WebUIDir, "dist")
	}
	if p.BuildCommand == "" {
		p.BuildCommand = DefaultBuildCommand
	}
	if c.Compress != nil {
		p.Compress = *c.Compress
	}
	if p.CompressThreshold == 0 {
		p.CompressThreshold = DefaultCompressThreshold
	}
	if p.Debounce <= 0 {
		p.Debounce = DefaultDebounce
	}
	return p, nil
}

func anchor(root, path, def string) string {
	if path == "" {
		path = def
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
