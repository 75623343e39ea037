package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/umlcanvas/internal/diagram"
)

// Defaults applied to keys a config file leaves unset.
const (
	DefaultViewAddr = "127.0.0.1:8377"
	DefaultMCPPath  = "/mcp"
	DefaultLogLevel = "info"
	DefaultFormat   = "text"
)

// Formats lists the accepted export formats.
var Formats = []string{"text", "mermaid", "json"}

// ProjectConfig holds settings loaded from umlcanvas.yml.
type ProjectConfig struct {
	HistoryLimit int    `yaml:"historyLimit,omitempty"`
	ViewAddr     string `yaml:"viewAddr,omitempty"`
	MCPPath      string `yaml:"mcpPath,omitempty"`
	LogLevel     string `yaml:"logLevel,omitempty"`
	Format       string `yaml:"format,omitempty"`
}

// Load attempts to read umlcanvas.yml or umlcanvas.yaml from the given
// directory. Returns the defaults (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"umlcanvas.yml", "umlcanvas.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		cfg.applyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return &cfg, nil
	}
	cfg := &ProjectConfig{}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	if c.HistoryLimit == 0 {
		c.HistoryLimit = diagram.DefaultHistoryLimit
	}
	if c.ViewAddr == "" {
		c.ViewAddr = DefaultViewAddr
	}
	if c.MCPPath == "" {
		c.MCPPath = DefaultMCPPath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
}

// Validate reports the first unusable setting.
func (c *ProjectConfig) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if !validFormat(c.Format) {
		return fmt.Errorf("format %q: want one of %s", c.Format, strings.Join(Formats, ", "))
	}
	if !strings.HasPrefix(c.MCPPath, "/") {
		return fmt.Errorf("mcpPath %q: must start with /", c.MCPPath)
	}
	return nil
}

func validFormat(f string) bool {
	for _, v := range Formats {
		if f == v {
			return true
		}
	}
	return false
}

// ParseLevel maps a logLevel value to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logLevel %q: %w", s, err)
	}
	return l, nil
}
