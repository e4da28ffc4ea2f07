// Package config loads chatnav settings from YAML with CHATNAV_* environment
// overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// GatewayConfig points at the external summarization service. An empty
// endpoint disables AI summarization; everything else keeps working.
type GatewayConfig struct {
	Endpoint  string `yaml:"endpoint" koanf:"endpoint"`
	Model     string `yaml:"model" koanf:"model"`
	APIKeyEnv string `yaml:"api_key_env" koanf:"api_key_env"`
}

// Config is the top-level chatnav configuration.
type Config struct {
	TranscriptsDir string `yaml:"transcripts_dir" koanf:"transcripts_dir"`
	DBPath         string `yaml:"db_path" koanf:"db_path"`

	PanelWidth       int `yaml:"panel_width" koanf:"panel_width"`
	SummaryMaxRunes  int `yaml:"summary_max_runes" koanf:"summary_max_runes"`
	FullTextMaxRunes int `yaml:"full_text_max_runes" koanf:"full_text_max_runes"`
	RenameMaxRunes   int `yaml:"rename_max_runes" koanf:"rename_max_runes"`
	ElideMaxRunes    int `yaml:"elide_max_runes" koanf:"elide_max_runes"`
	ElideHalfRunes   int `yaml:"elide_half_runes" koanf:"elide_half_runes"`

	DebounceMS       int `yaml:"debounce_ms" koanf:"debounce_ms"`
	ThrottleMS       int `yaml:"throttle_ms" koanf:"throttle_ms"`
	ScrollDurationMS int `yaml:"scroll_duration_ms" koanf:"scroll_duration_ms"`
	ActivationOffset int `yaml:"activation_offset_lines" koanf:"activation_offset_lines"`

	Gateway GatewayConfig `yaml:"gateway" koanf:"gateway"`
}

// DefaultConfig returns a Config with the stock budgets and delays.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	base := "."
	if err == nil {
		base = filepath.Join(home, ".chatnav")
	}
	return &Config{
		TranscriptsDir:   "",
		DBPath:           filepath.Join(base, "chatnav.db"),
		PanelWidth:       34,
		SummaryMaxRunes:  30,
		FullTextMaxRunes: 150,
		RenameMaxRunes:   50,
		ElideMaxRunes:    1000,
		ElideHalfRunes:   500,
		DebounceMS:       400,
		ThrottleMS:       100,
		ScrollDurationMS: 500,
		ActivationOffset: 3,
		Gateway: GatewayConfig{
			Model:     "compact-1",
			APIKeyEnv: "CHATNAV_GATEWAY_KEY",
		},
	}
}

// Load reads configuration from the given YAML file (if it exists), then
// overlays CHATNAV_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("CHATNAV_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CHATNAV_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	for name, v := range map[string]int{
		"panel_width":         c.PanelWidth,
		"summary_max_runes":   c.SummaryMaxRunes,
		"full_text_max_runes": c.FullTextMaxRunes,
		"rename_max_runes":    c.RenameMaxRunes,
		"elide_max_runes":     c.ElideMaxRunes,
		"elide_half_runes":    c.ElideHalfRunes,
		"debounce_ms":         c.DebounceMS,
		"throttle_ms":         c.ThrottleMS,
		"scroll_duration_ms":  c.ScrollDurationMS,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.ActivationOffset < 0 {
		return fmt.Errorf("activation_offset_lines must be non-negative")
	}
	if 2*c.ElideHalfRunes > c.ElideMaxRunes {
		return fmt.Errorf("elide_half_runes (%d) must fit twice within elide_max_runes (%d)",
			c.ElideHalfRunes, c.ElideMaxRunes)
	}
	return nil
}

// APIKey resolves the gateway key from the configured environment variable.
func (c *Config) APIKey() string {
	if c.Gateway.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.Gateway.APIKeyEnv))
}

func (c *Config) Debounce() time.Duration { return time.Duration(c.DebounceMS) * time.Millisecond }

func (c *Config) Throttle() time.Duration { return time.Duration(c.ThrottleMS) * time.Millisecond }

func (c *Config) ScrollDuration() time.Duration {
	return time.Duration(c.ScrollDurationMS) * time.Millisecond
}
