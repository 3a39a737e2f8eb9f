package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/Makepad-fr/todolist/internal/loader"
)

type Config struct {
	Source SourceConfig `toml:"source"`
	Log    LogConfig    `toml:"log"`
	UI     UIConfig     `toml:"ui"`
}

type SourceConfig struct {
	URL   string `toml:"url"   env:"TODOLIST_URL"`
	File  string `toml:"file"  env:"TODOLIST_FILE"` // when set, read from this JSON file instead of URL
	Token string `toml:"token" env:"TODOLIST_TOKEN"`
}

type LogConfig struct {
	Level string `toml:"level" env:"TODOLIST_LOG_LEVEL"`
	File  string `toml:"file"  env:"TODOLIST_LOG_FILE"`
}

type UIConfig struct {
	Theme string `toml:"theme" env:"TODOLIST_THEME"` // classic | neon | mono
}

// PathEnv names the variable that points at the config file.
const PathEnv = "TODOLIST_CONFIG"

var themes = []string{"classic", "neon", "mono"}

func Default() Config {
	return Config{
		Source: SourceConfig{URL: loader.DefaultURL},
		Log:    LogConfig{Level: "info"},
		UI:     UIConfig{Theme: "classic"},
	}
}

// Load decodes the TOML file at path over defaults. A missing or empty file
// leaves defaults untouched.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any TODOLIST_* variables that are set.
func ApplyEnv(cfg Config) (Config, error) {
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Source.File) == "" {
		raw := strings.TrimSpace(c.Source.URL)
		if raw == "" {
			return errors.New("source.url is required")
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid source.url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid source.url scheme: %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("invalid source.url: missing host")
		}
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}

	theme := strings.ToLower(strings.TrimSpace(c.UI.Theme))
	if theme != "" && !slices.Contains(themes, theme) {
		return fmt.Errorf("invalid ui.theme: %q", c.UI.Theme)
	}
	return nil
}
