// internal/config/config.go
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config represents the application configuration
type Config struct {
	DefaultProfile    string    `toml:"default_profile"`
	ExportDir         string    `toml:"export_dir"`
	FetchConcurrency  int       `toml:"fetch_concurrency"`
	RequestTimeoutSec int       `toml:"request_timeout_sec"`
	Theme             string    `toml:"theme"` // dark, light
	Profiles          []Profile `toml:"profiles"`
	Palettes          Palettes  `toml:"palettes"`
	Keys              KeyMap    `toml:"keys"`

	path string
}

// Palettes holds one palette per colour theme
type Palettes struct {
	Dark  Palette `toml:"dark"`
	Light Palette `toml:"light"`
}

// Palette defines the colours of one theme
type Palette struct {
	TextPrimary   string `toml:"text_primary"`
	TextSecondary string `toml:"text_secondary"`
	TextFaint     string `toml:"text_faint"`
	Accent        string `toml:"accent"`
	Success       string `toml:"success"`
	Error         string `toml:"error"`
	Highlight     string `toml:"highlight"`
	Warning       string `toml:"warning"`
	BgPrimary     string `toml:"bg_primary"`
	BgSecondary   string `toml:"bg_secondary"`
	CardBg        string `toml:"card_bg"`
	ChromaStyle   string `toml:"chroma_style"`
}

// KeyMap defines key bindings
type KeyMap struct {
	Quit        []string `toml:"quit"`
	Help        []string `toml:"help"`
	FocusNext   []string `toml:"focus_next"`
	Filter      []string `toml:"filter"`
	Import      []string `toml:"import"`
	Export      []string `toml:"export"`
	Delete      []string `toml:"delete"`
	Drop        []string `toml:"drop"`
	Yank        []string `toml:"yank"`
	Reload      []string `toml:"reload"`
	Refresh     []string `toml:"refresh"`
	Expand      []string `toml:"expand"`
	Collapse    []string `toml:"collapse"`
	Back        []string `toml:"back"`
	Forward     []string `toml:"forward"`
	Collections []string `toml:"collections"`
	Docs        []string `toml:"docs"`
	Activity    []string `toml:"activity"`
	ToggleTheme []string `toml:"toggle_theme"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultProfile:    "",
		ExportDir:         ".",
		FetchConcurrency:  4,
		RequestTimeoutSec: 30,
		Theme:             ThemeDark,
		Profiles:          []Profile{},
		Palettes: Palettes{
			// Nord
			Dark: Palette{
				TextPrimary:   "#D8DEE9",
				TextSecondary: "#81A1C1",
				TextFaint:     "#4C566A",
				Accent:        "#88C0D0",
				Success:       "#A3BE8C",
				Error:         "#BF616A",
				Highlight:     "#8FBCBB",
				Warning:       "#D08770",
				BgPrimary:     "#2E3440",
				BgSecondary:   "#3B4252",
				CardBg:        "#434C5E",
				ChromaStyle:   "nord",
			},
			// Nord light
			Light: Palette{
				TextPrimary:   "#2E3440",
				TextSecondary: "#5E81AC",
				TextFaint:     "#9AA5B8",
				Accent:        "#5E81AC",
				Success:       "#4F7A3A",
				Error:         "#A3303B",
				Highlight:     "#3E7D7A",
				Warning:       "#B5562E",
				BgPrimary:     "#ECEFF4",
				BgSecondary:   "#E5E9F0",
				CardBg:        "#D8DEE9",
				ChromaStyle:   "github",
			},
		},
		Keys: KeyMap{
			Quit:        []string{"ctrl+c", "q"},
			Help:        []string{"?"},
			FocusNext:   []string{"tab"},
			Filter:      []string{"/"},
			Import:      []string{"i"},
			Export:      []string{"e"},
			Delete:      []string{"x"},
			Drop:        []string{"D"},
			Yank:        []string{"y"},
			Reload:      []string{"r"},
			Refresh:     []string{"R"},
			Expand:      []string{"l", "right", "enter"},
			Collapse:    []string{"h", "left"},
			Back:        []string{"alt+left", "["},
			Forward:     []string{"alt+right", "]"},
			Collections: []string{"1"},
			Docs:        []string{"2"},
			Activity:    []string{"3"},
			ToggleTheme: []string{"t"},
		},
	}
}

// ActivePalette returns the palette for the configured theme
func (c *Config) ActivePalette() Palette {
	return c.PaletteFor(c.Theme)
}

// PaletteFor returns the palette of a theme name, dark for anything unknown
func (c *Config) PaletteFor(theme string) Palette {
	if theme == ThemeLight {
		return c.Palettes.Light
	}
	return c.Palettes.Dark
}

// RequestTimeout is the per-request gateway timeout
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// ConfigPath returns the XDG-compliant config file path
func ConfigPath() (string, error) {
	return xdg.ConfigFile("ezcoll/config.toml")
}

// Load loads the config from disk or creates default
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the config stored at path, creating it on first run
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	cfg.path = path

	// Populate defaults for missing sections
	defaults := DefaultConfig()
	updated := false

	if cfg.Palettes.Dark.TextPrimary == "" {
		cfg.Palettes.Dark = defaults.Palettes.Dark
		updated = true
	}
	if cfg.Palettes.Light.TextPrimary == "" {
		cfg.Palettes.Light = defaults.Palettes.Light
		updated = true
	}
	if len(cfg.Keys.Quit) == 0 {
		cfg.Keys = defaults.Keys
		updated = true
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = defaults.FetchConcurrency
		updated = true
	}
	if cfg.Theme != ThemeDark && cfg.Theme != ThemeLight {
		cfg.Theme = defaults.Theme
		updated = true
	}

	if updated {
		if err := cfg.Save(); err != nil {
			slog.Warn("config: failed to persist defaults", "path", path, "err", err)
		}
	}

	key, err := masterKey()
	if err != nil {
		slog.Warn("config: keyring unavailable, secrets stay encrypted", "err", err)
		return &cfg, nil
	}
	for i := range cfg.Profiles {
		p := &cfg.Profiles[i]
		if p.EncryptedToken != "" {
			if token, err := Decrypt(p.EncryptedToken, key); err == nil {
				p.Token = token
			}
		}
		if p.EncryptedSSHPassword != "" {
			if pw, err := Decrypt(p.EncryptedSSHPassword, key); err == nil {
				p.SSHPassword = pw
			}
		}
	}

	return &cfg, nil
}

// Path is where Save writes
func (c *Config) Path() string {
	return c.path
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return err
		}
		c.path = path
	}

	// Secure permissions: the file carries encrypted secrets
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if key, err := masterKey(); err == nil {
		for i := range c.Profiles {
			p := &c.Profiles[i]
			if p.Token != "" {
				if enc, err := Encrypt(p.Token, key); err == nil {
					p.EncryptedToken = enc
				}
			}
			if p.SSHPassword != "" {
				if enc, err := Encrypt(p.SSHPassword, key); err == nil {
					p.EncryptedSSHPassword = enc
				}
			}
		}
	}

	return toml.NewEncoder(f).Encode(c)
}
