// internal/config/profiles.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nhath/ezcoll/internal/gateway"
)

// Environment overrides, also read from a .env file
const (
	EnvURL     = "EZCOLL_URL"
	EnvToken   = "EZCOLL_TOKEN"
	EnvProfile = "EZCOLL_PROFILE"
)

// Built-in profile used when nothing else is configured
const (
	LocalProfileName = "local"
	LocalProfileURL  = "http://localhost:8080"
)

// Profile represents one gateway the client can talk to
type Profile struct {
	Name  string `toml:"name"`
	URL   string `toml:"url"`
	Watch bool   `toml:"watch,omitempty"`
	// Token is kept in memory for usage
	Token string `toml:"-"`
	// EncryptedToken is the one persisted in the config file
	EncryptedToken string `toml:"token,omitempty"`

	// SSH Tunnel Configuration
	SSHHost     string `toml:"ssh_host,omitempty"`
	SSHPort     int    `toml:"ssh_port,omitempty"`
	SSHUser     string `toml:"ssh_user,omitempty"`
	SSHPassword string `toml:"-"` // In-memory
	SSHKeyPath  string `toml:"ssh_key_path,omitempty"`

	// EncryptedSSHPassword persisted in config
	EncryptedSSHPassword string `toml:"ssh_password,omitempty"`
}

// SSHConfig returns the tunnel settings, false when the profile dials directly
func (p Profile) SSHConfig() (gateway.SSHConfig, bool) {
	if p.SSHHost == "" {
		return gateway.SSHConfig{}, false
	}
	return gateway.SSHConfig{
		Host:     p.SSHHost,
		Port:     p.SSHPort,
		User:     p.SSHUser,
		Password: p.SSHPassword,
		KeyPath:  p.SSHKeyPath,
	}, true
}

// GetProfile retrieves a profile by name
func (c *Config) GetProfile(name string) (*Profile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile not found: %s", name)
}

// AddProfile adds a new profile to the config
func (c *Config) AddProfile(p Profile) error {
	for _, existing := range c.Profiles {
		if existing.Name == p.Name {
			return fmt.Errorf("profile already exists: %s", p.Name)
		}
	}
	c.Profiles = append(c.Profiles, p)
	return c.Save()
}

// DeleteProfile removes a profile from the config
func (c *Config) DeleteProfile(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			if c.DefaultProfile == name {
				c.DefaultProfile = ""
			}
			return c.Save()
		}
	}
	return fmt.Errorf("profile not found: %s", name)
}

// ListProfiles returns all profile names
func (c *Config) ListProfiles() []string {
	names := make([]string, len(c.Profiles))
	for i, p := range c.Profiles {
		names[i] = p.Name
	}
	return names
}

// ParseProfileURL builds a profile from a gateway URL.
// A password in the userinfo part becomes the bearer token and is stripped.
func ParseProfileURL(name, raw string) (Profile, error) {
	p := Profile{Name: name}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return p, fmt.Errorf("invalid gateway URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return p, fmt.Errorf("invalid gateway URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return p, fmt.Errorf("invalid gateway URL %q: missing host", raw)
	}

	if u.User != nil {
		if token, ok := u.User.Password(); ok {
			p.Token = token
		}
		u.User = nil
	}
	u.RawQuery, u.Fragment = "", ""
	p.URL = strings.TrimSuffix(u.String(), "/")
	return p, nil
}

// LoadEnv reads a .env file into the process environment if one exists.
// Variables already set take precedence.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ResolveProfile picks the gateway profile to use.
// Precedence: explicit URL, explicit name, EZCOLL_URL, EZCOLL_PROFILE,
// default_profile, then the built-in local profile. EZCOLL_TOKEN and the
// token argument override the stored token in that order.
func (c *Config) ResolveProfile(name, rawURL, token string) (Profile, error) {
	var (
		p   Profile
		err error
	)

	switch {
	case rawURL != "":
		p, err = ParseProfileURL(nameOr(name, "flag"), rawURL)
	case name != "":
		p, err = c.lookup(name)
	case os.Getenv(EnvURL) != "":
		p, err = ParseProfileURL("env", os.Getenv(EnvURL))
	case os.Getenv(EnvProfile) != "":
		p, err = c.lookup(os.Getenv(EnvProfile))
	case c.DefaultProfile != "":
		p, err = c.lookup(c.DefaultProfile)
	case len(c.Profiles) > 0:
		p = c.Profiles[0]
	default:
		p = Profile{Name: LocalProfileName, URL: LocalProfileURL}
	}
	if err != nil {
		return Profile{}, err
	}

	if env := os.Getenv(EnvToken); env != "" {
		p.Token = env
	}
	if token != "" {
		p.Token = token
	}
	return p, nil
}

func (c *Config) lookup(name string) (Profile, error) {
	p, err := c.GetProfile(name)
	if err != nil {
		if name == LocalProfileName {
			return Profile{Name: LocalProfileName, URL: LocalProfileURL}, nil
		}
		return Profile{}, err
	}
	return *p, nil
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
