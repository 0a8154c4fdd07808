// ===== internal/config/config.go =====
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/ini.v1"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerURL string

	// File paths
	CookieFile string
	CacheDir   string

	// Timeouts
	HTTPTimeout time.Duration
	ToolTimeout time.Duration

	// Binary names for optional image tools
	Sips   string
	Magick string

	// Rendering settings
	AvatarSize int
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	welcomeDir := filepath.Join(home, ".welcome")

	return &Config{
		ServerURL:   "",
		CookieFile:  filepath.Join(welcomeDir, "cookies.json"),
		CacheDir:    filepath.Join(welcomeDir, "cache"),
		HTTPTimeout: 10 * time.Second,
		ToolTimeout: 10 * time.Second,
		Sips:        "sips",
		Magick:      "magick",
		AvatarSize:  26,
	}
}

// LoadFromFile loads configuration from INI file
func (c *Config) LoadFromFile(filename string) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		log.Printf("Skipping config file %s: %s", filename, err)
		return err
	}

	section := cfg.Section("")
	c.ServerURL = section.Key("serverurl").MustString(c.ServerURL)
	c.CookieFile = section.Key("cookiefile").MustString(c.CookieFile)
	c.CacheDir = section.Key("cachedir").MustString(c.CacheDir)
	c.HTTPTimeout = section.Key("httptimeout").MustDuration(c.HTTPTimeout)
	c.ToolTimeout = section.Key("tooltimeout").MustDuration(c.ToolTimeout)
	c.Sips = section.Key("sips").MustString(c.Sips)
	c.Magick = section.Key("magick").MustString(c.Magick)
	c.AvatarSize = section.Key("avatarsize").MustInt(c.AvatarSize)

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("WELCOME_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("WELCOME_COOKIE_FILE"); v != "" {
		c.CookieFile = v
	}
	if v := os.Getenv("WELCOME_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("WELCOME_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTPTimeout = d
		}
	}
	if v := os.Getenv("WELCOME_TOOL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ToolTimeout = d
		}
	}
	if v := os.Getenv("WELCOME_SIPS"); v != "" {
		c.Sips = v
	}
	if v := os.Getenv("WELCOME_MAGICK"); v != "" {
		c.Magick = v
	}
	if v := os.Getenv("WELCOME_AVATAR_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.AvatarSize = n
		}
	}
}

// New creates a new configuration instance
func New(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file first
	cfg.LoadFromFile(configFile)

	// Override with environment variables
	cfg.LoadFromEnv()

	// The menu is useless without a server to talk to
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("no server URL configured: set serverurl in %s or WELCOME_SERVER_URL", configFile)
	}

	return cfg, nil
}
