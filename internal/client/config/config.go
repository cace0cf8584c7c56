package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the groupshare client.
type Config struct {
	ServerAddr string
	CookieFile string
	Timeout    time.Duration
}

// userConfigDir is a test seam for os.UserConfigDir.
var userConfigDir = os.UserConfigDir

// LoadDefaults populates c with defaults. The cookie lives in the user's
// configuration directory, or in the working directory when there is none.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:5500"
	c.Timeout = 10 * time.Second

	c.CookieFile = ".groupshare_cookie"
	if dir, err := userConfigDir(); err == nil {
		c.CookieFile = filepath.Join(dir, "groupshare", "cookie")
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
