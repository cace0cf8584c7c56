package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/groupshare/internal/flagx"
	"github.com/dmitrijs2005/groupshare/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerAddr string         `json:"server_addr"`
	CookieFile string         `json:"cookie_file"`
	Timeout    timex.Duration `json:"timeout"`
}

// parseJson overlays Config with the fields present in the JSON file named
// by -c or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(b, c); err != nil {
		panic(err)
	}

	if c.ServerAddr != "" {
		cfg.ServerAddr = c.ServerAddr
	}
	if c.CookieFile != "" {
		cfg.CookieFile = c.CookieFile
	}
	if c.Timeout.Duration != 0 {
		cfg.Timeout = c.Timeout.Duration
	}
}
