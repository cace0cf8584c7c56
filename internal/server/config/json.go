package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/groupshare/internal/flagx"
	"github.com/dmitrijs2005/groupshare/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Absent fields keep the value
// already in Config.
type JsonConfig struct {
	ListenAddr      string         `json:"listen_addr"`
	DatabaseDriver  string         `json:"database_driver"`
	DatabaseDSN     string         `json:"database_dsn"`
	StorageBackend  string         `json:"storage_backend"`
	StorageRoot     string         `json:"storage_root"`
	AttemptLimit    int            `json:"attempt_limit"`
	AttemptWindow   timex.Duration `json:"attempt_window"`
	SessionValidity timex.Duration `json:"session_validity"`
	MetricsAddr     string         `json:"metrics_addr"`
	S3User          string         `json:"s3_user"`
	S3Password      string         `json:"s3_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag. Without the flag nothing is loaded. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.StorageRoot, c.StorageRoot)
	if c.AttemptLimit != 0 {
		config.AttemptLimit = c.AttemptLimit
	}
	if c.AttemptWindow.Duration != 0 {
		config.AttemptWindow = c.AttemptWindow.Duration
	}
	if c.SessionValidity.Duration != 0 {
		config.SessionValidity = c.SessionValidity.Duration
	}
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.S3User, c.S3User)
	setString(&config.S3Password, c.S3Password)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
