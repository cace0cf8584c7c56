package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-D", "pgx", "-d", "postgres://db", "-k", "s3", "-r", "/srv/groups",
			"-l", "3", "-w", "15", "-v", "2", "-m", ":9100",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		}, expected: &Config{
			ListenAddr:      "127.0.0.1:9090",
			DatabaseDriver:  "pgx",
			DatabaseDSN:     "postgres://db",
			StorageBackend:  "s3",
			StorageRoot:     "/srv/groups",
			AttemptLimit:    3,
			AttemptWindow:   15 * time.Minute,
			SessionValidity: 2 * time.Hour,
			MetricsAddr:     ":9100",
			S3User:          "user",
			S3Password:      "password",
			S3Bucket:        "bucket",
			S3Region:        "us-west-1",
			S3BaseEndpoint:  "http://endpoint",
		}},
		{name: "foreign arguments are ignored", args: []string{"admin", "add-user", "dave", "-d", "other.db", "-x", "1"},
			expected: &Config{DatabaseDSN: "other.db"}},
		{name: "bad integer panics", args: []string{"cmd", "-l", "many"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
