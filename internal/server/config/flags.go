package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/flagx"
)

// Flags understood by parseFlags. Everything else in os.Args is ignored so
// subcommand arguments of cmd/admin pass through.
var serverFlags = []string{"-a", "-D", "-d", "-k", "-r", "-l", "-w", "-v", "-m", "-u", "-p", "-b", "-g", "-e"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   protocol bind address (e.g., ":5500")
//	-D string   database driver, sqlite or pgx
//	-d string   database DSN
//	-k string   storage backend, local or s3
//	-r string   local storage root
//	-l int      failed logins tolerated per window
//	-w int      failed login window, minutes
//	-v int      session validity, hours
//	-m string   metrics bind address (empty disables)
//	-u string   S3 user
//	-p string   S3 password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver (sqlite or pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageBackend, "k", config.StorageBackend, "storage backend (local or s3)")
	fs.StringVar(&config.StorageRoot, "r", config.StorageRoot, "local storage root")
	fs.IntVar(&config.AttemptLimit, "l", config.AttemptLimit, "failed logins tolerated per window")

	attemptWindow := fs.Int("w", int(config.AttemptWindow.Minutes()), "failed login window (in minutes)")
	sessionValidity := fs.Int("v", int(config.SessionValidity.Hours()), "session validity (in hours)")

	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics address (empty disables)")
	fs.StringVar(&config.S3User, "u", config.S3User, "S3 user")
	fs.StringVar(&config.S3Password, "p", config.S3Password, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AttemptWindow = time.Duration(*attemptWindow) * time.Minute
	config.SessionValidity = time.Duration(*sessionValidity) * time.Hour
}
