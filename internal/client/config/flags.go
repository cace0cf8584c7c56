package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/groupshare/internal/flagx"
)

// parseFlags populates Config fields from -a, -k and -t. Other arguments are
// ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port of the server")
	fs.StringVar(&cfg.CookieFile, "k", cfg.CookieFile, "cookie file")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Timeout = time.Duration(*timeout) * time.Second
}
