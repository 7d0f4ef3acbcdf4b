package config

import (
	"flag"
	"os"
	"time"

	"github.com/zhammer/scribly/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-m string   mock server base URL (e.g., "http://127.0.0.1:9991")
//	-b string   mock server bind address (e.g., ":9991")
//	-t int      network timeout, seconds
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with subcommand flags.
//   - The timeout flag is accepted as an integer in seconds and then converted
//     to a time.Duration value.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-m", "-b", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MockServerURL, "m", config.MockServerURL, "mock server base URL")
	fs.StringVar(&config.MockServerBindAddr, "b", config.MockServerBindAddr, "mock server bind address")

	networkTimeout := fs.Int("t", int(config.NetworkTimeout.Seconds()), "network timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.NetworkTimeout = time.Duration(*networkTimeout) * time.Second
}
