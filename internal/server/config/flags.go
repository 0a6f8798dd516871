package config

import (
	"flag"
	"os"

	"github.com/erisahalipaj/userauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN
//	-s string     token-signing secret key
//	-t duration   access token validity (e.g., "15m")
//
// os.Args is filtered to just these flags first, so the -c/-config flag
// handled by the YAML layer does not trip the parser.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token secret key")
	fs.DurationVar(&config.TokenValidity, "t", config.TokenValidity, "access token validity")

	return fs.Parse(args)
}
