package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/recruitme/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Only the flags
// listed here are considered; everything else in os.Args is ignored. It
// panics on malformed values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-j", "-t", "-s", "-lb", "-ll"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the SQLite database file")
	fs.StringVar(&cfg.JournalMode, "j", cfg.JournalMode, "SQLite journal mode")
	fs.DurationVar(&cfg.BusyTimeout, "t", cfg.BusyTimeout, "SQLite busy timeout")
	fs.StringVar(&cfg.PasswordScheme, "s", cfg.PasswordScheme, "password scheme (sha256, argon2id, bcrypt)")
	fs.StringVar(&cfg.LogBackend, "lb", cfg.LogBackend, "log backend (zap, slog)")
	fs.StringVar(&cfg.LogLevel, "ll", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
