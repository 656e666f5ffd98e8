package config

import (
	"time"

	"github.com/dmitrijs2005/recruitme/internal/common"
)

// Config holds runtime settings for the RecruitMe terminal client.
//
// Fields:
//   - DatabasePath: SQLite file holding the users table.
//   - JournalMode: SQLite journal mode applied before schema setup.
//   - BusyTimeout: how long SQLite waits on a locked database file.
//   - PasswordScheme: sha256 (default), argon2id or bcrypt.
//   - LogBackend / LogLevel: zap or slog, and the minimum level written to stderr.
type Config struct {
	DatabasePath   string
	JournalMode    string
	BusyTimeout    time.Duration
	PasswordScheme string
	LogBackend     string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = common.DefaultDatabasePath
	c.JournalMode = "WAL"
	c.BusyTimeout = 5 * time.Second
	c.PasswordScheme = "sha256"
	c.LogBackend = "zap"
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
