// Package config loads runtime configuration for the RecruitMe terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string     path to the SQLite database file
//	-j string     SQLite journal mode (WAL, DELETE, ...)
//	-t duration   SQLite busy timeout (e.g. 5s)
//	-s string     password scheme: sha256, argon2id, bcrypt
//	-lb string    log backend: zap or slog
//	-ll string    log level: debug, info, warn, error
//
// # File schema
//
// Durations accept strings like "5s" or integer nanoseconds:
//
//	{
//	  "database_path": "app.db",
//	  "journal_mode": "WAL",
//	  "busy_timeout": "5s",
//	  "password_scheme": "sha256",
//	  "log_backend": "zap",
//	  "log_level": "warn"
//	}
//
// Keys missing from the file keep their default values.
package config
