package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/recruitme/internal/flagx"
	"github.com/dmitrijs2005/recruitme/internal/timex"
)

// FileConfig is the DTO decoded from a JSON or YAML config file. Pointer
// fields distinguish "absent" from "empty" so absent keys keep defaults.
type FileConfig struct {
	DatabasePath   *string         `json:"database_path" yaml:"database_path"`
	JournalMode    *string         `json:"journal_mode" yaml:"journal_mode"`
	BusyTimeout    *timex.Duration `json:"busy_timeout" yaml:"busy_timeout"`
	PasswordScheme *string         `json:"password_scheme" yaml:"password_scheme"`
	LogBackend     *string         `json:"log_backend" yaml:"log_backend"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config. It panics on read
// or decode errors; main treats that as a fatal startup error.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.DatabasePath != nil {
		cfg.DatabasePath = *fc.DatabasePath
	}
	if fc.JournalMode != nil {
		cfg.JournalMode = *fc.JournalMode
	}
	if fc.BusyTimeout != nil {
		cfg.BusyTimeout = fc.BusyTimeout.Duration
	}
	if fc.PasswordScheme != nil {
		cfg.PasswordScheme = *fc.PasswordScheme
	}
	if fc.LogBackend != nil {
		cfg.LogBackend = *fc.LogBackend
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
}
