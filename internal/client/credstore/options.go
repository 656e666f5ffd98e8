package credstore

import (
	"database/sql"
	"time"

	"github.com/dmitrijs2005/recruitme/internal/cryptox"
	"github.com/dmitrijs2005/recruitme/internal/logging"
)

const (
	DefaultJournalMode = "WAL"
	DefaultBusyTimeout = 5 * time.Second
)

// Opener opens a database handle; sql.Open by default.
type Opener func(driverName, dsn string) (*sql.DB, error)

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithHasher(h cryptox.PasswordHasher) Option {
	return func(s *Store) { s.hasher = h }
}

// WithJournalMode selects the SQLite journal mode applied before schema
// setup. One of DELETE, TRUNCATE, PERSIST, MEMORY, WAL, OFF.
func WithJournalMode(mode string) Option {
	return func(s *Store) { s.journalMode = mode }
}

func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) { s.busyTimeout = d }
}

func WithOpener(o Opener) Option {
	return func(s *Store) { s.open = o }
}
