package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/recruitme/internal/client/migrations"
	"github.com/dmitrijs2005/recruitme/internal/client/models"
	"github.com/dmitrijs2005/recruitme/internal/client/repositories/users"
	"github.com/dmitrijs2005/recruitme/internal/common"
	"github.com/dmitrijs2005/recruitme/internal/cryptox"
	"github.com/dmitrijs2005/recruitme/internal/dbx"
	"github.com/dmitrijs2005/recruitme/internal/logging"
)

var journalModes = map[string]struct{}{
	"DELETE": {}, "TRUNCATE": {}, "PERSIST": {}, "MEMORY": {}, "WAL": {}, "OFF": {},
}

// Store is a handle to one on-device credential database. It is safe for
// concurrent use; the underlying pool holds a single connection, so writes
// are serialized and the users.email unique constraint settles races.
//
// Register and Authenticate hold ops for reading for their whole run;
// Initialize and Close hold it for writing, so the handle is never closed
// or replaced under a running operation. Lock order is ops, then mu.
type Store struct {
	dsn         string
	journalMode string
	busyTimeout time.Duration
	hasher      cryptox.PasswordHasher
	logger      logging.Logger
	open        Opener

	ops   sync.RWMutex
	mu    sync.Mutex
	db    *sql.DB
	state State
}

// New returns an uninitialized store for dsn, a file path or any DSN the
// modernc.org/sqlite driver accepts. Nothing is opened until Initialize or
// the first Register/Authenticate call.
func New(dsn string, opts ...Option) *Store {
	s := &Store{
		dsn:         dsn,
		journalMode: DefaultJournalMode,
		busyTimeout: DefaultBusyTimeout,
		hasher:      cryptox.SHA256Hasher{},
		logger:      logging.NewNop(),
		open:        sql.Open,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports how far setup has progressed.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initialize opens (or revalidates) the connection, applies the journal mode
// outside any transaction and runs the schema migrations. It is idempotent.
func (s *Store) Initialize(ctx context.Context) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx)
}

func (s *Store) initLocked(ctx context.Context) error {
	const op = "initialize"
	log := s.opLogger(op)

	if err := s.connect(ctx, log); err != nil {
		log.Error(ctx, "database connection failed", "error", err)
		s.resetLocked()
		return &Error{Op: op, Kind: common.ErrConnection, Err: err}
	}
	s.state = StateConnectionOpen

	if err := s.applyPragmas(ctx, log); err != nil {
		log.Error(ctx, "journal mode setup failed", "error", err)
		s.resetLocked()
		return &Error{Op: op, Kind: common.ErrSchema, Err: err}
	}
	s.state = StateJournalModeSet

	if err := s.migrate(ctx, log); err != nil {
		log.Error(ctx, "schema migration failed", "error", err)
		s.resetLocked()
		return &Error{Op: op, Kind: common.ErrSchema, Err: err}
	}
	s.state = StateSchemaReady

	log.Info(ctx, "credential store ready", "state", s.state.String())
	return nil
}

func (s *Store) connect(ctx context.Context, log logging.Logger) error {
	if s.db != nil {
		if err := s.db.PingContext(ctx); err == nil {
			log.Debug(ctx, "reusing open database handle")
			return nil
		}
		log.Warn(ctx, "cached database handle is unusable, reopening")
		_ = s.db.Close()
		s.db = nil
	}

	db, err := s.open(common.DriverName, s.dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	var one int
	if err := db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		_ = db.Close()
		return fmt.Errorf("probe database: %w", err)
	}

	s.db = db
	log.Info(ctx, "database opened", "dsn", s.dsn)
	return nil
}

// applyPragmas runs on the pool directly: SQLite refuses to change the
// journal mode inside a transaction.
func (s *Store) applyPragmas(ctx context.Context, log logging.Logger) error {
	mode := strings.ToUpper(s.journalMode)
	if _, ok := journalModes[mode]; !ok {
		return fmt.Errorf("unsupported journal mode %q", s.journalMode)
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}

	var got string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode = "+mode).Scan(&got); err != nil {
		return fmt.Errorf("set journal mode: %w", err)
	}
	if !strings.EqualFold(got, mode) {
		// in-memory databases always report "memory"
		log.Warn(ctx, "journal mode not applied", "requested", mode, "actual", got)
		return nil
	}
	log.Debug(ctx, "journal mode set", "mode", got)
	return nil
}

// migrate applies the embedded migrations; goose runs each one in its own
// transaction.
func (s *Store) migrate(ctx context.Context, log logging.Logger) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info(ctx, "migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

func (s *Store) resetLocked() {
	if s.db != nil {
		_ = s.db.Close()
	}
	s.db = nil
	s.state = StateUninitialized
}

// handle returns the ready database, initializing on first use. The caller
// must hold ops for reading until it is done with the handle.
func (s *Store) handle(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSchemaReady {
		if err := s.initLocked(ctx); err != nil {
			return nil, err
		}
	}
	return s.db, nil
}

func (s *Store) usersRepo(tx dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(tx)
}

func (s *Store) opLogger(op string) logging.Logger {
	return s.logger.With("op", op, "op_id", uuid.NewString())
}

// Register creates a user with the given email and password. The caller is
// expected to pass trimmed, non-empty values.
//
// It fails with common.ErrInvalidInput for a password that is not valid UTF-8,
// common.ErrDuplicateEmail if the email is taken and common.ErrRegistration
// for anything else. No row is written on failure.
func (s *Store) Register(ctx context.Context, email, password string) (models.User, error) {
	const op = "register"
	log := s.opLogger(op)

	s.ops.RLock()
	defer s.ops.RUnlock()

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return models.User{}, &Error{Op: op, Kind: common.ErrInvalidInput, Err: err}
		}
		log.Error(ctx, "password hashing failed", "scheme", s.hasher.Scheme(), "error", err)
		return models.User{}, &Error{Op: op, Kind: common.ErrRegistration, Err: err}
	}

	db, err := s.handle(ctx)
	if err != nil {
		return models.User{}, &Error{Op: op, Kind: common.ErrRegistration, Err: err}
	}

	var id int64
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		id, err = s.usersRepo(tx).Create(ctx, email, hash)
		return err
	})
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		log.Info(ctx, "registration rejected, email taken", "email", email)
		return models.User{}, &Error{Op: op, Kind: common.ErrDuplicateEmail}
	case err != nil:
		log.Error(ctx, "registration failed", "email", email, "error", err)
		return models.User{}, &Error{Op: op, Kind: common.ErrRegistration, Err: err}
	}

	log.Info(ctx, "user registered", "user_id", id, "email", email)
	return models.User{ID: id, Email: email}, nil
}

// Authenticate looks the user up by exact email and checks the password.
// Lookup and comparison share one transaction.
//
// It fails with common.ErrUserNotFound, common.ErrInvalidCredentials,
// common.ErrInvalidInput, or common.ErrStorage when the database cannot be
// read.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	const op = "authenticate"
	log := s.opLogger(op)

	s.ops.RLock()
	defer s.ops.RUnlock()

	db, err := s.handle(ctx)
	if err != nil {
		return models.User{}, &Error{Op: op, Kind: common.ErrStorage, Err: err}
	}

	var user models.User
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rec, err := s.usersRepo(tx).GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		ok, err := s.hasher.Verify(password, rec.PasswordHash)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrInvalidCredentials
		}
		user = rec.Public()
		return nil
	})
	switch {
	case err == nil:
		log.Info(ctx, "user authenticated", "user_id", user.ID)
		return user, nil
	case errors.Is(err, common.ErrorNotFound):
		log.Info(ctx, "authentication failed, unknown email", "email", email)
		return models.User{}, &Error{Op: op, Kind: common.ErrUserNotFound}
	case errors.Is(err, common.ErrInvalidCredentials):
		log.Info(ctx, "authentication failed, wrong password", "email", email)
		return models.User{}, &Error{Op: op, Kind: common.ErrInvalidCredentials}
	case errors.Is(err, common.ErrInvalidInput):
		return models.User{}, &Error{Op: op, Kind: common.ErrInvalidInput, Err: err}
	default:
		log.Error(ctx, "authentication lookup failed", "email", email, "error", err)
		return models.User{}, &Error{Op: op, Kind: common.ErrStorage, Err: err}
	}
}

// Close waits for running operations, then releases the connection. The
// store can be initialized again later.
func (s *Store) Close() error {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.state = StateUninitialized
	return err
}
