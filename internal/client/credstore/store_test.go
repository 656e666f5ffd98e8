package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"modernc.org/sqlite"

	"github.com/dmitrijs2005/recruitme/internal/common"
	"github.com/dmitrijs2005/recruitme/internal/cryptox"
	"github.com/dmitrijs2005/recruitme/internal/logging"
)

func newStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	s := New(path, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func initStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, _ := newStore(t, opts...)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func countTables(t *testing.T, db *sql.DB, name string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n))
	return n
}

func countUsers(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	return n
}

func storedHash(t *testing.T, db *sql.DB, email string) string {
	t.Helper()
	var h string
	require.NoError(t, db.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, email).Scan(&h))
	return h
}

func TestInitialize_CreatesSchema(t *testing.T) {
	s, _ := newStore(t)
	require.Equal(t, StateUninitialized, s.State())

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, StateSchemaReady, s.State())

	assert.Equal(t, 1, countTables(t, s.db, "users"))
	assert.Equal(t, 1, countTables(t, s.db, "goose_db_version"))

	rows, err := s.db.Query(`SELECT name FROM pragma_table_info('users') ORDER BY cid`)
	require.NoError(t, err)
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var c string
		require.NoError(t, rows.Scan(&c))
		cols = append(cols, c)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"id", "email", "password_hash"}, cols)
}

func TestInitialize_SetsWALJournalMode(t *testing.T) {
	s := initStore(t)

	var mode string
	require.NoError(t, s.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", strings.ToLower(mode))
}

func TestInitialize_CustomJournalMode(t *testing.T) {
	s := initStore(t, WithJournalMode("delete"))

	var mode string
	require.NoError(t, s.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "delete", strings.ToLower(mode))
}

func TestInitialize_Idempotent(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Initialize(ctx))
	assert.Equal(t, StateSchemaReady, s.State())
	assert.Equal(t, 1, countTables(t, s.db, "users"))

	got, err := s.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = s.Register(ctx, "b@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 2, countUsers(t, s.db))
}

func TestInitialize_ConnectionError_ResetsState(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing", "dir", "app.db"))
	t.Cleanup(func() { _ = s.Close() })

	err := s.Initialize(context.Background())
	require.ErrorIs(t, err, common.ErrConnection)
	assert.Equal(t, common.ErrConnection, KindOf(err))
	assert.Equal(t, StateUninitialized, s.State())
	assert.Nil(t, s.db)
}

func TestInitialize_RetriesWithFreshConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	calls := 0
	opener := func(driver, dsn string) (*sql.DB, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("storage not mounted")
		}
		return sql.Open(driver, dsn)
	}
	s := New(path, WithOpener(opener))
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	err := s.Initialize(ctx)
	require.ErrorIs(t, err, common.ErrConnection)
	assert.NotContains(t, err.Error(), "storage not mounted")
	assert.Equal(t, StateUninitialized, s.State())

	require.NoError(t, s.Initialize(ctx))
	assert.Equal(t, StateSchemaReady, s.State())
	assert.Equal(t, 2, calls)
}

func TestInitialize_ReopensClosedHandle(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	// simulate a handle that went bad underneath the store
	require.NoError(t, s.db.Close())

	require.NoError(t, s.Initialize(ctx))
	_, err = s.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
}

func TestInitialize_UnsupportedJournalMode(t *testing.T) {
	s, _ := newStore(t, WithJournalMode("bogus; DROP TABLE users"))

	err := s.Initialize(context.Background())
	require.ErrorIs(t, err, common.ErrSchema)
	assert.Equal(t, StateUninitialized, s.State())
	assert.Nil(t, s.db)
}

func TestInitialize_SchemaError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	// a foreign table squatting on goose's bookkeeping name breaks migrations
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE goose_db_version (junk TEXT)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s := New(path)
	t.Cleanup(func() { _ = s.Close() })

	err = s.Initialize(context.Background())
	require.ErrorIs(t, err, common.ErrSchema)
	assert.Equal(t, StateUninitialized, s.State())
	assert.Nil(t, s.db)
}

func TestRegisterAuthenticate_RoundTrip(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	pairs := []struct{ email, password string }{
		{"a@x.com", "pw1"},
		{"b@x.com", "secret"},
		{"c@x.com", "пароль со пробелами"},
		{"d@x.com", "p"},
	}
	for _, p := range pairs {
		reg, err := s.Register(ctx, p.email, p.password)
		require.NoError(t, err)
		assert.Positive(t, reg.ID)
		assert.Equal(t, p.email, reg.Email)

		auth, err := s.Authenticate(ctx, p.email, p.password)
		require.NoError(t, err)
		assert.Equal(t, reg, auth)
	}
}

func TestRegister_LazilyInitializes(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "lazy@x.com", "pw")
	require.NoError(t, err)
	assert.Positive(t, u.ID)
	assert.Equal(t, StateSchemaReady, s.State())
}

func TestRegister_StoresDigestNotPlaintext(t *testing.T) {
	s := initStore(t)

	_, err := s.Register(context.Background(), "a@x.com", "secret")
	require.NoError(t, err)

	want, err := Hash("secret")
	require.NoError(t, err)
	got := storedHash(t, s.db, "a@x.com")
	assert.Equal(t, want, got)
	assert.Len(t, got, 64)
	assert.NotContains(t, got, "secret")
}

func TestRegister_IdsIncrease(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	a, err := s.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	b, err := s.Register(ctx, "b@x.com", "pw")
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "a@x.com", "pw2")
	require.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.NotContains(t, err.Error(), "UNIQUE")
	var se *sqlite.Error
	assert.False(t, errors.As(err, &se), "duplicate errors carry no driver cause")

	want, err := Hash("pw1")
	require.NoError(t, err)
	assert.Equal(t, want, storedHash(t, s.db, "a@x.com"))
	assert.Equal(t, 1, countUsers(t, s.db))

	_, err = s.Authenticate(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, "a@x.com", "pw2")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegister_ConcurrentDuplicate(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Register(ctx, "race@x.com", "pw")
		}(i)
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrDuplicateEmail):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
	assert.Equal(t, 1, countUsers(t, s.db))
}

func TestRegister_FailedInsertCommitsNothing(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	_, err := s.db.Exec(`
CREATE TRIGGER reject_boom BEFORE INSERT ON users
WHEN NEW.email = 'boom@x.com'
BEGIN
    SELECT RAISE(ABORT, 'rejected by trigger');
END;`)
	require.NoError(t, err)

	_, err = s.Register(ctx, "boom@x.com", "pw")
	require.ErrorIs(t, err, common.ErrRegistration)
	require.NotErrorIs(t, err, common.ErrDuplicateEmail)
	assert.NotContains(t, err.Error(), "rejected by trigger")

	var se *sqlite.Error
	assert.True(t, errors.As(err, &se), "driver cause stays reachable for diagnostics")
	assert.Equal(t, 0, countUsers(t, s.db))
}

func TestRegister_InvalidPassword(t *testing.T) {
	s := initStore(t)

	_, err := s.Register(context.Background(), "a@x.com", "\xff")
	require.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, 0, countUsers(t, s.db))
}

func TestRegister_StoreUnavailable(t *testing.T) {
	s := New("unused", WithOpener(func(string, string) (*sql.DB, error) {
		return nil, errors.New("no disk")
	}))

	_, err := s.Register(context.Background(), "a@x.com", "pw")
	require.ErrorIs(t, err, common.ErrRegistration)
	require.ErrorIs(t, err, common.ErrConnection)
	assert.Equal(t, common.ErrRegistration, KindOf(err))
	assert.Equal(t, StateUninitialized, s.State())
}

func TestRegister_ClosedHandle(t *testing.T) {
	s := initStore(t)
	require.NoError(t, s.db.Close())

	_, err := s.Register(context.Background(), "a@x.com", "pw")
	require.ErrorIs(t, err, common.ErrRegistration)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "b@x.com", "secret")
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, "b@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Zero(t, u)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	s := initStore(t)

	_, err := s.Authenticate(context.Background(), "nobody@x.com", "anything")
	require.ErrorIs(t, err, common.ErrUserNotFound)
	require.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAuthenticate_EmailIsCaseSensitive(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "User@x.com", "pw")
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "user@x.com", "pw")
	require.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = s.Authenticate(ctx, "User@x.com", "pw")
	require.NoError(t, err)
}

func TestAuthenticate_InvalidPasswordInput(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "a@x.com", "\xc3\x28")
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestAuthenticate_StoreUnavailable(t *testing.T) {
	s := New("unused", WithOpener(func(string, string) (*sql.DB, error) {
		return nil, errors.New("no disk")
	}))

	_, err := s.Authenticate(context.Background(), "a@x.com", "pw")
	require.ErrorIs(t, err, common.ErrStorage)
	require.ErrorIs(t, err, common.ErrConnection)
}

func TestStore_CloseDuringOperations(t *testing.T) {
	s := initStore(t)
	ctx := context.Background()
	_, err := s.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	const workers, rounds = 4, 25
	errs := make(chan error, workers*rounds*2)
	stop := make(chan struct{})

	var closer sync.WaitGroup
	closer.Add(1)
	go func() {
		defer closer.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = s.Close()
				time.Sleep(time.Millisecond)
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_, err := s.Authenticate(ctx, "a@x.com", "pw")
				errs <- err
				_, err = s.Register(ctx, fmt.Sprintf("u%d-%d@x.com", w, i), "pw")
				errs <- err
			}
		}(w)
	}
	wg.Wait()
	close(stop)
	closer.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestStore_PersistsAcrossHandles(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, StateUninitialized, s.State())

	s2 := New(path)
	t.Cleanup(func() { _ = s2.Close() })
	got, err := s2.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = s.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err, "closed store reinitializes on demand")
}

func TestStore_WithArgon2Hasher(t *testing.T) {
	h := &cryptox.Argon2IDHasher{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}
	s := initStore(t, WithHasher(h))
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(storedHash(t, s.db, "a@x.com"), "$argon2id$"))

	_, err = s.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, "a@x.com", "nope")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAuthenticate_CorruptArgon2HashDoesNotPanic(t *testing.T) {
	h := &cryptox.Argon2IDHasher{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}
	s := initStore(t, WithHasher(h))
	ctx := context.Background()

	for i, stored := range []string{
		"$argon2id$v=19$m=65536,t=1,p=0$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=65536,t=0,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
	} {
		email := fmt.Sprintf("z%d@x.com", i)
		_, err := s.db.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, stored)
		require.NoError(t, err)

		require.NotPanics(t, func() {
			_, err = s.Authenticate(ctx, email, "pw")
		})
		require.ErrorIs(t, err, common.ErrStorage, stored)
		assert.Equal(t, StateSchemaReady, s.State())
	}
}

func TestStore_NeverLogsPasswords(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := initStore(t, WithLogger(logging.NewZapLogger(zap.New(core))))
	ctx := context.Background()

	const secret = "s3cr3t-Passw0rd"
	hash, err := Hash(secret)
	require.NoError(t, err)

	_, err = s.Register(ctx, "a@x.com", secret)
	require.NoError(t, err)
	_, _ = s.Register(ctx, "a@x.com", secret)
	_, _ = s.Authenticate(ctx, "a@x.com", secret)
	_, _ = s.Authenticate(ctx, "a@x.com", secret+"x")

	require.NotZero(t, logs.Len())
	for _, e := range logs.AllUntimed() {
		line := e.Message
		for k, v := range e.ContextMap() {
			line += " " + k + "=" + toString(v)
		}
		assert.NotContains(t, line, secret)
		assert.NotContains(t, line, hash)
	}

	registered := logs.FilterMessage("user registered").AllUntimed()
	require.Len(t, registered, 1)
	assert.NotEmpty(t, registered[0].ContextMap()["op_id"])
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if e, ok := v.(error); ok {
		return e.Error()
	}
	return ""
}

func TestError_Format(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: users.email")
	err := &Error{Op: "register", Kind: common.ErrRegistration, Err: cause}

	assert.Equal(t, "register: registration failed", err.Error())
	assert.ErrorIs(t, err, common.ErrRegistration)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, KindOf(errors.New("plain")))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "connection_open", StateConnectionOpen.String())
	assert.Equal(t, "journal_mode_set", StateJournalModeSet.String())
	assert.Equal(t, "schema_ready", StateSchemaReady.String())
	assert.Equal(t, "unknown", State(42).String())
}
