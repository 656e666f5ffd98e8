// Package credstore is the on-device credential store: it owns the SQLite
// handle, sets up the users table, and registers and authenticates users.
//
// A Store moves through
//
//	Uninitialized -> ConnectionOpen -> JournalModeSet -> SchemaReady
//
// in Initialize. Register and Authenticate initialize lazily, so the schema
// is always in place before either can succeed. Any setup failure closes the
// handle and returns the store to Uninitialized; the next call starts over
// with a fresh connection.
//
// Every failure is reported as *Error, whose Kind is one of the sentinels in
// internal/common:
//
//	user, err := store.Authenticate(ctx, email, password)
//	switch {
//	case errors.Is(err, common.ErrUserNotFound):
//	case errors.Is(err, common.ErrInvalidCredentials):
//	case err != nil:
//	}
//
// Error strings never contain driver messages, the password or its hash.
package credstore
