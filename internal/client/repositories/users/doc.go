// Package users provides the persistence layer for the users table.
//
// A SQLite-backed implementation (SQLiteRepository) works over a dbx.DBTX,
// so the same repository runs against *sql.DB or inside a *sql.Tx opened by
// dbx.WithTx. The table itself is created by the embedded migrations in
// internal/client/migrations.
//
// Error contract:
//   - GetByEmail returns common.ErrorNotFound when no row matches.
//   - Create returns common.ErrDuplicateEmail, without the driver message,
//     when the email is already taken.
//   - Everything else is wrapped as "failed to <op> user: %w".
package users
