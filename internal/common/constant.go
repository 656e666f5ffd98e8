package common

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// DefaultDatabasePath is the on-device database file used when nothing else
// is configured.
const DefaultDatabasePath = "app.db"
