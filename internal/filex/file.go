// Package filex holds filesystem helpers for on-device storage.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDatabaseDir creates the directory that will hold the database file
// at dsn. In-memory databases and "file:" URIs are left to the driver.
func EnsureDatabaseDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
