//go:build !purego_sqlite

// CGO SQLite driver using mattn/go-sqlite3. This is the default; build with
// -tags purego_sqlite for a CGO-free binary.
package store

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverName = "sqlite3"
	driverType = "cgo"
)

func dsn(path string) string {
	return path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000"
}
