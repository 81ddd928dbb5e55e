// Package sqlite selects the SQLite database/sql driver.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite (driver "sqlite")
//   - -tags cgo_sqlite: mattn/go-sqlite3 (driver "sqlite3"), requires CGO_ENABLED=1
//
// Callers should use DriverName() rather than a hard-coded driver string.
package sqlite

import "github.com/jmoiron/sqlx"

// DriverName returns the SQL driver name for the compiled implementation
func DriverName() string {
	return driverName
}

// DriverType returns "purego" or "cgo"
func DriverType() string {
	return driverType
}

func init() {
	// sqlx only knows "sqlite3"; register the pure Go name for ? binds
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}
