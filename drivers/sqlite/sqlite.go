// Package sqlite registers the cgo SQLite driver under the "sqlite3" dialect name.
package sqlite

import (
	_ "github.com/mattn/go-sqlite3"

	_ "github.com/shoothzj/table-facade/dialect"
)

// DriverName is the database/sql driver and dialect name.
const DriverName = "sqlite3"
