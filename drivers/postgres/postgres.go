// Package postgres registers the lib/pq driver under the "postgres" dialect name.
package postgres

import (
	_ "github.com/lib/pq"

	_ "github.com/shoothzj/table-facade/dialect"
)

// DriverName is the database/sql driver and dialect name.
const DriverName = "postgres"
