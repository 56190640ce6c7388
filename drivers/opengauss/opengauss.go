// Package opengauss registers the pgx driver a second time under the
// "opengauss" name, so openGauss uses PostgreSQL quoting through pgx.
package opengauss

import (
	"database/sql"
	"slices"

	"github.com/jackc/pgx/v5/stdlib"

	_ "github.com/shoothzj/table-facade/dialect"
)

// DriverName is the database/sql driver and dialect name.
const DriverName = "opengauss"

func init() {
	if !slices.Contains(sql.Drivers(), DriverName) {
		sql.Register(DriverName, stdlib.GetDefaultDriver())
	}
}
