// Package sqlserver registers the SQL Server driver under the "sqlserver" dialect name.
package sqlserver

import (
	_ "github.com/denisenkom/go-mssqldb"

	_ "github.com/shoothzj/table-facade/dialect"
)

// DriverName is the database/sql driver and dialect name.
const DriverName = "sqlserver"
