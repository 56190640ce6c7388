// Package mysql registers the MySQL driver under the "mysql" dialect name.
//
//	import _ "github.com/shoothzj/table-facade/drivers/mysql"
//	db, err := core.Open("mysql", "user:pass@tcp(localhost:3306)/app?parseTime=true", nil)
package mysql

import (
	_ "github.com/go-sql-driver/mysql"

	_ "github.com/shoothzj/table-facade/dialect"
)

// DriverName is the database/sql driver and dialect name.
const DriverName = "mysql"
