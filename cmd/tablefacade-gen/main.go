// Command tablefacade-gen reads table schemas from a live database and writes
// one Go file per table: a struct plus the TableDefinition binding it to its columns.
//
//	tablefacade-gen -driver sqlite3 -dsn app.db -pkg models -out ./models
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/shoothzj/table-facade/drivers/mysql"
	_ "github.com/shoothzj/table-facade/drivers/opengauss"
	_ "github.com/shoothzj/table-facade/drivers/postgres"
	_ "github.com/shoothzj/table-facade/drivers/sqlite"
	_ "github.com/shoothzj/table-facade/drivers/sqlserver"
	"github.com/shoothzj/table-facade/logger"
)

var (
	driverName = flag.String("driver", "sqlite3", "database driver (sqlite3, mysql, postgres, opengauss, sqlserver)")
	dsn        = flag.String("dsn", "", "data source name")
	tableName  = flag.String("table", "", "table to generate, all tables when empty")
	pkgName    = flag.String("pkg", "models", "package name of the generated code")
	outDir     = flag.String("out", "./models", "output directory")
	overwrite  = flag.Bool("overwrite", false, "overwrite existing files")
	verbose    = flag.Bool("v", false, "log every generated file")
)

// Config holds one generator run.
type Config struct {
	Driver    string
	Table     string
	Package   string
	OutDir    string
	Overwrite bool
}

func main() {
	flag.Parse()
	log := logger.NewStdLogger()
	if !*verbose {
		log.SetLevel(logger.LogLevelWarn)
	}

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "usage: tablefacade-gen -dsn <dsn> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	db, err := sql.Open(*driverName, *dsn)
	if err != nil {
		log.Error("open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := Config{
		Driver:    *driverName,
		Table:     *tableName,
		Package:   *pkgName,
		OutDir:    *outDir,
		Overwrite: *overwrite,
	}
	n, err := run(db, cfg, log)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	fmt.Printf("generated %d file(s)\n", n)
}
