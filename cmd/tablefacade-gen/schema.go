package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shoothzj/table-facade/dialect"
)

// Column is one introspected table column.
type Column struct {
	Name    string
	DBType  string
	NotNull bool
	PK      bool
	Comment string
}

func fetchAllTables(db *sql.DB, driver string) ([]string, error) {
	var query string
	switch driver {
	case "sqlite3":
		query = "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	case "mysql":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name"
	case "postgres", "opengauss":
		query = "SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = current_schema() ORDER BY tablename"
	case "sqlserver":
		query = "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func fetchColumns(db *sql.DB, driver, table string) ([]Column, error) {
	// the table name is interpolated into PRAGMA below
	if !dialect.Valid(table) {
		return nil, fmt.Errorf("%w: %q", dialect.ErrInvalidIdentifier, table)
	}

	var (
		rows *sql.Rows
		err  error
	)
	switch driver {
	case "sqlite3":
		rows, err = db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	case "mysql":
		rows, err = db.Query(`SELECT column_name, column_type, is_nullable = 'NO', column_key = 'PRI', column_comment
			FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?
			ORDER BY ordinal_position`, table)
	case "postgres", "opengauss":
		rows, err = db.Query(`SELECT c.column_name, c.data_type, c.is_nullable = 'NO',
				EXISTS (
					SELECT 1 FROM information_schema.table_constraints tc
					JOIN information_schema.key_column_usage kcu
						ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
					WHERE tc.constraint_type = 'PRIMARY KEY' AND kcu.table_name = c.table_name AND kcu.column_name = c.column_name
				),
				COALESCE(col_description((quote_ident(c.table_schema) || '.' || quote_ident(c.table_name))::regclass, c.ordinal_position), '')
			FROM information_schema.columns c
			WHERE c.table_name = $1 AND c.table_schema = current_schema()
			ORDER BY c.ordinal_position`, table)
	case "sqlserver":
		rows, err = db.Query(`SELECT c.COLUMN_NAME, c.DATA_TYPE,
				CAST(CASE WHEN c.IS_NULLABLE = 'NO' THEN 1 ELSE 0 END AS BIT),
				CAST(CASE WHEN k.COLUMN_NAME IS NULL THEN 0 ELSE 1 END AS BIT),
				''
			FROM INFORMATION_SCHEMA.COLUMNS c
			LEFT JOIN (
				SELECT ku.TABLE_NAME, ku.COLUMN_NAME
				FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
				JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE ku ON tc.CONSTRAINT_NAME = ku.CONSTRAINT_NAME
				WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
			) k ON k.TABLE_NAME = c.TABLE_NAME AND k.COLUMN_NAME = c.COLUMN_NAME
			WHERE c.TABLE_NAME = @p1
			ORDER BY c.ORDINAL_POSITION`, table)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var c Column
		if driver == "sqlite3" {
			var (
				cid       int
				notnull   int
				dfltValue sql.NullString
				pk        int
			)
			if err := rows.Scan(&cid, &c.Name, &c.DBType, &notnull, &dfltValue, &pk); err != nil {
				return nil, err
			}
			c.NotNull = notnull == 1
			c.PK = pk > 0
		} else if err := rows.Scan(&c.Name, &c.DBType, &c.NotNull, &c.PK, &c.Comment); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", table)
	}
	return columns, nil
}

// mapType maps a database column type to the Go type of its struct field.
// Nullable scalar columns become pointers so NULL survives a round trip.
func mapType(driver string, c Column) string {
	upper := strings.ToUpper(strings.TrimSpace(c.DBType))
	// "TINYINT(1)" -> "TINYINT", "INT UNSIGNED" -> "INT"
	base, _, _ := strings.Cut(upper, "(")
	fields := strings.Fields(base)
	if len(fields) == 0 {
		return "any"
	}
	base = fields[0]

	var typ string
	switch base {
	case "TINYINT":
		if strings.HasPrefix(upper, "TINYINT(1)") {
			typ = "bool"
		} else {
			typ = "int8"
		}
	case "SMALLINT", "INT2":
		typ = "int16"
	case "MEDIUMINT", "INT", "INT4":
		typ = "int32"
	case "INTEGER":
		// SQLite integers are 64-bit
		if driver == "sqlite3" {
			typ = "int64"
		} else {
			typ = "int32"
		}
	case "BIGINT", "INT8":
		typ = "int64"
	case "BOOLEAN", "BOOL", "BIT":
		typ = "bool"
	case "BLOB", "LONGBLOB", "MEDIUMBLOB", "TINYBLOB", "BYTEA", "BINARY", "VARBINARY", "IMAGE":
		return "[]byte"
	case "JSON", "JSONB", "UUID", "UNIQUEIDENTIFIER":
		typ = "string"
	case "DECIMAL", "NUMERIC", "DOUBLE", "MONEY", "FLOAT8":
		typ = "float64"
	case "REAL":
		if driver == "sqlite3" {
			typ = "float64"
		} else {
			typ = "float32"
		}
	case "FLOAT", "FLOAT4":
		typ = "float32"
	case "DATE", "TIME", "DATETIME", "DATETIME2", "SMALLDATETIME", "DATETIMEOFFSET", "TIMESTAMP", "TIMESTAMPTZ":
		typ = "time.Time"
	default:
		if strings.Contains(base, "CHAR") || strings.Contains(base, "TEXT") {
			typ = "string"
		} else {
			return "any"
		}
	}
	if !c.NotNull {
		return "*" + typ
	}
	return typ
}
