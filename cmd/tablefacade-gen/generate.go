package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shoothzj/table-facade/dialect"
	"github.com/shoothzj/table-facade/logger"
)

const modelTemplate = `// Code generated by tablefacade-gen. DO NOT EDIT.

package {{.Package}}

import (
{{- if .NeedsTime}}
	"time"
{{end}}
	"github.com/shoothzj/table-facade/model"
)

// {{.StructName}} maps table {{.RawTableName}}.
type {{.StructName}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}{{if .Comment}} // {{.Comment}}{{end}}
{{- end}}
}

// TableDefinition binds {{.StructName}} to its columns.
func ({{.StructName}}) TableDefinition() model.Definition {
	return model.Define("{{.RawTableName}}",
{{- range .Fields}}
		model.Field("{{.Column}}", func(m *{{$.StructName}}) {{.Type}} { return m.{{.Name}} }, func(m *{{$.StructName}}, v {{.Type}}) { m.{{.Name}} = v }),
{{- end}}
	)
}
`

var tmpl = template.Must(template.New("model").Parse(modelTemplate))

// Field is one struct field of a generated model.
type Field struct {
	Name    string // Go field name
	Column  string // DB column name
	Type    string // Go type
	Comment string
}

// ModelData is the template input for one table.
type ModelData struct {
	Package      string
	StructName   string
	RawTableName string
	Fields       []Field
	NeedsTime    bool
}

// run generates the models selected by cfg and returns the number of files written.
func run(db *sql.DB, cfg Config, log logger.Logger) (int, error) {
	tables := []string{cfg.Table}
	if cfg.Table == "" {
		var err error
		tables, err = fetchAllTables(db, cfg.Driver)
		if err != nil {
			return 0, fmt.Errorf("list tables: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	n := 0
	for _, table := range tables {
		written, err := generateModel(db, cfg, table, log)
		if err != nil {
			if cfg.Table != "" {
				return n, fmt.Errorf("table %s: %w", table, err)
			}
			log.Warn("table %s: %v", table, err)
			continue
		}
		if written {
			n++
		}
	}
	return n, nil
}

func generateModel(db *sql.DB, cfg Config, table string, log logger.Logger) (bool, error) {
	if !dialect.Valid(table) {
		return false, fmt.Errorf("table %q: %w", table, dialect.ErrInvalidIdentifier)
	}
	fileName := filepath.Join(cfg.OutDir, strings.ToLower(table)+".go")
	if _, err := os.Stat(fileName); err == nil && !cfg.Overwrite {
		log.Warn("%s exists, skipped (use -overwrite)", fileName)
		return false, nil
	}

	columns, err := fetchColumns(db, cfg.Driver, table)
	if err != nil {
		return false, err
	}
	src, err := render(cfg.Package, cfg.Driver, table, columns)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(fileName, src, 0644); err != nil {
		return false, err
	}
	log.Info("generated %s -> %s", table, fileName)
	return true, nil
}

// render produces the gofmt-ed source of one model.
func render(pkg, driver, table string, columns []Column) ([]byte, error) {
	if !dialect.Valid(table) {
		return nil, fmt.Errorf("table %q: %w", table, dialect.ErrInvalidIdentifier)
	}
	data := ModelData{
		Package:      pkg,
		StructName:   goName(table),
		RawTableName: table,
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if !dialect.Valid(c.Name) {
			return nil, fmt.Errorf("column %q: %w", c.Name, dialect.ErrInvalidIdentifier)
		}
		f := Field{
			Name:    goName(c.Name),
			Column:  c.Name,
			Type:    mapType(driver, c),
			Comment: strings.Join(strings.Fields(c.Comment), " "),
		}
		if seen[f.Name] {
			f.Name += "_"
		}
		seen[f.Name] = true
		if strings.Contains(f.Type, "time.Time") {
			data.NeedsTime = true
		}
		data.Fields = append(data.Fields, f)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", table, err)
	}
	return src, nil
}

var initialisms = map[string]string{
	"id":   "ID",
	"ip":   "IP",
	"url":  "URL",
	"uri":  "URI",
	"api":  "API",
	"uuid": "UUID",
	"json": "JSON",
	"html": "HTML",
	"sql":  "SQL",
}

// goName converts a snake_case identifier to an exported Go name.
func goName(s string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		if v, ok := initialisms[strings.ToLower(part)]; ok {
			b.WriteString(v)
			continue
		}
		b.WriteString(title.String(part))
	}
	name := b.String()
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		name = "X" + name
	}
	return name
}
