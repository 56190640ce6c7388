package dialect

import "strconv"

// PostgreSQL dialect implementation
type postgres struct {
	name string
}

func init() {
	Register("postgres", &postgres{name: "postgres"})
	// openGauss speaks the PostgreSQL protocol and quoting rules.
	Register("opengauss", &postgres{name: "opengauss"})
}

func (d *postgres) Name() string {
	return d.name
}

func (d *postgres) Quote(name string) (string, error) {
	// PostgreSQL uses double quotes for identifiers
	return Escape(name, `"`, `"`)
}

// PostgreSQL uses $1, $2, $3... for placeholders
func (d *postgres) Placeholder(index int) string {
	return "$" + strconv.Itoa(index)
}
