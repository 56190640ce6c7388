package dialect

import "strconv"

type sqlserver struct{}

func init() {
	Register("sqlserver", &sqlserver{})
}

func (d *sqlserver) Name() string {
	return "sqlserver"
}

func (d *sqlserver) Quote(name string) (string, error) {
	return Escape(name, "[", "]")
}

func (d *sqlserver) Placeholder(index int) string {
	return "@p" + strconv.Itoa(index)
}
