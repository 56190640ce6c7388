package dialect

// MySQL dialect implementation
type mysql struct{}

func init() {
	Register("mysql", &mysql{})
}

func (d *mysql) Name() string {
	return "mysql"
}

func (d *mysql) Quote(name string) (string, error) {
	return Escape(name, "`", "`")
}

func (d *mysql) Placeholder(index int) string {
	return "?"
}
