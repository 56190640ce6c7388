package dialect

// SQLite dialect implementation
type sqlite3 struct{}

func init() {
	Register("sqlite3", &sqlite3{})
}

func (d *sqlite3) Name() string {
	return "sqlite3"
}

func (d *sqlite3) Quote(name string) (string, error) {
	return Escape(name, "`", "`")
}

func (d *sqlite3) Placeholder(index int) string {
	return "?"
}
