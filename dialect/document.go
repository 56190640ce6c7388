package dialect

// document is the dialect of non-SQL stores (collections, lists).
// Names are validated but not quoted; the statement text is only used for logging.
type document struct {
	name string
}

func init() {
	Register("mongodb", &document{name: "mongodb"})
	Register("redis", &document{name: "redis"})
}

func (d *document) Name() string {
	return d.name
}

func (d *document) Quote(name string) (string, error) {
	return Escape(name, "", "")
}

func (d *document) Placeholder(index int) string {
	return "?"
}
