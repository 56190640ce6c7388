package model

import "reflect"

// Definition is the schema descriptor a domain type declares:
// its table name, how to construct it, and its ordered column bindings.
type Definition struct {
	Type    reflect.Type
	Table   string
	New     func() any
	Columns []Column
}

// Tabler is implemented by domain types that carry their own definition.
// TableDefinition is called on a zero value, at most a few times per process.
type Tabler interface {
	TableDefinition() Definition
}

// Define builds the definition of T. Column order follows the order of fields.
func Define[T any](table string, fields ...Binding[T]) Definition {
	columns := make([]Column, len(fields))
	for i, f := range fields {
		columns[i] = f.Column()
	}
	return Definition{
		Type:  reflect.TypeFor[T](),
		Table: table,
		New: func() any {
			return new(T)
		},
		Columns: columns,
	}
}
