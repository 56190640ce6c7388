package core

import (
	"reflect"
)

// Op is the kind of statement.
type Op int

const (
	OpRaw Op = iota
	OpInsert
	OpSelect
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "INSERT"
	case OpSelect:
		return "SELECT"
	case OpDelete:
		return "DELETE"
	default:
		return "RAW"
	}
}

// Param is one bound statement parameter.
type Param struct {
	Name     string       // Column name, empty for raw statements
	Position int          // 1-based
	Value    any          // nil when Null
	Type     reflect.Type // Runtime type of Value, nil when Null
	Null     bool
}

// Statement is a generated statement and its ordered parameters.
// Document backends use Op, Table and Columns and ignore SQL.
type Statement struct {
	Op      Op
	Table   string   // Raw, validated table name
	Columns []string // Raw, validated column names
	SQL     string
	Params  []Param
}

// Args returns the parameter values in position order.
func (s *Statement) Args() []any {
	args := make([]any, len(s.Params))
	for i, p := range s.Params {
		args[i] = p.Value
	}
	return args
}

func newParam(name string, position int, value any) Param {
	if isNull(value) {
		return Param{Name: name, Position: position, Null: true}
	}
	return Param{Name: name, Position: position, Value: value, Type: reflect.TypeOf(value)}
}

func isNull(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
