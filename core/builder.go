package core

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/shoothzj/table-facade/dialect"
	"github.com/shoothzj/table-facade/model"
)

// Builder generates insert, select-all and delete-all statements from metadata.
// Every table and column name goes through the dialect's Quote before it reaches the SQL text.
type Builder struct {
	dialect dialect.Dialect
}

// NewBuilder creates a Builder for the given dialect.
func NewBuilder(d dialect.Dialect) *Builder {
	return &Builder{dialect: d}
}

// Dialect returns the builder's dialect.
func (b *Builder) Dialect() dialect.Dialect {
	return b.dialect
}

func (b *Builder) quoteAll(m *model.Metadata) (string, []string, error) {
	table, err := b.dialect.Quote(m.TableName())
	if err != nil {
		return "", nil, err
	}
	columns := make([]string, m.NumColumns())
	for i := range columns {
		columns[i], err = b.dialect.Quote(m.Column(i).Name)
		if err != nil {
			return "", nil, err
		}
	}
	return table, columns, nil
}

// BuildInsert generates the INSERT statement for obj, a pointer to m's type.
// Parameter values are read through the column getters in column order.
func (b *Builder) BuildInsert(m *model.Metadata, obj any) (*Statement, error) {
	if isNull(obj) {
		return nil, fmt.Errorf("insert into %s: %w", m.TableName(), ErrNilValue)
	}
	if want := reflect.PointerTo(m.Type()); reflect.TypeOf(obj) != want {
		return nil, fmt.Errorf("insert into %s: %w: expected %s, got %T", m.TableName(), ErrTypeMismatch, want, obj)
	}

	table, columns, err := b.quoteAll(m)
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(columns))
	params := make([]Param, len(columns))
	for i := range columns {
		c := m.Column(i)
		placeholders[i] = b.dialect.Placeholder(i + 1)
		params[i] = newParam(c.Name, i+1, c.Get(obj))
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return &Statement{
		Op:      OpInsert,
		Table:   m.TableName(),
		Columns: m.ColumnNames(),
		SQL:     sql,
		Params:  params,
	}, nil
}

// BuildSelectAll generates an unfiltered SELECT of every mapped column.
func (b *Builder) BuildSelectAll(m *model.Metadata) (*Statement, error) {
	table, columns, err := b.quoteAll(m)
	if err != nil {
		return nil, err
	}
	return &Statement{
		Op:      OpSelect,
		Table:   m.TableName(),
		Columns: m.ColumnNames(),
		SQL:     "SELECT " + strings.Join(columns, ", ") + " FROM " + table,
	}, nil
}

// BuildDeleteAll generates an unconditional DELETE.
func (b *Builder) BuildDeleteAll(m *model.Metadata) (*Statement, error) {
	table, err := b.dialect.Quote(m.TableName())
	if err != nil {
		return nil, err
	}
	return &Statement{
		Op:    OpDelete,
		Table: m.TableName(),
		SQL:   "DELETE FROM " + table,
	}, nil
}

// BuildRaw wraps caller-written SQL and positional args.
func (b *Builder) BuildRaw(sql string, args ...any) *Statement {
	params := make([]Param, len(args))
	for i, a := range args {
		params[i] = newParam("", i+1, a)
	}
	return &Statement{Op: OpRaw, SQL: sql, Params: params}
}
