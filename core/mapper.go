package core

import (
	"fmt"

	"github.com/shoothzj/table-facade/model"
)

// Mapper reconstructs domain objects from rows.
type Mapper struct{}

// Map creates a new instance of m's type and fills it from row, column by column.
// Any failure is returned as a *RowMappingError.
func (Mapper) Map(row Row, m *model.Metadata) (obj any, err error) {
	var column string
	defer func() {
		if r := recover(); r != nil {
			obj = nil
			err = &RowMappingError{Table: m.TableName(), Column: column, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	obj = m.New()
	if isNull(obj) {
		return nil, &RowMappingError{Table: m.TableName(), Err: ErrNoConstructor}
	}

	for i := 0; i < m.NumColumns(); i++ {
		c := m.Column(i)
		column = c.Name
		value, err := row.Get(c.Name, c.Type)
		if err != nil {
			return nil, &RowMappingError{Table: m.TableName(), Column: c.Name, Err: err}
		}
		if err := c.Set(obj, value); err != nil {
			return nil, &RowMappingError{Table: m.TableName(), Column: c.Name, Err: err}
		}
	}
	return obj, nil
}
