package core

import (
	"errors"
	"fmt"

	"github.com/shoothzj/table-facade/dialect"
	"github.com/shoothzj/table-facade/model"
)

var (
	// ErrInvalidIdentifier is returned when a table or column name is malformed.
	ErrInvalidIdentifier = dialect.ErrInvalidIdentifier
	// ErrMissingTable is returned when a type carries no table definition.
	ErrMissingTable = model.ErrMissingTable
	// ErrMissingAccessor is returned when a column has no getter or setter.
	ErrMissingAccessor = model.ErrMissingAccessor
	// ErrNoConstructor is returned when a type's definition cannot construct instances.
	ErrNoConstructor = model.ErrNoConstructor
	// ErrTypeMismatch is returned when a value does not match the type a definition describes.
	ErrTypeMismatch = model.ErrTypeMismatch
	// ErrDuplicateColumn is returned when a definition binds a column name twice.
	ErrDuplicateColumn = model.ErrDuplicateColumn
	// ErrNotStruct is returned when resolving a type that is not a struct.
	ErrNotStruct = model.ErrNotStruct
	// ErrAlreadyRegistered is returned when registering a type twice.
	ErrAlreadyRegistered = model.ErrAlreadyRegistered
	// ErrRowMapping is matched by every *RowMappingError.
	ErrRowMapping = errors.New("row mapping failed")
	// ErrUnsupportedConversion is returned when a backend value cannot be coerced to a column type.
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	// ErrUnknownDialect is returned when no dialect is registered for a driver name.
	ErrUnknownDialect = errors.New("unknown dialect")
	// ErrNilValue is returned when a nil instance is passed to an operation.
	ErrNilValue = errors.New("nil value")
	// ErrClosed is returned when using a closed DB.
	ErrClosed = errors.New("db is closed")
	// ErrUnsupportedStatement is returned by backends that cannot run a statement kind.
	ErrUnsupportedStatement = errors.New("unsupported statement")
)

// RowMappingError reports a failure while reconstructing one object from a row.
type RowMappingError struct {
	Table  string
	Column string // empty when construction failed
	Err    error
}

func (e *RowMappingError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%v: table %s: %v", ErrRowMapping, e.Table, e.Err)
	}
	return fmt.Sprintf("%v: table %s column %s: %v", ErrRowMapping, e.Table, e.Column, e.Err)
}

func (e *RowMappingError) Unwrap() []error {
	return []error{ErrRowMapping, e.Err}
}
