package model

import "errors"

var (
	// ErrMissingTable is returned when a type neither implements Tabler nor was registered.
	ErrMissingTable = errors.New("missing table definition")
	// ErrMissingAccessor is returned when a column lacks a getter, a setter or a value type.
	ErrMissingAccessor = errors.New("missing accessor")
	// ErrNoConstructor is returned when a definition cannot create new instances.
	ErrNoConstructor = errors.New("no default constructor")
	// ErrTypeMismatch is returned when a definition describes a different type than the one resolved,
	// or when a setter receives a value of the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrNotStruct is returned when resolving a type that is not a struct.
	ErrNotStruct = errors.New("not a struct type")
	// ErrAlreadyRegistered is returned when registering a type that is already cached.
	ErrAlreadyRegistered = errors.New("type already registered")
)
