package model

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Metadata is the resolved, immutable mapping of a domain type onto a table.
type Metadata struct {
	typ     reflect.Type
	table   string
	newFn   func() any
	columns []Column
	index   map[string]int
}

// Type returns the struct type described.
func (m *Metadata) Type() reflect.Type { return m.typ }

// TableName returns the table name, verbatim from the definition.
func (m *Metadata) TableName() string { return m.table }

// NumColumns returns the number of mapped columns.
func (m *Metadata) NumColumns() int { return len(m.columns) }

// Column returns the i-th column in declaration order.
func (m *Metadata) Column(i int) Column { return m.columns[i] }

// Columns returns a copy of the columns in declaration order.
func (m *Metadata) Columns() []Column { return slices.Clone(m.columns) }

// ColumnNames returns the column names in declaration order.
func (m *Metadata) ColumnNames() []string {
	names := make([]string, len(m.columns))
	for i, c := range m.columns {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a column by name.
func (m *Metadata) Lookup(name string) (Column, bool) {
	i, ok := m.index[name]
	if !ok {
		return Column{}, false
	}
	return m.columns[i], true
}

// New returns a new zero instance, as a pointer to the described type.
func (m *Metadata) New() any { return m.newFn() }

// Registry caches metadata per type. Entries are never evicted.
type Registry struct {
	cache sync.Map // reflect.Type -> *Metadata
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry is the process-wide registry.
var DefaultRegistry = NewRegistry()

// Resolve returns the metadata for typ, building it on first use.
// Concurrent first use may build more than once; only one result is stored
// and every caller receives the stored one. Failures are not cached.
func (r *Registry) Resolve(typ reflect.Type) (*Metadata, error) {
	if typ == nil {
		return nil, fmt.Errorf("model: %w: nil type", ErrNotStruct)
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if cached, ok := r.cache.Load(typ); ok {
		return cached.(*Metadata), nil
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model: %w: %s", ErrNotStruct, typ)
	}

	tabler, ok := reflect.New(typ).Interface().(Tabler)
	if !ok {
		return nil, fmt.Errorf("model: %s: %w", typ, ErrMissingTable)
	}
	def := tabler.TableDefinition()
	if def.Type == nil {
		def.Type = typ
	}

	m, err := build(typ, def)
	if err != nil {
		return nil, err
	}
	actual, _ := r.cache.LoadOrStore(typ, m)
	return actual.(*Metadata), nil
}

// Register validates def and stores it. It is meant for startup-time registration
// of types that do not implement Tabler.
func (r *Registry) Register(def Definition) (*Metadata, error) {
	if def.Type == nil {
		return nil, fmt.Errorf("model: %w: definition of table %q has no type", ErrTypeMismatch, def.Table)
	}
	typ := def.Type
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model: %w: %s", ErrNotStruct, typ)
	}
	def.Type = typ

	m, err := build(typ, def)
	if err != nil {
		return nil, err
	}
	if _, loaded := r.cache.LoadOrStore(typ, m); loaded {
		return nil, fmt.Errorf("model: %s: %w", typ, ErrAlreadyRegistered)
	}
	return m, nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def Definition) *Metadata {
	m, err := r.Register(def)
	if err != nil {
		panic(err)
	}
	return m
}

// Len returns the number of cached types.
func (r *Registry) Len() int {
	n := 0
	r.cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// GetModel returns the metadata for the type of value, using DefaultRegistry.
func GetModel(value any) (*Metadata, error) {
	if value == nil {
		return nil, fmt.Errorf("model: %w: value is nil", ErrNotStruct)
	}
	return DefaultRegistry.Resolve(reflect.TypeOf(value))
}

// Of returns the metadata for T from r.
func Of[T any](r *Registry) (*Metadata, error) {
	return r.Resolve(reflect.TypeFor[T]())
}

// Register stores def in DefaultRegistry.
func Register(def Definition) (*Metadata, error) {
	return DefaultRegistry.Register(def)
}

// MustRegister stores def in DefaultRegistry and panics on error.
func MustRegister(def Definition) *Metadata {
	return DefaultRegistry.MustRegister(def)
}

func build(typ reflect.Type, def Definition) (*Metadata, error) {
	if def.Type != typ {
		return nil, fmt.Errorf("model: %w: definition describes %s, not %s", ErrTypeMismatch, def.Type, typ)
	}
	if def.New == nil {
		return nil, fmt.Errorf("model: %s: %w", typ, ErrNoConstructor)
	}

	zero := def.New()
	if zero == nil {
		return nil, fmt.Errorf("model: %s: %w: constructor returned nil", typ, ErrNoConstructor)
	}
	if got := reflect.TypeOf(zero); got != reflect.PointerTo(typ) {
		return nil, fmt.Errorf("model: %w: constructor of %s returns %s", ErrTypeMismatch, typ, got)
	}
	if reflect.ValueOf(zero).IsNil() {
		return nil, fmt.Errorf("model: %s: %w: constructor returned nil", typ, ErrNoConstructor)
	}

	m := &Metadata{
		typ:     typ,
		table:   def.Table,
		newFn:   def.New,
		columns: make([]Column, 0, len(def.Columns)),
		index:   make(map[string]int, len(def.Columns)),
	}
	for _, c := range def.Columns {
		if c.Get == nil || c.Set == nil || c.Type == nil {
			return nil, fmt.Errorf("model: %s: column %q: %w", typ, c.Name, ErrMissingAccessor)
		}
		if err := checkAccessors(c, zero); err != nil {
			return nil, fmt.Errorf("model: %s: column %q: %w", typ, c.Name, err)
		}
		if _, dup := m.index[c.Name]; dup {
			return nil, fmt.Errorf("model: %s: %w: %q", typ, ErrDuplicateColumn, c.Name)
		}
		m.index[c.Name] = len(m.columns)
		m.columns = append(m.columns, c)
	}
	return m, nil
}

// checkAccessors runs c's getter and setter against a fresh instance. Accessors
// built for another type panic on the pointer assertion.
func checkAccessors(c Column, obj any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: accessors do not accept %T: %v", ErrTypeMismatch, obj, r)
		}
	}()
	c.Get(obj)
	// errors from Set are ignored here, only panics count
	_ = c.Set(obj, reflect.Zero(c.Type).Interface())
	return nil
}
