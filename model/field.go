package model

import (
	"fmt"
	"reflect"
)

// Column binds one table column to a struct field through an accessor pair.
// Get and Set receive a pointer to the domain type.
type Column struct {
	Name string       // DB column name
	Type reflect.Type // Value type the setter accepts
	Get  func(obj any) any
	Set  func(obj any, value any) error
}

// Binding is the typed form of a Column for domain type T.
type Binding[T any] struct {
	name string
	typ  reflect.Type
	get  func(*T) any
	set  func(*T, any) error
}

// Field builds a compile-time checked accessor pair for column.
// The setter receives the zero value of V when the stored value is NULL.
func Field[T, V any](column string, get func(*T) V, set func(*T, V)) Binding[T] {
	typ := reflect.TypeFor[V]()
	b := Binding[T]{name: column, typ: typ}
	if get != nil {
		b.get = func(t *T) any {
			return get(t)
		}
	}
	if set != nil {
		b.set = func(t *T, value any) error {
			if value == nil {
				var zero V
				set(t, zero)
				return nil
			}
			v, ok := value.(V)
			if !ok {
				return fmt.Errorf("%w: column %s expects %s, got %T", ErrTypeMismatch, column, typ, value)
			}
			set(t, v)
			return nil
		}
	}
	return b
}

// Column erases the binding's type parameter.
func (b Binding[T]) Column() Column {
	c := Column{Name: b.name, Type: b.typ}
	if get := b.get; get != nil {
		c.Get = func(obj any) any {
			return get(obj.(*T))
		}
	}
	if set := b.set; set != nil {
		c.Set = func(obj any, value any) error {
			return set(obj.(*T), value)
		}
	}
	return c
}
