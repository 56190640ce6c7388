package core

import (
	"bytes"
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	timeType    = reflect.TypeFor[time.Time]()
	scannerType = reflect.TypeFor[sql.Scanner]()
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce converts a value read from a backend into typ.
// nil becomes the zero value of typ.
func Coerce(src any, typ reflect.Type) (any, error) {
	if typ == nil {
		return src, nil
	}
	if src == nil {
		return reflect.Zero(typ).Interface(), nil
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(typ) {
		if b, ok := src.([]byte); ok {
			sv = reflect.ValueOf(bytes.Clone(b))
		}
		if typ.Kind() == reflect.Interface || sv.Type() == typ {
			return sv.Interface(), nil
		}
		// Named types sharing the underlying type, e.g. []byte into json.RawMessage.
		return sv.Convert(typ).Interface(), nil
	}

	if reflect.PointerTo(typ).Implements(scannerType) {
		ptr := reflect.New(typ)
		if err := ptr.Interface().(sql.Scanner).Scan(src); err != nil {
			return nil, fmt.Errorf("%w: %T to %s: %v", ErrUnsupportedConversion, src, typ, err)
		}
		return ptr.Elem().Interface(), nil
	}

	if typ.Kind() == reflect.Ptr {
		v, err := Coerce(src, typ.Elem())
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(typ.Elem())
		if rv := reflect.ValueOf(v); rv.IsValid() {
			ptr.Elem().Set(rv)
		}
		return ptr.Interface(), nil
	}

	if sv.Kind() == reflect.Ptr {
		if sv.IsNil() {
			return reflect.Zero(typ).Interface(), nil
		}
		return Coerce(sv.Elem().Interface(), typ)
	}

	out := reflect.New(typ).Elem()
	if err := assign(out, sv); err != nil {
		return nil, fmt.Errorf("%w: %T to %s: %v", ErrUnsupportedConversion, src, typ, err)
	}
	return out.Interface(), nil
}

func assign(dst, src reflect.Value) error {
	switch dst.Kind() {
	case reflect.String:
		s, err := asString(src)
		if err != nil {
			return err
		}
		dst.SetString(s)
		return nil

	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.Uint8 {
			break
		}
		switch {
		case isBytes(src):
			dst.SetBytes(bytes.Clone(src.Bytes()))
			return nil
		case src.Kind() == reflect.String:
			dst.SetBytes([]byte(src.String()))
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := asInt64(src)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := asUint64(src)
		if err != nil {
			return err
		}
		if dst.OverflowUint(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := asFloat64(src)
		if err != nil {
			return err
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("value %g overflows %s", f, dst.Type())
		}
		dst.SetFloat(f)
		return nil

	case reflect.Bool:
		b, err := asBool(src)
		if err != nil {
			return err
		}
		dst.SetBool(b)
		return nil

	case reflect.Struct:
		if dst.Type() == timeType {
			t, err := asTime(src)
			if err != nil {
				return err
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		}
	}

	if src.Type().ConvertibleTo(dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("no conversion from %s", src.Type())
}

func isBytes(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

func asString(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	}
	if isBytes(v) {
		return string(v.Bytes()), nil
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(time.RFC3339Nano), nil
	}
	return "", fmt.Errorf("no conversion from %s to string", v.Type())
}

func asText(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.String {
		return strings.TrimSpace(v.String()), true
	}
	if isBytes(v) {
		return strings.TrimSpace(string(v.Bytes())), true
	}
	return "", false
}

func asInt64(v reflect.Value) (int64, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("value %g is not an integer", f)
		}
		return int64(f), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	if s, ok := asText(v); ok {
		return strconv.ParseInt(s, 10, 64)
	}
	return 0, fmt.Errorf("no conversion from %s to integer", v.Type())
}

func asUint64(v reflect.Value) (uint64, error) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, fmt.Errorf("value %g is not an unsigned integer", f)
		}
		return uint64(f), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	if s, ok := asText(v); ok {
		return strconv.ParseUint(s, 10, 64)
	}
	return 0, fmt.Errorf("no conversion from %s to unsigned integer", v.Type())
}

func asFloat64(v reflect.Value) (float64, error) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), nil
	}
	if s, ok := asText(v); ok {
		return strconv.ParseFloat(s, 64)
	}
	return 0, fmt.Errorf("no conversion from %s to float", v.Type())
}

func asBool(v reflect.Value) (bool, error) {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() != 0, nil
	}
	if s, ok := asText(v); ok {
		return strconv.ParseBool(s)
	}
	return false, fmt.Errorf("no conversion from %s to bool", v.Type())
}

func asTime(v reflect.Value) (time.Time, error) {
	if v.Type() == timeType {
		return v.Interface().(time.Time), nil
	}
	s, ok := asText(v)
	if !ok {
		return time.Time{}, fmt.Errorf("no conversion from %s to time", v.Type())
	}
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as time", s)
}
