// File: lixenwraith/settings/type.go
package settings

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
)

// scalarString coerces a scalar value into its configuration string form.
// Text marshalers win over fmt.Stringer so time.Time and net.IP round-trip.
func scalarString(val any) (string, error) {
	switch v := val.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case fmt.Stringer:
		return v.String(), nil
	case error:
		return v.Error(), nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(rv.Complex(), 'f', -1, 128), nil
	}

	return "", fmt.Errorf("cannot convert type %T to a scalar string", val)
}

// String retrieves a scalar at path as a string.
func (t *Tree) String(path string) (string, error) {
	val, found := t.Lookup(path)
	if !found {
		return "", fmt.Errorf("path not found: %s", path)
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("path %s holds %T, not a scalar", path, val)
	}
	return s, nil
}

// Int64 retrieves a scalar at path as int64.
// Base prefixes such as "0xFF" are accepted; floats are truncated.
func (t *Tree) Int64(path string) (int64, error) {
	s, err := t.String(path)
	if err != nil {
		return 0, err
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return i, nil
	} else if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
		return int64(f), nil
	} else {
		return 0, fmt.Errorf("cannot convert string %q to int64 for path %s: %w", s, path, err)
	}
}

// Bool retrieves a scalar at path as bool.
func (t *Tree) Bool(path string) (bool, error) {
	s, err := t.String(path)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", s, path, err)
	}
	return b, nil
}

// Float64 retrieves a scalar at path as float64.
func (t *Tree) Float64(path string) (float64, error) {
	s, err := t.String(path)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot convert string %q to float64 for path %s: %w", s, path, err)
	}
	return f, nil
}
