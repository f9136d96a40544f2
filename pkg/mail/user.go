package mail

import (
	"fmt"
	"reflect"
)

// User is the host's user object. The adapter reads the configured email and
// language attributes through Get and hands the whole value to the templates.
type User interface {
	Get(key string) any
}

// Attributes is a map-backed User.
type Attributes map[string]any

func (a Attributes) Get(key string) any {
	return a[key]
}

// isNilUser also catches typed nil pointers, whose Get would panic.
func isNilUser(u User) bool {
	if u == nil {
		return true
	}
	switch v := reflect.ValueOf(u); v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// stringAttribute returns the attribute as a string. Missing, nil and false
// values, and zero numbers, give "".
func stringAttribute(u User, key string) string {
	switch v := u.Get(key).(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case fmt.Stringer:
		return v.String()
	default:
		if rv := reflect.ValueOf(v); isNumber(rv.Kind()) && rv.IsZero() {
			return ""
		}
		return fmt.Sprint(v)
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
