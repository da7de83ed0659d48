package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
)

// Query binds fields tagged `query:"name"` from the URL query string.
// String and int fields are supported; absent parameters leave the field alone.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidQuery)
		}
		rv = rv.Elem()
		rt := rv.Type()
		values := r.URL.Query()

		for i := range rt.NumField() {
			sf := rt.Field(i)
			name, ok := sf.Tag.Lookup("query")
			if !ok || name == "-" || !sf.IsExported() {
				continue
			}
			value := values.Get(name)
			if value == "" {
				continue
			}
			switch sf.Type.Kind() {
			case reflect.String:
				rv.Field(i).SetString(value)
			case reflect.Int:
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("%w: %s must be an integer", ErrInvalidQuery, name)
				}
				rv.Field(i).SetInt(int64(n))
			default:
				return fmt.Errorf("%w: field %s has unsupported type %s", ErrInvalidQuery, sf.Name, sf.Type)
			}
		}
		return nil
	}
}
