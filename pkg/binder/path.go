package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path binds string fields tagged `path:"name"` using extractor, typically
// chi.URLParam. Fields without the tag are left alone.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrFailedToParsePath)
		}
		rv = rv.Elem()
		rt := rv.Type()

		for i := range rt.NumField() {
			sf := rt.Field(i)
			name, ok := sf.Tag.Lookup("path")
			if !ok || name == "-" || !sf.IsExported() {
				continue
			}
			if sf.Type.Kind() != reflect.String {
				return fmt.Errorf("%w: field %s must be a string", ErrFailedToParsePath, sf.Name)
			}
			if value := extractor(r, name); value != "" {
				rv.Field(i).SetString(value)
			}
		}
		return nil
	}
}
