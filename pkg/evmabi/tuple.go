package evmabi

import (
	"fmt"
	"reflect"
	"unicode"
)

// TupleSlice normalizes a decoded tuple[] field into a list of name -> value
// maps. go-ethereum unpacks tuples into generated struct types whose field
// names are the capitalized member names; this flattens them back.
func TupleSlice(m map[string]interface{}, name string) ([]map[string]interface{}, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing field %s", name)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("field %s is not a tuple array", name)
	}
	out := make([]map[string]interface{}, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := structToMap(rv.Index(i))
		if err != nil {
			return nil, fmt.Errorf("field %s[%d]: %w", name, i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// Tuple normalizes a single decoded tuple field.
func Tuple(m map[string]interface{}, name string) (map[string]interface{}, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing field %s", name)
	}
	return structToMap(reflect.ValueOf(v))
}

func structToMap(rv reflect.Value) (map[string]interface{}, error) {
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("not a tuple")
	}
	out := make(map[string]interface{}, rv.NumField())
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		fieldName := rt.Field(i).Name
		runes := []rune(fieldName)
		runes[0] = unicode.ToLower(runes[0])
		out[string(runes)] = rv.Field(i).Interface()
	}
	return out, nil
}
