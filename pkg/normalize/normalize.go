// Package normalize converts simulation results into values that encode as JSON.
//
// Complex numbers become [re, im] pairs, NaN and infinities become nil, maps
// with non-string keys are re-keyed by their formatted value, and structs are
// flattened into maps using their json tags.
package normalize

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Value returns a JSON-encodable copy of v.
func Value(v any) any {
	if v == nil {
		return nil
	}
	return value(reflect.ValueOf(v))
}

// Map normalizes a map payload. Non-map results are returned under "value".
func Map(v any) map[string]any {
	if m, ok := Value(v).(map[string]any); ok {
		return m
	}
	return map[string]any{"value": Value(v)}
}

func value(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return value(v.Elem())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		return []any{Float(real(c)), Float(imag(c))}
	case reflect.Float32, reflect.Float64:
		return Float(v.Float())
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.String:
		return v.String()
	case reflect.Slice:
		if v.IsNil() {
			return []any{}
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = value(v.Index(i))
		}
		return out
	case reflect.Map:
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[Key(iter.Key())] = value(iter.Value())
		}
		return out
	case reflect.Struct:
		return structValue(v)
	default:
		return fmt.Sprint(v.Interface())
	}
}

// Float returns f, or nil when f is NaN or infinite.
func Float(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// Key formats a map key. Whole floats print without a fraction ("15", "-5").
func Key(k reflect.Value) string {
	for k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'f', -1, 64)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10)
	default:
		return fmt.Sprint(k.Interface())
	}
}

func structValue(v reflect.Value) map[string]any {
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}
		fv := v.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		out[name] = value(fv)
	}
	return out
}

func jsonName(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, strings.Contains(opts, "omitempty"), false
}
