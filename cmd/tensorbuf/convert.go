package main

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/born-ml/tensorbuf/tensor"
)

// parseJSON decodes doc into nested Go slices whose leaves have dtype's host
// type, e.g. [[1,2],[3]] with int32 becomes [][]int32{{1, 2}, {3}}.
func parseJSON(doc string, dtype tensor.DataType) (any, error) {
	leaf, ok := dtype.HostType()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no Go element type", tensor.ErrNoMapping, dtype)
	}
	if dtype.Class() == tensor.ClassComplex {
		return nil, fmt.Errorf("%w: %s values cannot be written as JSON", tensor.ErrNotImplemented, dtype)
	}

	dec := json.NewDecoder(strings.NewReader(doc))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	typ := leaf
	for i := 0; i < depth(raw); i++ {
		typ = reflect.SliceOf(typ)
	}
	out := reflect.New(typ).Elem()
	if err := assign(out, raw, nil); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// depth returns the deepest array nesting in v.
func depth(v any) int {
	arr, ok := v.([]any)
	if !ok {
		return 0
	}
	d := 0
	for _, e := range arr {
		d = max(d, depth(e))
	}
	return d + 1
}

// assign stores the JSON value v into dst. path locates v for error messages.
func assign(dst reflect.Value, v any, path []int) error {
	if dst.Kind() == reflect.Slice {
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%w: expected array at %v, got %T", tensor.ErrInvalidArgument, path, v)
		}
		s := reflect.MakeSlice(dst.Type(), len(arr), len(arr))
		for i, e := range arr {
			if err := assign(s.Index(i), e, append(path, i)); err != nil {
				return err
			}
		}
		dst.Set(s)
		return nil
	}

	switch dst.Kind() {
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return leafError(dst, v, path)
		}
		dst.SetBool(b)
	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return leafError(dst, v, path)
		}
		dst.SetString(s)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.(json.Number)
		if !ok {
			return leafError(dst, v, path)
		}
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil || dst.OverflowInt(i) {
			return fmt.Errorf("%w: %s does not fit %v at %v", tensor.ErrInvalidArgument, n, dst.Type(), path)
		}
		dst.SetInt(i)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(json.Number)
		if !ok {
			return leafError(dst, v, path)
		}
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil || dst.OverflowUint(u) {
			return fmt.Errorf("%w: %s does not fit %v at %v", tensor.ErrInvalidArgument, n, dst.Type(), path)
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		n, ok := v.(json.Number)
		if !ok {
			return leafError(dst, v, path)
		}
		f, err := n.Float64()
		if err != nil || dst.OverflowFloat(f) {
			return fmt.Errorf("%w: %s does not fit %v at %v", tensor.ErrInvalidArgument, n, dst.Type(), path)
		}
		dst.SetFloat(f)
	default:
		return fmt.Errorf("%w: %v", tensor.ErrNotImplemented, dst.Type())
	}
	return nil
}

func leafError(dst reflect.Value, v any, path []int) error {
	return fmt.Errorf("%w: cannot store %T as %v at %v", tensor.ErrTypeMismatch, v, dst.Type(), path)
}
