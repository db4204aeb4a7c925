package jsondisplay

import (
	"encoding/json"
	"fmt"
	"reflect"
)

var marshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

// visit identifies a pointer, map or slice on the current path. Slices are
// keyed by length too, so a sub-slice sharing the backing array is not a cycle.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// checkCycles walks v the way the encoder will and fails on the first value
// that contains itself. Shared values that do not loop are fine.
func checkCycles(v any) error {
	w := &cycleWalker{onPath: make(map[visit]bool)}
	return w.walk(reflect.ValueOf(v))
}

type cycleWalker struct {
	onPath map[visit]bool
}

func (w *cycleWalker) walk(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	if v.Type().Implements(marshalerType) {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return w.walk(v.Elem())

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return w.enter(v, visit{ptr: v.Pointer(), typ: v.Type()}, func() error {
			return w.walk(v.Elem())
		})

	case reflect.Map:
		if v.IsNil() || v.Len() == 0 {
			return nil
		}
		return w.enter(v, visit{ptr: v.Pointer(), typ: v.Type()}, func() error {
			iter := v.MapRange()
			for iter.Next() {
				if err := w.walk(iter.Value()); err != nil {
					return err
				}
			}
			return nil
		})

	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return nil
		}
		return w.enter(v, visit{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}, func() error {
			return w.walkElems(v)
		})

	case reflect.Array:
		return w.walkElems(v)

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() && !t.Field(i).Anonymous {
				continue
			}
			if err := w.walk(v.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *cycleWalker) walkElems(v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		if err := w.walk(v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (w *cycleWalker) enter(v reflect.Value, key visit, next func() error) error {
	if w.onPath[key] {
		return &json.UnsupportedValueError{
			Value: v,
			Str:   fmt.Sprintf("encountered a cycle via %s", v.Type()),
		}
	}
	w.onPath[key] = true
	defer delete(w.onPath, key)
	return next()
}
