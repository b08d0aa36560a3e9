package hxres

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// AttributeReader is implemented by values that expose their attributes
// by name. It takes precedence over reflection.
type AttributeReader interface {
	ReadAttribute(name string) (any, bool)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ReadProperty reads name from obj, trying in order:
//
//  1. AttributeReader
//  2. a key of a string-keyed map
//  3. an exported struct field whose hx tag or name matches
//  4. an exported method without arguments returning T or (T, error)
//
// Names match fields and methods regardless of case and underscores, so
// "created_at" finds CreatedAt. Pointers are followed. A name that resolves
// nowhere fails with *MissingAccessorError.
func ReadProperty(obj any, name string) (any, error) {
	if r, ok := obj.(AttributeReader); ok {
		if v, ok := r.ReadAttribute(name); ok {
			return v, nil
		}
		return nil, &MissingAccessorError{Name: name, Type: fmt.Sprintf("%T", obj)}
	}
	if m, ok := obj.(map[string]any); ok {
		if v, ok := m[name]; ok {
			return v, nil
		}
		return nil, &MissingAccessorError{Name: name, Type: fmt.Sprintf("%T", obj)}
	}

	rv := reflect.ValueOf(obj)
	if !rv.IsValid() || isNil(obj) {
		return nil, &MissingAccessorError{Name: name, Type: fmt.Sprintf("%T", obj)}
	}
	want := foldName(name)

	// Methods are looked up on the original value first so pointer receivers
	// are found.
	if v, ok, err := callMethod(rv, want); ok {
		return v, err
	}

	base := rv
	for base.Kind() == reflect.Pointer || base.Kind() == reflect.Interface {
		if base.IsNil() {
			return nil, &MissingAccessorError{Name: name, Type: fmt.Sprintf("%T", obj)}
		}
		base = base.Elem()
	}

	switch base.Kind() {
	case reflect.Map:
		if base.Type().Key().Kind() == reflect.String {
			v := base.MapIndex(reflect.ValueOf(name).Convert(base.Type().Key()))
			if v.IsValid() {
				return v.Interface(), nil
			}
		}
	case reflect.Struct:
		if v, ok := readField(base, want); ok {
			return v, nil
		}
	}
	if base != rv {
		if v, ok, err := callMethod(base, want); ok {
			return v, err
		}
	}
	return nil, &MissingAccessorError{Name: name, Type: fmt.Sprintf("%T", obj)}
}

func foldName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

func readField(v reflect.Value, want string) (any, bool) {
	t := v.Type()
	// Tags win over field names.
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("hx"), ",")
		if tag != "" && tag != "-" && foldName(tag) == want {
			return v.Field(i).Interface(), true
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("hx") == "-" {
			continue
		}
		if foldName(f.Name) == want {
			return v.Field(i).Interface(), true
		}
	}
	return nil, false
}

func callMethod(v reflect.Value, want string) (any, bool, error) {
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if foldName(m.Name) != want {
			continue
		}
		ft := m.Type
		// Method types from reflect.Type include the receiver.
		if ft.NumIn() != 1 {
			continue
		}
		switch {
		case ft.NumOut() == 1:
			return v.Method(i).Call(nil)[0].Interface(), true, nil
		case ft.NumOut() == 2 && ft.Out(1) == errorType:
			out := v.Method(i).Call(nil)
			if errv := out[1].Interface(); errv != nil {
				return nil, true, errors.Wrapf(errv.(error), "reading %s", m.Name)
			}
			return out[0].Interface(), true, nil
		}
	}
	return nil, false, nil
}
