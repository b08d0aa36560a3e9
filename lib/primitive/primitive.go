// Package primitive reduces rendered structures to primitive trees: ordered
// maps, sequences and scalars that any encoder can write.
package primitive

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotPrimitive is returned for values with no primitive representation.
var ErrNotPrimitive = errors.New("primitive: value has no primitive form")

// Pair is one entry of an ordered Map.
type Pair struct {
	Key   string
	Value any
}

// Map is a mapping that remembers insertion order. It encodes to JSON and
// msgpack with its keys in that order.
type Map []Pair

var (
	_ json.Marshaler         = Map(nil)
	_ msgpack.CustomEncoder = Map(nil)
)

// Primitiver is implemented by values that know their primitive form.
type Primitiver interface {
	Primitive() any
}

// Get returns the value stored under key.
func (m Map) Get(key string) (any, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set returns m with key bound to value, in place if key exists.
func (m Map) Set(key string, value any) Map {
	for i := range m {
		if m[i].Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, Pair{Key: key, Value: value})
}

// Keys returns the keys in order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, p := range m {
		keys[i] = p.Key
	}
	return keys
}

// FromMap returns the entries of m as a Map sorted by key.
func FromMap(m map[string]any) Map {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Map, len(keys))
	for i, k := range keys {
		out[i] = Pair{Key: k, Value: m[k]}
	}
	return out
}

// MarshalJSON writes the map as a JSON object in insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(&buf, p.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, p.Value); err != nil {
			return nil, errors.Wrapf(err, "key %q", p.Key)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON writes v without HTML escaping, so URIs keep their '&'.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// EncodeMsgpack writes the map as a msgpack map in insertion order.
func (m Map) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(m)); err != nil {
		return err
	}
	for _, p := range m {
		if err := enc.EncodeString(p.Key); err != nil {
			return err
		}
		if err := enc.Encode(p.Value); err != nil {
			return errors.Wrapf(err, "key %q", p.Key)
		}
	}
	return nil
}

// Primitivize converts v into a tree of Map, []any and scalars (nil, bool,
// string, integers, floats). Maps without order are emitted with sorted
// keys. Structs must implement Primitiver, encoding.TextMarshaler or
// fmt.Stringer.
func Primitivize(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val, nil
	case json.Number:
		return val, nil
	case []byte:
		return string(val), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	case Map:
		out := make(Map, len(val))
		for i, p := range val {
			pv, err := Primitivize(p.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", p.Key)
			}
			out[i] = Pair{Key: p.Key, Value: pv}
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			pv, err := Primitivize(item)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = pv
		}
		return out, nil
	case Primitiver:
		return Primitivize(val.Primitive())
	case encoding.TextMarshaler:
		text, err := val.MarshalText()
		if err != nil {
			return nil, err
		}
		return string(text), nil
	case fmt.Stringer:
		return val.String(), nil
	}
	return primitivizeValue(reflect.ValueOf(v))
}

func primitivizeValue(rv reflect.Value) (any, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return Primitivize(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			pv, err := Primitivize(rv.Index(i).Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = pv
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, errors.Wrapf(ErrNotPrimitive, "map key type %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		out := make(Map, 0, len(keys))
		for _, k := range keys {
			pv, err := Primitivize(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", k)
			}
			out = append(out, Pair{Key: k, Value: pv})
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrNotPrimitive, "%T", rv.Interface())
}
