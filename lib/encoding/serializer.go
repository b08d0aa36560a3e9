// Package encoding turns primitive trees and templ components into wire
// bytes.
package encoding

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/a-h/templ"
	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Kind names a family of serializers. A format declares the kind it
// produces; the serializer used for it can be swapped within the kind.
type Kind string

const (
	KindJSON Kind = "json"
	KindHTML Kind = "html"
)

var (
	// ErrUnsupportedKind is returned by Default for unknown kinds.
	ErrUnsupportedKind = errors.New("encoding: unsupported serializer kind")
	// ErrUnsupportedValue is returned when a serializer can't write a value.
	ErrUnsupportedValue = errors.New("encoding: unsupported value")
)

// Serializer writes a value to bytes.
type Serializer interface {
	Serialize(ctx context.Context, v any) ([]byte, error)
}

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(ctx context.Context, v any) ([]byte, error)

func (f SerializerFunc) Serialize(ctx context.Context, v any) ([]byte, error) {
	return f(ctx, v)
}

// JSON writes values as JSON. Indent, when set, pretty-prints with that
// indentation.
type JSON struct {
	Indent string
}

func (s JSON) Serialize(_ context.Context, v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if s.Indent != "" {
		enc.SetIndent("", s.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "encoding: json")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Msgpack writes values as MessagePack. Ordered maps keep their order; plain
// Go maps are written with sorted keys.
type Msgpack struct{}

func (Msgpack) Serialize(_ context.Context, v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "encoding: msgpack")
	}
	return buf.Bytes(), nil
}

// HTML renders templ components. Strings and byte slices pass through
// unchanged.
type HTML struct{}

func (HTML) Serialize(ctx context.Context, v any) ([]byte, error) {
	switch val := v.(type) {
	case templ.Component:
		var buf bytes.Buffer
		if err := val.Render(ctx, &buf); err != nil {
			return nil, errors.Wrap(err, "encoding: html")
		}
		return buf.Bytes(), nil
	case string:
		return []byte(val), nil
	case []byte:
		return val, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedValue, "html serializer got %T", v)
}

// Default returns the standard serializer for a kind: indented JSON or
// templ HTML.
func Default(kind Kind) (Serializer, error) {
	switch kind {
	case KindJSON:
		return JSON{Indent: "  "}, nil
	case KindHTML:
		return HTML{}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedKind, "%q", string(kind))
}

// ByName returns a serializer by its configuration name: "json",
// "json-compact", "msgpack" or "html".
func ByName(name string) (Serializer, error) {
	switch name {
	case "json":
		return JSON{Indent: "  "}, nil
	case "json-compact":
		return JSON{}, nil
	case "msgpack":
		return Msgpack{}, nil
	case "html":
		return HTML{}, nil
	}
	return nil, errors.Newf("encoding: unknown serializer %q", name)
}
