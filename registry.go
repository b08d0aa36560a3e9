package hxres

import (
	"slices"
	"sync"
)

// FormatOptions are per-format settings handed to a renderer factory, such
// as HAL's "plural_links".
type FormatOptions map[string]any

// String returns the option as a string, or "".
func (o FormatOptions) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Bool returns the option as a bool, or false.
func (o FormatOptions) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// Strings returns the option as a string list. A single string is a list of
// one.
func (o FormatOptions) Strings(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Format describes a wire representation.
type Format struct {
	Name string
	// MediaTypes are the types the format is negotiated by; the first is
	// the one written in responses.
	MediaTypes []string
	// Kind selects the serializer family.
	Kind SerializerKind
	// New creates a renderer for one runner.
	New func(opts FormatOptions) Renderer
}

// MediaType returns the primary media type.
func (f Format) MediaType() string {
	if len(f.MediaTypes) == 0 {
		return ""
	}
	return f.MediaTypes[0]
}

// FormatRegistry holds the known formats in registration order.
//
// Formats are registered at start-up and only read afterwards; the registry
// is safe for concurrent use either way.
type FormatRegistry struct {
	mu      sync.RWMutex
	formats []Format
}

// DefaultFormats is the registry used when a Config names none. The format
// packages under lib/format register into it from init.
var DefaultFormats = NewFormatRegistry()

// NewFormatRegistry creates an empty registry.
func NewFormatRegistry() *FormatRegistry {
	return &FormatRegistry{}
}

// RegisterFormat adds formats to DefaultFormats.
func RegisterFormat(formats ...Format) {
	DefaultFormats.Register(formats...)
}

// Register adds formats. A format whose name is already registered replaces
// the old entry in place. A media type belongs to the last format
// registered with it and is removed from earlier ones.
// Panics if a format has no name or no factory.
func (r *FormatRegistry) Register(formats ...Format) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range formats {
		if f.Name == "" {
			panic("hxres: format has no name")
		}
		if f.New == nil {
			panic("hxres: format " + f.Name + " has no renderer factory")
		}
		f.MediaTypes = slices.Clone(f.MediaTypes)

		for i := range r.formats {
			if r.formats[i].Name == f.Name {
				continue
			}
			r.formats[i].MediaTypes = slices.DeleteFunc(slices.Clone(r.formats[i].MediaTypes), func(mt string) bool {
				return slices.Contains(f.MediaTypes, mt)
			})
		}

		i := slices.IndexFunc(r.formats, func(existing Format) bool { return existing.Name == f.Name })
		if i >= 0 {
			r.formats[i] = f
		} else {
			r.formats = append(r.formats, f)
		}
	}
}

// Lookup returns the format registered under name.
func (r *FormatRegistry) Lookup(name string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// ByMediaType returns the format owning mt.
func (r *FormatRegistry) ByMediaType(mt string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		if slices.Contains(f.MediaTypes, mt) {
			return f, true
		}
	}
	return Format{}, false
}

// Formats returns the registered formats in registration order.
func (r *FormatRegistry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.formats)
}

// Names returns the registered format names in registration order.
func (r *FormatRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.formats))
	for i, f := range r.formats {
		names[i] = f.Name
	}
	return names
}

// MediaTypes returns the negotiation table for SelectFormat.
func (r *FormatRegistry) MediaTypes() []MediaTypes {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MediaTypes, len(r.formats))
	for i, f := range r.formats {
		out[i] = MediaTypes{Format: f.Name, Types: f.MediaTypes}
	}
	return out
}
