package hxres

// Attribute is a single named value of a resource.
type Attribute struct {
	Name  string
	Value any
}

// Attributes is an ordered set of uniquely named values. Insertion order is
// preserved so renderers produce deterministic output.
//
// Attributes values are never modified in place; Set and Merge return new
// slices.
type Attributes []Attribute

// Attrs builds Attributes from alternating name/value arguments.
// It panics on an odd argument count or a non-string name.
//
//	hxres.Attrs("id", 1, "title", "Hello")
func Attrs(kv ...any) Attributes {
	if len(kv)%2 != 0 {
		panic("hxres: Attrs requires name/value pairs")
	}
	var out Attributes
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic("hxres: Attrs names must be strings")
		}
		out = out.Set(name, kv[i+1])
	}
	return out
}

// Get returns the value stored under name.
func (a Attributes) Get(name string) (any, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return nil, false
}

// Has reports whether name is present.
func (a Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Names returns the attribute names in order.
func (a Attributes) Names() []string {
	names := make([]string, len(a))
	for i, attr := range a {
		names[i] = attr.Name
	}
	return names
}

// Set returns a copy with name bound to value. An existing name keeps its
// position.
func (a Attributes) Set(name string, value any) Attributes {
	out := make(Attributes, len(a), len(a)+1)
	copy(out, a)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Attribute{Name: name, Value: value})
}

// Merge returns a shallow merge of a and other; values in other win.
func (a Attributes) Merge(other Attributes) Attributes {
	if len(a)+len(other) == 0 {
		return nil
	}
	out := make(Attributes, len(a), len(a)+len(other))
	copy(out, a)
	for _, attr := range other {
		replaced := false
		for i := range out {
			if out[i].Name == attr.Name {
				out[i].Value = attr.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, attr)
		}
	}
	return out
}

// Map returns the attributes as an unordered map.
func (a Attributes) Map() map[string]any {
	m := make(map[string]any, len(a))
	for _, attr := range a {
		m[attr.Name] = attr.Value
	}
	return m
}
