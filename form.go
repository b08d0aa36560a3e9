package hxres

// Form describes an operation a client can perform against a resource.
type Form struct {
	Name      string
	Action    string
	Title     string
	Method    string
	MediaType string
	Fields    []Field
}

// Field is a single input of a Form.
type Field struct {
	Name     string
	Type     string
	Label    string
	Value    any
	Required bool
	Options  []FieldOption
}

// FieldOption is a choice offered by a select-type field.
type FieldOption struct {
	Value    string
	Label    string
	Selected bool
}

// FindField returns the first field with the given name.
func (f Form) FindField(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func (f Form) clone() Form {
	if f.Fields == nil {
		return f
	}
	fields := make([]Field, len(f.Fields))
	copy(fields, f.Fields)
	for i := range fields {
		if fields[i].Options != nil {
			fields[i].Options = append([]FieldOption(nil), fields[i].Options...)
		}
	}
	f.Fields = fields
	return f
}
