package hxres

import (
	"fmt"
	"sort"
)

// DecodeResource builds a node from an untyped resource document, such as
// one read from YAML or JSON:
//
//	type: post
//	attributes: {id: 1, title: Hello}
//	links: [{rel: self, uri: /posts/1}]
//	subresources: [{rel: comments, resource: {members: [...]}}]
//	forms: [{name: edit, action: /posts/1, method: PUT, fields: [...]}]
//
// A document with "members" decodes to a CollectionResource, one with
// "null: true" to a NullResource. Sequence-valued fields that hold anything
// other than a sequence fail with a *ValidationError.
//
// Attribute maps carry no order; attributes are sorted by name.
func DecodeResource(doc map[string]any) (Node, error) {
	return decodeNode(doc, "")
}

func decodeNode(doc map[string]any, path string) (Node, error) {
	if isNull, _ := doc["null"].(bool); isNull {
		if coll, _ := doc["collection"].(bool); coll {
			return NewNullCollection(), nil
		}
		return NewNullResource(), nil
	}

	r := NewResource()
	if v, ok := doc["type"]; ok && v != nil {
		typ, ok := v.(string)
		if !ok {
			return nil, &ValidationError{Field: path + "type", Reason: "must be a string"}
		}
		r.typ = typ
	}

	if v, ok := doc["attributes"]; ok && v != nil {
		m, ok := asMap(v)
		if !ok {
			return nil, &ValidationError{Field: path + "attributes", Reason: "must be a mapping"}
		}
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, name := range names {
			r.attributes = r.attributes.Set(name, m[name])
		}
	}

	links, err := decodeSeq(doc, path, "links")
	if err != nil {
		return nil, err
	}
	for i, raw := range links {
		l, err := decodeLink(raw, fmt.Sprintf("%slinks[%d].", path, i))
		if err != nil {
			return nil, err
		}
		r = r.addLink(l)
	}

	subs, err := decodeSeq(doc, path, "subresources")
	if err != nil {
		return nil, err
	}
	for i, raw := range subs {
		field := fmt.Sprintf("%ssubresources[%d].", path, i)
		m, ok := asMap(raw)
		if !ok {
			return nil, &ValidationError{Field: field[:len(field)-1], Reason: "must be a mapping"}
		}
		rel, _ := m["rel"].(string)
		if rel == "" {
			return nil, &ValidationError{Field: field + "rel", Reason: "is required"}
		}
		resDoc, ok := asMap(m["resource"])
		if !ok {
			return nil, &ValidationError{Field: field + "resource", Reason: "must be a mapping"}
		}
		sub, err := decodeNode(resDoc, field+"resource.")
		if err != nil {
			return nil, err
		}
		r = r.addSubresource(rel, sub)
	}

	forms, err := decodeSeq(doc, path, "forms")
	if err != nil {
		return nil, err
	}
	for i, raw := range forms {
		f, err := decodeForm(raw, fmt.Sprintf("%sforms[%d].", path, i))
		if err != nil {
			return nil, err
		}
		r = r.addForm(f)
	}

	rels, err := decodeSeq(doc, path, "rels")
	if err != nil {
		return nil, err
	}
	for _, raw := range rels {
		r = r.addRel(fmt.Sprint(raw))
	}

	if _, ok := doc["members"]; !ok {
		return r, nil
	}
	rawMembers, err := decodeSeq(doc, path, "members")
	if err != nil {
		return nil, err
	}
	members := make([]Node, 0, len(rawMembers))
	for i, raw := range rawMembers {
		field := fmt.Sprintf("%smembers[%d]", path, i)
		m, ok := asMap(raw)
		if !ok {
			return nil, &ValidationError{Field: field, Reason: "must be a mapping"}
		}
		member, err := decodeNode(m, field+".")
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return NewCollectionResource(r, members...), nil
}

func decodeSeq(doc map[string]any, path, key string) ([]any, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}
	seq, ok := v.([]any)
	if !ok {
		return nil, &ValidationError{Field: path + key, Reason: fmt.Sprintf("must be a sequence, got %T", v)}
	}
	return seq, nil
}

func decodeLink(raw any, path string) (Link, error) {
	m, ok := asMap(raw)
	if !ok {
		return Link{}, &ValidationError{Field: path[:len(path)-1], Reason: "must be a mapping"}
	}
	l := Link{
		Rel:   str(m["rel"]),
		URI:   str(m["uri"]),
		Title: str(m["title"]),
		Name:  str(m["name"]),
	}
	if l.URI == "" {
		l.URI = str(m["href"])
	}
	if l.Rel == "" {
		return Link{}, &ValidationError{Field: path + "rel", Reason: "is required"}
	}
	l.Templated, _ = m["templated"].(bool)
	if opts, ok := asMap(m["options"]); ok {
		l.Options = opts
	}
	return l, nil
}

func decodeForm(raw any, path string) (Form, error) {
	m, ok := asMap(raw)
	if !ok {
		return Form{}, &ValidationError{Field: path[:len(path)-1], Reason: "must be a mapping"}
	}
	f := Form{
		Name:      str(m["name"]),
		Action:    str(m["action"]),
		Title:     str(m["title"]),
		Method:    str(m["method"]),
		MediaType: str(m["media_type"]),
	}
	fields, err := decodeSeq(m, path, "fields")
	if err != nil {
		return Form{}, err
	}
	for i, rawField := range fields {
		fm, ok := asMap(rawField)
		if !ok {
			return Form{}, &ValidationError{Field: fmt.Sprintf("%sfields[%d]", path, i), Reason: "must be a mapping"}
		}
		field := Field{
			Name:  str(fm["name"]),
			Type:  str(fm["type"]),
			Label: str(fm["label"]),
			Value: fm["value"],
		}
		field.Required, _ = fm["required"].(bool)
		opts, err := decodeSeq(fm, fmt.Sprintf("%sfields[%d].", path, i), "options")
		if err != nil {
			return Form{}, err
		}
		for _, rawOpt := range opts {
			om, _ := asMap(rawOpt)
			opt := FieldOption{Value: str(om["value"]), Label: str(om["label"])}
			opt.Selected, _ = om["selected"].(bool)
			field.Options = append(field.Options, opt)
		}
		f.Fields = append(f.Fields, field)
	}
	return f, nil
}

// asMap accepts both map[string]any and the map[any]any some YAML decoders
// produce.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
