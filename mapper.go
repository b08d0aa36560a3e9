package hxres

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/pthm/hxres/lib/uritemplate"
)

// ValueFunc computes a value from the object being mapped.
type ValueFunc func(obj any, ctx Context) (any, error)

// Mapper declares how values of one Go type become resources.
//
// A Mapper is built once at configuration time and is read-only afterwards;
// Map may be called from many goroutines.
//
//	var postMapper = hxres.NewMapper[Post]().
//	    Attributes("id", "title", "body").
//	    Link(hxres.RelSelf, "/posts/{id}").
//	    Link("search", "/posts{?q}", hxres.NoExpand()).
//	    HasOne("author", hxres.WithMapper(authorMapper)).
//	    HasMany("comments", hxres.WithMapper(commentMapper))
type Mapper struct {
	subject  reflect.Type
	typ      string
	computed map[string]ValueFunc
	specs    [4][]Spec
}

var _ ResourceMapper = (*Mapper)(nil)

// NewMapper creates a mapper for values of type T. The resource type
// defaults to the policy's derivation from T.
func NewMapper[T any]() *Mapper {
	return &Mapper{subject: reflect.TypeOf((*T)(nil)).Elem()}
}

// NewMapperFor creates a mapper for values of the given type.
func NewMapperFor(subject reflect.Type) *Mapper {
	return &Mapper{subject: subject}
}

// Subject returns the Go type the mapper was declared for.
func (m *Mapper) Subject() reflect.Type { return m.subject }

// Type sets the resource type explicitly.
func (m *Mapper) Type(name string) *Mapper {
	m.typ = name
	return m
}

// Name returns the explicit type, or the policy's derivation.
func (m *Mapper) Name(p Policy) string {
	if m.typ != "" {
		return m.typ
	}
	if p == nil {
		p = defaultPolicy
	}
	return p.DeriveType(m)
}

// Compute registers a computed accessor. Computed accessors take precedence
// over properties of the object for every rule of the mapper.
func (m *Mapper) Compute(name string, fn ValueFunc) *Mapper {
	if m.computed == nil {
		m.computed = make(map[string]ValueFunc)
	}
	m.computed[name] = fn
	return m
}

// Attributes declares attributes read from the object under their own names.
func (m *Mapper) Attributes(names ...string) *Mapper {
	for _, name := range names {
		m.Use(&AttributeSpec{name: name, key: name})
	}
	return m
}

// Attribute declares one attribute.
func (m *Mapper) Attribute(name string, opts ...AttributeOption) *Mapper {
	spec := &AttributeSpec{name: name, key: name}
	for _, opt := range opts {
		opt(spec)
	}
	return m.Use(spec)
}

// Link declares a link whose URI is a template expanded against the object.
func (m *Mapper) Link(rel, uri string, opts ...LinkSpecOption) *Mapper {
	return m.Use(newLinkSpec(rel, uri, nil, opts))
}

// LinkFunc declares a link whose URI is computed. An empty URI omits the
// link.
func (m *Mapper) LinkFunc(rel string, fn URIFunc, opts ...LinkSpecOption) *Mapper {
	return m.Use(newLinkSpec(rel, "", fn, opts))
}

// HasOne declares a single embedded association.
func (m *Mapper) HasOne(name string, opts ...AssociationOption) *Mapper {
	return m.Use(newAssociationSpec(name, false, opts))
}

// HasMany declares an embedded collection.
func (m *Mapper) HasMany(name string, opts ...AssociationOption) *Mapper {
	return m.Use(newAssociationSpec(name, true, opts))
}

// Form declares a form.
func (m *Mapper) Form(name string, opts ...FormOption) *Mapper {
	spec := &FormSpec{name: name}
	for _, opt := range opts {
		opt(spec)
	}
	return m.Use(spec)
}

// Use adds a rule to the group named by its Kind.
func (m *Mapper) Use(spec Spec) *Mapper {
	k := spec.Kind()
	if k < 0 || int(k) >= len(m.specs) {
		panic("hxres: spec kind out of range: " + k.String())
	}
	m.specs[k] = append(m.specs[k], spec)
	return m
}

// Specs returns the rules of one group in declaration order.
func (m *Mapper) Specs(kind SpecKind) []Spec {
	return cloneSlice(m.specs[kind])
}

// Map builds the resource for obj. A nil obj maps to a NullResource.
func (m *Mapper) Map(obj any, ctx Context) (Node, error) {
	if isNil(obj) {
		return NewNullResource(), nil
	}
	return m.apply(NewResource(WithType(m.Name(ctx.policy()))), obj, ctx)
}

func (m *Mapper) apply(node Node, obj any, ctx Context) (Node, error) {
	mp := &Mapping{Mapper: m, Object: obj, Context: ctx}
	for _, group := range m.specs {
		for _, spec := range group {
			next, err := spec.Apply(node, mp)
			if err != nil {
				return nil, err
			}
			node = next
		}
	}
	return node, nil
}

// Mapping is the state of one Mapper.Map call, handed to every rule.
type Mapping struct {
	Mapper  *Mapper
	Object  any
	Context Context
}

// Load resolves name against the object: a computed accessor registered
// with Mapper.Compute first, then a property read (see ReadProperty).
func (mp *Mapping) Load(name string) (any, error) {
	if fn, ok := mp.Mapper.computed[name]; ok {
		return fn(mp.Object, mp.Context)
	}
	return ReadProperty(mp.Object, name)
}

// Resolve evaluates a declared value: ValueFunc and AttrRef are resolved
// against the object, anything else is returned as is.
func (mp *Mapping) Resolve(v any) (any, error) {
	switch val := v.(type) {
	case ValueFunc:
		return val(mp.Object, mp.Context)
	case func(any, Context) (any, error):
		return val(mp.Object, mp.Context)
	case AttrRef:
		return mp.Load(string(val))
	}
	return v, nil
}

// ExpandURI expands uri against the object. Only the variables selected by
// exp are looked up; the rest stay in the result as template expressions.
// templated reports whether any remain.
func (mp *Mapping) ExpandURI(uri string, exp Expansion) (expanded string, templated bool, err error) {
	tpl, err := uritemplate.Parse(uri)
	if err != nil {
		return "", false, err
	}
	var names []string
	switch {
	case exp.none:
	case exp.vars == nil:
		names = tpl.Variables()
	default:
		names = exp.vars
	}
	vars := make(map[string]any, len(names))
	for _, name := range names {
		v, err := mp.Load(name)
		if err != nil {
			return "", false, errors.Wrapf(err, "expanding %q", uri)
		}
		vars[name] = v
	}
	expanded = tpl.ExpandPartial(vars)
	return expanded, uritemplate.IsTemplate(expanded), nil
}

// Expansion selects which template variables a link expands.
type Expansion struct {
	none bool
	vars []string
}

// ExpandAll expands every variable of the template.
var ExpandAll = Expansion{}

// ExpandNone leaves the template untouched.
var ExpandNone = Expansion{none: true}

// ExpandOnly expands the named variables.
func ExpandOnly(vars ...string) Expansion {
	if vars == nil {
		vars = []string{}
	}
	return Expansion{vars: vars}
}

// AttrRef refers to an attribute of the object being mapped, resolved with
// Mapping.Load.
type AttrRef string

// FromAttr returns a reference to the named attribute for use as a form
// field value, title, method or media type.
func FromAttr(name string) AttrRef { return AttrRef(name) }

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
