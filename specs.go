package hxres

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/pthm/hxres/lib/uritemplate"
)

// AttributeSpec copies one value of the object into the resource.
type AttributeSpec struct {
	name string
	key  string
}

// AttributeOption configures an attribute.
type AttributeOption func(*AttributeSpec)

// As stores the attribute under a different name than the one it is read
// from.
func As(key string) AttributeOption {
	return func(s *AttributeSpec) { s.key = key }
}

func (s *AttributeSpec) Kind() SpecKind { return AttributeSpecs }

func (s *AttributeSpec) Apply(node Node, mp *Mapping) (Node, error) {
	v, err := mp.Load(s.name)
	if err != nil {
		return nil, err
	}
	return node.MergeAttributes(Attributes{{Name: s.key, Value: v}})
}

// URIFunc computes a link URI from the object. An empty result omits the
// link.
type URIFunc func(obj any, ctx Context) (string, error)

// Condition decides whether a rule applies to the object.
type Condition func(obj any, ctx Context) bool

// LinkSpec adds one link to the resource.
type LinkSpec struct {
	rel     string
	uri     string
	fn      URIFunc
	expand  Expansion
	title   string
	name    string
	options map[string]any
	cond    Condition
}

// LinkSpecOption configures a link.
type LinkSpecOption func(*LinkSpec)

// Expand limits expansion to the named variables; the others are kept as
// template expressions.
func Expand(vars ...string) LinkSpecOption {
	return func(s *LinkSpec) { s.expand = ExpandOnly(vars...) }
}

// NoExpand keeps the URI template as declared.
func NoExpand() LinkSpecOption {
	return func(s *LinkSpec) { s.expand = ExpandNone }
}

// Title sets the link title.
func Title(title string) LinkSpecOption {
	return func(s *LinkSpec) { s.title = title }
}

// Name sets the link name.
func Name(name string) LinkSpecOption {
	return func(s *LinkSpec) { s.name = name }
}

// Meta adds a format-specific link option, such as HAL's "type" or
// "hreflang".
func Meta(key string, value any) LinkSpecOption {
	return func(s *LinkSpec) {
		if s.options == nil {
			s.options = make(map[string]any)
		}
		s.options[key] = value
	}
}

// If adds the link only when cond holds.
func If(cond Condition) LinkSpecOption {
	return func(s *LinkSpec) { s.cond = cond }
}

func newLinkSpec(rel, uri string, fn URIFunc, opts []LinkSpecOption) *LinkSpec {
	s := &LinkSpec{rel: rel, uri: uri, fn: fn, expand: ExpandAll}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LinkSpec) Kind() SpecKind { return LinkSpecs }

func (s *LinkSpec) Apply(node Node, mp *Mapping) (Node, error) {
	if s.cond != nil && !s.cond(mp.Object, mp.Context) {
		return node, nil
	}
	uri, templated, err := s.resolve(mp)
	if err != nil {
		return nil, errors.Wrapf(err, "link %q", s.rel)
	}
	if uri == "" {
		return node, nil
	}
	return node.AddLink(Link{
		Rel:       s.rel,
		URI:       uri,
		Title:     s.title,
		Name:      s.name,
		Templated: templated,
		Options:   s.options,
	})
}

func (s *LinkSpec) resolve(mp *Mapping) (string, bool, error) {
	if s.fn == nil {
		return mp.ExpandURI(s.uri, s.expand)
	}
	uri, err := s.fn(mp.Object, mp.Context)
	if err != nil || uri == "" {
		return "", false, err
	}
	return uri, uritemplate.IsTemplate(uri), nil
}

// AssociationSpec embeds the resource of a related value.
type AssociationSpec struct {
	name   string
	rel    string
	many   bool
	mapper ResourceMapper
	cond   Condition
}

// AssociationOption configures an association.
type AssociationOption func(*AssociationSpec)

// WithMapper sets the mapper for the associated value. For HasMany it maps
// each element.
func WithMapper(m ResourceMapper) AssociationOption {
	return func(s *AssociationSpec) { s.mapper = m }
}

// WithRel sets the relation the association is embedded under.
func WithRel(rel string) AssociationOption {
	return func(s *AssociationSpec) { s.rel = rel }
}

// EmbedIf embeds the association only when cond holds.
func EmbedIf(cond Condition) AssociationOption {
	return func(s *AssociationSpec) { s.cond = cond }
}

func newAssociationSpec(name string, many bool, opts []AssociationOption) *AssociationSpec {
	s := &AssociationSpec{name: name, many: many}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AssociationSpec) Kind() SpecKind { return AssociationSpecs }

func (s *AssociationSpec) Apply(node Node, mp *Mapping) (Node, error) {
	if s.cond != nil && !s.cond(mp.Object, mp.Context) {
		return node, nil
	}
	value, err := mp.Load(s.name)
	if err != nil {
		return nil, err
	}
	sub, err := s.mapValue(value, mp.Context.push(mp.Mapper))
	if err != nil {
		return nil, errors.Wrapf(err, "association %q", s.name)
	}
	rel := s.rel
	if rel == "" {
		rel = mp.Context.policy().DeriveRel(s.name)
	}
	return node.AddSubresource(rel, sub)
}

func (s *AssociationSpec) mapValue(value any, ctx Context) (Node, error) {
	if s.many {
		ctx.ItemMapper = s.mapper
		return (&CollectionMapper{Item: s.mapper}).Map(value, ctx)
	}
	if isNil(value) {
		return NewNullResource(), nil
	}
	m := s.mapper
	if m == nil {
		var err error
		if m, err = ctx.policy().MapperFor(value); err != nil {
			return nil, err
		}
	}
	return m.Map(value, ctx)
}

// FormSpec adds a form. The action is a URI template expanded against the
// object.
type FormSpec struct {
	name      string
	action    string
	title     any
	method    any
	mediaType any
	fields    []Field
	cond      Condition
}

// FormOption configures a form.
type FormOption func(*FormSpec)

// Action sets the form target.
func Action(uri string) FormOption {
	return func(s *FormSpec) { s.action = uri }
}

// Method sets the HTTP method the form submits with. Like FormTitle and
// MediaType it takes a string, a ValueFunc or an AttrRef.
func Method(method any) FormOption {
	return func(s *FormSpec) { s.method = method }
}

// FormTitle sets the form title.
func FormTitle(title any) FormOption {
	return func(s *FormSpec) { s.title = title }
}

// MediaType sets the encoding the form submits with.
func MediaType(mt any) FormOption {
	return func(s *FormSpec) { s.mediaType = mt }
}

// Fields appends fields. A field Value may be a ValueFunc or an AttrRef, and
// is resolved when the form is built.
func Fields(fields ...Field) FormOption {
	return func(s *FormSpec) { s.fields = append(s.fields, fields...) }
}

// FormIf adds the form only when cond holds.
func FormIf(cond Condition) FormOption {
	return func(s *FormSpec) { s.cond = cond }
}

func (s *FormSpec) Kind() SpecKind { return FormSpecs }

func (s *FormSpec) Apply(node Node, mp *Mapping) (Node, error) {
	if s.cond != nil && !s.cond(mp.Object, mp.Context) {
		return node, nil
	}
	form := Form{Name: s.name}
	for _, prop := range []struct {
		name string
		decl any
		dst  *string
	}{
		{"title", s.title, &form.Title},
		{"method", s.method, &form.Method},
		{"media type", s.mediaType, &form.MediaType},
	} {
		v, err := mp.Resolve(prop.decl)
		if err != nil {
			return nil, errors.Wrapf(err, "form %q %s", s.name, prop.name)
		}
		*prop.dst = stringValue(v)
	}
	if s.action != "" {
		action, _, err := mp.ExpandURI(s.action, ExpandAll)
		if err != nil {
			return nil, errors.Wrapf(err, "form %q", s.name)
		}
		form.Action = action
	}
	for _, f := range s.fields {
		v, err := mp.Resolve(f.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "form %q field %q", s.name, f.Name)
		}
		f.Value = v
		f.Options = cloneSlice(f.Options)
		form.Fields = append(form.Fields, f)
	}
	return node.AddForm(form)
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	return fmt.Sprint(v)
}
