package hxres

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/pthm/hxres/lib/encoding"
)

// Policy holds the conventions a mapping pass falls back on when a mapper
// does not say otherwise.
type Policy interface {
	// DeriveType names the resources produced by a mapper without an
	// explicit type.
	DeriveType(m *Mapper) string
	// MapperFor finds the mapper for a value.
	MapperFor(obj any) (ResourceMapper, error)
	// DeriveRel names the relation of an association without an explicit
	// rel.
	DeriveRel(name string) string
	// DefaultFormat is the format used when negotiation finds nothing.
	DefaultFormat() string
	// DefaultSerializer returns the serializer for a kind.
	DefaultSerializer(kind SerializerKind) (Serializer, error)
}

var defaultPolicy Policy = NewPolicy()

// DefaultPolicy is the standard Policy.
//
// Mappers are registered explicitly by the Go type they were declared for.
// Lookups follow pointers, and slices without a registered mapper are
// mapped element by element with a CollectionMapper.
type DefaultPolicy struct {
	mu            sync.RWMutex
	mappers       map[reflect.Type]ResourceMapper
	defaultFormat string
	relTemplate   string
	serializers   map[SerializerKind]Serializer
}

var _ Policy = (*DefaultPolicy)(nil)

// PolicyOption configures a DefaultPolicy.
type PolicyOption func(*DefaultPolicy)

// WithDefaultFormat sets the format used when negotiation finds nothing.
func WithDefaultFormat(name string) PolicyOption {
	return func(p *DefaultPolicy) { p.defaultFormat = name }
}

// WithRelTemplate sets how association names become relations. "{rel}" in
// the template is replaced with the name, e.g. "ex:{rel}".
func WithRelTemplate(tpl string) PolicyOption {
	return func(p *DefaultPolicy) { p.relTemplate = tpl }
}

// WithDefaultSerializer sets the serializer for a kind.
func WithDefaultSerializer(kind SerializerKind, s Serializer) PolicyOption {
	return func(p *DefaultPolicy) { p.serializers[kind] = s }
}

// NewPolicy creates a policy with no registered mappers.
func NewPolicy(opts ...PolicyOption) *DefaultPolicy {
	p := &DefaultPolicy{
		mappers:       make(map[reflect.Type]ResourceMapper),
		defaultFormat: DefaultFormatName,
		relTemplate:   "{rel}",
		serializers:   make(map[SerializerKind]Serializer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds mappers under their subject types.
// Panics if a mapper has no subject or the type is already registered.
func (p *DefaultPolicy) Register(mappers ...*Mapper) {
	for _, m := range mappers {
		if m.Subject() == nil {
			panic("hxres: mapper has no subject type")
		}
		p.RegisterFor(m.Subject(), m)
	}
}

// RegisterFor adds a mapper for t.
// Panics if t is already registered.
func (p *DefaultPolicy) RegisterFor(t reflect.Type, m ResourceMapper) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.mappers[t]; exists {
		panic(fmt.Sprintf("hxres: mapper collision for %s", t))
	}
	p.mappers[t] = m
}

// MapperFor returns the mapper registered for obj's type, following
// pointers. A slice or array without its own mapper gets a CollectionMapper
// whose items are resolved per element.
func (p *DefaultPolicy) MapperFor(obj any) (ResourceMapper, error) {
	t := reflect.TypeOf(obj)
	if t == nil {
		return nil, errors.Wrap(ErrNoMapper, "nil value")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for cur := t; ; cur = cur.Elem() {
		if m, ok := p.mappers[cur]; ok {
			return m, nil
		}
		if cur.Kind() != reflect.Pointer {
			if cur.Kind() == reflect.Slice || cur.Kind() == reflect.Array {
				return &CollectionMapper{}, nil
			}
			break
		}
	}
	return nil, errors.Wrapf(ErrNoMapper, "%s", t)
}

// DeriveType underscores the subject's type name: BlogPost becomes
// "blog_post". Unnamed subjects yield "".
func (p *DefaultPolicy) DeriveType(m *Mapper) string {
	t := m.Subject()
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return underscore(t.Name())
}

func (p *DefaultPolicy) DeriveRel(name string) string {
	return strings.ReplaceAll(p.relTemplate, "{rel}", name)
}

func (p *DefaultPolicy) DefaultFormat() string { return p.defaultFormat }

func (p *DefaultPolicy) DefaultSerializer(kind SerializerKind) (Serializer, error) {
	if s, ok := p.serializers[kind]; ok {
		return s, nil
	}
	return encoding.Default(kind)
}

func underscore(name string) string {
	// Generic instantiations carry their type arguments in the name.
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	var sb strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
