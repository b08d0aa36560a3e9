package hxres

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
)

// CollectionMapper maps a slice or array to a CollectionResource with one
// member per element.
//
// Rules declared on Collection (links, attributes, forms) apply to the
// collection as a whole and read from the slice itself, so they usually rely
// on Mapper.Compute or static URIs:
//
//	posts := hxres.NewCollectionMapper(postMapper)
//	posts.Collection.Type("posts").Link(hxres.RelSelf, "/posts")
type CollectionMapper struct {
	// Item maps each element. When nil, the context's ItemMapper is used,
	// then the policy's mapper for the element.
	Item       ResourceMapper
	Collection *Mapper
}

var _ ResourceMapper = (*CollectionMapper)(nil)

// NewCollectionMapper creates a collection mapper for items mapped by item.
func NewCollectionMapper(item ResourceMapper) *CollectionMapper {
	return &CollectionMapper{Item: item, Collection: NewMapper[[]any]()}
}

// Name returns the explicit collection type, or the item mapper's type.
func (c *CollectionMapper) Name(p Policy) string {
	if c.Collection != nil && c.Collection.typ != "" {
		return c.Collection.typ
	}
	if c.Item != nil {
		return c.Item.Name(p)
	}
	return ""
}

// Map builds the collection for obj. A nil obj maps to a null collection; a
// value that is neither slice nor array fails validation.
func (c *CollectionMapper) Map(obj any, ctx Context) (Node, error) {
	if isNil(obj) {
		return NewNullCollection(), nil
	}
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &ValidationError{
			Field:  "collection",
			Reason: fmt.Sprintf("must be a sequence, got %T", obj),
		}
	}

	item := c.Item
	if item == nil {
		item = ctx.ItemMapper
	}
	typ := c.Name(ctx.policy())
	if typ == "" && item != nil {
		typ = item.Name(ctx.policy())
	}

	var node Node = NewCollectionResource(NewResource(WithType(typ)))
	if c.Collection != nil {
		var err error
		if node, err = c.Collection.apply(node, obj, ctx); err != nil {
			return nil, err
		}
	}

	memberCtx := ctx.push(c)
	members := make([]Node, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		el := rv.Index(i).Interface()
		m := item
		if m == nil {
			var err error
			if m, err = ctx.policy().MapperFor(el); err != nil {
				return nil, errors.Wrapf(err, "member %d", i)
			}
		}
		member, err := m.Map(el, memberCtx)
		if err != nil {
			return nil, errors.Wrapf(err, "member %d", i)
		}
		members = append(members, member)
	}
	return node.WithCollection(members)
}
