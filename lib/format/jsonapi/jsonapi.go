// Package jsonapi renders resources in a JSON-API style
// (application/vnd.api+json).
//
// The top-level node becomes "data": a resource object, or an array of them
// for collections. Subresources become "relationships" holding type/id
// linkage, and the embedded resources themselves are collected once each
// into "included". The "id" attribute is lifted out of "attributes"; links
// become "links" keyed by rel.
package jsonapi

import (
	"fmt"

	"github.com/pthm/hxres"
	"github.com/pthm/hxres/lib/primitive"
)

const (
	Name      = "json_api"
	MediaType = "application/vnd.api+json"
)

func init() {
	Register(hxres.DefaultFormats)
}

// Format returns the JSON-API format descriptor.
func Format() hxres.Format {
	return hxres.Format{
		Name:       Name,
		MediaTypes: []string{MediaType},
		Kind:       hxres.KindJSON,
		New:        func(opts hxres.FormatOptions) hxres.Renderer { return New(opts) },
	}
}

// Register adds JSON-API to r.
func Register(r *hxres.FormatRegistry) {
	r.Register(Format())
}

// Renderer renders JSON-API documents. It keeps the "included" set of the
// document being rendered and is used for one document at a time.
type Renderer struct {
	included []any
	seen     map[string]bool
}

// New creates a renderer. JSON-API takes no options.
func New(hxres.FormatOptions) *Renderer {
	return &Renderer{}
}

func (r *Renderer) Serialize(node hxres.Node) (any, error) {
	r.included, r.seen = nil, make(map[string]bool)

	var data any
	switch {
	case node.IsCollection():
		items := make([]any, 0, len(node.Seq()))
		for _, m := range node.Seq() {
			r.markSeen(m)
			items = append(items, r.object(m))
		}
		data = items
	case node.IsNull():
		data = nil
	default:
		r.markSeen(node)
		data = r.object(node)
	}

	doc := primitive.Map{{Key: "data", Value: data}}
	if node.IsCollection() {
		if links := linkMap(node.Links()); links != nil {
			doc = doc.Set("links", links)
		}
	}
	if len(r.included) > 0 {
		doc = doc.Set("included", r.included)
	}
	return doc, nil
}

func (r *Renderer) object(node hxres.Node) primitive.Map {
	out := primitive.Map{}
	if node.Type() != "" {
		out = out.Set("type", node.Type())
	}
	if id, ok := node.Get("id"); ok {
		out = out.Set("id", fmt.Sprint(id))
	}

	attrs := primitive.Map{}
	for _, attr := range node.Attributes() {
		if attr.Name != "id" {
			attrs = attrs.Set(attr.Name, attr.Value)
		}
	}
	if len(attrs) > 0 {
		out = out.Set("attributes", attrs)
	}

	rels := primitive.Map{}
	for _, sub := range node.Subresources() {
		rels = rels.Set(sub.Rel, primitive.Map{{Key: "data", Value: r.linkage(sub.Node)}})
	}
	if len(rels) > 0 {
		out = out.Set("relationships", rels)
	}

	if links := linkMap(node.Links()); links != nil {
		out = out.Set("links", links)
	}
	return out
}

// linkage returns the resource identifiers of node and adds the resources
// to the included set.
func (r *Renderer) linkage(node hxres.Node) any {
	switch {
	case node == nil || node.IsNull() && !node.IsCollection():
		return nil
	case node.IsCollection():
		ids := make([]any, 0, len(node.Seq()))
		for _, m := range node.Seq() {
			ids = append(ids, r.include(m))
		}
		return ids
	}
	return r.include(node)
}

func (r *Renderer) include(node hxres.Node) primitive.Map {
	ident := primitive.Map{{Key: "type", Value: node.Type()}}
	if id, ok := node.Get("id"); ok {
		ident = ident.Set("id", fmt.Sprint(id))
	}
	key, ok := identity(node)
	if ok && r.seen[key] {
		return ident
	}
	r.markSeen(node)
	// Reserve the slot first so a resource precedes the ones it embeds.
	i := len(r.included)
	r.included = append(r.included, nil)
	obj := r.object(node)
	r.included[i] = obj
	return ident
}

func (r *Renderer) markSeen(node hxres.Node) {
	if key, ok := identity(node); ok {
		r.seen[key] = true
	}
}

// identity keys a resource by type and id. Resources without an id are
// never deduplicated.
func identity(node hxres.Node) (string, bool) {
	id, ok := node.Get("id")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s/%v", node.Type(), id), true
}

func linkMap(links []hxres.Link) primitive.Map {
	if len(links) == 0 {
		return nil
	}
	out := primitive.Map{}
	for _, l := range links {
		out = out.Set(l.Rel, l.URI)
	}
	return out
}
