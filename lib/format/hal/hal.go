// Package hal renders resources as HAL (application/hal+json).
//
// Attributes become top-level keys, links go under "_links" keyed by rel,
// and subresources go under "_embedded". A rel renders as a single link
// object unless it is listed in the "plural_links" option, in which case it
// is always an array:
//
//	cfg.FormatOptions("hal", hxres.FormatOptions{"plural_links": []string{"item"}})
//
// A NullResource renders as an empty object, and a null subresource as
// null. Members of a top-level collection are embedded under the rel given
// by the "collection_rel" option, defaulting to the collection's type.
package hal

import (
	"github.com/pthm/hxres"
	"github.com/pthm/hxres/lib/primitive"
)

const (
	Name      = "hal"
	MediaType = "application/hal+json"
)

func init() {
	Register(hxres.DefaultFormats)
}

// Format returns the HAL format descriptor.
func Format() hxres.Format {
	return hxres.Format{
		Name:       Name,
		MediaTypes: []string{MediaType},
		Kind:       hxres.KindJSON,
		New:        func(opts hxres.FormatOptions) hxres.Renderer { return New(opts) },
	}
}

// Register adds HAL to r.
func Register(r *hxres.FormatRegistry) {
	r.Register(Format())
}

// Renderer renders HAL documents.
type Renderer struct {
	plural        map[string]bool
	collectionRel string
}

// New creates a renderer with the given options.
func New(opts hxres.FormatOptions) *Renderer {
	r := &Renderer{
		plural:        make(map[string]bool),
		collectionRel: opts.String("collection_rel"),
	}
	for _, rel := range opts.Strings("plural_links") {
		r.plural[rel] = true
	}
	return r
}

func (r *Renderer) Serialize(node hxres.Node) (any, error) {
	out := r.resource(node)
	if node.IsCollection() {
		rel := r.collectionRel
		if rel == "" {
			rel = node.Type()
		}
		if rel == "" {
			rel = "items"
		}
		embedded, _ := out.Get("_embedded")
		em, _ := embedded.(primitive.Map)
		out = out.Set("_embedded", em.Set(rel, r.members(node)))
	}
	return out, nil
}

func (r *Renderer) resource(node hxres.Node) primitive.Map {
	out := primitive.Map{}
	if node.IsNull() {
		return out
	}
	for _, attr := range node.Attributes() {
		out = out.Set(attr.Name, attr.Value)
	}
	if links := node.Links(); len(links) > 0 {
		out = out.Set("_links", r.links(links))
	}
	if subs := node.Subresources(); len(subs) > 0 {
		out = out.Set("_embedded", r.embedded(subs))
	}
	return out
}

func (r *Renderer) links(links []hxres.Link) primitive.Map {
	out := primitive.Map{}
	for _, l := range links {
		link := primitive.Map{{Key: "href", Value: l.URI}}
		if l.Templated {
			link = link.Set("templated", true)
		}
		if l.Title != "" {
			link = link.Set("title", l.Title)
		}
		if l.Name != "" {
			link = link.Set("name", l.Name)
		}
		for _, opt := range primitive.FromMap(l.Options) {
			link = link.Set(opt.Key, opt.Value)
		}

		if !r.plural[l.Rel] {
			out = out.Set(l.Rel, link)
			continue
		}
		prev, _ := out.Get(l.Rel)
		list, _ := prev.([]any)
		out = out.Set(l.Rel, append(list, link))
	}
	return out
}

func (r *Renderer) embedded(subs []hxres.Subresource) primitive.Map {
	out := primitive.Map{}
	for _, sub := range subs {
		switch {
		case sub.Node == nil || sub.Node.IsNull() && !sub.Node.IsCollection():
			out = out.Set(sub.Rel, nil)
		case sub.Node.IsCollection():
			out = out.Set(sub.Rel, r.members(sub.Node))
		default:
			out = out.Set(sub.Rel, r.resource(sub.Node))
		}
	}
	return out
}

func (r *Renderer) members(node hxres.Node) []any {
	seq := node.Seq()
	out := make([]any, len(seq))
	for i, m := range seq {
		out[i] = r.resource(m)
	}
	return out
}
