// Package collectionjson renders resources as Collection+JSON
// (application/vnd.collection+json).
//
// Every document is a collection: a single resource renders as a
// collection of one item, a null resource as an empty one. Forms submitted
// with GET become "queries"; the first other form becomes the "template".
package collectionjson

import (
	"net/http"
	"strings"

	"github.com/pthm/hxres"
	"github.com/pthm/hxres/lib/primitive"
)

const (
	Name      = "collection_json"
	MediaType = "application/vnd.collection+json"
	Version   = "1.0"
)

func init() {
	Register(hxres.DefaultFormats)
}

// Format returns the Collection+JSON format descriptor.
func Format() hxres.Format {
	return hxres.Format{
		Name:       Name,
		MediaTypes: []string{MediaType},
		Kind:       hxres.KindJSON,
		New:        func(opts hxres.FormatOptions) hxres.Renderer { return New(opts) },
	}
}

// Register adds Collection+JSON to r.
func Register(r *hxres.FormatRegistry) {
	r.Register(Format())
}

// Renderer renders Collection+JSON documents.
type Renderer struct{}

// New creates a renderer. Collection+JSON takes no options.
func New(hxres.FormatOptions) *Renderer {
	return &Renderer{}
}

func (r *Renderer) Serialize(node hxres.Node) (any, error) {
	coll := primitive.Map{{Key: "version", Value: Version}}
	if self, ok := node.SelfLink(); ok {
		coll = coll.Set("href", self.URI)
	}

	var items []any
	if !node.IsNull() {
		for _, item := range node.Seq() {
			items = append(items, r.item(item))
		}
	}
	if items == nil {
		items = []any{}
	}
	coll = coll.Set("items", items)

	if node.IsCollection() {
		if links := linkList(node.Links()); len(links) > 0 {
			coll = coll.Set("links", links)
		}
	}

	var queries []any
	for _, f := range node.Forms() {
		if isQuery(f) {
			queries = append(queries, query(f))
			continue
		}
		if !coll.Has("template") {
			coll = coll.Set("template", primitive.Map{{Key: "data", Value: fieldData(f.Fields, true)}})
		}
	}
	if len(queries) > 0 {
		coll = coll.Set("queries", queries)
	}
	return primitive.Map{{Key: "collection", Value: coll}}, nil
}

func (r *Renderer) item(node hxres.Node) primitive.Map {
	out := primitive.Map{}
	if self, ok := node.SelfLink(); ok {
		out = out.Set("href", self.URI)
	}
	data := make([]any, 0, len(node.Attributes()))
	for _, attr := range node.Attributes() {
		data = append(data, primitive.Map{
			{Key: "name", Value: attr.Name},
			{Key: "value", Value: attr.Value},
		})
	}
	out = out.Set("data", data)
	if links := linkList(node.Links()); len(links) > 0 {
		out = out.Set("links", links)
	}
	return out
}

// linkList renders every link except self, which is the href.
func linkList(links []hxres.Link) []any {
	var out []any
	for _, l := range links {
		if l.Rel == hxres.RelSelf {
			continue
		}
		link := primitive.Map{{Key: "rel", Value: l.Rel}, {Key: "href", Value: l.URI}}
		if l.Name != "" {
			link = link.Set("name", l.Name)
		}
		if l.Title != "" {
			link = link.Set("prompt", l.Title)
		}
		out = append(out, link)
	}
	return out
}

func isQuery(f hxres.Form) bool {
	return f.Method == "" || strings.EqualFold(f.Method, http.MethodGet)
}

func query(f hxres.Form) primitive.Map {
	q := primitive.Map{{Key: "rel", Value: f.Name}, {Key: "href", Value: f.Action}}
	if f.Title != "" {
		q = q.Set("prompt", f.Title)
	}
	if len(f.Fields) > 0 {
		q = q.Set("data", fieldData(f.Fields, false))
	}
	return q
}

func fieldData(fields []hxres.Field, prompts bool) []any {
	out := make([]any, 0, len(fields))
	for _, field := range fields {
		value := field.Value
		if value == nil {
			value = ""
		}
		d := primitive.Map{{Key: "name", Value: field.Name}, {Key: "value", Value: value}}
		if prompts && field.Label != "" {
			d = d.Set("prompt", field.Label)
		}
		out = append(out, d)
	}
	return out
}
