// Package html renders resources as browsable HTML pages.
//
// Each resource renders as a block with its type as a heading, an attribute
// table, its links, its forms and, nested one heading level deeper, its
// subresources or collection members. Forms carry HTMX attributes when the
// "htmx" option is set, so a page can drive the API it describes.
//
// Requests made by HTMX (the HX-Request header, see hxres.Env) get the
// resource block alone; everything else gets a full document. The
// "fragment" option forces the former.
//
// Options:
//
//	title       document title (default "hxres")
//	stylesheet  href of a stylesheet linked from the document head
//	script      src of a script, typically htmx, loaded in the head
//	htmx        add HTMX attributes to forms
//	htmx_target hx-target for forms (default "closest .resource")
//	htmx_swap   hx-swap for forms (default outerHTML)
//	fragment    never wrap the resource in a document
package html

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/hxres"
)

const (
	Name      = "html"
	MediaType = "text/html"
)

func init() {
	Register(hxres.DefaultFormats)
}

// Format returns the HTML format descriptor.
func Format() hxres.Format {
	return hxres.Format{
		Name:       Name,
		MediaTypes: []string{MediaType, "application/xhtml+xml"},
		Kind:       hxres.KindHTML,
		New:        func(opts hxres.FormatOptions) hxres.Renderer { return New(opts) },
	}
}

// Register adds HTML to r.
func Register(r *hxres.FormatRegistry) {
	r.Register(Format())
}

// Renderer renders resources to templ components.
type Renderer struct {
	title      string
	stylesheet string
	script     string
	htmx       bool
	target     string
	swap       SwapMode
	fragment   bool
}

// New creates a renderer with the given options.
func New(opts hxres.FormatOptions) *Renderer {
	r := &Renderer{
		title:      opts.String("title"),
		stylesheet: opts.String("stylesheet"),
		script:     opts.String("script"),
		htmx:       opts.Bool("htmx"),
		target:     opts.String("htmx_target"),
		swap:       SwapMode(opts.String("htmx_swap")),
		fragment:   opts.Bool("fragment"),
	}
	if r.title == "" {
		r.title = "hxres"
	}
	if r.target == "" {
		r.target = "closest .resource"
	}
	if r.swap == "" {
		r.swap = SwapOuter
	}
	return r
}

// Serialize returns a templ.Component rendering node.
func (r *Renderer) Serialize(node hxres.Node) (any, error) {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		if r.fragment || hxres.EnvFrom(ctx).IsHTMX() {
			r.resource(&sb, node, 1)
		} else {
			r.document(&sb, node)
		}
		_, err := io.WriteString(w, sb.String())
		return err
	}), nil
}

func (r *Renderer) document(sb *strings.Builder, node hxres.Node) {
	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
	sb.WriteString(templ.EscapeString(r.title))
	sb.WriteString(`</title>`)
	if r.stylesheet != "" {
		sb.WriteString(`<link rel="stylesheet" href="`)
		sb.WriteString(escapeURL(r.stylesheet))
		sb.WriteString(`">`)
	}
	if r.script != "" {
		sb.WriteString(`<script src="`)
		sb.WriteString(escapeURL(r.script))
		sb.WriteString(`"></script>`)
	}
	sb.WriteString(`</head><body>`)
	r.resource(sb, node, 1)
	sb.WriteString(`</body></html>`)
}

func (r *Renderer) resource(sb *strings.Builder, node hxres.Node, depth int) {
	sb.WriteString(`<div class="resource`)
	if node.IsNull() {
		sb.WriteString(` null"></div>`)
		return
	}
	sb.WriteString(`">`)

	typ := node.Type()
	if node.IsCollection() {
		typ = strings.TrimSpace(typ + " collection")
	}
	if typ != "" {
		h := heading(depth)
		fmt.Fprintf(sb, `<%s class="type">%s</%s>`, h, templ.EscapeString(typ), h)
	}

	if attrs := node.Attributes(); len(attrs) > 0 {
		sb.WriteString(`<table class="attributes">`)
		for _, attr := range attrs {
			sb.WriteString(`<tr class="attribute"><th class="name">`)
			sb.WriteString(templ.EscapeString(attr.Name))
			sb.WriteString(`</th><td class="value">`)
			sb.WriteString(templ.EscapeString(formatValue(attr.Value)))
			sb.WriteString(`</td></tr>`)
		}
		sb.WriteString(`</table>`)
	}

	if links := node.Links(); len(links) > 0 {
		sb.WriteString(`<ul class="links">`)
		for _, l := range links {
			r.link(sb, l)
		}
		sb.WriteString(`</ul>`)
	}

	if forms := node.Forms(); len(forms) > 0 {
		sb.WriteString(`<div class="forms">`)
		for _, f := range forms {
			r.form(sb, f)
		}
		sb.WriteString(`</div>`)
	}

	if node.IsCollection() {
		sb.WriteString(`<div class="members">`)
		for _, m := range node.Seq() {
			r.resource(sb, m, depth+1)
		}
		sb.WriteString(`</div>`)
	} else if subs := node.Subresources(); len(subs) > 0 {
		h := heading(depth + 1)
		sb.WriteString(`<div class="subresources">`)
		for _, sub := range subs {
			fmt.Fprintf(sb, `<div class="subresource"><%s class="rel">%s</%s>`, h, templ.EscapeString(sub.Rel), h)
			if sub.Node == nil {
				sb.WriteString(`</div>`)
				continue
			}
			if sub.Node.IsCollection() {
				for _, m := range sub.Node.Seq() {
					r.resource(sb, m, depth+2)
				}
			} else {
				r.resource(sb, sub.Node, depth+2)
			}
			sb.WriteString(`</div>`)
		}
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
}

func (r *Renderer) link(sb *strings.Builder, l hxres.Link) {
	sb.WriteString(`<li class="link"><span class="rel">`)
	sb.WriteString(templ.EscapeString(l.Rel))
	sb.WriteString(`</span> `)
	if l.Templated {
		sb.WriteString(`<code class="uri templated">`)
		sb.WriteString(templ.EscapeString(l.URI))
		sb.WriteString(`</code>`)
	} else {
		sb.WriteString(`<a class="uri" rel="`)
		sb.WriteString(templ.EscapeString(l.Rel))
		sb.WriteString(`" href="`)
		sb.WriteString(escapeURL(l.URI))
		sb.WriteString(`">`)
		sb.WriteString(templ.EscapeString(l.URI))
		sb.WriteString(`</a>`)
	}
	if l.Title != "" {
		sb.WriteString(` <span class="title">`)
		sb.WriteString(templ.EscapeString(l.Title))
		sb.WriteString(`</span>`)
	}
	sb.WriteString(`</li>`)
}

func (r *Renderer) form(sb *strings.Builder, f hxres.Form) {
	attrs := templ.Attributes{"method": formMethod(f.Method)}
	if f.Name != "" {
		attrs["name"] = f.Name
	}
	if f.Action != "" {
		attrs["action"] = string(templ.URL(f.Action))
	}
	if f.MediaType != "" {
		attrs["enctype"] = f.MediaType
	}
	if r.htmx && f.Action != "" {
		for k, v := range FormAttrs(string(templ.URL(f.Action)), f.Method, r.target, r.swap) {
			attrs[k] = v
		}
	}

	sb.WriteString(`<form`)
	writeAttrs(sb, attrs)
	sb.WriteString(`>`)
	if f.Title != "" {
		sb.WriteString(`<h4 class="form-title">`)
		sb.WriteString(templ.EscapeString(f.Title))
		sb.WriteString(`</h4>`)
	}
	sb.WriteString(`<table>`)
	for _, field := range f.Fields {
		sb.WriteString(`<tr><td><label for="`)
		sb.WriteString(templ.EscapeString(field.Name))
		sb.WriteString(`">`)
		sb.WriteString(templ.EscapeString(field.Label))
		sb.WriteString(`</label></td><td>`)
		input(sb, field)
		sb.WriteString(`</td></tr>`)
	}
	sb.WriteString(`<tr><td><input type="submit"></td></tr></table></form>`)
}

func input(sb *strings.Builder, field hxres.Field) {
	attrs := templ.Attributes{"name": field.Name, "id": field.Name}
	if field.Required {
		attrs["required"] = true
	}
	switch field.Type {
	case "textarea":
		sb.WriteString(`<textarea`)
		writeAttrs(sb, attrs)
		sb.WriteString(`>`)
		sb.WriteString(templ.EscapeString(formatValue(field.Value)))
		sb.WriteString(`</textarea>`)
	case "select":
		sb.WriteString(`<select`)
		writeAttrs(sb, attrs)
		sb.WriteString(`>`)
		for _, opt := range field.Options {
			optAttrs := templ.Attributes{"value": opt.Value}
			if opt.Selected {
				optAttrs["selected"] = true
			}
			sb.WriteString(`<option`)
			writeAttrs(sb, optAttrs)
			sb.WriteString(`>`)
			sb.WriteString(templ.EscapeString(opt.Label))
			sb.WriteString(`</option>`)
		}
		sb.WriteString(`</select>`)
	default:
		typ := field.Type
		if typ == "" {
			typ = "text"
		}
		attrs["type"] = typ
		if field.Value != nil {
			attrs["value"] = formatValue(field.Value)
		}
		sb.WriteString(`<input`)
		writeAttrs(sb, attrs)
		sb.WriteString(`>`)
	}
}

// writeAttrs writes attributes sorted by name. A true bool writes a bare
// attribute, false omits it.
func writeAttrs(sb *strings.Builder, attrs templ.Attributes) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case bool:
			if v {
				sb.WriteString(" " + templ.EscapeString(k))
			}
		default:
			sb.WriteString(" " + templ.EscapeString(k) + `="` + templ.EscapeString(fmt.Sprint(v)) + `"`)
		}
	}
}

func escapeURL(s string) string {
	return templ.EscapeString(string(templ.URL(s)))
}

func heading(depth int) string {
	return fmt.Sprintf("h%d", min(depth, 6))
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	return fmt.Sprint(v)
}
