// Package hxres turns Go values into hypermedia resources and renders them
// as HAL, JSON:API, Collection+JSON or HTML, chosen by content negotiation.
//
// Rendering happens in two halves. Mappers walk a value and its
// associations and build an immutable resource graph; formats turn that
// graph into bytes. The graph is format agnostic, so one mapper serves every
// format a client may ask for.
//
// # Resources
//
// A Node is a Resource, a CollectionResource or a NullResource. Nodes are
// immutable: every update returns a new node and leaves the receiver alone.
//
//	post := hxres.NewResource(
//	    hxres.WithType("post"),
//	    hxres.WithAttributes(hxres.Attrs("id", 1, "title", "Hello")),
//	    hxres.WithLinks(hxres.Link{Rel: hxres.RelSelf, URI: "/posts/1"}),
//	)
//	post, _ = post.AddRel("item")
//
// NullResource stands in for an absent value and refuses every update with
// an UnsupportedOperationError.
//
// # Mappers
//
// A Mapper declares how values of one Go type become resources. Rules are
// applied in a fixed order: attributes, links, associations, forms.
//
//	var postMapper = hxres.NewMapper[Post]().
//	    Attributes("id", "title").
//	    Link(hxres.RelSelf, "/posts/{id}").
//	    HasOne("author", hxres.WithMapper(authorMapper)).
//	    HasMany("comments", hxres.WithMapper(commentMapper)).
//	    Form("delete", hxres.Action("/posts/{id}"), hxres.Method(http.MethodDelete))
//
// Values are read with ReadProperty: computed accessors registered with
// Compute first, then map keys, struct fields (honouring the hx tag) and
// argument-less methods. Link URIs are RFC 6570 templates; variables not
// selected for expansion stay in the URI and mark the link templated.
//
// Mappers are looked up by the Policy when a value or association does not
// name one. Register them once at start-up:
//
//	policy := hxres.NewPolicy()
//	policy.Register(postMapper, authorMapper, commentMapper)
//
// # Formats and negotiation
//
// Formats live under lib/format and register themselves into DefaultFormats
// when imported:
//
//	import (
//	    _ "github.com/pthm/hxres/lib/format/hal"
//	    _ "github.com/pthm/hxres/lib/format/html"
//	)
//
// SelectFormat picks the format whose media types best match the Accept
// header. A forced format wins; no match falls back to the policy's default
// format, then to HAL.
//
// # Runner
//
// A Runner carries one value through the steps map, format, primitivize and
// serialize. Hooks registered on the Config insert, replace or remove steps
// by name:
//
//	cfg := hxres.NewConfig(hxres.WithPolicy(policy)).
//	    After(hxres.StepFormat, addAPIVersion).
//	    Skip(hxres.StepSerialize)
//
// An Around hook replaces a step and receives the original, so it decides
// whether the original runs at all.
//
// # HTTP
//
// Render writes a value to an http.ResponseWriter with the negotiated
// Content-Type; Handler wraps a loader function into an http.Handler.
// Adapters for Echo and Fiber live under adapters/.
//
//	mux.Handle("GET /posts/{id}", hxres.Handler(cfg, loadPost, hxres.Options{}))
//
// Requests sent by HTMX get an HTML fragment instead of a full document, so
// a browsable API page can update itself in place.
//
// # Testing
//
// TestRender renders a value without HTTP, and NewTestRequest drives an
// http.Handler:
//
//	result, err := hxres.TestRender(cfg, post, hxres.Options{Format: "hal"})
//	if !result.BodyContains(`"title": "Hello"`) {
//	    t.Error("missing title")
//	}
package hxres
