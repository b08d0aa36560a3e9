package jsonapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/hxres"
	"github.com/pthm/hxres/lib/encoding"
)

func render(t *testing.T, node hxres.Node) string {
	t.Helper()
	out, err := New(nil).Serialize(node)
	require.NoError(t, err)
	b, err := encoding.JSON{}.Serialize(context.Background(), out)
	require.NoError(t, err)
	return string(b)
}

func author() hxres.Resource {
	return hxres.NewResource(hxres.WithType("author"), hxres.WithAttributes(hxres.Attrs("id", 9, "name", "Ann")))
}

func post(id int) hxres.Resource {
	return hxres.NewResource(
		hxres.WithType("post"),
		hxres.WithAttributes(hxres.Attrs("id", id, "title", "Hello")),
		hxres.WithLinks(hxres.Link{Rel: "self", URI: "/posts/1"}),
		hxres.WithSubresources(hxres.Subresource{Rel: "author", Node: author()}),
	)
}

func TestSerializeResource(t *testing.T) {
	want := `{"data":{"type":"post","id":"1","attributes":{"title":"Hello"},` +
		`"relationships":{"author":{"data":{"type":"author","id":"9"}}},` +
		`"links":{"self":"/posts/1"}},` +
		`"included":[{"type":"author","id":"9","attributes":{"name":"Ann"}}]}`
	assert.Equal(t, want, render(t, post(1)))
}

func TestSerializeNull(t *testing.T) {
	assert.Equal(t, `{"data":null}`, render(t, hxres.NewNullResource()))
}

func TestCollectionIncludesOnce(t *testing.T) {
	base := hxres.NewResource(hxres.WithType("posts"), hxres.WithLinks(hxres.Link{Rel: "self", URI: "/posts"}))
	coll := hxres.NewCollectionResource(base, post(1), post(2))

	got := render(t, coll)
	assert.Contains(t, got, `"data":[{"type":"post","id":"1"`)
	assert.Contains(t, got, `{"type":"post","id":"2"`)
	assert.Contains(t, got, `"links":{"self":"/posts"}`)
	assert.Contains(t, got, `"included":[{"type":"author","id":"9","attributes":{"name":"Ann"}}]}`)
}

func TestRelationshipLinkage(t *testing.T) {
	comments := hxres.NewCollectionResource(hxres.NewResource(),
		hxres.NewResource(hxres.WithType("comment"), hxres.WithAttributes(hxres.Attrs("id", 1))),
	)
	node := hxres.NewResource(
		hxres.WithType("post"),
		hxres.WithSubresources(
			hxres.Subresource{Rel: "editor", Node: hxres.NewNullResource()},
			hxres.Subresource{Rel: "comments", Node: comments},
		),
	)
	got := render(t, node)
	assert.Contains(t, got, `"editor":{"data":null}`)
	assert.Contains(t, got, `"comments":{"data":[{"type":"comment","id":"1"}]}`)
	assert.Contains(t, got, `"included":[{"type":"comment","id":"1"}]`)
}

func TestRegister(t *testing.T) {
	reg := hxres.NewFormatRegistry()
	Register(reg)
	f, ok := reg.ByMediaType(MediaType)
	require.True(t, ok)
	assert.Equal(t, Name, f.Name)
}
