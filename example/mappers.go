package main

import (
	"net/http"

	"github.com/pthm/hxres"
)

var tagMapper = hxres.NewMapper[Tag]().
	Type("tag").
	Attributes("name", "color")

var todoMapper = hxres.NewMapper[Todo]().
	Type("todo").
	Attributes("id", "title", "description", "status", "created_at").
	Link(hxres.RelSelf, "/todos/{id}").
	Link("collection", "/todos").
	HasMany("tags", hxres.WithMapper(tagMapper)).
	Form("toggle",
		hxres.Action("/todos/{id}/toggle"),
		hxres.Method(http.MethodPost),
		hxres.FormTitle("Toggle"),
	).
	Form("complete",
		hxres.Action("/todos/{id}/toggle"),
		hxres.Method(http.MethodPost),
		hxres.FormTitle("Mark done"),
		hxres.FormIf(pending),
	)

func pending(obj any, _ hxres.Context) bool {
	switch t := obj.(type) {
	case Todo:
		return !t.Done()
	case *Todo:
		return !t.Done()
	}
	return false
}

func todoListMapper() *hxres.CollectionMapper {
	m := hxres.NewCollectionMapper(todoMapper)
	m.Collection.
		Type("todos").
		Link(hxres.RelSelf, "/todos").
		Link("search", "/todos{?status}", hxres.NoExpand()).
		Compute("count", func(obj any, _ hxres.Context) (any, error) {
			return len(obj.([]Todo)), nil
		}).
		Attributes("count")
	return m
}

// newPolicy registers the example's mappers.
func newPolicy() *hxres.DefaultPolicy {
	p := hxres.NewPolicy()
	p.Register(todoMapper, tagMapper)
	return p
}
