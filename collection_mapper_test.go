package hxres

import (
	"strings"
	"testing"
)

func TestCollectionMapper(t *testing.T) {
	item := NewMapper[testComment]().Type("comment").Attributes("id")
	m := NewCollectionMapper(item)
	m.Collection.Type("comments").
		Link(RelSelf, "/comments").
		Compute("count", func(obj any, ctx Context) (any, error) {
			return len(obj.([]testComment)), nil
		}).
		Attributes("count")

	node, err := m.Map([]testComment{{ID: 1}, {ID: 2}, {ID: 3}}, Context{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if !node.IsCollection() || node.Type() != "comments" {
		t.Fatalf("Map() = %v", node)
	}
	if v, _ := node.Get("count"); v != 3 {
		t.Errorf("count = %v, want 3", v)
	}
	if self, _ := node.SelfLink(); self.URI != "/comments" {
		t.Errorf("SelfLink() = %v", self)
	}
	members := node.Seq()
	if len(members) != 3 {
		t.Fatalf("Seq() len = %d, want 3", len(members))
	}
	for i, member := range members {
		if v, _ := member.Get("id"); v != i+1 {
			t.Errorf("member %d id = %v", i, v)
		}
	}
}

func TestCollectionMapperName(t *testing.T) {
	item := NewMapper[testComment]().Type("comment")
	tests := []struct {
		name string
		m    *CollectionMapper
		want string
	}{
		{"explicit", func() *CollectionMapper {
			m := NewCollectionMapper(item)
			m.Collection.Type("comments")
			return m
		}(), "comments"},
		{"from item", NewCollectionMapper(item), "comment"},
		{"empty", &CollectionMapper{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Name(nil); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollectionMapperItemResolution(t *testing.T) {
	p := NewPolicy()
	p.Register(NewMapper[testComment]().Type("from_policy"))
	ctxMapper := NewMapper[testComment]().Type("from_context")

	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{"context item mapper", Context{Policy: p, ItemMapper: ctxMapper}, "from_context"},
		{"policy", Context{Policy: p}, "from_policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := (&CollectionMapper{}).Map([]testComment{{}}, tt.ctx)
			if err != nil {
				t.Fatalf("Map() error = %v", err)
			}
			if got := node.Seq()[0].Type(); got != tt.want {
				t.Errorf("member type = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollectionMapperEdgeCases(t *testing.T) {
	m := NewCollectionMapper(NewMapper[testComment]())

	var none []testComment
	node, err := m.Map(none, Context{})
	if err != nil {
		t.Fatalf("Map(nil) error = %v", err)
	}
	if !node.IsNull() || !node.IsCollection() {
		t.Error("nil slice should map to a null collection")
	}

	empty, err := m.Map([]testComment{}, Context{})
	if err != nil {
		t.Fatalf("Map(empty) error = %v", err)
	}
	if empty.IsNull() || len(empty.Seq()) != 0 {
		t.Errorf("empty slice = %v, want an empty collection", empty)
	}

	arr, err := m.Map([2]testComment{}, Context{})
	if err != nil || len(arr.Seq()) != 2 {
		t.Errorf("Map(array) = %v, %v", arr, err)
	}

	_, err = m.Map(testComment{}, Context{})
	if !IsValidation(err) {
		t.Fatalf("Map(struct) error = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "must be a sequence, got hxres.testComment") {
		t.Errorf("error = %q", err)
	}

	_, err = (&CollectionMapper{}).Map([]int{1}, Context{Policy: NewPolicy()})
	if err == nil || !strings.HasPrefix(err.Error(), "member 0") {
		t.Errorf("Map() error = %v, want member 0 wrapped", err)
	}
}
