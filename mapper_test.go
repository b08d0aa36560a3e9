package hxres

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type testAuthor struct {
	ID   int
	Name string
}

type testComment struct {
	ID   int
	Body string
}

type testPost struct {
	ID        int
	Title     string
	Secret    string `hx:"-"`
	Slug      string `hx:"permalink"`
	CreatedAt string
	Author    *testAuthor
	Comments  []testComment
}

func (p *testPost) Excerpt() string { return strings.ToUpper(p.Title) }

func (p testPost) Broken() (string, error) { return "", errors.New("boom") }

type attrReader map[string]any

func (r attrReader) ReadAttribute(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

func TestReadProperty(t *testing.T) {
	post := &testPost{ID: 1, Title: "hi", Secret: "x", Slug: "hi-there", CreatedAt: "2024"}
	tests := []struct {
		name string
		obj  any
		key  string
		want any
	}{
		{"field", post, "title", "hi"},
		{"snake case", post, "created_at", "2024"},
		{"tag", post, "permalink", "hi-there"},
		{"pointer method", post, "excerpt", "HI"},
		{"value struct", *post, "id", 1},
		{"map", map[string]any{"id": 2}, "id", 2},
		{"typed map", map[string]int{"id": 3}, "id", 3},
		{"attribute reader", attrReader{"id": 4}, "id", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadProperty(tt.obj, tt.key)
			if err != nil {
				t.Fatalf("ReadProperty() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadProperty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadPropertyMissing(t *testing.T) {
	post := &testPost{}
	for _, key := range []string{"secret", "nope"} {
		_, err := ReadProperty(post, key)
		if !IsMissingAccessor(err) {
			t.Errorf("ReadProperty(%q) error = %v, want missing accessor", key, err)
		}
	}
	if _, err := ReadProperty(attrReader{}, "id"); !IsMissingAccessor(err) {
		t.Errorf("ReadProperty(reader) error = %v, want missing accessor", err)
	}
	if _, err := ReadProperty(nil, "id"); !IsMissingAccessor(err) {
		t.Errorf("ReadProperty(nil) error = %v, want missing accessor", err)
	}
	if _, err := ReadProperty(post, "broken"); err == nil || IsMissingAccessor(err) {
		t.Errorf("ReadProperty(broken) error = %v, want the method's error", err)
	}
}

func TestMapperAttributes(t *testing.T) {
	m := NewMapper[testPost]().
		Attributes("id", "title").
		Attribute("created_at", As("created")).
		Compute("title", func(obj any, ctx Context) (any, error) {
			return "computed", nil
		})

	node, err := m.Map(&testPost{ID: 1, Title: "hi", CreatedAt: "2024"}, Context{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if node.Type() != "test_post" {
		t.Errorf("Type() = %q, want test_post", node.Type())
	}
	want := Attrs("id", 1, "title", "computed", "created", "2024")
	if !reflect.DeepEqual(node.Attributes(), want) {
		t.Errorf("Attributes() = %v, want %v", node.Attributes(), want)
	}
}

func TestMapperLinks(t *testing.T) {
	m := NewMapper[testPost]().
		Type("post").
		Link(RelSelf, "/posts/{id}", Title("Post")).
		Link("search", "/posts{?q}", NoExpand()).
		Link("comments", "/posts/{id}/comments{?page}", Expand("id")).
		Link("edit", "/posts/{id}/edit", If(func(obj any, ctx Context) bool { return false })).
		LinkFunc("author", func(obj any, ctx Context) (string, error) {
			if obj.(*testPost).Author == nil {
				return "", nil
			}
			return "/authors/1", nil
		}).
		LinkFunc("find", func(obj any, ctx Context) (string, error) {
			return "/find{?q}", nil
		}, Meta("type", "text/html"))

	node, err := m.Map(&testPost{ID: 7}, Context{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	want := []Link{
		{Rel: RelSelf, URI: "/posts/7", Title: "Post"},
		{Rel: "search", URI: "/posts{?q}", Templated: true},
		{Rel: "comments", URI: "/posts/7/comments{?page}", Templated: true},
		{Rel: "find", URI: "/find{?q}", Templated: true, Options: map[string]any{"type": "text/html"}},
	}
	got := node.Links()
	if len(got) != len(want) {
		t.Fatalf("Links() = %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("Links()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMapperLinkMissingVariable(t *testing.T) {
	m := NewMapper[testPost]().Link(RelSelf, "/posts/{uuid}")
	_, err := m.Map(&testPost{}, Context{})
	if !IsMissingAccessor(err) {
		t.Fatalf("Map() error = %v, want missing accessor", err)
	}
	if !strings.Contains(err.Error(), `link "self"`) {
		t.Errorf("error %q does not name the link", err)
	}
}

func TestMapperAssociations(t *testing.T) {
	authorMapper := NewMapper[testAuthor]().Type("author").Attributes("name")
	commentMapper := NewMapper[testComment]().Type("comment").Attributes("id")

	var depths []int
	commentMapper.Compute("depth", func(obj any, ctx Context) (any, error) {
		depths = append(depths, ctx.Depth())
		return ctx.Depth(), nil
	}).Attributes("depth")

	m := NewMapper[testPost]().
		Type("post").
		HasOne("author", WithMapper(authorMapper)).
		HasMany("comments", WithMapper(commentMapper), WithRel("replies"))

	node, err := m.Map(&testPost{
		Author:   &testAuthor{Name: "Ann"},
		Comments: []testComment{{ID: 1}, {ID: 2}},
	}, Context{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	subs := node.Subresources()
	if len(subs) != 2 {
		t.Fatalf("Subresources() = %v", subs)
	}
	if subs[0].Rel != "author" || subs[0].Node.Type() != "author" {
		t.Errorf("author = %+v", subs[0])
	}
	comments := subs[1]
	if comments.Rel != "replies" || !comments.Node.IsCollection() {
		t.Fatalf("comments = %+v", comments)
	}
	if members := comments.Node.Seq(); len(members) != 2 || members[1].Type() != "comment" {
		t.Errorf("comment members = %v", members)
	}
	// post mapper, then the collection mapper
	if !reflect.DeepEqual(depths, []int{2, 2}) {
		t.Errorf("comment mapper depths = %v, want [2 2]", depths)
	}
}

func TestMapperNilAssociations(t *testing.T) {
	m := NewMapper[testPost]().
		HasOne("author", WithMapper(NewMapper[testAuthor]())).
		HasMany("comments", WithMapper(NewMapper[testComment]()))

	node, err := m.Map(&testPost{}, Context{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	subs := node.Subresources()
	if len(subs) != 2 {
		t.Fatalf("Subresources() = %v", subs)
	}
	if !subs[0].Node.IsNull() {
		t.Error("nil has-one should embed a null resource")
	}
	if !subs[1].Node.IsNull() || !subs[1].Node.IsCollection() {
		t.Error("nil has-many should embed a null collection")
	}
}

func TestMapperAssociationFromPolicy(t *testing.T) {
	p := NewPolicy(WithRelTemplate("ex:{rel}"))
	p.Register(NewMapper[testAuthor]().Type("author"))

	m := NewMapper[testPost]().HasOne("author", EmbedIf(func(obj any, ctx Context) bool {
		return obj.(*testPost).ID > 0
	}))

	node, err := m.Map(&testPost{ID: 1, Author: &testAuthor{}}, Context{Policy: p})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if subs := node.Subresources(); len(subs) != 1 || subs[0].Rel != "ex:author" {
		t.Errorf("Subresources() = %v", subs)
	}

	skipped, err := m.Map(&testPost{Author: &testAuthor{}}, Context{Policy: p})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if len(skipped.Subresources()) != 0 {
		t.Error("EmbedIf should skip the association")
	}

	_, err = NewMapper[testPost]().HasOne("author").Map(&testPost{Author: &testAuthor{}}, Context{Policy: NewPolicy()})
	if !errors.Is(err, ErrNoMapper) {
		t.Errorf("Map() error = %v, want no mapper", err)
	}
}

func TestMapperForms(t *testing.T) {
	m := NewMapper[testPost]().Form("edit",
		Action("/posts/{id}"),
		Method("PUT"),
		FormTitle("Edit"),
		Fields(
			Field{Name: "title", Value: FromAttr("title")},
			Field{Name: "excerpt", Value: ValueFunc(func(obj any, ctx Context) (any, error) {
				return "e", nil
			})},
			Field{Name: "static", Value: "s"},
		),
	).Form("delete", FormIf(func(obj any, ctx Context) bool { return false }))

	node, err := m.Map(&testPost{ID: 3, Title: "hi"}, Context{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if len(node.Forms()) != 1 {
		t.Fatalf("Forms() = %v", node.Forms())
	}
	f := node.Forms()[0]
	if f.Action != "/posts/3" || f.Method != "PUT" || f.Title != "Edit" {
		t.Errorf("form = %+v", f)
	}
	var values []any
	for _, field := range f.Fields {
		values = append(values, field.Value)
	}
	if !reflect.DeepEqual(values, []any{"hi", "e", "s"}) {
		t.Errorf("field values = %v", values)
	}
}

func TestMapperFormComputedProperties(t *testing.T) {
	m := NewMapper[testPost]().Form("publish",
		Action("/posts/{id}/publish"),
		FormTitle(FromAttr("title")),
		Method(ValueFunc(func(obj any, ctx Context) (any, error) {
			if obj.(*testPost).ID > 1 {
				return "PATCH", nil
			}
			return "POST", nil
		})),
		MediaType(func(obj any, ctx Context) (any, error) { return "application/json", nil }),
	)

	tests := []struct {
		post   *testPost
		method string
	}{
		{&testPost{ID: 1, Title: "First"}, "POST"},
		{&testPost{ID: 2, Title: "Second"}, "PATCH"},
	}
	for _, tt := range tests {
		t.Run(tt.post.Title, func(t *testing.T) {
			node, err := m.Map(tt.post, Context{})
			if err != nil {
				t.Fatalf("Map() error = %v", err)
			}
			f, ok := node.FindForm("publish")
			if !ok {
				t.Fatal("FindForm(publish) not found")
			}
			if f.Title != tt.post.Title || f.Method != tt.method || f.MediaType != "application/json" {
				t.Errorf("form = %+v, want title %q method %s", f, tt.post.Title, tt.method)
			}
		})
	}

	_, err := NewMapper[testPost]().Form("x", FormTitle(FromAttr("missing"))).Map(&testPost{}, Context{})
	if !IsMissingAccessor(err) {
		t.Errorf("Map() error = %v, want missing accessor", err)
	}
}

func TestMapperNilObject(t *testing.T) {
	var post *testPost
	node, err := NewMapper[testPost]().Attributes("id").Map(post, Context{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if !node.IsNull() {
		t.Error("nil object should map to a null resource")
	}
}

type relSpec struct{}

func (relSpec) Kind() SpecKind { return LinkSpecs }

func (relSpec) Apply(node Node, mp *Mapping) (Node, error) {
	return node.AddRel("custom")
}

func TestMapperUse(t *testing.T) {
	m := NewMapper[testPost]().Use(relSpec{})
	if len(m.Specs(LinkSpecs)) != 1 {
		t.Fatalf("Specs(LinkSpecs) = %v", m.Specs(LinkSpecs))
	}
	node, err := m.Map(&testPost{}, Context{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if !reflect.DeepEqual(node.Rels(), []string{"custom"}) {
		t.Errorf("Rels() = %v", node.Rels())
	}
}

func TestMapperRuleOrder(t *testing.T) {
	var order []string
	record := func(name string) ValueFunc {
		return func(obj any, ctx Context) (any, error) {
			order = append(order, name)
			return name, nil
		}
	}
	m := NewMapper[testPost]().
		Form("f", Fields(Field{Name: "x", Value: record("form")})).
		Link("l", "/{l}").
		Compute("l", record("link")).
		Attribute("a").
		Compute("a", record("attribute"))

	if _, err := m.Map(&testPost{}, Context{}); err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	want := []string{"attribute", "link", "form"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("rule order = %v, want %v", order, want)
	}
}
