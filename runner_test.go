package hxres

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/pthm/hxres/lib/encoding"
	"github.com/pthm/hxres/lib/primitive"
)

type testRenderer struct {
	opts FormatOptions
}

func (r *testRenderer) Serialize(node Node) (any, error) {
	out := map[string]any{"type": node.Type()}
	if node.IsNull() {
		out["null"] = true
	}
	for _, attr := range node.Attributes() {
		out[attr.Name] = attr.Value
	}
	if prefix := r.opts.String("prefix"); prefix != "" {
		out["type"] = prefix + node.Type()
	}
	return out, nil
}

type htmlRenderer struct{}

func (htmlRenderer) Serialize(node Node) (any, error) {
	return "<p>" + node.Type() + "</p>", nil
}

type reducingRenderer struct{}

func (reducingRenderer) Serialize(node Node) (any, error) { return node.Type(), nil }
func (reducingRenderer) Primitivize(v any) (any, error)   { return "reduced", nil }

func testRegistry(calls *int) *FormatRegistry {
	r := NewFormatRegistry()
	r.Register(
		Format{
			Name:       "test",
			MediaTypes: []string{"application/test+json"},
			Kind:       KindJSON,
			New: func(opts FormatOptions) Renderer {
				if calls != nil {
					*calls++
				}
				return &testRenderer{opts: opts}
			},
		},
		Format{
			Name:       "page",
			MediaTypes: []string{"text/html"},
			Kind:       KindHTML,
			New:        func(FormatOptions) Renderer { return htmlRenderer{} },
		},
		Format{
			Name:       "reduced",
			MediaTypes: []string{"application/reduced"},
			Kind:       KindJSON,
			New:        func(FormatOptions) Renderer { return reducingRenderer{} },
		},
	)
	return r
}

func testConfig(opts ...Option) *Config {
	p := NewPolicy(WithDefaultFormat("test"))
	p.Register(NewMapper[testPost]().Type("post").Attributes("id"))
	base := []Option{
		WithPolicy(p),
		WithFormats(testRegistry(nil)),
		WithSerializer(KindJSON, encoding.JSON{}),
	}
	return NewConfig(append(base, opts...)...)
}

func TestRunnerRender(t *testing.T) {
	body, mt, err := testConfig().Render(context.Background(), &testPost{ID: 1}, Options{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if mt != "application/test+json" {
		t.Errorf("media type = %q", mt)
	}
	if string(body) != `{"id":1,"type":"post"}` {
		t.Errorf("body = %s", body)
	}
}

func TestRunnerNegotiation(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		format string
		want   string
		body   string
	}{
		{"default", "", "", "application/test+json", `{"id":1,"type":"post"}`},
		{"accept html", "text/html, */*;q=0.1", "", "text/html", `<p>post</p>`},
		{"forced format", "text/html", "test", "application/test+json", `{"id":1,"type":"post"}`},
		{"format primitivizer", "application/reduced", "", "application/reduced", `"reduced"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := EnvFromHeader(http.Header{"Accept": {tt.accept}})
			body, mt, err := testConfig().Render(context.Background(), &testPost{ID: 1}, Options{Env: env, Format: tt.format})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if mt != tt.want {
				t.Errorf("media type = %q, want %q", mt, tt.want)
			}
			if string(body) != tt.body {
				t.Errorf("body = %s, want %s", body, tt.body)
			}
		})
	}
}

func TestRunnerHooks(t *testing.T) {
	stamp := func(_ context.Context, in any) (any, error) {
		m := in.(map[string]any)
		m["stamped"] = true
		return m, nil
	}
	cfg := testConfig().After(StepFormat, stamp).Skip(StepSerialize)

	r, err := cfg.Runner(&testPost{ID: 1}, Options{})
	if err != nil {
		t.Fatalf("Runner() error = %v", err)
	}
	want := []string{"map", "format", "after_format", "primitivize"}
	if got := StepNames(r.Steps()); !reflect.DeepEqual(got, want) {
		t.Errorf("Steps() = %v, want %v", got, want)
	}

	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	m, ok := out.(primitive.Map)
	if !ok {
		t.Fatalf("Run() = %T, want primitive.Map", out)
	}
	if v, _ := m.Get("stamped"); v != true {
		t.Errorf("after_format hook did not run: %v", m)
	}
}

func TestRunnerAroundFormat(t *testing.T) {
	var called bool
	cfg := testConfig().Around(StepFormat, func(ctx context.Context, next StepFunc, in any) (any, error) {
		called = true
		return map[string]any{"wrapped": in.(Node).Type()}, nil
	})
	body, _, err := cfg.Render(context.Background(), &testPost{}, Options{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !called || string(body) != `{"wrapped":"post"}` {
		t.Errorf("body = %s, called = %v", body, called)
	}
}

func TestRunnerMemoizesRenderer(t *testing.T) {
	var calls int
	cfg := testConfig(WithFormats(testRegistry(&calls))).FormatOptions("test", FormatOptions{"prefix": "x:"})
	r, err := cfg.Runner(&testPost{}, Options{})
	if err != nil {
		t.Fatalf("Runner() error = %v", err)
	}
	first, _ := r.Renderer()
	second, _ := r.Renderer()
	if first != second || calls != 1 {
		t.Errorf("renderer created %d times", calls)
	}
	if r.Context().Policy != cfg.Policy() {
		t.Error("Context() does not carry the policy")
	}

	body, _, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(body), `"type":"x:post"`) || calls != 1 {
		t.Errorf("body = %s, renderer created %d times", body, calls)
	}
}

func TestRunnerContext(t *testing.T) {
	item := NewMapper[testComment]()
	cfg := testConfig()
	r, err := cfg.Runner([]testComment{}, Options{ItemMapper: item, Extra: map[string]any{"k": "v"}})
	if err != nil {
		t.Fatalf("Runner() error = %v", err)
	}
	ctx := r.Context()
	if ctx.Policy != cfg.Policy() {
		t.Error("Context() does not carry the policy")
	}
	if ctx.Env == nil || len(ctx.Env) != 0 {
		t.Errorf("Context().Env = %#v, want an empty map", ctx.Env)
	}
	if len(ctx.MapperStack) != 0 {
		t.Errorf("Context().MapperStack = %v, want empty", ctx.MapperStack)
	}
	if ctx.ItemMapper != item {
		t.Errorf("Context().ItemMapper = %v, want the option's mapper", ctx.ItemMapper)
	}
	if ctx.Extra["k"] != "v" {
		t.Errorf("Context().Extra = %v", ctx.Extra)
	}

	env := Env{EnvAccept: "text/html"}
	r, _ = cfg.Runner(nil, Options{Env: env})
	if got := r.Context().Env.Accept(); got != "text/html" {
		t.Errorf("Context().Env.Accept() = %q, want text/html", got)
	}
}

func TestRunnerNilPolicy(t *testing.T) {
	cfg := NewConfig(WithPolicy(nil), WithFormats(testRegistry(nil)))
	if cfg.Policy() != defaultPolicy {
		t.Errorf("Policy() = %v, want the default policy", cfg.Policy())
	}

	body, _, err := cfg.Render(context.Background(), nil, Options{Format: "test"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(body), `"null"`) {
		t.Errorf("body = %s", body)
	}

	_, _, err = cfg.Render(context.Background(), &testPost{}, Options{Format: "test"})
	if !errors.Is(err, ErrNoMapper) {
		t.Errorf("Render() error = %v, want no mapper", err)
	}

	if got := NewConfig(WithFormats(nil)).Formats(); got != DefaultFormats {
		t.Error("Formats() with a nil registry should fall back to DefaultFormats")
	}
}

func TestRunnerPrimitivizerForHTML(t *testing.T) {
	r, err := testConfig().Runner(&testPost{}, Options{Format: "page"})
	if err != nil {
		t.Fatalf("Runner() error = %v", err)
	}
	fn, err := r.Primitivizer()
	if err != nil {
		t.Fatalf("Primitivizer() error = %v", err)
	}
	in := struct{ X int }{1}
	if out, _ := fn(context.Background(), in); out != in {
		t.Errorf("Primitivizer() for html = %v, want identity", out)
	}
}

func TestRunnerSerializer(t *testing.T) {
	r, _ := NewConfig(WithFormats(testRegistry(nil))).Runner(nil, Options{Format: "test"})
	s, err := r.Serializer()
	if err != nil {
		t.Fatalf("Serializer() error = %v", err)
	}
	if _, ok := s.(encoding.JSON); !ok {
		t.Errorf("Serializer() = %T, want the policy default", s)
	}

	r, _ = testConfig(WithSerializer(KindJSON, encoding.Msgpack{})).Runner(nil, Options{})
	if s, _ := r.Serializer(); s != (encoding.Msgpack{}) {
		t.Errorf("Serializer() = %T, want the configured override", s)
	}
}

func TestRunnerNilObject(t *testing.T) {
	body, _, err := testConfig().Render(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(body) != `{"null":true,"type":""}` {
		t.Errorf("body = %s", body)
	}
}

func TestRunnerErrors(t *testing.T) {
	if _, err := NewRunner(&testPost{}, testConfig(), Options{Format: "nope"}); !IsUnknownFormat(err) {
		t.Errorf("NewRunner() error = %v, want unknown format", err)
	}

	_, _, err := testConfig().Render(context.Background(), struct{}{}, Options{})
	if !errors.Is(err, ErrNoMapper) {
		t.Fatalf("Render() error = %v, want no mapper", err)
	}
	if !strings.HasPrefix(err.Error(), "step map") {
		t.Errorf("error %q does not name the step", err)
	}

	boom := errors.New("boom")
	cfg := testConfig().Before(StepSerialize, func(context.Context, any) (any, error) { return nil, boom })
	_, err = cfg.Call(context.Background(), &testPost{}, Options{})
	if !errors.Is(err, boom) || !strings.HasPrefix(err.Error(), "step before_serialize") {
		t.Errorf("Call() error = %v", err)
	}
}

func TestConfigMap(t *testing.T) {
	node, err := testConfig().Map([]testPost{{ID: 1}, {ID: 2}}, Options{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if !node.IsCollection() || len(node.Seq()) != 2 || node.Seq()[0].Type() != "post" {
		t.Errorf("Map() = %v", node)
	}
}
