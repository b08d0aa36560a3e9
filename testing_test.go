package hxres

import (
	"context"
	"net/http"
	"reflect"
	"testing"
)

func TestTestRender(t *testing.T) {
	cfg := testConfig().After(StepFormat, noop)
	result, err := TestRender(cfg, &testPost{ID: 1}, Options{})
	if err != nil {
		t.Fatalf("TestRender() error = %v", err)
	}

	if result.Format != "test" || result.MediaType != "application/test+json" {
		t.Errorf("Format = %q, MediaType = %q", result.Format, result.MediaType)
	}
	if !result.IsOK() || !result.HasHeader("Content-Type", "application/test+json") {
		t.Errorf("result = %+v", result)
	}
	want := []string{"map", "format", "after_format", "primitivize", "serialize"}
	if !reflect.DeepEqual(result.Steps, want) {
		t.Errorf("Steps = %v, want %v", result.Steps, want)
	}

	var body map[string]any
	if err := result.DecodeJSON(&body); err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if body["type"] != "post" {
		t.Errorf("body = %v", body)
	}
}

func TestTestRenderErrors(t *testing.T) {
	if _, err := TestRender(testConfig(), &testPost{}, Options{Format: "nope"}); !IsUnknownFormat(err) {
		t.Errorf("TestRender() error = %v, want unknown format", err)
	}
	if _, err := TestRenderWithContext(context.Background(), testConfig(), 42, Options{}); !IsNoMapper(err) {
		t.Errorf("TestRenderWithContext() error = %v, want no mapper", err)
	}
}

func TestBodyAssertions(t *testing.T) {
	result := &TestResult{Body: `<p class="post">Hello</p>`, StatusCode: http.StatusCreated}

	tests := []struct {
		name   string
		got    bool
		expect bool
	}{
		{"contains", result.BodyContains("Hello"), true},
		{"contains missing", result.BodyContains("Bye"), false},
		{"contains all", result.BodyContainsAll("<p", "Hello"), true},
		{"contains all missing one", result.BodyContainsAll("<p", "Bye"), false},
		{"contains any", result.BodyContainsAny("Bye", "Hello"), true},
		{"contains any none", result.BodyContainsAny("Bye", "Ciao"), false},
		{"is ok", result.IsOK(), false},
		{"has status", result.HasStatus(http.StatusCreated), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expect {
				t.Errorf("got %v, want %v", tt.got, tt.expect)
			}
		})
	}
}

func TestNewTestRequest(t *testing.T) {
	var seen http.Header
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header
		if err := Render(w, r, testConfig(), &testPost{ID: 2}, Options{}); err != nil {
			Error(w, r, err)
		}
	})

	result, err := NewTestRequest(http.MethodGet, "/posts/2").
		WithAccept("text/html").
		WithHeader("HX-Request", "true").
		WithContext(context.Background()).
		Execute(h)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if seen.Get("HX-Request") != "true" {
		t.Error("header not sent")
	}
	if !result.IsOK() || result.MediaType != "text/html" || result.Body != "<p>post</p>" {
		t.Errorf("result = %+v", result)
	}
}
