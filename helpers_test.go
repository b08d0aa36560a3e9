package hxres

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect int
	}{
		{"not found", fmt.Errorf("load: %w", ErrNotFound), http.StatusNotFound},
		{"unknown format", ErrUnknownFormat, http.StatusNotAcceptable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
		{"no mapper", ErrNoMapper, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.expect {
				t.Errorf("StatusFor() = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		mediaType string
		expect    string
	}{
		{"", "application/octet-stream"},
		{"text/html", "text/html; charset=utf-8"},
		{"application/hal+json", "application/hal+json"},
	}

	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			if got := ContentType(tt.mediaType); got != tt.expect {
				t.Errorf("ContentType(%q) = %q, want %q", tt.mediaType, got, tt.expect)
			}
		})
	}
}

func TestRenderHelper(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/posts/1", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	if err := Render(rec, req, testConfig(), &testPost{ID: 1}, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("Vary") != "Accept" {
		t.Errorf("Vary = %q", rec.Header().Get("Vary"))
	}
	if rec.Body.String() != "<p>post</p>" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandler(t *testing.T) {
	posts := map[string]*testPost{"/posts/1": {ID: 1}}
	h := Handler(testConfig(), func(r *http.Request) (any, error) {
		if p, ok := posts[r.URL.Path]; ok {
			return p, nil
		}
		return nil, fmt.Errorf("post %s: %w", r.URL.Path, ErrNotFound)
	}, Options{})

	tests := []struct {
		name   string
		path   string
		accept string
		status int
		body   string
	}{
		{"found", "/posts/1", "", http.StatusOK, `{"id":1,"type":"post"}`},
		{"negotiated", "/posts/1", "text/html", http.StatusOK, "<p>post</p>"},
		{"missing", "/posts/2", "", http.StatusNotFound, "Not Found\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestHandlerUnknownFormat(t *testing.T) {
	h := Handler(testConfig(), func(*http.Request) (any, error) { return &testPost{}, nil }, Options{Format: "nope"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotAcceptable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotAcceptable)
	}
}
