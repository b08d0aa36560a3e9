package hxres

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
)

// TestResult holds the output of rendering an object for testing.
//
// Provides convenience methods for asserting on the body, the negotiated
// format and, for HTTP round trips, the status and headers.
type TestResult struct {
	Body       string
	Format     string
	MediaType  string
	StatusCode int
	Headers    http.Header
	// Steps lists the runner steps in execution order, hooks included.
	Steps []string
}

// TestRender renders obj through a runner and returns testable output.
//
// Use this for unit tests of mappers and formats without HTTP:
//
//	result, err := hxres.TestRender(cfg, post, hxres.Options{Format: "hal"})
//	if !result.BodyContains(`"title": "Hello"`) {
//	    t.Fatal("missing title")
//	}
func TestRender(cfg *Config, obj any, opts Options) (*TestResult, error) {
	return TestRenderWithContext(context.Background(), cfg, obj, opts)
}

// TestRenderWithContext renders obj with a custom context.
func TestRenderWithContext(ctx context.Context, cfg *Config, obj any, opts Options) (*TestResult, error) {
	r, err := NewRunner(obj, cfg, opts)
	if err != nil {
		return nil, err
	}
	body, mediaType, err := r.Render(ctx)
	if err != nil {
		return nil, err
	}
	return &TestResult{
		Body:       string(body),
		Format:     r.FormatName(),
		MediaType:  mediaType,
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": {ContentType(mediaType)}},
		Steps:      StepNames(r.Steps()),
	}, nil
}

// TestRequestBuilder provides a fluent interface for building test requests
// against an http.Handler.
//
//	result, err := hxres.NewTestRequest("GET", "/posts/1").
//	    WithAccept("application/vnd.api+json").
//	    Execute(handler)
type TestRequestBuilder struct {
	method  string
	url     string
	headers map[string]string
	ctx     context.Context
}

// NewTestRequest creates a new test request builder.
func NewTestRequest(method, url string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method:  method,
		url:     url,
		headers: make(map[string]string),
		ctx:     context.Background(),
	}
}

// WithHeader adds a header to the request.
func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers[key] = value
	return b
}

// WithAccept sets the Accept header.
func (b *TestRequestBuilder) WithAccept(accept string) *TestRequestBuilder {
	return b.WithHeader("Accept", accept)
}

// WithContext sets the context for the request.
func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Execute sends the request to h and records the response.
func (b *TestRequestBuilder) Execute(h http.Handler) (*TestResult, error) {
	req := httptest.NewRequest(b.method, b.url, nil).WithContext(b.ctx)
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	ct := rec.Header().Get("Content-Type")
	mediaType, _, _ := strings.Cut(ct, ";")
	return &TestResult{
		Body:       rec.Body.String(),
		MediaType:  strings.TrimSpace(mediaType),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}, nil
}

// BodyContains checks if the body contains substr.
func (r *TestResult) BodyContains(substr string) bool {
	return strings.Contains(r.Body, substr)
}

// BodyContainsAll checks if the body contains all substrings.
func (r *TestResult) BodyContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.Body, s) {
			return false
		}
	}
	return true
}

// BodyContainsAny checks if the body contains at least one substring.
func (r *TestResult) BodyContainsAny(substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(r.Body, s) {
			return true
		}
	}
	return false
}

// DecodeJSON unmarshals the body into v.
func (r *TestResult) DecodeJSON(v any) error {
	return json.Unmarshal([]byte(r.Body), v)
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// HasHeader checks if a header has a specific value.
func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}
