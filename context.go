package hxres

import (
	"context"
	"net/http"
	"strings"
)

// Env keys set by EnvFromRequest. Keys follow the CGI convention of
// upper-cased header names prefixed with HTTP_.
const (
	EnvAccept    = "HTTP_ACCEPT"
	EnvHXRequest = "HTTP_HX_REQUEST"
	EnvHXBoosted = "HTTP_HX_BOOSTED"
)

// Env carries transport-level request information, such as the Accept
// header, into mapping and format selection.
type Env map[string]string

// EnvFromRequest builds an Env from the request headers.
func EnvFromRequest(r *http.Request) Env {
	return EnvFromHeader(r.Header)
}

// EnvFromHeader builds an Env from HTTP headers; multiple values of a header
// are joined with a comma.
func EnvFromHeader(h http.Header) Env {
	env := make(Env, len(h))
	for name, values := range h {
		env[envKey(name)] = strings.Join(values, ", ")
	}
	return env
}

func envKey(header string) string {
	return "HTTP_" + strings.ToUpper(strings.ReplaceAll(header, "-", "_"))
}

// Header returns the value of an HTTP header captured in the env.
func (e Env) Header(name string) string {
	return e[envKey(name)]
}

// Accept returns the Accept header value, or "" if absent.
func (e Env) Accept() string {
	return e[EnvAccept]
}

// IsHTMX reports whether the request originated from HTMX.
func (e Env) IsHTMX() bool {
	return e[EnvHXRequest] == "true"
}

// IsBoosted reports whether the request is a boosted navigation (hx-boost).
func (e Env) IsBoosted() bool {
	return e[EnvHXBoosted] == "true"
}

type envCtxKey struct{}

// WithEnv returns a copy of ctx carrying env. Runners attach their Env
// before running the steps, so serializers rendering templ components can
// read it.
func WithEnv(ctx context.Context, env Env) context.Context {
	return context.WithValue(ctx, envCtxKey{}, env)
}

// EnvFrom returns the Env attached to ctx, or nil.
func EnvFrom(ctx context.Context) Env {
	env, _ := ctx.Value(envCtxKey{}).(Env)
	return env
}

// Context is the state shared by every mapper taking part in one mapping
// pass.
type Context struct {
	Policy Policy
	Env    Env
	// MapperStack holds the ancestors of the mapper currently running,
	// outermost first. Association mapping pushes the parent before
	// descending; nothing bounds the depth.
	MapperStack []ResourceMapper
	// ItemMapper maps the members of a top-level collection.
	ItemMapper ResourceMapper
	Extra      map[string]any
}

// Parent returns the mapper that descended into the current one.
func (c Context) Parent() (ResourceMapper, bool) {
	if len(c.MapperStack) == 0 {
		return nil, false
	}
	return c.MapperStack[len(c.MapperStack)-1], true
}

// Depth returns the number of ancestor mappers.
func (c Context) Depth() int {
	return len(c.MapperStack)
}

func (c Context) push(m ResourceMapper) Context {
	c.MapperStack = appendCopy(c.MapperStack, m)
	return c
}

func (c Context) policy() Policy {
	if c.Policy == nil {
		return defaultPolicy
	}
	return c.Policy
}
