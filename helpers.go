package hxres

import (
	"net/http"

	"go.uber.org/zap"
)

// LoadFunc loads the object a request asks for. Return an error wrapping
// ErrNotFound for missing objects.
type LoadFunc func(r *http.Request) (any, error)

// Render writes obj to the response in the format negotiated from the
// request's Accept header.
//
// Sets Content-Type to the format's media type and Vary to Accept. Nothing
// is written when rendering fails, so the caller can still send an error
// response.
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    if err := hxres.Render(w, r, cfg, post, hxres.Options{}); err != nil {
//	        hxres.Error(w, r, err)
//	    }
//	}
func Render(w http.ResponseWriter, r *http.Request, cfg *Config, obj any, opts Options) error {
	if opts.Env == nil {
		opts.Env = EnvFromRequest(r)
	}
	body, mediaType, err := cfg.Render(r.Context(), obj, opts)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", ContentType(mediaType))
	w.Header().Add("Vary", "Accept")
	_, err = w.Write(body)
	return err
}

// Handler serves the objects returned by load.
//
//	mux.Handle("GET /posts/{id}", hxres.Handler(cfg, loadPost, hxres.Options{}))
func Handler(cfg *Config, load LoadFunc, opts Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		obj, err := load(r)
		if err == nil {
			err = Render(w, r, cfg, obj, opts)
		}
		if err != nil {
			cfg.Logger().Warn("render failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			Error(w, r, err)
		}
	})
}

// Error writes a plain error response for err.
func Error(w http.ResponseWriter, _ *http.Request, err error) {
	code := StatusFor(err)
	http.Error(w, http.StatusText(code), code)
}

// StatusFor maps an error to an HTTP status: 404 for ErrNotFound, 406 for
// ErrUnknownFormat, 500 otherwise.
func StatusFor(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsUnknownFormat(err):
		return http.StatusNotAcceptable
	}
	return http.StatusInternalServerError
}

// ContentType returns the Content-Type header value for a media type.
func ContentType(mediaType string) string {
	switch mediaType {
	case "":
		return "application/octet-stream"
	case "text/html":
		return "text/html; charset=utf-8"
	}
	return mediaType
}
