// Package hxresecho provides Echo framework integration for hxres.
//
// Serve resources from an Echo route:
//
//	e := echo.New()
//	e.GET("/posts/:id", hxresecho.Handler(cfg, loadPost, hxres.Options{}))
//
// Or render from an existing handler:
//
//	func show(c echo.Context) error {
//	    return hxresecho.Render(c, cfg, post, hxres.Options{})
//	}
package hxresecho

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pthm/hxres"
)

// LoadFunc loads the object a request asks for. Return an error wrapping
// hxres.ErrNotFound for missing objects.
type LoadFunc func(c echo.Context) (any, error)

// Render writes obj to the Echo response in the format negotiated from the
// request's Accept header.
func Render(c echo.Context, cfg *hxres.Config, obj any, opts hxres.Options) error {
	if opts.Env == nil {
		opts.Env = hxres.EnvFromRequest(c.Request())
	}
	body, mediaType, err := cfg.Render(c.Request().Context(), obj, opts)
	if err != nil {
		return err
	}
	c.Response().Header().Add(echo.HeaderVary, echo.HeaderAccept)
	return c.Blob(http.StatusOK, hxres.ContentType(mediaType), body)
}

// Handler serves the objects returned by load. Failures become
// *echo.HTTPError with the status from hxres.StatusFor, so Echo's error
// handler writes the response.
func Handler(cfg *hxres.Config, load LoadFunc, opts hxres.Options) echo.HandlerFunc {
	return func(c echo.Context) error {
		obj, err := load(c)
		if err == nil {
			err = Render(c, cfg, obj, opts)
		}
		if err != nil {
			return HTTPError(cfg, c, err)
		}
		return nil
	}
}

// HTTPError logs err and converts it to an *echo.HTTPError.
func HTTPError(cfg *hxres.Config, c echo.Context, err error) *echo.HTTPError {
	code := hxres.StatusFor(err)
	cfg.Logger().Warn("render failed",
		zap.String("path", c.Request().URL.Path),
		zap.Int("status", code),
		zap.Error(err))
	return echo.NewHTTPError(code, http.StatusText(code)).SetInternal(err)
}
