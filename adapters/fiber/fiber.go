// Package hxresfiber provides Fiber framework integration for hxres.
//
//	app := fiber.New()
//	app.Use(hxresfiber.RequestID(cfg.Logger()))
//	app.Get("/posts/:id", hxresfiber.Handler(cfg, loadPost, hxres.Options{}))
package hxresfiber

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pthm/hxres"
)

// HeaderRequestID carries the request id set by RequestID.
const HeaderRequestID = "X-Request-Id"

// LoadFunc loads the object a request asks for. Return an error wrapping
// hxres.ErrNotFound for missing objects.
type LoadFunc func(c *fiber.Ctx) (any, error)

// Env builds an hxres.Env from the request headers.
func Env(c *fiber.Ctx) hxres.Env {
	return hxres.EnvFromHeader(http.Header(c.GetReqHeaders()))
}

// Render writes obj to the response in the format negotiated from the
// request's Accept header.
func Render(c *fiber.Ctx, cfg *hxres.Config, obj any, opts hxres.Options) error {
	if opts.Env == nil {
		opts.Env = Env(c)
	}
	body, mediaType, err := cfg.Render(c.UserContext(), obj, opts)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, hxres.ContentType(mediaType))
	c.Vary(fiber.HeaderAccept)
	return c.Send(body)
}

// Handler serves the objects returned by load. Failures become
// *fiber.Error with the status from hxres.StatusFor.
func Handler(cfg *hxres.Config, load LoadFunc, opts hxres.Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		obj, err := load(c)
		if err == nil {
			err = Render(c, cfg, obj, opts)
		}
		if err != nil {
			code := hxres.StatusFor(err)
			cfg.Logger().Warn("render failed",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.String("request_id", RequestIDFrom(c)),
				zap.Error(err))
			return fiber.NewError(code, http.StatusText(code))
		}
		return nil
	}
}

type requestIDKey struct{}

// RequestID assigns every request an id, taken from the X-Request-Id header
// or generated, echoes it in the response and logs the outcome.
func RequestID(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey{}, id)
		c.Set(HeaderRequestID, id)

		err := c.Next()
		logger.Debug("request",
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()))
		return err
	}
}

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey{}).(string)
	return id
}
