package hxres

import (
	"context"

	"go.uber.org/zap"
)

// Config holds everything a runner needs besides the object: the policy,
// the format registry, per-format options, serializer overrides and hooks.
//
// A Config is set up once at start-up. The hook and option methods are not
// safe to call while runners built from the Config are executing.
//
//	cfg := hxres.NewConfig(hxres.WithPolicy(policy)).
//	    FormatOptions("hal", hxres.FormatOptions{"plural_links": []string{"item"}}).
//	    After(hxres.StepFormat, addVersion)
type Config struct {
	policy        Policy
	formats       *FormatRegistry
	logger        *zap.Logger
	hooks         []Hook
	formatOptions map[string]FormatOptions
	serializers   map[SerializerKind]Serializer
}

// Option configures a Config.
type Option func(*Config)

// WithPolicy sets the policy. Defaults to a DefaultPolicy without mappers.
func WithPolicy(p Policy) Option {
	return func(c *Config) { c.policy = p }
}

// WithFormats sets the format registry. Defaults to DefaultFormats.
func WithFormats(r *FormatRegistry) Option {
	return func(c *Config) { c.formats = r }
}

// WithLogger sets the logger. Defaults to the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.logger = l }
}

// WithSerializer overrides the serializer for a kind.
func WithSerializer(kind SerializerKind, s Serializer) Option {
	return func(c *Config) { c.serializers[kind] = s }
}

// WithHooks adds hooks.
func WithHooks(hooks ...Hook) Option {
	return func(c *Config) { c.hooks = append(c.hooks, hooks...) }
}

// NewConfig creates a Config.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		policy:        defaultPolicy,
		formats:       DefaultFormats,
		formatOptions: make(map[string]FormatOptions),
		serializers:   make(map[SerializerKind]Serializer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the configured policy, or the default one when none is set.
func (c *Config) Policy() Policy {
	if c.policy != nil {
		return c.policy
	}
	return defaultPolicy
}

// Formats returns the configured registry, or DefaultFormats.
func (c *Config) Formats() *FormatRegistry {
	if c.formats != nil {
		return c.formats
	}
	return DefaultFormats
}

// Logger returns the configured logger, or the package logger.
func (c *Config) Logger() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

// Before inserts fn ahead of step under the name before_<step>.
func (c *Config) Before(step string, fn StepFunc) *Config {
	return c.AddHook(Hook{Kind: HookBefore, Target: step, Step: fn})
}

// After inserts fn behind step under the name after_<step>.
func (c *Config) After(step string, fn StepFunc) *Config {
	return c.AddHook(Hook{Kind: HookAfter, Target: step, Step: fn})
}

// Around replaces step with fn, which receives the original step.
func (c *Config) Around(step string, fn AroundFunc) *Config {
	return c.AddHook(Hook{Kind: HookAround, Target: step, Around: fn})
}

// Skip removes step.
func (c *Config) Skip(step string) *Config {
	return c.AddHook(Hook{Kind: HookSkip, Target: step})
}

// AddHook appends a hook. Hooks are applied in the order they were added.
func (c *Config) AddHook(h Hook) *Config {
	c.hooks = append(c.hooks, h)
	return c
}

// Hooks returns the registered hooks.
func (c *Config) Hooks() []Hook {
	return cloneSlice(c.hooks)
}

// FormatOptions sets the options passed to the named format's renderer.
func (c *Config) FormatOptions(name string, opts FormatOptions) *Config {
	c.formatOptions[name] = opts
	return c
}

// OptionsFor returns the options for the named format.
func (c *Config) OptionsFor(name string) FormatOptions {
	return c.formatOptions[name]
}

// SerializerFor returns the serializer override for a kind.
func (c *Config) SerializerFor(kind SerializerKind) (Serializer, bool) {
	s, ok := c.serializers[kind]
	return s, ok
}

// Runner creates a runner for obj.
func (c *Config) Runner(obj any, opts Options) (*Runner, error) {
	return NewRunner(obj, c, opts)
}

// Call runs the full step list for obj and returns the final value, the
// serialized bytes unless hooks changed the list.
func (c *Config) Call(ctx context.Context, obj any, opts Options) (any, error) {
	r, err := NewRunner(obj, c, opts)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx)
}

// Map runs only the mapping step and returns the resource graph.
func (c *Config) Map(obj any, opts Options) (Node, error) {
	r, err := NewRunner(obj, c, opts)
	if err != nil {
		return nil, err
	}
	return r.Map()
}

// Render runs the full step list and returns the serialized bytes together
// with the media type of the negotiated format.
func (c *Config) Render(ctx context.Context, obj any, opts Options) ([]byte, string, error) {
	r, err := NewRunner(obj, c, opts)
	if err != nil {
		return nil, "", err
	}
	return r.Render(ctx)
}
