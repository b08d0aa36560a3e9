package hxres

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/pthm/hxres/lib/primitive"
)

// Options are the per-call inputs of a runner.
type Options struct {
	// Mapper maps the object. Defaults to the policy's mapper for it.
	Mapper ResourceMapper
	// Format forces a format, bypassing negotiation.
	Format string
	// Env carries the request, notably the Accept header.
	Env Env
	// ItemMapper maps the members when the object is a slice.
	ItemMapper ResourceMapper
	Extra      map[string]any
}

// Runner carries one object through the steps map, format, primitivize and
// serialize, with the Config's hooks applied.
//
// A Runner serves a single call and is not safe for concurrent use.
type Runner struct {
	object  any
	config  *Config
	options Options
	context Context
	logger  *zap.Logger

	formatName string
	format     *Format
	renderer   Renderer
}

// NewRunner creates a runner. A forced format that is not registered fails
// with ErrUnknownFormat.
func NewRunner(obj any, cfg *Config, opts Options) (*Runner, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if opts.Format != "" {
		if _, ok := cfg.Formats().Lookup(opts.Format); !ok {
			return nil, errors.Wrapf(ErrUnknownFormat, "%q", opts.Format)
		}
	}
	env := opts.Env
	if env == nil {
		env = Env{}
	}
	r := &Runner{
		object:  obj,
		config:  cfg,
		options: opts,
		logger:  cfg.Logger(),
	}
	r.context = Context{
		Policy:     cfg.Policy(),
		Env:        env,
		ItemMapper: opts.ItemMapper,
		Extra:      opts.Extra,
	}
	return r, nil
}

// Object returns the value being rendered.
func (r *Runner) Object() any { return r.object }

// Context returns the mapping context, the same value on every call.
func (r *Runner) Context() Context { return r.context }

// FormatName returns the forced format, or the result of negotiating the
// Accept header against the registry.
func (r *Runner) FormatName() string {
	if r.formatName == "" {
		r.formatName = SelectFormat(
			r.context.Env.Accept(),
			r.config.Formats().MediaTypes(),
			r.options.Format,
			r.config.Policy().DefaultFormat(),
		)
		r.logger.Debug("format negotiated",
			zap.String("format", r.formatName),
			zap.String("accept", r.context.Env.Accept()))
	}
	return r.formatName
}

// Format returns the negotiated format.
func (r *Runner) Format() (Format, error) {
	if r.format == nil {
		name := r.FormatName()
		f, ok := r.config.Formats().Lookup(name)
		if !ok {
			return Format{}, errors.Wrapf(ErrUnknownFormat, "%q", name)
		}
		r.format = &f
	}
	return *r.format, nil
}

// MediaType returns the primary media type of the negotiated format.
func (r *Runner) MediaType() (string, error) {
	f, err := r.Format()
	if err != nil {
		return "", err
	}
	return f.MediaType(), nil
}

// Renderer returns the negotiated format's renderer, created once per
// runner with the Config's options for that format.
func (r *Runner) Renderer() (Renderer, error) {
	if r.renderer == nil {
		f, err := r.Format()
		if err != nil {
			return nil, err
		}
		r.renderer = f.New(r.config.OptionsFor(f.Name))
	}
	return r.renderer, nil
}

// Mapper returns the mapper for the object: the one given in Options, or
// the policy's. A nil object needs no mapper and gets one that always
// yields a NullResource.
func (r *Runner) Mapper() (ResourceMapper, error) {
	if r.options.Mapper != nil {
		return r.options.Mapper, nil
	}
	if isNil(r.object) {
		return nullMapper{}, nil
	}
	return r.context.policy().MapperFor(r.object)
}

// Primitivizer returns the reduction applied after formatting: the
// renderer's own, the primitive tree reduction for JSON formats, or the
// identity.
func (r *Runner) Primitivizer() (StepFunc, error) {
	rend, err := r.Renderer()
	if err != nil {
		return nil, err
	}
	if p, ok := rend.(Primitivizer); ok {
		return func(_ context.Context, in any) (any, error) { return p.Primitivize(in) }, nil
	}
	f, _ := r.Format()
	if f.Kind == KindJSON {
		return func(_ context.Context, in any) (any, error) { return primitive.Primitivize(in) }, nil
	}
	return func(_ context.Context, in any) (any, error) { return in, nil }, nil
}

// Serializer returns the Config's serializer for the format's kind, or the
// policy default.
func (r *Runner) Serializer() (Serializer, error) {
	f, err := r.Format()
	if err != nil {
		return nil, err
	}
	if s, ok := r.config.SerializerFor(f.Kind); ok {
		return s, nil
	}
	return r.context.policy().DefaultSerializer(f.Kind)
}

// Steps returns the step list with the Config's hooks applied.
func (r *Runner) Steps() []Step {
	return ApplyHooks(r.defaultSteps(), r.config.Hooks())
}

func (r *Runner) defaultSteps() []Step {
	return []Step{
		{Name: StepMap, Run: r.mapStep},
		{Name: StepFormat, Run: r.formatStep},
		{Name: StepPrimitivize, Run: r.primitivizeStep},
		{Name: StepSerialize, Run: r.serializeStep},
	}
}

// Run executes the steps in order, starting from the object, and returns
// the output of the last one.
func (r *Runner) Run(ctx context.Context) (any, error) {
	ctx = WithEnv(ctx, r.context.Env)
	var v any = r.object
	for _, step := range r.Steps() {
		r.logger.Debug("runner step", zap.String("step", step.Name))
		out, err := step.Run(ctx, v)
		if err != nil {
			return nil, errors.Wrapf(err, "step %s", step.Name)
		}
		v = out
	}
	return v, nil
}

// Render runs the steps and returns the result as bytes with the media type
// of the negotiated format.
func (r *Runner) Render(ctx context.Context) ([]byte, string, error) {
	out, err := r.Run(ctx)
	if err != nil {
		return nil, "", err
	}
	mt, err := r.MediaType()
	if err != nil {
		return nil, "", err
	}
	switch v := out.(type) {
	case []byte:
		return v, mt, nil
	case string:
		return []byte(v), mt, nil
	}
	return nil, "", errors.Newf("hxres: runner produced %T, not bytes", out)
}

// Map runs the mapping step alone.
func (r *Runner) Map() (Node, error) {
	out, err := r.mapStep(context.Background(), r.object)
	if err != nil {
		return nil, errors.Wrapf(err, "step %s", StepMap)
	}
	return out.(Node), nil
}

func (r *Runner) mapStep(_ context.Context, in any) (any, error) {
	m, err := r.Mapper()
	if err != nil {
		return nil, err
	}
	return m.Map(in, r.context)
}

func (r *Runner) formatStep(_ context.Context, in any) (any, error) {
	node, ok := in.(Node)
	if !ok {
		return nil, errors.Newf("hxres: format expects a Node, got %T", in)
	}
	rend, err := r.Renderer()
	if err != nil {
		return nil, err
	}
	return rend.Serialize(node)
}

func (r *Runner) primitivizeStep(ctx context.Context, in any) (any, error) {
	fn, err := r.Primitivizer()
	if err != nil {
		return nil, err
	}
	return fn(ctx, in)
}

func (r *Runner) serializeStep(ctx context.Context, in any) (any, error) {
	s, err := r.Serializer()
	if err != nil {
		return nil, err
	}
	return s.Serialize(ctx, in)
}

type nullMapper struct{}

func (nullMapper) Map(any, Context) (Node, error) { return NewNullResource(), nil }
func (nullMapper) Name(Policy) string             { return "" }
