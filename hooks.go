package hxres

import (
	"context"
)

// Canonical runner steps, in execution order.
const (
	StepMap         = "map"
	StepFormat      = "format"
	StepPrimitivize = "primitivize"
	StepSerialize   = "serialize"
)

// StepFunc transforms the value threaded through the runner.
type StepFunc func(ctx context.Context, in any) (any, error)

// AroundFunc wraps a step. It receives the original step and decides
// whether and how to call it.
type AroundFunc func(ctx context.Context, next StepFunc, in any) (any, error)

// Step is a named stage of a runner.
type Step struct {
	Name string
	Run  StepFunc
}

// HookKind says how a hook changes the step list.
type HookKind int

const (
	HookBefore HookKind = iota
	HookAfter
	HookAround
	HookSkip
)

// Hook is one edit of the runner's step list, targeting a step by name.
type Hook struct {
	Kind   HookKind
	Target string
	// Name of the inserted step for HookBefore and HookAfter. Defaults to
	// before_<target> and after_<target>.
	Name   string
	Step   StepFunc
	Around AroundFunc
}

func (h Hook) stepName() string {
	if h.Name != "" {
		return h.Name
	}
	switch h.Kind {
	case HookBefore:
		return "before_" + h.Target
	case HookAfter:
		return "after_" + h.Target
	}
	return h.Target
}

// ApplyHooks returns the step list produced by applying hooks in order.
// The input is not modified. A hook whose target is not in the list has no
// effect. An around hook keeps the target's name.
func ApplyHooks(steps []Step, hooks []Hook) []Step {
	out := cloneSlice(steps)
	for _, h := range hooks {
		i := indexStep(out, h.Target)
		if i < 0 {
			continue
		}
		switch h.Kind {
		case HookBefore:
			out = insertStep(out, i, Step{Name: h.stepName(), Run: h.Step})
		case HookAfter:
			out = insertStep(out, i+1, Step{Name: h.stepName(), Run: h.Step})
		case HookAround:
			orig, around := out[i].Run, h.Around
			out[i] = Step{Name: out[i].Name, Run: func(ctx context.Context, in any) (any, error) {
				return around(ctx, orig, in)
			}}
		case HookSkip:
			out = append(out[:i:i], out[i+1:]...)
		}
	}
	return out
}

// StepNames returns the names of steps in order.
func StepNames(steps []Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

func indexStep(steps []Step, name string) int {
	for i, s := range steps {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func insertStep(steps []Step, i int, s Step) []Step {
	out := make([]Step, 0, len(steps)+1)
	out = append(out, steps[:i]...)
	out = append(out, s)
	return append(out, steps[i:]...)
}
