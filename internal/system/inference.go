package system

import (
	"context"
	"fmt"
	"log/slog"

	"aicore/internal/agent"
	"aicore/internal/bt"
)

// Backend is an opaque inference function. The system makes no latency
// guarantee about Run; behavior trees must go through InferenceAction,
// which never blocks the update loop on a slow backend.
type Backend interface {
	Run(ctx context.Context, input []float64) ([]float64, error)
}

// BackendFunc adapts a plain function to Backend.
type BackendFunc func(ctx context.Context, input []float64) ([]float64, error)

func (f BackendFunc) Run(ctx context.Context, input []float64) ([]float64, error) {
	return f(ctx, input)
}

// LoadModel registers an inference backend under a name. Re-registering a
// name replaces the backend.
func (s *System) LoadModel(name string, backend Backend) error {
	if backend == nil {
		return fmt.Errorf("loading model %q: nil backend", name)
	}
	s.models[name] = backend
	slog.Info("inference model loaded", "model", name)
	return nil
}

// RunInference runs the named backend synchronously. Callers inside the
// update loop should use InferenceAction instead.
func (s *System) RunInference(ctx context.Context, name string, input []float64) ([]float64, error) {
	backend, ok := s.models[name]
	if !ok {
		return nil, fmt.Errorf("running inference: model %q not loaded", name)
	}
	out, err := backend.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("running inference on %q: %w", name, err)
	}
	return out, nil
}

type inferenceOutcome struct {
	output []float64
	err    error
}

// InferenceAction is a behavior leaf that delegates a decision to a named
// inference backend. The call runs on its own goroutine; the node reports
// Running until the result lands, then feeds it to the apply callback.
// A backend error or an unknown model resolves to Failure.
type InferenceAction struct {
	system *System
	model  string
	input  func(*agent.Agent) []float64
	apply  func(*agent.Agent, []float64) bt.Result

	pending chan inferenceOutcome
}

// NewInferenceAction wires an asynchronous inference call into a tree.
// input builds the feature vector from the agent; apply consumes the
// output and decides the node result.
func NewInferenceAction(s *System, model string, input func(*agent.Agent) []float64, apply func(*agent.Agent, []float64) bt.Result) *InferenceAction {
	return &InferenceAction{system: s, model: model, input: input, apply: apply}
}

func (n *InferenceAction) Name() string { return "Inference:" + n.model }

func (n *InferenceAction) Tick(subject any, dt float64) bt.Result {
	a, ok := subject.(*agent.Agent)
	if !ok || n.system == nil || n.input == nil || n.apply == nil {
		return bt.Failure
	}

	if n.pending == nil {
		ch := make(chan inferenceOutcome, 1)
		n.pending = ch
		features := n.input(a)
		go func() {
			out, err := n.system.RunInference(context.Background(), n.model, features)
			ch <- inferenceOutcome{output: out, err: err}
		}()
	}

	select {
	case outcome := <-n.pending:
		n.pending = nil
		if outcome.err != nil {
			slog.Warn("inference failed", "model", n.model, "agent", a.Name(), "err", outcome.err)
			return bt.Failure
		}
		return n.apply(a, outcome.output)
	default:
		return bt.Running
	}
}

// Reset abandons any in-flight call; a late result is delivered to the
// buffered channel and garbage collected with it.
func (n *InferenceAction) Reset() {
	n.pending = nil
}
