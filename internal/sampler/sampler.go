//go:generate mockgen -source=sampler.go -destination=mocks/mock_sampler.go -package=mocks

// Package sampler defines the boundary to the external factoring routine.
// A Sampler performs one simulated run for a problem size and returns the
// integer it produced. The runner treats it as a black box.
package sampler

import (
	"context"
	"errors"
)

var (
	// ErrInvalidOutput is returned when a run produced something that is not
	// a base-10 integer.
	ErrInvalidOutput = errors.New("sampler output is not an integer")
	// ErrReplayExhausted is returned when a replay source has no outputs left.
	ErrReplayExhausted = errors.New("replay outputs exhausted")
)

// Sampler runs the external routine once.
type Sampler interface {
	// Name identifies the backend in logs and reports.
	Name() string
	// Sample performs one run for problem size n. Results may differ across
	// calls.
	Sample(ctx context.Context, n uint64) (int64, error)
}

// Func adapts a plain function to the Sampler interface.
type Func func(ctx context.Context, n uint64) (int64, error)

// Name returns "func".
func (f Func) Name() string { return "func" }

// Sample calls f.
func (f Func) Sample(ctx context.Context, n uint64) (int64, error) { return f(ctx, n) }

// Sequence returns a Sampler that yields outputs in order and then fails
// with ErrReplayExhausted. It is the in-memory form of the replay backend.
func Sequence(outputs ...int64) Sampler {
	return &Replay{source: "memory", outputs: append([]int64(nil), outputs...)}
}

// Rewinder is implemented by samplers that can restart their output stream,
// such as Replay. The dashboard uses it when a batch is restarted.
type Rewinder interface {
	Rewind()
}
