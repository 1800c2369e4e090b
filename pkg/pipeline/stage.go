// Package pipeline holds the stage abstraction and the input and result
// types exchanged between extraction stages.
package pipeline

import (
	"context"
)

// Stage is one step of an extraction. Stateless steps (selection, seek,
// conversion, output) implement it; the packet pump and decoder are
// stateful and are driven directly by the orchestrator.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc adapts a function to Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute calls f.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
