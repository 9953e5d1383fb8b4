// Package pipeline runs the staged response generation for one user input:
// zero or more progress events followed by exactly one final event.
package pipeline

import (
	"context"
	"time"

	"sales-copilot-be/internal/pkg/logger"
)

type EventKind string

const (
	EventProgress EventKind = "progress"
	EventFinal    EventKind = "final"
)

// Event is a single item of a run. Err is only set on EventFinal when the
// responder failed; Text is empty in that case.
type Event struct {
	Kind EventKind
	Step int
	Text string
	Err  error
}

// Responder produces the terminal response text. This is the boundary where
// a model-backed implementation plugs in.
type Responder interface {
	Respond(ctx context.Context, input string) (string, error)
}

// Step waits Delay after the previous step and then emits Annotate(input).
type Step struct {
	Delay    time.Duration
	Annotate func(input string) string
}

type Pipeline struct {
	responder  Responder
	steps      []Step
	finalDelay time.Duration
	logger     logger.ILogger
}

func New(responder Responder, steps []Step, finalDelay time.Duration, log logger.ILogger) *Pipeline {
	return &Pipeline{
		responder:  responder,
		steps:      steps,
		finalDelay: finalDelay,
		logger:     log,
	}
}

// Run starts a run for input. The returned channel yields the progress events
// in order, then the final event, then closes. Cancelling ctx ends the run
// early and closes the channel without a final event. A run cannot be restarted.
func (p *Pipeline) Run(ctx context.Context, input string) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		for i, step := range p.steps {
			if !wait(ctx, step.Delay) {
				return
			}
			if !emit(ctx, out, Event{Kind: EventProgress, Step: i, Text: step.Annotate(input)}) {
				return
			}
		}

		if !wait(ctx, p.finalDelay) {
			return
		}

		text, err := p.responder.Respond(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("Pipeline", "Responder failed", map[string]interface{}{"error": err.Error()})
			emit(ctx, out, Event{Kind: EventFinal, Step: len(p.steps), Err: err})
			return
		}

		emit(ctx, out, Event{Kind: EventFinal, Step: len(p.steps), Text: text})
	}()

	return out
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- ev:
		return true
	}
}
