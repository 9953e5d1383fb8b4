package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"sales-copilot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoResponder struct {
	calls int
	err   error
}

func (r *echoResponder) Respond(ctx context.Context, input string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return "echo: " + input, nil
}

func fixedSteps(delay time.Duration, texts ...string) []Step {
	steps := make([]Step, 0, len(texts))
	for _, text := range texts {
		text := text
		steps = append(steps, Step{Delay: delay, Annotate: func(string) string { return text }})
	}
	return steps
}

func collect(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestRun_ProgressThenExactlyOneFinal(t *testing.T) {
	p := New(&echoResponder{}, fixedSteps(0, "one", "two", "three"), 0, logger.NewNopLogger())

	events := collect(p.Run(context.Background(), "hi"))

	require.Len(t, events, 4)
	for i, ev := range events[:3] {
		assert.Equal(t, EventProgress, ev.Kind)
		assert.Equal(t, i, ev.Step)
	}
	assert.Equal(t, []string{"one", "two", "three"}, []string{events[0].Text, events[1].Text, events[2].Text})
	assert.Equal(t, EventFinal, events[3].Kind)
	assert.Equal(t, "echo: hi", events[3].Text)
	assert.NoError(t, events[3].Err)
}

func TestRun_NoSteps(t *testing.T) {
	p := New(&echoResponder{}, nil, 0, logger.NewNopLogger())

	events := collect(p.Run(context.Background(), "x"))

	require.Len(t, events, 1)
	assert.Equal(t, EventFinal, events[0].Kind)
}

func TestRun_CancelBeforeFinal(t *testing.T) {
	responder := &echoResponder{}
	p := New(responder, fixedSteps(time.Hour, "slow"), 0, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	ch := p.Run(ctx, "x")
	cancel()

	events := collect(ch)
	assert.Empty(t, events)
	assert.Equal(t, 0, responder.calls)
}

func TestRun_ResponderError(t *testing.T) {
	boom := errors.New("model offline")
	p := New(&echoResponder{err: boom}, fixedSteps(0, "one"), 0, logger.NewNopLogger())

	events := collect(p.Run(context.Background(), "x"))

	require.Len(t, events, 2)
	assert.Equal(t, EventFinal, events[1].Kind)
	assert.ErrorIs(t, events[1].Err, boom)
	assert.Empty(t, events[1].Text)
}

func TestRun_RespectsSchedule(t *testing.T) {
	p := New(&echoResponder{}, fixedSteps(10*time.Millisecond, "a", "b"), 10*time.Millisecond, logger.NewNopLogger())

	start := time.Now()
	events := collect(p.Run(context.Background(), "x"))

	require.Len(t, events, 3)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestCachedResponder(t *testing.T) {
	next := &echoResponder{}
	r := NewCachedResponder(next, time.Minute)

	first, err := r.Respond(context.Background(), "Top Customers")
	require.NoError(t, err)
	second, err := r.Respond(context.Background(), "top customers")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, r.Len())
}

func TestCachedResponder_ErrorsAreNotCached(t *testing.T) {
	next := &echoResponder{err: errors.New("boom")}
	r := NewCachedResponder(next, time.Minute)

	_, err := r.Respond(context.Background(), "x")
	require.Error(t, err)
	_, err = r.Respond(context.Background(), "x")
	require.Error(t, err)

	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 0, r.Len())
}
