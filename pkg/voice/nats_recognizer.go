package voice

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"sales-copilot-be/internal/pkg/logger"

	"github.com/nats-io/nats.go"
)

// NatsRecognizer listens for transcripts and commands published by the
// speech engine while capture is running.
type NatsRecognizer struct {
	nc                *nats.Conn
	transcriptSubject string
	commandSubject    string
	logger            logger.ILogger

	mu        sync.Mutex
	subs      []*nats.Subscription
	listeners map[int]Listener
	nextID    int

	// checked right before each dispatch; no lock is held while callbacks run
	// because a command commonly ends in Stop on the same goroutine.
	running atomic.Bool
}

func NewNatsRecognizer(nc *nats.Conn, transcriptSubject, commandSubject string, log logger.ILogger) *NatsRecognizer {
	return &NatsRecognizer{
		nc:                nc,
		transcriptSubject: transcriptSubject,
		commandSubject:    commandSubject,
		logger:            log,
		listeners:         make(map[int]Listener),
	}
}

func (r *NatsRecognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running.Load() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.nc == nil || r.nc.IsClosed() {
		return ErrAdapterUnavailable
	}

	transcripts, err := r.nc.Subscribe(r.transcriptSubject, func(m *nats.Msg) {
		r.dispatchTranscript(string(m.Data))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
	}
	commands, err := r.nc.Subscribe(r.commandSubject, func(m *nats.Msg) {
		r.dispatchCommand(string(m.Data))
	})
	if err != nil {
		_ = transcripts.Unsubscribe()
		return fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
	}

	r.subs = []*nats.Subscription{transcripts, commands}
	r.running.Store(true)
	r.logger.Info("Voice", "Recognizer started", map[string]interface{}{
		"transcript_subject": r.transcriptSubject,
		"command_subject":    r.commandSubject,
	})
	return nil
}

func (r *NatsRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running.Load() {
		return nil
	}
	r.running.Store(false)

	var firstErr error
	for _, sub := range r.subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.subs = nil
	r.logger.Info("Voice", "Recognizer stopped", nil)
	return firstErr
}

func (r *NatsRecognizer) Running() bool {
	return r.running.Load()
}

func (r *NatsRecognizer) Subscribe(l Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *NatsRecognizer) snapshotListeners() []Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		out = append(out, l)
	}
	return out
}

func (r *NatsRecognizer) dispatchTranscript(text string) {
	for _, l := range r.snapshotListeners() {
		if !r.running.Load() {
			return
		}
		if l.OnTranscript != nil {
			l.OnTranscript(text)
		}
	}
}

func (r *NatsRecognizer) dispatchCommand(label string) {
	if label == "" {
		return
	}
	for _, l := range r.snapshotListeners() {
		if !r.running.Load() {
			return
		}
		if l.OnCommand != nil {
			l.OnCommand(label)
		}
	}
}
