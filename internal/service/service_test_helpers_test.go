package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/pkg/logger"
	"sales-copilot-be/internal/repository/memory"
	"sales-copilot-be/pkg/ai/pipeline"
	"sales-copilot-be/pkg/ai/router"
	"sales-copilot-be/pkg/voice"

	"github.com/google/uuid"
)

var errStorageDown = errors.New("disk unavailable")

func newMemoryDirectory() (ISessionDirectory, IPersistenceGateway) {
	gateway := NewPersistenceGateway(memory.NewRepositoryFactory(memory.NewStore()))
	return NewSessionDirectory(gateway, nil, logger.NewNopLogger()), gateway
}

func instantPipeline() *pipeline.Pipeline {
	return pipeline.New(router.NewRuleResponder(), router.DefaultSteps(0), 0, logger.NewNopLogger())
}

func newEngine(t *testing.T, directory ISessionDirectory, gen Generator, rec voice.Recognizer, speaker voice.Speaker) *chatEngine {
	t.Helper()
	e := NewChatEngine(directory, gen, rec, speaker, nil, nil, nil, nil, logger.NewNopLogger()).(*chatEngine)
	t.Cleanup(e.Close)
	return e
}

// failingGateway fails every operation.
type failingGateway struct{}

func (failingGateway) Insert(context.Context, *entity.ChatSession) error {
	return &StorageError{Op: "insert", Err: errStorageDown}
}

func (failingGateway) Save(context.Context, *entity.ChatSession) error {
	return &StorageError{Op: "save", Err: errStorageDown}
}

func (failingGateway) Delete(context.Context, uuid.UUID) error {
	return &StorageError{Op: "delete", Err: errStorageDown}
}

func (failingGateway) FetchSessions(context.Context) ([]*entity.ChatSession, error) {
	return nil, &StorageError{Op: "fetch", Err: errStorageDown}
}

func (failingGateway) FetchSession(context.Context, uuid.UUID) (*entity.ChatSession, error) {
	return nil, &StorageError{Op: "fetch", Err: errStorageDown}
}

// scriptedGenerator hands each run to the test, which decides what it emits.
type scriptedGenerator struct {
	mu   sync.Mutex
	runs []*scriptedRun
}

type scriptedRun struct {
	input  string
	ctx    context.Context
	events chan pipeline.Event
	once   sync.Once
}

func (g *scriptedGenerator) Run(ctx context.Context, input string) <-chan pipeline.Event {
	r := &scriptedRun{input: input, ctx: ctx, events: make(chan pipeline.Event, 8)}
	go func() {
		<-ctx.Done()
		r.close()
	}()

	g.mu.Lock()
	g.runs = append(g.runs, r)
	g.mu.Unlock()
	return r.events
}

func (g *scriptedGenerator) run(i int) *scriptedRun {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.runs[i]
}

func (g *scriptedGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.runs)
}

func (r *scriptedRun) progress(text string) {
	r.events <- pipeline.Event{Kind: pipeline.EventProgress, Text: text}
}

func (r *scriptedRun) finish(text string) {
	r.once.Do(func() {
		r.events <- pipeline.Event{Kind: pipeline.EventFinal, Text: text}
		close(r.events)
	})
}

func (r *scriptedRun) close() {
	r.once.Do(func() { close(r.events) })
}

// fakeRecognizer mimics an engine whose Start/Stop are idempotent.
type fakeRecognizer struct {
	mu        sync.Mutex
	running   bool
	starts    int
	stops     int
	startErr  error
	listeners []voice.Listener
}

func (r *fakeRecognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return r.startErr
	}
	if !r.running {
		r.running = true
		r.starts++
	}
	return nil
}

func (r *fakeRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.running = false
		r.stops++
	}
	return nil
}

func (r *fakeRecognizer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *fakeRecognizer) Subscribe(l voice.Listener) func() {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
	return func() {}
}

func (r *fakeRecognizer) transcript(text string) {
	r.mu.Lock()
	listeners := append([]voice.Listener(nil), r.listeners...)
	running := r.running
	r.mu.Unlock()
	if !running {
		return
	}
	for _, l := range listeners {
		l.OnTranscript(text)
	}
}

func (r *fakeRecognizer) command(label string) {
	r.mu.Lock()
	listeners := append([]voice.Listener(nil), r.listeners...)
	running := r.running
	r.mu.Unlock()
	if !running {
		return
	}
	for _, l := range listeners {
		l.OnCommand(label)
	}
}

type recordingSpeaker struct {
	mu    sync.Mutex
	spoke []string
}

func (s *recordingSpeaker) Speak(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoke = append(s.spoke, text)
}

func (s *recordingSpeaker) said() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoke...)
}
