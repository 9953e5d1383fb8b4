package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"sales-copilot-be/internal/constant"
	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/pkg/logger"
	"sales-copilot-be/pkg/ai/pipeline"
	"sales-copilot-be/pkg/connectivity"
	"sales-copilot-be/pkg/events"
	"sales-copilot-be/pkg/voice"

	"github.com/google/uuid"
)

type IChatEngine interface {
	StartNewSession(ctx context.Context, title string) *entity.ChatSession
	SendMessage(ctx context.Context, text string)
	ProvideFeedback(ctx context.Context, messageId uuid.UUID, feedback entity.Feedback) error
	SetRating(ctx context.Context, messageId uuid.UUID, stars int) error
	LoadSession(session *entity.ChatSession)
	DeleteSession(ctx context.Context, session *entity.ChatSession) error
	PerformQuickAction(ctx context.Context, label string)
	ToggleVoiceCapture(ctx context.Context) error

	SetPendingInput(text string)
	SetLiveSpeech(enabled bool)
	Resume(ctx context.Context, defaultTitle string) *entity.ChatSession
	RefreshSessions(ctx context.Context) error

	Snapshot() StateSnapshot
	Subscribe(ctx context.Context) (<-chan StateSnapshot, error)
	// Wait blocks until no response run is in flight.
	Wait()
	Close()
}

// Generator starts a response run for one input.
type Generator interface {
	Run(ctx context.Context, input string) <-chan pipeline.Event
}

// chatEngine is the single writer of session state. Every mutation runs
// under mu, including its persistence, so callers observe it as durable
// (or logged as failed) once the call returns.
//
// Response runs are cancelled on supersede: a new message, a session switch
// or deleting the active session cancels the run in flight, which then
// delivers nothing.
type chatEngine struct {
	directory  ISessionDirectory
	generator  Generator
	recognizer voice.Recognizer
	speaker    voice.Speaker
	publisher  IPublisherService
	notifier   *events.Notifier
	logger     logger.ILogger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	active       *entity.ChatSession
	messages     []*entity.ChatMessage
	capturing    bool
	pendingInput string
	processing   bool
	progress     []string
	liveSpeech   bool
	sessions     []*entity.ChatSession
	quickActions []string
	version      uint64
	lastStamp    time.Time
	closed       bool

	runID     uint64
	cancelRun context.CancelFunc
	runs      sync.WaitGroup

	// written by the connectivity goroutine without taking mu
	offline atomic.Bool

	unsubscribe []func()
}

// NewChatEngine wires the engine to its collaborators. recognizer, monitor and
// notifier may be nil; speaker defaults to voice.NopSpeaker.
func NewChatEngine(
	directory ISessionDirectory,
	generator Generator,
	recognizer voice.Recognizer,
	speaker voice.Speaker,
	monitor connectivity.Monitor,
	publisher IPublisherService,
	notifier *events.Notifier,
	quickActions []string,
	log logger.ILogger,
) IChatEngine {
	if speaker == nil {
		speaker = voice.NopSpeaker{}
	}
	if len(quickActions) == 0 {
		quickActions = constant.DefaultQuickActions()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &chatEngine{
		directory:    directory,
		generator:    generator,
		recognizer:   recognizer,
		speaker:      speaker,
		publisher:    publisher,
		notifier:     notifier,
		logger:       log,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		messages:     make([]*entity.ChatMessage, 0),
		progress:     make([]string, 0),
		quickActions: append([]string(nil), quickActions...),
	}

	if recognizer != nil {
		e.unsubscribe = append(e.unsubscribe, recognizer.Subscribe(voice.Listener{
			OnTranscript: e.onTranscript,
			OnCommand:    e.onCommand,
		}))
	}
	if monitor != nil {
		e.unsubscribe = append(e.unsubscribe, monitor.Subscribe(e.onConnectivity))
	}

	return e
}

func (e *chatEngine) StartNewSession(ctx context.Context, title string) *entity.ChatSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	if title == "" {
		title = constant.DefaultSessionTitle + " " + e.now().Format(constant.SessionTitleTimeLayout)
	}

	session := e.startSessionLocked(ctx, title)
	e.refreshLocked(ctx)
	e.publishLocked()
	return session.Clone()
}

func (e *chatEngine) SendMessage(ctx context.Context, text string) {
	e.send(ctx, text, false)
}

// send appends a user message and starts a run. Voice commands only go
// through while capture is still on at the time the lock is taken.
func (e *chatEngine) send(ctx context.Context, text string, fromVoice bool) {
	if text == "" {
		return
	}

	e.mu.Lock()
	if e.closed || (fromVoice && !e.capturing) {
		e.mu.Unlock()
		return
	}

	wasCapturing := e.capturing
	if e.active == nil {
		e.startSessionLocked(ctx, constant.DefaultSessionTitle)
	}

	msg := e.appendLocked(text, entity.AuthorUser)
	e.pendingInput = ""
	e.startRunLocked(text)
	e.persistLocked(ctx)

	if wasCapturing {
		e.stopCaptureLocked()
	}
	e.publishLocked()
	e.mu.Unlock()

	e.notifier.MessageAppended(ctx, msg.ChatSessionId, msg.Id, string(msg.Author))
}

func (e *chatEngine) PerformQuickAction(ctx context.Context, label string) {
	e.SendMessage(ctx, label)
}

func (e *chatEngine) ProvideFeedback(ctx context.Context, messageId uuid.UUID, feedback entity.Feedback) error {
	if _, err := entity.ParseFeedback(string(feedback)); err != nil {
		return err
	}

	e.mu.Lock()
	msg := e.findLocked(messageId)
	if msg == nil {
		e.mu.Unlock()
		return ErrMessageNotFound
	}
	if msg.Feedback != nil && *msg.Feedback == feedback {
		e.mu.Unlock()
		return nil
	}

	msg.Feedback = &feedback
	e.persistLocked(ctx)
	e.publishLocked()
	e.mu.Unlock()

	e.notifier.FeedbackGiven(ctx, messageId, string(feedback))
	return nil
}

func (e *chatEngine) SetRating(ctx context.Context, messageId uuid.UUID, stars int) error {
	rating, err := entity.NewStarRating(stars)
	if err != nil {
		return err
	}

	e.mu.Lock()
	msg := e.findLocked(messageId)
	if msg == nil {
		e.mu.Unlock()
		return ErrMessageNotFound
	}
	if msg.Rating != nil && *msg.Rating == rating {
		e.mu.Unlock()
		return nil
	}

	msg.Rating = &rating
	e.persistLocked(ctx)
	e.publishLocked()
	e.mu.Unlock()

	e.notifier.RatingSet(ctx, messageId, stars)
	return nil
}

func (e *chatEngine) LoadSession(session *entity.ChatSession) {
	if session == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.loadLocked(session)
	e.publishLocked()
}

func (e *chatEngine) DeleteSession(ctx context.Context, session *entity.ChatSession) error {
	if session == nil {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.directory.Delete(ctx, session); err != nil {
		e.logger.Error("ChatEngine", "Failed to delete session", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return err
	}

	if e.active != nil && e.active.Id == session.Id {
		e.cancelRunLocked()
		e.active = nil
		e.messages = make([]*entity.ChatMessage, 0)
	}

	e.refreshLocked(ctx)
	e.publishLocked()
	return nil
}

func (e *chatEngine) ToggleVoiceCapture(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.capturing {
		e.stopCaptureLocked()
		e.publishLocked()
		return nil
	}

	if e.recognizer == nil {
		return voice.ErrAdapterUnavailable
	}
	if err := e.recognizer.Start(ctx); err != nil {
		e.logger.Warn("ChatEngine", "Voice capture unavailable", map[string]interface{}{"error": err.Error()})
		if errors.Is(err, voice.ErrAdapterUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", voice.ErrAdapterUnavailable, err)
	}

	e.capturing = true
	e.publishLocked()
	return nil
}

func (e *chatEngine) SetPendingInput(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pendingInput == text {
		return
	}
	e.pendingInput = text
	e.publishLocked()
}

func (e *chatEngine) SetLiveSpeech(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.liveSpeech == enabled {
		return
	}
	e.liveSpeech = enabled
	e.publishLocked()
}

// Resume loads the most recent session, creating one titled defaultTitle
// when none exist. If storage is unreachable a fresh in-memory session is used.
func (e *chatEngine) Resume(ctx context.Context, defaultTitle string) *entity.ChatSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.directory.MostRecentOrNew(ctx, defaultTitle)
	if err != nil {
		e.logger.Error("ChatEngine", "Failed to resume session", map[string]interface{}{"error": err.Error()})
	}

	if session == nil {
		session = e.startSessionLocked(ctx, defaultTitle)
	} else {
		e.loadLocked(session)
	}

	e.refreshLocked(ctx)
	e.publishLocked()
	return session.Clone()
}

func (e *chatEngine) RefreshSessions(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.refreshLocked(ctx)
	e.publishLocked()
	return err
}

func (e *chatEngine) Snapshot() StateSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe streams snapshots published after the call. Deliveries may race,
// so stale versions are dropped. The channel closes when ctx is done.
func (e *chatEngine) Subscribe(ctx context.Context) (<-chan StateSnapshot, error) {
	if e.publisher == nil {
		return nil, errors.New("state publishing is not configured")
	}

	messages, err := e.publisher.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan StateSnapshot, 16)
	go func() {
		defer close(out)

		var last uint64
		for msg := range messages {
			var snap StateSnapshot
			if err := json.Unmarshal(msg.Payload, &snap); err != nil {
				e.logger.Warn("ChatEngine", "Dropping malformed snapshot", map[string]interface{}{"error": err.Error()})
				msg.Ack()
				continue
			}
			msg.Ack()

			if snap.Version <= last {
				continue
			}
			last = snap.Version

			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (e *chatEngine) Wait() {
	e.runs.Wait()
}

func (e *chatEngine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.cancelRunLocked()
	if e.capturing {
		e.stopCaptureLocked()
	}
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	e.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	e.cancel()
	e.runs.Wait()
}

// startSessionLocked makes a new session active. Persistence failure is
// logged by the directory and the session stays in memory.
func (e *chatEngine) startSessionLocked(ctx context.Context, title string) *entity.ChatSession {
	e.cancelRunLocked()

	session, err := e.directory.Create(ctx, title)
	if err != nil {
		e.logger.Warn("ChatEngine", "Continuing with unsaved session", map[string]interface{}{"error": err.Error()})
	}
	if session == nil {
		now := e.now()
		session = &entity.ChatSession{Id: uuid.New(), Title: title, CreatedAt: now, UpdatedAt: now}
	}

	e.active = session.Clone()
	e.active.Messages = nil
	e.messages = make([]*entity.ChatMessage, 0)
	return session
}

func (e *chatEngine) loadLocked(session *entity.ChatSession) {
	e.cancelRunLocked()

	e.active = session.Clone()
	e.active.Messages = nil
	e.messages = entity.CloneMessages(session.Messages)
	if e.messages == nil {
		e.messages = make([]*entity.ChatMessage, 0)
	}
	for _, m := range e.messages {
		if m.CreatedAt.After(e.lastStamp) {
			e.lastStamp = m.CreatedAt
		}
	}
}

func (e *chatEngine) refreshLocked(ctx context.Context) error {
	sessions, err := e.directory.List(ctx)
	if err != nil {
		e.logger.Error("ChatEngine", "Failed to list sessions", map[string]interface{}{"error": err.Error()})
		return err
	}
	e.sessions = sessions
	return nil
}

// stampLocked returns a timestamp strictly after every earlier one so
// persistence order always matches append order.
func (e *chatEngine) stampLocked() time.Time {
	t := e.now()
	if !t.After(e.lastStamp) {
		t = e.lastStamp.Add(time.Nanosecond)
	}
	e.lastStamp = t
	return t
}

func (e *chatEngine) appendLocked(text string, author entity.Author) *entity.ChatMessage {
	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: e.active.Id,
		Text:          text,
		Author:        author,
		CreatedAt:     e.stampLocked(),
	}
	e.messages = append(e.messages, msg)
	e.active.UpdatedAt = msg.CreatedAt
	return msg
}

func (e *chatEngine) findLocked(id uuid.UUID) *entity.ChatMessage {
	for _, m := range e.messages {
		if m.Id == id {
			return m
		}
	}
	return nil
}

func (e *chatEngine) persistLocked(ctx context.Context) {
	if e.active == nil {
		return
	}

	session := e.active.Clone()
	session.Messages = entity.CloneMessages(e.messages)
	if err := e.directory.Save(ctx, session); err != nil {
		e.logger.Error("ChatEngine", "Failed to persist session", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
}

func (e *chatEngine) publishLocked() {
	e.version++
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(e.ctx, e.snapshotLocked()); err != nil {
		e.logger.Warn("ChatEngine", "Failed to publish state", map[string]interface{}{"error": err.Error()})
	}
}

func (e *chatEngine) stopCaptureLocked() {
	e.capturing = false
	if e.recognizer == nil {
		return
	}
	if err := e.recognizer.Stop(); err != nil {
		e.logger.Warn("ChatEngine", "Failed to stop voice capture", map[string]interface{}{"error": err.Error()})
	}
}

func (e *chatEngine) startRunLocked(input string) {
	if e.cancelRun != nil {
		e.cancelRun()
	}

	e.runID++
	id := e.runID
	ctx, cancel := context.WithCancel(e.ctx)
	e.cancelRun = cancel
	e.processing = true
	e.progress = make([]string, 0)

	e.runs.Add(1)
	go e.consumeRun(ctx, id, e.generator.Run(ctx, input))
}

func (e *chatEngine) cancelRunLocked() {
	if e.cancelRun == nil {
		return
	}
	e.cancelRun()
	e.cancelRun = nil
	e.runID++
	e.processing = false
	e.progress = make([]string, 0)
}

func (e *chatEngine) consumeRun(ctx context.Context, id uint64, runEvents <-chan pipeline.Event) {
	defer e.runs.Done()

	for ev := range runEvents {
		e.mu.Lock()
		if id != e.runID || ctx.Err() != nil {
			e.mu.Unlock()
			continue
		}

		switch ev.Kind {
		case pipeline.EventProgress:
			e.progress = append(e.progress, ev.Text)
			e.publishLocked()
			e.mu.Unlock()

		case pipeline.EventFinal:
			reply := e.finishRunLocked(ev)
			speak := reply != nil && e.liveSpeech
			e.mu.Unlock()

			if reply != nil {
				e.notifier.MessageAppended(e.ctx, reply.ChatSessionId, reply.Id, string(reply.Author))
				if speak {
					e.speaker.Speak(reply.Text)
				}
			}

		default:
			e.mu.Unlock()
		}
	}
}

// finishRunLocked clears the run and appends the reply. It returns nil when
// the responder failed.
func (e *chatEngine) finishRunLocked(ev pipeline.Event) *entity.ChatMessage {
	e.cancelRun()
	e.cancelRun = nil
	e.processing = false
	e.progress = make([]string, 0)

	if ev.Err != nil || ev.Text == "" || e.active == nil {
		if ev.Err != nil {
			e.logger.Error("ChatEngine", "Response run failed", map[string]interface{}{"error": ev.Err.Error()})
		}
		e.publishLocked()
		return nil
	}

	reply := e.appendLocked(ev.Text, entity.AuthorAssistant)
	e.persistLocked(e.ctx)
	e.publishLocked()
	return reply
}

func (e *chatEngine) onTranscript(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.capturing || e.pendingInput == text {
		return
	}
	e.pendingInput = text
	e.publishLocked()
}

func (e *chatEngine) onCommand(label string) {
	e.send(e.ctx, label, true)
}

func (e *chatEngine) onConnectivity(reachable bool) {
	if e.offline.Swap(!reachable) == !reachable {
		return
	}
	// never block the monitor on the engine lock
	go func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.publishLocked()
	}()
}
