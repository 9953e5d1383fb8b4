package service

import (
	"context"
	"sync"
	"time"

	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/pkg/logger"
	"sales-copilot-be/pkg/events"

	"github.com/google/uuid"
)

type ISessionDirectory interface {
	// List returns every session, most recently updated first, with messages sorted by timestamp.
	List(ctx context.Context) ([]*entity.ChatSession, error)
	// Create always returns the new session; err reports whether it was persisted.
	Create(ctx context.Context, title string) (*entity.ChatSession, error)
	Find(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error)
	Save(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, session *entity.ChatSession) error
	// MostRecentOrNew is the startup resumption policy.
	MostRecentOrNew(ctx context.Context, defaultTitle string) (*entity.ChatSession, error)
}

type sessionDirectory struct {
	gateway  IPersistenceGateway
	notifier *events.Notifier
	logger   logger.ILogger
	now      func() time.Time

	// serializes MostRecentOrNew so two callers never both create
	resumeMu sync.Mutex
}

func NewSessionDirectory(gateway IPersistenceGateway, notifier *events.Notifier, log logger.ILogger) ISessionDirectory {
	return &sessionDirectory{
		gateway:  gateway,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
}

func (d *sessionDirectory) List(ctx context.Context) ([]*entity.ChatSession, error) {
	return d.gateway.FetchSessions(ctx)
}

func (d *sessionDirectory) Create(ctx context.Context, title string) (*entity.ChatSession, error) {
	now := d.now()
	session := &entity.ChatSession{
		Id:        uuid.New(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*entity.ChatMessage, 0),
	}

	if err := d.gateway.Insert(ctx, session); err != nil {
		d.logger.Error("SessionDirectory", "Failed to persist new session", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return session, err
	}

	d.notifier.SessionCreated(ctx, session.Id, session.Title)
	return session, nil
}

func (d *sessionDirectory) Find(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	return d.gateway.FetchSession(ctx, id)
}

func (d *sessionDirectory) Save(ctx context.Context, session *entity.ChatSession) error {
	return d.gateway.Save(ctx, session)
}

func (d *sessionDirectory) Delete(ctx context.Context, session *entity.ChatSession) error {
	if err := d.gateway.Delete(ctx, session.Id); err != nil {
		return err
	}
	d.notifier.SessionDeleted(ctx, session.Id)
	return nil
}

func (d *sessionDirectory) MostRecentOrNew(ctx context.Context, defaultTitle string) (*entity.ChatSession, error) {
	d.resumeMu.Lock()
	defer d.resumeMu.Unlock()

	sessions, err := d.gateway.FetchSessions(ctx)
	if err != nil {
		return nil, err
	}
	if len(sessions) > 0 {
		return sessions[0], nil
	}

	d.logger.Info("SessionDirectory", "No sessions found, creating one", map[string]interface{}{"title": defaultTitle})
	return d.Create(ctx, defaultTitle)
}
