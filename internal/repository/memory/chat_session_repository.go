package memory

import (
	"context"
	"fmt"
	"sort"

	"sales-copilot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type chatSessionRepository struct {
	cache *cache.Cache
	tx    *unitOfWork
}

// stored rows never carry messages, mirroring the sql layout
func sessionRow(s *entity.ChatSession) *entity.ChatSession {
	c := *s
	c.Messages = nil
	return &c
}

func (r *chatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	r.tx.record(r.cache, session.Id.String())
	if err := r.cache.Add(session.Id.String(), sessionRow(session), cache.NoExpiration); err != nil {
		return fmt.Errorf("session %s already exists", session.Id)
	}
	return nil
}

func (r *chatSessionRepository) Save(ctx context.Context, session *entity.ChatSession) error {
	r.tx.record(r.cache, session.Id.String())
	r.cache.Set(session.Id.String(), sessionRow(session), cache.NoExpiration)
	return nil
}

func (r *chatSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.tx.record(r.cache, id.String())
	r.cache.Delete(id.String())
	return nil
}

func (r *chatSessionRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	if x, found := r.cache.Get(id.String()); found {
		return sessionRow(x.(*entity.ChatSession)), nil
	}
	return nil, nil
}

func (r *chatSessionRepository) FindAllOrderByUpdatedDesc(ctx context.Context) ([]*entity.ChatSession, error) {
	items := r.cache.Items()
	out := make([]*entity.ChatSession, 0, len(items))
	for _, it := range items {
		out = append(out, sessionRow(it.Object.(*entity.ChatSession)))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
