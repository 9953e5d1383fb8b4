package memory

import (
	"context"
	"fmt"
	"sort"

	"sales-copilot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type chatMessageRepository struct {
	cache *cache.Cache
	tx    *unitOfWork
}

func (r *chatMessageRepository) SaveAll(ctx context.Context, messages []*entity.ChatMessage) error {
	for _, m := range messages {
		if m.ChatSessionId == uuid.Nil {
			return fmt.Errorf("message %s has no session", m.Id)
		}
		if x, found := r.cache.Get(m.Id.String()); found {
			if owner := x.(*entity.ChatMessage).ChatSessionId; owner != m.ChatSessionId {
				return fmt.Errorf("message %s already belongs to session %s", m.Id, owner)
			}
		}
	}
	for _, m := range messages {
		r.tx.record(r.cache, m.Id.String())
		r.cache.Set(m.Id.String(), m.Clone(), cache.NoExpiration)
	}
	return nil
}

func (r *chatMessageRepository) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	for k, it := range r.cache.Items() {
		if it.Object.(*entity.ChatMessage).ChatSessionId == sessionId {
			r.tx.record(r.cache, k)
			r.cache.Delete(k)
		}
	}
	return nil
}

func (r *chatMessageRepository) FindAllByChatSessionIds(ctx context.Context, sessionIds []uuid.UUID) ([]*entity.ChatMessage, error) {
	wanted := make(map[uuid.UUID]struct{}, len(sessionIds))
	for _, id := range sessionIds {
		wanted[id] = struct{}{}
	}

	out := make([]*entity.ChatMessage, 0)
	for _, it := range r.cache.Items() {
		m := it.Object.(*entity.ChatMessage)
		if _, ok := wanted[m.ChatSessionId]; ok {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
