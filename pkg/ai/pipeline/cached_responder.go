package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedResponder memoizes responses per case-folded input.
// Only safe in front of deterministic responders.
type CachedResponder struct {
	next  Responder
	cache *cache.Cache
}

func NewCachedResponder(next Responder, ttl time.Duration) *CachedResponder {
	return &CachedResponder{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *CachedResponder) Respond(ctx context.Context, input string) (string, error) {
	key := strings.ToLower(input)
	if x, found := r.cache.Get(key); found {
		return x.(string), nil
	}

	text, err := r.next.Respond(ctx, input)
	if err != nil {
		return "", err
	}
	r.cache.SetDefault(key, text)
	return text, nil
}

// Len reports how many responses are currently cached.
func (r *CachedResponder) Len() int {
	return r.cache.ItemCount()
}
