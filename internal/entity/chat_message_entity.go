package entity

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidFeedback = errors.New("feedback must be positive or negative")
	ErrInvalidAuthor   = errors.New("author must be user or assistant")
)

type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

func ParseAuthor(s string) (Author, error) {
	switch Author(s) {
	case AuthorUser, AuthorAssistant:
		return Author(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAuthor, s)
}

type Feedback string

const (
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

func ParseFeedback(s string) (Feedback, error) {
	switch Feedback(s) {
	case FeedbackPositive, FeedbackNegative:
		return Feedback(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFeedback, s)
}

// StarRating is a 1-5 score. Construct with NewStarRating.
type StarRating int

const (
	MinStarRating StarRating = 1
	MaxStarRating StarRating = 5
)

func NewStarRating(stars int) (StarRating, error) {
	if stars < int(MinStarRating) || stars > int(MaxStarRating) {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRating, stars)
	}
	return StarRating(stars), nil
}

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Text          string
	Author        Author
	CreatedAt     time.Time

	// Optional annotations, nil when absent.
	Feedback *Feedback
	Rating   *StarRating
}

func (m *ChatMessage) IsUser() bool {
	return m.Author == AuthorUser
}

func (m *ChatMessage) Clone() *ChatMessage {
	if m == nil {
		return nil
	}
	c := *m
	if m.Feedback != nil {
		f := *m.Feedback
		c.Feedback = &f
	}
	if m.Rating != nil {
		r := *m.Rating
		c.Rating = &r
	}
	return &c
}

func CloneMessages(msgs []*ChatMessage) []*ChatMessage {
	if msgs == nil {
		return nil
	}
	out := make([]*ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

// SortedByTimestamp returns a copy of msgs ordered by CreatedAt. Ties keep their relative order.
func SortedByTimestamp(msgs []*ChatMessage) []*ChatMessage {
	out := make([]*ChatMessage, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
