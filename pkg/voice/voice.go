// Package voice holds the adapters around the speech engines. Recognition
// results and text to vocalize travel over NATS subjects so the engines can
// live in separate processes.
package voice

import (
	"context"
	"errors"
)

// ErrAdapterUnavailable is returned when the speech engine is missing or not permitted.
var ErrAdapterUnavailable = errors.New("voice adapter unavailable")

// Listener receives recognizer output. Either callback may be nil.
type Listener struct {
	OnTranscript func(text string)
	OnCommand    func(label string)
}

// Recognizer wraps a speech-to-text engine. Start and Stop are idempotent and
// no callback starts after Stop returns.
type Recognizer interface {
	Start(ctx context.Context) error
	Stop() error
	Running() bool
	Subscribe(l Listener) (unsubscribe func())
}

// Speaker vocalizes text. Fire and forget: failures never reach the caller.
type Speaker interface {
	Speak(text string)
}

type NopSpeaker struct{}

func (NopSpeaker) Speak(string) {}
