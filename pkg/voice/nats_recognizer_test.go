package voice

import (
	"context"
	"testing"

	"sales-copilot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNatsRecognizer_StartWithoutConnection(t *testing.T) {
	r := NewNatsRecognizer(nil, "voice.transcript", "voice.command", logger.NewNopLogger())

	err := r.Start(context.Background())

	assert.ErrorIs(t, err, ErrAdapterUnavailable)
	assert.False(t, r.Running())
}

func TestNatsRecognizer_StopWhenIdleIsNoop(t *testing.T) {
	r := NewNatsRecognizer(nil, "voice.transcript", "voice.command", logger.NewNopLogger())

	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop())
	assert.False(t, r.Running())
}

func TestNatsRecognizer_DispatchOnlyWhileRunning(t *testing.T) {
	r := NewNatsRecognizer(nil, "voice.transcript", "voice.command", logger.NewNopLogger())

	var transcripts, commands []string
	unsubscribe := r.Subscribe(Listener{
		OnTranscript: func(text string) { transcripts = append(transcripts, text) },
		OnCommand:    func(label string) { commands = append(commands, label) },
	})

	r.dispatchTranscript("ignored")
	r.dispatchCommand("Add Note")
	assert.Empty(t, transcripts)
	assert.Empty(t, commands)

	r.running.Store(true)
	r.dispatchTranscript("met with acme")
	r.dispatchCommand("Add Note")
	r.dispatchCommand("")
	assert.Equal(t, []string{"met with acme"}, transcripts)
	assert.Equal(t, []string{"Add Note"}, commands)

	unsubscribe()
	r.dispatchTranscript("after unsubscribe")
	assert.Len(t, transcripts, 1)
}

func TestNatsRecognizer_NoCallbackAfterStopFromListener(t *testing.T) {
	r := NewNatsRecognizer(nil, "voice.transcript", "voice.command", logger.NewNopLogger())
	r.running.Store(true)

	calls := 0
	r.Subscribe(Listener{OnCommand: func(string) {
		calls++
		require.NoError(t, r.Stop())
	}})
	r.Subscribe(Listener{OnCommand: func(string) { calls++ }})

	r.dispatchCommand("Top Customers")

	assert.Equal(t, 1, calls)
	assert.False(t, r.Running())
}

func TestNatsSpeaker_NilConnectionIsSilent(t *testing.T) {
	s := NewNatsSpeaker(nil, "voice.speak", logger.NewNopLogger())
	assert.NotPanics(t, func() { s.Speak("hello") })
	assert.NotPanics(t, func() { NopSpeaker{}.Speak("hello") })
}
