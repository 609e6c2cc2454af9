// Package speech is the text input/output boundary of the assistant: a
// blocking listen call and a speak call with optional voice synthesis.
package speech

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Listen once the input channel has ended.
var ErrClosed = errors.New("speech: input closed")

// Listener blocks for one utterance. It returns "" when nothing was heard
// within timeout.
type Listener interface {
	Listen(ctx context.Context, timeout time.Duration) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Synthesizer turns text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) error
}
