package speech

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
)

// Engine prints every response and optionally voices it.
type Engine struct {
	out   io.Writer
	synth Synthesizer
	async bool
	log   *log.Logger
}

// NewEngine returns a speaker writing to out. A nil synth disables audio.
// With async set, synthesis runs detached and is never awaited.
func NewEngine(out io.Writer, synth Synthesizer, async bool, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{out: out, synth: synth, async: async, log: logger}
}

func (e *Engine) Speak(ctx context.Context, text string) error {
	fmt.Fprintf(e.out, "🤖 JARVIS: %s\n", text)
	if e.synth == nil || text == "" {
		return nil
	}

	if e.async {
		go func() {
			if err := e.synth.Synthesize(context.WithoutCancel(ctx), text); err != nil {
				e.log.Warn("speech synthesis failed", "err", err)
			}
		}()
		return nil
	}

	if err := e.synth.Synthesize(ctx, text); err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	return nil
}
