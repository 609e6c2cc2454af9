package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Espeak voices text with the espeak-ng command line tool.
type Espeak struct {
	bin       string
	rate      int
	amplitude int
	voice     string
}

// NewEspeak takes the words-per-minute rate and a 0..1 volume.
func NewEspeak(bin string, rate int, volume float64) *Espeak {
	if bin == "" {
		bin = "espeak-ng"
	}
	if rate <= 0 {
		rate = 150
	}
	if volume <= 0 || volume > 1 {
		volume = 0.8
	}
	return &Espeak{bin: bin, rate: rate, amplitude: int(volume * 200), voice: "en"}
}

// Available reports whether the binary is on PATH.
func (e *Espeak) Available() bool {
	_, err := exec.LookPath(e.bin)
	return err == nil
}

func (e *Espeak) args(text string) []string {
	return []string{
		"-v", e.voice,
		"-s", strconv.Itoa(e.rate),
		"-a", strconv.Itoa(e.amplitude),
		"--", text,
	}
}

func (e *Espeak) Synthesize(ctx context.Context, text string) error {
	out, err := exec.CommandContext(ctx, e.bin, e.args(text)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", e.bin, err, strings.TrimSpace(string(out)))
	}
	return nil
}
