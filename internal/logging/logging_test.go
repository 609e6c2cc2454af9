package logging

import (
	"bytes"
	log "log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	p := filepath.Join(t.TempDir(), "logs", "jarvis.log")

	logger, closer, err := Setup(&console, "debug", p)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	logger.With("component", "test").Debug("memory saved", "path", "data/memory.json")
	if err := closer(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(console.String(), "memory saved") {
		t.Fatalf("console missing record: %q", console.String())
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), `"component":"test"`) {
		t.Fatalf("file record missing attrs: %s", b)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("warn") != log.LevelWarn {
		t.Fatalf("warn not parsed")
	}
	if ParseLevel("nonsense") != log.LevelInfo {
		t.Fatalf("unknown level must default to info")
	}
}

func TestFanoutRespectsLevels(t *testing.T) {
	var a, b bytes.Buffer
	h := Fanout(
		log.NewTextHandler(&a, &log.HandlerOptions{Level: log.LevelDebug}),
		log.NewTextHandler(&b, &log.HandlerOptions{Level: log.LevelError}),
	)
	log.New(h).Info("hello")
	if !strings.Contains(a.String(), "hello") {
		t.Fatalf("debug handler should receive info")
	}
	if b.Len() != 0 {
		t.Fatalf("error handler should not receive info: %q", b.String())
	}
}
