package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logs", "journal.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	ev1 := Event{Timestamp: time.Unix(1, 0).UTC(), Channel: "console", Utterance: "hi", Response: "hello", Intent: "friend"}
	ev2 := Event{Timestamp: time.Unix(2, 0).UTC(), Channel: "telegram", UserID: 2, Utterance: "fix my code", Response: "❌ Request timeout. Please try again.", Intent: "programming", Failed: true}
	if err := rec.AppendInteraction(ev1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.AppendInteraction(ev2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	events, err := rec.LoadInteractions()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]Event{ev1, ev2}, events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}

	// ensure file exists and non-empty
	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}

func TestFileRecorder_SkipsBadLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "journal.jsonl")
	if err := os.WriteFile(p, []byte("not json\n\n{\"utterance\":\"ok\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	events, err := rec.LoadInteractions()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 1 || events[0].Utterance != "ok" {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestFileRecorder_MissingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "journal.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}
	events, err := rec.LoadInteractions()
	if err != nil || len(events) != 0 {
		t.Fatalf("expected empty journal, got %v %v", events, err)
	}
}
