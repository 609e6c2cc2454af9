package analytics

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"jarvis/internal/storage"
)

func TestAnalyzeDailyLogs(t *testing.T) {
	testDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	events := []storage.Event{
		{Timestamp: testDate.Add(2 * time.Hour), Channel: "console", Utterance: "hello", Response: "Hi!", Intent: "friend"},
		{Timestamp: testDate.Add(4 * time.Hour), Channel: "console", Utterance: "fix my code", Response: "❌ Request timeout. Please try again.", Intent: "programming", Failed: true},
		{Timestamp: testDate.Add(6 * time.Hour), Channel: "telegram", UserID: 456, Utterance: "status", Response: "Current Status", Intent: "system"},
		// next day
		{Timestamp: testDate.AddDate(0, 0, 1), Channel: "console", Utterance: "tomorrow", Intent: "general"},
		// system record
		{Timestamp: testDate.Add(8 * time.Hour), Channel: "console", Response: "[startup]"},
	}

	stats := AnalyzeDailyLogs(events, testDate.Add(13*time.Hour))

	want := &DailyStats{
		Date:              "2024-01-15",
		TotalInteractions: 3,
		Failures:          1,
		UniqueUsers:       2,
		ByIntent:          map[string]int{"friend": 1, "programming": 1, "system": 1},
		ByChannel:         map[string]int{"console": 2, "telegram": 1},
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}

	summary := stats.GenerateReportSummary()
	for _, s := range []string{"2024-01-15", "Interactions: 3", "Failed responses: 1", "- programming: 1", "- telegram: 1"} {
		if !strings.Contains(summary, s) {
			t.Errorf("summary missing %q:\n%s", s, summary)
		}
	}
}

func TestAnalyzeEmptyLogs(t *testing.T) {
	stats := AnalyzeDailyLogs(nil, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if stats.TotalInteractions != 0 || stats.UniqueUsers != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if _, err := stats.ToJSON(); err != nil {
		t.Fatalf("to json: %v", err)
	}
}

func TestReporterWritesDailyReport(t *testing.T) {
	dir := t.TempDir()
	rec, err := storage.NewFileRecorder(filepath.Join(dir, "journal.jsonl"))
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, in := range []string{"programming", "web"} {
		if err := rec.AppendInteraction(storage.Event{Timestamp: now, Channel: "console", Utterance: "x", Intent: in}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	r := NewReporter(rec, filepath.Join(dir, "reports"), func() time.Time { return now })
	n, err := r.InteractionsToday()
	if err != nil || n != 2 {
		t.Fatalf("interactions today = %d, %v", n, err)
	}

	path, err := r.WriteDailyReport(context.Background())
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	if filepath.Base(path) != "report-2024-03-01.json" {
		t.Fatalf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got DailyStats
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if got.TotalInteractions != 2 || got.ByIntent["web"] != 1 {
		t.Fatalf("unexpected report %+v", got)
	}

	summary, err := os.ReadFile(filepath.Join(dir, "reports", "report-2024-03-01.txt"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(summary), "Interactions: 2") {
		t.Fatalf("unexpected summary:\n%s", summary)
	}
}
