package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"jarvis/internal/storage"
)

// DailyStats summarizes one day of the interaction journal.
type DailyStats struct {
	Date              string         `json:"date"`
	TotalInteractions int            `json:"total_interactions"`
	Failures          int            `json:"failures"`
	UniqueUsers       int            `json:"unique_users"`
	ByIntent          map[string]int `json:"by_intent"`
	ByChannel         map[string]int `json:"by_channel"`
}

// AnalyzeDailyLogs counts the events that fall on targetDate's calendar day.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByIntent:  make(map[string]int),
		ByChannel: make(map[string]int),
	}

	type user struct {
		channel string
		id      int64
	}
	users := make(map[user]bool)

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		// entries without an utterance are system records
		if event.Utterance == "" {
			continue
		}
		stats.TotalInteractions++
		if event.Failed {
			stats.Failures++
		}
		stats.ByIntent[event.Intent]++
		stats.ByChannel[event.Channel]++
		users[user{event.Channel, event.UserID}] = true
	}

	stats.UniqueUsers = len(users)
	return stats
}

// GenerateReportSummary renders the stats as plain text.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "JARVIS usage for %s:\n\n", ds.Date)
	fmt.Fprintf(&b, "- Interactions: %d\n", ds.TotalInteractions)
	fmt.Fprintf(&b, "- Failed responses: %d\n", ds.Failures)
	fmt.Fprintf(&b, "- Unique users: %d\n", ds.UniqueUsers)

	if len(ds.ByIntent) > 0 {
		b.WriteString("\nBy intent:\n")
		for _, k := range sortedKeys(ds.ByIntent) {
			fmt.Fprintf(&b, "- %s: %d\n", k, ds.ByIntent[k])
		}
	}
	if len(ds.ByChannel) > 0 {
		b.WriteString("\nBy channel:\n")
		for _, k := range sortedKeys(ds.ByChannel) {
			fmt.Fprintf(&b, "- %s: %d\n", k, ds.ByChannel[k])
		}
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reporter builds daily stats from a journal.
type Reporter struct {
	rec storage.Recorder
	dir string
	now func() time.Time
}

func NewReporter(rec storage.Recorder, dir string, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{rec: rec, dir: dir, now: now}
}

// Today analyzes the journal for the current day.
func (r *Reporter) Today() (*DailyStats, error) {
	events, err := r.rec.LoadInteractions()
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return AnalyzeDailyLogs(events, r.now()), nil
}

func (r *Reporter) InteractionsToday() (int, error) {
	stats, err := r.Today()
	if err != nil {
		return 0, err
	}
	return stats.TotalInteractions, nil
}

// WriteDailyReport writes today's stats to <dir>/report-<date>.json with a
// plain text summary next to it, and returns the JSON path.
func (r *Reporter) WriteDailyReport(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stats, err := r.Today()
	if err != nil {
		return "", err
	}
	data, err := stats.ToJSON()
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure report dir: %w", err)
	}
	path := filepath.Join(r.dir, "report-"+stats.Date+".json")
	if err := os.WriteFile(path, []byte(data+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	summary := strings.TrimSuffix(path, ".json") + ".txt"
	if err := os.WriteFile(summary, []byte(stats.GenerateReportSummary()), 0o644); err != nil {
		return "", fmt.Errorf("write report summary: %w", err)
	}
	return path, nil
}
