package handlers

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"jarvis/internal/memory"
	"jarvis/internal/web"
)

// searchFiller is dropped from search and browse queries as whole words.
var searchFiller = map[string]bool{
	"search": true, "browse": true, "for": true, "about": true, "wikipedia": true,
}

// Web answers lookups and opens sites. It needs online mode.
type Web struct {
	memory *memory.Store
	lookup web.Summarizer
	opener web.Opener
	log    *log.Logger
}

func NewWeb(mem *memory.Store, lookup web.Summarizer, opener web.Opener, logger *log.Logger) *Web {
	if logger == nil {
		logger = log.Default()
	}
	return &Web{memory: mem, lookup: lookup, opener: opener, log: logger}
}

func (w *Web) Handle(ctx context.Context, req Request) (string, error) {
	if !req.online() {
		return "Web features require online mode. Please enable online mode to search the web.", nil
	}

	lower := strings.TrimSpace(req.lower())
	switch {
	case strings.Contains(lower, "open"):
		_, site, _ := strings.Cut(lower, "open")
		return w.open(strings.TrimSpace(site)), nil
	case strings.Contains(lower, "search"):
		return w.search(ctx, stripFiller(lower)), nil
	case strings.Contains(lower, "browse"):
		return w.browse(ctx, stripFiller(lower)), nil
	default:
		return w.search(ctx, lower), nil
	}
}

func (w *Web) open(site string) string {
	if site == "" {
		return "🌐 Which website should I open?"
	}
	url, known := web.ResolveSite(site)
	if err := w.opener.Open(url); err != nil {
		w.log.Warn("open website failed", "url", url, "err", err)
		return fmt.Sprintf("❌ Could not open %s: %v", site, err)
	}
	if known {
		return "🌐 Opening " + site
	}
	return "🌐 Opening website"
}

func (w *Web) search(ctx context.Context, query string) string {
	if query == "" {
		return "🔍 What should I search for?"
	}
	r, err := w.lookup.Summary(ctx, query)
	if err != nil {
		w.logLookup(query, err)
		return fmt.Sprintf("🔍 I found information about: %s. For detailed results, I can open a browser.", query)
	}
	w.memory.LearnFact("searches", "Searched for: "+query)
	return fmt.Sprintf("📚 According to %s: %s", r.Source, r.Text)
}

func (w *Web) browse(ctx context.Context, topic string) string {
	if topic == "" {
		return "🔍 What topic should I look up?"
	}
	r, err := w.lookup.Summary(ctx, topic)
	if err != nil {
		w.logLookup(topic, err)
		return fmt.Sprintf("🔍 Search for: %s. I can open a browser for more details.", topic)
	}
	return r.Text
}

func (w *Web) logLookup(query string, err error) {
	if errors.Is(err, web.ErrNoResult) {
		w.log.Info("lookup had no result", "query", query)
		return
	}
	w.log.Warn("lookup failed", "query", query, "err", err)
}

func stripFiller(s string) string {
	var kept []string
	for _, f := range strings.Fields(s) {
		if !searchFiller[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
