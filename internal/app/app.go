// Package app assembles the assistant's components from configuration. The
// binaries only pick a channel and run the router it builds.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"time"

	"jarvis/internal/analytics"
	"jarvis/internal/config"
	"jarvis/internal/handlers"
	"jarvis/internal/intent"
	"jarvis/internal/llm"
	"jarvis/internal/memory"
	"jarvis/internal/proxy"
	"jarvis/internal/router"
	"jarvis/internal/session"
	"jarvis/internal/speech"
	"jarvis/internal/storage"
	"jarvis/internal/web"
)

const lookupTimeout = 10 * time.Second

// sharedChannels serve several remote users through one router.
var sharedChannels = map[string]bool{"telegram": true, "bus": true, "mcp": true}

type App struct {
	Config    *config.Config
	Memory    *memory.Store
	Session   *session.State
	Assistant *llm.Assistant
	Friend    *handlers.Friend
	Handlers  handlers.Registry
	// Journal and Reporter are nil when the journal file cannot be opened.
	Journal  storage.Recorder
	Reporter *analytics.Reporter

	log *log.Logger
}

// New wires every component. Missing chat credentials are not an error: the
// assistant starts without a provider and online requests report the
// missing key.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}
	a := &App{
		Config:  cfg,
		Session: session.New(!cfg.OfflineMode, cfg.DefaultLanguage),
		log:     logger,
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	if fb, ok := backend.(*memory.FileBackend); ok {
		logger.Info("memory file", "path", fb.Path())
	} else {
		logger.Info("memory database", "path", cfg.MemoryDB)
	}
	a.Memory = memory.Open(backend, cfg.MaxHistory, memory.WithLogger(logger.With("component", "memory")))

	if rec, err := storage.NewFileRecorder(cfg.JournalFile); err != nil {
		logger.Warn("interaction journal disabled", "err", err)
	} else {
		a.Journal = rec
		a.Reporter = analytics.NewReporter(rec, cfg.ReportDir, time.Now)
	}

	client, err := a.chatClient(cfg)
	if err != nil {
		_ = a.Memory.Close()
		return nil, err
	}
	a.Assistant = llm.NewAssistant(client, cfg.ChatTimeout)
	if cfg.MissingAPIKey() {
		logger.Warn("online mode requested without chat credentials; set DEEPSEEK_API_KEY or switch to offline mode")
	}

	lookup, err := lookupChain(ctx, cfg)
	if err != nil {
		logger.Warn("google search disabled", "err", err)
	}

	var usage handlers.Usage
	if a.Reporter != nil {
		usage = a.Reporter
	}

	coder := handlers.NewOfflineCoder(a.Memory, cfg.PythonBin, cfg.CodeRunTimeout)
	a.Friend = handlers.NewFriend(a.Memory, a.Assistant, nil)
	a.Handlers = handlers.Registry{
		intent.Programming: handlers.NewProgramming(a.Memory, a.Assistant, coder, logger.With("handler", "programming")),
		intent.Web:         handlers.NewWeb(a.Memory, lookup, web.NewBrowserOpener(), logger.With("handler", "web")),
		intent.Friend:      a.Friend,
		intent.System:      handlers.NewSystem(a.Memory, usage, logger.With("handler", "system")),
		intent.General:     handlers.NewGeneral(a.Memory, a.Assistant),
	}
	return a, nil
}

func openBackend(cfg *config.Config) (memory.Backend, error) {
	switch cfg.MemoryBackend {
	case config.BackendJSON, "":
		return memory.NewFileBackend(cfg.MemoryFile)
	case config.BackendSQLite:
		return memory.NewSQLiteBackend(cfg.MemoryDB)
	default:
		return nil, fmt.Errorf("unknown memory backend: %s", cfg.MemoryBackend)
	}
}

func (a *App) chatClient(cfg *config.Config) (llm.Client, error) {
	httpClient, err := proxy.NewClient(cfg.ChatProxy, cfg.ChatTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to configure chat proxy: %w", err)
	}
	client, err := llm.NewFactory(cfg, httpClient).CreateClient(string(cfg.LLMProvider))
	if errors.Is(err, llm.ErrNoAPIKey) {
		a.log.Warn("chat provider not configured", "provider", cfg.LLMProvider)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	return client, nil
}

// lookupChain asks Wikipedia first and falls back to Google custom search
// when it is configured. A Google setup error still returns the Wikipedia
// chain.
func lookupChain(ctx context.Context, cfg *config.Config) (web.Chain, error) {
	chain := web.Chain{web.NewWikipedia(cfg.WikipediaURL, &http.Client{Timeout: lookupTimeout})}
	if cfg.GoogleAPIKey == "" || cfg.GoogleCSEID == "" {
		return chain, nil
	}
	g, err := web.NewGoogle(ctx, cfg.GoogleAPIKey, cfg.GoogleCSEID)
	if err != nil {
		return chain, err
	}
	return append(chain, g), nil
}

// Router builds a session loop over the given channel.
func (a *App) Router(listener speech.Listener, speaker speech.Speaker, channel string, hints io.Writer) *router.Router {
	return router.New(router.Options{
		Listener:  listener,
		Speaker:   speaker,
		Memory:    a.Memory,
		Session:   a.Session,
		Handlers:  a.Handlers,
		Shortcuts: a.Friend,
		Journal:   a.Journal,
		Channel:   channel,
		Shared:    sharedChannels[channel],
		Hints:     hints,
		Logger:    a.log.With("component", "router"),
	})
}

// WriteReport writes today's usage report. It is the scheduler's job.
func (a *App) WriteReport(ctx context.Context) error {
	if a.Reporter == nil {
		return errors.New("interaction journal disabled")
	}
	path, err := a.Reporter.WriteDailyReport(ctx)
	if err != nil {
		return err
	}
	a.log.Info("daily report written", "path", path)
	return nil
}

// Close flushes memory and releases its backend.
func (a *App) Close() error {
	return a.Memory.Close()
}
