package main

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"jarvis/internal/app"
	"jarvis/internal/auth"
	"jarvis/internal/bus"
	"jarvis/internal/config"
	"jarvis/internal/logging"
	"jarvis/internal/pending"
	"jarvis/internal/router"
	"jarvis/internal/scheduler"
	"jarvis/internal/speech"
	"jarvis/internal/telegram"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	channel := cli.StringP("channel", "c", "console", "Input channel: console, telegram or bus")
	offline := cli.Bool("offline", false, "Start in offline mode")
	once := cli.String("once", "", "Answer a single utterance and exit")
	cli.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", *envFile, err)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *offline {
		cfg.OfflineMode = true
	}

	logger, closeLog, err := logging.Setup(os.Stderr, *logLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	log.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *channel, *once); err != nil {
		log.Error("jarvis stopped", "err", err)
		closeLog()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, channel, once string) error {
	log.Info("Booting up", "channel", channel, "online", !cfg.OfflineMode)

	a, err := app.New(ctx, cfg, log.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close memory", "err", err)
		}
	}()
	if cfg.MissingAPIKey() {
		fmt.Println("⚠️ Please set your chat API key in the .env file, or start with --offline")
	}

	if once != "" {
		r := a.Router(nil, speech.NewEngine(os.Stdout, nil, false, log.Default()), "cli", nil)
		r.Process(ctx, once)
		return nil
	}

	sched := scheduler.New(cfg.ReportSchedule, log.Default())
	sched.SetReportFunction(a.WriteReport)
	if a.Reporter != nil {
		if err := sched.Start(); err != nil {
			log.Warn("daily reports disabled", "err", err)
		}
		defer sched.Stop()
	}

	r, cleanup, err := channelRouter(ctx, a, cfg, channel)
	if err != nil {
		return err
	}
	defer cleanup()

	if channel == "console" {
		fmt.Println(r.Banner())
	}
	return r.Run(ctx)
}

func channelRouter(ctx context.Context, a *app.App, cfg *config.Config, channel string) (*router.Router, func(), error) {
	switch channel {
	case "console":
		var synth speech.Synthesizer
		if cfg.SpeechEnabled {
			es := speech.NewEspeak(cfg.EspeakBin, cfg.SpeechRate, cfg.SpeechVolume)
			if es.Available() {
				synth = es
			} else {
				log.Warn("speech synthesis unavailable", "bin", cfg.EspeakBin)
			}
		}
		speaker := speech.NewEngine(os.Stdout, synth, cfg.SpeechAsync, log.Default())
		listener := speech.NewConsole(os.Stdin, os.Stdout)
		return a.Router(listener, speaker, channel, os.Stdout), func() {}, nil

	case "telegram":
		if cfg.TelegramBotToken == "" {
			return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required for the telegram channel")
		}
		var allowRepo auth.Repository
		if cfg.AllowlistFile != "" {
			repo, err := auth.NewFileRepository(cfg.AllowlistFile)
			if err != nil {
				log.Warn("failed to init allowlist repo", "err", err)
			} else {
				allowRepo = repo
			}
		}
		authSvc, err := auth.NewWithRepo(allowRepo, cfg.AllowedUsers)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init auth: %w", err)
		}
		requests, err := pendingRequests(cfg.PendingFile)
		if err != nil {
			return nil, nil, err
		}
		bot, err := telegram.New(cfg.TelegramBotToken, authSvc, requests, cfg.AdminUserID, log.Default())
		if err != nil {
			return nil, nil, err
		}
		go bot.Start(ctx)
		return a.Router(bot, bot, channel, nil), func() {}, nil

	case "bus":
		ch, err := bus.Dial(ctx, cfg.BusURL, log.Default())
		if err != nil {
			return nil, nil, err
		}
		return a.Router(ch, ch, channel, nil), func() {
			if err := ch.Close(); err != nil {
				log.Debug("bus close", "err", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown channel %q", channel)
	}
}

func pendingRequests(path string) (*pending.Requests, error) {
	var repo auth.Repository
	if path != "" {
		r, err := auth.NewFileRepository(path)
		if err != nil {
			log.Warn("failed to init pending repo", "err", err)
		} else {
			repo = r
		}
	}
	return pending.New(repo)
}
