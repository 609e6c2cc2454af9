package main

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	cli "github.com/spf13/pflag"

	"jarvis/internal/app"
	"jarvis/internal/config"
	"jarvis/internal/logging"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", *envFile, err)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// stdout carries the protocol.
	logger, closeLog, err := logging.Setup(os.Stderr, *logLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	log.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Error("failed to start", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "jarvis-mcp",
		Version: "1.0.0",
	}, nil)
	registerTools(server, NewJarvisMCPServer(a.Router(nil, nil, "mcp", nil), a.Memory, a.Session))

	log.Info("Starting JARVIS MCP server on stdin/stdout", "tools", "ask, classify, memory_status")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil && ctx.Err() == nil {
		log.Error("server failed", "err", err)
	}
}
