/*
Package main is the entry point for the Tiny IRC chat server.

It is responsible for loading configuration, initializing the global logging
system, starting the TCP listener, the liveness monitor, and the admin
console, and gracefully handling operating system interrupt signals (SIGINT,
SIGTERM) so the service shuts down in order.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tinyirc/internal/app/admin"
	"tinyirc/internal/app/chat"
	"tinyirc/internal/configs"
	"tinyirc/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Dur("read_timeout", cfg.ReadTimeout).
		Dur("ping_timeout", cfg.PingTimeout).
		Dur("inactivity_timeout", cfg.InactivityTimeout).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := chat.NewServer(cfg)

	if err := server.Listen(); err != nil {
		logx.Fatal(err, "Failed to bind listener")
	}

	go chat.NewMonitor(server).Run(ctx)
	go admin.NewConsole(server, os.Stdin, os.Stdout).Run(ctx)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve()
	}()

	select {
	case <-ctx.Done():
		logx.Info("Received shutdown signal. Starting graceful shutdown...")
		server.Shutdown()
		<-serveErr

	case err := <-serveErr:
		// Serve returns on shutdown (nil) or on a fatal listener error, which
		// has already triggered the shutdown sequence.
		if err != nil {
			logx.Error(err, "Listener terminated the service")
		}
		server.Shutdown()
	}

	logx.Info("Server gracefully stopped.")
}
