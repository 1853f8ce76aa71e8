package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tendant/memento/internal/app"
	"github.com/tendant/memento/pkg/memento/config"
)

func main() {
	configFile := flag.String("config", os.Getenv("MEMENTO_CONFIG"), "YAML configuration file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output())
		fmt.Fprintln(flag.CommandLine.Output(), config.Usage())
	}
	flag.Parse()

	// A missing .env file is fine
	_ = godotenv.Load()

	serverConfig, err := config.Load(config.WithFile(*configFile), config.WithEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(app.NewLogger(os.Stdout, serverConfig))

	ctx := context.Background()
	application, err := app.New(ctx, serverConfig)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Memento server starting",
			"port", serverConfig.Port,
			"environment", serverConfig.Environment)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if err := application.Close(shutdownCtx); err != nil {
		slog.Error("Failed to close application", "error", err)
	}

	slog.Info("Server exiting")
}
