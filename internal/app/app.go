// Package app assembles the memento HTTP application from a ServerConfig.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/memento/internal/telemetry"
	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/api"
	"github.com/tendant/memento/pkg/memento/config"
	"github.com/tendant/memento/pkg/memento/game/eventloop"
	"github.com/tendant/memento/pkg/memento/metrics"
)

const (
	metricsNamespace = "memento"
	tracerName       = "github.com/tendant/memento"
)

// App is a running application: the router plus the event loop goroutine and
// the connections behind it.
type App struct {
	Config   *config.ServerConfig
	Services *config.Services
	Metrics  *metrics.Collector
	Loop     *eventloop.Loop
	Router   *chi.Mux

	stopLoop        context.CancelFunc
	loopDone        chan struct{}
	shutdownTracing telemetry.Shutdown
}

// NewLogger returns the JSON logger used by the commands.
func NewLogger(w io.Writer, cfg *config.ServerConfig) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

// New builds the application and starts its event loop.
func New(ctx context.Context, cfg *config.ServerConfig) (*App, error) {
	provider, shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	services, err := cfg.Build(ctx)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	a := &App{
		Config:          cfg,
		Services:        services,
		Metrics:         metrics.NewCollector(metricsNamespace),
		Loop:            eventloop.New(),
		stopLoop:        stopLoop,
		loopDone:        make(chan struct{}),
		shutdownTracing: shutdownTracing,
	}
	go func() {
		defer close(a.loopDone)
		if err := a.Loop.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Event loop stopped", "error", err)
		}
	}()

	options := append(services.Options(), memento.WithTracer(provider.Tracer(tracerName)))
	router, err := api.NewRouter(api.Config{
		Options:           options,
		Blobs:             services.Blobs,
		Loop:              a.Loop,
		Questions:         services.Questions,
		Metrics:           a.Metrics,
		Logger:            slog.Default(),
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		MaxUploadBytes:    cfg.HTTP.MaxUploadBytes,
		WorkspaceCapacity: cfg.HTTP.WorkspaceCapacity,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		APIKeys:           apiKeys(cfg.HTTP.APIKeySHA256),
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("failed to build router: %w", err)
	}
	a.Router = router
	return a, nil
}

// Close stops the event loop, closes the services and flushes traces.
func (a *App) Close(ctx context.Context) error {
	a.stopLoop()
	<-a.loopDone
	a.Services.Close()
	return a.shutdownTracing(ctx)
}

func apiKeys(digest string) map[string]string {
	if digest == "" {
		return nil
	}
	return map[string]string{"default": digest}
}
