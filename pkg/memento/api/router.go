// Package api is the HTTP surface of the host page: the content editor, the
// asset uploader and the two memory games.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	chidemo "github.com/tendant/chi-demo/app"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/game/eventloop"
	"github.com/tendant/memento/pkg/memento/game/matching"
	"github.com/tendant/memento/pkg/memento/game/quiz"
	"github.com/tendant/memento/pkg/memento/metrics"
	"github.com/tendant/memento/pkg/memento/session"
)

// Config holds everything the router needs.
type Config struct {
	// Options configure the editor and uploader of every workspace. They must
	// include a record store and a blob store.
	Options []memento.Option

	// Blobs is consulted for read-back support; when it implements
	// memento.BlobReader the blob routes are mounted.
	Blobs memento.BlobStore

	Loop      *eventloop.Loop
	Questions []quiz.Question
	Metrics   *metrics.Collector
	Logger    *slog.Logger

	AllowedOrigins    []string
	MaxUploadBytes    int64
	WorkspaceCapacity int
	RequestTimeout    time.Duration

	// APIKeys maps key names to hex encoded SHA-256 digests. When set, the
	// content, upload and game routes require a matching APIKeyHeader.
	APIKeys map[string]string

	// Symbols and Shuffler deal matching decks; zero values use the
	// matching package defaults.
	Symbols  []string
	Shuffler matching.Shuffler
}

// APIKeyHeader carries the API key when Config.APIKeys is set.
const APIKeyHeader = "X-API-KEY"

// NewRouter builds the HTTP handler.
func NewRouter(cfg Config) (*chi.Mux, error) {
	if cfg.Loop == nil {
		return nil, errors.New("event loop is required")
	}
	if len(cfg.Questions) == 0 {
		cfg.Questions = quiz.DefaultQuestions()
	}
	if err := quiz.Validate(cfg.Questions); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	// Fail fast on missing collaborators instead of on the first request.
	if _, err := memento.NewEditor(cfg.Options...); err != nil {
		return nil, err
	}
	if _, err := memento.NewUploader(cfg.Options...); err != nil {
		return nil, err
	}

	var onSize func(int)
	if cfg.Metrics != nil {
		onSize = func(n int) { cfg.Metrics.Workspaces.Set(float64(n)) }
	}
	hub, err := NewHub(cfg.WorkspaceCapacity, newWorkspaceFactory(cfg), onSize)
	if err != nil {
		return nil, err
	}

	var apiKey func(http.Handler) http.Handler
	if len(cfg.APIKeys) > 0 {
		apiKey, err = chidemo.ApiKeyMiddleware(chidemo.ApiKeyConfig{
			APIKeyHeader: APIKeyHeader,
			APIKeys:      cfg.APIKeys,
		})
		if err != nil {
			return nil, fmt.Errorf("invalid api key digest: %w", err)
		}
	}

	var reader memento.BlobReader
	if br, ok := cfg.Blobs.(memento.BlobReader); ok {
		reader = br
	}

	contents := NewContentHandler(cfg.Metrics)
	uploads := NewUploadHandler(cfg.MaxUploadBytes, reader, cfg.Metrics)
	games := NewGameHandler(cfg.Loop, cfg.Metrics)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", ClientIDHeader, APIKeyHeader},
		ExposedHeaders:   []string{ClientIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	chidemo.RoutesHealthz(r)
	chidemo.RoutesHealthzReady(r)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		if blobs := uploads.BlobRoutes(); blobs != nil {
			r.Mount("/blobs", blobs)
		}

		r.Group(func(r chi.Router) {
			if apiKey != nil {
				r.Use(apiKey)
			}
			r.Use(session.Middleware)
			r.Use(hub.Middleware)
			r.Mount("/contents", contents.Routes())
			r.Mount("/uploads", uploads.Routes())
			r.Mount("/games", games.Routes())
		})
	})

	return r, nil
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func newWorkspaceFactory(cfg Config) WorkspaceFactory {
	return func(id string) (*Workspace, error) {
		editor, err := memento.NewEditor(cfg.Options...)
		if err != nil {
			return nil, fmt.Errorf("workspace %s: %w", id, err)
		}
		uploader, err := memento.NewUploader(cfg.Options...)
		if err != nil {
			return nil, fmt.Errorf("workspace %s: %w", id, err)
		}
		q, err := quiz.New(cfg.Questions)
		if err != nil {
			return nil, fmt.Errorf("workspace %s: %w", id, err)
		}

		gameOpts := []matching.Option{}
		if len(cfg.Symbols) > 0 {
			gameOpts = append(gameOpts, matching.WithSymbols(cfg.Symbols...))
		}
		if cfg.Shuffler != nil {
			gameOpts = append(gameOpts, matching.WithShuffler(cfg.Shuffler))
		}
		if cfg.Metrics != nil {
			gameOpts = append(gameOpts,
				matching.OnMove(func(matching.State) { cfg.Metrics.MatchingMoves.Inc() }),
				matching.OnComplete(func(matching.State) { cfg.Metrics.MatchingCompletions.Inc() }),
			)
		}

		return &Workspace{
			ID:       id,
			Editor:   editor,
			Uploader: uploader,
			Matching: matching.NewGame(cfg.Loop, gameOpts...),
			Quiz:     q,
		}, nil
	}
}
