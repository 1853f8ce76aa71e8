package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/game/matching"
	"github.com/tendant/memento/pkg/memento/game/quiz"
)

const (
	// ClientIDHeader identifies the calling client's workspace.
	ClientIDHeader = "X-Client-ID"

	// ClientCookie carries the workspace id for browser clients.
	ClientCookie = "memento_client"
)

// Workspace holds one client's component instances: its own editor and
// uploader, so that the in-flight guards are per client, and its games.
// The games must only be touched on the event loop.
type Workspace struct {
	ID       string
	Editor   *memento.Editor
	Uploader *memento.Uploader
	Matching *matching.Game
	Quiz     *quiz.Quiz
}

// WorkspaceFactory builds the workspace for a new client id.
type WorkspaceFactory func(id string) (*Workspace, error)

// Hub caches workspaces; the least recently used one is dropped when the
// cache is full.
type Hub struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, *Workspace]
	factory WorkspaceFactory
	onSize  func(int)
}

// NewHub creates a hub holding up to size workspaces. onSize, if set, is
// called with the number of cached workspaces after every change.
func NewHub(size int, factory WorkspaceFactory, onSize func(int)) (*Hub, error) {
	if size <= 0 {
		size = 1024
	}
	h := &Hub{factory: factory, onSize: onSize}
	cache, err := lru.New[string, *Workspace](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace cache: %w", err)
	}
	h.cache = cache
	return h, nil
}

// Get returns the workspace for id, creating it on first use.
func (h *Hub) Get(id string) (*Workspace, error) {
	if ws, ok := h.cache.Get(id); ok {
		return ws, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if ws, ok := h.cache.Get(id); ok {
		return ws, nil
	}
	ws, err := h.factory(id)
	if err != nil {
		return nil, err
	}
	h.cache.Add(id, ws)
	if h.onSize != nil {
		h.onSize(h.cache.Len())
	}
	return ws, nil
}

// Len returns the number of cached workspaces.
func (h *Hub) Len() int {
	return h.cache.Len()
}

type workspaceKey struct{}

// workspaceFromContext returns the workspace resolved by the workspace middleware.
func workspaceFromContext(ctx context.Context) *Workspace {
	ws, _ := ctx.Value(workspaceKey{}).(*Workspace)
	return ws
}

// Middleware resolves the caller's workspace. A client without an id gets a
// fresh one, returned in a cookie and in the X-Client-ID response header.
func (h *Hub) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(ClientIDHeader)
		if id == "" {
			if cookie, err := r.Cookie(ClientCookie); err == nil {
				id = cookie.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(ClientIDHeader, id)

		ws, err := h.Get(id)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, "workspace unavailable")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceKey{}, ws)))
	})
}
