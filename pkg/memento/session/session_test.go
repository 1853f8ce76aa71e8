package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/memento/pkg/memento/session"
)

func TestMiddleware(t *testing.T) {
	var seen string
	handler := session.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.AccessTokenFromContext(r.Context())
	}))

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc123")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "abc123", seen)
	})

	t.Run("jwt cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: "from-cookie"})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "from-cookie", seen)
	})

	t.Run("no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Empty(t, seen)
	})
}

func TestJWTResolver(t *testing.T) {
	resolver := session.NewJWTResolver([]byte("test-secret"))

	t.Run("no token means no session", func(t *testing.T) {
		user, err := resolver.CurrentUser(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := resolver.Issue("user-42", time.Hour)
		require.NoError(t, err)

		user, err := resolver.CurrentUser(session.WithAccessToken(context.Background(), token))
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "user-42", user.ID)
	})

	t.Run("token from another secret", func(t *testing.T) {
		other := session.NewJWTResolver([]byte("other-secret"))
		token, err := other.Issue("user-42", time.Hour)
		require.NoError(t, err)

		user, err := resolver.CurrentUser(session.WithAccessToken(context.Background(), token))
		assert.Error(t, err)
		assert.Nil(t, user)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := resolver.CurrentUser(session.WithAccessToken(context.Background(), "not-a-jwt"))
		assert.Error(t, err)
	})
}

func TestAnonymous(t *testing.T) {
	user, err := session.Anonymous().CurrentUser(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, user)
}
