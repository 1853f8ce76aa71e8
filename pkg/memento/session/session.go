// Package session carries the caller's access token from the HTTP layer to
// the session resolvers.
package session

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/tendant/memento/pkg/memento"
)

type accessTokenKey struct{}

// WithAccessToken returns a context carrying token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFromContext returns the access token stored by Middleware, or "".
func AccessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

// Middleware stores the bearer token of the request, or the jwt cookie when
// there is no Authorization header. Requests without a token pass through.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := jwtauth.TokenFromHeader(r)
		if token == "" {
			token = jwtauth.TokenFromCookie(r)
		}
		if token != "" {
			r = r.WithContext(WithAccessToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// Anonymous resolves every request to "no session".
func Anonymous() memento.SessionResolver {
	return memento.AnonymousSessions()
}
