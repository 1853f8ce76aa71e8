package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth"

	"github.com/tendant/memento/pkg/memento"
)

// ErrNoSubject is returned for verified tokens without a sub claim.
var ErrNoSubject = errors.New("access token has no subject")

// JWTResolver verifies HS256 access tokens and uses the sub claim as the user id.
type JWTResolver struct {
	auth *jwtauth.JWTAuth
}

// NewJWTResolver creates a resolver for tokens signed with secret.
func NewJWTResolver(secret []byte) *JWTResolver {
	return &JWTResolver{auth: jwtauth.New("HS256", secret, nil)}
}

func (j *JWTResolver) CurrentUser(ctx context.Context) (*memento.User, error) {
	raw := AccessTokenFromContext(ctx)
	if raw == "" {
		return nil, nil
	}

	token, err := jwtauth.VerifyToken(j.auth, raw)
	if err != nil {
		return nil, fmt.Errorf("verify access token: %w", err)
	}
	if token.Subject() == "" {
		return nil, ErrNoSubject
	}
	return &memento.User{ID: token.Subject()}, nil
}

// Issue signs a token for userID that expires after ttl.
func (j *JWTResolver) Issue(userID string, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{"sub": userID}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)

	_, signed, err := j.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
