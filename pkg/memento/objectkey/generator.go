package objectkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AnonymousFolder namespaces uploads made without a session.
const AnonymousFolder = "anonymous"

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates an object key for the owner's folder and the original file name
	GenerateKey(ownerID, fileName string) string
}

// RandomGenerator produces {owner}/{token}.{ext} keys with a random token
type RandomGenerator struct {
	// Token returns the random part of the key; defaults to a UUID
	Token func() string
}

// NewRandomGenerator creates a generator using UUID tokens
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{Token: uuid.NewString}
}

func (g *RandomGenerator) GenerateKey(ownerID, fileName string) string {
	token := uuid.NewString
	if g.Token != nil {
		token = g.Token
	}
	return fmt.Sprintf("%s/%s.%s", Folder(ownerID), token(), Extension(fileName))
}

// Folder returns the owner's namespace, or AnonymousFolder when ownerID is empty
func Folder(ownerID string) string {
	if ownerID == "" {
		return AnonymousFolder
	}
	return ownerID
}

// Extension returns the text after the last "." of name. A name without a dot
// is returned whole, so "README" keeps "README" as its extension.
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// StaticGenerator always uses the same token; useful in tests
type StaticGenerator struct {
	TokenValue string
}

func (g StaticGenerator) GenerateKey(ownerID, fileName string) string {
	return fmt.Sprintf("%s/%s.%s", Folder(ownerID), g.TokenValue, Extension(fileName))
}
