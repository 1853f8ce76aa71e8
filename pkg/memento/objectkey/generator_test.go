package objectkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     string
	}{
		{name: "simple", fileName: "photo.png", want: "png"},
		{name: "multiple dots", fileName: "archive.tar.gz", want: "gz"},
		{name: "no dot keeps whole name", fileName: "README", want: "README"},
		{name: "trailing dot", fileName: "weird.", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.fileName))
		})
	}
}

func TestRandomGenerator_GenerateKey(t *testing.T) {
	g := &RandomGenerator{Token: func() string { return "tok" }}

	assert.Equal(t, "user-1/tok.mp3", g.GenerateKey("user-1", "song.mp3"))
	assert.Equal(t, "anonymous/tok.pdf", g.GenerateKey("", "letter.pdf"))
}

func TestRandomGenerator_UniqueTokens(t *testing.T) {
	g := NewRandomGenerator()

	first := g.GenerateKey("user-1", "a.jpg")
	second := g.GenerateKey("user-1", "a.jpg")

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "user-1/"))
	assert.True(t, strings.HasSuffix(first, ".jpg"))
}

func TestStaticGenerator(t *testing.T) {
	g := StaticGenerator{TokenValue: "fixed"}
	assert.Equal(t, "anonymous/fixed.txt", g.GenerateKey("", "notes.txt"))
}
