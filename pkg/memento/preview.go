package memento

import (
	"fmt"
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// PreviewKind selects how an uploaded asset is previewed.
type PreviewKind string

const (
	PreviewNone  PreviewKind = "none"
	PreviewImage PreviewKind = "image"
	PreviewAudio PreviewKind = "audio"
)

// Preview is the category specific rendering of an uploaded asset.
type Preview struct {
	Kind     PreviewKind `json:"kind"`
	URL      string      `json:"url,omitempty"`
	MimeType string      `json:"mime_type,omitempty"`
	HTML     string      `json:"html,omitempty"`
}

var (
	previewPolicy     *bluemonday.Policy
	previewPolicyOnce sync.Once
)

func policy() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowStandardURLs()
		p.AllowElements("img", "audio", "source")
		p.AllowAttrs("src", "alt", "class").OnElements("img")
		p.AllowAttrs("controls", "class").OnElements("audio")
		p.AllowAttrs("src", "type").OnElements("source")
		previewPolicy = p
	})
	return previewPolicy
}

// NewPreview builds the preview for a public URL. Documents have no preview.
func NewPreview(category Category, publicURL string) Preview {
	escaped := html.EscapeString(publicURL)
	switch category {
	case CategoryImage:
		raw := fmt.Sprintf(`<img src="%s" alt="Uploaded" class="mt-2 max-w-full h-auto rounded">`, escaped)
		return Preview{
			Kind: PreviewImage,
			URL:  publicURL,
			HTML: policy().Sanitize(raw),
		}
	case CategoryAudio:
		raw := fmt.Sprintf(`<audio controls class="mt-2 w-full"><source src="%s" type="audio/mpeg"></audio>`, escaped)
		return Preview{
			Kind:     PreviewAudio,
			URL:      publicURL,
			MimeType: "audio/mpeg",
			HTML:     policy().Sanitize(raw),
		}
	}
	return Preview{Kind: PreviewNone, URL: publicURL}
}
