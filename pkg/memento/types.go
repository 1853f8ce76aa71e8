package memento

import (
	"fmt"
	"io"
	"strings"
)

// TableUserContent is the row store table that receives editor submissions.
const TableUserContent = "user_content"

// ContentType enumerates the kinds of content the editor accepts.
type ContentType string

const (
	ContentTypeNote    ContentType = "note"
	ContentTypeJournal ContentType = "journal"
	ContentTypeStory   ContentType = "story"
	ContentTypeMemory  ContentType = "memory"
	ContentTypeOther   ContentType = "other"
)

// ContentTypes returns the accepted content types in display order.
func ContentTypes() []ContentType {
	return []ContentType{
		ContentTypeNote,
		ContentTypeJournal,
		ContentTypeStory,
		ContentTypeMemory,
		ContentTypeOther,
	}
}

// Label returns the human readable name shown in the editor's type selector.
func (t ContentType) Label() string {
	switch t {
	case ContentTypeNote:
		return "Note"
	case ContentTypeJournal:
		return "Journal Entry"
	case ContentTypeStory:
		return "Story"
	case ContentTypeMemory:
		return "Memory"
	case ContentTypeOther:
		return "Other"
	default:
		return string(t)
	}
}

// User is the authenticated principal returned by a SessionResolver.
type User struct {
	ID string `json:"id"`
}

// ContentRecord is the normalized row sent to the record store.
type ContentRecord struct {
	UserID      *string     `json:"user_id,omitempty" dynamodbav:"user_id,omitempty"`
	Title       string      `json:"title" dynamodbav:"title"`
	ContentType ContentType `json:"content_type" dynamodbav:"content_type"`
	Content     string      `json:"content" dynamodbav:"content"`
	Tags        []string    `json:"tags" dynamodbav:"tags"`
	IsPrivate   bool        `json:"is_private" dynamodbav:"is_private"`
}

// Owner returns the owner id or an empty string when the record is anonymous.
func (r *ContentRecord) Owner() string {
	if r.UserID == nil {
		return ""
	}
	return *r.UserID
}

// Category is the user-selected kind of an uploaded asset. It is never
// inferred from the file itself.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
)

// DefaultCategory is the category selected before the user picks one.
const DefaultCategory = CategoryImage

// Bucket names, one per category.
const (
	BucketPhotos    = "memory-photos"
	BucketMusic     = "music-files"
	BucketDocuments = "user-documents"
)

// Categories returns every upload category in display order.
func Categories() []Category {
	return []Category{CategoryImage, CategoryAudio, CategoryDocument}
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryImage, CategoryAudio, CategoryDocument:
		return c, nil
	case "":
		return DefaultCategory, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Bucket returns the destination bucket of the category.
func (c Category) Bucket() string {
	switch c {
	case CategoryImage:
		return BucketPhotos
	case CategoryAudio:
		return BucketMusic
	case CategoryDocument:
		return BucketDocuments
	}
	return ""
}

// Accept returns the advisory MIME filter for the native file picker.
func (c Category) Accept() string {
	switch c {
	case CategoryImage:
		return "image/*"
	case CategoryAudio:
		return "audio/*"
	default:
		return "application/pdf,application/msword"
	}
}

// Label returns the human readable name shown in the uploader's selector.
func (c Category) Label() string {
	switch c {
	case CategoryImage:
		return "Photo/Image"
	case CategoryAudio:
		return "Music/Audio"
	case CategoryDocument:
		return "Document/PDF"
	}
	return string(c)
}

// File is a single locally selected file handed to the uploader.
type File struct {
	Name     string
	Size     int64
	MimeType string
	Body     io.Reader
}

// UploadOptions carries per-object attributes for a blob upload.
type UploadOptions struct {
	ContentType string
	Size        int64
}

// UploadResult describes a completed upload.
type UploadResult struct {
	Category  Category `json:"category"`
	Bucket    string   `json:"bucket"`
	Key       string   `json:"key"`
	FileName  string   `json:"file_name"`
	PublicURL string   `json:"public_url"`
	Preview   Preview  `json:"preview"`
}

// Notices shown to the user after an operation.
const (
	NoticeContentSaved  = "Content saved successfully!"
	NoticeContentFailed = "Failed to save content"
	NoticeUploadSuccess = "File uploaded successfully!"
	NoticeUploadFailed  = "Error uploading file"
	NoticeNoFile        = "Please select a file to upload."
)
