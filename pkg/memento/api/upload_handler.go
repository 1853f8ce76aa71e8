package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/metrics"
)

// DefaultMaxUploadBytes bounds the multipart body kept in memory; larger
// parts spill to temporary files.
const DefaultMaxUploadBytes = 32 << 20

// CategoryOption describes one entry of the uploader's category selector.
type CategoryOption struct {
	Value   memento.Category `json:"value"`
	Label   string           `json:"label"`
	Bucket  string           `json:"bucket"`
	Accept  string           `json:"accept"`
	Default bool             `json:"default"`
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Notice string                `json:"notice"`
	Result *memento.UploadResult `json:"result"`
}

// UploadHandler serves the asset uploader and, for blob stores that can read
// objects back, the blobs themselves.
type UploadHandler struct {
	maxMemory int64
	reader    memento.BlobReader
	metrics   *metrics.Collector
}

// NewUploadHandler creates an upload handler. reader and collector may be nil.
func NewUploadHandler(maxMemory int64, reader memento.BlobReader, collector *metrics.Collector) *UploadHandler {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxUploadBytes
	}
	return &UploadHandler{maxMemory: maxMemory, reader: reader, metrics: collector}
}

// Routes returns the routes for uploads
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/categories", h.ListCategories)
	r.Post("/", h.Upload)
	return r
}

// BlobRoutes returns the read-back routes, or nil when the blob store cannot
// serve objects.
func (h *UploadHandler) BlobRoutes() chi.Router {
	if h.reader == nil {
		return nil
	}
	r := chi.NewRouter()
	r.Get("/{bucket}/*", h.GetBlob)
	return r
}

// ListCategories returns the upload categories with their buckets and accept lists.
func (h *UploadHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	options := make([]CategoryOption, 0, len(memento.Categories()))
	for _, c := range memento.Categories() {
		options = append(options, CategoryOption{
			Value:   c,
			Label:   c.Label(),
			Bucket:  c.Bucket(),
			Accept:  c.Accept(),
			Default: c == memento.DefaultCategory,
		})
	}
	respond(w, r, http.StatusOK, options)
}

// Upload accepts a multipart form with a category field and a file part.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())

	if err := r.ParseMultipartForm(h.maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respondError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	category, err := memento.ParseCategory(r.FormValue("category"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	files, closeFiles, err := selectedFiles(r.MultipartForm)
	defer closeFiles()
	if err != nil {
		slog.Error("Failed to open uploaded file", "error", err)
		respondError(w, r, http.StatusBadRequest, "invalid file")
		return
	}

	result, err := ws.Uploader.Upload(r.Context(), category, files)
	if err != nil {
		h.count(category, submissionResult(err))

		var remote *memento.RemoteError
		switch {
		case errors.Is(err, memento.ErrNoFile):
			respondError(w, r, http.StatusBadRequest, memento.NoticeNoFile)
		case errors.Is(err, memento.ErrUnknownCategory):
			respondError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, memento.ErrUploadInFlight):
			respondError(w, r, http.StatusConflict, err.Error())
		case errors.As(err, &remote):
			respondError(w, r, http.StatusBadGateway, remote.Notice)
		default:
			slog.Error("Unexpected upload error", "error", err)
			respondError(w, r, http.StatusInternalServerError, memento.NoticeUploadFailed)
		}
		return
	}

	h.count(category, metrics.ResultSuccess)
	respond(w, r, http.StatusCreated, UploadResponse{Notice: memento.NoticeUploadSuccess, Result: result})
}

// GetBlob streams an object back from the blob store. Only images and audio
// are served inline; everything else is sent as an attachment.
func (h *UploadHandler) GetBlob(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" {
		respondError(w, r, http.StatusNotFound, "object not found")
		return
	}

	body, contentType, err := h.reader.Open(r.Context(), bucket, key)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "object not found")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if !inlineType(contentType) {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("Failed to stream blob", "bucket", bucket, "key", key, "error", err)
	}
}

// inlineType reports whether a browser may render contentType in place.
// SVG is scriptable and is excluded.
func inlineType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "image/svg+xml" {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "audio/")
}

func (h *UploadHandler) count(category memento.Category, result string) {
	if h.metrics != nil {
		h.metrics.Uploads.WithLabelValues(string(category), result).Inc()
	}
}

// selectedFiles opens the "file" parts in the order they were sent.
func selectedFiles(form *multipart.Form) ([]memento.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	if form == nil {
		return nil, closeAll, nil
	}

	var files []memento.File
	for _, header := range form.File["file"] {
		f, err := header.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		files = append(files, memento.File{
			Name:     header.Filename,
			Size:     header.Size,
			MimeType: header.Header.Get("Content-Type"),
			Body:     f,
		})
	}
	return files, closeAll, nil
}
