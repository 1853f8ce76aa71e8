package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/metrics"
)

// ContentResponse is the body of a successful submission.
type ContentResponse struct {
	Notice string                 `json:"notice"`
	Record *memento.ContentRecord `json:"record"`
}

// ContentTypeOption describes one entry of the editor's type selector.
type ContentTypeOption struct {
	Value memento.ContentType `json:"value"`
	Label string              `json:"label"`
}

// ContentHandler serves the content editor.
type ContentHandler struct {
	metrics *metrics.Collector
}

// NewContentHandler creates a content handler. collector may be nil.
func NewContentHandler(collector *metrics.Collector) *ContentHandler {
	return &ContentHandler{metrics: collector}
}

// Routes returns the routes for content
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/types", h.ListContentTypes)
	r.Post("/", h.CreateContent)
	return r
}

// ListContentTypes returns the accepted content types in display order.
func (h *ContentHandler) ListContentTypes(w http.ResponseWriter, r *http.Request) {
	types := make([]ContentTypeOption, 0, len(memento.ContentTypes()))
	for _, t := range memento.ContentTypes() {
		types = append(types, ContentTypeOption{Value: t, Label: t.Label()})
	}
	respond(w, r, http.StatusOK, types)
}

// CreateContent submits the editor form of the caller's workspace. JSON and
// urlencoded bodies are accepted.
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())

	form, err := decodeContentForm(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := ws.Editor.Submit(r.Context(), form)
	if err != nil {
		h.count(submissionResult(err))

		var verr *memento.ValidationError
		var remote *memento.RemoteError
		switch {
		case errors.As(err, &verr):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, ErrorResponse{Error: "validation failed", Fields: verr.Map()})
		case errors.Is(err, memento.ErrSubmitInFlight):
			respondError(w, r, http.StatusConflict, err.Error())
		case errors.As(err, &remote):
			respondError(w, r, http.StatusBadGateway, remote.Notice)
		default:
			slog.Error("Unexpected submit error", "error", err)
			respondError(w, r, http.StatusInternalServerError, memento.NoticeContentFailed)
		}
		return
	}

	h.count(metrics.ResultSuccess)
	respond(w, r, http.StatusCreated, ContentResponse{Notice: memento.NoticeContentSaved, Record: record})
}

func (h *ContentHandler) count(result string) {
	if h.metrics != nil {
		h.metrics.ContentSubmissions.WithLabelValues(result).Inc()
	}
}

func submissionResult(err error) string {
	switch {
	case errors.Is(err, memento.ErrValidation):
		return metrics.ResultInvalid
	case errors.Is(err, memento.ErrSubmitInFlight), errors.Is(err, memento.ErrUploadInFlight):
		return metrics.ResultBusy
	}
	return metrics.ResultFailure
}

func decodeContentForm(r *http.Request) (memento.ContentForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var form memento.ContentForm
		err := render.DecodeJSON(r.Body, &form)
		return form, err
	}

	if err := r.ParseForm(); err != nil {
		return memento.ContentForm{}, err
	}
	form := memento.ContentForm{
		Title:       r.PostForm.Get("title"),
		ContentType: r.PostForm.Get("content_type"),
		Content:     r.PostForm.Get("content"),
		Tags:        r.PostForm.Get("tags"),
	}
	if values, ok := r.PostForm["is_private"]; ok && len(values) > 0 {
		private := checkboxValue(values[len(values)-1])
		form.IsPrivate = &private
	}
	return form, nil
}

func checkboxValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
