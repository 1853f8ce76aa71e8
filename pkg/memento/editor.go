package memento

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Editor collects content forms and submits them to the record store.
type Editor struct {
	*deps
	guard inFlight
}

// NewEditor creates an editor. A record store is required.
func NewEditor(options ...Option) (*Editor, error) {
	d := newDeps(options)
	if d.records == nil {
		return nil, fmt.Errorf("%w: record store is required", ErrNotConfigured)
	}
	return &Editor{deps: d}, nil
}

// Submitting reports whether a submission is outstanding; the submit control
// is disabled while it is true.
func (e *Editor) Submitting() bool {
	return e.guard.Busy()
}

// Submit validates the form and inserts the normalized record. Validation
// failures return a *ValidationError without contacting the store. A missing
// session is not an error: the record is inserted without an owner.
func (e *Editor) Submit(ctx context.Context, form ContentForm) (*ContentRecord, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	if !e.guard.acquire() {
		return nil, ErrSubmitInFlight
	}
	defer e.guard.release()

	ctx, span := e.tracer.Start(ctx, "memento.Editor.Submit")
	defer span.End()

	record := form.Record(e.currentUser(ctx))
	span.SetAttributes(
		attribute.String("memento.content_type", string(record.ContentType)),
		attribute.Bool("memento.anonymous", record.UserID == nil),
	)

	if err := e.records.InsertRecord(ctx, TableUserContent, record); err != nil {
		slog.ErrorContext(ctx, "Error saving content", "table", TableUserContent, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, &RemoteError{Op: "insert", Notice: NoticeContentFailed, Err: err}
	}

	if err := e.events.ContentSaved(ctx, record); err != nil {
		slog.WarnContext(ctx, "Failed to publish content saved event", "error", err)
	}

	return record, nil
}

func (d *deps) currentUser(ctx context.Context) *User {
	user, err := d.sessions.CurrentUser(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Session lookup failed, continuing without owner", "error", err)
		return nil
	}
	return user
}
