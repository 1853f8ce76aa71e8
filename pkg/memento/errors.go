package memento

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error types
var (
	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")

	// ErrNoFile indicates the uploader was invoked without a selected file
	ErrNoFile = errors.New("no file selected")

	// ErrUnknownCategory indicates an upload category outside the fixed set
	ErrUnknownCategory = errors.New("unknown upload category")

	// ErrSubmitInFlight indicates a submission is already outstanding on this editor
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	// ErrUploadInFlight indicates an upload is already outstanding on this uploader
	ErrUploadInFlight = errors.New("an upload is already in progress")

	// ErrNotConfigured indicates a component is missing a required collaborator
	ErrNotConfigured = errors.New("component not configured")
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every failing field of a form. It is returned before
// any remote call is made.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Map returns the field messages keyed by field name.
func (e *ValidationError) Map() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Message
	}
	return m
}

func (e *ValidationError) sort() {
	sort.SliceStable(e.Fields, func(i, j int) bool {
		return fieldOrder(e.Fields[i].Field) < fieldOrder(e.Fields[j].Field)
	})
}

func fieldOrder(field string) int {
	switch field {
	case "title":
		return 0
	case "content_type":
		return 1
	case "content":
		return 2
	}
	return 3
}

// RemoteError wraps a failure reported by an external collaborator. Notice is
// the message meant for the user; Err keeps the original detail for logs.
type RemoteError struct {
	Op     string
	Notice string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
