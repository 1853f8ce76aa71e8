package memento

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tendant/memento/pkg/memento/objectkey"
)

const tracerName = "github.com/tendant/memento"

// deps holds the collaborators shared by the editor and the uploader
type deps struct {
	sessions SessionResolver
	records  RecordStore
	blobs    BlobStore
	events   EventSink
	keys     objectkey.Generator
	tracer   trace.Tracer
}

// Option represents a functional option for configuring a component
type Option func(*deps)

// WithSessions sets the session resolver
func WithSessions(sessions SessionResolver) Option {
	return func(d *deps) {
		d.sessions = sessions
	}
}

// WithRecordStore sets the record store used by the editor
func WithRecordStore(store RecordStore) Option {
	return func(d *deps) {
		d.records = store
	}
}

// WithBlobStore sets the blob store used by the uploader
func WithBlobStore(store BlobStore) Option {
	return func(d *deps) {
		d.blobs = store
	}
}

// WithEventSink sets the event sink
func WithEventSink(sink EventSink) Option {
	return func(d *deps) {
		d.events = sink
	}
}

// WithKeyGenerator sets the object key generator used by the uploader
func WithKeyGenerator(g objectkey.Generator) Option {
	return func(d *deps) {
		d.keys = g
	}
}

// WithTracer sets the tracer used for remote call spans
func WithTracer(tracer trace.Tracer) Option {
	return func(d *deps) {
		d.tracer = tracer
	}
}

func newDeps(options []Option) *deps {
	d := &deps{}
	for _, option := range options {
		if option != nil {
			option(d)
		}
	}
	if d.sessions == nil {
		d.sessions = AnonymousSessions()
	}
	if d.events == nil {
		d.events = NewNoopEventSink()
	}
	if d.keys == nil {
		d.keys = objectkey.NewRandomGenerator()
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	return d
}
