package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"github.com/stretchr/testify/require"

	"github.com/tendant/memento/internal/telemetry"
)

func TestSetup_NoEndpointIsNoop(t *testing.T) {
	provider, shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{})
	require.NoError(t, err)
	require.NotNil(t, provider)

	_, span := provider.Tracer("test").Start(context.Background(), "op")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	params := sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		Name:          "op",
	}

	tests := []struct {
		name  string
		ratio float64
		want  sdktrace.SamplingDecision
	}{
		{name: "zero samples nothing", ratio: 0, want: sdktrace.Drop},
		{name: "one samples everything", ratio: 1, want: sdktrace.RecordAndSample},
		{name: "negative clamps to zero", ratio: -1, want: sdktrace.Drop},
		{name: "above one clamps to one", ratio: 5, want: sdktrace.RecordAndSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := telemetry.Sampler(tt.ratio).ShouldSample(params)
			assert.Equal(t, tt.want, result.Decision)
		})
	}
}
