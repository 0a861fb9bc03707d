package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestContextHandlerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf).With("component", "test")
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, span.SpanContext().TraceID().String(), record["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), record["span_id"])
	assert.Equal(t, "test", record["component"])
}

func TestContextHandlerWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Info("plain")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "trace_id")
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, "DEBUG", levelFromEnv().String())
	t.Setenv("LOG_LEVEL", "nonsense")
	assert.Equal(t, "INFO", levelFromEnv().String())
}

func TestSampleRatio(t *testing.T) {
	t.Setenv("TRACE_SAMPLE_RATIO", "")
	assert.Equal(t, 1.0, sampleRatio(nil))

	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")
	assert.Equal(t, 0.25, sampleRatio(nil))

	t.Setenv("TRACE_SAMPLE_RATIO", "2")
	assert.Equal(t, 1.0, sampleRatio(nil))
}
