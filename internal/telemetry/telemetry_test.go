package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", false)

	logger.Info("hello", "entry_id", 7)
	logger.Debug("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, serviceName, line["service"])
	assert.Equal(t, float64(7), line["entry_id"])
}

func TestNewLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "text", true)

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestInit_NoDSN(t *testing.T) {
	shutdown, err := Init(Config{})
	require.NoError(t, err)
	shutdown()
}

func TestSpan_WithoutSentry(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "Test.Op", SpanAttributes{ClientID: 1, EntryID: 2, Operation: "op"})
	defer span.End()

	assert.NotNil(t, ctx)
	span.SetCount("results", 3)
	span.SetError(errors.New("boom"))
	CaptureError(ctx, errors.New("boom"))
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestSampler(t *testing.T) {
	sample := sampler(0.25)

	health := &sentry.Span{Name: "GET /health"}
	assert.Equal(t, 0.0, sample(sentry.SamplingContext{Span: health}))

	root := &sentry.Span{Name: "POST /deliverables/generate"}
	assert.Equal(t, 0.25, sample(sentry.SamplingContext{Span: root}))

	child := &sentry.Span{Name: "Retriever.Retrieve", ParentSpanID: sentry.SpanID{1}, Sampled: sentry.SampledTrue}
	assert.Equal(t, 1.0, sample(sentry.SamplingContext{Span: child}))
}

func TestDropCancelled(t *testing.T) {
	event := &sentry.Event{Message: "x"}

	assert.Nil(t, dropCancelled(event, &sentry.EventHint{OriginalException: fmt.Errorf("generate: %w", context.Canceled)}))
	assert.Same(t, event, dropCancelled(event, &sentry.EventHint{OriginalException: errors.New("db down")}))
	assert.Same(t, event, dropCancelled(event, nil))
}
