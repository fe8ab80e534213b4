package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordWait(ctx, "x", time.Second, true)
		m.RecordSet(ctx, "x", 3)
		m.RecordClear(ctx, "x")
	})
}

func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	gotCtx, span := sm.StartWaitSpan(ctx, "evt-1")
	assert.Equal(t, ctx, gotCtx, "context must pass through unchanged")
	assert.NotNil(t, span)
	assert.False(t, span.IsRecording())

	assert.NotPanics(t, func() {
		sm.EndSpanWithError(span, assert.AnError)
		sm.EndSpanWithError(nil, nil)
		sm.AddSpanEvent(ctx, "ignored", attribute.Bool("x", true))
	})
}
