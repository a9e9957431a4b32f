package tracing_test

import (
	"testing"

	"github.com/forbearing/probing/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTraceCapture reproduces §8 scenario 6: a root span with one child,
// one mid-span event, both finished, observed through the ring buffer.
func TestTraceCapture(t *testing.T) {
	buf := tracing.NewRingBuffer(64)
	tracing.SetSink(buf)
	defer tracing.SetSink(nil)

	root := tracing.Root("work", tracing.KindInternal, nil)
	child := tracing.Child(root, "step", tracing.KindInternal, nil)
	require.NoError(t, child.AddEvent("mid", nil))
	require.NoError(t, child.Finish())
	require.NoError(t, root.Finish())

	rows := buf.Snapshot()

	var starts, ends, events int
	for _, r := range rows {
		switch r.RecordType {
		case "span_start":
			starts++
		case "span_end":
			ends++
		case "event":
			events++
			assert.Equal(t, "mid", r.Name)
		}
		assert.Equal(t, int64(root.TraceID), r.TraceID)
	}
	assert.Equal(t, 2, starts)
	assert.Equal(t, 2, ends)
	assert.Equal(t, 1, events)

	for _, r := range rows {
		if r.SpanID == int64(child.SpanID) && r.RecordType == "span_start" {
			require.NotNil(t, r.ParentID)
			assert.Equal(t, int64(root.SpanID), *r.ParentID)
		}
	}
}

func TestRingBufferDropsOldest(t *testing.T) {
	buf := tracing.NewRingBuffer(2)
	tracing.SetSink(buf)
	defer tracing.SetSink(nil)

	for i := 0; i < 5; i++ {
		s := tracing.Root("x", tracing.KindInternal, nil)
		require.NoError(t, s.Finish())
	}
	rows := buf.Snapshot()
	assert.Len(t, rows, 2)
}
