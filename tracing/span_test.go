package tracing_test

import (
	"testing"

	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanIDMonotonicity(t *testing.T) {
	a := tracing.Root("a", tracing.KindInternal, nil)
	b := tracing.Root("b", tracing.KindInternal, nil)
	assert.Less(t, a.SpanID, b.SpanID)
	assert.Less(t, a.TraceID, b.TraceID)
}

func TestChildSpanInheritsTrace(t *testing.T) {
	root := tracing.Root("work", tracing.KindInternal, nil)
	child := tracing.Child(root, "step", tracing.KindInternal, nil)
	assert.Equal(t, root.TraceID, child.TraceID)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.SpanID, *child.ParentID)
}

func TestSpanLifecycle(t *testing.T) {
	s := tracing.Root("work", tracing.KindInternal, nil)
	require.NoError(t, s.Finish())
	assert.True(t, s.IsEnded())
	assert.Equal(t, tracing.StatusCompleted, s.StatusOf())

	_, ok := s.Duration()
	assert.True(t, ok)

	err := s.AddAttr("k", ele.Text("v"))
	assert.ErrorIs(t, err, tracing.ErrSpanAlreadyClosed)
	assert.Empty(t, s.Attrs())

	err = s.AddEvent("late", nil)
	assert.ErrorIs(t, err, tracing.ErrSpanAlreadyClosed)
	assert.Empty(t, s.Events())
}

func TestFinishIdempotentKeepsFirstEndTime(t *testing.T) {
	s := tracing.Root("work", tracing.KindInternal, nil)
	require.NoError(t, s.Finish())
	first, _ := s.EndTime()
	require.NoError(t, s.Finish())
	second, _ := s.EndTime()
	assert.Equal(t, first, second)
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []tracing.Kind{tracing.KindInternal, tracing.KindClient, tracing.KindServer, tracing.KindProducer, tracing.KindConsumer} {
		assert.Equal(t, k, tracing.ParseKind(k.String()))
	}
	assert.Equal(t, tracing.KindUnspecified, tracing.ParseKind("bogus"))
}
