package sqlengine

import (
	"context"
	"testing"

	"github.com/forbearing/probing/configstore"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/forbearing/probing/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SetRoutesThroughWriteThrough(t *testing.T) {
	catalog := NewCatalog()
	store := configstore.New()
	registry := extension.New()
	session, err := NewSession(catalog, store, registry)
	require.NoError(t, err)
	defer session.Close()

	df, err := session.Query(context.Background(), "SET server.log_level = 'debug'", QueryOptions{})
	require.NoError(t, err)
	assert.Nil(t, df)

	v, ok := store.GetStr("server.log_level")
	require.True(t, ok)
	assert.Equal(t, "debug", v)
}

func TestSession_InformationSchemaDfSettings(t *testing.T) {
	catalog := NewCatalog()
	registry := extension.New()
	registry.Register(&stubExtension{})
	catalog.Enable(InformationSchemaPlugin(registry))

	session, err := NewSession(catalog, configstore.New(), registry)
	require.NoError(t, err)
	defer session.Close()

	df, err := session.Query(context.Background(), "SELECT * FROM information_schema.df_settings", QueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, df)
	assert.Equal(t, 1, df.NumRows())
	name, ok := df.Column("name")
	require.True(t, ok)
	assert.Equal(t, ele.Text("stub.option"), name.Get(0))
}

// TestSession_TraceEventTable reproduces §8 scenario 6 through the
// tracing.trace_event virtual table: a root span with one child, one
// mid-span event, both finished, must surface as two span_start rows and
// two span_end rows, one event row — five rows total, with the child's
// rows carrying the root's trace_id and parent_id.
func TestSession_TraceEventTable(t *testing.T) {
	buffer := tracing.NewRingBuffer(16)
	tracing.SetSink(buffer)
	defer tracing.SetSink(nil)

	root := tracing.Root("work", tracing.KindUnspecified, nil)
	child := tracing.Child(root, "step", tracing.KindUnspecified, nil)
	require.NoError(t, child.AddEvent("mid", nil))
	require.NoError(t, child.Finish())
	require.NoError(t, root.Finish())

	catalog := NewCatalog()
	catalog.Enable(TraceEventPlugin(buffer))

	session, err := NewSession(catalog, configstore.New(), extension.New())
	require.NoError(t, err)
	defer session.Close()

	df, err := session.Query(context.Background(), "SELECT * FROM tracing.trace_event", QueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, df)
	assert.Equal(t, 5, df.NumRows())

	recordType, ok := df.Column("record_type")
	require.True(t, ok)
	traceID, ok := df.Column("trace_id")
	require.True(t, ok)
	spanID, ok := df.Column("span_id")
	require.True(t, ok)
	parentID, ok := df.Column("parent_id")
	require.True(t, ok)
	name, ok := df.Column("name")
	require.True(t, ok)

	var starts, ends, events int
	for i := 0; i < df.NumRows(); i++ {
		rt, err := ele.TextFromEle(recordType.Get(i))
		require.NoError(t, err)
		tid, err := ele.I64FromEle(traceID.Get(i))
		require.NoError(t, err)
		assert.Equal(t, int64(root.TraceID), tid)

		switch rt {
		case "span_start":
			starts++
		case "span_end":
			ends++
		case "event":
			events++
			n, err := ele.TextFromEle(name.Get(i))
			require.NoError(t, err)
			assert.Equal(t, "mid", n)
		}

		if rt == "span_start" {
			sid, err := ele.I64FromEle(spanID.Get(i))
			require.NoError(t, err)
			if sid == int64(child.SpanID) {
				pid, err := ele.I64FromEle(parentID.Get(i))
				require.NoError(t, err)
				assert.Equal(t, int64(root.SpanID), pid)
			}
		}
	}
	assert.Equal(t, 2, starts)
	assert.Equal(t, 2, ends)
	assert.Equal(t, 1, events)
}

type stubExtension struct{}

func (e *stubExtension) Name() string { return "StubExtension" }
func (e *stubExtension) Set(localKey string, value ele.Ele) (ele.Ele, error) {
	return ele.Nil(), extension.ErrUnsupportedOption
}
func (e *stubExtension) Get(localKey string) (ele.Ele, error) {
	return ele.Nil(), extension.ErrUnsupportedOption
}
func (e *stubExtension) Options() []extension.Option {
	return []extension.Option{{Key: "option", Value: extension.Present(ele.Text("value")), Help: "a stub option"}}
}
