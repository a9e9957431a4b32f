package sqlengine

import (
	"context"

	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/plugin"
	"github.com/forbearing/probing/tracing"
)

// TraceEventPlugin builds the trace_event virtual table plugin (§4.8),
// the bridge between the tracing core (C2) and the catalog (C5). It
// lives in the "tracing" namespace and wraps a tracing.RingBuffer
// Snapshot directly — the schema matches §4.8's column table exactly.
func TraceEventPlugin(buffer *tracing.RingBuffer) plugin.Plugin {
	return plugin.NewTablePlugin("tracing", "trace_event", func() (plugin.Table, error) {
		return &traceEventTable{buffer: buffer}, nil
	})
}

type traceEventTable struct {
	buffer *tracing.RingBuffer
}

func (t *traceEventTable) Schema() []plugin.Field {
	return []plugin.Field{
		{Name: "record_type", Kind: ele.SeqKindText},
		{Name: "trace_id", Kind: ele.SeqKindI64},
		{Name: "span_id", Kind: ele.SeqKindI64},
		{Name: "parent_id", Kind: ele.SeqKindI64},
		{Name: "name", Kind: ele.SeqKindText},
		{Name: "timestamp", Kind: ele.SeqKindI64},
		{Name: "thread_id", Kind: ele.SeqKindI64},
		{Name: "kind", Kind: ele.SeqKindText},
		{Name: "location", Kind: ele.SeqKindText},
		{Name: "attributes", Kind: ele.SeqKindText},
		{Name: "event_attributes", Kind: ele.SeqKindText},
	}
}

func (t *traceEventTable) Scan(ctx context.Context) (*ele.DataFrame, error) {
	rows := t.buffer.Snapshot()

	recordType := make([]string, len(rows))
	traceID := make([]int64, len(rows))
	spanID := make([]int64, len(rows))
	parentID := make([]int64, len(rows))
	name := make([]string, len(rows))
	timestamp := make([]int64, len(rows))
	threadID := make([]int64, len(rows))
	kind := make([]string, len(rows))
	location := make([]string, len(rows))
	attributes := make([]string, len(rows))
	eventAttributes := make([]string, len(rows))

	for i, r := range rows {
		recordType[i] = r.RecordType
		traceID[i] = r.TraceID
		spanID[i] = r.SpanID
		if r.ParentID != nil {
			parentID[i] = *r.ParentID
		}
		name[i] = r.Name
		timestamp[i] = r.Timestamp
		threadID[i] = r.ThreadID
		if r.KindTag != nil {
			kind[i] = *r.KindTag
		}
		if r.LocationTag != nil {
			location[i] = *r.LocationTag
		}
		if r.Attributes != nil {
			attributes[i] = *r.Attributes
		}
		if r.EventAttributes != nil {
			eventAttributes[i] = *r.EventAttributes
		}
	}

	return ele.NewDataFrame(
		[]string{"record_type", "trace_id", "span_id", "parent_id", "name", "timestamp", "thread_id", "kind", "location", "attributes", "event_attributes"},
		[]ele.Seq{
			ele.NewSeqText(recordType),
			ele.NewSeqI64(traceID),
			ele.NewSeqI64(spanID),
			ele.NewSeqI64(parentID),
			ele.NewSeqText(name),
			ele.NewSeqI64(timestamp),
			ele.NewSeqI64(threadID),
			ele.NewSeqText(kind),
			ele.NewSeqText(location),
			ele.NewSeqText(attributes),
			ele.NewSeqText(eventAttributes),
		},
	)
}
