package tracing

import (
	"encoding/json"
	"sync"
	"time"
)

// Row is one row of the trace_event virtual table (§4.8).
type Row struct {
	RecordType       string // "span_start" | "span_end" | "event"
	TraceID          int64
	SpanID           int64
	ParentID         *int64
	Name             string
	Timestamp        int64 // ns since UNIX epoch
	ThreadID         int64
	KindTag          *string
	LocationTag      *string
	Attributes       *string // JSON, span_start only
	EventAttributes  *string // JSON, event rows only
}

// RingBuffer is a bounded, capped, drop-oldest buffer of trace_event rows.
// It implements Sink, so installing one with SetSink is all that's needed
// to make the tracing table (§4.8) observe span activity. Overflow policy
// is drop-oldest per §3's stated default; RingBuffer is the "production
// setting should make it configurable" knob named in §9 as an open
// question — NewRingBuffer's capacity parameter is that knob.
type RingBuffer struct {
	mu       sync.Mutex
	cap      int
	rows     []Row
	start    int // index of oldest row within rows (when full, rows acts as a circular window)
	size     int
}

// NewRingBuffer creates a buffer holding at most capacity rows.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingBuffer{cap: capacity, rows: make([]Row, capacity)}
}

func (b *RingBuffer) push(r Row) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := (b.start + b.size) % b.cap
	b.rows[idx] = r
	if b.size < b.cap {
		b.size++
	} else {
		b.start = (b.start + 1) % b.cap
	}
}

// Snapshot returns the buffered rows in arrival order.
func (b *RingBuffer) Snapshot() []Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Row, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.rows[(b.start+i)%b.cap]
	}
	return out
}

func (b *RingBuffer) SpanStarted(s *Span) {
	var parent *int64
	if s.ParentID != nil {
		p := int64(*s.ParentID)
		parent = &p
	}
	var kindTag *string
	if s.Kind != KindUnspecified {
		k := s.Kind.String()
		kindTag = &k
	}
	var locTag *string
	if s.Location != nil {
		l := s.Location.String()
		locTag = &l
	}
	attrsJSON := marshalAttrs(s.Attrs())
	b.push(Row{
		RecordType:  "span_start",
		TraceID:     int64(s.TraceID),
		SpanID:      int64(s.SpanID),
		ParentID:    parent,
		Name:        s.Name,
		Timestamp:   s.Start.UnixNano(),
		ThreadID:    int64(s.ThreadID),
		KindTag:     kindTag,
		LocationTag: locTag,
		Attributes:  &attrsJSON,
	})
}

func (b *RingBuffer) SpanEnded(s *Span) {
	var parent *int64
	if s.ParentID != nil {
		p := int64(*s.ParentID)
		parent = &p
	}
	ts, ok := s.EndTime()
	if !ok {
		ts = time.Now()
	}
	b.push(Row{
		RecordType: "span_end",
		TraceID:    int64(s.TraceID),
		SpanID:     int64(s.SpanID),
		ParentID:   parent,
		Name:       s.Name,
		Timestamp:  ts.UnixNano(),
		ThreadID:   int64(s.ThreadID),
	})
}

func (b *RingBuffer) Event(s *Span, e Event) {
	var parent *int64
	if s.ParentID != nil {
		p := int64(*s.ParentID)
		parent = &p
	}
	attrsJSON := marshalEventAttrs(e.Attributes)
	b.push(Row{
		RecordType:      "event",
		TraceID:         int64(s.TraceID),
		SpanID:          int64(s.SpanID),
		ParentID:        parent,
		Name:            e.Name,
		Timestamp:       e.Timestamp.UnixNano(),
		ThreadID:        int64(s.ThreadID),
		EventAttributes: &attrsJSON,
	})
}

func marshalAttrs(attrs []Attr) string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value.String()
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func marshalEventAttrs(attrs []Attr) string {
	return marshalAttrs(attrs)
}
