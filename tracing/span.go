// Package tracing implements the span/event capture core (§3, §4.2, §4.8
// of the design). IDs are allocated from strictly-monotonic per-process
// atomic counters; span mutation after Finish fails with
// ErrSpanAlreadyClosed rather than silently corrupting state.
package tracing

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/tracing/threadid"
)

// ErrSpanAlreadyClosed is returned by any mutation attempted on a span
// whose End is already set.
var ErrSpanAlreadyClosed = errors.New("span already closed")

var (
	nextTraceID uint64
	nextSpanID  uint64
)

func allocTraceID() uint64 { return atomic.AddUint64(&nextTraceID, 1) }
func allocSpanID() uint64  { return atomic.AddUint64(&nextSpanID, 1) }

// Kind mirrors the original source's SpanKind enum.
type Kind int

const (
	KindUnspecified Kind = iota
	KindInternal
	KindClient
	KindServer
	KindProducer
	KindConsumer
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindProducer:
		return "producer"
	case KindConsumer:
		return "consumer"
	default:
		return "unspecified"
	}
}

// ParseKind parses the String() output back into a Kind; unrecognized
// input returns KindUnspecified, never an error, since span kind is
// advisory metadata.
func ParseKind(s string) Kind {
	switch s {
	case "internal":
		return KindInternal
	case "client":
		return KindClient
	case "server":
		return KindServer
	case "producer":
		return KindProducer
	case "consumer":
		return KindConsumer
	default:
		return KindUnspecified
	}
}

// Location identifies where a span or event originated: either a known
// numeric frame/line id, or an opaque unknown tag (e.g. a symbol name that
// could not be resolved to a frame id).
type Location struct {
	known   bool
	id      uint64
	unknown string
}

func KnownLocation(id uint64) Location    { return Location{known: true, id: id} }
func UnknownLocation(tag string) Location { return Location{unknown: tag} }

func (l Location) IsKnown() bool  { return l.known }
func (l Location) ID() uint64     { return l.id }
func (l Location) Tag() string    { return l.unknown }

func (l Location) String() string {
	if l.known {
		return formatUint(l.id)
	}
	return l.unknown
}

func formatUint(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Attr is a single span/event attribute.
type Attr struct {
	Key   string
	Value ele.Ele
}

// Event is a point-in-time occurrence recorded within a span.
type Event struct {
	Name       string
	Timestamp  time.Time
	Attributes []Attr
	Location   *Location
}

// Status reports whether a span has ended.
type Status int

const (
	StatusRunning Status = iota
	StatusCompleted
)

// Sink receives lifecycle events as a span is created, mutated and
// finished. The tracing table (§4.8) is implemented as a Sink that appends
// rows to a ring buffer; tests can substitute a recording Sink.
type Sink interface {
	SpanStarted(s *Span)
	SpanEnded(s *Span)
	Event(s *Span, e Event)
}

// globalSink is the process-wide emit-to-buffer hook. A nil sink means
// spans are tracked in-process only and never surfaced as table rows.
var (
	sinkMu sync.RWMutex
	sink   Sink
)

// SetSink installs the process-wide span sink. Passing nil disables
// emission (spans still function, they're simply not observed).
func SetSink(s Sink) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	sink = s
}

func currentSink() Sink {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sink
}

// Span is a named, timed interval of work, optionally nested inside a
// parent span sharing the same TraceID.
type Span struct {
	mu sync.Mutex

	TraceID  uint64
	SpanID   uint64
	ParentID *uint64
	ThreadID uint64
	Name     string
	Start    time.Time
	end      *time.Time
	Kind     Kind
	Location *Location
	attrs    []Attr
	events   []Event
}

// Root allocates a fresh trace+span id pair and starts a root span.
func Root(name string, kind Kind, loc *Location) *Span {
	s := &Span{
		TraceID:  allocTraceID(),
		SpanID:   allocSpanID(),
		ThreadID: threadid.Current(),
		Name:     name,
		Start:    time.Now(),
		Kind:     kind,
		Location: loc,
	}
	if snk := currentSink(); snk != nil {
		snk.SpanStarted(s)
	}
	return s
}

// Child starts a span sharing the parent's TraceID, with a fresh SpanID
// and the current goroutine's thread id — the child may run on a
// different thread than its parent.
func Child(parent *Span, name string, kind Kind, loc *Location) *Span {
	parentSpanID := parent.SpanID
	s := &Span{
		TraceID:  parent.TraceID,
		SpanID:   allocSpanID(),
		ParentID: &parentSpanID,
		ThreadID: threadid.Current(),
		Name:     name,
		Start:    time.Now(),
		Kind:     kind,
		Location: loc,
	}
	if snk := currentSink(); snk != nil {
		snk.SpanStarted(s)
	}
	return s
}

// IsEnded reports whether Finish has been called.
func (s *Span) IsEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.end != nil
}

// StatusOf reports StatusCompleted iff the span has ended.
func (s *Span) StatusOf() Status {
	if s.IsEnded() {
		return StatusCompleted
	}
	return StatusRunning
}

// Duration returns end-start once the span has ended, or false otherwise.
func (s *Span) Duration() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.end == nil {
		return 0, false
	}
	return s.end.Sub(s.Start), true
}

// AddAttr attaches an attribute to an active span. Fails with
// ErrSpanAlreadyClosed without mutating state if the span has ended.
func (s *Span) AddAttr(key string, value ele.Ele) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.end != nil {
		return ErrSpanAlreadyClosed
	}
	s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	return nil
}

// AddEvent records a point-in-time event on an active span, emitting one
// "event" row to the sink if installed. Fails with ErrSpanAlreadyClosed
// without mutating state if the span has ended.
func (s *Span) AddEvent(name string, attrs []Attr) error {
	s.mu.Lock()
	if s.end != nil {
		s.mu.Unlock()
		return ErrSpanAlreadyClosed
	}
	ev := Event{Name: name, Timestamp: time.Now(), Attributes: attrs}
	s.events = append(s.events, ev)
	s.mu.Unlock()

	if snk := currentSink(); snk != nil {
		snk.Event(s, ev)
	}
	return nil
}

// Finish ends the span, recording the current time as End. Idempotent:
// repeated calls keep the first end time, emit no further span_end row
// and return nil (not an error), matching the "idempotent in spirit"
// wording of §4.2.
func (s *Span) Finish() error {
	s.mu.Lock()
	first := s.end == nil
	if first {
		now := time.Now()
		s.end = &now
	}
	s.mu.Unlock()
	if !first {
		return nil
	}

	if snk := currentSink(); snk != nil {
		snk.SpanEnded(s)
	}
	return nil
}

// End is an alias for Finish.
func (s *Span) End() error { return s.Finish() }

// EndError records error.message (and error.kind, when some error in err's
// chain has a Kind() string method) as an attribute before finishing the
// span. On an already-ended span it returns ErrSpanAlreadyClosed.
func (s *Span) EndError(err error) error {
	s.mu.Lock()
	closed := s.end != nil
	s.mu.Unlock()
	if closed {
		return ErrSpanAlreadyClosed
	}
	if err != nil {
		_ = s.AddAttr("error.message", ele.Text(err.Error()))
		var kinder interface{ Kind() string }
		if errors.As(err, &kinder) {
			_ = s.AddAttr("error.kind", ele.Text(kinder.Kind()))
		}
	}
	return s.Finish()
}

// Attrs returns a snapshot of the span's attributes.
func (s *Span) Attrs() []Attr {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Attr, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Events returns a snapshot of the span's recorded events.
func (s *Span) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// EndTime returns the end time and whether the span has ended.
func (s *Span) EndTime() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.end == nil {
		return time.Time{}, false
	}
	return *s.end, true
}
