// Package query defines the request/response DTOs for the probe's query
// protocol (§6 "Query protocol"): a transport-agnostic translation between
// sqlengine results/errors and the wire shape an HTTP or REPL front end
// would serialize. No listener lives here — that front end is an external
// collaborator per §1.
package query

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/engine"
	"github.com/forbearing/probing/sqlengine"
	"github.com/google/uuid"
)

// Request is the body of POST /query: an expression plus optional
// per-query options. RequestID correlates a request with its Response
// across logs and is assigned by Run when the caller leaves it blank — it
// has nothing to do with tracing's span/trace IDs, which stay strictly
// monotonic counters.
type Request struct {
	RequestID string  `json:"request_id,omitempty"`
	Expr      string  `json:"expr"`
	Opts      Options `json:"opts,omitempty"`
}

// Options mirrors sqlengine.QueryOptions at the wire boundary.
type Options struct {
	Limit *int `json:"limit,omitempty"`
}

func (o Options) toEngineOptions() sqlengine.QueryOptions {
	return sqlengine.QueryOptions{Limit: o.Limit}
}

// PayloadKind tags which variant Payload holds, since encoding/json can't
// express a tagged union directly.
type PayloadKind string

const (
	PayloadNil   PayloadKind = "nil"
	PayloadFrame PayloadKind = "dataframe"
	PayloadError PayloadKind = "error"
)

// Payload is the response's `payload` field: absent (PayloadNil), a
// dataframe rendered as its column names plus rows of cell strings in
// column order, or a structured error.
type Payload struct {
	Kind    PayloadKind   `json:"kind"`
	Columns []string      `json:"columns,omitempty"`
	Rows    [][]string    `json:"rows,omitempty"`
	Error   *PayloadError `json:"error,omitempty"`
}

// PayloadError carries the error kind name and message, the "one-line
// message with the error kind and the offending key/path" form §7
// mandates for the user-visible surface.
type PayloadError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the full `{payload, timestamp, success, message?}` shape of
// §6's query protocol.
type Response struct {
	RequestID string  `json:"request_id,omitempty"`
	Payload   Payload `json:"payload"`
	Timestamp int64   `json:"timestamp"` // microseconds since UNIX epoch
	Success   bool    `json:"success"`
	Message   string  `json:"message,omitempty"`
}

// Run executes req against e and translates the result into a Response.
// It never returns a Go error: every failure is folded into
// Response.Success=false / Response.Payload.Kind=PayloadError, since the
// query protocol reports failures as data, not transport errors.
func Run(e *engine.Engine, req Request, now time.Time) Response {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	df, err := e.Query(context.Background(), req.Expr, req.Opts.toEngineOptions())
	timestamp := now.UnixMicro()
	if err != nil {
		return Response{
			RequestID: requestID,
			Payload:   Payload{Kind: PayloadError, Error: toPayloadError(err)},
			Timestamp: timestamp,
			Success:   false,
			Message:   err.Error(),
		}
	}
	return Response{
		RequestID: requestID,
		Payload:   toPayload(df),
		Timestamp: timestamp,
		Success:   true,
	}
}

func toPayload(df *ele.DataFrame) Payload {
	if df == nil {
		return Payload{Kind: PayloadNil}
	}
	rows := make([][]string, df.NumRows())
	for i := range rows {
		row := df.Row(i)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		rows[i] = cells
	}
	return Payload{Kind: PayloadFrame, Columns: df.Names, Rows: rows}
}

func toPayloadError(err error) *PayloadError {
	code := "EngineError"
	switch {
	case errors.Is(err, sqlengine.ErrTableNotFound):
		code = "TableNotFound"
	case errors.Is(err, sqlengine.ErrNamespaceNotFound):
		code = "NamespaceNotFound"
	case errors.Is(err, sqlengine.ErrEngine):
		code = "EngineError"
	}
	return &PayloadError{Code: code, Message: err.Error()}
}
