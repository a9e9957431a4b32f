// Package sqlengine implements the SQL engine (C5, §4.5): a
// session-scoped query context holding a hierarchical catalog
// (catalog -> namespace -> table) that drives a columnar planner/
// executor. Per §4.5 the planner/executor itself is not the core
// invention; the core invention is the catalog<->extension mapping in
// catalog.go. The engine wraps pg_query_go (sqlengine/parser) for real
// SQL grammar rather than hand-rolling a tokenizer.
package sqlengine

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/configstore"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/forbearing/probing/sqlengine/parser"
	"github.com/forbearing/probing/writethrough"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/maxrichie5/go-sqlfmt/sqlfmt"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ErrEngine aggregates parse/binder/planner/execution/internal failures
// (§7's EngineError). errors.Is(err, ErrEngine) holds for every failure
// Query returns; errors.As/errors.Is against the wrapped cause still
// reaches the original error via errors.Mark's preserved chain.
var ErrEngine = errors.New("sql engine error")

const statementCacheSize = 256

const scanPoolSize = 8

// QueryOptions mirrors the query protocol's opts (§6): an optional
// caller-imposed row ceiling, independent of any SQL-level LIMIT.
type QueryOptions struct {
	Limit *int
}

// Session is a query context bound to one catalog snapshot lineage, one
// configuration store, and one extension registry. Sessions are cheap:
// NewSession's statement cache and scan pool are the only owned
// resources, released by Close.
type Session struct {
	catalog  *Catalog
	store    *configstore.Store
	registry *extension.Registry
	cache    *lru.Cache[string, *parser.Statement]
	pool     *ants.Pool
	log      *zap.SugaredLogger
}

// NewSession builds a session over catalog, backed by store/registry for
// SET routing (§4.5's "register_extension_options").
func NewSession(catalog *Catalog, store *configstore.Store, registry *extension.Registry) (*Session, error) {
	cache, err := lru.New[string, *parser.Statement](statementCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "build statement cache")
	}
	pool, err := ants.NewPool(scanPoolSize)
	if err != nil {
		return nil, errors.Wrap(err, "build scan pool")
	}
	return &Session{
		catalog:  catalog,
		store:    store,
		registry: registry,
		cache:    cache,
		pool:     pool,
		log:      zap.S().Named("sqlengine"),
	}, nil
}

// Close releases the session's scan pool. Safe to call once per session.
func (s *Session) Close() { s.pool.Release() }

// Query parses, plans and executes sql, returning the result dataframe or
// nil when the result set is empty (§3, §8 scenario 4) — never a
// zero-row dataframe. This is the engine's "sql()" operation of §4.5.
func (s *Session) Query(ctx context.Context, sql string, opts QueryOptions) (*ele.DataFrame, error) {
	stmt, err := s.parse(sql)
	if err != nil {
		return nil, err
	}

	// Plan-time catalog snapshot (§5(iv)): later Enable calls never
	// affect a statement already past this point.
	snapshot := s.catalog.Snapshot()

	switch {
	case stmt.ShowTables != nil:
		return s.execShowTables(snapshot)
	case stmt.Set != nil:
		return nil, s.execSet(stmt.Set)
	case stmt.Select != nil:
		return s.execSelect(ctx, snapshot, stmt.Select, opts)
	default:
		return nil, errors.Mark(errors.New("empty parsed statement"), ErrEngine)
	}
}

func (s *Session) parse(sql string) (*parser.Statement, error) {
	if cached, ok := s.cache.Get(sql); ok {
		return cached, nil
	}
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse %q", sql), ErrEngine)
	}
	s.cache.Add(sql, stmt)
	if s.log.Desugar().Core().Enabled(zap.DebugLevel) {
		s.log.Debugw("parsed statement", "sql", sqlfmt.Format(sql))
	}
	return stmt, nil
}

func (s *Session) execShowTables(snapshot *Snapshot) (*ele.DataFrame, error) {
	refs := snapshot.ListTables()
	if len(refs) == 0 {
		return nil, nil
	}
	namespaces := make([]string, len(refs))
	tables := make([]string, len(refs))
	for i, r := range refs {
		namespaces[i] = r.Namespace
		tables[i] = r.Table
	}
	df, err := ele.NewDataFrame(
		[]string{"namespace", "table"},
		[]ele.Seq{ele.NewSeqText(namespaces), ele.NewSeqText(tables)},
	)
	if err != nil {
		return nil, errors.Mark(err, ErrEngine)
	}
	return df, nil
}

func (s *Session) execSet(set *parser.SetStatement) error {
	if err := writethrough.WriteTo(s.store, s.registry, set.Key, set.Value); err != nil {
		return errors.Mark(err, ErrEngine)
	}
	return nil
}

func (s *Session) execSelect(ctx context.Context, snapshot *Snapshot, sel *parser.SelectStatement, opts QueryOptions) (*ele.DataFrame, error) {
	if sel.Table == "" {
		return s.execLiteralSelect(sel, opts)
	}
	return s.execTableSelect(ctx, snapshot, sel, opts)
}

func (s *Session) execLiteralSelect(sel *parser.SelectStatement, opts QueryOptions) (*ele.DataFrame, error) {
	if sel.Where != nil {
		ok, err := evalLiteralWhere(sel.Where)
		if err != nil {
			return nil, errors.Mark(err, ErrEngine)
		}
		if !ok {
			return nil, nil
		}
	}

	names := make([]string, len(sel.Targets))
	cols := make([]ele.Seq, len(sel.Targets))
	for i, t := range sel.Targets {
		if t.Literal == nil {
			return nil, errors.Mark(errors.New("column reference without a FROM clause"), ErrEngine)
		}
		names[i] = "?column?"
		cols[i] = literalSeq(*t.Literal)
	}

	df, err := ele.NewDataFrame(names, cols)
	if err != nil {
		return nil, errors.Mark(err, ErrEngine)
	}

	limit := effectiveLimit(sel.Limit, opts.Limit)
	df, err = limitRows(df, limit)
	if err != nil {
		return nil, errors.Mark(err, ErrEngine)
	}
	if df.NumRows() == 0 {
		return nil, nil
	}
	return df, nil
}

func (s *Session) execTableSelect(ctx context.Context, snapshot *Snapshot, sel *parser.SelectStatement, opts QueryOptions) (*ele.DataFrame, error) {
	table, err := snapshot.Resolve(sel.Namespace, sel.Table)
	if err != nil {
		return nil, errors.Mark(err, ErrEngine)
	}

	df, err := s.scan(ctx, table)
	if err != nil {
		return nil, errors.Mark(err, ErrEngine)
	}
	if df == nil {
		return nil, nil
	}

	df, err = filterRows(df, sel.Where)
	if err != nil {
		return nil, errors.Mark(err, ErrEngine)
	}
	df, err = projectColumns(df, sel.Targets)
	if err != nil {
		return nil, errors.Mark(err, ErrEngine)
	}
	df, err = limitRows(df, effectiveLimit(sel.Limit, opts.Limit))
	if err != nil {
		return nil, errors.Mark(err, ErrEngine)
	}
	if df.NumRows() == 0 {
		return nil, nil
	}
	return df, nil
}

// scanResult carries a table Scan's outcome across the ants pool's
// worker goroutine back to the caller.
type scanResult struct {
	df  *ele.DataFrame
	err error
}

// scan runs table.Scan on the session's bounded goroutine pool rather
// than the calling goroutine, so a burst of concurrent Query calls
// (§8 scenario 5) is throttled to scanPoolSize simultaneous scans instead
// of spawning one goroutine per query unboundedly.
func (s *Session) scan(ctx context.Context, table interface {
	Scan(ctx context.Context) (*ele.DataFrame, error)
}) (*ele.DataFrame, error) {
	done := make(chan scanResult, 1)
	err := s.pool.Submit(func() {
		df, err := table.Scan(ctx)
		done <- scanResult{df: df, err: err}
	})
	if err != nil {
		return nil, errors.Wrap(err, "submit scan to pool")
	}
	select {
	case r := <-done:
		return r.df, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
