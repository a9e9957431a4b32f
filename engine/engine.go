// Package engine assembles the configuration store, extension registry and
// SQL engine into one ready-to-query handle (§4.6, C6). It is the thinnest
// component in the core — it owns no state of its own beyond wiring — the
// way the teacher's bootstrap package owns no business logic, only sequencing
// of other packages' Init functions.
package engine

import (
	"context"
	"sync"

	"github.com/forbearing/probing/configstore"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/forbearing/probing/logger"
	"github.com/forbearing/probing/plugin"
	"github.com/forbearing/probing/sqlengine"
	"github.com/forbearing/probing/tracing"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

// DefaultNamespace is the catalog namespace Builder targets when none is
// given, matching the "probe" root catalog of §3.
const DefaultNamespace = sqlengine.RootCatalogName

// Engine is the built, queryable handle: catalog + store + registry wired
// into one SQL session. It is cheaply shareable (§9 "Engine clone
// semantics") — callers pass *Engine around by pointer rather than copying
// the catalog.
type Engine struct {
	Catalog  *sqlengine.Catalog
	Store    *configstore.Store
	Registry *extension.Registry
	Session  *sqlengine.Session

	namespace string
}

// Query runs sql against the engine's session, honoring opts. Every call is
// wrapped in a root span (§4.8): there's no numeric call-stack frame to
// attach it to at this boundary, so the span's Location carries a compact
// sortable xid instead, distinguishing concurrent queries in the
// tracing.trace_event table from each other without colliding with the
// strictly-monotonic trace_id/span_id counters tracing allocates per span.
func (e *Engine) Query(ctx context.Context, sql string, opts sqlengine.QueryOptions) (*ele.DataFrame, error) {
	loc := tracing.UnknownLocation(xid.New().String())
	span := tracing.Root("engine.Query", tracing.KindInternal, &loc)

	df, err := e.Session.Query(ctx, sql, opts)
	if err != nil {
		_ = span.EndError(err)
		return nil, err
	}
	_ = span.End()
	return df, nil
}

// Close releases the underlying session's scan pool.
func (e *Engine) Close() {
	e.Session.Close()
}

// Builder accumulates the inputs to Build per §4.6: a default namespace, a
// list of seed plugins, and a list of seed extensions whose DataSrc hook (if
// any) contributes a plugin at build time.
type Builder struct {
	namespace      string
	seedPlugins    []plugin.Plugin
	seedExtensions []extension.Extension

	store    *configstore.Store
	registry *extension.Registry
}

// NewBuilder constructs a Builder defaulting the namespace to "probe" and
// the store/registry to the process-wide globals. Tests should override
// WithStore/WithRegistry to get isolated state.
func NewBuilder() *Builder {
	return &Builder{
		namespace: DefaultNamespace,
		store:     configstore.Global(),
		registry:  extension.Global(),
	}
}

// WithNamespace overrides the default namespace.
func (b *Builder) WithNamespace(namespace string) *Builder {
	b.namespace = namespace
	return b
}

// WithStore overrides the configuration store the built engine uses.
func (b *Builder) WithStore(store *configstore.Store) *Builder {
	b.store = store
	return b
}

// WithRegistry overrides the extension registry the built engine uses.
func (b *Builder) WithRegistry(registry *extension.Registry) *Builder {
	b.registry = registry
	return b
}

// WithPlugin appends an explicit seed plugin, enabled unconditionally at
// build time (step 5 of §4.6).
func (b *Builder) WithPlugin(p plugin.Plugin) *Builder {
	b.seedPlugins = append(b.seedPlugins, p)
	return b
}

// WithExtension registers ext into the builder's registry immediately and
// records it as a seed extension, so its DataSrc hook (if it implements
// extension.DataSourcer) is consulted during Build (step 4 of §4.6).
func (b *Builder) WithExtension(ext extension.Extension) *Builder {
	b.registry.Register(ext)
	b.seedExtensions = append(b.seedExtensions, ext)
	return b
}

// Build assembles catalog, store, registry and session per §4.6's five
// steps and returns the ready Engine.
func (b *Builder) Build(ctx context.Context) (*Engine, error) {
	log := logger.Named(logger.SubsystemEngine)

	// Step 1: materialize the catalog and enable information_schema.
	catalog := sqlengine.NewCatalog()
	catalog.Enable(sqlengine.InformationSchemaPlugin(b.registry))

	// Step 2+3: the options adapter and session context are one object in
	// this implementation — NewSession already wires the registry in, so
	// SQL-level SET statements route through it without a separate adapter
	// type.
	session, err := sqlengine.NewSession(catalog, b.store, b.registry)
	if err != nil {
		return nil, err
	}

	// Step 4: seed extensions contribute their catalog plugin, if any.
	for _, ext := range b.seedExtensions {
		src, ok := ext.(extension.DataSourcer)
		if !ok {
			continue
		}
		p, ok := src.DataSrc(b.namespace, nil)
		if !ok {
			continue
		}
		catalog.Enable(p)
		log.Debugw("seed extension contributed plugin", "extension", ext.Name(), "namespace", p.Namespace())
	}

	// Step 5: explicit seed plugins.
	for _, p := range b.seedPlugins {
		catalog.Enable(p)
	}

	return &Engine{
		Catalog:   catalog,
		Store:     b.store,
		Registry:  b.registry,
		Session:   session,
		namespace: b.namespace,
	}, nil
}

var (
	handleMu sync.RWMutex
	handle   *Engine
)

// Global returns the process-wide engine handle, or nil if none has been
// built yet. Reads take the handle's RWMutex for its read side, matching
// §4.6 "wrapped once in a process-global handle (readers-writer...)".
func Global() *Engine {
	handleMu.RLock()
	defer handleMu.RUnlock()
	return handle
}

// SetGlobal installs e as the process-wide engine handle, replacing any
// previous one. Subsequent reconfiguration (§4.6) mutates through the new
// handle rather than this function being called again mid-lifetime.
func SetGlobal(e *Engine) {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle = e
	zap.S().Named(logger.SubsystemEngine).Info("engine handle installed")
}
