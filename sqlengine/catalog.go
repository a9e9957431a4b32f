package sqlengine

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/plugin"
)

// RootCatalogName is the engine's single, fixed root catalog name (§3).
const RootCatalogName = "probe"

// ErrNamespaceNotFound and ErrTableNotFound are returned by Snapshot
// lookups when a query references a namespace or table that no plugin
// has registered.
var (
	ErrNamespaceNotFound = errors.New("namespace not found")
	ErrTableNotFound     = errors.New("table not found")
)

// namespace holds every table and namespace-provider plugin registered
// under one name. Tables registered directly ("table plugins") and
// tables enumerated dynamically by namespace providers are both visible
// through listTables/resolve.
type namespace struct {
	name      string
	tables    map[string]plugin.TableFactory
	providers []plugin.NamespaceProvider
}

func newNamespace(name string) *namespace {
	return &namespace{name: name, tables: make(map[string]plugin.TableFactory)}
}

// clone produces an independent copy so a Catalog.Snapshot taken now is
// unaffected by Enable calls that happen later (§5(iv): a statement sees
// a consistent snapshot of catalog state taken at plan time).
func (n *namespace) clone() *namespace {
	tables := make(map[string]plugin.TableFactory, len(n.tables))
	for k, v := range n.tables {
		tables[k] = v
	}
	providers := append([]plugin.NamespaceProvider(nil), n.providers...)
	return &namespace{name: n.name, tables: tables, providers: providers}
}

func (n *namespace) listTables() []string {
	seen := make(map[string]struct{})
	var out []string
	for name := range n.tables {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	for _, p := range n.providers {
		for _, name := range p.Tables() {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (n *namespace) resolve(name string) (plugin.Table, bool, error) {
	if factory, ok := n.tables[name]; ok {
		t, err := factory()
		if err != nil {
			return nil, false, err
		}
		return t, true, nil
	}
	for _, p := range n.providers {
		if t, ok := p.Table(name); ok {
			return t, true, nil
		}
	}
	return nil, false, nil
}

// Catalog is the probe root catalog: a map of namespaces, each holding
// tables contributed by plugins (§3, §4.5). The engine builder creates it
// in Build, before the first Enable, and it lives for the process.
type Catalog struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{namespaces: make(map[string]*namespace)}
}

// Enable registers a plugin's contribution under its namespace, creating
// the namespace on first use. Registering the same (namespace, name)
// table twice replaces the prior registration — the idempotent-replace
// resolution of §9's open question. Enable takes an exclusive lock but
// never blocks in-flight queries: those hold their own Snapshot (§4.5).
func (c *Catalog) Enable(p plugin.Plugin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ns, ok := c.namespaces[p.Namespace()]
	if !ok {
		ns = newNamespace(p.Namespace())
		c.namespaces[p.Namespace()] = ns
	}
	switch p.Kind() {
	case plugin.KindTable:
		ns.tables[p.TableName()] = p.NewTable
	case plugin.KindNamespace:
		ns.providers = append(ns.providers, p.Provider())
	}
}

// TableRef names one table's (namespace, table) coordinates, the shape
// SHOW TABLES enumerates.
type TableRef struct {
	Namespace string
	Table     string
}

// Snapshot is a point-in-time, independent view of the catalog taken at
// plan time. Later Enable calls on the live Catalog never mutate an
// already-taken Snapshot.
type Snapshot struct {
	namespaces map[string]*namespace
}

// Snapshot takes a consistent, independent copy of the catalog's current
// state.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*namespace, len(c.namespaces))
	for name, ns := range c.namespaces {
		out[name] = ns.clone()
	}
	return &Snapshot{namespaces: out}
}

// ListTables enumerates every (namespace, table) pair visible in this
// snapshot, sorted for deterministic SHOW TABLES output.
func (s *Snapshot) ListTables() []TableRef {
	var out []TableRef
	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, t := range s.namespaces[name].listTables() {
			out = append(out, TableRef{Namespace: name, Table: t})
		}
	}
	return out
}

// Resolve looks up one table by (namespace, table) within this snapshot.
func (s *Snapshot) Resolve(namespace, table string) (plugin.Table, error) {
	ns, ok := s.namespaces[namespace]
	if !ok {
		return nil, errors.Wrapf(ErrNamespaceNotFound, "%s", namespace)
	}
	t, ok, err := ns.resolve(table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "%s.%s", namespace, table)
	}
	return t, nil
}
