// Package plugin defines the contract by which the SQL engine's catalog
// (§4.5) is extended with tables and namespaces, and the table/row shape
// those contributions speak in. It sits below both extension (C4) and
// sqlengine (C5) so neither has to import the other: an extension's
// DataSrc hook returns a plugin.Plugin, and the engine's Enable consumes
// one, without the two packages knowing about each other's internals.
package plugin

import (
	"context"

	"github.com/forbearing/probing/ele"
)

// Field describes one column of a table's schema.
type Field struct {
	Name string
	Kind ele.SeqKind
}

// Table is a columnar data source. Namespace plugins enumerate tables by
// name; table plugins wrap exactly one.
type Table interface {
	Schema() []Field
	// Scan produces the table's current contents as a columnar batch.
	// Returning a nil *ele.DataFrame with a nil error means "no rows" —
	// callers distinguish that from an absent table, which is an error.
	Scan(ctx context.Context) (*ele.DataFrame, error)
}

// Kind tags which of the two plugin shapes a Plugin value carries. Modeled
// as a tagged variant (§9 "Plugin polymorphism") rather than dynamic
// method lookup on an open interface hierarchy.
type Kind int

const (
	KindTable Kind = iota
	KindNamespace
)

// TableFactory builds a Table instance. The catalog stores the factory
// when the plugin is enabled and calls it each time a query resolves the
// table. Most implementations simply close over already-constructed state.
type TableFactory func() (Table, error)

// NamespaceProvider lets a namespace plugin enumerate and resolve tables
// on demand, supporting namespaces whose table set changes at runtime
// (e.g. one table per currently-loaded extension).
type NamespaceProvider interface {
	// Tables lists the currently available table names in this namespace.
	Tables() []string
	// Table resolves one table by name, or (nil, false) if it doesn't
	// currently exist.
	Table(name string) (Table, bool)
}

// Plugin is either a single named table or an entire dynamic namespace,
// to be registered into the engine's catalog with Enable.
type Plugin struct {
	kind      Kind
	namespace string
	name      string // table name; empty for a namespace plugin
	newTable  TableFactory
	provider  NamespaceProvider
}

// NewTablePlugin builds a plugin that adds a single table under
// probe.<namespace>.<name>.
func NewTablePlugin(namespace, name string, newTable TableFactory) Plugin {
	return Plugin{kind: KindTable, namespace: namespace, name: name, newTable: newTable}
}

// NewNamespacePlugin builds a plugin that adds an entire dynamic
// namespace under probe.<namespace>, enumerated via provider.
func NewNamespacePlugin(namespace string, provider NamespaceProvider) Plugin {
	return Plugin{kind: KindNamespace, namespace: namespace, provider: provider}
}

func (p Plugin) Kind() Kind           { return p.kind }
func (p Plugin) Namespace() string    { return p.namespace }
func (p Plugin) TableName() string    { return p.name }

// NewTable constructs the table for a KindTable plugin.
func (p Plugin) NewTable() (Table, error) { return p.newTable() }

// Provider returns the NamespaceProvider for a KindNamespace plugin.
func (p Plugin) Provider() NamespaceProvider { return p.provider }
