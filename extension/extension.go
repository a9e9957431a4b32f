// Package extension implements the process-wide extension registry
// (§3, §4.4): the contract by which in-process modules contribute data
// sources, answer RPC calls, and expose configuration options.
package extension

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/plugin"
	"github.com/segmentio/fasthash/fnv1a"
)

// Error taxonomy (§7). UnsupportedOption/UnsupportedCall mean "not mine" —
// the registry's dispatch loops recover from these and keep scanning.
// Every other error is surfaced immediately.
var (
	ErrUnsupportedOption = errors.New("unsupported option")
	ErrUnsupportedCall    = errors.New("unsupported call")
	ErrReadOnlyOption     = errors.New("read-only option already set")
	ErrInvalidOptionValue = errors.New("invalid option value")
	ErrCallError          = errors.New("no extension matches call path")
	ErrPluginError        = errors.New("extension plugin error")
)

// Maybe is an explicit Absent|Present(T) tagged variant for option values
// an extension parses out of a free-form string. Per §9, this is kept
// distinct from the empty string at the API boundary rather than
// conflating "absent" with "".
type Maybe struct {
	present bool
	value   ele.Ele
}

func Absent() Maybe                 { return Maybe{} }
func Present(v ele.Ele) Maybe        { return Maybe{present: true, value: v} }
func (m Maybe) IsPresent() bool      { return m.present }
func (m Maybe) Value() (ele.Ele, bool) {
	return m.value, m.present
}

// Option describes one configuration knob an extension exposes, in its
// local (unprefixed) key form.
type Option struct {
	Key   string
	Value Maybe
	Help  string
}

// Extension is the contract every registry member implements: a
// configurable module exposing options and, optionally, RPC and data
// sources.
type Extension interface {
	// Name is the extension's identity, e.g. "PythonExtension". The
	// registry derives the namespace from it (see Namespace).
	Name() string
	// Set writes localKey (unprefixed). Returns the prior value, or
	// ErrUnsupportedOption if this extension doesn't recognize localKey.
	Set(localKey string, value ele.Ele) (old ele.Ele, err error)
	// Get reads localKey. Returns ErrUnsupportedOption if unrecognized.
	Get(localKey string) (ele.Ele, error)
	// Options enumerates every option this extension exposes, in local
	// (unprefixed) key form.
	Options() []Option
}

// Caller is implemented by extensions that answer RPC calls.
type Caller interface {
	// Call handles a request whose path begins with "/<name>/". Returns
	// ErrUnsupportedCall if this extension doesn't handle path.
	Call(path string, params map[string]string, body []byte) ([]byte, error)
}

// DataSourcer is implemented by extensions that contribute tables or
// namespaces to the SQL engine's catalog.
type DataSourcer interface {
	// DataSrc yields a catalog plugin for the given namespace, optionally
	// scoped to a single table name.
	DataSrc(namespace string, name *string) (plugin.Plugin, bool)
}

var namespaceCache sync.Map // map[uint64]string, keyed by fnv1a.HashString64(name)

// Namespace derives an extension's namespace from its Name: lowercase,
// with one trailing "extension" suffix stripped, per §3. The registry
// calls this once per registered extension on every dispatch loop
// (SetOption/GetOption/Options/Call all re-derive it per snapshot), so the
// result is memoized under a fasthash key rather than recomputed.
func Namespace(name string) string {
	key := fnv1a.HashString64(name)
	if v, ok := namespaceCache.Load(key); ok {
		return v.(string) //nolint:errcheck
	}
	lower := strings.ToLower(name)
	lower = strings.TrimSuffix(lower, "extension")
	namespaceCache.Store(key, lower)
	return lower
}
