package extension

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/plugin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Registry is the process-wide, registration-ordered name->Extension map
// described in §4.4. Dispatch never holds the registry lock while calling
// into an extension: every operation below snapshots the registered
// extensions under RLock, releases, then dispatches — the lock discipline
// §4.4 and §5's deadlock rule require.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byName map[string]Extension
	log   *zap.SugaredLogger
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]Extension),
		log:    zap.S().Named("extension"),
	}
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry, constructing it on first
// access (§9: process-wide registries are explicit state, not ambient
// singletons).
func Global() *Registry {
	globalOnce.Do(func() {
		global = New()
	})
	return global
}

// Register adds ext to the registry in call order. If ext.Name() is already
// present, the new extension replaces the old one and keeps the old one's
// position in the registration order (idempotent replace — §9 Open
// Question, resolved as "replace returning Ok").
func (r *Registry) Register(ext Extension) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := ext.Name()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = ext
}

// snapshot returns the registered extensions in registration order,
// without holding the registry lock past this call.
func (r *Registry) snapshot() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Extension, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// SetOption iterates extensions in registration order; the first whose
// namespace prefixes key receives (localKey, value). If it returns
// ErrUnsupportedOption, the loop continues to the next matching extension.
// Any other error is surfaced immediately. If no extension accepts the
// key, returns ErrUnsupportedOption(key). On success the old value is
// logged at info level.
func (r *Registry) SetOption(key string, value ele.Ele) (old ele.Ele, err error) {
	extensions := r.snapshot()
	for _, ext := range extensions {
		ns := Namespace(ext.Name()) + "."
		if len(key) <= len(ns) || key[:len(ns)] != ns {
			continue
		}
		local := key[len(ns):]
		old, err = ext.Set(local, value)
		if err == nil {
			r.log.Infow("extension option set", "extension", ext.Name(), "key", key, "old", old.String(), "new", value.String())
			return old, nil
		}
		if errors.Is(err, ErrUnsupportedOption) {
			continue
		}
		return ele.Nil(), err
	}
	return ele.Nil(), errors.Wrapf(ErrUnsupportedOption, "%s", key)
}

// GetOption symmetrically scans for the first extension whose namespace
// matches key and that returns a value successfully.
func (r *Registry) GetOption(key string) (ele.Ele, error) {
	extensions := r.snapshot()
	for _, ext := range extensions {
		ns := Namespace(ext.Name()) + "."
		if len(key) <= len(ns) || key[:len(ns)] != ns {
			continue
		}
		local := key[len(ns):]
		v, err := ext.Get(local)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, ErrUnsupportedOption) {
			continue
		}
		return ele.Nil(), err
	}
	return ele.Nil(), errors.Wrapf(ErrUnsupportedOption, "%s", key)
}

// NamedOption pairs an extension's namespace with one of its local Options,
// the form §4.4's "options()" concatenation exposes.
type NamedOption struct {
	Namespace string
	Option    Option
}

// Options concatenates every registered extension's options, in
// registration order, each carrying its local (unprefixed) key.
func (r *Registry) Options() []NamedOption {
	extensions := r.snapshot()
	out := make([]NamedOption, 0)
	for _, ext := range extensions {
		ns := Namespace(ext.Name())
		for _, opt := range ext.Options() {
			out = append(out, NamedOption{Namespace: ns, Option: opt})
		}
	}
	return out
}

// Call dispatches an RPC-style request to the first extension whose name
// matches the path's leading "/<name>/" segment. Returns ErrCallError if no
// extension matches.
func (r *Registry) Call(path string, params map[string]string, body []byte) ([]byte, error) {
	name, ok := callTargetName(path)
	if !ok {
		return nil, errors.Wrapf(ErrCallError, "%s", path)
	}
	extensions := r.snapshot()
	for _, ext := range extensions {
		if Namespace(ext.Name()) != name {
			continue
		}
		caller, ok := ext.(Caller)
		if !ok {
			continue
		}
		out, err := caller.Call(path, params, body)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrUnsupportedCall) {
			continue
		}
		return nil, err
	}
	return nil, errors.Wrapf(ErrCallError, "%s", path)
}

// callTargetName extracts "name" out of a "/name/..." path.
func callTargetName(path string) (string, bool) {
	if len(path) == 0 || path[0] != '/' {
		return "", false
	}
	rest := path[1:]
	for i, c := range rest {
		if c == '/' {
			return rest[:i], true
		}
	}
	if len(rest) > 0 {
		return rest, true
	}
	return "", false
}

// DataSrc asks every registered DataSourcer extension for a plugin
// matching (namespace, name), returning the first hit.
func (r *Registry) DataSrc(namespace string, name *string) (plugin.Plugin, bool) {
	extensions := r.snapshot()
	for _, ext := range extensions {
		src, ok := ext.(DataSourcer)
		if !ok {
			continue
		}
		if p, ok := src.DataSrc(namespace, name); ok {
			return p, true
		}
	}
	return plugin.Plugin{}, false
}

// All returns every registered extension in registration order.
func (r *Registry) All() []Extension {
	return r.snapshot()
}

// Names returns the registered extensions' Name() values in registration
// order.
func (r *Registry) Names() []string {
	return lo.Map(r.snapshot(), func(ext Extension, _ int) string {
		return ext.Name()
	})
}

// Has reports whether name is currently registered.
func (r *Registry) Has(name string) bool {
	return lo.Contains(r.Names(), name)
}
