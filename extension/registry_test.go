package extension_test

import (
	"sync"
	"testing"

	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testExtension is a minimal in-memory extension used across tests: it
// exposes one option, "option", defaulting to "default".
type testExtension struct {
	name string
	mu   sync.Mutex
	opts map[string]ele.Ele
}

func newTestExtension(name string, defaults map[string]string) *testExtension {
	opts := make(map[string]ele.Ele, len(defaults))
	for k, v := range defaults {
		opts[k] = ele.Text(v)
	}
	return &testExtension{name: name, opts: opts}
}

func (e *testExtension) Name() string { return e.name }

func (e *testExtension) Set(localKey string, value ele.Ele) (ele.Ele, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	old, ok := e.opts[localKey]
	if !ok {
		return ele.Nil(), extension.ErrUnsupportedOption
	}
	e.opts[localKey] = value
	return old, nil
}

func (e *testExtension) Get(localKey string) (ele.Ele, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.opts[localKey]
	if !ok {
		return ele.Nil(), extension.ErrUnsupportedOption
	}
	return v, nil
}

func (e *testExtension) Options() []extension.Option {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]extension.Option, 0, len(e.opts))
	for k, v := range e.opts {
		out = append(out, extension.Option{Key: k, Value: extension.Present(v)})
	}
	return out
}

func TestNamespaceDerivation(t *testing.T) {
	assert.Equal(t, "python", extension.Namespace("PythonExtension"))
	assert.Equal(t, "torch", extension.Namespace("torch"))
}

func TestSetOptionWriteThroughScenario(t *testing.T) {
	// §8 scenario 1.
	r := extension.New()
	ext := newTestExtension("test", map[string]string{"option": "default"})
	r.Register(ext)

	old, err := r.SetOption("test.option", ele.Text("new_value"))
	require.NoError(t, err)
	assert.Equal(t, ele.Text("default"), old)

	v, err := ext.Get("option")
	require.NoError(t, err)
	assert.Equal(t, ele.Text("new_value"), v)
}

func TestSetOptionUnclaimedFallsThrough(t *testing.T) {
	r := extension.New()
	_, err := r.SetOption("probing.test.key", ele.Text("v"))
	require.Error(t, err)
	assert.ErrorIs(t, err, extension.ErrUnsupportedOption)
}

func TestFirstAcceptWins(t *testing.T) {
	r := extension.New()
	first := newTestExtension("fooextension", map[string]string{"bar": "1"})
	second := newTestExtension("foo", map[string]string{"bar": "2"})
	r.Register(first)
	r.Register(second)

	// Both extensions derive namespace "foo" (first strips "extension"
	// suffix). The first-registered extension must win.
	_, err := r.SetOption("foo.bar", ele.Text("x"))
	require.NoError(t, err)
	v, _ := first.Get("bar")
	assert.Equal(t, ele.Text("x"), v)
	v2, _ := second.Get("bar")
	assert.Equal(t, ele.Text("2"), v2)
}

func TestOptionsConcatenatesInRegistrationOrder(t *testing.T) {
	r := extension.New()
	r.Register(newTestExtension("a", map[string]string{"x": "1"}))
	r.Register(newTestExtension("b", map[string]string{"y": "2"}))

	opts := r.Options()
	require.Len(t, opts, 2)
	assert.Equal(t, "a", opts[0].Namespace)
	assert.Equal(t, "b", opts[1].Namespace)
}

func TestNamesAndHas(t *testing.T) {
	r := extension.New()
	r.Register(newTestExtension("a", nil))
	r.Register(newTestExtension("b", nil))

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))
}

func TestCallNoMatch(t *testing.T) {
	r := extension.New()
	_, err := r.Call("/nope/thing", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, extension.ErrCallError)
}
