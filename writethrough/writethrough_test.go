package writethrough

import (
	"testing"

	"github.com/forbearing/probing/configstore"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testExtension struct {
	option string
}

func (e *testExtension) Name() string { return "TestExtension" }

func (e *testExtension) Set(localKey string, value ele.Ele) (ele.Ele, error) {
	if localKey != "option" {
		return ele.Nil(), extension.ErrUnsupportedOption
	}
	old := e.option
	v, err := ele.TextFromEle(value)
	if err != nil {
		return ele.Nil(), err
	}
	e.option = v
	return ele.Text(old), nil
}

func (e *testExtension) Get(localKey string) (ele.Ele, error) {
	if localKey != "option" {
		return ele.Nil(), extension.ErrUnsupportedOption
	}
	return ele.Text(e.option), nil
}

func (e *testExtension) Options() []extension.Option {
	return []extension.Option{{Key: "option", Value: extension.Present(ele.Text(e.option))}}
}

// scenario 1 of §8: config write-through to extension.
func TestWrite_ExtensionOwnedKey(t *testing.T) {
	store := configstore.New()
	registry := extension.New()
	ext := &testExtension{option: "default"}
	registry.Register(ext)

	err := WriteTo(store, registry, "test.option", ele.Text("new_value"))
	require.NoError(t, err)

	s, ok := store.GetStr("test.option")
	require.True(t, ok)
	assert.Equal(t, "new_value", s)
	assert.Equal(t, "new_value", ext.option)
}

// scenario 2 of §8: unclaimed probing.* falls through to plain config.
func TestWrite_UnclaimedProbingFallsThrough(t *testing.T) {
	store := configstore.New()
	registry := extension.New()

	err := WriteTo(store, registry, "probing.test.key", ele.Text("v"))
	require.NoError(t, err)

	s, ok := store.GetStr("probing.test.key")
	require.True(t, ok)
	assert.Equal(t, "v", s)
}

// write-through idempotence law of §8, instantiated with an extension
// that actually claims the key ("test.option" under the "probing."
// prefix).
func TestWrite_ThroughIdempotence(t *testing.T) {
	store := configstore.New()
	registry := extension.New()
	registry.Register(&testExtension{})

	err := WriteTo(store, registry, "probing.test.option", ele.Text("x"))
	require.NoError(t, err)

	v, ok := store.Get("probing.test.option")
	require.True(t, ok)
	assert.Equal(t, ele.Text("x"), v)

	got, err := registry.GetOption("test.option")
	require.NoError(t, err)
	assert.Equal(t, ele.Text("x"), got)
}

func TestWrite_PlainKeyBypassesRegistry(t *testing.T) {
	store := configstore.New()
	registry := extension.New()

	err := WriteTo(store, registry, "server.log_level", ele.Text("debug"))
	require.NoError(t, err)

	s, ok := store.GetStr("server.log_level")
	require.True(t, ok)
	assert.Equal(t, "debug", s)
}
