// Package writethrough implements the single write-through configuration
// entry point (§4.7): it routes writes to the extension that owns a key
// before mirroring them into the shared configuration store, keeping the
// two in lockstep.
package writethrough

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/configstore"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
)

const reservedPrefix = "probing"

// Write implements the write-through policy against the process-wide
// registries: every key is offered to the extension registry first, with
// a leading "probing." prefix stripped from the key the registry sees. A
// claiming extension's value wins and is mirrored into the config store
// under the original key; a key no extension claims simply lands in the
// config store. Any other extension error is returned and the store is
// left untouched.
func Write(key string, value ele.Ele) error {
	return WriteTo(configstore.Global(), extension.Global(), key, value)
}

// WriteTo is Write parameterized over explicit store/registry instances,
// for tests that want isolation from the process-wide singletons.
func WriteTo(store *configstore.Store, registry *extension.Registry, key string, value ele.Ele) error {
	extKey := key
	if key == reservedPrefix || strings.HasPrefix(key, reservedPrefix+".") {
		extKey = strings.TrimPrefix(key, reservedPrefix+".")
	}
	_, err := registry.SetOption(extKey, value)
	switch {
	case err == nil:
		store.SetEle(key, value)
		return nil
	case errors.Is(err, extension.ErrUnsupportedOption):
		// falls through to plain config write below
	default:
		return err
	}
	store.SetEle(key, value)
	return nil
}
