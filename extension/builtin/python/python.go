// Package python is a stub extension exposing the python.* configuration
// keys of §6. The Python host-language bridge itself — value conversion,
// interpreter embedding, the crash/monitoring script execution — is
// explicitly out of scope (§1); this extension restores only the
// configuration surface the original's
// probing/extensions/python/src/features/config.rs exposed: two
// write-once path settings and an append/remove pair for loaded
// extension names.
package python

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
)

type Extension struct {
	mu           sync.Mutex
	crashHandler string
	monitoring   string
	enabled      []string
}

func New() *Extension { return &Extension{} }

func (e *Extension) Name() string { return "PythonExtension" }

func (e *Extension) Set(localKey string, value ele.Ele) (ele.Ele, error) {
	v, err := ele.TextFromEle(value)
	if err != nil {
		return ele.Nil(), errors.Wrapf(extension.ErrInvalidOptionValue, "python.%s: %s", localKey, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch localKey {
	case "crash_handler":
		if e.crashHandler != "" {
			return ele.Nil(), errors.Wrapf(extension.ErrReadOnlyOption, "python.crash_handler")
		}
		e.crashHandler = v
		return ele.Nil(), nil
	case "monitoring":
		if e.monitoring != "" {
			return ele.Nil(), errors.Wrapf(extension.ErrReadOnlyOption, "python.monitoring")
		}
		e.monitoring = v
		return ele.Nil(), nil
	case "enabled":
		old := joinNames(e.enabled)
		e.enabled = append(e.enabled, v)
		return ele.Text(old), nil
	case "disabled":
		old := joinNames(e.enabled)
		e.enabled = removeName(e.enabled, v)
		return ele.Text(old), nil
	default:
		return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
	}
}

func (e *Extension) Get(localKey string) (ele.Ele, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch localKey {
	case "crash_handler":
		return ele.Text(e.crashHandler), nil
	case "monitoring":
		return ele.Text(e.monitoring), nil
	case "enabled":
		return ele.Text(joinNames(e.enabled)), nil
	default:
		return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
	}
}

func (e *Extension) Options() []extension.Option {
	e.mu.Lock()
	defer e.mu.Unlock()
	return []extension.Option{
		{Key: "crash_handler", Value: textMaybe(e.crashHandler), Help: "path to crash script (write-once)"},
		{Key: "monitoring", Value: textMaybe(e.monitoring), Help: "path to monitoring script (write-once)"},
		{Key: "enabled", Value: extension.Present(ele.Text(joinNames(e.enabled))), Help: "loaded extension names"},
	}
}

func textMaybe(s string) extension.Maybe {
	if s == "" {
		return extension.Absent()
	}
	return extension.Present(ele.Text(s))
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}

func removeName(names []string, target string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}
