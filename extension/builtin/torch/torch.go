// Package torch is a stub extension exposing the torch.profiling
// configuration key (§6). The actual torch/host-language profiler bridge
// is explicitly out of scope (§1); this extension restores only the
// configuration surface the original's probing/extensions/python
// torch.rs feature exposed, grounded on its option semantics: "on" / "off"
// / a free-form profiling spec string.
package torch

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
)

type Extension struct {
	mu        sync.Mutex
	profiling string
}

func New() *Extension { return &Extension{profiling: "off"} }

func (e *Extension) Name() string { return "TorchExtension" }

func (e *Extension) Set(localKey string, value ele.Ele) (ele.Ele, error) {
	if localKey != "profiling" {
		return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
	}
	v, err := ele.TextFromEle(value)
	if err != nil {
		return ele.Nil(), errors.Wrapf(extension.ErrInvalidOptionValue, "torch.profiling: %s", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	old := e.profiling
	e.profiling = v
	return ele.Text(old), nil
}

func (e *Extension) Get(localKey string) (ele.Ele, error) {
	if localKey != "profiling" {
		return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return ele.Text(e.profiling), nil
}

func (e *Extension) Options() []extension.Option {
	e.mu.Lock()
	defer e.mu.Unlock()
	return []extension.Option{
		{Key: "profiling", Value: extension.Present(ele.Text(e.profiling)), Help: "on/off or a free-form profiling spec"},
	}
}
