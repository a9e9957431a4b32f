// Package rdma is a stub extension exposing rdma.sample_rate and
// rdma.hca_name (§6). As with torch, the actual RDMA counter sampling
// is out of scope; this extension restores only the configuration
// surface and its validation rule (sample_rate in 0.0-1.0).
package rdma

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
)

type Extension struct {
	mu         sync.Mutex
	sampleRate float64
	hcaName    string
}

func New() *Extension { return &Extension{sampleRate: 0.0} }

func (e *Extension) Name() string { return "RdmaExtension" }

func (e *Extension) Set(localKey string, value ele.Ele) (ele.Ele, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch localKey {
	case "sample_rate":
		v, err := ele.F64FromEle(value)
		if err != nil {
			return ele.Nil(), errors.Wrapf(extension.ErrInvalidOptionValue, "rdma.sample_rate: %s", err)
		}
		if v < 0.0 || v > 1.0 {
			return ele.Nil(), errors.Wrapf(extension.ErrInvalidOptionValue, "rdma.sample_rate %v out of [0,1]", v)
		}
		old := e.sampleRate
		e.sampleRate = v
		return ele.F64(old), nil
	case "hca_name":
		v, err := ele.TextFromEle(value)
		if err != nil {
			return ele.Nil(), errors.Wrapf(extension.ErrInvalidOptionValue, "rdma.hca_name: %s", err)
		}
		old := e.hcaName
		e.hcaName = v
		return ele.Text(old), nil
	default:
		return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
	}
}

func (e *Extension) Get(localKey string) (ele.Ele, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch localKey {
	case "sample_rate":
		return ele.F64(e.sampleRate), nil
	case "hca_name":
		return ele.Text(e.hcaName), nil
	default:
		return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
	}
}

func (e *Extension) Options() []extension.Option {
	e.mu.Lock()
	defer e.mu.Unlock()
	return []extension.Option{
		{Key: "sample_rate", Value: extension.Present(ele.F64(e.sampleRate)), Help: "sampling rate in [0.0, 1.0]"},
		{Key: "hca_name", Value: extension.Present(ele.Text(e.hcaName)), Help: "HCA device name"},
	}
}
