// Package promstats is a seed extension that exposes the process's
// Prometheus metric registry as a queryable table, metrics.samples,
// restoring the metrics surface hinted at in §1/§9 without introducing a
// retention policy of its own — each Scan simply gathers the current
// values, matching the Non-goal that "tables decide their own retention".
package promstats

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/forbearing/probing/plugin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Extension implements extension.Extension and extension.DataSourcer. It
// wraps a prometheus.Gatherer so the host application's own registry can
// be surfaced by passing it to New, or the process default registry when
// registry is nil.
type Extension struct {
	gatherer prometheus.Gatherer
}

func New(registry prometheus.Gatherer) *Extension {
	if registry == nil {
		registry = prometheus.DefaultGatherer
	}
	return &Extension{gatherer: registry}
}

func (e *Extension) Name() string { return "PromstatsExtension" }

func (e *Extension) Set(localKey string, value ele.Ele) (ele.Ele, error) {
	return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
}

func (e *Extension) Get(localKey string) (ele.Ele, error) {
	return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
}

func (e *Extension) Options() []extension.Option { return nil }

func (e *Extension) DataSrc(namespace string, name *string) (plugin.Plugin, bool) {
	if namespace != "metrics" {
		return plugin.Plugin{}, false
	}
	if name != nil && *name != "samples" {
		return plugin.Plugin{}, false
	}
	return plugin.NewTablePlugin("metrics", "samples", func() (plugin.Table, error) {
		return &samplesTable{gatherer: e.gatherer}, nil
	}), true
}

type samplesTable struct {
	gatherer prometheus.Gatherer
}

func (t *samplesTable) Schema() []plugin.Field {
	return []plugin.Field{
		{Name: "metric", Kind: ele.SeqKindText},
		{Name: "type", Kind: ele.SeqKindText},
		{Name: "labels", Kind: ele.SeqKindText},
		{Name: "value", Kind: ele.SeqKindF64},
	}
}

func (t *samplesTable) Scan(ctx context.Context) (*ele.DataFrame, error) {
	families, err := t.gatherer.Gather()
	if err != nil {
		return nil, errors.Wrap(err, "promstats: gather metric families")
	}

	var metrics, types, labels []string
	var values []float64

	for _, fam := range families {
		typ := fam.GetType().String()
		for _, m := range fam.GetMetric() {
			v, ok := sampleValue(m)
			if !ok {
				continue
			}
			metrics = append(metrics, fam.GetName())
			types = append(types, typ)
			labels = append(labels, labelsJSON(m))
			values = append(values, v)
		}
	}

	return ele.NewDataFrame(
		[]string{"metric", "type", "labels", "value"},
		[]ele.Seq{
			ele.NewSeqText(metrics),
			ele.NewSeqText(types),
			ele.NewSeqText(labels),
			ele.NewSeqF64(values),
		},
	)
}

func sampleValue(m *dto.Metric) (float64, bool) {
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue(), true
	case m.Gauge != nil:
		return m.Gauge.GetValue(), true
	case m.Untyped != nil:
		return m.Untyped.GetValue(), true
	default:
		return 0, false
	}
}

func labelsJSON(m *dto.Metric) string {
	pairs := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		pairs[lp.GetName()] = lp.GetValue()
	}
	b, err := json.Marshal(pairs)
	if err != nil {
		return "{}"
	}
	return string(b)
}
