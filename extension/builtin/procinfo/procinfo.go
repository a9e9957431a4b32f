// Package procinfo is a seed extension exposing live process metadata
// (§1's "process metadata") as the queryable table proc.info, backed by
// gopsutil. It has no configurable options of its own.
package procinfo

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/forbearing/probing/plugin"
	"github.com/shirou/gopsutil/v4/process"
)

// Extension implements extension.Extension and extension.DataSourcer.
type Extension struct{}

func New() *Extension { return &Extension{} }

func (e *Extension) Name() string { return "ProcinfoExtension" }

func (e *Extension) Set(localKey string, value ele.Ele) (ele.Ele, error) {
	return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
}

func (e *Extension) Get(localKey string) (ele.Ele, error) {
	return ele.Nil(), errors.Wrapf(extension.ErrUnsupportedOption, "%s", localKey)
}

func (e *Extension) Options() []extension.Option { return nil }

// DataSrc yields the proc.info table plugin when namespace is "proc" and
// name (if given) is "info".
func (e *Extension) DataSrc(namespace string, name *string) (plugin.Plugin, bool) {
	if namespace != "proc" {
		return plugin.Plugin{}, false
	}
	if name != nil && *name != "info" {
		return plugin.Plugin{}, false
	}
	return plugin.NewTablePlugin("proc", "info", func() (plugin.Table, error) {
		return &infoTable{}, nil
	}), true
}

type infoTable struct{}

func (t *infoTable) Schema() []plugin.Field {
	return []plugin.Field{
		{Name: "pid", Kind: ele.SeqKindI64},
		{Name: "name", Kind: ele.SeqKindText},
		{Name: "exe", Kind: ele.SeqKindText},
		{Name: "num_threads", Kind: ele.SeqKindI64},
		{Name: "rss_bytes", Kind: ele.SeqKindI64},
		{Name: "started_at", Kind: ele.SeqKindDateTime},
	}
}

func (t *infoTable) Scan(ctx context.Context) (*ele.DataFrame, error) {
	pid := int32(os.Getpid())
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, errors.Wrap(err, "procinfo: open self process")
	}

	name, _ := p.NameWithContext(ctx)
	exe, _ := p.ExeWithContext(ctx)
	numThreads, _ := p.NumThreadsWithContext(ctx)
	mem, _ := p.MemoryInfoWithContext(ctx)
	createdMs, _ := p.CreateTimeWithContext(ctx)

	var rss int64
	if mem != nil {
		rss = int64(mem.RSS)
	}

	return ele.NewDataFrame(
		[]string{"pid", "name", "exe", "num_threads", "rss_bytes", "started_at"},
		[]ele.Seq{
			ele.NewSeqI64([]int64{int64(pid)}),
			ele.NewSeqText([]string{name}),
			ele.NewSeqText([]string{exe}),
			ele.NewSeqI64([]int64{int64(numThreads)}),
			ele.NewSeqI64([]int64{rss}),
			ele.NewSeqDateTime([]uint64{uint64(time.UnixMilli(createdMs).UnixMicro())}),
		},
	)
}
