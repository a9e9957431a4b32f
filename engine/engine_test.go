package engine

import (
	"context"
	"testing"

	"github.com/forbearing/probing/configstore"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/forbearing/probing/plugin"
	"github.com/forbearing/probing/sqlengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixtureExtension struct {
	namespace string
	frame     *ele.DataFrame
}

func (e *fixtureExtension) Name() string { return "FixtureExtension" }
func (e *fixtureExtension) Set(string, ele.Ele) (ele.Ele, error) {
	return ele.Nil(), extension.ErrUnsupportedOption
}
func (e *fixtureExtension) Get(string) (ele.Ele, error) {
	return ele.Nil(), extension.ErrUnsupportedOption
}
func (e *fixtureExtension) Options() []extension.Option { return nil }
func (e *fixtureExtension) DataSrc(namespace string, name *string) (plugin.Plugin, bool) {
	if namespace != e.namespace {
		return plugin.Plugin{}, false
	}
	return plugin.NewTablePlugin(e.namespace, "rows", func() (plugin.Table, error) {
		return fixtureTable{e.frame}, nil
	}), true
}

type fixtureTable struct{ frame *ele.DataFrame }

func (t fixtureTable) Schema() []plugin.Field {
	return []plugin.Field{{Name: "v", Kind: ele.SeqKindI32}}
}
func (t fixtureTable) Scan(ctx context.Context) (*ele.DataFrame, error) { return t.frame, nil }

func TestBuilder_SeedExtensionContributesPlugin(t *testing.T) {
	frame, err := ele.NewDataFrame([]string{"v"}, []ele.Seq{ele.NewSeqI32([]int32{1, 2})})
	require.NoError(t, err)

	e, err := NewBuilder().
		WithNamespace("probe").
		WithStore(configstore.New()).
		WithRegistry(extension.New()).
		WithExtension(&fixtureExtension{namespace: "probe", frame: frame}).
		Build(context.Background())
	require.NoError(t, err)
	defer e.Close()

	df, err := e.Query(context.Background(), "SELECT * FROM probe.rows", sqlengine.QueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, df)
	assert.Equal(t, 2, df.NumRows())
}

func TestGlobal_DefaultsNilBeforeSetGlobal(t *testing.T) {
	handleMu.Lock()
	handle = nil
	handleMu.Unlock()
	assert.Nil(t, Global())
}
