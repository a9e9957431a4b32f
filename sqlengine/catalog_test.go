package sqlengine

import (
	"context"
	"sync"
	"testing"

	"github.com/forbearing/probing/configstore"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/forbearing/probing/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFixture(t *testing.T, rows int32) (*Catalog, *Session) {
	t.Helper()
	catalog := NewCatalog()

	frame, err := ele.NewDataFrame(
		[]string{"id", "name"},
		[]ele.Seq{
			ele.NewSeqI32([]int32{1, 2, 3}[:rows]),
			ele.NewSeqText([]string{"a", "b", "c"}[:rows]),
		},
	)
	require.NoError(t, err)

	catalog.Enable(plugin.NewTablePlugin("ns", "t", func() (plugin.Table, error) {
		return NewStaticTable([]plugin.Field{
			{Name: "id", Kind: ele.SeqKindI32},
			{Name: "name", Kind: ele.SeqKindText},
		}, frame), nil
	}))

	session, err := NewSession(catalog, configstore.New(), extension.New())
	require.NoError(t, err)
	t.Cleanup(session.Close)
	return catalog, session
}

// §8 scenario 3: table plugin query with a WHERE filter.
func TestSession_TablePluginQuery(t *testing.T) {
	_, session := newTestFixture(t, 3)

	df, err := session.Query(context.Background(), "SELECT * FROM ns.t WHERE id > 1", QueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, df)
	assert.Equal(t, 2, df.NumRows())

	idCol, ok := df.Column("id")
	require.True(t, ok)
	assert.Equal(t, ele.I32(2), idCol.Get(0))
	assert.Equal(t, ele.I32(3), idCol.Get(1))

	nameCol, ok := df.Column("name")
	require.True(t, ok)
	assert.Equal(t, ele.Text("b"), nameCol.Get(0))
	assert.Equal(t, ele.Text("c"), nameCol.Get(1))
}

// §8 scenario 4: empty result sets are absent, not zero-row.
func TestSession_EmptyResultIsAbsent(t *testing.T) {
	_, session := newTestFixture(t, 3)

	df, err := session.Query(context.Background(), "SELECT 1 WHERE 1=0", QueryOptions{})
	require.NoError(t, err)
	assert.Nil(t, df)
}

// §8 scenario 5: concurrent literal queries each complete with their
// own one-row result.
func TestSession_ConcurrentQueries(t *testing.T) {
	_, session := newTestFixture(t, 3)

	var wg sync.WaitGroup
	results := make([]*ele.DataFrame, 3)
	errs := make([]error, 3)
	for i, q := range []string{"SELECT 1", "SELECT 2", "SELECT 3"} {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			df, err := session.Query(context.Background(), q, QueryOptions{})
			results[i] = df
			errs[i] = err
		}(i, q)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, 1, results[i].NumRows())
		col := results[i].Cols[0]
		assert.Equal(t, ele.I64(int64(i+1)), col.Get(0))
	}
}

func TestSession_ShowTables(t *testing.T) {
	_, session := newTestFixture(t, 3)

	df, err := session.Query(context.Background(), "SHOW TABLES", QueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, df)
	assert.Equal(t, 1, df.NumRows())

	ns, ok := df.Column("namespace")
	require.True(t, ok)
	assert.Equal(t, ele.Text("ns"), ns.Get(0))

	tbl, ok := df.Column("table")
	require.True(t, ok)
	assert.Equal(t, ele.Text("t"), tbl.Get(0))
}

func TestCatalog_EnableIsIdempotentReplace(t *testing.T) {
	catalog := NewCatalog()
	mk := func(v int32) plugin.TableFactory {
		return func() (plugin.Table, error) {
			frame, _ := ele.NewDataFrame([]string{"v"}, []ele.Seq{ele.NewSeqI32([]int32{v})})
			return NewStaticTable([]plugin.Field{{Name: "v", Kind: ele.SeqKindI32}}, frame), nil
		}
	}
	catalog.Enable(plugin.NewTablePlugin("ns", "t", mk(1)))
	catalog.Enable(plugin.NewTablePlugin("ns", "t", mk(2)))

	snap := catalog.Snapshot()
	table, err := snap.Resolve("ns", "t")
	require.NoError(t, err)
	df, err := table.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ele.I32(2), df.Row(0)[0])
}

func TestCatalog_SnapshotIsolationFromLaterEnable(t *testing.T) {
	catalog := NewCatalog()
	catalog.Enable(plugin.NewTablePlugin("ns", "a", func() (plugin.Table, error) {
		return NewStaticTable(nil, &ele.DataFrame{}), nil
	}))
	snap := catalog.Snapshot()

	catalog.Enable(plugin.NewTablePlugin("ns", "b", func() (plugin.Table, error) {
		return NewStaticTable(nil, &ele.DataFrame{}), nil
	}))

	_, err := snap.Resolve("ns", "b")
	assert.ErrorIs(t, err, ErrTableNotFound)
}
