package configstore_test

import (
	"testing"

	"github.com/forbearing/probing/configstore"
	"github.com/forbearing/probing/ele"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	s := configstore.New()
	s.SetEle("server.address", ele.Text("0.0.0.0:9700"))
	v, ok := s.Get("server.address")
	require.True(t, ok)
	assert.Equal(t, ele.Text("0.0.0.0:9700"), v)

	str, ok := s.GetStr("server.address")
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:9700", str)
}

func TestKeysSortedLex(t *testing.T) {
	s := configstore.New()
	s.SetEle("zeta", ele.Text("1"))
	s.SetEle("alpha", ele.Text("2"))
	s.SetEle("mid", ele.Text("3"))
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.Keys())
}

func TestPrefixScanAndRemove(t *testing.T) {
	s := configstore.New()
	s.SetEle("torch.profiling", ele.Text("on"))
	s.SetEle("torch.sample_rate", ele.Text("0.1"))
	s.SetEle("rdma.hca_name", ele.Text("mlx5_0"))

	entries := s.PrefixScan("torch.")
	require.Len(t, entries, 2)
	assert.Equal(t, "torch.profiling", entries[0].Key)
	assert.Equal(t, "torch.sample_rate", entries[1].Key)

	removed := s.PrefixRemove("torch.")
	assert.Equal(t, 2, removed)
	assert.False(t, s.ContainsKey("torch.profiling"))
	assert.True(t, s.ContainsKey("rdma.hca_name"))
}

func TestRemoveAndClear(t *testing.T) {
	s := configstore.New()
	s.SetEle("k", ele.Text("v"))
	old, ok := s.Remove("k")
	require.True(t, ok)
	assert.Equal(t, ele.Text("v"), old)
	assert.True(t, s.IsEmpty())

	s.SetEle("a", ele.Text("1"))
	s.SetEle("b", ele.Text("2"))
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestGlobalIsSingleton(t *testing.T) {
	assert.Same(t, configstore.Global(), configstore.Global())
}
