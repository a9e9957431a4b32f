package bootstrapenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Rank0BindsAllInterfaces(t *testing.T) {
	b, err := Derive(Env{Rank: "0", Port: "9999"})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", b.ServerAddr)
	assert.Empty(t, b.ServerReportAddr)
}

func TestDerive_WorkerPrefersPodIP(t *testing.T) {
	b, err := Derive(Env{Rank: "1", Port: "9999", PodIP: "10.0.0.5", MasterAddr: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:9999", b.ServerAddr)
	assert.Equal(t, "10.0.0.5:9999", b.ServerReportAddr)
}

func TestDerive_WorkerWithoutRoutableInterfaceErrors(t *testing.T) {
	_, err := Derive(Env{Rank: "1", Port: "9999"})
	assert.ErrorIs(t, err, ErrNoRoutableInterface)
}

func TestDerive_RandomPortAllocatesEphemeral(t *testing.T) {
	b, err := Derive(Env{Rank: "0", Port: "RANDOM"})
	require.NoError(t, err)
	assert.Contains(t, b.ServerAddr, "0.0.0.0:")
}

func TestDerive_LocalRankFallsBackWhenRankUnset(t *testing.T) {
	b, err := Derive(Env{LocalRank: "0", Port: "9999"})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", b.ServerAddr)
}
