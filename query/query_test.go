package query

import (
	"context"
	"testing"
	"time"

	"github.com/forbearing/probing/configstore"
	"github.com/forbearing/probing/engine"
	"github.com/forbearing/probing/extension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_LiteralSelectSucceeds(t *testing.T) {
	e, err := engine.NewBuilder().
		WithStore(configstore.New()).
		WithRegistry(extension.New()).
		Build(context.Background())
	require.NoError(t, err)
	defer e.Close()

	resp := Run(e, Request{Expr: "SELECT 1"}, time.Unix(0, 0))
	assert.True(t, resp.Success)
	assert.Equal(t, PayloadFrame, resp.Payload.Kind)
	assert.Equal(t, [][]string{{"1"}}, resp.Payload.Rows)
	assert.NotEmpty(t, resp.RequestID)
}

func TestRun_PreservesCallerSuppliedRequestID(t *testing.T) {
	e, err := engine.NewBuilder().
		WithStore(configstore.New()).
		WithRegistry(extension.New()).
		Build(context.Background())
	require.NoError(t, err)
	defer e.Close()

	resp := Run(e, Request{RequestID: "caller-assigned-id", Expr: "SELECT 1"}, time.Unix(0, 0))
	assert.Equal(t, "caller-assigned-id", resp.RequestID)
}

func TestRun_EmptyResultIsNilPayload(t *testing.T) {
	e, err := engine.NewBuilder().
		WithStore(configstore.New()).
		WithRegistry(extension.New()).
		Build(context.Background())
	require.NoError(t, err)
	defer e.Close()

	resp := Run(e, Request{Expr: "SELECT 1 WHERE 1=0"}, time.Unix(0, 0))
	assert.True(t, resp.Success)
	assert.Equal(t, PayloadNil, resp.Payload.Kind)
}

func TestRun_ParseFailureReportsAsData(t *testing.T) {
	e, err := engine.NewBuilder().
		WithStore(configstore.New()).
		WithRegistry(extension.New()).
		Build(context.Background())
	require.NoError(t, err)
	defer e.Close()

	resp := Run(e, Request{Expr: "DELETE FROM x"}, time.Unix(0, 0))
	assert.False(t, resp.Success)
	assert.Equal(t, PayloadError, resp.Payload.Kind)
	assert.NotEmpty(t, resp.Message)
}
