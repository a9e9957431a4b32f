package ele_test

import (
	"testing"
	"time"

	"github.com/forbearing/probing/ele"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEleStringRules(t *testing.T) {
	assert.Equal(t, "nil", ele.Nil().String())
	assert.Equal(t, "True", ele.Bool(true).String())
	assert.Equal(t, "False", ele.Bool(false).String())

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got := ele.DateTimeFrom(ts).String()
	assert.Contains(t, got, "2024-01-02T03:04:05")
}

func TestEleEqual(t *testing.T) {
	assert.True(t, ele.I32(1).Equal(ele.I32(1)))
	assert.False(t, ele.I32(1).Equal(ele.I64(1)))
	assert.True(t, ele.Nil().Equal(ele.Nil()))
}

func TestFromEleWidening(t *testing.T) {
	v, err := ele.I64FromEle(ele.I32(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestFromEleNarrowing(t *testing.T) {
	_, err := ele.I32FromEle(ele.I64(int64(1<<31) + 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ele.ErrWrongElementType)

	v, err := ele.I32FromEle(ele.I64(100))
	require.NoError(t, err)
	assert.Equal(t, int32(100), v)
}

func TestFromEleWrongType(t *testing.T) {
	_, err := ele.BoolFromEle(ele.Text("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ele.ErrWrongElementType)
}
