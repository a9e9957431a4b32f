package ele_test

import (
	"testing"

	"github.com/forbearing/probing/ele"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeqGetOutOfRange(t *testing.T) {
	s := ele.NewSeqI32([]int32{1, 2, 3})
	assert.Equal(t, ele.I32(2), s.Get(1))
	assert.True(t, s.Get(10).IsNil())
	assert.True(t, s.Get(-1).IsNil())
}

func TestSeqAppendAdoptsKind(t *testing.T) {
	s := ele.NewSeqNil()
	s, err := s.Append(ele.Text("a"))
	require.NoError(t, err)
	s, err = s.Append(ele.Text("b"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, ele.SeqKindText, s.Kind())
}

func TestSeqAppendWrongKind(t *testing.T) {
	s := ele.NewSeqI32([]int32{1})
	_, err := s.Append(ele.Text("nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ele.ErrWrongElementType)
}

type fakeCol struct{ vals []any }

func (f fakeCol) Len() int           { return len(f.vals) }
func (f fakeCol) ValueAt(i int) any  { return f.vals[i] }

func TestFromArrowLikeUnknownType(t *testing.T) {
	s := ele.FromArrowLike(fakeCol{vals: []any{struct{}{}}})
	assert.Equal(t, ele.SeqNil, s.Kind())
}

func TestFromArrowLikeKnownType(t *testing.T) {
	s := ele.FromArrowLike(fakeCol{vals: []any{int64(1), int64(2)}})
	assert.Equal(t, ele.SeqKindI64, s.Kind())
	assert.Equal(t, 2, s.Len())
}
