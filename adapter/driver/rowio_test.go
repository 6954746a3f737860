package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	replicaset "github.com/arloliu/ha-table"
)

func TestMutationIsAsync(t *testing.T) {
	sync := NewMutation("row", "cf", "q", []byte("v"))
	assert.False(t, sync.IsAsync())

	async := NewAsyncMutation("row", "cf", "q", []byte("v"), nil)
	assert.True(t, async.IsAsync())
}

func TestMutationResetPreservesPayload(t *testing.T) {
	m := NewMutation("row", "cf", "q", []byte("v"))
	m.setError(assert.AnError)

	m.Reset()

	assert.NoError(t, m.GetError())
	assert.Equal(t, "row", m.Row)
	assert.Equal(t, []byte("v"), m.Value)
}

func TestMutationFireCallbackInvokesOnDoneOnce(t *testing.T) {
	calls := 0
	var gotErr error
	m := NewAsyncMutation("row", "cf", "q", []byte("v"), func(err error) {
		calls++
		gotErr = err
	})

	m.FireCallback(assert.AnError)

	assert.Equal(t, 1, calls)
	assert.Equal(t, assert.AnError, gotErr)
	assert.Equal(t, assert.AnError, m.GetError())
}

func TestMutationCallCheckerRoundTrip(t *testing.T) {
	m := NewMutation("row", "cf", "q", nil)
	assert.Nil(t, m.CallChecker())

	cc := &fakeCallChecker{}
	m.SetCallChecker(cc)
	assert.Same(t, cc, m.CallChecker())
}

func TestReaderResetClearsResultButPreservesPayload(t *testing.T) {
	r := NewReader("row", "cf", "q", 3)
	r.SetResult(replicaset.RowResult{Cells: []replicaset.Cell{{Value: []byte("v")}}})
	r.setError(assert.AnError)

	r.Reset()

	assert.NoError(t, r.GetError())
	assert.Empty(t, r.GetResult().Cells)
	assert.Equal(t, "row", r.Row)
}

func TestReaderGetMaxVersionsDefaultsToOne(t *testing.T) {
	r := NewReader("row", "cf", "q", 0)
	assert.Equal(t, 1, r.GetMaxVersions())

	r2 := NewReader("row", "cf", "q", 5)
	assert.Equal(t, 5, r2.GetMaxVersions())
}

func TestReaderFireCallbackInvokesOnDoneOnce(t *testing.T) {
	calls := 0
	r := NewAsyncReader("row", "cf", "q", 1, func(err error) { calls++ })

	r.FireCallback(nil)
	require.Equal(t, 1, calls)
	assert.NoError(t, r.GetError())
}

type fakeCallChecker struct{ completions int }

func (f *fakeCallChecker) OnComplete(err error) { f.completions++ }
