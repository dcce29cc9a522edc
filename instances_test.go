package shapeview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstancesAddRemove(t *testing.T) {
	in := NewInstances[int]()
	assert.Equal(t, 0, in.Len())
	assert.Equal(t, defaultInstanceCapacity, cap(in.All()))

	for i := 0; i < 5; i++ {
		in.Add(i * 10)
	}
	require.Equal(t, 5, in.Len())

	require.NoError(t, in.Remove(1))
	assert.Equal(t, []int{0, 20, 30, 40}, in.All(), "later elements shift down")

	require.NoError(t, in.Remove(3))
	assert.Equal(t, []int{0, 20, 30}, in.All())
}

func TestInstancesRemoveOutOfRange(t *testing.T) {
	in := NewInstances[string]()
	in.Add("a")
	rev := in.Revision()

	for _, i := range []int{-1, 1, 100} {
		err := in.Remove(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", i)
	}
	assert.Equal(t, []string{"a"}, in.All())
	assert.Equal(t, rev, in.Revision(), "failed remove must not count as a mutation")

	require.NoError(t, in.Remove(0))
	assert.ErrorIs(t, in.Remove(0), ErrIndexOutOfRange)
}

func TestInstancesAtSet(t *testing.T) {
	in := NewInstances[Circle]()
	c := NewCircle()
	in.Add(c)

	got, err := in.At(0)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	c.Radius = 5
	require.NoError(t, in.Set(0, c))
	got, _ = in.At(0)
	assert.Equal(t, float32(5), got.Radius)

	_, err = in.At(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, in.Set(-1, c), ErrIndexOutOfRange)
}

func TestInstancesRevision(t *testing.T) {
	in := NewInstances[int]()
	r0 := in.Revision()
	in.Add(1)
	r1 := in.Revision()
	assert.Greater(t, r1, r0)

	require.NoError(t, in.Set(0, 2))
	r2 := in.Revision()
	assert.Greater(t, r2, r1)

	in.Clear()
	r3 := in.Revision()
	assert.Greater(t, r3, r2)
	assert.Equal(t, 0, in.Len())

	in.Clear()
	assert.Equal(t, r3, in.Revision(), "clearing an empty collection is not a mutation")
}
