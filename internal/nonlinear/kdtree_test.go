package nonlinear

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

func vecID(b byte) valuetype.EntryID {
	var e valuetype.EntryID
	e[0] = b
	return e
}

func TestKDTreeInsertAndNearest(t *testing.T) {
	tree := NewKDTree(2)
	require.NoError(t, tree.Insert(vecID(1), valuetype.Vector{0, 0}))
	require.NoError(t, tree.Insert(vecID(2), valuetype.Vector{1, 0}))
	require.NoError(t, tree.Insert(vecID(3), valuetype.Vector{10, 10}))

	require.Equal(t, similarity.Euclidean, tree.Algorithm())
	require.Equal(t, 3, tree.Len())

	neighbors, err := tree.Nearest(valuetype.Vector{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	require.Equal(t, vecID(1), neighbors[0].ID)
	require.Equal(t, vecID(2), neighbors[1].ID)
}

func TestKDTreeDimensionMismatch(t *testing.T) {
	tree := NewKDTree(3)
	require.Error(t, tree.Insert(vecID(1), valuetype.Vector{1, 2}))

	require.NoError(t, tree.Insert(vecID(2), valuetype.Vector{1, 2, 3}))
	_, err := tree.Nearest(valuetype.Vector{1, 2}, 1)
	require.Error(t, err)
}

func TestKDTreeRemoveAndRebuild(t *testing.T) {
	tree := NewKDTree(1)
	for i := byte(1); i <= 8; i++ {
		require.NoError(t, tree.Insert(vecID(i), valuetype.Vector{float32(i)}))
	}
	require.Equal(t, 8, tree.Len())

	// Delete two entries: after the second, 2 tombstones against 6 live
	// nodes reach the 25% rebuild threshold and the tree is rebuilt.
	tree.Remove(vecID(1))
	tree.Remove(vecID(2))
	require.Equal(t, 6, tree.Len())

	neighbors, err := tree.Nearest(valuetype.Vector{0}, 8)
	require.NoError(t, err)
	require.Len(t, neighbors, 6)
	for _, n := range neighbors {
		require.NotEqual(t, vecID(1), n.ID)
		require.NotEqual(t, vecID(2), n.ID)
	}
}

func TestKDTreeRemoveMissingIsNoop(t *testing.T) {
	tree := NewKDTree(1)
	require.NoError(t, tree.Insert(vecID(1), valuetype.Vector{1}))
	tree.Remove(vecID(99))
	require.Equal(t, 1, tree.Len())
}

func TestKDTreeNearestZeroOrNegativeN(t *testing.T) {
	tree := NewKDTree(1)
	require.NoError(t, tree.Insert(vecID(1), valuetype.Vector{1}))
	neighbors, err := tree.Nearest(valuetype.Vector{1}, 0)
	require.NoError(t, err)
	require.Empty(t, neighbors)
}
