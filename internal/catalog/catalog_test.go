package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

func TestCreateAndGetStore(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateStore("s", 3, nil, nil, true))

	s, err := c.GetStore("s")
	require.NoError(t, err)
	require.Equal(t, "s", s.Name())
	require.Equal(t, 3, s.Dimension())
}

func TestCreateStoreAlreadyExists(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateStore("s", 3, nil, nil, true))

	err := c.CreateStore("s", 3, nil, nil, true)
	require.Error(t, err)
	require.Equal(t, apierr.CodeStoreAlreadyExists, apierr.CodeOf(err))

	require.NoError(t, c.CreateStore("s", 3, nil, nil, false))
}

func TestGetStoreNotFound(t *testing.T) {
	c := New()
	_, err := c.GetStore("missing")
	require.Error(t, err)
	require.Equal(t, apierr.CodeStoreNotFound, apierr.CodeOf(err))
}

func TestDropStore(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateStore("s", 3, nil, nil, true))

	deleted, err := c.DropStore("s", true)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = c.DropStore("s", true)
	require.Error(t, err)
	require.Equal(t, apierr.CodeStoreNotFound, apierr.CodeOf(err))

	deleted, err = c.DropStore("s", false)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestPurgeStores(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateStore("a", 2, nil, nil, true))
	require.NoError(t, c.CreateStore("b", 2, nil, nil, true))

	count, err := c.PurgeStores()
	require.NoError(t, err)
	require.Equal(t, 2, count)

	_, err = c.GetStore("a")
	require.Error(t, err)
}

func TestListStoresReportsLenAndSize(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateStore("s", 2, nil, nil, true))

	s, err := c.GetStore("s")
	require.NoError(t, err)
	_, err = s.Set([]valuetype.Entry{{Vector: valuetype.Vector{1, 2}, Metadata: valuetype.MetadataMap{"k": valuetype.NewText("v")}}})
	require.NoError(t, err)

	infos := c.ListStores()
	require.Len(t, infos, 1)
	require.Equal(t, "s", infos[0].Name)
	require.Equal(t, 1, infos[0].Len)
	require.Greater(t, infos[0].SizeInBytes, int64(0))
}

func TestListStoresSizeCacheInvalidatesOnLenChange(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateStore("s", 2, nil, nil, true))
	s, err := c.GetStore("s")
	require.NoError(t, err)

	first := c.ListStores()[0].SizeInBytes

	_, err = s.Set([]valuetype.Entry{{Vector: valuetype.Vector{1, 2}, Metadata: valuetype.MetadataMap{"k": valuetype.NewText("v")}}})
	require.NoError(t, err)

	second := c.ListStores()[0].SizeInBytes
	require.Greater(t, second, first)
}
