package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahnlich/ahnlich-go/internal/catalog"
	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

func TestEncodeDecodeSnapshotRoundTrip(t *testing.T) {
	snapshots := []catalog.StoreSnapshot{
		{
			Name:       "s1",
			Dimension:  2,
			Predicates: []string{"brand"},
			Backends:   []nonlinear.Backend{nonlinear.BackendHNSW},
			Entries: []valuetype.Entry{
				{Vector: valuetype.Vector{1, 2}, Metadata: valuetype.MetadataMap{"brand": valuetype.NewText("Nike")}},
			},
		},
	}

	data, err := encodeSnapshot(snapshots)
	require.NoError(t, err)

	got, err := decodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, snapshots, got)
}

func TestDecodeSnapshotRejectsBadMagic(t *testing.T) {
	_, err := decodeSnapshot([]byte("NOPEXXXX"))
	require.Error(t, err)
}

func TestDecodeSnapshotRejectsShortInput(t *testing.T) {
	_, err := decodeSnapshot([]byte("AH"))
	require.Error(t, err)
}

func TestDecodeSnapshotRejectsFutureVersion(t *testing.T) {
	data, err := encodeSnapshot(nil)
	require.NoError(t, err)
	data[len(magic)+3] = 0xFF // bump the low version byte past what we support

	_, err = decodeSnapshot(data)
	require.Error(t, err)
}
