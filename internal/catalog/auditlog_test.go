package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuditLogRecordsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	log, err := OpenAuditLog(path)
	require.NoError(t, err)
	defer log.Close()

	log.Record("create_store", "products", 128)
	require.NoError(t, log.Close())

	db2, err := OpenAuditLog(path)
	require.NoError(t, err)
	defer db2.Close()

	var count int
	row := db2.db.QueryRow("SELECT COUNT(*) FROM catalog_audit WHERE store_name = ?", "products")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)
}

func TestCatalogWithAuditLogRecordsCreateAndDrop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	log, err := OpenAuditLog(path)
	require.NoError(t, err)
	defer log.Close()

	c := New(WithAuditLog(log))
	require.NoError(t, c.CreateStore("s", 2, nil, nil, true))
	_, err = c.DropStore("s", true)
	require.NoError(t, err)

	// Close blocks until the async writer has drained both rows.
	require.NoError(t, log.Close())

	reopened, err := OpenAuditLog(path)
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	row := reopened.db.QueryRow("SELECT COUNT(*) FROM catalog_audit WHERE store_name = ?", "s")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 2, count)
}
