package catalog

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no cgo

	"github.com/ahnlich/ahnlich-go/internal/apierr"
)

// auditQueueCapacity bounds the buffered channel so a burst of catalog
// mutations never blocks on the audit writer goroutine.
const auditQueueCapacity = 1024

// auditRow is one append-only record of a catalog-level mutation.
type auditRow struct {
	timestamp time.Time
	operation string
	storeName string
	dimension int
}

// AuditLog appends every CreateStore/DropStore/PurgeStores call to a
// local SQLite database when enabled. Writes are asynchronous: Record
// never blocks the catalog's writer lock, matching the "never on the
// hot query path" requirement.
type AuditLog struct {
	db    *sql.DB
	queue chan auditRow
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// OpenAuditLog opens (creating if absent) a SQLite-backed audit log at
// path and starts its background writer goroutine.
func OpenAuditLog(path string) (*AuditLog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, apierr.Wrap(apierr.CodePersistenceFailure, err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS catalog_audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		operation TEXT NOT NULL,
		store_name TEXT NOT NULL,
		dimension INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apierr.Wrap(apierr.CodePersistenceFailure, err)
	}

	l := &AuditLog{
		db:    db,
		queue: make(chan auditRow, auditQueueCapacity),
		done:  make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Record enqueues an audit row. If the queue is full, the row is
// dropped and logged, rather than blocking the caller.
func (l *AuditLog) Record(operation, storeName string, dimension int) {
	row := auditRow{timestamp: time.Now(), operation: operation, storeName: storeName, dimension: dimension}
	select {
	case l.queue <- row:
	default:
		slog.Warn("audit log queue full, dropping row", slog.String("operation", operation))
	}
}

func (l *AuditLog) run() {
	defer close(l.done)
	stmt := `INSERT INTO catalog_audit (timestamp, operation, store_name, dimension) VALUES (?, ?, ?, ?)`
	for row := range l.queue {
		if _, err := l.db.Exec(stmt, row.timestamp.Format(time.RFC3339Nano), row.operation, row.storeName, row.dimension); err != nil {
			slog.Warn("audit log write failed", slog.String("error", err.Error()))
		}
	}
}

// Close drains pending rows and closes the underlying database. Later
// calls do nothing and return the first call's result.
func (l *AuditLog) Close() error {
	l.closeOnce.Do(func() {
		close(l.queue)
		<-l.done
		if err := l.db.Close(); err != nil {
			l.closeErr = fmt.Errorf("audit log close: %w", err)
		}
	})
	return l.closeErr
}
