// Package persistence periodically snapshots a catalog to disk and
// reloads it on startup, guarding the snapshot file against concurrent
// writers from another ahnlichd process with a file lock.
package persistence

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/ahnlich/ahnlich-go/internal/catalog"
)

// magic identifies an ahnlichd snapshot file; version allows the wire
// format to change without silently misreading an older file.
const (
	magic   = "AHN1"
	version = uint32(1)
)

func encodeSnapshot(snapshots []catalog.StoreSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	if err := binary.Write(&buf, binary.BigEndian, version); err != nil {
		return nil, fmt.Errorf("persistence: write header: %w", err)
	}
	if err := gob.NewEncoder(&buf).Encode(snapshots); err != nil {
		return nil, fmt.Errorf("persistence: encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(data []byte) ([]catalog.StoreSnapshot, error) {
	if len(data) < len(magic)+4 {
		return nil, fmt.Errorf("persistence: snapshot file too short")
	}
	if string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("persistence: bad magic %q", data[:len(magic)])
	}
	got := binary.BigEndian.Uint32(data[len(magic) : len(magic)+4])
	if got != version {
		return nil, fmt.Errorf("persistence: unsupported snapshot version %d", got)
	}

	var snapshots []catalog.StoreSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data[len(magic)+4:])).Decode(&snapshots); err != nil {
		return nil, fmt.Errorf("persistence: decode snapshot: %w", err)
	}
	return snapshots, nil
}
