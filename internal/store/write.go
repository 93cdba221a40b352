package store

import (
	"context"
	"fmt"

	"github.com/roach88/memento/internal/ir"
)

// Put inserts or replaces the entity (logicalType, key).
// Writing an identical payload again is a no-op: seq only advances when
// the content hash changes.
func (s *Store) Put(ctx context.Context, logicalType, key string, payload ir.IRObject) error {
	if logicalType == "" || key == "" {
		return fmt.Errorf("put entity: empty logical type or key")
	}
	data, hash, err := marshalPayload(logicalType, payload)
	if err != nil {
		return fmt.Errorf("put entity %s:%s: %w", logicalType, key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities (logical_type, key, payload, content_hash, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM entities))
		ON CONFLICT(logical_type, key) DO UPDATE SET
			payload = excluded.payload,
			content_hash = excluded.content_hash,
			seq = excluded.seq
		WHERE entities.content_hash != excluded.content_hash
	`, logicalType, key, data, hash)
	if err != nil {
		return fmt.Errorf("put entity %s:%s: %w", logicalType, key, err)
	}
	return nil
}

// Delete removes an entity. Deleting a missing row is not an error.
func (s *Store) Delete(ctx context.Context, logicalType, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE logical_type = ? AND key = ?`, logicalType, key)
	if err != nil {
		return fmt.Errorf("delete entity %s:%s: %w", logicalType, key, err)
	}
	return nil
}
