package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/memento/internal/ir"
	"github.com/roach88/memento/internal/objects"
)

// ErrNotFound is returned by Get for missing rows.
var ErrNotFound = errors.New("store: entity not found")

// Entity is one stored row.
type Entity struct {
	LogicalType string
	Key         string
	Payload     ir.IRObject
	ContentHash string
	Seq         int64
}

// Get returns the entity (logicalType, key) or ErrNotFound.
func (s *Store) Get(ctx context.Context, logicalType, key string) (Entity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT logical_type, key, payload, content_hash, seq
		FROM entities
		WHERE logical_type = ? AND key = ?
	`, logicalType, key)

	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, fmt.Errorf("%w: %s:%s", ErrNotFound, logicalType, key)
	}
	if err != nil {
		return Entity{}, err
	}
	return e, nil
}

// Fetch implements objects.Repository. Missing rows match both ErrNotFound
// and objects.ErrNotFound.
func (s *Store) Fetch(ctx context.Context, logicalType, key string) (ir.IRObject, error) {
	e, err := s.Get(ctx, logicalType, key)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", objects.ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return e.Payload, nil
}

var _ objects.Repository = (*Store)(nil)

// List returns the entities of logicalType in write order.
// Results are ordered deterministically: ORDER BY seq ASC, key COLLATE BINARY ASC.
// Returns an empty slice (not nil) if none exist.
func (s *Store) List(ctx context.Context, logicalType string) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT logical_type, key, payload, content_hash, seq
		FROM entities
		WHERE logical_type = ?
		ORDER BY seq ASC, key COLLATE BINARY ASC
	`, logicalType)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	entities := []Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return entities, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (Entity, error) {
	var e Entity
	var payload string
	if err := row.Scan(&e.LogicalType, &e.Key, &payload, &e.ContentHash, &e.Seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entity{}, err
		}
		return Entity{}, fmt.Errorf("scan entity: %w", err)
	}
	obj, err := unmarshalPayload(payload)
	if err != nil {
		return Entity{}, fmt.Errorf("entity %s:%s: %w", e.LogicalType, e.Key, err)
	}
	e.Payload = obj
	return e, nil
}
