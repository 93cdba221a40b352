package objects

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/memento/internal/ir"
)

// Memory is an in-process Repository.
type Memory struct {
	mu   sync.RWMutex
	rows map[memoryKey]ir.IRObject
}

type memoryKey struct {
	logicalType string
	key         string
}

// NewMemory returns an empty repository.
func NewMemory() *Memory {
	return &Memory{rows: make(map[memoryKey]ir.IRObject)}
}

func (m *Memory) Fetch(_ context.Context, logicalType, key string) (ir.IRObject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[memoryKey{logicalType, key}]
	if !ok {
		return nil, fmt.Errorf("%w: %s:%s", ErrNotFound, logicalType, key)
	}
	return row.Clone(), nil
}

func (m *Memory) Put(_ context.Context, logicalType, key string, decomposition ir.IRObject) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[memoryKey{logicalType, key}] = decomposition.Clone()
	return nil
}

// Delete removes a row; deleting a missing row is not an error.
func (m *Memory) Delete(logicalType, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rows, memoryKey{logicalType, key})
}
