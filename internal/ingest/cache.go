package ingest

import (
	"github.com/ginjaninja78/fixture-survey/internal/store"
)

// UnitColumnKey is the store key of the operator's unit column choice.
const UnitColumnKey = "selectedUnitColumn"

// ColumnCache remembers the unit column chosen for the current session.
type ColumnCache struct {
	store store.Store
}

// NewColumnCache creates a cache backed by s.
func NewColumnCache(s store.Store) *ColumnCache {
	return &ColumnCache{store: s}
}

// Get returns the cached column, or "" when nothing was cached.
func (c *ColumnCache) Get() (string, error) {
	value, ok, err := c.store.Get(UnitColumnKey)
	if err != nil || !ok {
		return "", err
	}
	return value, nil
}

// Set records the chosen column.
func (c *ColumnCache) Set(column string) error {
	return c.store.Set(UnitColumnKey, column)
}

// Forget drops the cached column.
func (c *ColumnCache) Forget() error {
	return c.store.Remove(UnitColumnKey)
}
