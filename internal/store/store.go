// =============================================================================
// Fixture Survey - Key-Value Store
// =============================================================================
//
// Report state (raw rows, consolidated units, operator overrides) is kept in
// a plain key-value store. Values are JSON documents written whole on every
// change and the last write wins. Replace swaps the whole contents at once;
// a failed Replace leaves the previous contents in place.
//
// BACKENDS:
//   - memory : process-local map (tests, dry runs)
//   - file   : a single JSON document on disk
//   - sqlite : one row per key in an SQLite database (modernc.org/sqlite)
//
// =============================================================================

package store

import (
	"fmt"
	"strings"
)

// Store is the persistence capability shared by the pipeline and the
// override layer. Implementations are safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// Clear deletes every key.
	Clear() error

	// Replace atomically replaces every key with values.
	Replace(values map[string]string) error

	// Close releases the backend.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open creates a store for the named driver. path is ignored by the memory driver.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile, "json":
		return OpenFileStore(path)
	case DriverSQLite, "":
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
