package storage

import "fmt"

const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
)

// NewStore builds the record store named by kind. An empty kind selects the
// in-memory store; sqlitePath is only read for KindSQLite.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite:
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown record store %q: want %s or %s", kind, KindMemory, KindSQLite)
	}
}

// CloseIfSupported releases stores that hold resources, such as the sqlite
// connection pool.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
