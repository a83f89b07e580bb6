//go:build !sqlite

package storage

import "errors"

func DefaultStoreKind() string {
	return KindMemory
}

func newSQLiteStore(_ string) (Store, error) {
	return nil, errors.New("sqlite record store requires a build with -tags sqlite")
}
