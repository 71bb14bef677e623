//go:build !sqlite

package storage

import "fmt"

func newSQLiteStore(path string) (Store, error) {
	return nil, fmt.Errorf("%w: sqlite (%s) needs a build with -tags sqlite", ErrUnsupportedBackend, path)
}
