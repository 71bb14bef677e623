//go:build !sqlite

package storage

import (
	"errors"
	"testing"
)

func TestNewStoreSQLiteUnavailable(t *testing.T) {
	if _, err := NewStore(KindSQLite, "spikewalk.db"); !errors.Is(err, ErrUnsupportedBackend) {
		t.Fatalf("expected sqlite backend to be unavailable without the build tag, got %v", err)
	}
}
