package storage

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrInstanceLocked is returned when another bot process holds the database lock
var ErrInstanceLocked = errors.New("another instance is already using this database")

// AcquireInstanceLock takes an exclusive, non-blocking lock on path.
func AcquireInstanceLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, ErrInstanceLocked
	}

	return lock, nil
}
