package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both absent records and records owned by
	// another user, so error detail never confirms foreign ids.
	ErrNotFound = errors.New("not found")

	ErrInvalidInput = errors.New("invalid input")
	ErrWrongPin     = errors.New("wrong pin")
	ErrConflict     = errors.New("already exists")

	// ErrStoreUnavailable reports a failed durable write; the prior
	// committed state remains authoritative.
	ErrStoreUnavailable = errors.New("store unavailable")
)

var taxonomy = []error{ErrNotFound, ErrInvalidInput, ErrWrongPin, ErrConflict, ErrStoreUnavailable}

// storeErr passes taxonomy errors through unchanged and folds anything
// else (driver failures, rollback errors) into ErrStoreUnavailable.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range taxonomy {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
