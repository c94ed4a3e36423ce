package catalog

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog means the store holds no assets at all.
var ErrEmptyCatalog = errors.New("hairstyle catalog is empty")

// StoreError wraps a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("asset store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err unless it is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
