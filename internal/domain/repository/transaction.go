package repository

import (
	"context"
	"errors"
)

// ErrDuplicateKey is returned when a write violates a unique constraint
var ErrDuplicateKey = errors.New("duplicate key")

// TxManager runs a unit of work atomically. Repositories called with the
// context passed to fn take part in the same transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SequenceGenerator issues per-day transaction sequences.
// Next returns 1 for the first call of a day and increases by one on every call.
type SequenceGenerator interface {
	Next(ctx context.Context, day string) (int64, error)
}
