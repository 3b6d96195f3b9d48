package domain

import "context"

// Transactor runs a function atomically against storage. Operations
// that change more than one aggregate wrap their writes in it so a
// failure leaves neither write applied.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
