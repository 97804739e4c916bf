// Package audit keeps the append-only record of verification attempts.
package audit

import "context"

// Writer appends attempt records. Records are write-once; there is no
// update or delete operation anywhere in this package.
type Writer interface {
	Insert(ctx context.Context, attempt Attempt) error
}

// Reader provides reporting projections over the attempt log.
type Reader interface {
	// Recent returns the newest attempts, most recent first, up to limit.
	Recent(ctx context.Context, limit int) ([]Attempt, error)
	// Stats computes aggregates over the whole log.
	Stats(ctx context.Context) (Stats, error)
}

// Store combines the write and read sides.
type Store interface {
	Writer
	Reader
}
