package ports

import "context"

// FlatStore is the flat key-value storage the service persists into.
// Get reports found=false, not an error, for a missing key.
type FlatStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
