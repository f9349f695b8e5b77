// Package optimistic applies a local change before the backing store
// confirms it, reconciling with the canonical record on success and
// restoring the snapshot on failure.
package optimistic

import "context"

// Mutate runs one optimistic update over a locally cached value.
//
// snapshot is taken by value before apply touches anything, so a remote
// failure can restore the exact pre-mutation state. remote returns the
// canonical record as the store persisted it; when it is non-nil the local
// copy is reconciled to it, since the store may normalize fields the local
// apply guessed at (timestamps, server-side defaults).
func Mutate[T any](
	ctx context.Context,
	current T,
	apply func(T) T,
	remote func(context.Context, T) (*T, error),
	commit func(T),
) error {
	snapshot := current
	local := apply(current)
	commit(local)

	canonical, err := remote(ctx, local)
	if err != nil {
		commit(snapshot)
		return err
	}
	if canonical != nil {
		commit(*canonical)
	}
	return nil
}
