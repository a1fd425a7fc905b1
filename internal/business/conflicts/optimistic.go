package conflicts

import (
	"errors"
	"sync"
)

type writeState int

const (
	writePending writeState = iota
	writeCommitted
	writeRolledBack
)

// ErrWriteSettled reports a second transition on an already settled write.
var ErrWriteSettled = errors.New("optimistic write already settled")

// optimisticWrite applies a local change immediately and settles it exactly
// once: Commit keeps the change, Rollback undoes it. The resolution write
// path uses this so a failed persistence call leaves local state as it was,
// with a retryable error for the caller.
type optimisticWrite struct {
	mu     sync.Mutex
	state  writeState
	revert func()
}

func newOptimisticWrite(apply, revert func()) *optimisticWrite {
	apply()
	return &optimisticWrite{revert: revert}
}

func (w *optimisticWrite) Commit() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != writePending {
		return ErrWriteSettled
	}

	w.state = writeCommitted
	return nil
}

func (w *optimisticWrite) Rollback() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != writePending {
		return ErrWriteSettled
	}

	w.revert()
	w.state = writeRolledBack
	return nil
}

func (w *optimisticWrite) State() writeState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}
