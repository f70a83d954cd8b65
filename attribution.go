package domtimeline

import (
	"errors"
	"runtime/debug"
)

// Claimer runs a Tree-mutating operation and attributes the changes it
// makes to a label. History implements it; instrumented trees consume it
type Claimer interface {
	Claim(label string, fn func() error) error
}

var _ Claimer = (*History[int])(nil)

// Claim commits any pending unattributed changes, runs fn, and commits the
// changes fn made under label. If Config.TrackCallstacks is set, the
// batch's Cause holds the stack of the caller. While the History is
// mutating the Tree itself, fn just runs
func (h *History[N]) Claim(label string, fn func() error) error {
	if h.offRecords > 0 {
		return fn()
	}
	if err := h.Flush(); err != nil {
		return err
	}

	runErr := fn()
	attr := Attribution{Label: label}
	if h.config.TrackCallstacks {
		attr.Cause = &Cause{Stack: string(debug.Stack())}
	}
	if err := h.OnFlush(h.watcher.Drain(), attr); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}
