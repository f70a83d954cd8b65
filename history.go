package domtimeline

import (
	"slices"

	"go.uber.org/zap"
)

type (
	// History records every change made to a Tree and moves the Tree
	// backward and forward through them. Like the trees it watches, it is
	// not safe for concurrent use
	History[N comparable] struct {
		config     Config
		tree       Tree[N]
		watcher    Watcher[N]
		applier    *Applier[N]
		live       LiveFunc[N]
		logger     *zap.Logger
		observers  []Observer[N]
		inspector  Inspector[N]
		past       []*Entry[N]
		future     []*Entry[N]
		lostFuture []*RawEvent[N]
		offRecords int
		nextSeq    int64
	}

	// Option configures a History at construction
	Option[N comparable] func(*History[N])
)

// New creates a History over the provided Tree, fed by the Watcher that
// observes it
func New[N comparable](
	tree Tree[N], watcher Watcher[N], opts ...Option[N],
) *History[N] {
	h := &History[N]{
		config:  DefaultConfig(),
		tree:    tree,
		watcher: watcher,
		applier: NewApplier(tree),
		live:    TreeLive(tree),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithConfig replaces the DefaultConfig
func WithConfig[N comparable](cfg Config) Option[N] {
	return func(h *History[N]) {
		h.config = cfg
	}
}

// WithLogger sets the logger used for engine diagnostics
func WithLogger[N comparable](logger *zap.Logger) Option[N] {
	return func(h *History[N]) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithObserver adds an Observer to be notified of every decision
func WithObserver[N comparable](o Observer[N]) Option[N] {
	return func(h *History[N]) {
		h.observers = append(h.observers, o)
	}
}

// WithInspector sets the hook called for each entry before it is committed
func WithInspector[N comparable](fn Inspector[N]) Option[N] {
	return func(h *History[N]) {
		h.inspector = fn
	}
}

// WithLiveFunc overrides how present values are read during reconstruction
func WithLiveFunc[N comparable](fn LiveFunc[N]) Option[N] {
	return func(h *History[N]) {
		h.live = fn
	}
}

// Past returns the committed entries, most recent last
func (h *History[N]) Past() []*Entry[N] {
	return slices.Clone(h.past)
}

// Future returns the undone entries awaiting redo, next to redo last
func (h *History[N]) Future() []*Entry[N] {
	return slices.Clone(h.future)
}

// LostFuture returns the raw events that were canceled because they
// happened while a future existed
func (h *History[N]) LostFuture() []*RawEvent[N] {
	return slices.Clone(h.lostFuture)
}

// CanUndo reports whether there is a committed entry to undo
func (h *History[N]) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether there is an undone entry to redo
func (h *History[N]) CanRedo() bool {
	return len(h.future) > 0
}

// Undo reverts the most recent committed entry and moves it to the future.
// Pending notifications are committed first. With nothing to undo it is a
// no-op
func (h *History[N]) Undo() error {
	if err := h.Flush(); err != nil {
		return err
	}
	n := len(h.past)
	if n == 0 {
		return nil
	}

	e := h.past[n-1]
	h.past = h.past[:n-1]
	h.future = append(h.future, e)

	err := h.withOffRecords(func() error {
		return h.applier.Apply(e.Event, Backward)
	})
	h.logStep("undo", e, err)
	if err != nil {
		return err
	}
	h.notify(Undone, e.Attribution, []*Event[N]{e.Event})
	return nil
}

// Redo reapplies the most recently undone entry and moves it back to the
// past. With nothing to redo it is a no-op
func (h *History[N]) Redo() error {
	if err := h.Flush(); err != nil {
		return err
	}
	n := len(h.future)
	if n == 0 {
		return nil
	}

	e := h.future[n-1]
	h.future = h.future[:n-1]
	h.past = append(h.past, e)

	err := h.withOffRecords(func() error {
		return h.applier.Apply(e.Event, Forward)
	})
	h.logStep("redo", e, err)
	if err != nil {
		return err
	}
	h.notify(Redone, e.Attribution, []*Event[N]{e.Event})
	return nil
}

// Rewind undoes every committed entry, returning how many were undone
func (h *History[N]) Rewind() (int, error) {
	count := 0
	for h.CanUndo() {
		if err := h.Undo(); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// FastForward redoes every undone entry, returning how many were redone
func (h *History[N]) FastForward() (int, error) {
	count := 0
	for h.CanRedo() {
		if err := h.Redo(); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (h *History[N]) logStep(op string, e *Entry[N], err error) {
	if err != nil {
		h.logger.Error("history step failed",
			zap.String("op", op),
			zap.Int64("sequence", e.Sequence),
			zap.Stringer("kind", e.Event.Kind),
			zap.Error(err),
		)
		return
	}
	h.logger.Debug("history step",
		zap.String("op", op),
		zap.Int64("sequence", e.Sequence),
		zap.Stringer("kind", e.Event.Kind),
		zap.Int("past", len(h.past)),
		zap.Int("future", len(h.future)),
	)
}

func keepLast[T any](s []T, limit int) []T {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return slices.Clone(s[len(s)-limit:])
}
