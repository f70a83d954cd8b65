package domtimeline

import (
	"time"

	"go.uber.org/zap"
)

// Flush drains the Watcher and records whatever it delivered as unclaimed
func (h *History[N]) Flush() error {
	return h.OnFlush(h.watcher.Drain(), Attribution{Label: Unclaimed})
}

// OnFlush processes one batch of raw events delivered by the Watcher.
// Batches produced while the History is mutating the Tree itself are
// dropped. If a future exists, the batch is reverted and kept only in the
// lost future, so the timeline never forks. Otherwise every event is
// reconstructed and committed as its own Entry
func (h *History[N]) OnFlush(raw []*RawEvent[N], attr Attribution) error {
	if len(raw) == 0 || h.offRecords > 0 {
		return nil
	}
	if attr.Label == "" {
		attr.Label = Unclaimed
	}
	if len(h.future) > 0 {
		return h.cancel(raw, attr)
	}
	h.commit(raw, attr)
	return nil
}

func (h *History[N]) commit(raw []*RawEvent[N], attr Attribution) {
	now := time.Now()
	events := Reconstruct(raw, h.live)
	for _, ev := range events {
		e := &Entry[N]{
			Timestamp:   now,
			Event:       ev,
			Attribution: attr,
			Sequence:    h.nextSeq,
		}
		h.nextSeq++
		if h.inspector != nil {
			h.inspector(e)
		}
		h.past = append(h.past, e)
	}
	h.past = keepLast(h.past, h.config.MaxPast)

	h.logger.Debug("changes committed",
		zap.String("label", attr.Label),
		zap.Int("count", len(events)),
		zap.Int("past", len(h.past)),
	)
	h.notify(Committed, attr, events)
}

func (h *History[N]) cancel(raw []*RawEvent[N], attr Attribution) error {
	if len(h.lostFuture) == 0 {
		h.logger.Warn(
			"changes canceled while reviewing the past; see LostFuture",
			zap.String("label", attr.Label),
			zap.Int("count", len(raw)),
			zap.Int("future", len(h.future)),
		)
	}
	h.lostFuture = append(h.lostFuture, raw...)
	h.lostFuture = keepLast(h.lostFuture, h.config.MaxLostFuture)

	err := h.withOffRecords(func() error {
		for i := len(raw) - 1; i >= 0; i-- {
			ev := Unreconstructed(raw[i])
			if err := h.applier.Apply(ev, Backward); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.logger.Error("failed to cancel changes",
			zap.String("label", attr.Label),
			zap.Error(err),
		)
	}

	events := make([]*Event[N], len(raw))
	for i, r := range raw {
		events[i] = Unreconstructed(r)
	}
	h.notify(Lost, attr, events)
	return err
}

// withOffRecords runs fn with the reentrancy guard raised. Whatever the
// Watcher collected while fn ran is drained and dropped before the guard
// is lowered, on every exit path
func (h *History[N]) withOffRecords(fn func() error) error {
	h.offRecords++
	defer func() {
		defer func() { h.offRecords-- }()
		_ = h.watcher.Drain()
	}()
	return fn()
}

// OffRecords reports whether the History is currently mutating the Tree
// itself
func (h *History[N]) OffRecords() bool {
	return h.offRecords > 0
}
