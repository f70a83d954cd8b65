package domtimeline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

type (
	// Journal is an append-only audit log of History decisions. It is a
	// write path for external inspection; a History is never rebuilt from
	// one
	Journal interface {
		Append(context.Context, *JournalRecord) error
		Close() error
	}

	// JournalRecord is the serialized form of one Report
	JournalRecord struct {
		ID        string         `json:"-"`
		Timestamp time.Time      `json:"timestamp"`
		Decision  Decision       `json:"decision"`
		Label     string         `json:"label"`
		Stack     string         `json:"stack,omitempty"`
		Events    []JournalEvent `json:"events"`
	}

	// JournalEvent is the serialized form of one Event. Nodes are recorded
	// by the name a Namer gives them
	JournalEvent struct {
		Kind        string   `json:"kind"`
		Target      string   `json:"target"`
		Attribute   string   `json:"attribute,omitempty"`
		OldValue    *string  `json:"old_value,omitempty"`
		NewValue    *string  `json:"new_value,omitempty"`
		Added       []string `json:"added,omitempty"`
		Removed     []string `json:"removed,omitempty"`
		NextSibling string   `json:"next_sibling,omitempty"`
	}

	// Namer gives a node a human-readable name for the journal
	Namer[N comparable] func(N) string

	// JournalObserver writes every Report it observes to a Journal
	JournalObserver[N comparable] struct {
		journal Journal
		namer   Namer[N]
		logger  *zap.Logger
		timeout time.Duration
	}
)

// NewJournalRecord serializes a Report, naming nodes with namer
func NewJournalRecord[N comparable](
	r *Report[N], namer Namer[N],
) *JournalRecord {
	rec := &JournalRecord{
		Timestamp: r.Timestamp,
		Decision:  r.Decision,
		Label:     r.Attribution.Label,
		Events:    make([]JournalEvent, 0, len(r.Events)),
	}
	if c := r.Attribution.Cause; c != nil {
		rec.Stack = c.Stack
	}
	for _, ev := range r.Events {
		rec.Events = append(rec.Events, newJournalEvent(ev, namer))
	}
	return rec
}

func newJournalEvent[N comparable](ev *Event[N], namer Namer[N]) JournalEvent {
	var zero N
	je := JournalEvent{
		Kind:      ev.Kind.String(),
		Target:    namer(ev.Target),
		Attribute: ev.AttributeName,
	}
	if ev.Kind != KindChildList {
		je.OldValue = valuePtr(ev.OldValue)
		je.NewValue = valuePtr(ev.NewValue)
		return je
	}
	je.Added = nameAll(ev.AddedNodes, namer)
	je.Removed = nameAll(ev.RemovedNodes, namer)
	if ev.NextSibling != zero {
		je.NextSibling = namer(ev.NextSibling)
	}
	return je
}

func nameAll[N comparable](nodes []N, namer Namer[N]) []string {
	if len(nodes) == 0 {
		return nil
	}
	res := make([]string, len(nodes))
	for i, n := range nodes {
		res[i] = namer(n)
	}
	return res
}

func valuePtr(v Value) *string {
	if !v.Valid {
		return nil
	}
	return &v.Data
}

func marshalJournalRecord(rec *JournalRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func unmarshalJournalRecord(id string, data []byte) (*JournalRecord, error) {
	rec := &JournalRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	rec.ID = id
	return rec, nil
}

// NewJournalObserver creates an Observer that appends to journal. A write
// that fails or exceeds timeout is logged and otherwise ignored
func NewJournalObserver[N comparable](
	journal Journal, namer Namer[N], timeout time.Duration, logger *zap.Logger,
) *JournalObserver[N] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultJournalWriteTimeout
	}
	return &JournalObserver[N]{
		journal: journal,
		namer:   namer,
		logger:  logger,
		timeout: timeout,
	}
}

func (o *JournalObserver[N]) Observe(r *Report[N]) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	start := time.Now()
	err := o.journal.Append(ctx, NewJournalRecord(r, o.namer))
	if err != nil {
		o.logger.Error("Failed to append journal record",
			zap.String("decision", string(r.Decision)),
			zap.String("label", r.Attribution.Label),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	}
}
