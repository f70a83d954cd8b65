package domtimeline

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	// Decision is what the History did with a batch of changes
	Decision string

	// Report describes one decision. For Lost reports the Events carry no
	// NewValue
	Report[N comparable] struct {
		Timestamp   time.Time
		Decision    Decision
		Attribution Attribution
		Events      []*Event[N]
	}

	// Observer is told about every decision the History makes. It must not
	// change the History or the Tree
	Observer[N comparable] interface {
		Observe(*Report[N])
	}

	// ObserverFunc adapts a function to the Observer interface
	ObserverFunc[N comparable] func(*Report[N])

	// Inspector is called for every entry right before it is committed,
	// which makes it a convenient place for conditional breakpoints
	Inspector[N comparable] func(*Entry[N])

	// ZapObserver logs every Report through zap
	ZapObserver[N comparable] struct {
		logger *zap.Logger
		level  zapcore.Level
	}
)

const (
	Committed Decision = "committed"
	Lost      Decision = "lost"
	Undone    Decision = "undone"
	Redone    Decision = "redone"
)

// Observe calls the function
func (fn ObserverFunc[N]) Observe(r *Report[N]) {
	fn(r)
}

// NewZapObserver creates a ZapObserver that logs at Info level
func NewZapObserver[N comparable](logger *zap.Logger) *ZapObserver[N] {
	return &ZapObserver[N]{
		logger: logger,
		level:  zapcore.InfoLevel,
	}
}

// SetLevel changes the level Reports are logged at
func (o *ZapObserver[N]) SetLevel(l zapcore.Level) {
	o.level = l
}

func (o *ZapObserver[N]) Observe(r *Report[N]) {
	ce := o.logger.Check(o.level, r.Attribution.Label)
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("decision", string(r.Decision)),
		zap.Int("count", len(r.Events)),
	}
	for i, ev := range r.Events {
		fields = append(fields, zap.Dict("event",
			zap.Int("index", i),
			zap.Stringer("kind", ev.Kind),
			zap.String("attribute", ev.AttributeName),
			zap.Stringer("old", ev.OldValue),
			zap.Stringer("new", ev.NewValue),
		))
	}
	if c := r.Attribution.Cause; c != nil {
		fields = append(fields, zap.String("stack", c.Stack))
	}
	ce.Write(fields...)
}

func (h *History[N]) notify(d Decision, attr Attribution, evs []*Event[N]) {
	if len(h.observers) == 0 {
		return
	}
	r := &Report[N]{
		Timestamp:   time.Now(),
		Decision:    d,
		Attribution: attr,
		Events:      evs,
	}
	for _, o := range h.observers {
		o.Observe(r)
	}
}
