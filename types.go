package domtimeline

import (
	"fmt"
	"time"
)

type (
	// Kind identifies the primitive change a RawEvent describes
	Kind uint8

	// Direction selects whether an Event is replayed or reverted
	Direction uint8

	// Value is an optional string. An invalid Value stands for an absent
	// attribute (or a null character data value)
	Value struct {
		Data  string
		Valid bool
	}

	// RawEvent is a single change notification as delivered by a Watcher.
	// It only carries the value before the change
	RawEvent[N comparable] struct {
		Kind          Kind
		Target        N
		AttributeName string
		OldValue      Value
		AddedNodes    []N
		RemovedNodes  []N
		NextSibling   N
	}

	// Event is a RawEvent augmented with the value it produced. Once built
	// it can be applied in either direction without reading the tree
	Event[N comparable] struct {
		RawEvent[N]
		NewValue Value
	}

	// Cause describes where a claimed batch came from
	Cause struct {
		Stack string
	}

	// Attribution labels the batch an Entry was committed with
	Attribution struct {
		Label string
		Cause *Cause
	}

	// Entry is one committed, individually undoable change
	Entry[N comparable] struct {
		Timestamp   time.Time
		Event       *Event[N]
		Attribution Attribution
		Sequence    int64
	}
)

const (
	KindAttribute Kind = iota
	KindText
	KindChildList
)

const (
	Backward Direction = iota
	Forward
)

// Unclaimed is the label given to batches committed without attribution
const Unclaimed = "unclaimed"

// NullValue is the absent Value
var NullValue = Value{}

// StringValue returns a present Value holding s
func StringValue(s string) Value {
	return Value{Data: s, Valid: true}
}

func (v Value) String() string {
	if !v.Valid {
		return "<null>"
	}
	return v.Data
}

func (k Kind) String() string {
	switch k {
	case KindAttribute:
		return "attributes"
	case KindText:
		return "characterData"
	case KindChildList:
		return "childList"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Unclaimed reports whether the batch was committed without a label
func (a Attribution) Unclaimed() bool {
	return a.Label == "" || a.Label == Unclaimed
}

// Key identifies the value slot a RawEvent changes. ChildList events have
// no value slot and report false
func (e *RawEvent[N]) Key() (ValueKey[N], bool) {
	switch e.Kind {
	case KindAttribute:
		return ValueKey[N]{Target: e.Target, Name: e.AttributeName}, true
	case KindText:
		return ValueKey[N]{Target: e.Target, Text: true}, true
	default:
		return ValueKey[N]{}, false
	}
}

// Unreconstructed wraps a RawEvent as an Event whose NewValue is unknown
func Unreconstructed[N comparable](raw *RawEvent[N]) *Event[N] {
	return &Event[N]{RawEvent: *raw}
}
