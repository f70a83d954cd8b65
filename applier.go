package domtimeline

import "fmt"

type (
	// Applier realizes Events against a Tree in either direction
	Applier[N comparable] struct {
		tree     Tree[N]
		handlers map[Kind]applyHandler[N]
	}

	// ApplyError reports a Tree failure while applying an Event
	ApplyError struct {
		Err       error
		Kind      Kind
		Direction Direction
	}

	applyHandler[N comparable] func(Tree[N], *Event[N], Direction) error
)

// NewApplier creates an Applier that mutates the provided Tree
func NewApplier[N comparable](tree Tree[N]) *Applier[N] {
	return &Applier[N]{
		tree: tree,
		handlers: map[Kind]applyHandler[N]{
			KindAttribute: applyAttribute[N],
			KindText:      applyText[N],
			KindChildList: applyChildList[N],
		},
	}
}

// Apply mutates the Tree so that the Event's effect is realized (Forward)
// or reverted (Backward). Callers are responsible for keeping the
// resulting notifications off the records
func (a *Applier[N]) Apply(ev *Event[N], dir Direction) error {
	fn, ok := a.handlers[ev.Kind]
	if !ok {
		return &ApplyError{
			Kind:      ev.Kind,
			Direction: dir,
			Err:       ErrUnknownKind,
		}
	}
	if err := fn(a.tree, ev, dir); err != nil {
		return &ApplyError{Kind: ev.Kind, Direction: dir, Err: err}
	}
	return nil
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s %s: %v", e.Direction, e.Kind, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

func applyAttribute[N comparable](t Tree[N], ev *Event[N], dir Direction) error {
	if dir == Forward {
		return t.SetAttribute(ev.Target, ev.AttributeName, ev.NewValue)
	}
	return t.SetAttribute(ev.Target, ev.AttributeName, ev.OldValue)
}

func applyText[N comparable](t Tree[N], ev *Event[N], dir Direction) error {
	if dir == Forward {
		return t.SetText(ev.Target, ev.NewValue)
	}
	return t.SetText(ev.Target, ev.OldValue)
}

func applyChildList[N comparable](
	t Tree[N], ev *Event[N], dir Direction,
) error {
	insert, remove := ev.RemovedNodes, ev.AddedNodes
	if dir == Forward {
		insert, remove = ev.AddedNodes, ev.RemovedNodes
	}

	if dir == Backward {
		if err := removeAll(t, remove); err != nil {
			return err
		}
	}

	ref := ev.NextSibling
	for i := len(insert) - 1; i >= 0; i-- {
		if err := t.InsertBefore(ev.Target, insert[i], ref); err != nil {
			return err
		}
		ref = insert[i]
	}

	if dir == Forward {
		return removeAll(t, remove)
	}
	return nil
}

func removeAll[N comparable](t Tree[N], nodes []N) error {
	for i := len(nodes) - 1; i >= 0; i-- {
		if err := t.Remove(nodes[i]); err != nil {
			return err
		}
	}
	return nil
}
