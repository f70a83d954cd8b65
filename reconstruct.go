package domtimeline

type (
	// ValueKey identifies a value slot on a node: one attribute, or the
	// node's character data
	ValueKey[N comparable] struct {
		Target N
		Name   string
		Text   bool
	}

	// LiveFunc reads the present value of a slot from the tree
	LiveFunc[N comparable] func(ValueKey[N]) Value
)

// TreeLive returns a LiveFunc that reads values straight from a Tree
func TreeLive[N comparable](tree Tree[N]) LiveFunc[N] {
	return func(k ValueKey[N]) Value {
		if k.Text {
			return tree.Text(k.Target)
		}
		return tree.Attribute(k.Target, k.Name)
	}
}

// Reconstruct derives the NewValue of every attribute and text event in a
// chronologically ordered batch. Raw notifications only carry the value
// before each change, so the batch is walked from newest to oldest: the
// newest change to a slot produced the live value, and every older change
// produced the value the next newer change saw as its old value
func Reconstruct[N comparable](
	batch []*RawEvent[N], live LiveFunc[N],
) []*Event[N] {
	res := make([]*Event[N], len(batch))
	if len(batch) == 1 {
		res[0] = reconstructOne(batch[0], live)
		return res
	}

	next := map[ValueKey[N]]Value{}
	for i := len(batch) - 1; i >= 0; i-- {
		raw := batch[i]
		ev := &Event[N]{RawEvent: *raw}
		res[i] = ev

		key, ok := raw.Key()
		if !ok {
			continue
		}
		if v, ok := next[key]; ok {
			ev.NewValue = v
		} else {
			ev.NewValue = live(key)
		}
		next[key] = raw.OldValue
	}
	return res
}

func reconstructOne[N comparable](raw *RawEvent[N], live LiveFunc[N]) *Event[N] {
	ev := &Event[N]{RawEvent: *raw}
	if key, ok := raw.Key(); ok {
		ev.NewValue = live(key)
	}
	return ev
}
