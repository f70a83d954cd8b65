package domtimeline

type (
	// Tree is the externally owned, mutable document a History records.
	// Node references are opaque to the engine; the zero N means "no node"
	Tree[N comparable] interface {
		Attribute(target N, name string) Value
		SetAttribute(target N, name string, value Value) error
		Text(target N) Value
		SetText(target N, value Value) error

		// InsertBefore moves child under parent, immediately before ref.
		// A zero ref appends
		InsertBefore(parent, child, ref N) error

		// Remove detaches child from its parent
		Remove(child N) error
	}

	// Watcher delivers the change notifications accumulated since the
	// previous Drain, oldest first. An empty result is valid
	Watcher[N comparable] interface {
		Drain() []*RawEvent[N]
	}

	// WatcherFunc adapts a function to the Watcher interface
	WatcherFunc[N comparable] func() []*RawEvent[N]
)

// Drain calls the function
func (fn WatcherFunc[N]) Drain() []*RawEvent[N] {
	return fn()
}
