// Package domtimeline records every change made to a live, externally
// mutated tree (an HTML document, typically) as a reversible event, and
// moves the tree backward and forward through that history.
//
// Typical usage looks like:
//   - Wrap the tree in something that implements Tree and Watcher (see the
//     htmltree package)
//   - Create a History over it
//   - Mutate the tree, optionally through Claim so changes carry a label
//     and a call stack
//   - Call Undo and Redo to travel through the timeline
//
// Changes that happen while undone entries are waiting to be redone are
// reverted on the spot and kept in LostFuture, so the timeline never
// forks. Observers, a caravan-backed Hub and Journals (Redis, bbolt or
// Postgres) can watch every decision the History makes.
//
// The examples/ directory contains a runnable walkthrough over an HTML
// document.
package domtimeline
