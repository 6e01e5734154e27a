package store

import (
	"github.com/Fantom-foundation/Aurelia/go/database/smt"
)

// Store is the persistence contract of one tree instance. It serves node
// reads and accepts version commits through the smt storage boundary, and
// additionally supports reclaiming the space of versions no reader depends
// on anymore.
type Store interface {
	smt.NodeSource
	smt.NodeSink

	// LatestVersion returns the highest version a root has been registered
	// for, or false if the store is empty.
	LatestVersion() (smt.Version, bool)

	// Prune removes all nodes that became stale at or before the given
	// version, together with the root registrations of all versions below
	// it. Versions at or above the given version remain fully readable;
	// older versions must not be accessed afterwards.
	Prune(upTo smt.Version) error

	// Flush writes all buffered data to disk.
	Flush() error

	// Close flushes the store and releases its resources. The store must
	// not be used afterwards.
	Close() error
}
