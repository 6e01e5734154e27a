// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt

//go:generate mockgen -source sources.go -destination sources_mocks.go -package smt

import "github.com/Fantom-foundation/Aurelia/go/common"

const (
	// ErrNodeNotFound is reported by a NodeSource when a requested node is
	// not present. Every NodeKey the tree core dereferences must have been
	// written before, so this error indicates an inconsistent backend and
	// aborts the operation encountering it.
	ErrNodeNotFound = common.ConstError("node not found")

	// ErrMissingRoot is reported by a NodeSource when a root is requested
	// for an unknown version.
	ErrMissingRoot = common.ConstError("no root known for version")
)

// NodeSource is the read side of the storage boundary. The tree core uses
// it to resolve nodes of previously committed versions; it is implemented
// by an external storage component.
//
// Implementations must be safe for concurrent use: nodes are immutable once
// written, so concurrent readers never observe changing content.
type NodeSource interface {
	// GetNode resolves the node stored under the given key. If no such
	// node exists, an error reporting ErrNodeNotFound is returned.
	GetNode(key NodeKey) (Node, error)

	// GetRootKey resolves the address of the root node of the given
	// version. If the version is unknown, an error reporting
	// ErrMissingRoot is returned.
	GetRootKey(version Version) (NodeKey, error)
}

// StaleNode marks a node that has been superseded: the node under Key is no
// longer reachable from any root of version Since or newer. Stale nodes are
// reported by the construction engine and may be physically removed by the
// storage layer once no live reader depends on their version anymore.
type StaleNode struct {
	Key   NodeKey
	Since Version
}

// NodeSink is the write side of the storage boundary. The construction
// engine pushes the outcome of a batch through this interface exactly once
// per batch and never reads back through it.
type NodeSink interface {
	// PutNodeBatch stores all nodes created by one batch.
	PutNodeBatch(nodes map[NodeKey]Node) error

	// PutRoot registers the root node key of a newly minted version. The
	// referenced node is part of the same batch's PutNodeBatch call or,
	// for a batch that did not modify the tree, a root of an older
	// version.
	PutRoot(version Version, root NodeKey) error

	// MarkStale records the nodes superseded by one batch.
	MarkStale(stale []StaleNode) error
}
