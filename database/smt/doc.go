// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package smt implements an authenticated, versioned key-value index in the
// shape of a sparse Merkle tree over 256-bit keys.
//
// The tree is a 16-ary radix tree navigated by the nibbles of a key, with
// two structural rules keeping it compact: empty sub-trees are represented
// by absent children, and a sub-tree holding a single key is represented by
// a leaf at the sub-tree's root instead of a chain of internal nodes.
//
// The tree is a persistent data structure. Each batch of updates applied
// through Tree.ApplyBatch mints a new version; nodes of older versions are
// never modified, and unmodified sub-trees are shared between versions.
// Nodes are therefore addressed by a NodeKey combining the version that
// created them with their position, and the nodes a new version supersedes
// are reported as stale so storage can eventually reclaim them.
//
// The package owns no storage. All nodes are read through the NodeSource
// and written through the NodeSink interface, implemented by the backends
// in the backend/store package.
//
// Every version's root node has a hash authenticating the full key-value
// content of that version. Tree.GetWithProof produces proofs of inclusion
// and exclusion for single keys, verifiable against a trusted root hash
// without any storage access.
package smt
