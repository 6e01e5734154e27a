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

import (
	"fmt"

	"github.com/Fantom-foundation/Aurelia/go/common"
)

// This file defines the node types of the versioned sparse Merkle tree.
// There are three different types of nodes:
//
//  - empty nodes    ... the implicit root of empty sub-trees; empty nodes
//                       are represented structurally and never stored,
//                       except as the root anchor of a version whose tree
//                       holds no keys
//  - inner nodes    ... 16-way branch nodes splitting navigation paths,
//                       holding between 1 and 16 child descriptors
//  - leaf nodes     ... terminal nodes binding a full 256-bit key to the
//                       digest of its value; a leaf may rest at any depth,
//                       cutting off the otherwise empty single-child chain
//                       below it
//
// Nodes are immutable once created. They are addressed by NodeKeys, and a
// later version modifying a position introduces a new node under a fresh
// NodeKey rather than updating the old one. Unmodified sub-trees are shared
// between versions by child descriptors referencing nodes of older versions.

// Node is the common interface of all node variants.
type Node interface {
	// Kind identifies the variant of this node.
	Kind() NodeKind

	// IsLeaf is a convenience shortcut for Kind() == LeafNodeKind.
	IsLeaf() bool
}

// NodeKind enumerates the node variants as they appear in encoded form.
type NodeKind byte

const (
	EmptyNodeKind    NodeKind = 0
	LeafNodeKind     NodeKind = 1
	InternalNodeKind NodeKind = 2
)

func (k NodeKind) String() string {
	switch k {
	case EmptyNodeKind:
		return "empty"
	case LeafNodeKind:
		return "leaf"
	case InternalNodeKind:
		return "internal"
	}
	return fmt.Sprintf("unknown(%d)", byte(k))
}

// ----------------------------------------------------------------------------
//                               Empty Node
// ----------------------------------------------------------------------------

// EmptyNode is the node type of an empty sub-tree. Its hash is the global
// placeholder hash. Instances carry no state, and the only position at which
// an empty node is ever materialized is the root of a version without keys.
type EmptyNode struct{}

func (EmptyNode) Kind() NodeKind { return EmptyNodeKind }
func (EmptyNode) IsLeaf() bool   { return false }

// ----------------------------------------------------------------------------
//                               Leaf Node
// ----------------------------------------------------------------------------

// LeafNode binds a key to the digest of its value. The raw value is never
// part of the tree; it is kept by an external value store and only its
// digest is authenticated here.
type LeafNode struct {
	// The full 256-bit key this leaf stands for. The path of the leaf's
	// NodeKey is always a prefix of this key's nibble path.
	Key common.Key
	// The digest of the value associated with the key.
	ValueHash common.Hash
	// The version that introduced this leaf content.
	Version Version
}

func (*LeafNode) Kind() NodeKind { return LeafNodeKind }
func (*LeafNode) IsLeaf() bool   { return true }

// ----------------------------------------------------------------------------
//                              Internal Node
// ----------------------------------------------------------------------------

// Child describes one child of an internal node: the child's hash, the
// version that created the referenced node, and whether it is a leaf. The
// version and the parent's position determine the child's NodeKey; the leaf
// flag allows navigation to anticipate the child type without loading it.
type Child struct {
	Hash    common.Hash
	Version Version
	IsLeaf  bool
}

// InternalNode is a 16-way branch node. Children are kept in a fixed-size
// table indexed by nibble; absent children are nil and contribute the
// placeholder hash to the node's digest.
type InternalNode struct {
	children [16]*Child
}

func (*InternalNode) Kind() NodeKind { return InternalNodeKind }
func (*InternalNode) IsLeaf() bool   { return false }

// Child returns the descriptor of the child under the given nibble, or nil
// if there is no child at that position.
func (n *InternalNode) Child(nibble Nibble) *Child {
	return n.children[nibble]
}

// SetChild places or replaces the child under the given nibble. A nil child
// removes the entry.
func (n *InternalNode) SetChild(nibble Nibble, child *Child) {
	n.children[nibble] = child
}

// ChildCount returns the number of present children.
func (n *InternalNode) ChildCount() int {
	count := 0
	for _, child := range n.children {
		if child != nil {
			count++
		}
	}
	return count
}

// SingleChild returns the only child of this node and its nibble if there is
// exactly one, or nil otherwise.
func (n *InternalNode) SingleChild() (Nibble, *Child) {
	var found *Child
	var at Nibble
	for i, child := range n.children {
		if child == nil {
			continue
		}
		if found != nil {
			return 0, nil
		}
		found, at = child, Nibble(i)
	}
	return at, found
}

// ChildKey derives the NodeKey of the child under the given nibble, based on
// the position of this node.
func (n *InternalNode) ChildKey(position Path, nibble Nibble) NodeKey {
	child := n.children[nibble]
	if child == nil {
		panic(fmt.Sprintf("no child at nibble %v", nibble))
	}
	return NodeKey{Version: child.Version, Path: position.Child(nibble)}
}

// Equal compares two internal nodes field by field.
func (n *InternalNode) Equal(other *InternalNode) bool {
	for i := range n.children {
		a, b := n.children[i], other.children[i]
		if (a == nil) != (b == nil) {
			return false
		}
		if a != nil && *a != *b {
			return false
		}
	}
	return true
}

func (n *InternalNode) String() string {
	res := "internal{"
	for i, child := range n.children {
		if child != nil {
			res += fmt.Sprintf("%v:%x@%d ", Nibble(i), child.Hash[0:4], child.Version)
		}
	}
	return res + "}"
}
