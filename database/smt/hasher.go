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
	"crypto/sha256"
	"fmt"

	"github.com/Fantom-foundation/Aurelia/go/common"
)

// hashAlgorithm is the type of a configuration token selecting the digest
// function used for hashing nodes. Its main application is to serve as a
// configuration parameter in the TreeConfig.
type hashAlgorithm struct {
	Name string
	hash func([]byte) common.Hash
}

// Sha256Hashing hashes node encodings with SHA2-256.
var Sha256Hashing = hashAlgorithm{
	Name: "Sha256",
	hash: func(data []byte) common.Hash { return sha256.Sum256(data) },
}

// KeccakHashing hashes node encodings with Keccak-256.
var KeccakHashing = hashAlgorithm{
	Name: "Keccak256",
	hash: common.Keccak256,
}

// Node hashes are domain separated: each variant is hashed over a unique
// tag followed by its canonical fields, so leaves, inner nodes, and raw
// values can never produce colliding digests, independent of their content.
var (
	leafNodeDomainTag     = []byte("SMT::LeafNode")
	internalNodeDomainTag = []byte("SMT::InternalNode")
)

// EmptyNodeHash is the well-known placeholder digest standing for empty
// sub-trees. It is a process-wide constant independent of both the tree
// content and the configured hash algorithm, so that equal "nothingness"
// always hashes identically.
var EmptyNodeHash = func() common.Hash {
	var res common.Hash
	copy(res[:], "SPARSE_MERKLE_PLACEHOLDER_HASH")
	return res
}()

// hasher computes node digests for one tree configuration. It is stateless
// and safe for concurrent use.
type hasher struct {
	algorithm hashAlgorithm
}

// hashNode computes the digest of the given node. For internal nodes the
// digest is derived from the child hashes only, never from versions or leaf
// flags, so that proofs can be verified from hashes alone.
func (h hasher) hashNode(node Node) common.Hash {
	switch node := node.(type) {
	case EmptyNode:
		return EmptyNodeHash
	case *LeafNode:
		return h.hashLeaf(node.Key, node.ValueHash)
	case *InternalNode:
		var slots [16]common.Hash
		for i := 0; i < 16; i++ {
			if child := node.Child(Nibble(i)); child != nil {
				slots[i] = child.Hash
			} else {
				slots[i] = EmptyNodeHash
			}
		}
		return h.hashInternal(slots)
	}
	panic(fmt.Sprintf("unsupported node type: %T", node))
}

// hashLeaf computes the digest of a leaf binding the given key to the given
// value digest.
func (h hasher) hashLeaf(key common.Key, valueHash common.Hash) common.Hash {
	data := make([]byte, 0, len(leafNodeDomainTag)+64)
	data = append(data, leafNodeDomainTag...)
	data = append(data, key[:]...)
	data = append(data, valueHash[:]...)
	return h.algorithm.hash(data)
}

// hashInternal computes the digest of an internal node from the 16 ordered
// child slots, where absent children are represented by EmptyNodeHash.
func (h hasher) hashInternal(slots [16]common.Hash) common.Hash {
	data := make([]byte, 0, len(internalNodeDomainTag)+16*32)
	data = append(data, internalNodeDomainTag...)
	for i := 0; i < 16; i++ {
		data = append(data, slots[i][:]...)
	}
	return h.algorithm.hash(data)
}
