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

const (
	// ErrProofHashMismatch is reported when the hash chain recomputed from a
	// proof does not reproduce the trusted root hash.
	ErrProofHashMismatch = common.ConstError("proof does not reproduce the root hash")
	// ErrInvalidWitness is reported when a proof is internally inconsistent
	// with the claim it is verified against, before any hash is checked.
	ErrInvalidWitness = common.ConstError("proof witness inconsistent with the claim")
)

// ProofStep is the evidence of one internal node on the traversed path. It
// lists the hashes of all 16 child slots; absent children carry the empty
// node hash. One of the slots belongs to the traversed path itself and is
// recomputed, not trusted, during verification.
type ProofStep struct {
	Slots [16]common.Hash
}

// ProofLeaf is the witness leaf terminating a traversed path: the leaf
// proving a key's presence, or an unrelated leaf whose presence on the
// path proves the queried key absent.
type ProofLeaf struct {
	Key       common.Key
	ValueHash common.Hash
}

// Proof is a self-contained authentication path for a single key in a
// single version. Its verification requires nothing but the proof itself,
// the trusted root hash, and the claim to check.
//
// Steps lists the traversed internal nodes from the root downward; the key's
// nibble sequence determines which slot of each step lies on the path. Leaf
// is the witness leaf found at the path's end, or nil if the traversal ended
// in an absent child slot.
type Proof struct {
	Steps []ProofStep
	Leaf  *ProofLeaf
}

// GetWithProof looks up a key in the given version and produces the proof
// authenticating the outcome. It returns the key's value digest and whether
// the key is present; the proof supports VerifyInclusion for present keys
// and VerifyExclusion for absent ones.
func (t *Tree) GetWithProof(key common.Key, version Version) (common.Hash, bool, *Proof, error) {
	rootKey, err := t.source.GetRootKey(version)
	if err != nil {
		return common.Hash{}, false, nil, fmt.Errorf("failed to resolve root of version %d: %w", version, err)
	}
	node, err := t.getNode(rootKey)
	if err != nil {
		return common.Hash{}, false, nil, err
	}

	proof := &Proof{}
	position := EmptyPath()
	for depth := 0; ; depth++ {
		switch cur := node.(type) {
		case EmptyNode:
			// Only ever the root of an empty version.
			return common.Hash{}, false, proof, nil
		case *LeafNode:
			proof.Leaf = &ProofLeaf{Key: cur.Key, ValueHash: cur.ValueHash}
			if cur.Key == key {
				return cur.ValueHash, true, proof, nil
			}
			// A different leaf occupies the key's path; the key is absent.
			return common.Hash{}, false, proof, nil
		case *InternalNode:
			step := ProofStep{}
			for i := Nibble(0); i < 16; i++ {
				if child := cur.Child(i); child != nil {
					step.Slots[i] = child.Hash
				} else {
					step.Slots[i] = EmptyNodeHash
				}
			}
			proof.Steps = append(proof.Steps, step)

			nibble := getNibble(key, depth)
			child := cur.Child(nibble)
			if child == nil {
				// The key's path ends in an absent slot; the key is absent.
				return common.Hash{}, false, proof, nil
			}
			node, err = t.getNode(cur.ChildKey(position, nibble))
			if err != nil {
				return common.Hash{}, false, nil, err
			}
			position = position.Child(nibble)
		default:
			return common.Hash{}, false, nil, fmt.Errorf("%w: unexpected node type %T", ErrCorruptedNode, node)
		}
	}
}

// Get looks up a key in the given version without producing a proof.
func (t *Tree) Get(key common.Key, version Version) (common.Hash, bool, error) {
	value, exists, _, err := t.GetWithProof(key, version)
	return value, exists, err
}

// VerifyInclusion checks that the proof shows the given key bound to the
// given value digest under the given root hash. It returns nil if the claim
// is proven, ErrInvalidWitness if the proof does not even make the claim,
// and ErrProofHashMismatch if the recomputed hash chain misses the root.
func (p *Proof) VerifyInclusion(config TreeConfig, root common.Hash, key common.Key, valueHash common.Hash) error {
	if p.Leaf == nil {
		return fmt.Errorf("%w: inclusion proof without witness leaf", ErrInvalidWitness)
	}
	if p.Leaf.Key != key || p.Leaf.ValueHash != valueHash {
		return fmt.Errorf("%w: witness leaf does not match the claim", ErrInvalidWitness)
	}
	h := hasher{algorithm: config.Hashing}
	return p.fold(h, root, key, h.hashLeaf(key, valueHash))
}

// VerifyExclusion checks that the proof shows the given key absent under the
// given root hash. Absence is witnessed either by an empty slot terminating
// the key's path, or by an unrelated leaf occupying the key's path.
func (p *Proof) VerifyExclusion(config TreeConfig, root common.Hash, key common.Key) error {
	h := hasher{algorithm: config.Hashing}
	if p.Leaf == nil {
		return p.fold(h, root, key, EmptyNodeHash)
	}
	if p.Leaf.Key == key {
		return fmt.Errorf("%w: witness leaf claims the key present", ErrInvalidWitness)
	}
	// The witness leaf must sit on the key's own path, i.e. share the
	// traversed nibble prefix; an arbitrary off-path leaf proves nothing.
	for depth := 0; depth < len(p.Steps); depth++ {
		if getNibble(p.Leaf.Key, depth) != getNibble(key, depth) {
			return fmt.Errorf("%w: witness leaf not on the key's path", ErrInvalidWitness)
		}
	}
	return p.fold(h, root, key, h.hashLeaf(p.Leaf.Key, p.Leaf.ValueHash))
}

// fold recomputes the root hash bottom-up: starting from the hash of the
// path's end, each step's traversed slot is replaced by the hash computed
// so far and the step is hashed as an internal node.
func (p *Proof) fold(h hasher, root common.Hash, key common.Key, start common.Hash) error {
	if len(p.Steps) > maxTreeDepth {
		return fmt.Errorf("%w: proof deeper than the key length permits", ErrInvalidWitness)
	}
	cur := start
	for i := len(p.Steps) - 1; i >= 0; i-- {
		slots := p.Steps[i].Slots
		slots[getNibble(key, i)] = cur
		cur = h.hashInternal(slots)
	}
	if cur != root {
		return fmt.Errorf("%w: got %v, wanted %v", ErrProofHashMismatch, cur, root)
	}
	return nil
}
