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

	ics23 "github.com/cosmos/ics23/go"

	"github.com/Fantom-foundation/Aurelia/go/common"
)

// This file translates inclusion proofs into the ics23 interchange format,
// allowing foreign verifiers to check tree commitments without knowing this
// package's proof shape. Only inclusion proofs can be expressed: ics23
// non-existence proofs are built from ordered neighbor leaves, which the
// proofs of this tree do not carry.

// Ics23Spec describes the tree's commitment scheme in ics23 terms. A
// verifier holding this spec and a trusted root hash can check proofs
// produced by ToIcs23Proof.
func Ics23Spec() *ics23.ProofSpec {
	return &ics23.ProofSpec{
		LeafSpec: &ics23.LeafOp{
			Hash:         ics23.HashOp_SHA256,
			PrehashKey:   ics23.HashOp_NO_HASH,
			PrehashValue: ics23.HashOp_NO_HASH,
			Length:       ics23.LengthOp_NO_PREFIX,
			Prefix:       leafNodeDomainTag,
		},
		InnerSpec: &ics23.InnerSpec{
			ChildOrder:      []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			ChildSize:       32,
			MinPrefixLength: int32(len(internalNodeDomainTag)),
			MaxPrefixLength: int32(len(internalNodeDomainTag) + 15*32),
			EmptyChild:      EmptyNodeHash[:],
			Hash:            ics23.HashOp_SHA256,
		},
		MaxDepth: maxTreeDepth,
	}
}

// ToIcs23Proof converts an inclusion proof for the given key into an ics23
// existence proof. The proof must have been produced by a tree using the
// Sha256Config; other hash algorithms have no ics23 counterpart here. The
// result verifies against Ics23Spec and the root hash the proof was issued
// under.
func (p *Proof) ToIcs23Proof(config TreeConfig, key common.Key) (*ics23.CommitmentProof, error) {
	if config.Hashing.Name != Sha256Hashing.Name {
		return nil, fmt.Errorf("hash algorithm %s cannot be expressed in ics23", config.Hashing.Name)
	}
	if p.Leaf == nil || p.Leaf.Key != key {
		return nil, fmt.Errorf("%w: not an inclusion proof for key 0x%x", ErrInvalidWitness, key)
	}

	// ics23 orders the path from the leaf towards the root and splits each
	// inner node into the bytes hashed before and after the child on the
	// path.
	path := make([]*ics23.InnerOp, 0, len(p.Steps))
	for i := len(p.Steps) - 1; i >= 0; i-- {
		nibble := getNibble(key, i)
		prefix := make([]byte, 0, len(internalNodeDomainTag)+int(nibble)*32)
		prefix = append(prefix, internalNodeDomainTag...)
		for j := Nibble(0); j < nibble; j++ {
			prefix = append(prefix, p.Steps[i].Slots[j][:]...)
		}
		suffix := make([]byte, 0, int(15-nibble)*32)
		for j := nibble + 1; j < 16; j++ {
			suffix = append(suffix, p.Steps[i].Slots[j][:]...)
		}
		path = append(path, &ics23.InnerOp{
			Hash:   ics23.HashOp_SHA256,
			Prefix: prefix,
			Suffix: suffix,
		})
	}

	return &ics23.CommitmentProof{
		Proof: &ics23.CommitmentProof_Exist{
			Exist: &ics23.ExistenceProof{
				Key:   key[:],
				Value: p.Leaf.ValueHash[:],
				Leaf:  Ics23Spec().LeafSpec,
				Path:  path,
			},
		},
	}, nil
}
