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
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Aurelia/go/common"
)

// ErrCorruptedNode is reported when decoding encounters data that is no
// valid node encoding. It signals corruption or a format mismatch in the
// underlying storage and is never recovered locally.
const ErrCorruptedNode = common.ConstError("corrupted node encoding")

// Encoded node layout (all integers big-endian):
//
//	empty    ... [kind]
//	leaf     ... [kind][key: 32][value hash: 32][version: 8]
//	internal ... [kind][child bitmap: 2] followed by, for each present
//	             child in ascending nibble order,
//	             [hash: 32][version: 8][leaf flag: 1]
//
// The layout is deterministic: a given logical node always encodes to the
// same bytes. Hashes are not computed over this encoding directly but over
// the domain-tagged forms defined by the hasher; the encoding only needs to
// round-trip through EncodeNode/DecodeNode.

const (
	leafEncodedSize  = 1 + 32 + 32 + 8
	childEncodedSize = 32 + 8 + 1
)

// EncodeNode serializes the given node into its canonical binary form.
func EncodeNode(node Node) []byte {
	switch node := node.(type) {
	case EmptyNode:
		return []byte{byte(EmptyNodeKind)}
	case *LeafNode:
		res := make([]byte, leafEncodedSize)
		res[0] = byte(LeafNodeKind)
		copy(res[1:33], node.Key[:])
		copy(res[33:65], node.ValueHash[:])
		binary.BigEndian.PutUint64(res[65:73], uint64(node.Version))
		return res
	case *InternalNode:
		res := make([]byte, 3, 3+childEncodedSize*node.ChildCount())
		res[0] = byte(InternalNodeKind)
		bitmap := uint16(0)
		for i := 0; i < 16; i++ {
			child := node.Child(Nibble(i))
			if child == nil {
				continue
			}
			bitmap |= 1 << i
			var buf [childEncodedSize]byte
			copy(buf[0:32], child.Hash[:])
			binary.BigEndian.PutUint64(buf[32:40], uint64(child.Version))
			if child.IsLeaf {
				buf[40] = 1
			}
			res = append(res, buf[:]...)
		}
		binary.BigEndian.PutUint16(res[1:3], bitmap)
		return res
	}
	panic(fmt.Sprintf("unsupported node type: %T", node))
}

// DecodeNode restores a node from its canonical binary form. Malformed or
// truncated input is rejected with an error wrapping ErrCorruptedNode.
func DecodeNode(data []byte) (Node, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrCorruptedNode)
	}
	switch NodeKind(data[0]) {
	case EmptyNodeKind:
		if len(data) != 1 {
			return nil, fmt.Errorf("%w: empty node with %d trailing bytes", ErrCorruptedNode, len(data)-1)
		}
		return EmptyNode{}, nil
	case LeafNodeKind:
		if len(data) != leafEncodedSize {
			return nil, fmt.Errorf("%w: invalid leaf node size, got %d, wanted %d", ErrCorruptedNode, len(data), leafEncodedSize)
		}
		res := &LeafNode{}
		copy(res.Key[:], data[1:33])
		copy(res.ValueHash[:], data[33:65])
		res.Version = Version(binary.BigEndian.Uint64(data[65:73]))
		return res, nil
	case InternalNodeKind:
		if len(data) < 3 {
			return nil, fmt.Errorf("%w: truncated internal node header", ErrCorruptedNode)
		}
		bitmap := binary.BigEndian.Uint16(data[1:3])
		if bitmap == 0 {
			return nil, fmt.Errorf("%w: internal node without children", ErrCorruptedNode)
		}
		res := &InternalNode{}
		rest := data[3:]
		for i := 0; i < 16; i++ {
			if bitmap&(1<<i) == 0 {
				continue
			}
			if len(rest) < childEncodedSize {
				return nil, fmt.Errorf("%w: truncated child entry for nibble %v", ErrCorruptedNode, Nibble(i))
			}
			child := &Child{}
			copy(child.Hash[:], rest[0:32])
			child.Version = Version(binary.BigEndian.Uint64(rest[32:40]))
			switch rest[40] {
			case 0:
			case 1:
				child.IsLeaf = true
			default:
				return nil, fmt.Errorf("%w: invalid leaf flag %d for nibble %v", ErrCorruptedNode, rest[40], Nibble(i))
			}
			res.SetChild(Nibble(i), child)
			rest = rest[childEncodedSize:]
		}
		if len(rest) != 0 {
			return nil, fmt.Errorf("%w: internal node with %d trailing bytes", ErrCorruptedNode, len(rest))
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: unknown node kind %d", ErrCorruptedNode, data[0])
}
