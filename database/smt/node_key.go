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
)

// Version identifies one immutable generation of the tree. Versions are
// strictly increasing along a linear history; a batch applied on top of
// version v produces version v+1.
type Version uint64

// NodeKey is the globally unique address of a node: the version that created
// the node and the nibble path locating its position in the tree. Nodes are
// immutable once written; later versions address their own nodes under fresh
// NodeKeys and share unmodified subtrees by referencing their old keys.
type NodeKey struct {
	Version Version
	Path    Path
}

// RootNodeKey returns the address of the root node of the given version.
func RootNodeKey(version Version) NodeKey {
	return NodeKey{Version: version}
}

// Compare orders NodeKeys by their nibble path, using version numbers as a
// tie breaker for equal positions. This matches the order in which the
// construction engine processes a sorted batch.
func (k *NodeKey) Compare(other *NodeKey) int {
	if res := k.Path.Compare(&other.Path); res != 0 {
		return res
	}
	switch {
	case k.Version < other.Version:
		return -1
	case k.Version > other.Version:
		return 1
	}
	return 0
}

func (k NodeKey) String() string {
	return fmt.Sprintf("%d/%v", k.Version, &k.Path)
}

// Bytes encodes the NodeKey into a compact, order-preserving binary form:
// the big-endian version followed by the encoded path.
func (k *NodeKey) Bytes() []byte {
	res := make([]byte, 8+pathEncoder{}.GetEncodedSize(&k.Path))
	binary.BigEndian.PutUint64(res[0:8], uint64(k.Version))
	pathEncoder{}.Store(res[8:], &k.Path)
	return res
}

// DecodeNodeKey restores a NodeKey from its Bytes representation. Malformed
// input is reported as an ErrCorruptedNode.
func DecodeNodeKey(data []byte) (NodeKey, error) {
	if len(data) < 9 {
		return NodeKey{}, fmt.Errorf("%w: node key too short, got %d bytes", ErrCorruptedNode, len(data))
	}
	res := NodeKey{Version: Version(binary.BigEndian.Uint64(data[0:8]))}
	if err := (pathEncoder{}).Load(data[8:], &res.Path); err != nil {
		return NodeKey{}, err
	}
	return res, nil
}
