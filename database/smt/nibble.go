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

import "github.com/Fantom-foundation/Aurelia/go/common"

// Nibble is a 4-bit integer in the range 0-F. It is a single letter
// used to navigate in the tree structure.
type Nibble byte

// maxTreeDepth is the number of nibbles in a key, bounding the depth of any
// tree position.
const maxTreeDepth = 64

// Rune converts a Nibble in a hexa-decimal rune (0-9a-f).
func (n Nibble) Rune() rune {
	if n < 10 {
		return rune('0' + n)
	} else if n < 16 {
		return rune('a' + n - 10)
	} else {
		return '?'
	}
}

// String converts a Nibble in a hexa-decimal string (0-9a-f).
func (n Nibble) String() string {
	return string(n.Rune())
}

// KeyToNibblePath converts the given key into the slice of the 64 Nibbles
// navigating to the key's position in the tree.
func KeyToNibblePath(key common.Key) []Nibble {
	res := make([]Nibble, len(key)*2)
	parseNibbles(res, key[:])
	return res
}

// getNibble returns the Nibble of the given key at the given depth, where
// depth 0 addresses the most significant 4 bits of the key.
func getNibble(key common.Key, depth int) Nibble {
	cur := key[depth/2]
	if depth%2 == 0 {
		return Nibble(cur >> 4)
	}
	return Nibble(cur & 0xF)
}

func parseNibbles(dst []Nibble, src []byte) {
	for i := 0; i < len(src); i++ {
		dst[2*i] = Nibble(src[i] >> 4)
		dst[2*i+1] = Nibble(src[i] & 0xF)
	}
}

// GetCommonPrefixLength computes the length of the common prefix of the given
// Nibble-slices.
func GetCommonPrefixLength(a, b []Nibble) int {
	lengthA := len(a)
	if lengthA > len(b) {
		return GetCommonPrefixLength(b, a)
	}
	for i := 0; i < lengthA; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return lengthA
}

// IsPrefixOf tests whether one Nibble slice is the prefix of another.
func IsPrefixOf(a, b []Nibble) bool {
	return len(a) <= len(b) && GetCommonPrefixLength(a, b) == len(a)
}
