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
	"strings"
)

// Path is a sequence of nibble's describing a navigation path in the tree.
// It locates the position of a node: the root has the empty path, and each
// level down appends the nibble selecting the child. Unlike []Nibble slices,
// Paths are encoding pairs of 4-bit Nibbles into 8-bit values for a dense
// data representation. Paths are limited to a maximum length of 64 Nibbles,
// the full depth of a 256-bit key.
type Path struct {
	// The zero-padded navigation path to be covered. The maximum length
	// is 256 bits, which are 32 bytes and 64 nibbles. Nibbles are encoded
	// in bytes in big-endian order.
	path [32]byte
	// The length of the relevant prefix of the path to be represented in
	// number of nibbles (= 4bit values). Limited to <= 64.
	length uint8
}

// EmptyPath creates the empty path addressing the root position.
func EmptyPath() Path {
	return Path{}
}

// CreatePathFromNibbles converts a Nibble-slice into a path.
func CreatePathFromNibbles(path []Nibble) Path {
	res := Path{}
	for _, cur := range path {
		res.Append(cur)
	}
	return res
}

// Length returns the length of the path.
func (p *Path) Length() int {
	return int(p.length)
}

// Get returns the Nibble value at the given path position, where pos == 0
// is the first position and Length()-1 the last. For positions outside this
// range the value 0 is returned.
func (p *Path) Get(pos int) Nibble {
	if pos < 0 || pos >= int(p.length) {
		return 0
	}
	twin := p.path[pos/2]
	if pos%2 == 0 {
		return Nibble(twin >> 4)
	}
	return Nibble(twin & 0xF)
}

// Set updates the value of a Nibble on this path or panics if the position
// is not on the path, thus not in the range [0,Length()-1].
func (p *Path) Set(pos int, val Nibble) {
	if pos < 0 || pos >= int(p.length) {
		panic(fmt.Sprintf("out-of-range path update at %d in range [%d,%d)", pos, 0, p.length))
	}
	if pos%2 == 0 {
		p.path[pos/2] = (p.path[pos/2] & 0xF) | byte(val<<4)
	} else {
		p.path[pos/2] = (p.path[pos/2] & 0xF0) | byte(val&0xF)
	}
}

// Append appends a nibble to the end of this path extending it by one element.
func (p *Path) Append(n Nibble) *Path {
	trg := &p.path[p.length/2]
	if p.length%2 == 0 {
		*trg |= byte(n&0xF) << 4
	} else {
		*trg |= byte(n & 0xF)
	}
	p.length++
	return p
}

// Child derives the path of the child reached through the given nibble. The
// receiver is not modified.
func (p *Path) Child(n Nibble) Path {
	res := *p
	res.Append(n)
	return res
}

// IsPrefixOf determines whether the given nibble sequence is a prefix of
// this path.
func (p *Path) IsPrefixOf(list []Nibble) bool {
	return p.GetCommonPrefixLength(list) == int(p.length)
}

// IsEqualTo determines whether the given nibble sequence is equal to this path.
func (p *Path) IsEqualTo(list []Nibble) bool {
	return p.Length() == len(list) && p.GetCommonPrefixLength(list) == int(p.length)
}

// GetCommonPrefixLength determines the common prefix of the given Nibble
// slice and this path.
func (p *Path) GetCommonPrefixLength(list []Nibble) int {
	max := int(p.length)
	if max > len(list) {
		max = len(list)
	}
	for i := 0; i < max; i++ {
		if p.Get(i) != list[i] {
			return i
		}
	}
	return max
}

// Compare orders paths lexicographically by their nibble sequence, shorter
// prefixes ordered before their extensions. It returns -1 if p is less than
// other, 0 if they are equal, and 1 otherwise.
func (p *Path) Compare(other *Path) int {
	min := p.Length()
	if o := other.Length(); o < min {
		min = o
	}
	for i := 0; i < min; i++ {
		if a, b := p.Get(i), other.Get(i); a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	switch {
	case p.Length() < other.Length():
		return -1
	case p.Length() > other.Length():
		return 1
	}
	return 0
}

// GetPackedNibbles returns a slice of nibbles encoded in consecutive high/low
// bits of bytes, padded with a trailing 0 if the path length is odd.
func (p *Path) GetPackedNibbles() []byte {
	return p.path[:(p.length+1)/2]
}

func (p *Path) String() string {
	if p.length == 0 {
		return "-empty-"
	}
	builder := strings.Builder{}
	for i := 0; i < p.Length(); i++ {
		builder.WriteRune(p.Get(i).Rune())
	}
	builder.WriteString(fmt.Sprintf(" : %d", p.length))
	return builder.String()
}

// ----------------------------------------------------------------------------
//                               Path Encoder
// ----------------------------------------------------------------------------

// pathEncoder stores paths in a compact variable-size format: one length
// byte followed by the packed nibbles of the relevant prefix.
type pathEncoder struct{}

func (pathEncoder) GetEncodedSize(path *Path) int {
	return 1 + int(path.length+1)/2
}

func (pathEncoder) Store(trg []byte, path *Path) {
	trg[0] = path.length
	copy(trg[1:], path.GetPackedNibbles())
}

func (pathEncoder) Load(src []byte, path *Path) error {
	if len(src) < 1 {
		return fmt.Errorf("%w: missing path length", ErrCorruptedNode)
	}
	length := src[0]
	if length > 64 {
		return fmt.Errorf("%w: invalid path length %d, maximum is 64", ErrCorruptedNode, length)
	}
	packed := int(length+1) / 2
	if len(src) < 1+packed {
		return fmt.Errorf("%w: truncated path, got %d bytes, wanted %d", ErrCorruptedNode, len(src)-1, packed)
	}
	*path = Path{length: length}
	copy(path.path[:], src[1:1+packed])
	if length%2 != 0 {
		// clear padding bits beyond the last nibble
		path.path[packed-1] &= 0xF0
	}
	return nil
}
