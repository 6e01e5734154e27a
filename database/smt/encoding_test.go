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
	"errors"
	"testing"

	"github.com/Fantom-foundation/Aurelia/go/common"
)

func TestEncoding_RoundTrip(t *testing.T) {
	full := &InternalNode{}
	for i := 0; i < 16; i++ {
		full.SetChild(Nibble(i), &Child{Hash: common.Hash{byte(i)}, Version: Version(i), IsLeaf: i%2 == 0})
	}

	tests := map[string]Node{
		"empty": EmptyNode{},
		"leaf": &LeafNode{
			Key:       common.Key{1, 2, 3},
			ValueHash: common.Hash{4, 5, 6},
			Version:   12,
		},
		"internal with one child": func() Node {
			res := &InternalNode{}
			res.SetChild(0xA, &Child{Hash: common.Hash{7}, Version: 3, IsLeaf: true})
			return res
		}(),
		"internal with all children": full,
	}

	for name, node := range tests {
		t.Run(name, func(t *testing.T) {
			restored, err := DecodeNode(EncodeNode(node))
			if err != nil {
				t.Fatalf("failed to decode node: %v", err)
			}
			switch want := node.(type) {
			case EmptyNode:
				if _, ok := restored.(EmptyNode); !ok {
					t.Errorf("invalid restored node: %v", restored)
				}
			case *LeafNode:
				got, ok := restored.(*LeafNode)
				if !ok || *got != *want {
					t.Errorf("invalid restored node, got %v, wanted %v", restored, want)
				}
			case *InternalNode:
				got, ok := restored.(*InternalNode)
				if !ok || !got.Equal(want) {
					t.Errorf("invalid restored node, got %v, wanted %v", restored, want)
				}
			}
		})
	}
}

func TestEncoding_EncodingIsDeterministic(t *testing.T) {
	node := &InternalNode{}
	node.SetChild(1, &Child{Hash: common.Hash{1}, Version: 1})
	node.SetChild(7, &Child{Hash: common.Hash{2}, Version: 2, IsLeaf: true})
	a := EncodeNode(node)
	b := EncodeNode(node)
	if string(a) != string(b) {
		t.Errorf("encoding is not deterministic, got %x and %x", a, b)
	}
}

func TestDecoding_DetectsInvalidInput(t *testing.T) {
	leaf := EncodeNode(&LeafNode{Version: 1})
	tests := map[string][]byte{
		"empty input":                  {},
		"unknown kind":                 {3},
		"empty node with extra bytes":  {0, 1},
		"truncated leaf":               leaf[:len(leaf)-1],
		"leaf with extra bytes":        append(append([]byte{}, leaf...), 0),
		"truncated internal header":    {2, 0},
		"internal without children":    {2, 0, 0},
		"internal with missing child":  {2, 0, 1},
		"internal with trailing bytes": append(EncodeNode(singleChildNode()), 0),
		"invalid leaf flag": func() []byte {
			data := EncodeNode(singleChildNode())
			data[len(data)-1] = 2
			return data
		}(),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeNode(data); !errors.Is(err, ErrCorruptedNode) {
				t.Errorf("expected corruption to be detected, got %v", err)
			}
		})
	}
}

func singleChildNode() *InternalNode {
	res := &InternalNode{}
	res.SetChild(0, &Child{Hash: common.Hash{1}, Version: 1, IsLeaf: true})
	return res
}
