// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"bytes"
	"encoding/hex"
	"testing"

	"golang.org/x/crypto/sha3"
)

func TestKeccak256_KnownVectors(t *testing.T) {
	tests := []struct {
		input []byte
		hash  string
	}{
		{[]byte{}, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{[]byte("a"), "3ac225168df54212a25c1c01fd35bebfea408fdac2e31ddd6f80a4bbf9a5f1cb"},
	}

	for _, test := range tests {
		want, err := hex.DecodeString(test.hash)
		if err != nil {
			t.Fatalf("invalid test case hash: %v", err)
		}
		if got := Keccak256(test.input); !bytes.Equal(got[:], want) {
			t.Errorf("invalid hash of %x, got %x, wanted %x", test.input, got, want)
		}
	}
}

func TestKeccak256_MatchesReferenceImplementation(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {1}, {1, 2, 3}, bytes.Repeat([]byte{42}, 1000)} {
		hasher := sha3.NewLegacyKeccak256()
		hasher.Write(data)
		var want Hash
		hasher.(interface{ Read([]byte) (int, error) }).Read(want[:])
		if got := Keccak256(data); got != want {
			t.Errorf("invalid hash of %x, got %x, wanted %x", data, got, want)
		}
	}
}
