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
)

func TestPath_DefaultPathIsEmpty(t *testing.T) {
	path := EmptyPath()
	if got, want := path.Length(), 0; got != want {
		t.Errorf("invalid length, got %d, wanted %d", got, want)
	}
	if got, want := path.String(), "-empty-"; got != want {
		t.Errorf("invalid print, got %s, wanted %s", got, want)
	}
}

func TestPath_CreatePathFromNibbles(t *testing.T) {
	tests := [][]Nibble{
		{},
		{1},
		{1, 2},
		{1, 2, 3},
		{0xA, 0xB, 0xC, 0xD, 0xE, 0xF},
	}

	for _, test := range tests {
		path := CreatePathFromNibbles(test)
		if got, want := path.Length(), len(test); got != want {
			t.Errorf("invalid length, got %d, wanted %d", got, want)
		}
		if !path.IsEqualTo(test) {
			t.Errorf("path %v does not match nibbles %v", &path, test)
		}
		for i, nibble := range test {
			if got, want := path.Get(i), nibble; got != want {
				t.Errorf("invalid nibble at %d, got %v, wanted %v", i, got, want)
			}
		}
	}
}

func TestPath_GetOutOfRangeIsZero(t *testing.T) {
	path := CreatePathFromNibbles([]Nibble{1, 2, 3})
	if got := path.Get(-1); got != 0 {
		t.Errorf("invalid out-of-range value, got %v, wanted 0", got)
	}
	if got := path.Get(3); got != 0 {
		t.Errorf("invalid out-of-range value, got %v, wanted 0", got)
	}
}

func TestPath_SetValues(t *testing.T) {
	path := CreatePathFromNibbles([]Nibble{1, 2, 3})
	path.Set(0, 0xA)
	path.Set(2, 0xC)
	if !path.IsEqualTo([]Nibble{0xA, 2, 0xC}) {
		t.Errorf("invalid path after update: %v", &path)
	}
}

func TestPath_SetOutOfRangePanics(t *testing.T) {
	path := CreatePathFromNibbles([]Nibble{1, 2, 3})
	defer func() {
		if recover() == nil {
			t.Errorf("out-of-range update should panic")
		}
	}()
	path.Set(3, 1)
}

func TestPath_AppendAndChild(t *testing.T) {
	path := EmptyPath()
	path.Append(1).Append(2)
	if !path.IsEqualTo([]Nibble{1, 2}) {
		t.Errorf("invalid path after append: %v", &path)
	}

	child := path.Child(3)
	if !child.IsEqualTo([]Nibble{1, 2, 3}) {
		t.Errorf("invalid child path: %v", &child)
	}
	if !path.IsEqualTo([]Nibble{1, 2}) {
		t.Errorf("child derivation must not modify the parent, got %v", &path)
	}
}

func TestPath_IsPrefixOf(t *testing.T) {
	path := CreatePathFromNibbles([]Nibble{1, 2})
	tests := []struct {
		list []Nibble
		res  bool
	}{
		{[]Nibble{}, false},
		{[]Nibble{1}, false},
		{[]Nibble{1, 2}, true},
		{[]Nibble{1, 2, 3}, true},
		{[]Nibble{1, 3, 3}, false},
	}
	for _, test := range tests {
		if got, want := path.IsPrefixOf(test.list), test.res; got != want {
			t.Errorf("invalid prefix test with %v, got %t, wanted %t", test.list, got, want)
		}
	}
}

func TestPath_Compare(t *testing.T) {
	tests := []struct {
		a, b []Nibble
		res  int
	}{
		{[]Nibble{}, []Nibble{}, 0},
		{[]Nibble{}, []Nibble{1}, -1},
		{[]Nibble{1}, []Nibble{}, 1},
		{[]Nibble{1}, []Nibble{1}, 0},
		{[]Nibble{1}, []Nibble{2}, -1},
		{[]Nibble{2}, []Nibble{1}, 1},
		{[]Nibble{1, 2}, []Nibble{1, 2, 3}, -1},
		{[]Nibble{1, 2, 4}, []Nibble{1, 2, 3}, 1},
	}
	for _, test := range tests {
		a := CreatePathFromNibbles(test.a)
		b := CreatePathFromNibbles(test.b)
		if got, want := a.Compare(&b), test.res; got != want {
			t.Errorf("invalid order of %v and %v, got %d, wanted %d", &a, &b, got, want)
		}
	}
}

func TestPath_Print(t *testing.T) {
	tests := []struct {
		path  []Nibble
		print string
	}{
		{[]Nibble{}, "-empty-"},
		{[]Nibble{1}, "1 : 1"},
		{[]Nibble{1, 2, 0xA}, "12a : 3"},
	}
	for _, test := range tests {
		path := CreatePathFromNibbles(test.path)
		if got, want := path.String(), test.print; got != want {
			t.Errorf("invalid print, got %s, wanted %s", got, want)
		}
	}
}

func TestPathEncoder_RoundTrip(t *testing.T) {
	tests := [][]Nibble{
		{},
		{1},
		{1, 2},
		{1, 2, 3},
		{0xF, 0xE, 0xD, 0xC, 0xB},
	}
	encoder := pathEncoder{}
	for _, test := range tests {
		path := CreatePathFromNibbles(test)
		data := make([]byte, encoder.GetEncodedSize(&path))
		encoder.Store(data, &path)
		restored := Path{}
		if err := encoder.Load(data, &restored); err != nil {
			t.Fatalf("failed to load path: %v", err)
		}
		if restored != path {
			t.Errorf("invalid restored path, got %v, wanted %v", &restored, &path)
		}
	}
}

func TestPathEncoder_DetectsInvalidInput(t *testing.T) {
	tests := map[string][]byte{
		"empty input":      {},
		"excessive length": {65, 1, 2},
		"truncated":        {4, 0x12},
	}
	encoder := pathEncoder{}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := Path{}
			if err := encoder.Load(data, &path); !errors.Is(err, ErrCorruptedNode) {
				t.Errorf("expected corruption to be detected, got %v", err)
			}
		})
	}
}

func TestPathEncoder_ClearsPaddingBits(t *testing.T) {
	// An odd-length path leaves the low bits of its last byte unused; a
	// dirty encoding must not leak them into the restored path.
	data := []byte{1, 0x1F}
	path := Path{}
	if err := (pathEncoder{}).Load(data, &path); err != nil {
		t.Fatalf("failed to load path: %v", err)
	}
	want := CreatePathFromNibbles([]Nibble{1})
	if path != want {
		t.Errorf("invalid restored path, got %v, wanted %v", &path, &want)
	}
}
