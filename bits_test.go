// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore_test

import (
	"testing"

	"code.hybscloud.com/concore"
)

func TestPopCount(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{0xff, 8},
		{0xffffffffffffffff, 64},
	}
	for _, c := range cases {
		if got := concore.PopCount(c.v); got != c.want {
			t.Fatalf("PopCount(%#x): got %d, want %d", c.v, got, c.want)
		}
	}
}

func TestBitCeilBitFloor(t *testing.T) {
	cases := []struct {
		v, ceil, floor uint32
	}{
		{0, 1, 0},
		{1, 1, 1},
		{2, 2, 2},
		{3, 4, 2},
		{5, 8, 4},
		{1024, 1024, 1024},
		{1025, 2048, 1024},
	}
	for _, c := range cases {
		if got := concore.BitCeil(c.v); got != c.ceil {
			t.Fatalf("BitCeil(%d): got %d, want %d", c.v, got, c.ceil)
		}
		if got := concore.BitFloor(c.v); got != c.floor {
			t.Fatalf("BitFloor(%d): got %d, want %d", c.v, got, c.floor)
		}
	}
}

func TestRotateLeftRight(t *testing.T) {
	var v uint8 = 0b1000_0001
	if got := concore.RotateLeft(v, 1); got != 0b0000_0011 {
		t.Fatalf("RotateLeft: got %08b, want %08b", got, 0b0000_0011)
	}
	if got := concore.RotateRight(v, 1); got != 0b1100_0000 {
		t.Fatalf("RotateRight: got %08b, want %08b", got, 0b1100_0000)
	}
	if got := concore.RotateLeft(concore.RotateRight(v, 3), 3); got != v {
		t.Fatalf("RotateLeft(RotateRight(v)): got %08b, want %08b", got, v)
	}
}

func TestLeadingTrailingZeros(t *testing.T) {
	if got := concore.LeadingZeros(uint8(1)); got != 7 {
		t.Fatalf("LeadingZeros(1): got %d, want 7", got)
	}
	if got := concore.TrailingZeros(uint32(8)); got != 3 {
		t.Fatalf("TrailingZeros(8): got %d, want 3", got)
	}
	if got := concore.BitWidth(uint16(0)); got != 0 {
		t.Fatalf("BitWidth(0): got %d, want 0", got)
	}
	if got := concore.BitWidth(uint16(5)); got != 3 {
		t.Fatalf("BitWidth(5): got %d, want 3", got)
	}
}
