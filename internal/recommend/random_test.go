// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import "testing"

func TestMinStdSource_RawSequence(t *testing.T) {
	t.Parallel()

	// First outputs of minstd_rand0 seeded with 1.
	want := []uint64{16807, 282475249, 1622650073, 984943658, 1144108930}
	src := NewMinStdSource(1)
	for i, w := range want {
		if got := src.next(); got != w {
			t.Fatalf("draw %d = %d, want %d", i, got, w)
		}
	}
}

func TestMinStdSource_Percent(t *testing.T) {
	t.Parallel()

	// uniform_int_distribution<int>(0, 99) over default_random_engine.
	want := []int{0, 13, 75, 45, 53, 21, 4, 67, 67, 93, 38, 51}
	src := NewMinStdSource(DefaultSeed)
	for i, w := range want {
		if got := src.Percent(); got != w {
			t.Fatalf("percent %d = %d, want %d", i, got, w)
		}
	}
}

func TestNewMinStdSource_SeedReduction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		seed int64
		same int64
	}{
		{name: "zero behaves like one", seed: 0, same: 1},
		{name: "modulus behaves like one", seed: minStdModulus, same: 1},
		{name: "negative wraps", seed: -1, same: minStdModulus - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := NewMinStdSource(tt.seed)
			b := NewMinStdSource(tt.same)
			for i := 0; i < 10; i++ {
				if x, y := a.Percent(), b.Percent(); x != y {
					t.Fatalf("draw %d: %d != %d", i, x, y)
				}
			}
		})
	}
}

func TestMinStdSource_IntnRange(t *testing.T) {
	t.Parallel()

	src := NewMinStdSource(12345)
	for _, n := range []int{1, 2, 7, 100, 1000} {
		for i := 0; i < 500; i++ {
			if v := src.Intn(n); v < 0 || v >= n {
				t.Fatalf("Intn(%d) = %d out of range", n, v)
			}
		}
	}
}

func TestMinStdSource_IntnPanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("Intn(0) did not panic")
		}
	}()
	NewMinStdSource(1).Intn(0)
}
