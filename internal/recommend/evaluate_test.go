// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import (
	"errors"
	"slices"
	"testing"
)

func TestHitRate(t *testing.T) {
	t.Parallel()

	table := mustTopK(t, threeItemMatrix(), 2)
	train := RatingMatrix{{3, 0, 0}, {0, 2, 4}}
	test := RatingMatrix{{0, 5, 0}, {1, 0, 0}}

	tests := []struct {
		name     string
		n        int
		wantHits int
		wantRate float64
	}{
		// user 0 gets item 2 (miss), user 1 gets item 0 (hit).
		{name: "top one", n: 1, wantHits: 1, wantRate: 0.5},
		// user 1 has one scored item; its rated item 2 fills the second slot.
		{name: "top two", n: 2, wantHits: 2, wantRate: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hc, err := CountHits(train, test, table, tt.n, 2)
			if err != nil {
				t.Fatalf("CountHits() error = %v", err)
			}
			if hc.Hits != tt.wantHits {
				t.Errorf("Hits = %d, want %d", hc.Hits, tt.wantHits)
			}
			rate, err := HitRate(train, test, table, tt.n, 1)
			if err != nil {
				t.Fatalf("HitRate() error = %v", err)
			}
			if rate != tt.wantRate {
				t.Errorf("HitRate() = %v, want %v", rate, tt.wantRate)
			}
		})
	}
}

func TestHitRate_Errors(t *testing.T) {
	t.Parallel()

	table := mustTopK(t, threeItemMatrix(), 2)

	tests := []struct {
		name    string
		train   RatingMatrix
		test    RatingMatrix
		table   NeighborhoodTable
		n       int
		wantErr error
	}{
		{name: "non-positive n", train: RatingMatrix{{1, 0, 0}}, test: RatingMatrix{{0, 0, 0}}, table: table, n: 0, wantErr: ErrConfiguration},
		{name: "no users", train: RatingMatrix{}, test: RatingMatrix{}, table: table, n: 1, wantErr: ErrData},
		{name: "shape mismatch", train: RatingMatrix{{1, 0, 0}}, test: RatingMatrix{{0, 0, 0}, {0, 0, 0}}, table: table, n: 1, wantErr: ErrData},
		{name: "table mismatch", train: RatingMatrix{{1, 0}}, test: RatingMatrix{{0, 0}}, table: table, n: 1, wantErr: ErrData},
		{name: "ragged test", train: RatingMatrix{{1, 0, 0}}, test: RatingMatrix{{0, 0}}, table: table, n: 1, wantErr: ErrData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := HitRate(tt.train, tt.test, tt.table, tt.n, 1); !errors.Is(err, tt.wantErr) {
				t.Errorf("HitRate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHitRate_RatedItemsFillShortRankings(t *testing.T) {
	t.Parallel()

	// Only item 2 gains weight. The second slot goes to the rated item 3
	// (weight 0, highest index), not to the held-out item 1.
	table := NeighborhoodTable{
		{{Weight: 0, Index: 0}},
		{{Weight: 0, Index: 0}},
		{{Weight: 0, Index: 0}},
		{{Weight: 1, Index: 2}},
	}
	train := RatingMatrix{{0, 0, 0, 5}}
	test := RatingMatrix{{0, 7, 0, 0}}

	hc, err := CountHits(train, test, table, 2, 1)
	if err != nil {
		t.Fatalf("CountHits() error = %v", err)
	}
	if hc.Hits != 0 || hc.Rate() != 0 {
		t.Errorf("CountHits() = %+v, want no hits", hc)
	}

	// Recommend still never returns rated items, so item 1 fills the slot.
	got, err := Recommend(table, train[0], 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := []ScoredCandidate{{Weight: 5, Item: 2}, {Weight: 0, Item: 1}}
	if !slices.Equal(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}
}

func TestHitRate_WorkersAgree(t *testing.T) {
	t.Parallel()

	m := randomMatrix(t, 120, 40, 35, 3)
	train, test, err := NewSplitter(DefaultSeed).Split(m, 75)
	if err != nil {
		t.Fatal(err)
	}
	table := mustTopK(t, train, 10)

	want, err := CountHits(train, test, table, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 7, 0} {
		got, err := CountHits(train, test, table, 5, workers)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("workers=%d: %+v, want %+v", workers, got, want)
		}
	}
	if rate := want.Rate(); rate < 0 || rate > 1 {
		t.Errorf("Rate() = %v out of [0, 1]", rate)
	}
}

func TestHitCount_Rate(t *testing.T) {
	t.Parallel()

	if got := (HitCount{}).Rate(); got != 0 {
		t.Errorf("empty Rate() = %v, want 0", got)
	}
	if got := (HitCount{Hits: 3, Users: 2, N: 3}).Rate(); got != 0.5 {
		t.Errorf("Rate() = %v, want 0.5", got)
	}
}
