// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import "testing"

// randomMatrix returns a reproducible sparse matrix with scores in [1, 5].
// Roughly density percent of the cells are rated.
func randomMatrix(t *testing.T, users, items, density int, seed int64) RatingMatrix {
	t.Helper()
	src := NewMinStdSource(seed)
	m := NewZeroMatrix(users, items)
	for u := range m {
		for i := range m[u] {
			if src.Percent() < density {
				m[u][i] = src.Intn(5) + 1
			}
		}
	}
	return m
}

// threeItemMatrix is the 3×3 matrix in which every pair of items is co-rated
// by exactly one user. All off-diagonal similarities are 1/2.
func threeItemMatrix() RatingMatrix {
	return RatingMatrix{
		{1, 1, 0},
		{1, 0, 1},
		{0, 1, 1},
	}
}

func mustSimilarity(t *testing.T, m RatingMatrix) *SimilarityMatrix {
	t.Helper()
	sim, err := ComputeSimilarity(m, 1)
	if err != nil {
		t.Fatalf("ComputeSimilarity() error = %v", err)
	}
	return sim
}

func mustTopK(t *testing.T, m RatingMatrix, k int) NeighborhoodTable {
	t.Helper()
	table, err := TopK(mustSimilarity(t, m), k, 1)
	if err != nil {
		t.Fatalf("TopK() error = %v", err)
	}
	return table
}
