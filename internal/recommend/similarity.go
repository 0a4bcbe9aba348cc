// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SimilarityMatrix is the symmetric item-item co-occurrence similarity.
// Entries are non-negative and the diagonal is zero. It is immutable once
// returned by ComputeSimilarity.
type SimilarityMatrix struct {
	sym *mat.SymDense
	n   int
}

// NewSimilarityMatrix wraps a gonum symmetric matrix.
func NewSimilarityMatrix(sym *mat.SymDense) *SimilarityMatrix {
	return &SimilarityMatrix{sym: sym, n: sym.SymmetricDim()}
}

// Items returns the matrix dimension.
func (s *SimilarityMatrix) Items() int {
	return s.n
}

// At returns the similarity between items a and b.
func (s *SimilarityMatrix) At(a, b int) float64 {
	return s.sym.At(a, b)
}

// Row copies the similarities of item i into dst (allocating if dst is too
// short) and returns it.
func (s *SimilarityMatrix) Row(dst []float64, i int) []float64 {
	if cap(dst) < s.n {
		dst = make([]float64, s.n)
	}
	dst = dst[:s.n]
	for j := 0; j < s.n; j++ {
		dst[j] = s.sym.At(i, j)
	}
	return dst
}

// Sym exposes the underlying gonum matrix for read-only use.
func (s *SimilarityMatrix) Sym() mat.Symmetric {
	return s.sym
}

// SimilarityCells returns the number of cells a similarity matrix for the
// given catalog size occupies.
func SimilarityCells(items int) int64 {
	return int64(items) * int64(items)
}

// SimilarityBytes returns the memory footprint of the similarity matrix.
func SimilarityBytes(items int) int64 {
	return SimilarityCells(items) * 8
}

// ComputeSimilarity builds the item-item similarity matrix of m.
//
// popularity[i] counts the users with a nonzero score on item i. For every
// user and every pair of distinct items (a, b) they rated, coRating[a][b] is
// incremented. The result is
//
//	sim[a][b] = coRating[a][b] / sqrt(popularity[a] * popularity[b])
//
// for coRating[a][b] != 0 and 0 otherwise. Accumulation is a single pass over
// users; normalization runs on up to workers goroutines, one row per task.
func ComputeSimilarity(m RatingMatrix, workers int) (*SimilarityMatrix, error) {
	if m.Users() == 0 {
		return nil, fmt.Errorf("%w: similarity requires at least one user", ErrData)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	n := m.Items()
	if n == 0 {
		return nil, fmt.Errorf("%w: similarity requires at least one item", ErrData)
	}

	popularity := make([]int, n)
	// Only the upper triangle (a < b) is populated; SymDense reads nothing else.
	cells := make([]float64, n*n)
	rated := make([]int, 0, n)

	for _, row := range m {
		rated = rated[:0]
		for item, score := range row {
			if score != 0 {
				popularity[item]++
				rated = append(rated, item)
			}
		}
		for x, a := range rated {
			base := a * n
			for _, b := range rated[x+1:] {
				cells[base+b]++
			}
		}
	}

	parallelFor(n, workers, func(_, a int) {
		base := a * n
		for b := a + 1; b < n; b++ {
			if c := cells[base+b]; c != 0 {
				cells[base+b] = c / math.Sqrt(float64(popularity[a]*popularity[b]))
			}
		}
	})

	return &SimilarityMatrix{sym: mat.NewSymDense(n, cells), n: n}, nil
}
