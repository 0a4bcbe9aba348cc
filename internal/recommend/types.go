// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// RatingMatrix is a dense users × items table of integer scores.
// A score of 0 means "unrated". Rows are users, columns are items; both are
// addressed by dense zero-based index.
type RatingMatrix [][]int

// NewRatingMatrix wraps rows as a RatingMatrix after checking that every row
// has the same length. The rows are not copied.
func NewRatingMatrix(rows [][]int) (RatingMatrix, error) {
	m := RatingMatrix(rows)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewZeroMatrix returns a users × items matrix of zeros.
func NewZeroMatrix(users, items int) RatingMatrix {
	m := make(RatingMatrix, users)
	for u := range m {
		m[u] = make([]int, items)
	}
	return m
}

// Users returns the number of rows.
func (m RatingMatrix) Users() int {
	return len(m)
}

// Items returns the number of columns, or 0 for an empty matrix.
func (m RatingMatrix) Items() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Validate returns ErrData if the rows have different lengths.
// An empty matrix is valid; operations that need data check for it themselves.
func (m RatingMatrix) Validate() error {
	items := m.Items()
	for u, row := range m {
		if len(row) != items {
			return fmt.Errorf("%w: row %d has %d items, expected %d", ErrData, u, len(row), items)
		}
	}
	return nil
}

// Clone returns a deep copy of the matrix.
func (m RatingMatrix) Clone() RatingMatrix {
	out := make(RatingMatrix, len(m))
	for u, row := range m {
		out[u] = append([]int(nil), row...)
	}
	return out
}

// Equal reports whether both matrices have the same shape and scores.
func (m RatingMatrix) Equal(other RatingMatrix) bool {
	if len(m) != len(other) {
		return false
	}
	for u := range m {
		if len(m[u]) != len(other[u]) {
			return false
		}
		for i := range m[u] {
			if m[u][i] != other[u][i] {
				return false
			}
		}
	}
	return true
}

// Fingerprint returns a hex SHA-256 digest of the matrix shape and contents.
// Two matrices with the same fingerprint produce the same similarity model.
func (m RatingMatrix) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(m.Users()))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(m.Items()))
	h.Write(buf[:])

	for _, row := range m {
		for _, score := range row {
			binary.LittleEndian.PutUint64(buf[:], uint64(int64(score)))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Neighbor is one entry of an item's neighborhood: a similarity weight and
// the index of the similar item.
type Neighbor struct {
	Weight float64 `json:"weight"`
	Index  int     `json:"index"`
}

// NeighborhoodTable holds, for every item, exactly K neighbors sorted by
// weight descending with ties broken by index descending.
type NeighborhoodTable [][]Neighbor

// K returns the neighborhood width, or 0 for an empty table.
func (t NeighborhoodTable) K() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// ScoredCandidate is an item with its accumulated recommendation weight.
// The weight is summed evidence, not a probability.
type ScoredCandidate struct {
	Weight float64 `json:"weight"`
	Item   int     `json:"item"`
}

// greater reports whether (aw, ai) sorts before (bw, bi) in the package-wide
// ranking order: weight descending, then index descending.
func greater(aw float64, ai int, bw float64, bi int) bool {
	if aw != bw {
		return aw > bw
	}
	return ai > bi
}

// compareDesc is greater expressed as a slices.SortFunc comparator.
func compareDesc(aw float64, ai int, bw float64, bi int) int {
	switch {
	case greater(aw, ai, bw, bi):
		return -1
	case greater(bw, bi, aw, ai):
		return 1
	default:
		return 0
	}
}
