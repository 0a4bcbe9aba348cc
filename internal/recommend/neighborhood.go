// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import (
	"fmt"
	"slices"
)

// TopK reduces every row of sim to its k highest (weight, index) pairs.
//
// Each row is ranked in full, including the zero diagonal, by weight
// descending and then index descending. When k exceeds the catalog size the
// tail is padded with {0, 0} placeholders; Engine rejects that configuration
// before it gets here, but the padding keeps direct callers well defined.
func TopK(sim *SimilarityMatrix, k, workers int) (NeighborhoodTable, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: neighborhood size must be >= 1, got %d", ErrConfiguration, k)
	}
	if sim == nil {
		return nil, fmt.Errorf("%w: similarity matrix is nil", ErrData)
	}

	n := sim.Items()
	table := make(NeighborhoodTable, n)

	// One scratch buffer per worker; rows are written to disjoint table slots.
	workers = normalizeWorkers(workers, n)
	scratch := make([][]Neighbor, workers)

	parallelFor(n, workers, func(worker, item int) {
		buf := scratch[worker]
		if cap(buf) < n {
			buf = make([]Neighbor, n)
		}
		buf = buf[:n]
		for j := 0; j < n; j++ {
			buf[j] = Neighbor{Weight: sim.At(item, j), Index: j}
		}
		slices.SortFunc(buf, func(a, b Neighbor) int {
			return compareDesc(a.Weight, a.Index, b.Weight, b.Index)
		})
		scratch[worker] = buf

		row := make([]Neighbor, k)
		copy(row, buf)
		table[item] = row
	})

	return table, nil
}
