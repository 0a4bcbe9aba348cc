// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import (
	"fmt"
	"slices"
)

// Recommend scores every item the user has not rated and returns the n
// best as (weight, item) pairs.
//
// For each rated item w with score r, every neighbor nb of w that the user
// has not rated gains sim*r. Candidates are ranked by accumulated weight
// descending, then item index descending. Unrated items that gained nothing
// still fill the list when fewer than n items scored. The result is shorter
// than n only when the user has rated all but fewer than n items.
func Recommend(table NeighborhoodTable, row []int, n int) ([]ScoredCandidate, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: recommendation count must be >= 1, got %d", ErrConfiguration, n)
	}
	if len(row) != len(table) {
		return nil, fmt.Errorf("%w: user row has %d items, neighborhood table has %d", ErrData, len(row), len(table))
	}
	return recommendInto(nil, table, row, n, true), nil
}

// recommendInto is Recommend without argument checks. acc is reused when it
// is large enough so that evaluation workers do not allocate per user.
//
// With skipWatched false every item is ranked, rated ones included. They
// never gain weight, so they only surface as zero-weight fillers when fewer
// than n unrated items scored. Hit-rate evaluation ranks this way.
func recommendInto(acc []float64, table NeighborhoodTable, row []int, n int, skipWatched bool) []ScoredCandidate {
	items := len(row)
	if cap(acc) < items {
		acc = make([]float64, items)
	}
	acc = acc[:items]
	clear(acc)

	for w, rating := range row {
		if rating == 0 {
			continue
		}
		for _, nb := range table[w] {
			if row[nb.Index] != 0 {
				continue
			}
			acc[nb.Index] += nb.Weight * float64(rating)
		}
	}

	candidates := make([]ScoredCandidate, 0, items)
	for item, weight := range acc {
		if skipWatched && row[item] != 0 {
			continue
		}
		candidates = append(candidates, ScoredCandidate{Weight: weight, Item: item})
	}
	slices.SortFunc(candidates, func(a, b ScoredCandidate) int {
		return compareDesc(a.Weight, a.Item, b.Weight, b.Item)
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return slices.Clip(candidates)
}
