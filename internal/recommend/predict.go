// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import (
	"fmt"
	"math"
)

// knownScore is one nonzero score from a row's known prefix.
type knownScore struct {
	score int
	item  int
}

// PredictBlanks completes every row of blank. Columns [0, knownItems) are
// copied verbatim; each later column is the similarity-weighted average of the
// row's nonzero known scores, rounded half away from zero. A column with no
// similarity to any known item is predicted as 0. The input is not modified.
func PredictBlanks(sim *SimilarityMatrix, blank RatingMatrix, knownItems, workers int) (RatingMatrix, error) {
	if sim == nil {
		return nil, fmt.Errorf("%w: similarity matrix is nil", ErrData)
	}
	if err := blank.Validate(); err != nil {
		return nil, err
	}
	items := sim.Items()
	if blank.Users() > 0 && blank.Items() != items {
		return nil, fmt.Errorf("%w: rows have %d items, similarity matrix has %d", ErrData, blank.Items(), items)
	}
	if knownItems < 0 || knownItems > items {
		return nil, fmt.Errorf("%w: known items must be in [0, %d], got %d", ErrConfiguration, items, knownItems)
	}

	out := make(RatingMatrix, blank.Users())
	parallelFor(blank.Users(), workers, func(_, u int) {
		out[u] = predictRow(sim, blank[u], knownItems)
	})
	return out, nil
}

// FillBlanks computes the similarity over full and then runs PredictBlanks
// on blank. full and blank must have the same number of items.
func FillBlanks(full, blank RatingMatrix, knownItems, workers int) (RatingMatrix, error) {
	sim, err := ComputeSimilarity(full, workers)
	if err != nil {
		return nil, err
	}
	return PredictBlanks(sim, blank, knownItems, workers)
}

func predictRow(sim *SimilarityMatrix, row []int, knownItems int) []int {
	out := make([]int, len(row))
	known := make([]knownScore, 0, knownItems)
	for item := 0; item < knownItems; item++ {
		score := row[item]
		if score != 0 {
			known = append(known, knownScore{score: score, item: item})
		}
		out[item] = score
	}
	for item := knownItems; item < len(row); item++ {
		out[item] = predictItem(sim, item, known)
	}
	return out
}

func predictItem(sim *SimilarityMatrix, item int, known []knownScore) int {
	var num, den float64
	for _, k := range known {
		s := sim.At(item, k.item)
		num += s * float64(k.score)
		den += s
	}
	if den == 0 {
		return 0
	}
	return int(math.Round(num / den))
}
