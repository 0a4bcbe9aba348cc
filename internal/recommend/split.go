// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import "fmt"

// Splitter partitions rating matrices cell by cell into train and test sets.
type Splitter struct {
	seed int64
}

// NewSplitter returns a Splitter that seeds a fresh MinStdSource for every
// Split call, so repeated splits of the same matrix are identical.
// A zero seed selects DefaultSeed.
func NewSplitter(seed int64) *Splitter {
	if seed == 0 {
		seed = DefaultSeed
	}
	return &Splitter{seed: seed}
}

// Seed returns the effective seed.
func (s *Splitter) Seed() int64 {
	return s.seed
}

// Split assigns every cell of m to exactly one of the returned matrices.
// For each cell, in row-major order, a draw below trainPercent sends the
// score to train (test gets 0); otherwise test gets the score and train 0.
// Unrated cells consume a draw like any other cell.
func (s *Splitter) Split(m RatingMatrix, trainPercent int) (train, test RatingMatrix, err error) {
	return SplitWithSource(m, trainPercent, NewMinStdSource(s.seed))
}

// SplitWithSource is Split with a caller-supplied random source.
func SplitWithSource(m RatingMatrix, trainPercent int, src PercentSource) (train, test RatingMatrix, err error) {
	if trainPercent < 0 || trainPercent > 100 {
		return nil, nil, fmt.Errorf("%w: train percent must be in [0, 100], got %d", ErrConfiguration, trainPercent)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}

	train = NewZeroMatrix(m.Users(), m.Items())
	test = NewZeroMatrix(m.Users(), m.Items())

	for u, row := range m {
		for i, score := range row {
			if src.Percent() < trainPercent {
				train[u][i] = score
			} else {
				test[u][i] = score
			}
		}
	}

	return train, test, nil
}
