// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import "fmt"

// HitCount is the raw outcome of an evaluation pass.
type HitCount struct {
	Hits  int
	Users int
	N     int
}

// Rate returns hits / (N * users), or 0 when nothing was recommended.
func (h HitCount) Rate() float64 {
	total := h.N * h.Users
	if total == 0 {
		return 0
	}
	return float64(h.Hits) / float64(total)
}

// HitRate recommends n items to every user of train and counts how many of
// them the same user scored in test. The denominator is always n * users.
//
// Unlike Recommend, the ranking keeps the user's rated items. When fewer
// than n unrated items gained weight, rated items (weight 0, higher index
// first) take the remaining slots and can never hit, since a cell rated in
// train is 0 in test.
func HitRate(train, test RatingMatrix, table NeighborhoodTable, n, workers int) (float64, error) {
	hc, err := CountHits(train, test, table, n, workers)
	if err != nil {
		return 0, err
	}
	return hc.Rate(), nil
}

// CountHits is HitRate returning the raw counts.
func CountHits(train, test RatingMatrix, table NeighborhoodTable, n, workers int) (HitCount, error) {
	if n < 1 {
		return HitCount{}, fmt.Errorf("%w: recommendation count must be >= 1, got %d", ErrConfiguration, n)
	}
	if train.Users() == 0 {
		return HitCount{}, fmt.Errorf("%w: evaluation requires at least one user", ErrData)
	}
	if err := train.Validate(); err != nil {
		return HitCount{}, err
	}
	if err := test.Validate(); err != nil {
		return HitCount{}, err
	}
	if train.Users() != test.Users() || train.Items() != test.Items() {
		return HitCount{}, fmt.Errorf("%w: train is %dx%d but test is %dx%d",
			ErrData, train.Users(), train.Items(), test.Users(), test.Items())
	}
	if train.Items() != len(table) {
		return HitCount{}, fmt.Errorf("%w: matrix has %d items, neighborhood table has %d",
			ErrData, train.Items(), len(table))
	}

	users := train.Users()
	workers = normalizeWorkers(workers, users)
	hits := make([]int, workers)
	accs := make([][]float64, workers)

	parallelFor(users, workers, func(worker, u int) {
		if accs[worker] == nil {
			accs[worker] = make([]float64, train.Items())
		}
		for _, c := range recommendInto(accs[worker], table, train[u], n, false) {
			if test[u][c.Item] != 0 {
				hits[worker]++
			}
		}
	})

	total := 0
	for _, h := range hits {
		total += h
	}
	return HitCount{Hits: total, Users: users, N: n}, nil
}
