// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import (
	"runtime"
	"sync"
)

// normalizeWorkers clamps a worker count to [1, n]. Zero or negative means
// one worker per CPU.
func normalizeWorkers(workers, n int) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// parallelFor calls fn(worker, i) for every i in [0, n). Indices are dealt
// round-robin so workers get a similar mix of cheap and expensive rows
// (similarity row i costs n-i cells). fn must only write state owned by i
// or by worker.
func parallelFor(n, workers int, fn func(worker, i int)) {
	if n <= 0 {
		return
	}
	workers = normalizeWorkers(workers, n)
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(0, i)
		}
		return
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := worker; i < n; i += workers {
				fn(worker, i)
			}
		}(w)
	}
	wg.Wait()
}
