// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/thejerf/suture/v4"
)

// runOutcome is what a fakeService returns once its transient failures are
// used up.
type runOutcome int

const (
	// blockUntilCanceled behaves like the HTTP server.
	blockUntilCanceled runOutcome = iota
	// finishAndTerminate behaves like a batch job run with ExitWhenDone.
	finishAndTerminate
	// finishAndStepAside behaves like a batch job that leaves the API up.
	finishAndStepAside
)

var errTransient = errors.New("transient failure")

// fakeService stands in for the job and API services in tree tests.
type fakeService struct {
	name     string
	outcome  runOutcome
	failures atomic.Int32
	starts   atomic.Int32
	stops    atomic.Int32
}

func newFakeService(name string, outcome runOutcome) *fakeService {
	return &fakeService{name: name, outcome: outcome}
}

// failFirst makes the first n runs return errTransient.
func (f *fakeService) failFirst(n int) *fakeService {
	f.failures.Store(int32(n)) //nolint:gosec // small test counts
	return f
}

func (f *fakeService) Serve(ctx context.Context) error {
	f.starts.Add(1)
	defer f.stops.Add(1)

	if f.failures.Add(-1) >= 0 {
		return errTransient
	}

	switch f.outcome {
	case finishAndTerminate:
		return fmt.Errorf("%s finished: %w", f.name, suture.ErrTerminateSupervisorTree)
	case finishAndStepAside:
		return suture.ErrDoNotRestart
	default:
		<-ctx.Done()
		return ctx.Err()
	}
}

func (f *fakeService) String() string {
	return f.name
}

func (f *fakeService) startCount() int { return int(f.starts.Load()) }

func (f *fakeService) stopCount() int { return int(f.stops.Load()) }
