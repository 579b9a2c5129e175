// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/matt-FFFFFF/parashell/internal/evaluator"
)

// Run drives workerCount worker goroutines against Pull/Complete until the
// frontier drains at EOF or ctx is cancelled, then returns the aggregate of
// every error reported through Complete (nil if there were none).
//
// One goroutine per worker, a WaitGroup to join them, with Pull/Complete
// playing the role of a channel-fed command queue.
func (s *Scheduler) Run(ctx context.Context, eval evaluator.Evaluator, workerCount int) error {
	if workerCount < 1 {
		workerCount = 1
	}

	var wg sync.WaitGroup

	wg.Add(workerCount)

	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()

			s.worker(ctx, eval)
		}()
	}

	wg.Wait()

	var merr *multierror.Error
	for _, e := range s.Errs() {
		merr = multierror.Append(merr, e)
	}

	return merr.ErrorOrNil()
}

func (s *Scheduler) worker(ctx context.Context, eval evaluator.Evaluator) {
	for {
		dispatch, ok := s.Pull(ctx)
		if !ok {
			return
		}

		result := eval.Evaluate(ctx, dispatch.Command)

		_ = s.Complete(dispatch.Node, Completion{Status: result.Status, Err: result.Err})
	}
}
