// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schederr holds the scheduler's error taxonomy. None of these
// abort the process; each is surfaced to the caller of the failing
// operation, in the sentinel-error style of runbatch.ErrRunConditionUnknown
// / runbatch.ErrResultChildrenHasError.
package schederr

import "errors"

var (
	// ErrAnalyzer is a malformed CommandTree: a required child is missing.
	// Fails the intake for that node; the scheduler skips it and continues.
	ErrAnalyzer = errors.New("schederr: malformed command tree")

	// ErrDependencyInvariant names the case of a dispatched node whose
	// Unresolved count is nonzero: a node must never run while something
	// upstream is still pending. Pull does not check that count, and no code
	// in this repository returns or recovers this error.
	ErrDependencyInvariant = errors.New("schederr: dependency invariant violated")

	// ErrCancelledCompletion is returned when the evaluator reports
	// completion of a node already marked Cancelled. It does not affect
	// status propagation; the normal remove path still runs.
	ErrCancelledCompletion = errors.New("schederr: completion reported for a cancelled node")
)
