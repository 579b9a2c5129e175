// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cancel implements the cancellation engine (C6): on completion of a
// break/continue directive, it prunes the live nodes whose (nest, iteration)
// satisfy the directive's pruning predicate. Targets tests every live node;
// it does not walk the parent chain to the targeted loop, so the prune set
// is not limited to that loop's own descendants.
package cancel

import (
	"github.com/matt-FFFFFF/parashell/internal/access"
	"github.com/matt-FFFFFF/parashell/internal/graph"
)

// directiveAccess returns the single Continue/Break Access entry a
// directive node carries, per internal/access's analyzer.
func directiveAccess(node *graph.Node) (access.Access, bool) {
	for _, a := range node.Access {
		if a.Kind == access.Continue || a.Kind == access.Break {
			return a, true
		}
	}

	return access.Access{}, false
}

// Targets returns the subset of live (not yet completed, not already
// cancelled) graph nodes that directive's completion prunes: every node
// whose (nest, iteration) satisfies the targeted loop's pruning predicate.
// directive itself is never included: Targets skips it by identity.
// graph.Remove runs the cancel hook before it decrements the directive's
// parent's active count, so the directive is still live during this pass.
func Targets(directive *graph.Node, live []*graph.Node) []*graph.Node {
	b, ok := directiveAccess(directive)
	if !ok {
		return nil
	}

	var hit []*graph.Node

	for _, n := range live {
		if n == directive || n.Flags.Has(graph.FlagCancelled) {
			continue
		}

		if access.BreakContinueHits(b, n.Nest, n.Iteration, directive.Iteration) {
			hit = append(hit, n)
		}
	}

	return hit
}

// Prune marks every target Cancelled and removes it from the graph: it is
// detached from any upstream node's Dependents list (so that node's later
// completion no longer tries to release it), its access set is cleared
// (freeing it as a source of future conflicts), and remove is invoked to
// run the same dependent-release / parent-active-decrement path a normal
// completion would — a pruned node is conceptually "force completed"
// without ever reaching the evaluator.
func Prune(targets []*graph.Node, allLive []*graph.Node, remove func(*graph.Node)) {
	for _, t := range targets {
		if t.Flags.Has(graph.FlagCancelled) {
			continue
		}

		t.Flags |= graph.FlagCancelled
		detachFromUpstream(t, allLive)
		t.Access = nil

		remove(t)
	}
}

// detachFromUpstream removes target from every other live node's Dependents
// slice, so a later upstream completion doesn't try to decrement an
// already-pruned node's Unresolved counter.
func detachFromUpstream(target *graph.Node, allLive []*graph.Node) {
	for _, n := range allLive {
		if n == target {
			continue
		}

		for i, d := range n.Dependents {
			if d == target {
				n.Dependents = append(n.Dependents[:i], n.Dependents[i+1:]...)
				break
			}
		}
	}
}
