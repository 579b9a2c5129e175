// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package graph

import "github.com/matt-FFFFFF/parashell/internal/access"

// FrontierAdder is the callback graph.Add/graph.Remove use to place a node
// with Unresolved == 0 onto the frontier. internal/frontier supplies this,
// avoiding an import cycle.
type FrontierAdder func(*Node)

// IsLoopNode reports whether a frontier node is a While/Until/For compound
// still expanding body iterations. internal/frontier supplies the real
// predicate; Add uses it for the loop-dominance early-stop rule: once a
// dependency has been established against a loop-type compound, scanning
// further frontier nodes stops there.
type IsLoopNode func(*Node) bool

// Add implements the dependency-graph insertion algorithm: it scans the
// current frontier for conflicts against newNode, accumulating dependency
// edges, and places newNode on the frontier once nothing blocks it.
// frontierNodes is the current frontier in insertion order (its type is
// []*Node, not the frontier package's own list, since graph must not
// import frontier); onReady is invoked when newNode's Unresolved count
// reaches zero.
//
// The caller (internal/scheduler) must already hold the scheduler lock;
// Add is reentrant only in the sense that expansion code may call it again
// while still "inside" the same logical critical section — Go has no
// reentrant mutex, so the scheduler package structures this as a single
// goroutine performing all of Add/Remove/expansion without re-acquiring
// (see internal/scheduler's doc comment).
func Add(newNode *Node, frontierNodes []*Node, isLoop IsLoopNode, onReady FrontierAdder) {
	if newNode.Parent != nil {
		newNode.Parent.IncActive()
	}

	ancestors := ancestorSet(newNode)

	for _, f := range frontierNodes {
		added := depAdd(newNode, f, ancestors)
		newNode.Unresolved += added

		if added > 0 && isLoop != nil && isLoop(f) {
			break
		}
	}

	if newNode.Unresolved == 0 {
		onReady(newNode)
	}
}

// ancestorSet walks newNode's Parent chain (the enclosing compound, its own
// enclosing compound, and so on) and returns the set of GraphNodes found
// along the way. A compound's declared access is the union of everything its
// segments touch, so without this exclusion every child whose access
// overlaps that union would conflict with its own ancestor and never be able
// to unblock it.
func ancestorSet(newNode *Node) map[*Node]bool {
	set := make(map[*Node]bool)

	for parent := newNode.Parent; parent != nil; {
		g := parent.GraphNode()
		if g == nil || set[g] {
			break
		}

		set[g] = true
		parent = g.Parent
	}

	return set
}

// depAdd is the recursive dependency walk: it finds the deepest transitive
// dependents already serializing against node and attaches newNode there
// instead of duplicating an edge higher up the chain. ancestors excludes
// newNode's own ancestor chain, so a compound's children never end up
// serialized against the compound itself, however the recursion reaches it.
func depAdd(newNode, node *Node, ancestors map[*Node]bool) int {
	if ancestors[node] {
		return 0
	}

	c := Conflict(newNode, node)
	if c == access.NoClash {
		return 0
	}

	if containsDependent(node, newNode) {
		return 0 // already a transitive dependent; short-circuit
	}

	// One of newNode's own ancestors already waits on node, so newNode,
	// which only exists once that ancestor has started expanding, is
	// already ordered after node: no edge is needed.
	for _, dep := range node.Dependents {
		if ancestors[dep] {
			return 0
		}
	}

	sum := 0
	for _, dep := range node.Dependents {
		sum += depAdd(newNode, dep, ancestors)
	}

	if sum == 0 && c == access.WriteCollision {
		node.Dependents = append(node.Dependents, newNode)
		return 1
	}

	return sum
}

func containsDependent(node, target *Node) bool {
	for _, d := range node.Dependents {
		if d == target {
			return true
		}
	}

	return false
}

// CancelHook is invoked from Remove when node is a Continue/Break directive,
// routing it to the cancellation engine instead of the normal
// dependents-release path. internal/cancel supplies this; kept as a
// parameter (not an import) to avoid a cycle.
type CancelHook func(*Node)

// Remove is the non-frontier half of completing a node: releasing its
// dependents and, if its parent's active-children count reaches zero,
// releasing that parent in turn. It is called once a node has completed (or
// been cancelled) and is no longer on the frontier.
func Remove(node *Node, onCancel CancelHook, onReady FrontierAdder) {
	if isBreakOrContinue(node) {
		if onCancel != nil {
			onCancel(node)
		}
	} else {
		for _, d := range node.Dependents {
			d.Unresolved--

			if d.Unresolved == 0 {
				onReady(d)
			}
		}
	}

	node.Dependents = nil

	if node.Parent != nil {
		if node.Parent.DecActive() == 0 {
			if releasable, ok := node.Parent.(ParentReleaser); ok {
				releasable.Release()
			}
		}
	}
}

// ParentReleaser is implemented by a CompoundParent whose zero active-count
// should trigger its own removal in turn — i.e. recursive compound
// completion.
type ParentReleaser interface {
	Release()
}

func isBreakOrContinue(node *Node) bool {
	for _, a := range node.Access {
		if a.Kind == access.Continue || a.Kind == access.Break {
			return true
		}
	}

	return false
}
