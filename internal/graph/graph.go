// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package graph implements the dependency graph (C2): it owns GraphNodes and
// their dependent edges, decides whether a new node conflicts with an
// existing one by AccessSet intersection, and maintains each node's
// unresolved-dependency counter.
package graph

import (
	"github.com/google/uuid"

	"github.com/matt-FFFFFF/parashell/internal/access"
	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
)

// Flag is a bit in a Node's flag set.
type Flag int

const (
	// FlagKeep means don't free the command on removal.
	FlagKeep Flag = 1 << iota
	// FlagFree means free the command on removal.
	FlagFree
	// FlagTestTail marks the last command of a compound's test segment.
	FlagTestTail
	// FlagBodyTail marks the last command of a compound's body segment.
	FlagBodyTail
	// FlagCancelled marks a node pruned by the cancellation engine.
	FlagCancelled
)

// Has reports whether f contains bit.
func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

// CompoundParent is the back-reference a GraphNode holds to the frontier
// node of its enclosing compound, if any. internal/frontier implements this;
// kept as a minimal interface here to avoid an import cycle
// (graph -> frontier would be circular, since frontier owns GraphNodes).
type CompoundParent interface {
	// IncActive increments the parent's count of spawned children still alive.
	IncActive()
	// DecActive decrements it and returns the new value.
	DecActive() int
	// GraphNode returns the parent's own GraphNode, letting Add walk a new
	// node's ancestor chain and exclude it from the frontier conflict scan:
	// a compound's declared access set necessarily overlaps whatever its own
	// body/branches touch, and that overlap must never turn a child into its
	// own ancestor's dependent.
	GraphNode() *Node
}

// Node is a GraphNode: a single scheduled unit of work plus its dependency
// edges.
type Node struct {
	ID      uuid.UUID
	Command cmdtree.Node
	Access  access.AccessSet

	// Dependents is insertion-ordered: downstream nodes that wait on this one.
	Dependents []*Node

	// Unresolved is the number of upstream nodes yet to complete. A node
	// belongs at the frontier iff Unresolved == 0.
	Unresolved int

	Parent CompoundParent // non-owning; nil for top-level nodes

	Nest      int // loop-nesting depth; root = 0
	Iteration int // iteration counter of the innermost enclosing loop at creation

	Flags Flag
}

// New creates a Node for the given command and access set.
func New(cmd cmdtree.Node, set access.AccessSet, nest, iteration int) *Node {
	return &Node{
		ID:        uuid.New(),
		Command:   cmd,
		Access:    set,
		Nest:      nest,
		Iteration: iteration,
	}
}

// Conflict classifies the relationship between a candidate new node and an
// existing node already in the graph, combining the file/variable
// conflict predicate with the break/continue pruning-scope predicate.
// It does not itself prune anything — internal/cancel does that; here it
// only decides whether `newNode` must wait on `existing`.
func Conflict(newNode, existing *Node) access.Conflict {
	if c := access.SetConflict(newNode.Access, existing.Access); c != access.NoClash {
		return c
	}

	// A Continue/Break entry in newNode's access conflicts with current
	// loop-body members of matching (nest, iteration): existing must have
	// already been scheduled as a body member at or below the target nest.
	if hasBreakOrContinue(newNode.Access, existing.Nest, existing.Iteration, newNode.Iteration) {
		return access.WriteCollision
	}

	// Symmetric case: existing is itself a break/continue directive and
	// newNode is a later-arriving body member at a matching nest/iteration.
	if hasBreakOrContinue(existing.Access, newNode.Nest, newNode.Iteration, existing.Iteration) {
		return access.WriteCollision
	}

	return access.NoClash
}

// hasBreakOrContinue applies the break/continue pruning predicate across
// every Continue/Break entry in directiveSet. candidateNest/candidateIter
// describe the other node being checked; directiveIter is the
// GraphNode.Iteration of the node the directive entries belong to.
func hasBreakOrContinue(directiveSet access.AccessSet, candidateNest, candidateIter, directiveIter int) bool {
	for _, b := range directiveSet {
		if access.BreakContinueHits(b, candidateNest, candidateIter, directiveIter) {
			return true
		}
	}

	return false
}
