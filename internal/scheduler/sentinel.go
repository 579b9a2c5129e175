// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
	"github.com/matt-FFFFFF/parashell/internal/expander"
	"github.com/matt-FFFFFF/parashell/internal/frontier"
	"github.com/matt-FFFFFF/parashell/internal/graph"
)

// phase identifies which segment of a compound a sentinel is currently
// expanding.
type phase int

const (
	phaseTest phase = iota
	phaseBody
)

// sentinelState is the expander-private bookkeeping frontier.Node doesn't
// carry itself: which compound this is, which segment is in flight, and (for
// For) the remaining word list to iterate.
type sentinelState struct {
	kind      expander.Type
	cmd       cmdtree.Node
	phase     phase
	forRemain []string
	forVar    string
	nest      int
}

// startSentinel begins expanding a compound graph.Node whose Unresolved
// count has just reached zero: it wraps it in a frontier placeholder (so
// later write-colliding siblings still serialize against it), appends the
// placeholder to the frontier, and kicks off the first segment.
func (s *Scheduler) startSentinel(node *graph.Node, t expander.Type) {
	frontierType := frontierTypeOf(t)

	fn := frontier.NewNode(node, frontierType, s.onSentinelRelease)
	st := &sentinelState{kind: t, cmd: node.Command, nest: node.Nest}
	s.sentinels[fn] = st

	s.frontier.Append(fn)

	if t == expander.TypeFor {
		forNode := node.Command.(*cmdtree.For)
		st.forVar = forNode.Var
		st.forRemain = forNode.Args
		st.phase = phaseBody

		s.startForIteration(fn, st)

		return
	}

	st.phase = phaseTest
	s.expandSegment(fn, st, testSegmentOf(st))
}

func frontierTypeOf(t expander.Type) frontier.Type {
	switch t {
	case expander.TypeAnd:
		return frontier.TypeAnd
	case expander.TypeOr:
		return frontier.TypeOr
	case expander.TypeIf:
		return frontier.TypeIf
	case expander.TypeWhile:
		return frontier.TypeWhile
	case expander.TypeUntil:
		return frontier.TypeUntil
	case expander.TypeFor:
		return frontier.TypeFor
	default:
		return frontier.TypeSimple
	}
}

func testSegmentOf(st *sentinelState) cmdtree.Node {
	seg, ok := expander.TestSegment(st.kind, st.cmd)
	if !ok {
		return nil
	}

	return seg
}

// expandSegment flattens seg into its linear command list and submits each
// member as a child of fn, tagging the last with FlagTestTail or
// FlagBodyTail so Complete can read fn.Status off it. If seg is empty (no
// body branch taken, e.g. an If with no else) the sentinel finalizes
// immediately.
func (s *Scheduler) expandSegment(fn *frontier.Node, st *sentinelState, seg cmdtree.Node) {
	if seg == nil {
		s.finalizeSentinel(fn, st)

		return
	}

	members := expander.FlattenSemi(seg)
	tailFlag := graph.FlagTestTail
	if st.phase == phaseBody {
		tailFlag = graph.FlagBodyTail
	}

	for i, m := range members {
		_ = s.submitNode(m, fn, st.nest, fn.Iteration)

		if i == len(members)-1 {
			s.markTail(m, tailFlag)
		}
	}
}

// markTail sets tailFlag on the live graph.Node whose Command is m.
// submitNode doesn't return the node it created (a single top-level call
// can recursively create several, for nested compounds), so the tail node
// is found by identity of the command value instead. For a nested compound
// member, this is the compound's own graph.Node, the one finalizeSentinel
// eventually removes.
func (s *Scheduler) markTail(m cmdtree.Node, tailFlag graph.Flag) {
	for _, n := range s.live {
		if n.Command == m {
			n.Flags |= tailFlag

			return
		}
	}
}

// onSentinelRelease is frontier.ReleaseFunc: fn's Active count has reached
// zero, meaning the segment currently in flight has fully completed
// (including any nested compounds within it). It decides what runs next.
func (s *Scheduler) onSentinelRelease(fn *frontier.Node) {
	st, ok := s.sentinels[fn]
	if !ok {
		return
	}

	switch st.phase {
	case phaseTest:
		if !expander.FiresBody(st.kind, fn.Status) {
			s.finalizeSentinel(fn, st)

			return
		}

		seg, ok := expander.BodySegment(st.kind, st.cmd, fn.Status)
		if !ok {
			s.finalizeSentinel(fn, st)

			return
		}

		st.phase = phaseBody
		s.expandSegment(fn, st, seg)

	case phaseBody:
		if st.kind == expander.TypeFor {
			s.startForIteration(fn, st)

			return
		}

		if !st.kind.IsLoop() {
			s.finalizeSentinel(fn, st)

			return
		}

		fn.Iteration++
		st.phase = phaseTest
		s.expandSegment(fn, st, testSegmentOf(st))
	}
}

// startForIteration binds the next word in a For's argument list as a
// VarAssign and expands the body against it, or finalizes once the list is
// exhausted.
func (s *Scheduler) startForIteration(fn *frontier.Node, st *sentinelState) {
	if len(st.forRemain) == 0 {
		s.finalizeSentinel(fn, st)

		return
	}

	value := st.forRemain[0]
	st.forRemain = st.forRemain[1:]

	assign := &cmdtree.VarAssign{Simple: &cmdtree.Simple{Assigns: []cmdtree.Assign{{Name: st.forVar, Value: value}}}}
	_ = s.submitNode(assign, fn, st.nest, fn.Iteration)

	body := st.cmd.(*cmdtree.For).Body
	s.expandSegment(fn, st, body)

	fn.Iteration++
}

// finalizeSentinel reduces a fully-expanded compound: it is removed from
// the graph and the frontier exactly as a plain command's completion would
// be, releasing whatever was waiting on the compound as a whole.
func (s *Scheduler) finalizeSentinel(fn *frontier.Node, st *sentinelState) {
	if parentFn, ok := fn.Graph.Parent.(*frontier.Node); ok {
		if fn.Graph.Flags.Has(graph.FlagTestTail) || fn.Graph.Flags.Has(graph.FlagBodyTail) {
			parentFn.Status = fn.Status
		}
	}

	delete(s.sentinels, fn)
	delete(s.live, fn.Graph.ID)

	s.frontier.Remove(fn)
	graph.Remove(fn.Graph, s.onCancelDirective, s.onNodeReadyIfSimple)
}
