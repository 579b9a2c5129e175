// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scheduler wires internal/access, internal/graph, internal/vars,
// internal/frontier, internal/cancel, internal/expander and internal/intake
// behind one lock, and drives a worker pool that pulls dispatchable nodes
// and reports their completion back.
//
// The dependency-graph algorithm is naturally reentrant: adding one node can
// recursively walk into adding others mid-expansion. Go has no native
// reentrant mutex, so Scheduler takes the opposite approach: exactly one
// goroutine ever holds mu while mutating graph/frontier/vars state, and
// every nested call (submitNode from inside a Complete, expansion continuing
// from inside Remove) is an ordinary synchronous Go call on that same
// goroutine rather than a re-acquire. Workers only cross back into the
// locked section via Pull and Complete; the evaluator itself runs with no
// lock held at all.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/matt-FFFFFF/parashell/internal/access"
	"github.com/matt-FFFFFF/parashell/internal/cancel"
	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
	"github.com/matt-FFFFFF/parashell/internal/ctxlog"
	"github.com/matt-FFFFFF/parashell/internal/expander"
	"github.com/matt-FFFFFF/parashell/internal/frontier"
	"github.com/matt-FFFFFF/parashell/internal/graph"
	"github.com/matt-FFFFFF/parashell/internal/intake"
	"github.com/matt-FFFFFF/parashell/internal/schederr"
	"github.com/matt-FFFFFF/parashell/internal/vars"
)

// varRefPattern matches a $name token embedded anywhere in an argument, the
// only shape of variable read the evaluator resolves (no ${...}, no
// arithmetic or command substitution).
var varRefPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// Completion is what the evaluator reports back for a dispatched node.
type Completion struct {
	Status int
	Err    error
}

// Dispatch is one unit of work handed to a worker by Pull: the command to
// run and the node identity Complete needs back.
type Dispatch struct {
	Node    *graph.Node
	Command cmdtree.Node
}

// Scheduler is the running instance of one command-tree execution.
type Scheduler struct {
	mu   sync.Mutex
	cond *sync.Cond

	frontier *frontier.Frontier
	vars     *vars.Table

	live      map[uuid.UUID]*graph.Node
	sentinels map[*frontier.Node]*sentinelState
	reads     map[uuid.UUID][]*vars.Version
	writes    map[uuid.UUID][]*vars.Version

	// dispatchable tracks the frontier.Node wrapper a plain command was given
	// in onNodeReady, so Complete (and cancellation pruning) can unlink it
	// once the command is done — mirroring what finalizeSentinel already does
	// for compounds. Without this, a completed command's GraphNode stays on
	// the frontier list forever and gets rescanned by every later graph.Add.
	dispatchable map[uuid.UUID]*frontier.Node

	logger *slog.Logger

	errs []error

	// OnComplete, if set, is invoked once per Complete call (lock held) with
	// the node and its outcome, letting a caller build a result tree without
	// this package depending on internal/resulttree.
	OnComplete func(node *graph.Node, c Completion)
}

// New constructs an idle Scheduler. Call Submit for every parsed command,
// followed by EOF, then run one or more workers against Pull/Complete.
func New(ctx context.Context) *Scheduler {
	s := &Scheduler{
		frontier:     frontier.New(),
		vars:         vars.NewTable(),
		live:         make(map[uuid.UUID]*graph.Node),
		sentinels:    make(map[*frontier.Node]*sentinelState),
		reads:        make(map[uuid.UUID][]*vars.Version),
		writes:       make(map[uuid.UUID][]*vars.Version),
		dispatchable: make(map[uuid.UUID]*frontier.Node),
		logger:       ctxlog.Logger(ctx),
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

// Submit hands one intake.Item to the scheduler: an EOF item closes the
// intake stream, a builtin item is rejected (callers must run builtins
// synchronously before ever reaching Submit), everything else becomes one
// or more graph nodes.
func (s *Scheduler) Submit(item intake.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.EOF {
		s.logger.Debug("intake reached EOF")
		s.frontier.SetEOF()
		s.cond.Broadcast()

		return nil
	}

	if item.Builtin != nil {
		return fmt.Errorf("scheduler: builtin %q must run off-graph, not submitted", item.Builtin.Args)
	}

	for _, top := range expander.FlattenSemi(item.Node) {
		if err := s.submitNode(top, nil, 0, 0); err != nil {
			return err
		}
	}

	return nil
}

// submitNode analyzes cmd's access set, creates its graph.Node, and either
// places it directly (a plain command) or starts a sentinel (a compound).
// parent is the enclosing compound's frontier node, or nil at top level.
func (s *Scheduler) submitNode(cmd cmdtree.Node, parent graph.CompoundParent, nest, iteration int) error {
	set, err := access.Analyze(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", schederr.ErrAnalyzer, err)
	}

	node := graph.New(cmd, set, nest, iteration)
	node.Parent = parent
	s.live[node.ID] = node

	s.queueVariableReads(node, cmd)
	s.queueVariableWrites(node, cmd)

	frontierNodes := s.frontier.Nodes()
	graph.Add(node, frontierNodes, s.isLoopGraphNode, s.onNodeReady)

	return nil
}

// queueVariableReads scans a Simple's argv for $name tokens and registers
// this node as a reader of each one's latest version, before the node is
// ever handed to graph.Add — so Unresolved already reflects pending
// variable reads by the time frontier-readiness is checked.
func (s *Scheduler) queueVariableReads(node *graph.Node, cmd cmdtree.Node) {
	simple, ok := simpleOf(cmd)
	if !ok {
		return
	}

	seen := map[string]bool{}

	for _, arg := range simple.Args {
		for _, m := range varRefPattern.FindAllStringSubmatch(arg, -1) {
			name := m[1]
			if seen[name] {
				continue
			}

			seen[name] = true

			if v := s.vars.ReadLatest(name); v != nil {
				s.vars.QueueReader(node, v)
				s.reads[node.ID] = append(s.reads[node.ID], v)
			}
		}
	}
}

// queueVariableWrites pre-creates a Version for every NAME=value assignment
// on a VarAssign node, so concurrent readers submitted later can find (and
// block on) it before this node has actually run.
func (s *Scheduler) queueVariableWrites(node *graph.Node, cmd cmdtree.Node) {
	va, ok := cmd.(*cmdtree.VarAssign)
	if !ok {
		return
	}

	for _, a := range va.Simple.Assigns {
		s.writes[node.ID] = append(s.writes[node.ID], s.vars.CreateVersion(a.Name))
	}
}

func simpleOf(cmd cmdtree.Node) (*cmdtree.Simple, bool) {
	switch v := cmd.(type) {
	case *cmdtree.Simple:
		return v, true
	case *cmdtree.Background:
		return simpleOf(v.Inner)
	default:
		return nil, false
	}
}

// isLoopGraphNode implements graph.IsLoopNode: true if g belongs to a
// sentinel frontier node of a loop type.
func (s *Scheduler) isLoopGraphNode(g *graph.Node) bool {
	for fn, st := range s.sentinels {
		if fn.Graph == g {
			return st.kind.IsLoop()
		}
	}

	return false
}

// onNodeReady is graph.FrontierAdder: called with the lock held whenever a
// node's Unresolved count reaches zero. A plain command joins the frontier
// as dispatchable work; a compound starts its sentinel instead.
func (s *Scheduler) onNodeReady(node *graph.Node) {
	if t, ok := compoundType(node.Command); ok {
		s.startSentinel(node, t)

		return
	}

	fn := frontier.NewNode(node, frontier.TypeSimple, nil)
	s.dispatchable[node.ID] = fn
	s.frontier.Append(fn)
	s.cond.Broadcast()
}

// compoundType reports the expander.Type of cmd if it is a compound shape.
func compoundType(cmd cmdtree.Node) (expander.Type, bool) {
	switch cmd.(type) {
	case *cmdtree.And:
		return expander.TypeAnd, true
	case *cmdtree.Or:
		return expander.TypeOr, true
	case *cmdtree.If:
		return expander.TypeIf, true
	case *cmdtree.While:
		return expander.TypeWhile, true
	case *cmdtree.Until:
		return expander.TypeUntil, true
	case *cmdtree.For:
		return expander.TypeFor, true
	default:
		return 0, false
	}
}

// Pull blocks until a dispatchable node is available (or the frontier has
// drained and hit EOF, in which case it returns ok=false). Sentinel
// placeholders are never returned to a worker directly.
func (s *Scheduler) Pull(ctx context.Context) (Dispatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if ctx.Err() != nil {
			return Dispatch{}, false
		}

		for s.frontier.HasPending() {
			fn := s.frontier.Next()

			if s.frontier.IsEOFNode(fn) {
				// Nothing else was queued when EOF arrived: drop the marker
				// so the frontier reads as drained below.
				s.frontier.Remove(fn)
				s.cond.Broadcast()

				continue
			}

			if fn.Type != frontier.TypeSimple {
				continue
			}

			return Dispatch{Node: fn.Graph, Command: fn.Graph.Command}, true
		}

		if s.frontier.EOF() && s.frontier.Empty() {
			return Dispatch{}, false
		}

		s.cond.Wait()
	}
}

// Complete reports a dispatched node's outcome. It releases its dependents
// (or, for a break/continue directive, drives the cancellation engine),
// publishes any variable writes, and advances any sentinel the node belongs
// to.
func (s *Scheduler) Complete(node *graph.Node, c Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node.Flags.Has(graph.FlagCancelled) {
		s.logger.Debug("completion reported for a cancelled node", "node", node.ID)

		return schederr.ErrCancelledCompletion
	}

	for _, v := range s.reads[node.ID] {
		s.vars.ReleaseAccessor(v)
	}

	delete(s.reads, node.ID)

	if va, ok := node.Command.(*cmdtree.VarAssign); ok {
		versions := s.writes[node.ID]
		for i, a := range va.Simple.Assigns {
			if i >= len(versions) {
				break
			}

			for _, ready := range s.vars.Publish(versions[i], a.Value) {
				s.onNodeReadyIfSimple(ready)
			}
		}

		delete(s.writes, node.ID)
	}

	if c.Err != nil {
		s.errs = append(s.errs, fmt.Errorf("node %s: %w", node.ID, c.Err))
	}

	parentFn, inSentinel := node.Parent.(*frontier.Node)
	if inSentinel {
		if node.Flags.Has(graph.FlagTestTail) || node.Flags.Has(graph.FlagBodyTail) {
			parentFn.Status = c.Status
		}
	}

	s.removeDispatchable(node)
	graph.Remove(node, s.onCancelDirective, s.onNodeReadyIfSimple)
	delete(s.live, node.ID)

	if s.OnComplete != nil {
		s.OnComplete(node, c)
	}

	s.cond.Broadcast()

	return nil
}

// removeDispatchable unlinks node's frontier.Node wrapper, if onNodeReady
// ever gave it one. Idempotent: a node that never reached the frontier (or
// whose wrapper was already removed) is a no-op.
func (s *Scheduler) removeDispatchable(node *graph.Node) {
	fn, ok := s.dispatchable[node.ID]
	if !ok {
		return
	}

	s.frontier.Remove(fn)
	delete(s.dispatchable, node.ID)
}

// onNodeReadyIfSimple adapts graph.FrontierAdder for callers (Remove,
// Publish) that only ever hand back nodes graph.Add would also have placed
// directly; it is identical to onNodeReady but named separately at call
// sites for clarity.
func (s *Scheduler) onNodeReadyIfSimple(node *graph.Node) {
	s.onNodeReady(node)
}

// onCancelDirective is graph.CancelHook: node just completed and is itself a
// break/continue marker. It prunes every live node the directive targets,
// then runs the directive's own dependents-release as a normal completion
// would have (a break/continue still unblocks whatever was waiting on it).
func (s *Scheduler) onCancelDirective(node *graph.Node) {
	live := make([]*graph.Node, 0, len(s.live))
	for _, n := range s.live {
		live = append(live, n)
	}

	targets := cancel.Targets(node, live)
	cancel.Prune(targets, live, func(t *graph.Node) {
		s.removeDispatchable(t)
		graph.Remove(t, s.onCancelDirective, s.onNodeReadyIfSimple)
		delete(s.live, t.ID)
	})

	for _, d := range node.Dependents {
		d.Unresolved--

		if d.Unresolved == 0 {
			s.onNodeReadyIfSimple(d)
		}
	}
}

// VarResolver returns a lookup function suitable for internal/evaluator's
// Resolver: it reads a variable's latest published version directly from
// the shared vars.Table, which has its own lock independent of the
// scheduler's.
func (s *Scheduler) VarResolver() func(name string) (string, bool) {
	return func(name string) (string, bool) {
		v := s.vars.ReadLatest(name)
		if v == nil {
			return "", false
		}

		return v.Value()
	}
}

// Errs returns every error reported through Complete, in completion order.
func (s *Scheduler) Errs() []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]error(nil), s.errs...)
}
