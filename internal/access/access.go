// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package access implements the static read/write analysis of a CommandTree
// (C1): for any node it derives the AccessSet used by internal/graph to
// decide which commands conflict.
package access

import (
	"fmt"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
)

// Kind is the access kind of a single Access entry.
type Kind int

const (
	// Read is a read of a file or variable.
	Read Kind = iota
	// Write is a write of a file or variable.
	Write
	// Continue is a loop-scoped "continue" marker.
	Continue
	// Break is a loop-scoped "break" marker.
	Break
)

// Access is a single (kind, name) entry, or for Continue/Break a
// (kind, targetNest) entry with no name.
type Access struct {
	Kind Kind
	Name string // path or "$"+varname; empty for Continue/Break

	// TargetNest is only meaningful for Continue/Break: the effective
	// loop-nest depth the directive targets.
	TargetNest int
}

// AccessSet is the ordered sequence of accesses a command performs.
type AccessSet []Access

// VarName returns the pseudo-path used for a variable access, unifying
// file-scheduling and variable-scheduling through one conflict check.
func VarName(name string) string {
	return "$" + name
}

// ErrMalformedTree is returned when a CommandTree node is missing a
// required child.
var ErrMalformedTree = fmt.Errorf("cmdtree: malformed node")

// Analyze walks a CommandTree and returns its AccessSet.
func Analyze(n cmdtree.Node) (AccessSet, error) {
	return analyze(n, 0)
}

// analyze recurses with the current loop-nest depth, incremented on entry to
// a loop body.
func analyze(n cmdtree.Node, nest int) (AccessSet, error) {
	switch v := n.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil node", ErrMalformedTree)

	case *cmdtree.Simple:
		return analyzeSimple(v), nil

	case *cmdtree.VarAssign:
		if v.Simple == nil {
			return nil, fmt.Errorf("%w: VarAssign with nil Simple", ErrMalformedTree)
		}

		set := analyzeSimple(v.Simple)
		for _, a := range v.Simple.Assigns {
			set = append(set, Access{Kind: Write, Name: VarName(a.Name)})
		}

		return set, nil

	case *cmdtree.Background:
		return analyze(v.Inner, nest)

	case *cmdtree.Semi:
		return union(v.A, v.B, nest)

	case *cmdtree.And:
		return union(v.A, v.B, nest)

	case *cmdtree.Or:
		return union(v.A, v.B, nest)

	case *cmdtree.Not:
		return analyze(v.Inner, nest)

	case *cmdtree.If:
		thenSet, err := analyze(v.Then, nest)
		if err != nil {
			return nil, err
		}

		testSet, err := analyze(v.Test, nest)
		if err != nil {
			return nil, err
		}

		set := append(AccessSet{}, testSet...)
		set = append(set, thenSet...)

		if v.Else != nil {
			elseSet, err := analyze(v.Else, nest)
			if err != nil {
				return nil, err
			}

			set = append(set, elseSet...)
		}

		return set, nil

	case *cmdtree.While:
		return loopAccess(v.Test, v.Body, nest)

	case *cmdtree.Until:
		return loopAccess(v.Test, v.Body, nest)

	case *cmdtree.For:
		bodySet, err := analyze(v.Body, nest+1)
		if err != nil {
			return nil, err
		}

		set := append(AccessSet{Access{Kind: Write, Name: VarName(v.Var)}}, bodySet...)

		return set, nil

	case *cmdtree.Pipe:
		var set AccessSet

		for _, member := range v.List {
			memberSet, err := analyze(member, nest)
			if err != nil {
				return nil, err
			}

			set = append(set, memberSet...)
		}

		return set, nil

	case *cmdtree.Break:
		levels := v.Levels
		if levels == 0 {
			levels = 1
		}

		return AccessSet{{Kind: Break, TargetNest: levels}}, nil

	case *cmdtree.Continue:
		levels := v.Levels
		if levels == 0 {
			levels = 1
		}

		return AccessSet{{Kind: Continue, TargetNest: levels}}, nil

	case *cmdtree.Redir:
		set := AccessSet{redirAccess(v.Redirect)}

		if v.Next != nil {
			nextSet, err := analyze(v.Next, nest)
			if err != nil {
				return nil, err
			}

			set = append(set, nextSet...)
		}

		return set, nil

	case *cmdtree.EOF:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unknown node type %T", ErrMalformedTree, n)
	}
}

func union(a, b cmdtree.Node, nest int) (AccessSet, error) {
	aSet, err := analyze(a, nest)
	if err != nil {
		return nil, err
	}

	bSet, err := analyze(b, nest)
	if err != nil {
		return nil, err
	}

	return append(append(AccessSet{}, aSet...), bSet...), nil
}

func loopAccess(test, body cmdtree.Node, nest int) (AccessSet, error) {
	testSet, err := analyze(test, nest)
	if err != nil {
		return nil, err
	}

	bodySet, err := analyze(body, nest+1)
	if err != nil {
		return nil, err
	}

	return append(append(AccessSet{}, testSet...), bodySet...), nil
}

func analyzeSimple(s *cmdtree.Simple) AccessSet {
	var set AccessSet

	for _, r := range s.Redirects {
		set = append(set, redirAccess(r))
	}

	return set
}

func redirAccess(r cmdtree.Redirect) Access {
	if r.Kind.IsWrite() {
		return Access{Kind: Write, Name: r.Name}
	}

	return Access{Kind: Read, Name: r.Name}
}

// Conflict classifies the relationship between two Access entries.
type Conflict int

const (
	// NoClash means the two entries don't interact.
	NoClash Conflict = iota
	// WriteCollision means at least one entry is a Write to the same name.
	WriteCollision
	// ConcurrentRead means both entries read the same name.
	ConcurrentRead
)

// EntryConflict classifies the relationship between two individual Access
// entries of the same (kind-compatible) shape. File/variable entries
// conflict by name; Continue/Break entries conflict by nest/iteration,
// evaluated by the caller (internal/cancel), not here.
func EntryConflict(a, b Access) Conflict {
	if a.Kind == Continue || a.Kind == Break || b.Kind == Continue || b.Kind == Break {
		return NoClash // handled by internal/cancel, not the file/var conflict predicate
	}

	if a.Name != b.Name {
		return NoClash
	}

	if a.Kind == Write || b.Kind == Write {
		return WriteCollision
	}

	return ConcurrentRead
}

// BreakContinueHits is the pruning predicate for a single Continue/Break
// entry b: a candidate is hit when its nest is at or below the directive's
// target nest, and (for Continue) its iteration equals the directive's own
// iteration, or (for Break) its iteration is at or past it.
// candidateNest/candidateIter describe the candidate node being tested;
// directiveIter is the GraphNode.Iteration of the node b belongs to.
func BreakContinueHits(b Access, candidateNest, candidateIter, directiveIter int) bool {
	if b.Kind != Continue && b.Kind != Break {
		return false
	}

	if candidateNest < b.TargetNest {
		return false
	}

	if b.Kind == Continue {
		return candidateIter == directiveIter
	}

	return candidateIter >= directiveIter
}

// SetConflict reports the strongest conflict between any pair of entries
// across two AccessSets, restricted to file/variable (Read/Write) entries.
func SetConflict(a, b AccessSet) Conflict {
	strongest := NoClash

	for _, ea := range a {
		if ea.Kind != Read && ea.Kind != Write {
			continue
		}

		for _, eb := range b {
			if eb.Kind != Read && eb.Kind != Write {
				continue
			}

			switch EntryConflict(ea, eb) {
			case WriteCollision:
				return WriteCollision
			case ConcurrentRead:
				strongest = ConcurrentRead
			case NoClash:
			}
		}
	}

	return strongest
}
