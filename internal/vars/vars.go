// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package vars implements the variable-versioning layer (C5): it lets later
// readers of a variable block on the specific earlier writer they depend on,
// decoupling variable reads from any particular physical assignment command.
package vars

import (
	"sync"

	"github.com/matt-FFFFFF/parashell/internal/graph"
)

// Version is a single write's slot in a variable's version history.
type Version struct {
	varName string
	value   *string // nil until the writer publishes
	done    bool

	accessors int
	waiters   []*graph.Node

	prev, next *Version
}

// Value returns the published value and whether it has been published yet.
func (v *Version) Value() (string, bool) {
	if v.value == nil {
		return "", false
	}

	return *v.value, true
}

// variable is the version history for one variable name.
type variable struct {
	name  string
	head  *Version // oldest retained version
	tail  *Version // newest version (read_latest target)
}

// Table is the VariableTable: a map from variable name to its Variable
// entry. Table is safe for concurrent use; internal/scheduler protects
// higher-level invariants with its own lock, but readers/writers of the
// table itself (the evaluator, which runs outside the scheduler lock)
// need their own synchronization.
type Table struct {
	mu   sync.Mutex
	vars map[string]*variable
}

// NewTable constructs an empty VariableTable.
func NewTable() *Table {
	return &Table{vars: make(map[string]*variable)}
}

// CreateVersion appends a new empty version to name's version list,
// creating the variable entry if absent.
func (t *Table) CreateVersion(name string) *Version {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.vars[name]
	if !ok {
		v = &variable{name: name}
		t.vars[name] = v
	}

	ver := &Version{varName: name, prev: v.tail}

	if v.tail != nil {
		v.tail.next = ver
	} else {
		v.head = ver
	}

	v.tail = ver

	return ver
}

// ReadLatest returns the tail of name's version list, or nil if the
// variable has never been assigned.
func (t *Table) ReadLatest(name string) *Version {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.vars[name]
	if !ok {
		return nil
	}

	return v.tail
}

// QueueReader registers reader as an accessor of version. If the version's
// value isn't set yet, reader is added to its waiters and reader's
// Unresolved count is incremented by one; regardless, the version's
// accessor count is incremented.
func (t *Table) QueueReader(reader *graph.Node, version *Version) {
	t.mu.Lock()
	defer t.mu.Unlock()

	version.accessors++

	if !version.done {
		version.waiters = append(version.waiters, reader)
		reader.Unresolved++
	}
}

// Publish sets version's value and releases every queued waiter, returning
// the waiters whose Unresolved count dropped to zero (the caller is
// responsible for placing those on the frontier, since vars doesn't import
// frontier to avoid a cycle).
func (t *Table) Publish(version *Version, value string) []*graph.Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	version.value = &value
	version.done = true

	ready := make([]*graph.Node, 0, len(version.waiters))

	for _, w := range version.waiters {
		w.Unresolved--

		if w.Unresolved == 0 {
			ready = append(ready, w)
		}
	}

	version.waiters = nil
	t.reclaimLocked(version)

	return ready
}

// ReleaseAccessor decrements version's accessor count. internal/scheduler
// calls it from Complete once the reading node has run; a node pruned by
// cancellation does not release its reads. It triggers reclamation: once
// accessors == 0 and a newer version exists, the version may be dropped.
func (t *Table) ReleaseAccessor(version *Version) {
	t.mu.Lock()
	defer t.mu.Unlock()

	version.accessors--
	t.reclaimLocked(version)
}

// reclaimLocked drops version from its variable's version list once
// accessors == 0 and a newer version exists. Must be called with t.mu held.
func (t *Table) reclaimLocked(version *Version) {
	if version.accessors > 0 || version.next == nil {
		return
	}

	if version.prev != nil {
		version.prev.next = version.next
	} else {
		if v, ok := t.vars[version.varName]; ok {
			v.head = version.next
		}
	}

	version.next.prev = version.prev
}
