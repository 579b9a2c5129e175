// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package frontier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-FFFFFF/parashell/internal/graph"
)

func TestAppendAndNext(t *testing.T) {
	f := New()
	a := NewNode(graph.New(nil, nil, 0, 0), TypeSimple, nil)
	b := NewNode(graph.New(nil, nil, 0, 0), TypeSimple, nil)

	f.Append(a)
	f.Append(b)

	assert.True(t, f.HasPending())
	assert.Same(t, a, f.Next())
	assert.Same(t, b, f.Next())
	assert.False(t, f.HasPending())
}

func TestRemoveMidListAdvancesCursor(t *testing.T) {
	f := New()
	a := NewNode(graph.New(nil, nil, 0, 0), TypeSimple, nil)
	b := NewNode(graph.New(nil, nil, 0, 0), TypeSimple, nil)
	c := NewNode(graph.New(nil, nil, 0, 0), TypeSimple, nil)

	f.Append(a)
	f.Append(b)
	f.Append(c)

	f.Remove(b)

	assert.Equal(t, []*Node{a, c}, f.FrontierNodes())
	assert.Same(t, a, f.Next())
	assert.Same(t, c, f.Next())
}

func TestRemoveRunNextCursorAdvances(t *testing.T) {
	f := New()
	a := NewNode(graph.New(nil, nil, 0, 0), TypeSimple, nil)
	b := NewNode(graph.New(nil, nil, 0, 0), TypeSimple, nil)

	f.Append(a)
	f.Append(b)

	f.Remove(a)

	assert.Same(t, b, f.Next())
}

func TestSetEOFOnEmptyFrontierSynthesizesNode(t *testing.T) {
	f := New()

	assert.False(t, f.EOF())
	f.SetEOF()

	assert.True(t, f.EOF())
	assert.False(t, f.Empty())

	node := f.Next()
	require.NotNil(t, node)
	assert.True(t, f.IsEOFNode(node))
}

func TestSetEOFOnNonEmptyFrontierDoesNotSynthesize(t *testing.T) {
	f := New()
	a := NewNode(graph.New(nil, nil, 0, 0), TypeSimple, nil)
	f.Append(a)

	f.SetEOF()

	node := f.Next()
	require.NotNil(t, node)
	assert.False(t, f.IsEOFNode(node))
}

func TestReleaseFiresOnlyOnce(t *testing.T) {
	calls := 0
	n := NewNode(graph.New(nil, nil, 0, 0), TypeIf, func(*Node) { calls++ })

	n.Release()
	n.Release()

	assert.Equal(t, 1, calls)
}

func TestActiveCounting(t *testing.T) {
	n := NewNode(graph.New(nil, nil, 0, 0), TypeAnd, nil)

	n.IncActive()
	n.IncActive()
	assert.Equal(t, 1, n.DecActive())
	assert.Equal(t, 0, n.DecActive())
}

func TestTypeIsLoop(t *testing.T) {
	tests := []struct {
		name string
		t    Type
		want bool
	}{
		{"while is a loop", TypeWhile, true},
		{"until is a loop", TypeUntil, true},
		{"for is a loop", TypeFor, true},
		{"if is not a loop", TypeIf, false},
		{"simple is not a loop", TypeSimple, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.t.IsLoop())
		})
	}
}
