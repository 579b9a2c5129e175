// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cancel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-FFFFFF/parashell/internal/access"
	"github.com/matt-FFFFFF/parashell/internal/graph"
)

func TestTargetsNonDirectiveReturnsNil(t *testing.T) {
	node := graph.New(nil, nil, 0, 0)

	assert.Nil(t, Targets(node, nil))
}

func TestTargetsExcludesDirectiveAndCancelled(t *testing.T) {
	directive := graph.New(nil, access.AccessSet{{Kind: access.Break, TargetNest: 1}}, 1, 2)

	alreadyCancelled := graph.New(nil, nil, 1, 3)
	alreadyCancelled.Flags |= graph.FlagCancelled

	hit := graph.New(nil, nil, 1, 3)

	live := []*graph.Node{directive, alreadyCancelled, hit}

	got := Targets(directive, live)

	require.Len(t, got, 1)
	assert.Same(t, hit, got[0])
}

func TestTargetsContinueOnlyMatchesSameIteration(t *testing.T) {
	directive := graph.New(nil, access.AccessSet{{Kind: access.Continue, TargetNest: 1}}, 1, 2)

	sameIter := graph.New(nil, nil, 1, 2)
	laterIter := graph.New(nil, nil, 1, 3)

	live := []*graph.Node{directive, sameIter, laterIter}

	got := Targets(directive, live)

	require.Len(t, got, 1)
	assert.Same(t, sameIter, got[0])
}

func TestPruneMarksCancelledAndDetachesDependents(t *testing.T) {
	upstream := graph.New(nil, nil, 0, 0)
	target := graph.New(nil, access.AccessSet{{Kind: access.Write, Name: "x"}}, 1, 0)
	upstream.Dependents = []*graph.Node{target}

	var removed []*graph.Node
	Prune([]*graph.Node{target}, []*graph.Node{upstream, target}, func(n *graph.Node) {
		removed = append(removed, n)
	})

	assert.True(t, target.Flags.Has(graph.FlagCancelled))
	assert.Nil(t, target.Access)
	assert.Empty(t, upstream.Dependents)
	assert.Equal(t, []*graph.Node{target}, removed)
}

func TestPruneSkipsAlreadyCancelled(t *testing.T) {
	target := graph.New(nil, nil, 0, 0)
	target.Flags |= graph.FlagCancelled

	var calls int
	Prune([]*graph.Node{target}, []*graph.Node{target}, func(*graph.Node) { calls++ })

	assert.Equal(t, 0, calls)
}
