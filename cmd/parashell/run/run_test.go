// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
	"github.com/matt-FFFFFF/parashell/internal/graph"
	"github.com/matt-FFFFFF/parashell/internal/resulttree"
	"github.com/matt-FFFFFF/parashell/internal/scheduler"
)

func TestLabelOfSimpleUsesFirstArg(t *testing.T) {
	cmd := &cmdtree.Simple{Args: []string{"echo", "hi"}}

	assert.Equal(t, "echo", labelOf(cmd))
}

func TestLabelOfNonSimpleUsesTypeName(t *testing.T) {
	cmd := &cmdtree.If{}

	assert.Equal(t, "*cmdtree.If", labelOf(cmd))
}

func TestResultCollectorClassifiesSuccess(t *testing.T) {
	c := &resultCollector{}
	node := graph.New(&cmdtree.Simple{Args: []string{"true"}}, nil, 0, 0)

	c.onComplete(node, scheduler.Completion{Status: 0})

	assert.Len(t, c.results, 1)
	assert.Equal(t, resulttree.StatusSuccess, c.results[0].Status)
}

func TestResultCollectorClassifiesError(t *testing.T) {
	c := &resultCollector{}
	node := graph.New(&cmdtree.Simple{Args: []string{"false"}}, nil, 0, 0)

	c.onComplete(node, scheduler.Completion{Status: 1})

	assert.Len(t, c.results, 1)
	assert.Equal(t, resulttree.StatusError, c.results[0].Status)
}

func TestResultCollectorClassifiesErrFieldEvenWithZeroStatus(t *testing.T) {
	c := &resultCollector{}
	node := graph.New(&cmdtree.Simple{Args: []string{"cmd"}}, nil, 0, 0)

	c.onComplete(node, scheduler.Completion{Status: 0, Err: fmt.Errorf("boom")})

	assert.Equal(t, resulttree.StatusError, c.results[0].Status)
}

func TestResultCollectorClassifiesCancelled(t *testing.T) {
	c := &resultCollector{}
	node := graph.New(&cmdtree.Simple{Args: []string{"true"}}, nil, 0, 0)
	node.Flags |= graph.FlagCancelled

	c.onComplete(node, scheduler.Completion{Status: 0})

	assert.Equal(t, resulttree.StatusCancelled, c.results[0].Status)
}

func TestResultCollectorAppendsInCompletionOrder(t *testing.T) {
	c := &resultCollector{}

	c.onComplete(graph.New(&cmdtree.Simple{Args: []string{"a"}}, nil, 0, 0), scheduler.Completion{})
	c.onComplete(graph.New(&cmdtree.Simple{Args: []string{"b"}}, nil, 0, 0), scheduler.Completion{})

	assert.Equal(t, "a", c.results[0].Label)
	assert.Equal(t, "b", c.results[1].Label)
}
