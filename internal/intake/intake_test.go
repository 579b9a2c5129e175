// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
)

func TestFlattenEOF(t *testing.T) {
	got := Flatten(&cmdtree.EOF{})

	require.Len(t, got, 1)
	assert.True(t, got[0].EOF)
}

func TestFlattenSemiSplitsTopLevel(t *testing.T) {
	a := &cmdtree.Simple{Args: []string{"a"}}
	b := &cmdtree.Simple{Args: []string{"b"}}

	got := Flatten(&cmdtree.Semi{A: a, B: b})

	require.Len(t, got, 2)
	assert.IsType(t, &cmdtree.Background{}, got[0].Node)
	assert.IsType(t, &cmdtree.Background{}, got[1].Node)
}

func TestFlattenWrapsSimpleInBackground(t *testing.T) {
	s := &cmdtree.Simple{Args: []string{"echo", "hi"}}

	got := Flatten(s)

	require.Len(t, got, 1)

	bg, ok := got[0].Node.(*cmdtree.Background)
	require.True(t, ok)
	assert.Same(t, s, bg.Inner)
}

func TestFlattenAssignOnlyBecomesVarAssign(t *testing.T) {
	s := &cmdtree.Simple{Assigns: []cmdtree.Assign{{Name: "x", Value: "1"}}}

	got := Flatten(s)

	require.Len(t, got, 1)

	va, ok := got[0].Node.(*cmdtree.VarAssign)
	require.True(t, ok)
	assert.Same(t, s, va.Simple)
}

func TestFlattenBuiltinPassesThroughUnwrapped(t *testing.T) {
	s := &cmdtree.Simple{Args: []string{"cd", "/tmp"}}

	got := Flatten(s)

	require.Len(t, got, 1)
	assert.Same(t, s, got[0].Node)
}

func TestFlattenNotWrapsClassifiedInner(t *testing.T) {
	s := &cmdtree.Simple{Args: []string{"grep", "x"}}

	got := Flatten(&cmdtree.Not{Inner: s})

	require.Len(t, got, 1)

	not, ok := got[0].Node.(*cmdtree.Not)
	require.True(t, ok)
	assert.IsType(t, &cmdtree.Background{}, not.Inner)
}

func TestIsBuiltin(t *testing.T) {
	tests := []struct {
		name string
		node cmdtree.Node
		want bool
	}{
		{name: "cd is a builtin", node: &cmdtree.Simple{Args: []string{"cd", "/"}}, want: true},
		{name: "echo is not a builtin", node: &cmdtree.Simple{Args: []string{"echo"}}, want: false},
		{name: "non-simple is not a builtin", node: &cmdtree.Semi{}, want: false},
		{name: "empty args is not a builtin", node: &cmdtree.Simple{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := IsBuiltin(tt.node)
			assert.Equal(t, tt.want, got)
		})
	}
}
