// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
)

func TestLoadSimpleCommand(t *testing.T) {
	data := []byte(`
name: greet
commands:
  - type: simple
    args: ["echo", "hi"]
`)

	node, err := Load(data)
	require.NoError(t, err)

	simple, ok := node.(*cmdtree.Simple)
	require.True(t, ok)
	assert.Equal(t, []string{"echo", "hi"}, simple.Args)
}

func TestLoadJoinsMultipleCommandsWithSemi(t *testing.T) {
	data := []byte(`
name: two
commands:
  - type: simple
    args: ["a"]
  - type: simple
    args: ["b"]
`)

	node, err := Load(data)
	require.NoError(t, err)

	semi, ok := node.(*cmdtree.Semi)
	require.True(t, ok)
	assert.IsType(t, &cmdtree.Simple{}, semi.A)
	assert.IsType(t, &cmdtree.Simple{}, semi.B)
}

func TestLoadIfWithElse(t *testing.T) {
	data := []byte(`
name: cond
commands:
  - type: if
    test:
      type: simple
      args: ["test", "-f", "x"]
    then:
      type: simple
      args: ["echo", "yes"]
    else:
      type: simple
      args: ["echo", "no"]
`)

	node, err := Load(data)
	require.NoError(t, err)

	ifNode, ok := node.(*cmdtree.If)
	require.True(t, ok)
	require.NotNil(t, ifNode.Else)
}

func TestLoadForRequiresVar(t *testing.T) {
	data := []byte(`
name: loop
commands:
  - type: for
    args: ["1", "2"]
    body:
      type: simple
      args: ["echo", "x"]
`)

	_, err := Load(data)
	require.ErrorIs(t, err, ErrMissingField)
}

func TestLoadForWithVar(t *testing.T) {
	data := []byte(`
name: loop
commands:
  - type: for
    var: i
    args: ["1", "2"]
    body:
      type: simple
      args: ["echo", "$i"]
`)

	node, err := Load(data)
	require.NoError(t, err)

	forNode, ok := node.(*cmdtree.For)
	require.True(t, ok)
	assert.Equal(t, "i", forNode.Var)
	assert.Equal(t, []string{"1", "2"}, forNode.Args)
}

func TestLoadUnknownType(t *testing.T) {
	data := []byte(`
name: bad
commands:
  - type: nonsense
`)

	_, err := Load(data)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestLoadNoCommands(t *testing.T) {
	data := []byte(`name: empty`)

	_, err := Load(data)
	require.ErrorIs(t, err, ErrNoCommands)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load([]byte("not: valid: yaml: ["))
	require.ErrorIs(t, err, ErrInvalidYAML)
}

func TestLoadRedirects(t *testing.T) {
	data := []byte(`
name: redir
commands:
  - type: simple
    args: ["cat"]
    redirects:
      - kind: input
        name: in.txt
      - kind: append
        name: out.txt
`)

	node, err := Load(data)
	require.NoError(t, err)

	simple, ok := node.(*cmdtree.Simple)
	require.True(t, ok)
	require.Len(t, simple.Redirects, 2)
	assert.Equal(t, cmdtree.RedirInput, simple.Redirects[0].Kind)
	assert.Equal(t, cmdtree.RedirAppend, simple.Redirects[1].Kind)
}
