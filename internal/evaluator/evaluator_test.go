// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
)

func TestSubstituteReplacesKnownVariable(t *testing.T) {
	e := New(func(name string) (string, bool) {
		if name == "x" {
			return "value", true
		}

		return "", false
	})

	assert.Equal(t, "value", e.substitute("$x"))
	assert.Equal(t, "prefix-value-suffix", e.substitute("prefix-$x-suffix"))
}

func TestSubstituteUnknownVariableBecomesEmpty(t *testing.T) {
	e := New(func(string) (string, bool) { return "", false })

	assert.Equal(t, "", e.substitute("$missing"))
}

func TestSubstituteNilResolverPassesThrough(t *testing.T) {
	e := New(nil)

	assert.Equal(t, "$x", e.substitute("$x"))
}

func TestEvaluateSimpleSuccess(t *testing.T) {
	e := New(nil)
	cmd := &cmdtree.Simple{Args: []string{"true"}}

	result := e.Evaluate(context.Background(), cmd)

	assert.Equal(t, 0, result.Status)
	assert.NoError(t, result.Err)
}

func TestEvaluateSimpleFailureExitCode(t *testing.T) {
	e := New(nil)
	cmd := &cmdtree.Simple{Args: []string{"false"}}

	result := e.Evaluate(context.Background(), cmd)

	assert.Equal(t, 1, result.Status)
	assert.NoError(t, result.Err)
}

func TestEvaluateSimpleCapturesStdout(t *testing.T) {
	e := New(nil)
	cmd := &cmdtree.Simple{Args: []string{"echo", "-n", "hello"}}

	result := e.Evaluate(context.Background(), cmd)

	assert.Equal(t, "hello", string(result.Stdout))
}

func TestEvaluateSubstitutesVarsInArgs(t *testing.T) {
	e := New(func(name string) (string, bool) {
		if name == "greeting" {
			return "hello", true
		}

		return "", false
	})
	cmd := &cmdtree.Simple{Args: []string{"echo", "-n", "$greeting"}}

	result := e.Evaluate(context.Background(), cmd)

	assert.Equal(t, "hello", string(result.Stdout))
}

func TestEvaluateEmptyArgsIsNoOp(t *testing.T) {
	e := New(nil)

	result := e.Evaluate(context.Background(), &cmdtree.Simple{})

	assert.Equal(t, 0, result.Status)
}

func TestEvaluateBackgroundDelegatesToInner(t *testing.T) {
	e := New(nil)
	cmd := &cmdtree.Background{Inner: &cmdtree.Simple{Args: []string{"true"}}}

	result := e.Evaluate(context.Background(), cmd)

	assert.Equal(t, 0, result.Status)
}

func TestEvaluateVarAssignIsNoOp(t *testing.T) {
	e := New(nil)

	result := e.Evaluate(context.Background(), &cmdtree.VarAssign{})

	assert.Equal(t, 0, result.Status)
}

func TestEvaluateNotInvertsStatus(t *testing.T) {
	e := New(nil)

	success := e.Evaluate(context.Background(), &cmdtree.Not{Inner: &cmdtree.Simple{Args: []string{"true"}}})
	assert.Equal(t, 1, success.Status)

	failure := e.Evaluate(context.Background(), &cmdtree.Not{Inner: &cmdtree.Simple{Args: []string{"false"}}})
	assert.Equal(t, 0, failure.Status)
}

func TestEvaluateBreakContinueAreNoOps(t *testing.T) {
	e := New(nil)

	assert.Equal(t, 0, e.Evaluate(context.Background(), &cmdtree.Break{}).Status)
	assert.Equal(t, 0, e.Evaluate(context.Background(), &cmdtree.Continue{}).Status)
}

func TestEvaluateUnsupportedLeafReturnsError(t *testing.T) {
	e := New(nil)

	result := e.Evaluate(context.Background(), &cmdtree.Semi{})

	assert.Equal(t, 1, result.Status)
	require.Error(t, result.Err)
}
