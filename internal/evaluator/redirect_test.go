// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package evaluator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
)

func TestEvaluateOutputRedirectWritesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	e := New(nil)
	cmd := &cmdtree.Simple{
		Args:      []string{"echo", "-n", "hello"},
		Redirects: []cmdtree.Redirect{{Kind: cmdtree.RedirOutput, Name: out}},
	}

	result := e.Evaluate(context.Background(), cmd)
	require.Equal(t, 0, result.Status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestEvaluateInputRedirectMissingFileErrors(t *testing.T) {
	dir := t.TempDir()

	e := New(nil)
	cmd := &cmdtree.Simple{
		Args:      []string{"cat"},
		Redirects: []cmdtree.Redirect{{Kind: cmdtree.RedirInput, Name: filepath.Join(dir, "missing.txt")}},
	}

	result := e.Evaluate(context.Background(), cmd)

	assert.Equal(t, 1, result.Status)
	assert.Error(t, result.Err)
}

func TestEvaluateAppendRedirectAppendsToExistingFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(out, []byte("first-"), 0o644))

	e := New(nil)
	cmd := &cmdtree.Simple{
		Args:      []string{"echo", "-n", "second"},
		Redirects: []cmdtree.Redirect{{Kind: cmdtree.RedirAppend, Name: out}},
	}

	result := e.Evaluate(context.Background(), cmd)
	require.Equal(t, 0, result.Status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "first-second", string(data))
}
