// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package evaluator runs a single dispatched command. It is the external
// collaborator the scheduler core never constructs itself: Evaluator takes
// a CommandTree leaf and reports back an exit status, nothing more.
package evaluator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
)

// Result is what a completed evaluation reports back to the scheduler.
type Result struct {
	Status int
	Stdout []byte
	Stderr []byte
	Err    error
}

// Evaluator runs one dispatched CommandTree node to completion.
type Evaluator interface {
	Evaluate(ctx context.Context, cmd cmdtree.Node) Result
}

// varRefPattern substitutes $name tokens using the resolver passed to OS.
var varRefPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// Resolver looks up a variable's current value. internal/scheduler wires
// this to its vars.Table so substitution sees only versions already
// guaranteed published (queue_reader having run at submission time).
type Resolver func(name string) (string, bool)

// OS is the concrete os/exec-backed Evaluator.
type OS struct {
	Resolve Resolver
}

// New constructs an OS evaluator backed by resolve for $name substitution.
func New(resolve Resolver) *OS {
	return &OS{Resolve: resolve}
}

// Evaluate runs cmd, which must already have been reduced to a leaf the
// evaluator understands directly: Simple, VarAssign, Background, Not, or
// Break/Continue (a no-op that always succeeds; the scheduler core does the
// actual cancellation work).
func (e *OS) Evaluate(ctx context.Context, cmd cmdtree.Node) Result {
	switch v := cmd.(type) {
	case *cmdtree.Simple:
		return e.runSimple(ctx, v)

	case *cmdtree.Background:
		return e.Evaluate(ctx, v.Inner)

	case *cmdtree.VarAssign:
		return Result{Status: 0}

	case *cmdtree.Not:
		inner := e.Evaluate(ctx, v.Inner)
		if inner.Status == 0 {
			inner.Status = 1
		} else {
			inner.Status = 0
		}

		return inner

	case *cmdtree.Break, *cmdtree.Continue:
		return Result{Status: 0}

	default:
		return Result{Status: 1, Err: fmt.Errorf("evaluator: unsupported leaf node %T", cmd)}
	}
}

func (e *OS) runSimple(ctx context.Context, s *cmdtree.Simple) Result {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = e.substitute(a)
	}

	if len(args) == 0 {
		return Result{Status: 0}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := applyRedirects(cmd, s.Redirects); err != nil {
		return Result{Status: 1, Err: err}
	}

	err := cmd.Run()

	status := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		status = exitErr.ExitCode()
		err = nil
	} else if err != nil {
		status = 1
	}

	return Result{Status: status, Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Err: err}
}

// substitute replaces every $name token in arg with its resolved value
// (empty string if unknown), the only expansion form the scheduler core
// performs.
func (e *OS) substitute(arg string) string {
	if e.Resolve == nil {
		return arg
	}

	return varRefPattern.ReplaceAllStringFunc(arg, func(tok string) string {
		name := tok[1:]
		if v, ok := e.Resolve(name); ok {
			return v
		}

		return ""
	})
}
