// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package evaluator

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
)

// applyRedirects opens each redirect's target file and wires it to cmd's
// stdin/stdout, in order (later redirects of the same stream win, matching
// shell left-to-right evaluation).
func applyRedirects(cmd *exec.Cmd, redirects []cmdtree.Redirect) error {
	for _, r := range redirects {
		f, err := openRedirect(r)
		if err != nil {
			return fmt.Errorf("evaluator: redirect %q: %w", r.Name, err)
		}

		if r.Kind == cmdtree.RedirInput {
			cmd.Stdin = f
		} else {
			cmd.Stdout = f
		}
	}

	return nil
}

func openRedirect(r cmdtree.Redirect) (*os.File, error) {
	switch r.Kind {
	case cmdtree.RedirInput:
		return os.Open(r.Name)
	case cmdtree.RedirOutput, cmdtree.RedirClobber:
		return os.OpenFile(r.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	case cmdtree.RedirAppend:
		return os.OpenFile(r.Name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	default:
		return nil, fmt.Errorf("evaluator: unknown redirect kind %d", r.Kind)
	}
}
