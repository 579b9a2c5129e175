// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package resultfmt prints a resulttree.Results tree for the parashell run
// command's report: an indented, colorized, glyph-prefixed walk of the
// result tree.
package resultfmt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/parashell/internal/color"
	"github.com/matt-FFFFFF/parashell/internal/resulttree"
)

// Options controls what is included in the printed tree.
type Options struct {
	IncludeStdOut      bool
	IncludeStdErr      bool
	ShowSuccessDetails bool
}

// DefaultOptions reports errors only: no stdout, no successful-command detail.
func DefaultOptions() *Options {
	return &Options{IncludeStdErr: true}
}

// Write renders results to w.
func Write(w io.Writer, results resulttree.Results, options *Options) error {
	if options == nil {
		options = DefaultOptions()
	}

	for _, r := range results {
		if err := writeWithIndent(w, r, "", options); err != nil {
			return err
		}
	}

	return nil
}

func writeWithIndent(w io.Writer, r *resulttree.Result, indent string, options *Options) error {
	statusStr, labelPrefix := statusGlyph(r.Status)

	label := r.Label
	if label == "" {
		label = "[unnamed]"
	}

	fmt.Fprintf(w, "%s%s %s%s%s", indent, statusStr, labelPrefix, label, color.ControlString(color.Reset)) //nolint:errcheck

	if r.ExitCode != 0 {
		fmt.Fprintf(w, " (exit code: %d)", r.ExitCode) //nolint:errcheck
	}

	fmt.Fprintln(w) //nolint:errcheck

	if r.Error != nil && !errors.Is(r.Error, resulttree.ErrChildrenHasError) {
		errColor := color.FgRed
		if r.Status == resulttree.StatusCancelled {
			errColor = color.FgYellow
		}

		fmt.Fprintf(w, "%s  %s %s%s\n", indent, color.ColorizeNoReset("-> Error:", errColor), r.Error.Error(), color.ControlString(color.Reset)) //nolint:errcheck
	}

	showDetails := (r.Status == resulttree.StatusError || options.ShowSuccessDetails) && len(r.Children) == 0

	if showDetails && options.IncludeStdOut && len(r.Stdout) > 0 {
		fmt.Fprintf(w, "%s  -> Output:\n", indent) //nolint:errcheck
		fmt.Fprint(w, indentLines(r.Stdout, indent+"     "))
	}

	if showDetails && options.IncludeStdErr && len(r.Stderr) > 0 {
		fmt.Fprintf(w, "%s  %s\n", indent, color.Colorize("-> Error Output:", color.FgHiRed)) //nolint:errcheck
		fmt.Fprint(w, indentLines(r.Stderr, indent+"     "))
	}

	childIndent := indent + "  "
	for _, child := range r.Children {
		if err := writeWithIndent(w, child, childIndent, options); err != nil {
			return err
		}
	}

	return nil
}

func statusGlyph(s resulttree.Status) (glyph, prefix string) {
	switch s {
	case resulttree.StatusCancelled:
		return color.Colorize("~", color.FgYellow), color.ControlString(color.Bold, color.FgYellow)
	case resulttree.StatusError:
		return color.Colorize("x", color.FgRed), color.ControlString(color.Bold, color.FgRed)
	case resulttree.StatusSuccess:
		return color.Colorize("v", color.FgGreen), color.ControlString(color.Bold, color.FgGreen)
	default:
		return color.Colorize("?", color.FgWhite), ""
	}
}

func indentLines(output []byte, indent string) string {
	var sb strings.Builder

	lines := strings.Split(string(output), "\n")
	sb.Grow(len(output) + len(lines)*len(indent))

	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}
