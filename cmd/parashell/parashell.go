// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package parashell contains the command-line interface (CLI) for the module.
package parashell

import (
	"os"

	"github.com/urfave/cli/v3"

	rootver "github.com/matt-FFFFFF/parashell"
	"github.com/matt-FFFFFF/parashell/cmd/parashell/run"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "parashell",
	Version:   rootver.Version,
	Description: `parashell runs a YAML-described shell command tree against a
parallel scheduler: independent commands run concurrently, commands touching
the same file or variable serialize automatically, and if/while/until/for/break
/continue expand as the tree runs rather than being pre-planned.`,
	Usage:     "parashell run myworkflow.yaml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
