// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
	"github.com/matt-FFFFFF/parashell/internal/evaluator"
	"github.com/matt-FFFFFF/parashell/internal/graph"
	"github.com/matt-FFFFFF/parashell/internal/intake"
	"github.com/matt-FFFFFF/parashell/internal/resultfmt"
	"github.com/matt-FFFFFF/parashell/internal/resulttree"
	"github.com/matt-FFFFFF/parashell/internal/scheduler"
	"github.com/matt-FFFFFF/parashell/internal/workflow"
)

const (
	fileArg                  = "file"
	workersFlag              = "workers"
	outputStdErrFlag         = "output-stderr"
	outputStdOutFlag         = "output-stdout"
	outputSuccessDetailsFlag = "output-success-details"
)

var (
	// ErrReadFile is returned when the workflow file cannot be read.
	ErrReadFile = fmt.Errorf("failed to read file")
	// ErrBuildWorkflow is returned when the command tree cannot be built from the YAML file.
	ErrBuildWorkflow = fmt.Errorf("failed to build workflow")
)

// RunCmd runs a command tree defined in a YAML workflow file.
var RunCmd = &cli.Command{
	Name:        "run",
	Description: "Run a command tree defined in a YAML workflow file.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      fileArg,
			UsageText: "YAMLFILE",
			Config:    cli.StringConfig{TrimSpace: true},
		},
	},
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:        workersFlag,
			Usage:       "Number of worker goroutines pulling from the frontier",
			DefaultText: "NumCPU",
		},
		&cli.BoolFlag{
			Name:        outputSuccessDetailsFlag,
			Aliases:     []string{"success"},
			Usage:       "Include successful results in the output",
			DefaultText: "false",
		},
		&cli.BoolFlag{
			Name:        outputStdErrFlag,
			Aliases:     []string{"stderr"},
			Usage:       "Include stderr output in the results",
			Value:       true,
			DefaultText: "true",
		},
		&cli.BoolFlag{
			Name:        outputStdOutFlag,
			Aliases:     []string{"stdout"},
			Usage:       "Include stdout output in the results",
			DefaultText: "false",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	yamlFileName := cmd.StringArg(fileArg)
	if yamlFileName == "" {
		return cli.Exit("Please provide a YAML workflow file to run", 1)
	}

	data, err := os.ReadFile(yamlFileName)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %s: %s", ErrReadFile, yamlFileName, err.Error()), 1)
	}

	tree, err := workflow.Load(data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %s", ErrBuildWorkflow, err.Error()), 1)
	}

	workers := cmd.Int(workersFlag)
	if workers <= 0 {
		workers = int64(runtime.NumCPU())
	}

	sched := scheduler.New(ctx)

	collector := &resultCollector{}
	sched.OnComplete = collector.onComplete

	for _, item := range intake.Flatten(tree) {
		if err := sched.Submit(item); err != nil {
			return cli.Exit(fmt.Sprintf("failed to submit workflow: %s", err.Error()), 1)
		}
	}

	if err := sched.Submit(intake.Item{EOF: true}); err != nil {
		return cli.Exit(fmt.Sprintf("failed to close intake: %s", err.Error()), 1)
	}

	eval := evaluator.New(sched.VarResolver())

	if err := sched.Run(ctx, eval, int(workers)); err != nil {
		cmd.ErrWriter.Write([]byte(err.Error() + "\n")) //nolint:errcheck
	}

	tree2 := collector.results

	opts := resultfmt.DefaultOptions()
	opts.IncludeStdErr = cmd.Bool(outputStdErrFlag)
	opts.IncludeStdOut = cmd.Bool(outputStdOutFlag)
	opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)

	if err := resultfmt.Write(cmd.Writer, tree2, opts); err != nil {
		return cli.Exit("Failed to write results: "+err.Error(), 1)
	}

	if tree2.HasError() {
		return cli.Exit("", 1)
	}

	return nil
}

// resultCollector appends one Result per completed node, in completion
// order. The scheduler's compound-expansion parent/child relationship isn't
// reconstructed here; results print as a flat completion log rather than a
// nested tree.
type resultCollector struct {
	mu      sync.Mutex
	results resulttree.Results
}

func (c *resultCollector) onComplete(node *graph.Node, completion scheduler.Completion) {
	status := resulttree.StatusSuccess

	switch {
	case node.Flags.Has(graph.FlagCancelled):
		status = resulttree.StatusCancelled
	case completion.Status != 0 || completion.Err != nil:
		status = resulttree.StatusError
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.results = append(c.results, &resulttree.Result{
		Label:    labelOf(node.Command),
		ExitCode: completion.Status,
		Error:    completion.Err,
		Status:   status,
	})
}

func labelOf(cmd cmdtree.Node) string {
	if s, ok := cmd.(*cmdtree.Simple); ok && len(s.Args) > 0 {
		return s.Args[0]
	}

	return fmt.Sprintf("%T", cmd)
}
