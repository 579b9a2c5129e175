// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package workflow loads a YAML document into a cmdtree.Node, standing in
// for the external shell parser the scheduler core otherwise depends on.
package workflow

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/matt-FFFFFF/parashell/internal/cmdtree"
)

var (
	ErrInvalidYAML  = errors.New("workflow: invalid YAML")
	ErrNoCommands   = errors.New("workflow: no commands specified")
	ErrUnknownType  = errors.New("workflow: unknown node type")
	ErrMissingField = errors.New("workflow: missing required field")
)

// Document is the root YAML shape: a name plus a top-level command list,
// joined into one Semi chain.
type Document struct {
	Name     string `yaml:"name"`
	Commands []Node `yaml:"commands"`
}

// Node is the recursive YAML shape for a single CommandTree variant. Only
// the fields relevant to Type are read; the rest are left zero.
type Node struct {
	Type string `yaml:"type"`

	Args      []string          `yaml:"args,omitempty"`
	Assigns   []cmdtree.Assign  `yaml:"assigns,omitempty"`
	Redirects []redirectYAML    `yaml:"redirects,omitempty"`

	A     *Node `yaml:"a,omitempty"`
	B     *Node `yaml:"b,omitempty"`
	Inner *Node `yaml:"inner,omitempty"`
	Test  *Node `yaml:"test,omitempty"`
	Then  *Node `yaml:"then,omitempty"`
	Else  *Node `yaml:"else,omitempty"`
	Body  *Node `yaml:"body,omitempty"`
	List  []Node `yaml:"list,omitempty"`

	Var    string `yaml:"var,omitempty"`
	Levels int    `yaml:"levels,omitempty"`
}

type redirectYAML struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// Load parses a YAML document into a single cmdtree.Node, joining multiple
// top-level commands with Semi in document order, terminated implicitly by
// the caller (internal/scheduler.Submit's EOF item, not this package).
func Load(data []byte) (cmdtree.Node, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}

	if len(doc.Commands) == 0 {
		return nil, ErrNoCommands
	}

	var out cmdtree.Node

	for i := range doc.Commands {
		built, err := build(&doc.Commands[i])
		if err != nil {
			return nil, err
		}

		if out == nil {
			out = built
		} else {
			out = &cmdtree.Semi{A: out, B: built}
		}
	}

	return out, nil
}

func build(n *Node) (cmdtree.Node, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrMissingField)
	}

	switch n.Type {
	case "simple":
		return &cmdtree.Simple{Args: n.Args, Assigns: n.Assigns, Redirects: buildRedirects(n.Redirects)}, nil

	case "varassign":
		return &cmdtree.VarAssign{Simple: &cmdtree.Simple{Assigns: n.Assigns}}, nil

	case "background":
		inner, err := build(n.Inner)
		if err != nil {
			return nil, err
		}

		return &cmdtree.Background{Inner: inner, Redirects: buildRedirects(n.Redirects)}, nil

	case "pipe":
		list := make([]cmdtree.Node, 0, len(n.List))

		for i := range n.List {
			m, err := build(&n.List[i])
			if err != nil {
				return nil, err
			}

			list = append(list, m)
		}

		return &cmdtree.Pipe{List: list}, nil

	case "semi", "and", "or":
		a, err := build(n.A)
		if err != nil {
			return nil, err
		}

		b, err := build(n.B)
		if err != nil {
			return nil, err
		}

		switch n.Type {
		case "semi":
			return &cmdtree.Semi{A: a, B: b}, nil
		case "and":
			return &cmdtree.And{A: a, B: b}, nil
		default:
			return &cmdtree.Or{A: a, B: b}, nil
		}

	case "not":
		inner, err := build(n.Inner)
		if err != nil {
			return nil, err
		}

		return &cmdtree.Not{Inner: inner}, nil

	case "if":
		test, err := build(n.Test)
		if err != nil {
			return nil, err
		}

		then, err := build(n.Then)
		if err != nil {
			return nil, err
		}

		var elseNode cmdtree.Node

		if n.Else != nil {
			elseNode, err = build(n.Else)
			if err != nil {
				return nil, err
			}
		}

		return &cmdtree.If{Test: test, Then: then, Else: elseNode}, nil

	case "while", "until":
		test, err := build(n.Test)
		if err != nil {
			return nil, err
		}

		body, err := build(n.Body)
		if err != nil {
			return nil, err
		}

		if n.Type == "while" {
			return &cmdtree.While{Test: test, Body: body}, nil
		}

		return &cmdtree.Until{Test: test, Body: body}, nil

	case "for":
		body, err := build(n.Body)
		if err != nil {
			return nil, err
		}

		if n.Var == "" {
			return nil, fmt.Errorf("%w: for.var", ErrMissingField)
		}

		return &cmdtree.For{Var: n.Var, Args: n.Args, Body: body}, nil

	case "break":
		return &cmdtree.Break{Levels: n.Levels}, nil

	case "continue":
		return &cmdtree.Continue{Levels: n.Levels}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, n.Type)
	}
}

func buildRedirects(in []redirectYAML) []cmdtree.Redirect {
	if len(in) == 0 {
		return nil
	}

	out := make([]cmdtree.Redirect, 0, len(in))

	for _, r := range in {
		out = append(out, cmdtree.Redirect{Kind: redirKind(r.Kind), Name: r.Name})
	}

	return out
}

func redirKind(kind string) cmdtree.RedirKind {
	switch kind {
	case "output":
		return cmdtree.RedirOutput
	case "append":
		return cmdtree.RedirAppend
	case "clobber":
		return cmdtree.RedirClobber
	default:
		return cmdtree.RedirInput
	}
}
