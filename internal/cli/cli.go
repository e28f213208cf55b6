// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package cli implements the jdom command-line interface.
//
// The check command parses JSON files with the incremental parser, each in
// its own arena, and reports the result. The fmt command prints the compact
// encoding of each file. Both commands accept --config to read defaults
// from a TOML file; flags given on the command line take precedence.
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context, and parser events are forwarded to it.
package cli

import (
	"context"
	"io"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Log levels exported for use in main.go.
const (
	LogDebug = charmlog.DebugLevel
	LogInfo  = charmlog.InfoLevel
)

// NewRootCommand constructs the root command with all subcommands
// registered. Command output is written to stdout, and logs to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool
	cfg := defaultConfig()

	root := &cobra.Command{
		Use:          "jdom",
		Short:        "Check and format JSON documents",
		Long:         `jdom parses JSON documents incrementally into arena-backed trees, to check their syntax and print them compactly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			logger := newLogger(stderr, level)
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return cfg.load(cmd.Flags().Changed)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&cfg.path, "config", "", "read default settings from this TOML file")
	pf.IntVar(&cfg.MaxDepth, flagMaxDepth, cfg.MaxDepth, "maximum nesting depth")
	pf.IntVar(&cfg.BlockSize, flagBlockSize, cfg.BlockSize, "initial arena block size in bytes")
	pf.IntVar(&cfg.Chunk, flagChunk, cfg.Chunk, "feed the parser chunks of this many bytes")
	pf.BoolVar(&cfg.TrailingCommas, flagTrailingCommas, cfg.TrailingCommas, "allow trailing commas")
	pf.BoolVar(&cfg.Comments, flagComments, cfg.Comments, "allow comments")
	pf.BoolVar(&cfg.JWCC, flagJWCC, cfg.JWCC, "standardize JWCC input before parsing")

	root.AddCommand(newCheckCmd(&cfg))
	root.AddCommand(newFmtCmd(&cfg))
	return root
}

// Execute runs the jdom command line with the given arguments.
func Execute(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
