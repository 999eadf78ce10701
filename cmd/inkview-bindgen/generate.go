// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/inkview-bindgen/pkg/bindgen"
)

// newGenerateCmd creates the "generate" command.
func newGenerateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write the bindings file",
		Long:  "Generate parses the SDK header, synthesizes the enums, and writes the bindings file atomically.",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGenerator(v)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			result, err := g.Generate(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

// newCheckCmd creates the "check" command.
func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the bindings file is up to date",
		Long:  "Check regenerates the bindings in memory and exits non-zero with a diff when the file on disk differs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGenerator(v)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			result, err := g.Check(ctx)
			if errors.Is(err, bindgen.ErrStale) {
				fmt.Fprint(cmd.OutOrStdout(), result.Diff)
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", result.Output)
			return nil
		},
	}
}

// newGenerator decodes the merged flag, env, and file config.
func newGenerator(v *viper.Viper) (bindgen.Generator, error) {
	var cfg bindgen.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", bindgen.ErrInvalidConfig, err)
	}
	cfg.Logger = newLogger(v)

	g, err := bindgen.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return g, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}
