// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command inkview-bindgen generates cgo bindings and typed enums for the
// PocketBook InkView SDK. It is meant to run from go:generate.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around v.
func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "inkview-bindgen",
		Short: "Generate Go bindings for the InkView SDK",
		Long: "inkview-bindgen parses the InkView SDK header, groups related integer macros into typed enums, " +
			"and writes a single cgo bindings file.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v)
		},
	}

	// Global flags.
	flags := rootCmd.PersistentFlags()
	flags.StringP("output", "o", "inkview_bindings.go", "Generated Go file")
	flags.String("package", "", "Go package name (default $GOPACKAGE, then inkview)")
	flags.StringSliceP("include", "I", nil, "SDK header directory (repeatable)")
	flags.String("encoding", "", "Charset of the SDK headers (default UTF-8)")
	flags.String("rules", "", "Symbol rules YAML (default: embedded InkView rules)")
	flags.String("link", "inkview", "Native library to link")
	flags.Bool("no-provenance", false, "Do not stamp the SDK git revision")
	flags.String("config", "", "Config file (default .inkview-bindgen.yaml)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	// Bind flags to viper under their config keys.
	v.BindPFlag("output", flags.Lookup("output"))
	v.BindPFlag("package", flags.Lookup("package"))
	v.BindPFlag("include", flags.Lookup("include"))
	v.BindPFlag("encoding", flags.Lookup("encoding"))
	v.BindPFlag("rules", flags.Lookup("rules"))
	v.BindPFlag("link", flags.Lookup("link"))
	v.BindPFlag("no_provenance", flags.Lookup("no-provenance"))
	v.BindPFlag("config", flags.Lookup("config"))
	v.BindPFlag("verbose", flags.Lookup("verbose"))

	// Env vars: INKVIEW_BINDGEN_OUTPUT, INKVIEW_BINDGEN_NO_PROVENANCE, etc.
	v.SetEnvPrefix("INKVIEW_BINDGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(newGenerateCmd(v))
	rootCmd.AddCommand(newCheckCmd(v))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig reads the config file. The default file is optional; one
// named with --config must exist.
func loadConfig(v *viper.Viper) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}
	v.SetConfigName(".inkview-bindgen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// newLogger returns a stderr logger, at debug level when verbose.
func newLogger(v *viper.Viper) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if v.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print inkview-bindgen version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inkview-bindgen %s\n", version)
		},
	}
}
