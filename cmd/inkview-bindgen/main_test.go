// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/inkview-bindgen/pkg/bindgen"
)

func setupSDK(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inkview.h"),
		[]byte("#define EVT_SHOW 1\n#define MAXMSGSIZE 4096\n"), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "inkview-bindgen "+version+"\n", out)
}

func TestGenerateThenCheck(t *testing.T) {
	sdk := setupSDK(t)
	output := filepath.Join(t.TempDir(), "inkview_bindings.go")

	out, err := execute(t, "generate", "-I", sdk, "-o", output, "--package", "pb", "--no-provenance")
	require.NoError(t, err)

	var res bindgen.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, output, res.Output)
	assert.Equal(t, 1, res.Enums["Event"])

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package pb")

	out, err = execute(t, "check", "-I", sdk, "-o", output, "--package", "pb", "--no-provenance")
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")

	out, err = execute(t, "check", "-I", sdk, "-o", output, "--package", "other", "--no-provenance")
	assert.ErrorIs(t, err, bindgen.ErrStale)
	assert.Contains(t, out, "-package pb")
	assert.Contains(t, out, "+package other")
}

func TestEnvOverridesDefaults(t *testing.T) {
	sdk := setupSDK(t)
	output := filepath.Join(t.TempDir(), "env_bindings.go")
	t.Setenv("INKVIEW_BINDGEN_OUTPUT", output)
	t.Setenv("INKVIEW_BINDGEN_NO_PROVENANCE", "true")

	_, err := execute(t, "generate", "-I", sdk)
	require.NoError(t, err)
	assert.FileExists(t, output)
}

func TestConfigFile(t *testing.T) {
	sdk := setupSDK(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "cfg_bindings.go")
	cfgPath := filepath.Join(dir, "bindgen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
output: `+output+`
no_provenance: true
groups:
  - prefix: EVT_
    name: Evt
    width: u32
`), 0o644))

	_, err := execute(t, "generate", "--config", cfgPath, "-I", sdk)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "type Evt uint32")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "generate", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestInvalidPackage(t *testing.T) {
	_, err := execute(t, "generate", "-I", setupSDK(t), "--package", "not-valid")
	assert.ErrorIs(t, err, bindgen.ErrInvalidConfig)
}
