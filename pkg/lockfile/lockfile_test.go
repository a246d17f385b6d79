// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/manifest/testdata"
	"novelrt.io/x/sdk/pkg/merger"
	"novelrt.io/x/sdk/pkg/platform"
)

func resolve(t *testing.T, p platform.Descriptor, overrides merger.Overrides) *merger.EffectiveConfig {
	t.Helper()
	m, err := manifest.ReadContents(testdata.SampleYaml, "/work/sample/novelrt.yaml")
	require.NoError(t, err)
	cfg, err := merger.Merge(m, merger.SDKDefaults(), p, overrides)
	require.NoError(t, err)
	return cfg
}

var linux = platform.Descriptor{OS: platform.Linux, Arch: "x86_64", Compiler: "gcc"}

func TestWriteThenCheck(t *testing.T) {
	path := Path(t.TempDir())
	cfg := resolve(t, linux, merger.Overrides{})
	require.NoError(t, Write(path, cfg))

	l, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, Kind, l.Kind)
	assert.Equal(t, "Linux/x86_64/gcc", l.Platform)
	assert.Len(t, l.Dependencies, len(cfg.Dependencies))
	assert.Equal(t, manifest.True, l.Options["openal:shared"])

	assert.NoError(t, Check(path, resolve(t, linux, merger.Overrides{})))
}

func TestCheckReportsDrift(t *testing.T) {
	path := Path(t.TempDir())
	require.NoError(t, Write(path, resolve(t, linux, merger.Overrides{})))

	release := merger.Release
	err := Check(path, resolve(t, linux, merger.Overrides{BuildType: &release}))
	assert.ErrorIs(t, err, ErrLockfileOutOfSync)
	assert.ErrorContains(t, err, "build-type: Debug -> Release")
	assert.ErrorContains(t, err, "option config: Debug -> Release")

	macos := platform.Descriptor{OS: platform.Macos, Arch: "armv8", Compiler: "apple-clang"}
	err = Check(path, resolve(t, macos, merger.Overrides{}))
	assert.ErrorIs(t, err, ErrLockfileOutOfSync)
	assert.ErrorContains(t, err, "dependency moltenvk added (1.1.6)")
}

func TestReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("apiVersion: novelrt.io/v1\nkind: Project\n"), 0o644))
	_, err := Read(path)
	assert.ErrorIs(t, err, ErrInvalidLockfile)

	_, err = Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
