// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"novelrt.io/x/sdk/pkg/manifest"
)

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "MyGame")

	res, err := Generate(Opts{Dir: dir, EnginePath: "/opt/novelrt/engine/0.1.0"})
	require.NoError(t, err)
	assert.Equal(t, "MyGame", res.Name)
	assert.ElementsMatch(t, []string{
		"CMakeLists.txt",
		"novelrt.yaml",
		filepath.Join("Resources", "Shaders", ".keep"),
		filepath.Join("src", "MyGame", "CMakeLists.txt"),
		filepath.Join("src", "MyGame", "main.cpp"),
	}, res.Files)

	for _, f := range res.Files {
		b, err := os.ReadFile(filepath.Join(dir, f))
		require.NoError(t, err)
		assert.NotContains(t, string(b), "###", f)
	}

	m, err := manifest.Read(filepath.Join(dir, "novelrt.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "MyGame", m.Spec.Name)
	assert.Equal(t, DefaultVersion, m.Spec.Version)
	assert.Len(t, m.Conditions(), 1)

	root, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(root), `include("/opt/novelrt/engine/0.1.0/lib/NovelRT.cmake")`)
	assert.Contains(t, string(root), `DESCRIPTION "MyGame app"`)
	assert.Contains(t, string(root), "add_subdirectory(src/MyGame)")
}

func TestGenerateWithoutEngine(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(Opts{Dir: dir, Name: "Visual_Novel", Description: "a story", Version: "1.2.3"})
	require.NoError(t, err)

	root, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(root), "find_package(NovelRT REQUIRED)")
	assert.Contains(t, string(root), "VERSION 1.2.3")

	main, err := os.ReadFile(filepath.Join(dir, "src", "Visual_Novel", "main.cpp"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "Hello from Visual_Novel!")
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(Opts{Dir: dir, Name: "Game"})
	require.NoError(t, err)

	edited := filepath.Join(dir, "src", "Game", "main.cpp")
	require.NoError(t, os.WriteFile(edited, []byte("// mine\n"), 0o644))

	_, err = Generate(Opts{Dir: dir, Name: "Game"})
	assert.ErrorIs(t, err, ErrFileExists)
	b, err := os.ReadFile(edited)
	require.NoError(t, err)
	assert.Equal(t, "// mine\n", string(b))

	_, err = Generate(Opts{Dir: dir, Name: "Game", Force: true})
	require.NoError(t, err)
	b, err = os.ReadFile(edited)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "Hello from Game!"))
}

func TestGenerateInvalidName(t *testing.T) {
	for _, name := range []string{"1game", "my game", "../escape"} {
		_, err := Generate(Opts{Dir: t.TempDir(), Name: name})
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}
