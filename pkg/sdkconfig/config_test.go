// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sdkconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	home := t.TempDir()
	config, err := GetWithCustomHome(home)
	require.NoError(t, err)

	assert.Equal(t, DefaultOciRegistry, config.Registry)
	assert.Equal(t, DefaultConanConfig, config.ConanConfigURL)
	assert.False(t, config.Insecure)
	assert.Equal(t, filepath.Join(home, "cache", "oci-layout"), config.OciLayoutCache)
	assert.Equal(t, filepath.Join(home, "engine", "0.1.0"), config.EngineDir("0.1.0"))
	assert.Equal(t, filepath.Join(home, "conan-config"), config.ConanConfigPath)

	require.NoError(t, config.EnsureDirs())
	assert.DirExists(t, config.OciLayoutCache)
	assert.DirExists(t, config.EnginePath)
}

func TestConfigFileThenEnv(t *testing.T) {
	home := t.TempDir()
	contents := `
registry: registry.example.com/novelrt
cmake: /opt/cmake/bin/cmake
conan-profile: linux-gcc9-amd64
skip-install: true
`
	require.NoError(t, os.WriteFile(filepath.Join(home, ConfigFileName), []byte(contents), 0o644))

	config, err := GetWithCustomHome(home)
	require.NoError(t, err)
	assert.Equal(t, "registry.example.com/novelrt", config.Registry)
	assert.Equal(t, "/opt/cmake/bin/cmake", config.CMakePath)
	assert.Equal(t, "linux-gcc9-amd64", config.ConanProfile)
	assert.True(t, config.SkipInstall)

	t.Setenv(RegistryEnvVar, "localhost:5000")
	t.Setenv(InsecureRegistryEnvVar, "true")
	t.Setenv(SkipInstallEnvVar, "false")
	config, err = GetWithCustomHome(home)
	require.NoError(t, err)
	assert.Equal(t, "localhost:5000", config.Registry)
	assert.True(t, config.Insecure)
	assert.False(t, config.SkipInstall)
	assert.Equal(t, "/opt/cmake/bin/cmake", config.CMakePath)
}

func TestInvalidConfig(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ConfigFileName), []byte("unknown-key: 1\n"), 0o644))
	_, err := GetWithCustomHome(home)
	assert.Error(t, err)

	require.NoError(t, os.Remove(filepath.Join(home, ConfigFileName)))
	t.Setenv(InsecureRegistryEnvVar, "maybe")
	_, err = GetWithCustomHome(home)
	assert.Error(t, err)
}

func TestHomeFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnvVar, home)
	config, err := Get()
	require.NoError(t, err)
	assert.Equal(t, home, config.HomePath)
}
