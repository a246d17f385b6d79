// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-containerregistry/pkg/registry"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"novelrt.io/x/sdk/pkg/engine"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/sdkconfig/sdkremote"
	"oras.land/oras-go/v2/registry/remote/auth"
)

// TestdataPath gives absolute path within the common 'testdata'
func TestdataPath(t *testing.T, path ...string) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	p := []string{filepath.Dir(file), "testdata"}
	p = append(p, path...)
	return filepath.Join(p...)
}

// EnginePlatforms are the platforms PushEngine publishes builds for.
var EnginePlatforms = []string{
	"windows/x86_64",
	"linux/x86_64",
	"macos/x86_64",
	"macos/armv8",
}

// WriteEngineBuild lays out a minimal engine build for version in a temp dir.
func WriteEngineBuild(t *testing.T, version string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"lib/NovelRT.cmake":      "# NovelRT " + version + "\n",
		"include/NovelRT.h":      "#pragma once\n",
		"bin/novelrt-shadercomp": "#!/bin/sh\n",
		"VERSION":                version + "\n",
	}
	for name, contents := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(contents), 0o755))
	}
	return dir
}

// PushEngine publishes an engine release for every EnginePlatforms entry.
func PushEngine(t *testing.T, ctx context.Context, client *sdkremote.Remote, version string, extraTags ...string) {
	t.Helper()
	v, err := semver.NewVersion(version)
	require.NoError(t, err)

	build := WriteEngineBuild(t, version)
	builds := lo.SliceToMap(EnginePlatforms, func(p string) (*platform.Descriptor, string) {
		d, err := platform.Parse(p)
		require.NoError(t, err)
		return d, build
	})
	_, err = engine.Push(ctx, client, engine.PushOpts{Version: v, Builds: builds, ExtraTags: extraTags})
	require.NoError(t, err)
}

func getRemote(reg *httptest.Server) *sdkremote.Remote {
	prefix := "http://"
	insecure := strings.HasPrefix(reg.URL, prefix)
	if !insecure {
		prefix = "https://"
	}
	return sdkremote.NewWithCustomClient(strings.TrimPrefix(reg.URL, prefix), &auth.Client{Client: reg.Client()}, insecure)
}

// StartRegistry runs an in-memory registry for the duration of the test and
// points the config env vars at it.
func StartRegistry(t *testing.T) (client *sdkremote.Remote, reg *httptest.Server) {
	reg = httptest.NewServer(registry.New())
	t.Cleanup(func() { reg.Close() })
	regUrl := strings.TrimPrefix(reg.URL, "http://")

	t.Setenv(sdkconfig.RegistryEnvVar, regUrl)
	t.Setenv(sdkconfig.RegistryAuthEnvVar, TestdataPath(t, "empty-docker-config.json"))
	t.Setenv(sdkconfig.InsecureRegistryEnvVar, "true")

	return getRemote(reg), reg
}

type CommonSetupSuite struct {
	suite.Suite
}

// SetupTest points NOVELRT_HOME at a fresh temp dir, so tests never share or touch ~/.novelrt
func (s *CommonSetupSuite) SetupTest() {
	s.T().Setenv(sdkconfig.HomeEnvVar, s.T().TempDir())
}

// Config loads the config for the suite's temporary home.
func (s *CommonSetupSuite) Config() *sdkconfig.Config {
	config, err := sdkconfig.Get()
	s.Require().NoError(err)
	return config
}

func Context(t *testing.T) context.Context {
	ctx, stopFn := context.WithCancel(context.Background())
	t.Cleanup(stopFn)
	return ctx
}
