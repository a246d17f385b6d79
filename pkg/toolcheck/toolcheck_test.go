// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package toolcheck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"novelrt.io/x/sdk/pkg/buildtool"
)

func reporting(output string) *buildtool.FakeRunner {
	return &buildtool.FakeRunner{Respond: func(buildtool.Invocation) (*buildtool.Result, error) {
		return &buildtool.Result{Stdout: []byte(output)}, nil
	}}
}

func TestProbe(t *testing.T) {
	ctx := context.Background()

	runner := reporting("cmake version 3.22.1\n\nCMake suite maintained and supported by Kitware (kitware.com/cmake).\n")
	tool, err := Probe(ctx, runner, "/usr/bin/cmake")
	require.NoError(t, err)
	assert.Equal(t, "cmake", tool.Name)
	assert.Equal(t, "3.22.1", tool.Version.String())
	assert.Equal(t, []string{"--version"}, runner.Calls[0].Args)

	tool, err = Probe(ctx, reporting("Conan version 1.59.0"), "/opt/python/bin/conan.exe")
	require.NoError(t, err)
	assert.Equal(t, "conan", tool.Name)
}

func TestProbeTooOld(t *testing.T) {
	tool, err := Probe(context.Background(), reporting("cmake version 3.16.3"), "cmake")
	assert.ErrorIs(t, err, ErrToolTooOld)
	assert.ErrorContains(t, err, "3.19.8")
	require.NotNil(t, tool)
	assert.Equal(t, "3.16.3", tool.Version.String())
}

func TestProbeMissing(t *testing.T) {
	runner := &buildtool.FakeRunner{Respond: func(buildtool.Invocation) (*buildtool.Result, error) {
		return nil, buildtool.ErrToolNotFound
	}}
	_, err := Probe(context.Background(), runner, "conan")
	assert.ErrorIs(t, err, ErrToolNotFound)

	_, err = Probe(context.Background(), reporting("something unexpected"), "conan")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrToolTooOld)
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("cmake3 version 3.19.8-rc1")
	require.NoError(t, err)
	assert.Equal(t, "3.19.8", v.String())
}
