// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package conan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"novelrt.io/x/sdk/pkg/buildtool"
	"novelrt.io/x/sdk/pkg/merger"
	"novelrt.io/x/sdk/pkg/utils"
)

const DefaultConan = "conan"

// Installer fetches dependencies with `conan install` ahead of configuring.
type Installer struct {
	Runner buildtool.Runner
	Path   string
	// Profile is a profile name or path; empty uses conan's default profile
	Profile string
}

func NewInstaller(runner buildtool.Runner, path, profile string) *Installer {
	if path == "" {
		path = DefaultConan
	}
	return &Installer{Runner: runner, Path: path, Profile: profile}
}

func (i *Installer) Args(cfg *merger.EffectiveConfig, buildDir string) []string {
	args := []string{"install", buildDir, "-if", buildDir, "--build=missing"}
	if i.Profile != "" {
		args = append(args, "-pr", i.Profile)
	}
	return append(args, "-s", "build_type="+cfg.BuildType.String())
}

func (i *Installer) Install(ctx context.Context, cfg *merger.EffectiveConfig, buildDir string) (*buildtool.Result, error) {
	if err := utils.EnsureDirs(buildDir); err != nil {
		return nil, err
	}
	conanfile := filepath.Join(buildDir, ConanfileName)
	if err := os.WriteFile(conanfile, RenderConanfile(cfg), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", conanfile, err)
	}

	inv := buildtool.Invocation{Path: i.Path, Args: i.Args(cfg, buildDir)}
	inv.OnStdout, inv.OnStderr = buildtool.OutputHandlers(&cfg.Platform, true, buildtool.StepInstall)

	res, err := i.Runner.Run(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", buildtool.StepInstall, err)
	}
	if res.ExitCode != 0 {
		return res, buildtool.NewToolError(buildtool.StepInstall, inv, res)
	}
	return res, nil
}

var _ buildtool.Installer = (*Installer)(nil)
