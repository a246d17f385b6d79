// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package engine manages prebuilt engine distributions: listing and resolving them in
// the registry, installing them into the home directory, and publishing new ones.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/utils"
)

var ErrEngineNotInstalled = errors.New("engine version not installed")

// cmakeEntryPoint is what projects include to consume an installed engine.
const cmakeEntryPoint = "lib/NovelRT.cmake"

type Installed struct {
	Version *semver.Version
	Path    string
}

func (i *Installed) String() string {
	return fmt.Sprintf("%s (%s)", i.Version, i.Path)
}

// CMakeInclude is the path projects include to pick up the engine's targets.
func (i *Installed) CMakeInclude() string {
	return filepath.ToSlash(filepath.Join(i.Path, cmakeEntryPoint))
}

// List returns the installed engine versions in ascending order. Entries that
// aren't semver directories are ignored.
func List(config *sdkconfig.Config) ([]*Installed, error) {
	entries, err := os.ReadDir(config.EnginePath)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	vs := lo.FilterMap(entries, func(e os.DirEntry, _ int) (*Installed, bool) {
		if !e.IsDir() {
			return nil, false
		}
		v, err := semver.StrictNewVersion(e.Name())
		if err != nil {
			return nil, false
		}
		return &Installed{Version: v, Path: filepath.Join(config.EnginePath, e.Name())}, true
	})
	slices.SortFunc(vs, func(a, b *Installed) int {
		return a.Version.Compare(b.Version)
	})
	return vs, nil
}

// Latest is the highest installed version, or ErrEngineNotInstalled.
func Latest(config *sdkconfig.Config) (*Installed, error) {
	vs, err := List(config)
	if err != nil {
		return nil, err
	}
	latest, ok := lo.Last(vs)
	if !ok {
		return nil, fmt.Errorf("%w. install one with 'nrt engine install latest'", ErrEngineNotInstalled)
	}
	return latest, nil
}

func Get(config *sdkconfig.Config, version *semver.Version) (*Installed, error) {
	vs, err := List(config)
	if err != nil {
		return nil, err
	}
	i, ok := lo.Find(vs, func(i *Installed) bool { return i.Version.Equal(version) })
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEngineNotInstalled, version)
	}
	return i, nil
}

func Uninstall(ctx context.Context, config *sdkconfig.Config, version *semver.Version) error {
	installed, err := Get(config, version)
	if err != nil {
		return err
	}
	return utils.WithInstallLock(ctx, config.InstallLockPath, func() error {
		slog.Info("uninstalling engine", "version", installed.Version.String(), "path", installed.Path)
		return os.RemoveAll(installed.Path)
	})
}
