// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cmdutil holds the flag handling and wiring shared by the project commands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"novelrt.io/x/sdk/pkg/buildtool"
	"novelrt.io/x/sdk/pkg/conan"
	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/merger"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/toolcheck"
	"novelrt.io/x/sdk/pkg/utils"
)

// VerboseFlag is registered once on the root command and inherited by every subcommand.
const VerboseFlag = "verbose"

// ResolveFlags are the inputs of an option merge that can be given on the command line.
type ResolveFlags struct {
	Options   []string
	BuildType string
	Platform  string
}

func (f *ResolveFlags) AddFlags(flags *pflag.FlagSet, withPlatform bool) {
	flags.StringArrayVarP(&f.Options, "option", "o", nil, "override an option, as key=value or package:key=value (repeatable)")
	flags.StringVar(&f.BuildType, "config", "", "build type: Debug, Release, MinSizeRel or RelWithDebInfo")
	if withPlatform {
		flags.StringVar(&f.Platform, "platform", "", "resolve for another platform, as os/arch[/compiler]")
	}
}

// Overrides turns the flags into merge overrides. --verbose only counts when it was given.
func (f *ResolveFlags) Overrides(cmd *cobra.Command) (merger.Overrides, error) {
	o := merger.Overrides{}
	if len(f.Options) > 0 {
		o.Options = manifest.Options{}
		for _, s := range f.Options {
			k, v, err := manifest.ParseAssignment(s)
			if err != nil {
				return o, err
			}
			o.Options[k] = v
		}
	}
	if f.BuildType != "" {
		bt, err := merger.ParseBuildType(f.BuildType)
		if err != nil {
			return o, err
		}
		o.BuildType = &bt
	}
	if flag := cmd.Flags().Lookup(VerboseFlag); flag != nil && flag.Changed {
		verbose, err := cmd.Flags().GetBool(VerboseFlag)
		if err != nil {
			return o, err
		}
		o.Verbose = &verbose
	}
	return o, nil
}

func (f *ResolveFlags) TargetPlatform() (*platform.Descriptor, error) {
	if f.Platform == "" {
		return platform.Current(), nil
	}
	return platform.Parse(f.Platform)
}

// Resolve loads the project manifest found from dir and merges it for the flags' platform.
func (f *ResolveFlags) Resolve(cmd *cobra.Command, dir string) (*manifest.Manifest, *merger.EffectiveConfig, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	p, err := f.TargetPlatform()
	if err != nil {
		return nil, nil, err
	}
	overrides, err := f.Overrides(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := merger.Merge(m, merger.SDKDefaults(), *p, overrides)
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}

// LoadManifest searches dir and its parents, or the current directory when dir is empty.
func LoadManifest(dir string) (*manifest.Manifest, error) {
	if dir == "" {
		dir = "."
	}
	return manifest.Load(dir)
}

// ToolPaths lists the external tools a build runs: cmake, plus conan unless
// installing is skipped.
func ToolPaths(config *sdkconfig.Config, skipInstall bool) []string {
	tools := []string{orDefault(config.CMakePath, buildtool.DefaultCMake)}
	if !skipInstall {
		tools = append(tools, orDefault(config.ConanPath, conan.DefaultConan))
	}
	return tools
}

// CheckTools fails with toolcheck.ErrToolNotFound or toolcheck.ErrToolTooOld
// for the first tool that can't be used.
func CheckTools(ctx context.Context, runner buildtool.Runner, config *sdkconfig.Config, skipInstall bool) error {
	for _, path := range ToolPaths(config, skipInstall) {
		tool, err := toolcheck.Probe(ctx, runner, path)
		if err != nil {
			return err
		}
		slog.Debug("found tool", "tool", tool.String(), "path", path)
	}
	return nil
}

func orDefault(path, def string) string {
	if path == "" {
		return def
	}
	return path
}

// NewInvoker checks and wires the external tools from config. Without skipInstall, a
// Conan profile is selected for p, syncing the Conan configuration on first use.
func NewInvoker(ctx context.Context, config *sdkconfig.Config, cmd *cobra.Command, p *platform.Descriptor, skipInstall bool) (*buildtool.Invoker, error) {
	runner := buildtool.NewExecRunner()
	if err := CheckTools(ctx, runner, config, skipInstall); err != nil {
		return nil, err
	}
	invoker := buildtool.NewInvoker(runner, buildtool.NewCMake(config.CMakePath), nil, cmd)
	if skipInstall {
		return invoker, nil
	}

	profile, err := SelectProfile(ctx, config, p)
	if err != nil {
		return nil, err
	}
	slog.Debug("using conan profile", "profile", profile)
	invoker.Installer = conan.NewInstaller(runner, config.ConanPath, profile)
	return invoker, nil
}

// SelectProfile picks the Conan profile for p, cloning the configuration repository when
// no local copy exists yet.
func SelectProfile(ctx context.Context, config *sdkconfig.Config, p *platform.Descriptor) (string, error) {
	exists, err := utils.DirExists(config.ConanConfigPath)
	if err != nil {
		return "", err
	}
	if !exists && config.ConanConfigURL != "" {
		if err := conan.SyncConfig(ctx, config.ConanConfigURL, config.ConanConfigPath, config.InstallLockPath); err != nil {
			return "", fmt.Errorf("%w: %w", buildtool.ErrInstallFailed, err)
		}
	}
	return conan.SelectProfile(config.ConanProfile, config.ConanConfigPath, p)
}

// SkipInstall is true when either the flag or NOVELRT_SKIP_INSTALL asks for it.
func SkipInstall(config *sdkconfig.Config, flag bool) bool {
	return flag || config.SkipInstall
}

// ProjectDir resolves dir, falling back to the directory of the project manifest
// found from the current directory.
func ProjectDir(dir string) (string, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return "", err
		}
		return dir, nil
	}
	m, err := LoadManifest("")
	if errors.Is(err, manifest.ErrNoManifest) {
		return os.Getwd()
	} else if err != nil {
		return "", err
	}
	return m.Dir(), nil
}
