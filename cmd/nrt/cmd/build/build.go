// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/cmd/nrt/cmd/cmdutil"
	"novelrt.io/x/sdk/pkg/buildtool"
	"novelrt.io/x/sdk/pkg/lockfile"
	"novelrt.io/x/sdk/pkg/sdkconfig"
)

const DefaultBuildDir = "build"

func Cmd(config *sdkconfig.Config) *cobra.Command {
	var flags cmdutil.ResolveFlags
	var sourceDir, buildDir string
	var skipInstall, locked bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "install dependencies, configure, build and stage the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()

			m, cfg, err := flags.Resolve(cmd, sourceDir)
			if err != nil {
				return err
			}
			for _, c := range cfg.Conflicts {
				cmd.PrintErrln(color.YellowString("warning: %s", c.Error()))
			}
			if locked {
				if err := lockfile.Check(lockfile.Path(m.Dir()), cfg); err != nil {
					return err
				}
			}

			skip := cmdutil.SkipInstall(config, skipInstall)
			invoker, err := cmdutil.NewInvoker(ctx, config, cmd, &cfg.Platform, skip)
			if err != nil {
				return err
			}

			if buildDir == "" {
				buildDir = filepath.Join(m.Dir(), DefaultBuildDir)
			}
			buildDir, err = filepath.Abs(buildDir)
			if err != nil {
				return err
			}

			_, err = invoker.Run(ctx, buildtool.Request{
				Config:      cfg,
				SourceDir:   m.Dir(),
				BuildDir:    buildDir,
				SkipInstall: skip,
			})
			return err
		},
	}

	flags.AddFlags(cmd.Flags(), false)
	cmd.Flags().StringVar(&sourceDir, "source", "", "project directory (defaults to the nearest novelrt.yaml)")
	cmd.Flags().StringVar(&buildDir, "build-dir", "", "build directory (defaults to <project>/"+DefaultBuildDir+")")
	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, "don't install dependencies with conan, e.g. when they are already in the build directory")
	cmd.Flags().BoolVar(&locked, "locked", false, "fail when "+lockfile.FileName+" no longer matches the resolution")
	return cmd
}
