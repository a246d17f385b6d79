// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/cmd/nrt/cmd/cmdutil"
	"novelrt.io/x/sdk/pkg/merger"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/publish"
	"novelrt.io/x/sdk/pkg/sdkconfig"
)

func Cmd(config *sdkconfig.Config) *cobra.Command {
	var flags cmdutil.ResolveFlags
	var sourceDir string
	var skipInstall bool

	cmd := &cobra.Command{
		Use:   "publish <output dir>",
		Short: "build a release of the project and copy it to an empty directory",
		Long: `Builds the project from scratch in Release mode inside <project>/` + publish.WorkDirName + `
and moves the staged runtime files to <output dir>, which must be empty or not exist yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()

			m, err := cmdutil.LoadManifest(sourceDir)
			if err != nil {
				return err
			}
			overrides, err := flags.Overrides(cmd)
			if err != nil {
				return err
			}
			output, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			p := platform.Current()
			skip := cmdutil.SkipInstall(config, skipInstall)
			invoker, err := cmdutil.NewInvoker(ctx, config, cmd, p, skip)
			if err != nil {
				return err
			}

			_, err = publish.New(invoker, cmd).Publish(ctx, publish.Opts{
				Manifest:    m,
				Defaults:    merger.SDKDefaults(),
				Platform:    *p,
				Overrides:   overrides,
				OutputDir:   output,
				SkipInstall: skip,
			})
			return err
		},
	}

	flags.AddFlags(cmd.Flags(), false)
	cmd.Flags().StringVar(&sourceDir, "source", "", "project directory (defaults to the nearest novelrt.yaml)")
	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, "don't install dependencies with conan")
	return cmd
}
