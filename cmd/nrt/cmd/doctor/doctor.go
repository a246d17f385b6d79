// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/cmd/nrt/cmd/cmdutil"
	"novelrt.io/x/sdk/pkg/buildtool"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/toolcheck"
)

func Cmd(config *sdkconfig.Config) *cobra.Command {
	var skipInstall bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "check that the build tools are installed and recent enough",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			runner := buildtool.NewExecRunner()
			var errs []error
			for _, path := range cmdutil.ToolPaths(config, cmdutil.SkipInstall(config, skipInstall)) {
				tool, err := toolcheck.Probe(cmd.Context(), runner, path)
				switch {
				case err == nil:
					cmd.Println(color.GreenString("✓ %s", tool))
				case tool != nil:
					cmd.Println(color.YellowString("✗ %s", tool))
				default:
					cmd.Println(color.RedString("✗ %s", path))
				}
				if err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, "don't check for conan")
	return cmd
}

