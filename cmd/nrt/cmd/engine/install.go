// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	nrtengine "novelrt.io/x/sdk/pkg/engine"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/sdkconfig/sdkremote"
)

func installCmd(config *sdkconfig.Config) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "install <version or tag>",
		Short: "download an engine build from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			p := platform.Current()
			if target != "" {
				var err error
				if p, err = platform.Parse(target); err != nil {
					return err
				}
			}

			client, err := sdkremote.NewFromConfig(config)
			if err != nil {
				return err
			}

			cmd.Println("resolving engine version...")
			installed, err := nrtengine.Install(cmd.Context(), config, client, args[0], p)
			if err != nil {
				return err
			}

			cmd.Println(color.GreenString("Successfully installed engine %s", installed.Version))
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "platform", "", "install the build of another platform, as os/arch")
	return cmd
}
