// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	nrtengine "novelrt.io/x/sdk/pkg/engine"
	"novelrt.io/x/sdk/pkg/sdkconfig"
)

func uninstallCmd(config *sdkconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <version>",
		Short: "remove an installed engine version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			v, err := semver.NewVersion(args[0])
			if err != nil {
				return fmt.Errorf("invalid engine version. %w", err)
			}
			if err := nrtengine.Uninstall(cmd.Context(), config, v); err != nil {
				return err
			}

			cmd.Println("successfully uninstalled engine " + v.String())
			return nil
		},
	}
}
