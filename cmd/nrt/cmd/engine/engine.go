// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/pkg/sdkconfig"
)

func Cmd(config *sdkconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "manage installed NovelRT engine builds",
	}
	cmd.AddCommand(
		listCmd(config),
		installCmd(config),
		uninstallCmd(config),
		pushCmd(config),
	)
	return cmd
}
