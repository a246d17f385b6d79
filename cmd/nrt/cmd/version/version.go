// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/pkg/sdkversion"
)

func Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "show the nrt version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bytes, err := yaml.Marshal(sdkversion.Get())
			if err != nil {
				return err
			}
			cmd.Print(string(bytes))
			return nil
		},
	}
}
