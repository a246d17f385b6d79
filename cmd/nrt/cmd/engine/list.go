// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	nrtengine "novelrt.io/x/sdk/pkg/engine"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/sdkconfig/sdkremote"
)

func listCmd(config *sdkconfig.Config) *cobra.Command {
	var all bool
	var output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "show installed engine versions",
		Long: `show installed engine versions

	the default version, marked with *, is the newest installed one. new projects are generated against it.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			installed, err := nrtengine.List(config)
			if err != nil {
				return err
			}

			remote := map[*semver.Version][]string{}
			if all {
				client, err := sdkremote.NewFromConfig(config)
				if err != nil {
					return err
				}
				remote, err = nrtengine.ListRemote(cmd.Context(), client)
				if err != nil {
					return err
				}
			}

			v := nrtengine.NewVersions(installed, remote)
			switch output {
			case "table":
				cmd.Println(v.Table())
			case "json":
				data, err := json.MarshalIndent(v, "", "    ")
				if err != nil {
					return err
				}
				cmd.Println(string(data))
			default:
				return fmt.Errorf("output format not supported: %s", output)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "A", false, "also list the versions available in the registry")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: json, table")
	return cmd
}
