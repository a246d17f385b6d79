// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	nrtengine "novelrt.io/x/sdk/pkg/engine"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/sdkconfig/sdkremote"
	"novelrt.io/x/sdk/pkg/utils"
)

func pushCmd(config *sdkconfig.Config) *cobra.Command {
	var builds, extraTags []string

	cmd := &cobra.Command{
		Use:   "push <version>",
		Short: "publish engine builds to the registry",
		Long: `Uploads one build per platform and an index tagged with <version> that ties them together.

	nrt engine push 0.1.0 --build linux/x86_64=./out/linux --build windows/x86_64=./out/windows --tag latest
`,
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := semver.StrictNewVersion(args[0])
			if err != nil {
				return fmt.Errorf("invalid engine version. %w", err)
			}
			if len(builds) == 0 {
				return fmt.Errorf("at least one --build is required")
			}

			opts := nrtengine.PushOpts{
				Version:   v,
				Builds:    map[*platform.Descriptor]string{},
				ExtraTags: extraTags,
			}
			for _, b := range builds {
				p, dir, err := parseBuild(b)
				if err != nil {
					return err
				}
				opts.Builds[p] = dir
			}
			cmd.SilenceUsage = true

			client, err := sdkremote.NewFromConfig(config)
			if err != nil {
				return err
			}
			desc, err := nrtengine.Push(cmd.Context(), client, opts)
			if err != nil {
				return err
			}

			cmd.Println(color.GreenString("pushed engine %s (%s)", v, desc.Digest))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&builds, "build", nil, "platform and directory of a build, as os/arch=dir (repeatable)")
	cmd.Flags().StringArrayVar(&extraTags, "tag", nil, "additional tag for the release, e.g. latest (repeatable)")
	return cmd
}

func parseBuild(s string) (*platform.Descriptor, string, error) {
	target, dir, ok := strings.Cut(s, "=")
	if !ok || dir == "" {
		return nil, "", fmt.Errorf("invalid --build %q: expected os/arch=dir", s)
	}
	p, err := platform.Parse(target)
	if err != nil {
		return nil, "", err
	}
	exists, err := utils.DirExists(dir)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, "", fmt.Errorf("engine build directory %s does not exist", dir)
	}
	return p, dir, nil
}
