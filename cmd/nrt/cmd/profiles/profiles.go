// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package profiles

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/pkg/conan"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/sdkconfig"
)

func Cmd(config *sdkconfig.Config) *cobra.Command {
	var sync bool
	var target string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "list the conan profiles available for this platform",
		Long: `list the conan profiles of the NovelRT conan configuration

	profiles matching the platform are highlighted. the one a build would use is marked with *.
	set NOVELRT_CONAN_PROFILE or conan-profile in novelrt-config.yaml to choose between several.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			p := platform.Current()
			if target != "" {
				var err error
				if p, err = platform.Parse(target); err != nil {
					return err
				}
			}

			if sync {
				if err := conan.SyncConfig(cmd.Context(), config.ConanConfigURL, config.ConanConfigPath, config.InstallLockPath); err != nil {
					return err
				}
			}

			profiles, err := conan.ListProfiles(config.ConanConfigPath)
			if errors.Is(err, os.ErrNotExist) {
				cmd.PrintErrln(color.YellowString("no conan configuration found. run 'nrt profiles --sync' to download it"))
				return nil
			} else if err != nil {
				return err
			}

			candidates := conan.CandidateProfiles(profiles, p)
			selected, selectErr := conan.SelectProfile(config.ConanProfile, config.ConanConfigPath, p)
			for _, name := range profiles {
				switch {
				case selectErr == nil && name == filepath.Base(selected):
					cmd.Println(color.GreenString("* %s", name))
				case slices.Contains(candidates, name):
					cmd.Println(color.CyanString("  %s", name))
				default:
					cmd.Println("  " + name)
				}
			}
			if selectErr != nil {
				cmd.PrintErrln(color.YellowString("warning: %s", selectErr.Error()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sync, "sync", false, "download or update the conan configuration first")
	cmd.Flags().StringVar(&target, "platform", "", "list the profiles of another platform, as os/arch")
	return cmd
}
