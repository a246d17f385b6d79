// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package test

import (
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/cmd/nrt/cmd/build"
	"novelrt.io/x/sdk/cmd/nrt/cmd/cmdutil"
	"novelrt.io/x/sdk/pkg/buildtool"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/staging"
)

func Cmd() *cobra.Command {
	var dir, expect string

	cmd := &cobra.Command{
		Use:   "test <executable> [-- args...]",
		Short: "run a staged executable and exit with its exit code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if dir == "" {
				projectDir, err := cmdutil.ProjectDir("")
				if err != nil {
					return err
				}
				dir = filepath.Join(projectDir, build.DefaultBuildDir, staging.BinDir)
			}

			_, err := buildtool.RunTest(cmd.Context(), buildtool.NewExecRunner(), platform.Current(), buildtool.TestRequest{
				StagedDir: dir,
				Name:      args[0],
				Args:      args[1:],
				Expect:    expect,
				OnStdout:  func(line string) { cmd.Println(line) },
			})
			if err != nil {
				return err
			}
			cmd.Println(color.GreenString("%s ran successfully", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory holding the staged executable (defaults to <project>/build/bin)")
	cmd.Flags().StringVar(&expect, "expect", "", "fail unless the executable's output contains this text")
	return cmd
}
