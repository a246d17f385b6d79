// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/cmd/nrt/cmd/build"
	"novelrt.io/x/sdk/cmd/nrt/cmd/cmdutil"
	"novelrt.io/x/sdk/cmd/nrt/cmd/doctor"
	"novelrt.io/x/sdk/cmd/nrt/cmd/engine"
	"novelrt.io/x/sdk/cmd/nrt/cmd/login"
	"novelrt.io/x/sdk/cmd/nrt/cmd/newproject"
	"novelrt.io/x/sdk/cmd/nrt/cmd/profiles"
	"novelrt.io/x/sdk/cmd/nrt/cmd/publish"
	"novelrt.io/x/sdk/cmd/nrt/cmd/resolve"
	"novelrt.io/x/sdk/cmd/nrt/cmd/test"
	"novelrt.io/x/sdk/cmd/nrt/cmd/version"
	"novelrt.io/x/sdk/pkg/logging"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/sdkversion"
)

const (
	projectGroupId = "project"
	sdkGroupId     = "sdk"
	NrtName        = "nrt"
)

// App carries the process' streams and arguments so tests can run the CLI in-process.
type App struct {
	Stderr, Stdout io.Writer
	Stdin          io.Reader
	// must contain at least one argument, namely the nrt binary name, similar to os.Args
	OsArgs []string
}

func (a *App) SetOutputStreams(cmd *cobra.Command) {
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)
	cmd.SetIn(a.Stdin)

	lo.ForEach(cmd.Commands(), func(sub *cobra.Command, _ int) {
		a.SetOutputStreams(sub)
	})
}

func RootCmd(ctx context.Context, app *App) (*cobra.Command, error) {
	var verbose bool

	cmd := &cobra.Command{
		Use:   NrtName,
		Short: "build and manage NovelRT projects",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetVerbose(verbose)
		},
	}

	defer app.SetOutputStreams(cmd)

	if len(app.OsArgs) == 0 {
		return nil, fmt.Errorf("App.OsArgs must contain at least one entry similar to os.Args")
	}

	cmd.SetArgs(app.OsArgs[1:])
	cmd.SetContext(ctx)
	cmd.AddGroup(&cobra.Group{
		ID:    projectGroupId,
		Title: "Project Commands",
	})
	cmd.AddGroup(&cobra.Group{
		ID:    sdkGroupId,
		Title: "SDK Commands",
	})
	cmd.PersistentFlags().BoolVar(&verbose, cmdutil.VerboseFlag, false, "verbose output, and verbose build tool output when building")

	if err := logging.InitLogging(); err != nil {
		return nil, err
	}

	config, err := sdkconfig.Get()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	cmd.AddCommand(
		setCmdGroup(projectGroupId, newproject.Cmd(config)),
		setCmdGroup(projectGroupId, resolve.Cmd()),
		setCmdGroup(projectGroupId, build.Cmd(config)),
		setCmdGroup(projectGroupId, test.Cmd()),
		setCmdGroup(projectGroupId, publish.Cmd(config)),
		setCmdGroup(sdkGroupId, engine.Cmd(config)),
		setCmdGroup(sdkGroupId, profiles.Cmd(config)),
		setCmdGroup(sdkGroupId, doctor.Cmd(config)),
		setCmdGroup(sdkGroupId, login.Cmd(config)),
		setCmdGroup(sdkGroupId, version.Cmd()),
	)

	v, err := yaml.Marshal(sdkversion.Get())
	if err != nil {
		return nil, err
	}
	cmd.Version = string(v)
	cmd.SetVersionTemplate("{{.Version}}")

	return cmd, nil
}

func setCmdGroup(id string, cmd *cobra.Command) *cobra.Command {
	cmd.GroupID = id
	return cmd
}
