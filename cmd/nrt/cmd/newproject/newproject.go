// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package newproject

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/cmd/nrt/cmd/build"
	"novelrt.io/x/sdk/cmd/nrt/cmd/cmdutil"
	"novelrt.io/x/sdk/pkg/buildtool"
	"novelrt.io/x/sdk/pkg/engine"
	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/merger"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/project"
	"novelrt.io/x/sdk/pkg/sdkconfig"
)

type newCmd struct {
	opts             project.Opts
	configure, build bool
	skipInstall      bool
}

func Cmd(config *sdkconfig.Config) *cobra.Command {
	c := &newCmd{}
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "create a new NovelRT project",
		Long: `Creates a new project from the built-in template.

The project is generated against the newest installed engine unless --engine-location
points at another engine build. Without any engine the generated CMakeLists.txt uses find_package.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.opts.Name = args[0]
			}
			if c.opts.Dir == "" {
				if c.opts.Name == "" {
					return fmt.Errorf("either a project name or --output is required")
				}
				c.opts.Dir = c.opts.Name
			}
			cmd.SilenceUsage = true
			return c.run(cmd, config)
		},
	}

	cmd.Flags().StringVarP(&c.opts.Dir, "output", "o", "", "directory to create the project in (defaults to ./<name>)")
	cmd.Flags().StringVar(&c.opts.Description, "description", "", "project description")
	cmd.Flags().StringVar(&c.opts.Version, "project-version", project.DefaultVersion, "initial project version")
	cmd.Flags().StringVar(&c.opts.EnginePath, "engine-location", "", "path of an engine build to use instead of the newest installed engine")
	cmd.Flags().BoolVarP(&c.opts.Force, "force", "f", false, "overwrite existing files")
	cmd.Flags().BoolVarP(&c.configure, "configure", "c", false, "configure the project after creating it")
	cmd.Flags().BoolVarP(&c.build, "build", "b", false, "build the project after creating it")
	cmd.Flags().BoolVar(&c.skipInstall, "skip-install", false, "don't install dependencies when configuring or building")
	return cmd
}

func (c *newCmd) run(cmd *cobra.Command, config *sdkconfig.Config) error {
	if c.opts.EnginePath == "" {
		latest, err := engine.Latest(config)
		switch {
		case errors.Is(err, engine.ErrEngineNotInstalled):
			slog.Warn("no engine is installed, the project will look for NovelRT with find_package. see 'nrt engine install'")
		case err != nil:
			return err
		default:
			slog.Info("using engine", "version", latest.Version.String())
			c.opts.EnginePath = latest.Path
		}
	}

	res, err := project.Generate(c.opts)
	if err != nil {
		return err
	}
	cmd.Println(color.GreenString("Created %s in %s", res.Name, res.Dir))
	for _, f := range res.Files {
		cmd.Println("  " + f)
	}

	if !c.configure && !c.build {
		return nil
	}
	return c.buildProject(cmd, config, res)
}

func (c *newCmd) buildProject(cmd *cobra.Command, config *sdkconfig.Config, res *project.Result) error {
	ctx := cmd.Context()
	m, err := manifest.Read(filepath.Join(res.Dir, manifest.FileNames[0]))
	if err != nil {
		return err
	}
	p := platform.Current()
	cfg, err := merger.Merge(m, merger.SDKDefaults(), *p, merger.Overrides{})
	if err != nil {
		return err
	}

	skip := cmdutil.SkipInstall(config, c.skipInstall)
	invoker, err := cmdutil.NewInvoker(ctx, config, cmd, p, skip)
	if err != nil {
		return err
	}

	req := buildtool.Request{
		Config:      cfg,
		SourceDir:   res.Dir,
		BuildDir:    filepath.Join(res.Dir, build.DefaultBuildDir),
		SkipInstall: skip,
	}
	if c.build {
		_, err = invoker.Run(ctx, req)
		return err
	}
	return invoker.Configure(ctx, req)
}
