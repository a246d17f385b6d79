// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/cmd/nrt/cmd/cmdutil"
	"novelrt.io/x/sdk/pkg/lockfile"
	"novelrt.io/x/sdk/pkg/merger"
)

func Cmd() *cobra.Command {
	var flags cmdutil.ResolveFlags
	var output, dir string
	var lock, check bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "show the dependencies and options a build would use",
		Long: `Loads the project manifest and merges the SDK defaults, the manifest's options,
the conditions that hold for the target platform and the command line overrides.
The result is printed in a stable order so it can be diffed between runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lock && check {
				return fmt.Errorf("--lock and --check cannot be used together")
			}
			cmd.SilenceUsage = true

			m, cfg, err := flags.Resolve(cmd, dir)
			if err != nil {
				return err
			}
			for _, c := range cfg.Conflicts {
				cmd.PrintErrln(color.YellowString("warning: %s", c.Error()))
			}

			lockPath := lockfile.Path(m.Dir())
			switch {
			case lock:
				if err := lockfile.Write(lockPath, cfg); err != nil {
					return err
				}
				slog.Debug("lockfile written", "path", lockPath)
			case check:
				if err := lockfile.Check(lockPath, cfg); err != nil {
					return err
				}
			}

			switch output {
			case "yaml":
				bytes, err := cfg.Canonical()
				if err != nil {
					return err
				}
				cmd.Print(string(bytes))
			case "table":
				cmd.Println(Table(cfg))
			default:
				return fmt.Errorf("output format not supported: %s", output)
			}
			return nil
		},
	}

	flags.AddFlags(cmd.Flags(), true)
	cmd.Flags().StringVar(&output, "output", "yaml", "output format: yaml, table")
	cmd.Flags().StringVarP(&dir, "project", "p", "", "project directory (defaults to the nearest novelrt.yaml)")
	cmd.Flags().BoolVar(&lock, "lock", false, "write the resolution to "+lockfile.FileName)
	cmd.Flags().BoolVar(&check, "check", false, "fail when "+lockfile.FileName+" no longer matches the resolution")
	return cmd
}

// Table renders the resolved dependencies followed by the merged options.
func Table(cfg *merger.EffectiveConfig) string {
	heading := lipgloss.NewStyle().Bold(true)
	faint := lipgloss.NewStyle().Faint(true)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false)

	t.Row(heading.Render(cfg.Project+" "+cfg.Version), faint.Render(cfg.Platform.String()+" "+cfg.BuildType.String()))
	for _, d := range cfg.Dependencies {
		t.Row(d.Name(), d.VersionConstraint())
	}
	for k, v := range cfg.Options.All() {
		t.Row(faint.Render(k), v.String())
	}
	return t.String()
}
