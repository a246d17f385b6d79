// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	nrt "novelrt.io/x/sdk/cmd/nrt/cmd"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/utils"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancelFn()

	if err := docsCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func docsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "docs <output dir>",
		Short: "generate the nrt CLI reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !lo.Contains([]string{"md", "rst"}, format) {
				return fmt.Errorf("unsupported --format %q: must be md or rst", format)
			}
			cmd.SilenceUsage = true

			if err := genDocs(cmd.Context(), args[0], format); err != nil {
				return err
			}
			cmd.Printf("successfully generated at %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "md", "md or rst")
	return cmd
}

func genDocs(ctx context.Context, dir, format string) error {
	// a throwaway home keeps the user's config out of the generated defaults
	tmp, deleteFn, err := utils.MkdirTemp("", "nrt-docs-")
	if err != nil {
		return err
	}
	defer func() { _ = deleteFn() }()
	if err := os.Setenv(sdkconfig.HomeEnvVar, tmp); err != nil {
		return err
	}

	root, err := nrt.RootCmd(ctx, &nrt.App{Stdout: io.Discard, Stderr: io.Discard, OsArgs: []string{nrt.NrtName}})
	if err != nil {
		return err
	}
	root.DisableAutoGenTag = true
	for _, c := range root.Commands() {
		c.Hidden = false
	}

	if err := utils.EnsureDirs(dir); err != nil {
		return err
	}

	if format == "rst" {
		if err := doc.GenReSTTreeCustom(root, dir, rstHeader, rstLink); err != nil {
			return err
		}
		return writeTOC(dir)
	}
	return doc.GenMarkdownTreeCustom(root, dir, frontMatter, func(s string) string { return s })
}

func title(filename, ext string) string {
	key := strings.TrimSuffix(filepath.Base(filename), ext)
	return strings.ReplaceAll(key, "_", " ")
}

func frontMatter(filename string) string {
	return fmt.Sprintf("---\ntitle: %s\nparent: CLI reference\n---\n\n", title(filename, ".md"))
}

func rstHeader(filename string) string {
	t := title(filename, ".rst")
	return fmt.Sprintf("%s\n%s\n\n", t, strings.Repeat("=", len(t)))
}

func rstLink(name, ref string) string {
	return fmt.Sprintf(":ref:`%s <%s>`", name, ref)
}

func writeTOC(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading output directory: %w", err)
	}

	var b strings.Builder
	b.WriteString(".. toctree::\n   :maxdepth: 2\n   :caption: CLI Reference:\n\n")
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".rst" && e.Name() != "index.rst" {
			fmt.Fprintf(&b, "   %s\n", strings.TrimSuffix(e.Name(), ".rst"))
		}
	}
	return os.WriteFile(filepath.Join(dir, "index.rst"), []byte(b.String()), 0o644)
}
