// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"novelrt.io/x/sdk/pkg/buildtool"
	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/merger"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/utils"
)

// WorkDirName is the scratch directory inside the project a release is built in.
const WorkDirName = "PublishOutput"

var ErrOutputNotEmpty = errors.New("the publish output directory is not empty")

type Opts struct {
	Manifest    *manifest.Manifest
	Defaults    merger.Defaults
	Platform    platform.Descriptor
	Overrides   merger.Overrides
	OutputDir   string
	SkipInstall bool
}

type Publisher struct {
	invoker *buildtool.Invoker
	printer utils.RawPrinter
}

func New(invoker *buildtool.Invoker, printer utils.RawPrinter) *Publisher {
	return &Publisher{invoker: invoker, printer: printer}
}

// Publish builds a release of the project from scratch and moves the staged
// runtime tree to OutputDir, which must not exist or be empty.
func (p *Publisher) Publish(ctx context.Context, opts Opts) (*buildtool.Report, error) {
	if err := ensureEmpty(opts.OutputDir); err != nil {
		return nil, err
	}

	release := merger.Release
	overrides := opts.Overrides
	overrides.BuildType = &release
	cfg, err := merger.Merge(opts.Manifest, opts.Defaults, opts.Platform, overrides)
	if err != nil {
		return nil, err
	}

	workDir := filepath.Join(opts.Manifest.Dir(), WorkDirName)
	if err := os.RemoveAll(workDir); err != nil {
		return nil, err
	}
	if err := utils.EnsureDirs(workDir); err != nil {
		return nil, err
	}

	report, err := p.invoker.Run(ctx, buildtool.Request{
		Config:      cfg,
		SourceDir:   opts.Manifest.Dir(),
		BuildDir:    filepath.Join(workDir, "build"),
		OutputDir:   workDir,
		SkipInstall: opts.SkipInstall,
	})
	if err != nil {
		return report, err
	}

	// the build may have taken a while; don't clobber anything written meanwhile
	if err := ensureEmpty(opts.OutputDir); err != nil {
		return report, err
	}
	if err := move(report.BinDir, opts.OutputDir); err != nil {
		return report, fmt.Errorf("failed to move release to %s: %w", opts.OutputDir, err)
	}

	licenses, err := CollectLicenses(filepath.Join(workDir, "build"))
	if err != nil {
		return report, err
	}
	if len(licenses) > 0 {
		if err := WriteLicensesFile(licenses, opts.OutputDir); err != nil {
			return report, err
		}
		slog.Debug("wrote licenses", "dependencies", len(licenses))
	}
	if err := os.RemoveAll(workDir); err != nil {
		slog.Warn("failed to clean up publish work directory", "dir", workDir, "err", err.Error())
	}

	report.BinDir = opts.OutputDir
	if p.printer != nil {
		p.printer.Println(color.GreenString("Published %s %s to %s", cfg.Project, cfg.Version, opts.OutputDir))
	}
	return report, nil
}

func ensureEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s", ErrOutputNotEmpty, dir)
	}
	return nil
}

// move renames src to dst, falling back to a copy when they sit on different volumes.
func move(src, dst string) error {
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := utils.EnsureDirs(filepath.Dir(dst)); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	slog.Debug("rename failed, copying release instead", "from", src, "to", dst)
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return utils.CopyFile(path, filepath.Join(dst, rel))
	})
	if err != nil {
		return err
	}
	return os.RemoveAll(src)
}
