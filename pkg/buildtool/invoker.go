// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fatih/color"
	"novelrt.io/x/sdk/pkg/merger"
	"novelrt.io/x/sdk/pkg/staging"
	"novelrt.io/x/sdk/pkg/utils"
)

// Installer fetches the resolved dependencies into the build directory before
// configuring. It returns a *ToolError for StepInstall when the installer fails.
type Installer interface {
	Install(ctx context.Context, cfg *merger.EffectiveConfig, buildDir string) (*Result, error)
}

type Invoker struct {
	Runner    Runner
	CMake     *CMake
	Installer Installer
	Printer   utils.RawPrinter
}

func NewInvoker(runner Runner, cmake *CMake, installer Installer, printer utils.RawPrinter) *Invoker {
	return &Invoker{Runner: runner, CMake: cmake, Installer: installer, Printer: printer}
}

type Request struct {
	Config    *merger.EffectiveConfig
	SourceDir string
	BuildDir  string
	// OutputDir is the root of the staged runtime layout; defaults to BuildDir
	OutputDir   string
	SkipInstall bool
}

func (r Request) outputDir() string {
	if r.OutputDir == "" {
		return r.BuildDir
	}
	return r.OutputDir
}

type StepReport struct {
	Step     Step
	Result   *Result
	Duration time.Duration
}

type Report struct {
	Steps  []StepReport
	Staged []staging.Result
	// BinDir is where the project executable and its runtime files were staged
	BinDir string
}

func (r *Report) Ran(step Step) bool {
	for _, s := range r.Steps {
		if s.Step == step {
			return true
		}
	}
	return false
}

// ExecutableSpec stages the project's own executable next to its libraries.
func ExecutableSpec(cfg *merger.EffectiveConfig) staging.ArtifactCopySpec {
	return staging.ArtifactCopySpec{
		Pattern:         cfg.Platform.ExecutableName(cfg.Project),
		DestinationRoot: staging.BinDir,
	}
}

// Run executes install, configure, build and stage in order and stops at the
// first failure. Files staged before a failure are left in place.
func (i *Invoker) Run(ctx context.Context, req Request) (*Report, error) {
	cfg := req.Config
	report := &Report{BinDir: filepath.Join(req.outputDir(), staging.BinDir)}

	if err := i.configure(ctx, report, req); err != nil {
		return report, err
	}

	i.status("Building %s...", cfg.Project)
	if err := i.step(ctx, report, StepBuild, cfg, i.CMake.Build(cfg, req.BuildDir)); err != nil {
		return report, err
	}

	specs := append(slices.Clone(cfg.Stage), ExecutableSpec(cfg))
	staged, err := staging.NewStager(&cfg.Platform).Stage(specs, req.BuildDir, req.outputDir())
	report.Staged = staged
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrStageFailed, err)
	}

	i.success("Built %s, staged %d files into %s", cfg.Project, staging.Total(staged), report.BinDir)
	return report, nil
}

// Configure installs the dependencies and configures the build directory without building.
func (i *Invoker) Configure(ctx context.Context, req Request) error {
	return i.configure(ctx, &Report{}, req)
}

func (i *Invoker) configure(ctx context.Context, report *Report, req Request) error {
	cfg := req.Config
	if i.Installer != nil && !req.SkipInstall {
		i.status("Installing %d dependencies...", len(cfg.Dependencies))
		start := time.Now()
		res, err := i.Installer.Install(ctx, cfg, req.BuildDir)
		if res != nil {
			report.Steps = append(report.Steps, StepReport{Step: StepInstall, Result: res, Duration: time.Since(start)})
		}
		if err != nil {
			return err
		}
	}

	i.status("Configuring %s (%s)...", cfg.Project, cfg.BuildType)
	return i.step(ctx, report, StepConfigure, cfg, i.CMake.Configure(cfg, req.SourceDir, req.BuildDir))
}

func (i *Invoker) step(ctx context.Context, report *Report, step Step, cfg *merger.EffectiveConfig, inv Invocation) error {
	inv.OnStdout, inv.OnStderr = OutputHandlers(&cfg.Platform, cfg.Verbose, step)
	slog.Debug("running build tool", "step", string(step), "command", inv.String())

	start := time.Now()
	res, err := i.Runner.Run(ctx, inv)
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	report.Steps = append(report.Steps, StepReport{Step: step, Result: res, Duration: time.Since(start)})
	if res.ExitCode != 0 {
		return NewToolError(step, inv, res)
	}
	return nil
}

func (i *Invoker) status(format string, args ...any) {
	if i.Printer != nil {
		i.Printer.Println(fmt.Sprintf(format, args...))
	}
}

func (i *Invoker) success(format string, args ...any) {
	if i.Printer != nil {
		i.Printer.Println(color.GreenString(format, args...))
	}
}
