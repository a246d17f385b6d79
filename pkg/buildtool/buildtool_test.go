// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/merger"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/staging"
	"novelrt.io/x/sdk/pkg/utils"
)

var linux = platform.Descriptor{OS: platform.Linux, Arch: "x86_64", Compiler: "gcc"}

func config(p platform.Descriptor) *merger.EffectiveConfig {
	return &merger.EffectiveConfig{
		Project:   "Sample",
		Version:   "0.1.0",
		Platform:  p,
		BuildType: merger.Debug,
		Options: merger.NewOptionSet(manifest.Options{
			merger.ConfigOption: "Debug",
			"freetype:shared":   manifest.True,
		}),
		Stage: staging.DefaultSpecs(),
	}
}

func TestConfigureArgs(t *testing.T) {
	cfg := &merger.EffectiveConfig{
		BuildType:   merger.Release,
		Verbose:     true,
		EngineBuild: true,
		Options: merger.NewOptionSet(manifest.Options{
			merger.ConfigOption:      "Release",
			merger.VerboseOption:     manifest.True,
			merger.EngineBuildOption: manifest.True,
			"NOVELRT_USE_X":          manifest.True,
			"NOVELRT_BUILD_SAMPLES":  manifest.True,
			"freetype:shared":        manifest.True,
			"SOME":                   "value",
		}),
		Definitions: manifest.Options{"EXTRA": "42", "OFF_SWITCH": manifest.False},
	}

	args := NewCMake("").ConfigureArgs(cfg, "src", "build")
	assert.Equal(t, []string{
		"-S", "src",
		"-B", "build",
		"--no-warn-unused-cli",
		"-DCMAKE_BUILD_TYPE=Release",
		"-DCMAKE_VERBOSE_MAKEFILE=ON",
		"-DEXTRA=42",
		"-DNOVELRT_BUILD_DOCUMENTATION=OFF",
		"-DNOVELRT_BUILD_SAMPLES=ON",
		"-DNOVELRT_USE_X=ON",
		"-DOFF_SWITCH=OFF",
		"-DSOME=value",
	}, args)

	assert.Equal(t, []string{"--build", "build", "--config", "Release", "--verbose"}, NewCMake("").BuildArgs(cfg, "build"))
	assert.Equal(t, []string{"--build", "build", "--config", "Debug"}, NewCMake("").BuildArgs(config(linux), "build"))
}

func TestConfigureArgsAreStable(t *testing.T) {
	cfg := config(linux)
	cfg.Definitions = manifest.Options{"B": "1", "A": "2", "C": "x"}
	first := NewCMake("").ConfigureArgs(cfg, "s", "b")
	for range 10 {
		assert.Equal(t, first, NewCMake("").ConfigureArgs(cfg, "s", "b"))
	}
}

func writeBuildOutput(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o755))
	}
}

func TestInvokerPipeline(t *testing.T) {
	build := t.TempDir()
	writeBuildOutput(t, build, "src/Sample/Sample", "shaders/a.spv", "shaders/b.spv", "lib/glfw.dll")

	runner := &FakeRunner{}
	inv := NewInvoker(runner, NewCMake("cmake"), nil, utils.StdPrinter{})
	report, err := inv.Run(context.Background(), Request{Config: config(linux), SourceDir: "src", BuildDir: build})
	require.NoError(t, err)

	require.Len(t, runner.Calls, 2)
	assert.Equal(t, "-S", runner.Calls[0].Args[0])
	assert.Equal(t, "--build", runner.Calls[1].Args[0])
	assert.True(t, report.Ran(StepConfigure))
	assert.True(t, report.Ran(StepBuild))
	assert.False(t, report.Ran(StepInstall))

	assert.Equal(t, 3, staging.Total(report.Staged))
	assert.FileExists(t, filepath.Join(report.BinDir, "Sample"))
	assert.FileExists(t, filepath.Join(report.BinDir, "Resources", "Shaders", "a.spv"))
	assert.NoFileExists(t, filepath.Join(report.BinDir, "glfw.dll"))
}

func TestConfigureFailureHaltsPipeline(t *testing.T) {
	runner := &FakeRunner{Respond: func(inv Invocation) (*Result, error) {
		if slices.Contains(inv.Args, "-S") {
			return &Result{ExitCode: 1, Stdout: []byte("-- Configuring incomplete"), Stderr: []byte("CMake Error: could not find glfw3")}, nil
		}
		return &Result{}, nil
	}}

	build := t.TempDir()
	writeBuildOutput(t, build, "a.spv")
	report, err := NewInvoker(runner, NewCMake(""), nil, nil).Run(context.Background(), Request{Config: config(linux), SourceDir: "src", BuildDir: build})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigureFailed)
	assert.NotErrorIs(t, err, ErrBuildFailed)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, 1, toolErr.ExitCode)
	assert.Equal(t, StepConfigure, toolErr.Step)
	assert.Contains(t, string(toolErr.Stderr), "could not find glfw3")
	assert.Contains(t, toolErr.Error(), "could not find glfw3")

	assert.Len(t, runner.Calls, 1)
	assert.False(t, report.Ran(StepBuild))
	assert.Empty(t, report.Staged)
	assert.NoDirExists(t, filepath.Join(build, "bin"))
}

func TestBuildFailure(t *testing.T) {
	runner := &FakeRunner{Respond: func(inv Invocation) (*Result, error) {
		if inv.Args[0] == "--build" {
			return &Result{ExitCode: 2}, nil
		}
		return &Result{}, nil
	}}
	_, err := NewInvoker(runner, NewCMake(""), nil, nil).Run(context.Background(), Request{Config: config(linux), BuildDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrBuildFailed)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, 2, toolErr.ExitCode)
}

type fakeInstaller struct {
	err   error
	calls int
}

func (f *fakeInstaller) Install(_ context.Context, _ *merger.EffectiveConfig, _ string) (*Result, error) {
	f.calls++
	if f.err != nil {
		return &Result{ExitCode: 1}, f.err
	}
	return &Result{}, nil
}

func TestInstallerRunsFirst(t *testing.T) {
	runner := &FakeRunner{}
	installer := &fakeInstaller{err: &ToolError{Step: StepInstall, ExitCode: 1}}
	invoker := NewInvoker(runner, NewCMake(""), installer, nil)

	report, err := invoker.Run(context.Background(), Request{Config: config(linux), BuildDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrInstallFailed)
	assert.Empty(t, runner.Calls)
	assert.True(t, report.Ran(StepInstall))

	installer.err = nil
	_, err = invoker.Run(context.Background(), Request{Config: config(linux), BuildDir: t.TempDir(), SkipInstall: true})
	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)
	assert.Len(t, runner.Calls, 2)
}

func TestConfigureOnly(t *testing.T) {
	runner := &FakeRunner{}
	installer := &fakeInstaller{}
	build := t.TempDir()

	err := NewInvoker(runner, NewCMake(""), installer, nil).Configure(context.Background(), Request{Config: config(linux), SourceDir: "src", BuildDir: build})
	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)
	require.Len(t, runner.Calls, 1)
	assert.Contains(t, runner.Calls[0].Args, "-B")
	assert.NotContains(t, runner.Calls[0].Args, "--build")
}

func TestRunTest(t *testing.T) {
	staged := t.TempDir()
	writeBuildOutput(t, staged, "Sample", "Game.exe")

	runner := &FakeRunner{Respond: func(inv Invocation) (*Result, error) {
		return &Result{Stdout: []byte("Hello from NovelRT\n")}, nil
	}}
	res, err := RunTest(context.Background(), runner, &linux, TestRequest{StagedDir: staged, Name: "Sample", Expect: "Hello"})
	require.NoError(t, err)
	assert.Zero(t, res.ExitCode)
	assert.Equal(t, evalSymlinks(t, staged), evalSymlinks(t, runner.Calls[0].Dir))

	windows := platform.Descriptor{OS: platform.Windows, Arch: "x86_64", Compiler: "msvc"}
	_, err = RunTest(context.Background(), runner, &windows, TestRequest{StagedDir: staged, Name: "Game"})
	require.NoError(t, err)
	assert.Equal(t, "Game.exe", filepath.Base(runner.Calls[1].Path))

	_, err = RunTest(context.Background(), runner, &linux, TestRequest{StagedDir: staged, Name: "Sample", Expect: "Goodbye"})
	assert.ErrorIs(t, err, ErrTestFailed)

	_, err = RunTest(context.Background(), runner, &linux, TestRequest{StagedDir: staged, Name: "Missing"})
	assert.ErrorIs(t, err, ErrTestExecutableNotFound)
	assert.Len(t, runner.Calls, 3)
}

func TestRunTestPropagatesExitCode(t *testing.T) {
	staged := t.TempDir()
	writeBuildOutput(t, staged, "Sample")
	runner := &FakeRunner{Respond: func(Invocation) (*Result, error) {
		return &Result{ExitCode: 42}, nil
	}}
	res, err := RunTest(context.Background(), runner, &linux, TestRequest{StagedDir: staged, Name: "Sample"})
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, 42, toolErr.ExitCode)
	assert.Equal(t, 42, res.ExitCode)
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	var out, errs []string
	res, err := NewExecRunner().Run(context.Background(), Invocation{
		Path:     "sh",
		Args:     []string{"-c", "echo one; echo two; printf partial; echo oops >&2; exit 3"},
		Env:      map[string]string{"NRT_TEST": "1"},
		OnStdout: func(l string) { out = append(out, l) },
		OnStderr: func(l string) { errs = append(errs, l) },
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, []string{"one", "two", "partial"}, out)
	assert.Equal(t, []string{"oops"}, errs)
	assert.Equal(t, "one\ntwo\npartial", string(res.Stdout))

	_, err = NewExecRunner().Run(context.Background(), Invocation{Path: "nrt-no-such-tool-anywhere"})
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestProgress(t *testing.T) {
	status, ok := Progress(&linux, "[ 42%] Building CXX object src/Sample/CMakeFiles/Sample.dir/main.cpp.o")
	require.True(t, ok)
	assert.Equal(t, "Building... [ 42%]", status)

	_, ok = Progress(&linux, "-- Configuring done")
	assert.False(t, ok)

	windows := &platform.Descriptor{OS: platform.Windows}
	status, ok = Progress(windows, `  Sample.vcxproj -> C:\work\build\src\Sample\Debug\Sample.exe`)
	require.True(t, ok)
	assert.Equal(t, "Finished building Sample.exe", status)
}

func evalSymlinks(t *testing.T, p string) string {
	t.Helper()
	r, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return r
}
