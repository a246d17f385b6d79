// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"novelrt.io/x/sdk/pkg/platform"
)

type TestRequest struct {
	// StagedDir holds the executable and is used as its working directory
	StagedDir string
	Name      string
	Args      []string
	// Expect, when set, must appear in the executable's stdout
	Expect string
	// OnStdout receives each output line; by default lines are logged at info
	OnStdout LineHandler
}

// RunTest runs a staged executable from within its directory. A non-zero exit is
// returned as a *ToolError for StepTest carrying the exit code.
func RunTest(ctx context.Context, runner Runner, p *platform.Descriptor, req TestRequest) (*Result, error) {
	exe, err := findExecutable(p, req.StagedDir, req.Name)
	if err != nil {
		return nil, err
	}

	onStdout := req.OnStdout
	if onStdout == nil {
		onStdout = func(line string) { slog.Info(line, "step", string(StepTest)) }
	}
	inv := Invocation{
		Path:     exe,
		Args:     req.Args,
		Dir:      filepath.Dir(exe),
		OnStdout: onStdout,
		OnStderr: func(line string) { slog.Warn(line, "step", string(StepTest)) },
	}

	res, err := runner.Run(ctx, inv)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return res, NewToolError(StepTest, inv, res)
	}
	if req.Expect != "" && !strings.Contains(string(res.Stdout), req.Expect) {
		return res, fmt.Errorf("%w: output of %s did not contain %q", ErrTestFailed, req.Name, req.Expect)
	}
	return res, nil
}

func findExecutable(p *platform.Descriptor, stagedDir, name string) (string, error) {
	dir, err := filepath.Abs(stagedDir)
	if err != nil {
		return "", err
	}
	exe := filepath.Join(dir, p.ExecutableName(name))
	info, err := os.Stat(exe)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTestExecutableNotFound, exe)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrTestExecutableNotFound, exe)
	}
	return exe, nil
}
