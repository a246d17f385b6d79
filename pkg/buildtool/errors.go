// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInstallFailed          = errors.New("dependency install failed")
	ErrConfigureFailed        = errors.New("configure failed")
	ErrBuildFailed            = errors.New("build failed")
	ErrStageFailed            = errors.New("staging failed")
	ErrTestExecutableNotFound = errors.New("test executable not found")
	ErrTestFailed             = errors.New("test executable failed")
	ErrToolNotFound           = errors.New("tool not found")
)

type Step string

const (
	StepInstall   Step = "install"
	StepConfigure Step = "configure"
	StepBuild     Step = "build"
	StepStage     Step = "stage"
	StepTest      Step = "test"
)

func (s Step) sentinel() error {
	switch s {
	case StepInstall:
		return ErrInstallFailed
	case StepConfigure:
		return ErrConfigureFailed
	case StepBuild:
		return ErrBuildFailed
	case StepStage:
		return ErrStageFailed
	case StepTest:
		return ErrTestFailed
	default:
		return nil
	}
}

// ToolError is a step whose subprocess exited non-zero. Output is kept verbatim
// for diagnosis.
type ToolError struct {
	Step     Step
	Command  string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

func NewToolError(step Step, inv Invocation, res *Result) *ToolError {
	return &ToolError{
		Step:     step,
		Command:  inv.String(),
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s step failed with exit code %d (%s)", e.Step, e.ExitCode, e.Command)
	if last := lastLine(e.Stderr); last != "" {
		msg += ": " + last
	}
	return msg
}

func (e *ToolError) Is(target error) bool {
	s := e.Step.sentinel()
	return s != nil && target == s
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
