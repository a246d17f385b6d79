// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sdkerrors

import (
	"errors"

	"novelrt.io/x/sdk/pkg/buildtool"
	"novelrt.io/x/sdk/pkg/conan"
	"novelrt.io/x/sdk/pkg/engine"
	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/toolcheck"
)

const (
	MalformedManifest      = "MALFORMED_MANIFEST"
	ManifestNotFound       = "MANIFEST_NOT_FOUND"
	ConfigureFailed        = "CONFIGURE_FAILED"
	BuildFailed            = "BUILD_FAILED"
	StageFailed            = "STAGE_FAILED"
	TestExecutableNotFound = "TEST_EXECUTABLE_NOT_FOUND"
	TestFailed             = "TEST_FAILED"
	ToolUnavailable        = "TOOL_UNAVAILABLE"
	InstallFailed          = "INSTALL_FAILED"
	EngineNotInstalled     = "ENGINE_NOT_INSTALLED"
	UnknownError           = "UNKNOWN_ERROR"
)

var exitCodes = map[string]int{
	MalformedManifest:      2,
	ConfigureFailed:        3,
	BuildFailed:            4,
	TestExecutableNotFound: 5,
	ToolUnavailable:        6,
	InstallFailed:          7,
}

// classification is checked in order; the first sentinel matched wins.
var classification = []struct {
	target error
	code   string
}{
	{manifest.ErrMalformedManifest, MalformedManifest},
	{manifest.ErrNoManifest, ManifestNotFound},
	{buildtool.ErrToolNotFound, ToolUnavailable},
	{toolcheck.ErrToolTooOld, ToolUnavailable},
	{buildtool.ErrInstallFailed, InstallFailed},
	{conan.ErrNoProfile, InstallFailed},
	{conan.ErrAmbiguousProfile, InstallFailed},
	{conan.ErrUnknownProfile, InstallFailed},
	{buildtool.ErrConfigureFailed, ConfigureFailed},
	{buildtool.ErrBuildFailed, BuildFailed},
	{buildtool.ErrStageFailed, StageFailed},
	{buildtool.ErrTestExecutableNotFound, TestExecutableNotFound},
	{buildtool.ErrTestFailed, TestFailed},
	{engine.ErrEngineNotInstalled, EngineNotInstalled},
}

type SDKError struct {
	Code  string
	Cause error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return e.Code + ": " + e.Cause.Error()
	}
	return e.Code
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

func (e *SDKError) MarshalYAML() (any, error) {
	var cause string
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return map[string]any{
		"code":  e.Code,
		"cause": cause,
	}, nil
}

// ExitCode is the process exit status for the error. A test executable that exited
// non-zero passes its own code through.
func (e *SDKError) ExitCode() int {
	if e.Code == TestFailed {
		var toolErr *buildtool.ToolError
		if errors.As(e.Cause, &toolErr) && toolErr.ExitCode != 0 {
			return toolErr.ExitCode
		}
	}
	if c, ok := exitCodes[e.Code]; ok {
		return c
	}
	return 1
}

var _ error = (*SDKError)(nil)

// Standardize classifies any error. nil stays nil.
func Standardize(err error) *SDKError {
	if err == nil {
		return nil
	}

	var sdkErr *SDKError
	if errors.As(err, &sdkErr) {
		return sdkErr
	}

	for _, c := range classification {
		if errors.Is(err, c.target) {
			return &SDKError{Code: c.code, Cause: err}
		}
	}
	return &SDKError{Code: UnknownError, Cause: err}
}

// ExitCode of any error, 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return Standardize(err).ExitCode()
}
