// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package toolcheck

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"novelrt.io/x/sdk/pkg/buildtool"
)

var (
	ErrToolNotFound = buildtool.ErrToolNotFound
	ErrToolTooOld   = errors.New("tool is too old")
)

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// Minimums are the oldest tool versions the build is known to work with, keyed by tool name.
var Minimums = map[string]*semver.Version{
	"cmake": semver.MustParse("3.19.8"),
	"conan": semver.MustParse("1.43.0"),
}

type Tool struct {
	Name    string
	Path    string
	Version *semver.Version
}

func (t *Tool) String() string {
	if t.Version == nil {
		return t.Name
	}
	return fmt.Sprintf("%s %s", t.Name, t.Version)
}

// Probe runs `<path> --version` and checks the reported version against the tool's minimum.
// The tool's name is the base name of path without extension.
func Probe(ctx context.Context, runner buildtool.Runner, path string) (*Tool, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tool := &Tool{Name: name, Path: path}

	res, err := runner.Run(ctx, buildtool.Invocation{Path: path, Args: []string{"--version"}})
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return nil, fmt.Errorf("%w: %s. make sure it is installed and on your PATH", ErrToolNotFound, path)
		}
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: '%s --version' exited with code %d", ErrToolNotFound, path, res.ExitCode)
	}

	v, err := ParseVersion(string(res.Stdout) + string(res.Stderr))
	if err != nil {
		return nil, fmt.Errorf("failed to determine %s version: %w", name, err)
	}
	tool.Version = v

	if minimum, ok := Minimums[strings.ToLower(name)]; ok && v.LessThan(minimum) {
		return tool, fmt.Errorf("%w: %s is %s but at least %s is required", ErrToolTooOld, name, v, minimum)
	}
	return tool, nil
}

// ParseVersion extracts the first x.y.z version from a tool's --version output.
func ParseVersion(output string) (*semver.Version, error) {
	m := versionPattern.FindString(output)
	if m == "" {
		return nil, fmt.Errorf("no version found in %q", strings.TrimSpace(output))
	}
	return semver.NewVersion(m)
}
