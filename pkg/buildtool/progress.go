// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"log/slog"
	"regexp"
	"strings"

	"novelrt.io/x/sdk/pkg/platform"
)

var (
	makeProgress = regexp.MustCompile(`^\[\s*\d+%\]`)
	msbuildOut   = regexp.MustCompile(`(?i)[^\\/\s]+\.(dll|exe)\b`)
)

// Progress extracts a short status from a line of build tool output. Makefile and
// Ninja style generators report "[ 42%] ..."; MSBuild names each linked binary.
func Progress(p *platform.Descriptor, line string) (string, bool) {
	if p.IsWindowsLike() {
		if m := msbuildOut.FindString(line); m != "" {
			return "Finished building " + m, true
		}
		return "", false
	}
	if m := makeProgress.FindString(line); m != "" {
		return "Building... " + m, true
	}
	return "", false
}

// OutputHandlers logs build tool output: everything at debug level when verbose,
// otherwise only progress lines at info. Stderr is always logged as a warning.
func OutputHandlers(p *platform.Descriptor, verbose bool, step Step) (stdout, stderr LineHandler) {
	logger := slog.With("step", string(step))
	stdout = func(line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		if verbose {
			logger.Debug(line)
			return
		}
		if status, ok := Progress(p, line); ok {
			logger.Info(status)
		}
	}
	stderr = func(line string) {
		if strings.TrimSpace(line) != "" {
			logger.Warn(line)
		}
	}
	return stdout, stderr
}
