// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// LineHandler receives subprocess output one line at a time, without the newline.
type LineHandler func(line string)

type Invocation struct {
	Path string
	Args []string
	// Dir is the working directory; empty means the current one
	Dir string
	// Env is added on top of the current environment
	Env      map[string]string
	OnStdout LineHandler
	OnStderr LineHandler
}

func (i Invocation) String() string {
	return strings.Join(append([]string{i.Path}, i.Args...), " ")
}

// Result of a subprocess that ran to completion, successfully or not.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner blocks until the subprocess exits. A non-zero exit code is reported
// through Result, not as an error; errors mean the process could not be run.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

type ExecRunner struct {
	Stdin io.Reader
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = r.Stdin

	env := lo.MapToSlice(inv.Env, func(key string, value string) string {
		return fmt.Sprintf("%s=%s", key, value)
	})
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	outLines := newLineWriter(inv.OnStdout)
	errLines := newLineWriter(inv.OnStderr)
	cmd.Stdout = io.MultiWriter(&stdout, outLines)
	cmd.Stderr = io.MultiWriter(&stderr, errLines)

	err := cmd.Run()
	outLines.Flush()
	errLines.Flush()

	result := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			result.ExitCode = exitError.ExitCode()
			return result, nil
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, inv.Path)
		}
		return nil, fmt.Errorf("failed to spawn %q: %w", inv.Path, err)
	}
	return result, nil
}

var _ Runner = (*ExecRunner)(nil)

// lineWriter splits a byte stream into lines for a LineHandler.
type lineWriter struct {
	mu      sync.Mutex
	handler LineHandler
	pending []byte
}

func newLineWriter(h LineHandler) *lineWriter {
	return &lineWriter{handler: h}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if w.handler == nil {
		return len(p), nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.handler(strings.TrimRight(string(w.pending[:i]), "\r"))
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) Flush() {
	if w.handler == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) > 0 {
		w.handler(strings.TrimRight(string(w.pending), "\r"))
		w.pending = nil
	}
}
