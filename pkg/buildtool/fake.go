// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"bufio"
	"bytes"
	"context"
	"sync"
)

// FakeRunner records invocations instead of spawning processes. Respond decides
// the outcome of each call; when nil every call succeeds with no output.
type FakeRunner struct {
	mu      sync.Mutex
	Calls   []Invocation
	Respond func(inv Invocation) (*Result, error)
}

func (f *FakeRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, inv)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Respond == nil {
		return &Result{}, nil
	}
	res, err := f.Respond(inv)
	if res != nil {
		feed(inv.OnStdout, res.Stdout)
		feed(inv.OnStderr, res.Stderr)
	}
	return res, err
}

func feed(h LineHandler, b []byte) {
	if h == nil {
		return
	}
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		h(s.Text())
	}
}

var _ Runner = (*FakeRunner)(nil)
