// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbose(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	require.NoError(t, initLogging(&buf, "warn"))
	slog.Info("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	assert.Equal(t, slog.LevelDebug, Level())
	slog.Debug("configuring", "dir", "build")
	assert.Contains(t, buf.String(), "msg=configuring dir=build")

	assert.Error(t, initLogging(&buf, "chatty"))
}
