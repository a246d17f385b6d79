// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"io"
	"log/slog"
	"os"

	"novelrt.io/x/sdk/pkg/sdkconfig"
)

var level = new(slog.LevelVar)

func InitLogging() error {
	logLevel, ok := os.LookupEnv(sdkconfig.LogLevelEnvVar)
	if !ok {
		return initLogging(os.Stderr, "info")
	}
	return initLogging(os.Stderr, logLevel)
}

func initLogging(w io.Writer, logLevel string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(logLevel)); err != nil {
		return err
	}
	level.Set(l)

	slogHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(slogHandler))
	return nil
}

// SetVerbose lowers the level to debug. It never raises a level already below debug.
func SetVerbose(verbose bool) {
	if verbose && level.Level() > slog.LevelDebug {
		level.Set(slog.LevelDebug)
	}
}

func Level() slog.Level {
	return level.Level()
}
