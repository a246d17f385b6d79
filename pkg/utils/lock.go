// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/juju/fslock"
)

const lockPollInterval = 100 * time.Millisecond

// WithInstallLock runs action while holding the file lock at lockFilePath,
// blocking until it is free or ctx is done. Engine installs, uninstalls and
// conan configuration syncs share this lock so they never interleave.
// The OS drops the lock if the process dies while holding it.
func WithInstallLock(ctx context.Context, lockFilePath string, action func() error) error {
	if err := EnsureDirs(filepath.Dir(lockFilePath)); err != nil {
		return err
	}

	lock := fslock.New(lockFilePath)
	if err := acquire(ctx, lock, lockFilePath); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release lock", "file", lockFilePath, "err", err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return action()
}

// acquire polls since fslock has no context-aware Lock.
func acquire(ctx context.Context, lock *fslock.Lock, path string) error {
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for attempt := 0; ; attempt++ {
		err := lock.TryLock()
		if err == nil {
			return nil
		}
		if !errors.Is(err, fslock.ErrLocked) {
			return err
		}
		if attempt == 0 {
			slog.Info("another nrt process holds the lock, waiting", "file", path)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
