// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package conan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/utils"
)

const profilesDir = "profiles"

var (
	ErrNoProfile        = errors.New("no conan profile matches this platform")
	ErrAmbiguousProfile = errors.New("more than one conan profile matches this platform")
	ErrUnknownProfile   = errors.New("unknown conan profile")
)

// SyncConfig clones the conan configuration repository into dest, or pulls it
// when a clone already exists. Concurrent syncs are serialized on lockPath.
func SyncConfig(ctx context.Context, url, dest, lockPath string) error {
	return utils.WithInstallLock(ctx, lockPath, func() error {
		repo, err := git.PlainOpen(dest)
		if errors.Is(err, git.ErrRepositoryNotExists) {
			slog.Info("downloading conan configurations", "url", url)
			_, err = git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{URL: url, Depth: 1})
			if err != nil {
				return fmt.Errorf("failed to clone conan configuration from %s: %w", url, err)
			}
			return nil
		} else if err != nil {
			return err
		}

		wt, err := repo.Worktree()
		if err != nil {
			return err
		}
		slog.Info("updating conan configurations", "dir", dest)
		err = wt.PullContext(ctx, &git.PullOptions{RemoteName: git.DefaultRemoteName})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to update conan configuration in %s: %w", dest, err)
		}
		return nil
	})
}

// ProfilesDir is where a configuration checkout keeps its profiles.
func ProfilesDir(configDir string) string {
	p := filepath.Join(configDir, profilesDir)
	if ok, _ := utils.DirExists(p); ok {
		return p
	}
	return configDir
}

// ListProfiles returns the profile names of a configuration checkout, sorted.
func ListProfiles(configDir string) ([]string, error) {
	entries, err := os.ReadDir(ProfilesDir(configDir))
	if err != nil {
		return nil, err
	}
	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && !strings.HasPrefix(e.Name(), ".")
	})
	slices.Sort(names)
	return names, nil
}

// CandidateProfiles keeps the profiles named after the platform. Profiles with
// three or more dashes are specialised variants and are never picked automatically.
func CandidateProfiles(profiles []string, p *platform.Descriptor) []string {
	id := p.ProfileID()
	return lo.Filter(profiles, func(name string, _ int) bool {
		return strings.Contains(name, id) && strings.Count(name, "-") < 3
	})
}

// SelectProfile prefers an explicit choice, then the only candidate for the platform.
func SelectProfile(explicit string, configDir string, p *platform.Descriptor) (string, error) {
	profiles, err := ListProfiles(configDir)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	if explicit != "" {
		if slices.Contains(profiles, explicit) {
			return filepath.Join(ProfilesDir(configDir), explicit), nil
		}
		if info, err := os.Stat(explicit); err == nil && !info.IsDir() {
			return filepath.Abs(explicit)
		}
		return "", fmt.Errorf("%w %q. available profiles: %v", ErrUnknownProfile, explicit, profiles)
	}

	candidates := CandidateProfiles(profiles, p)
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w (%s). run 'nrt profiles --sync' or set a profile explicitly", ErrNoProfile, p.ProfileID())
	case 1:
		return filepath.Join(ProfilesDir(configDir), candidates[0]), nil
	default:
		return "", fmt.Errorf("%w: %s. choose one with --profile", ErrAmbiguousProfile, strings.Join(candidates, ", "))
	}
}
