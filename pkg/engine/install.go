// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/sdkconfig/sdkremote"
	"novelrt.io/x/sdk/pkg/utils"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/content/oci"
)

// Install resolves tag and installs the build for p, unless that version is already
// installed. Blobs are kept in the oci-layout cache, so reinstalling doesn't download again.
func Install(ctx context.Context, config *sdkconfig.Config, client *sdkremote.Remote, tag string, p *platform.Descriptor) (*Installed, error) {
	version, err := Resolve(ctx, client, tag)
	if err != nil {
		return nil, err
	}
	if installed, err := Get(config, version); err == nil {
		slog.Info("engine already installed", "version", version.String(), "path", installed.Path)
		return installed, nil
	}

	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}
	dest := config.EngineDir(version.String())
	err = utils.WithInstallLock(ctx, config.InstallLockPath, func() error {
		if ok, err := utils.DirExists(dest); err != nil || ok {
			return err
		}

		tmp, cleanup, err := utils.MkdirTemp(config.EnginePath, ".install-")
		if err != nil {
			return err
		}
		defer func() { _ = cleanup() }()

		if err := pull(ctx, config, client, version.String(), tmp, p); err != nil {
			return err
		}
		return os.Rename(tmp, dest)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to install engine %s: %w", version, err)
	}

	slog.Info("installed engine", "version", version.String(), "path", dest)
	return &Installed{Version: version, Path: dest}, nil
}

func pull(ctx context.Context, config *sdkconfig.Config, client *sdkremote.Remote, tag, destPath string, p *platform.Descriptor) error {
	repo, err := client.Repo(artifact.RepoName())
	if err != nil {
		return err
	}
	index, err := fetchIndex(ctx, repo, tag)
	if err != nil {
		return err
	}
	target, err := FindTargetPlatform(index.Manifests, p)
	if err != nil {
		return err
	}

	cache, err := oci.New(config.OciLayoutCache)
	if err != nil {
		return err
	}
	if err := oras.CopyGraph(ctx, repo, cache, *target, oras.DefaultCopyGraphOptions); err != nil {
		return err
	}

	dest, err := file.New(destPath)
	if err != nil {
		return err
	}
	defer dest.Close()
	dest.PreservePermissions = true
	dest.DisableOverwrite = true

	return oras.CopyGraph(ctx, cache, dest, *target, applyFileInfo(destPath))
}

// applyFileInfo restores the mode and mtime recorded on each layer once it has been written.
func applyFileInfo(root string) oras.CopyGraphOptions {
	opts := oras.DefaultCopyGraphOptions
	opts.PostCopy = func(ctx context.Context, desc v1.Descriptor) error {
		if desc.MediaType != artifact.FileMediaType() {
			return nil
		}
		fi, err := fileInfoFromAnnotations(desc.Annotations)
		if err != nil {
			return err
		}
		return fi.apply(root)
	}
	return opts
}
