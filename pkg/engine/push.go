// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/opencontainers/image-spec/specs-go"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/oci"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/sdkconfig/sdkremote"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/file"
)

const engineName = "NovelRT"

// PushOpts describes one engine release. Builds maps each platform to the directory
// holding that platform's engine build.
type PushOpts struct {
	Version     *semver.Version
	Builds      map[*platform.Descriptor]string
	ExtraTags   []string
	Annotations map[string]string
}

// Push uploads every platform build, then an index tagged with the version and
// any extra tags (such as "latest") that ties them together.
func Push(ctx context.Context, client *sdkremote.Remote, opts PushOpts) (*v1.Descriptor, error) {
	if len(opts.Builds) == 0 {
		return nil, errors.New("no engine builds to push")
	}
	repo, err := client.Repo(artifact.RepoName())
	if err != nil {
		return nil, err
	}

	annotations := map[string]string{}
	maps.Copy(annotations, opts.Annotations)
	oci.DescriptorAnnotations{Name: engineName, Version: opts.Version}.AppendToMap(annotations)

	platforms := lo.Keys(opts.Builds)
	slices.SortFunc(platforms, func(a, b *platform.Descriptor) int {
		return strings.Compare(a.String(), b.String())
	})

	var manifests []v1.Descriptor
	for _, p := range platforms {
		desc, err := pushPlatform(ctx, repo, opts.Version, p, opts.Builds[p], annotations)
		if err != nil {
			return nil, fmt.Errorf("failed to push %s engine build: %w", p, err)
		}
		slog.Info("pushed engine build", "platform", p.String(), "digest", desc.Digest.String())
		manifests = append(manifests, *desc)
	}

	index := v1.Index{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    v1.MediaTypeImageIndex,
		ArtifactType: artifact.ArtifactType(),
		Manifests:    manifests,
		Annotations:  annotations,
	}
	indexBytes, err := json.Marshal(index)
	if err != nil {
		return nil, err
	}
	indexDesc, err := oras.TagBytes(ctx, repo, v1.MediaTypeImageIndex, indexBytes, opts.Version.String())
	if err != nil {
		return nil, err
	}
	if len(opts.ExtraTags) > 0 {
		if _, err := oras.TagN(ctx, repo, opts.Version.String(), opts.ExtraTags, oras.DefaultTagNOptions); err != nil {
			return nil, err
		}
	}
	return &indexDesc, nil
}

// pushPlatform packs the top-level entries of dir as layers; directories are
// tarred by the file store and unpacked again on pull.
func pushPlatform(ctx context.Context, dst oras.Target, version *semver.Version, p *platform.Descriptor, dir string, annotations map[string]string) (*v1.Descriptor, error) {
	fs, err := file.New(dir)
	if err != nil {
		return nil, err
	}
	defer fs.Close()

	configBlob, err := json.Marshal(p.ToOras())
	if err != nil {
		return nil, err
	}
	configDesc := content.NewDescriptorFromBytes(oras.MediaTypeUnknownConfig, configBlob)
	if err := fs.Push(ctx, configDesc, bytes.NewReader(configBlob)); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	layers := make([]v1.Descriptor, 0, len(entries))
	for _, e := range entries {
		desc, err := fs.Add(ctx, e.Name(), artifact.FileMediaType(), "")
		if err != nil {
			return nil, err
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		if desc.Annotations == nil {
			desc.Annotations = map[string]string{}
		}
		maps.Copy(desc.Annotations, newFileInfo(info).annotations())
		layers = append(layers, desc)
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, artifact.ArtifactType(), oras.PackManifestOptions{
		Layers:              layers,
		ManifestAnnotations: annotations,
		ConfigDescriptor:    &configDesc,
	})
	if err != nil {
		return nil, err
	}

	tag := PlatformTag(version, p)
	if err := fs.Tag(ctx, manifestDesc, tag); err != nil {
		return nil, err
	}
	desc, err := oras.Copy(ctx, fs, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, err
	}
	desc.Platform = p.ToOras()
	return &desc, nil
}

// Platforms lists the os/arch pairs of the platform specific descriptors.
func Platforms(descriptors []v1.Descriptor) []string {
	return lo.FilterMap(descriptors, func(d v1.Descriptor, _ int) (string, bool) {
		if d.Platform == nil {
			return "", false
		}
		return d.Platform.OS + "/" + d.Platform.Architecture, true
	})
}
