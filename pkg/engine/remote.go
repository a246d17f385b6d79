// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/oci"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/sdkconfig/sdkremote"
	"oras.land/oras-go/v2"
)

var artifact = &oci.EngineArtifact{}

// ListRemote maps every released version in the registry to all of its tags,
// including floaty ones like "latest" that currently point at it.
func ListRemote(ctx context.Context, client *sdkremote.Remote) (map[*semver.Version][]string, error) {
	result := map[*semver.Version][]string{}
	tags, found, err := client.ListTags(ctx, artifact.RepoName())
	if err != nil || !found {
		return result, err
	}

	repo, err := client.Repo(artifact.RepoName())
	if err != nil {
		return nil, err
	}

	released := map[string]*semver.Version{}
	digestToTags := map[string][]string{}
	for _, tag := range tags {
		if IsPlatformTag(tag) {
			continue
		}
		desc, err := repo.Resolve(ctx, tag)
		if err != nil {
			return nil, err
		}
		d := desc.Digest.String()
		digestToTags[d] = append(digestToTags[d], tag)
		if v, err := semver.StrictNewVersion(tag); err == nil {
			released[d] = v
		}
	}

	for d, v := range released {
		result[v] = digestToTags[d]
	}
	return result, nil
}

// IsPlatformTag reports whether tag addresses one platform's manifest rather than the index.
func IsPlatformTag(tag string) bool {
	_, err := semver.StrictNewVersion(tag)
	if err == nil {
		return false
	}
	i := strings.LastIndexByte(tag, '.')
	if i < 0 || i == len(tag)-1 {
		return false
	}
	_, err = semver.StrictNewVersion(tag[:i])
	return err == nil
}

// PlatformTag is the tag a single platform's manifest is pushed under.
func PlatformTag(version *semver.Version, p *platform.Descriptor) string {
	o := p.ToOras()
	return fmt.Sprintf("%s.%s_%s", version, o.OS, o.Architecture)
}

// Resolve turns any tag, floaty or not, into the version it points at.
func Resolve(ctx context.Context, client *sdkremote.Remote, tag string) (*semver.Version, error) {
	index, err := FetchIndex(ctx, client, tag)
	if err != nil {
		return nil, err
	}
	v, err := oci.VersionFromDescriptorAnnotations(index.Annotations)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s:%s': %w", artifact.RepoName(), tag, err)
	}
	return v, nil
}

func FetchIndex(ctx context.Context, client *sdkremote.Remote, tag string) (*v1.Index, error) {
	repo, err := client.Repo(artifact.RepoName())
	if err != nil {
		return nil, err
	}
	return fetchIndex(ctx, repo, tag)
}

func fetchIndex(ctx context.Context, target oras.ReadOnlyTarget, tag string) (*v1.Index, error) {
	desc, bytes, err := oras.FetchBytes(ctx, target, tag, oras.DefaultFetchBytesOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch '%s:%s': %w", artifact.RepoName(), tag, err)
	}
	if desc.MediaType != v1.MediaTypeImageIndex {
		return nil, fmt.Errorf("reference \"%s:%s\" is %q and not an image index", artifact.RepoName(), tag, desc.MediaType)
	}

	index := v1.Index{}
	if err := json.Unmarshal(bytes, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

// FindTargetPlatform selects the manifest built for p. Engine builds are always
// platform specific, so there is no generic fallback.
func FindTargetPlatform(descriptors []v1.Descriptor, p *platform.Descriptor) (*v1.Descriptor, error) {
	want := p.ToOras()
	targetDesc, ok := lo.Find(descriptors, func(d v1.Descriptor) bool {
		return d.Platform != nil && d.Platform.OS == want.OS && d.Platform.Architecture == want.Architecture
	})
	if !ok {
		return nil, fmt.Errorf("no engine build for %s/%s. available: %v", want.OS, want.Architecture, Platforms(descriptors))
	}
	return &targetDesc, nil
}
