// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package oci

type Artifact interface {
	RepoName() string
	ArtifactType() string
	FileMediaType() string
}

// EngineArtifact is a prebuilt engine distribution. Repo overrides the default repository.
type EngineArtifact struct {
	Repo string
}

func (a *EngineArtifact) RepoName() string {
	if a == nil || a.Repo == "" {
		return EngineRepo
	}
	return a.Repo
}

func (a *EngineArtifact) ArtifactType() string  { return EngineArtifactType }
func (a *EngineArtifact) FileMediaType() string { return EngineFileMediaType }

var _ Artifact = (*EngineArtifact)(nil)
