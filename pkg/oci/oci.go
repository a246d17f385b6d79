// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	EngineRepo              = "engine"
	EngineArtifactType      = "application/vnd.novelrt.engine.artifact"
	EngineFileMediaType     = "application/vnd.novelrt.engine.file"
	NovelRTAnnotationPrefix = "io.novelrt."

	DescriptorNameAnnotation    = NovelRTAnnotationPrefix + "name"
	DescriptorVersionAnnotation = NovelRTAnnotationPrefix + "version"
)

// DescriptorAnnotations are required on image and index manifests, so that floaty
// tags like "latest" can be resolved to the version they point at.
type DescriptorAnnotations struct {
	Name    string
	Version *semver.Version
}

func (d DescriptorAnnotations) AppendToMap(annotations map[string]string) {
	annotations[DescriptorNameAnnotation] = d.Name
	annotations[DescriptorVersionAnnotation] = d.Version.String()
}

func Annotation(name string) string {
	return NovelRTAnnotationPrefix + name
}

func VersionFromDescriptorAnnotations(descriptorAnnotations map[string]string) (*semver.Version, error) {
	version, ok := descriptorAnnotations[DescriptorVersionAnnotation]
	if !ok {
		return nil, fmt.Errorf("descriptor missing required %q annotation", DescriptorVersionAnnotation)
	}
	return semver.NewVersion(version)
}
