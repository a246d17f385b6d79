// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"
	"strings"
)

// APIGroup prefixes the apiVersion of every file nrt reads or writes.
const APIGroup = "novelrt.io"

var (
	ErrMissingField      = errors.New("missing required field")
	ErrUnsupportedSchema = errors.New("unsupported schema")
)

// ManifestMeta is the header shared by manifests, lockfiles and resolution output.
type ManifestMeta struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
}

func NewMeta(kind, version string) ManifestMeta {
	return ManifestMeta{
		APIVersion: APIGroup + "/" + version,
		Kind:       kind,
	}
}

// Group and Version split apiVersion at its first '/'.
func (m ManifestMeta) Group() string {
	group, _, _ := strings.Cut(m.APIVersion, "/")
	return group
}

func (m ManifestMeta) Version() string {
	_, version, ok := strings.Cut(m.APIVersion, "/")
	if !ok {
		return ""
	}
	return version
}

// ValidateSchema checks that target has the kind and apiVersion of m.
func (m ManifestMeta) ValidateSchema(target ManifestMeta) error {
	switch {
	case target.Kind == "":
		return fmt.Errorf("%w 'kind'", ErrMissingField)
	case target.APIVersion == "":
		return fmt.Errorf("%w 'apiVersion'", ErrMissingField)
	case target.Kind != m.Kind:
		return fmt.Errorf("%w: kind %q, expected %q", ErrUnsupportedSchema, target.Kind, m.Kind)
	case target.Group() != m.Group():
		return fmt.Errorf("%w: apiVersion %q does not belong to %s", ErrUnsupportedSchema, target.APIVersion, m.Group())
	case target.Version() != m.Version():
		return fmt.Errorf("%w: %s version %q, this nrt understands %q", ErrUnsupportedSchema, m.Kind, target.Version(), m.Version())
	}
	return nil
}
