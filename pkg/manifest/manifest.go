// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/schema"
	"novelrt.io/x/sdk/pkg/staging"
	"novelrt.io/x/sdk/pkg/utils"
)

var ErrMalformedManifest = fmt.Errorf("malformed manifest")
var MissingManifestField = fmt.Errorf("%w: a required field is missing", ErrMalformedManifest)

const (
	ProjectKind       = "Project"
	ProjectVersion    = "v1"
	ProjectAPIVersion = schema.APIGroup + "/" + ProjectVersion
)

var validSettings = []string{"os", "compiler", "build_type", "arch"}

type Manifest struct {
	AbsolutePath string `yaml:"-"`

	schema.ManifestMeta `yaml:",inline"`
	Spec                *Spec `yaml:"spec"`

	records    []DependencyRecord
	conditions []PlatformCondition
}

type Spec struct {
	Name           string                     `yaml:"name"`
	Version        string                     `yaml:"version"`
	Settings       []string                   `yaml:"settings,omitempty"`
	Generators     []string                   `yaml:"generators,omitempty"`
	Requires       []*Requirement             `yaml:"requires,omitempty"`
	Options        map[string][]Value         `yaml:"options,omitempty"`
	DefaultOptions Options                    `yaml:"default-options,omitempty"`
	Conditions     []*Condition               `yaml:"conditions,omitempty"`
	Definitions    Options                    `yaml:"definitions,omitempty"`
	Stage          []staging.ArtifactCopySpec `yaml:"stage,omitempty"`
}

func Read(filePath string) (*Manifest, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	bytes, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(abs), ".hcl") {
		return ReadHCL(bytes, abs)
	}
	return ReadContents(bytes, abs)
}

// ReadContents parses a YAML manifest.
func ReadContents(contents []byte, absPath string) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalWithOptions(contents, &m, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedManifest, absPath, err)
	}
	m.AbsolutePath = absPath
	if err := m.finalize(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) finalize() error {
	s := schema.NewMeta(ProjectKind, ProjectVersion)
	if err := s.ValidateSchema(m.ManifestMeta); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedManifest, err)
	}
	if m.Spec == nil {
		return fmt.Errorf("%w: 'spec'", MissingManifestField)
	}
	return m.Spec.compile(m)
}

func (s *Spec) compile(m *Manifest) error {
	if s.Name == "" {
		return fmt.Errorf("%w: 'spec.name'", MissingManifestField)
	}
	if s.Version == "" {
		return fmt.Errorf("%w: 'spec.version'", MissingManifestField)
	}
	for _, setting := range s.Settings {
		if !slices.Contains(validSettings, setting) {
			return fmt.Errorf("%w: unknown setting %q. must be one of %v", ErrMalformedManifest, setting, validSettings)
		}
	}

	records := make([]DependencyRecord, 0, len(s.Requires))
	for _, r := range s.Requires {
		if r == nil {
			return fmt.Errorf("%w: empty entry in 'requires'", ErrMalformedManifest)
		}
		if err := r.validate("base"); err != nil {
			return err
		}
		records = append(records, r.record())
	}
	if dupes := lo.FindDuplicatesBy(records, DependencyRecord.Name); len(dupes) > 0 {
		return fmt.Errorf("%w: %q is required more than once", ErrMalformedManifest, dupes[0].Name())
	}

	for k := range s.DefaultOptions {
		if err := validateOptionKey(k); err != nil {
			return err
		}
	}
	for k := range s.Definitions {
		if !utils.IsValidIdentifier(k) {
			return fmt.Errorf("%w: definition %q is not a valid cmake variable name", ErrMalformedManifest, k)
		}
	}
	for k, domain := range s.Options {
		if err := validateOptionKey(k); err != nil {
			return err
		}
		if len(domain) == 0 {
			return fmt.Errorf("%w: option %q declares no allowed values", ErrMalformedManifest, k)
		}
	}

	conditions := make([]PlatformCondition, 0, len(s.Conditions))
	for i, c := range s.Conditions {
		if c == nil {
			return fmt.Errorf("%w: empty entry in 'conditions'", ErrMalformedManifest)
		}
		pc, err := c.compile(i)
		if err != nil {
			return err
		}
		conditions = append(conditions, pc)
	}

	for _, st := range s.Stage {
		if err := st.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedManifest, err)
		}
	}

	m.records = records
	m.conditions = conditions
	return nil
}

// Records returns the base dependencies in declaration order.
func (m *Manifest) Records() []DependencyRecord {
	return slices.Clone(m.records)
}

// Conditions returns the platform conditions in declaration order.
func (m *Manifest) Conditions() []PlatformCondition {
	return slices.Clone(m.conditions)
}

// Domain returns the allowed values of an option, if the manifest restricts it.
func (m *Manifest) Domain(option string) ([]Value, bool) {
	d, ok := m.Spec.Options[option]
	return slices.Clone(d), ok
}

// StageSpecs falls back to the default layout when the project declares none.
func (m *Manifest) StageSpecs() []staging.ArtifactCopySpec {
	if len(m.Spec.Stage) == 0 {
		return staging.DefaultSpecs()
	}
	return slices.Clone(m.Spec.Stage)
}

// Dir is the project root, where the manifest lives.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.AbsolutePath)
}
