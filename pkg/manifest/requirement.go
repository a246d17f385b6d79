// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
)

// Requirement is a `requires` entry as written in the manifest, either the
// short form "freetype/2.10.1" or a mapping with name, version and options.
type Requirement struct {
	Name    string  `yaml:"name"`
	Version string  `yaml:"version"`
	Options Options `yaml:"options,omitempty"`
}

// ParseRequirement reads "name/version" or "name@version".
func ParseRequirement(s string) (*Requirement, error) {
	s = strings.TrimSpace(s)
	sep := strings.IndexAny(s, "/@")
	if sep < 0 {
		return nil, fmt.Errorf("%w: requirement %q must be of the form 'name/version'", ErrMalformedManifest, s)
	}
	return &Requirement{
		Name:    strings.TrimSpace(s[:sep]),
		Version: strings.TrimSpace(s[sep+1:]),
	}, nil
}

func (r *Requirement) UnmarshalYAML(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal requirement: %w", err)
	}

	if s, ok := raw.(string); ok {
		parsed, err := ParseRequirement(s)
		if err != nil {
			return err
		}
		*r = *parsed
		return nil
	}

	type Alias Requirement
	alias := Alias{}
	if err := yaml.UnmarshalWithOptions(data, &alias, yaml.Strict()); err != nil {
		return fmt.Errorf("failed to unmarshal requirement: %w", err)
	}
	*r = Requirement(alias)
	return nil
}

var _ yaml.BytesUnmarshaler = (*Requirement)(nil)

func (r *Requirement) validate(where string) error {
	if r.Name == "" {
		return fmt.Errorf("%w: %s requirement is missing a name", MissingManifestField, where)
	}
	if r.Version == "" {
		return fmt.Errorf("%w: %s requirement %q is missing a version", MissingManifestField, where, r.Name)
	}
	for k := range r.Options {
		if err := validateOptionKey(k); err != nil {
			return err
		}
	}
	return nil
}

func (r *Requirement) record() DependencyRecord {
	return NewDependencyRecord(r.Name, r.Version, r.Options)
}

// DependencyRecord is a validated requirement. It is immutable once loaded:
// accessors hand out copies.
type DependencyRecord struct {
	name              string
	versionConstraint string
	options           Options
	constraint        *semver.Constraints
}

func NewDependencyRecord(name, versionConstraint string, options Options) DependencyRecord {
	d := DependencyRecord{
		name:              name,
		versionConstraint: versionConstraint,
		options:           options.Copy(),
	}
	// four-part versions such as 1.2.198.0 are valid requirements but not semver
	if c, err := semver.NewConstraint(versionConstraint); err == nil {
		d.constraint = c
	}
	return d
}

func (d DependencyRecord) Name() string {
	return d.name
}

func (d DependencyRecord) VersionConstraint() string {
	return d.versionConstraint
}

// Options returns the record's own options, unqualified.
func (d DependencyRecord) Options() Options {
	return d.options.Copy()
}

// QualifiedOptions returns the record's options keyed `name:option`.
func (d DependencyRecord) QualifiedOptions() Options {
	q := make(Options, len(d.options))
	for k, v := range d.options {
		q[QualifyKey(d.name, k)] = v
	}
	return q
}

// Constraint is only available when the version is semver-compatible.
func (d DependencyRecord) Constraint() (*semver.Constraints, bool) {
	return d.constraint, d.constraint != nil
}

// Reference is the "name/version" form the dependency installer expects.
func (d DependencyRecord) Reference() string {
	return d.name + "/" + d.versionConstraint
}

func (d DependencyRecord) String() string {
	return d.Reference()
}
