// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package merger

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/schema"
	"novelrt.io/x/sdk/pkg/staging"
)

const (
	ResolutionKind    = "Resolution"
	ResolutionVersion = "v1"
)

// ConflictingOptionError is recorded when two matching conditions assign different
// values to the same option. The later condition's value is kept.
type ConflictingOptionError struct {
	Key      string
	Previous manifest.Value
	Value    manifest.Value
	Earlier  string
	Later    string
}

func (e *ConflictingOptionError) Error() string {
	return fmt.Sprintf("option %q set to %q by %s and to %q by %s; using %q",
		e.Key, e.Previous, e.Earlier, e.Value, e.Later, e.Value)
}

// Overrides come from the command line and take precedence over everything else.
type Overrides struct {
	Options   manifest.Options
	BuildType *BuildType
	Verbose   *bool
}

type EffectiveConfig struct {
	Project      string
	Version      string
	Platform     platform.Descriptor
	Options      OptionSet
	BuildType    BuildType
	Verbose      bool
	EngineBuild  bool
	Dependencies []manifest.DependencyRecord
	Conflicts    []*ConflictingOptionError
	Generators   []string
	Definitions  manifest.Options
	Stage        []staging.ArtifactCopySpec
}

// Merge computes the effective configuration of m for platform p. Precedence, lowest
// first: defaults, the manifest's default-options, each record's own options, each
// matching condition in declaration order, then overrides.
func Merge(m *manifest.Manifest, defaults Defaults, p platform.Descriptor, overrides Overrides) (*EffectiveConfig, error) {
	opts := defaults.Map()
	overlay(opts, m.Spec.DefaultOptions)

	deps := m.Records()
	for _, d := range deps {
		overlay(opts, d.QualifiedOptions())
	}

	var conflicts []*ConflictingOptionError
	setBy := map[string]string{}
	for _, c := range m.Conditions() {
		if !c.Holds(p) {
			continue
		}
		if c.Message != "" {
			slog.Info(c.Message, "platform", p.String())
		}

		contributed := c.ExtraOptions()
		for _, extra := range c.ExtraDependencies() {
			if slices.ContainsFunc(deps, func(d manifest.DependencyRecord) bool { return d.Name() == extra.Name() }) {
				slog.Debug("dependency already declared, ignoring conditional requirement",
					"dependency", extra.Name(), "condition", c.Name())
				continue
			}
			deps = append(deps, extra)
			for k, v := range extra.QualifiedOptions() {
				if _, explicit := contributed[k]; !explicit {
					contributed[k] = v
				}
			}
		}

		for _, k := range contributed.Keys() {
			v := contributed[k]
			if earlier, ok := setBy[k]; ok && opts[k] != v {
				conflict := &ConflictingOptionError{Key: k, Previous: opts[k], Value: v, Earlier: earlier, Later: c.Name()}
				slog.Warn("conflicting platform option", "option", k, "err", conflict.Error())
				conflicts = append(conflicts, conflict)
			}
			opts[k] = v
			setBy[k] = c.Name()
		}
	}

	if overrides.BuildType != nil {
		opts[ConfigOption] = manifest.Value(overrides.BuildType.String())
	}
	if overrides.Verbose != nil {
		opts[VerboseOption] = manifest.ValueOf(*overrides.Verbose)
	}
	overlay(opts, overrides.Options)

	cfg := &EffectiveConfig{
		Project:      m.Spec.Name,
		Version:      m.Spec.Version,
		Platform:     p,
		Options:      NewOptionSet(opts),
		Dependencies: deps,
		Conflicts:    conflicts,
		Generators:   slices.Clone(m.Spec.Generators),
		Definitions:  m.Spec.Definitions.Copy(),
		Stage:        m.StageSpecs(),
	}
	if err := cfg.derive(); err != nil {
		return nil, err
	}
	if err := validateDomains(m, cfg.Options); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlay(dst, src manifest.Options) {
	for k, v := range src {
		dst[k] = v
	}
}

func (c *EffectiveConfig) derive() error {
	if v, ok := c.Options.Get(ConfigOption); ok {
		bt, err := ParseBuildType(v.String())
		if err != nil {
			return fmt.Errorf("%w: %w", manifest.ErrMalformedManifest, err)
		}
		c.BuildType = bt
	}
	var err error
	if c.Verbose, err = boolOption(c.Options, VerboseOption); err != nil {
		return err
	}
	if c.EngineBuild, err = boolOption(c.Options, EngineBuildOption); err != nil {
		return err
	}
	return nil
}

func boolOption(o OptionSet, key string) (bool, error) {
	v, ok := o.Get(key)
	if !ok || v == "" {
		return false, nil
	}
	b, ok := v.Bool()
	if !ok {
		return false, fmt.Errorf("%w: option %q must be a boolean, got %q", manifest.ErrMalformedManifest, key, v)
	}
	return b, nil
}

func validateDomains(m *manifest.Manifest, o OptionSet) error {
	for k, v := range o.All() {
		domain, ok := m.Domain(k)
		if !ok {
			continue
		}
		if !slices.ContainsFunc(domain, func(d manifest.Value) bool { return valueEqual(d, v) }) {
			return fmt.Errorf("%w: option %q is %q. must be one of %v", manifest.ErrMalformedManifest, k, v, domain)
		}
	}
	return nil
}

func valueEqual(a, b manifest.Value) bool {
	if ab, ok := a.Bool(); ok {
		bb, ok := b.Bool()
		return ok && ab == bb
	}
	return a == b
}

// Dependency looks up a resolved dependency by name.
func (c *EffectiveConfig) Dependency(name string) (manifest.DependencyRecord, bool) {
	return lo.Find(c.Dependencies, func(d manifest.DependencyRecord) bool { return d.Name() == name })
}

type canonicalDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type canonicalConfig struct {
	schema.ManifestMeta `yaml:",inline"`
	Project             string                `yaml:"project"`
	Version             string                `yaml:"version"`
	Platform            string                `yaml:"platform"`
	BuildType           BuildType             `yaml:"build-type"`
	Verbose             bool                  `yaml:"verbose"`
	Dependencies        []canonicalDependency `yaml:"dependencies"`
	Options             OptionSet             `yaml:"options"`
	Conflicts           []string              `yaml:"conflicts,omitempty"`
}

// Canonical serializes the configuration deterministically: equal configurations
// produce identical bytes.
func (c *EffectiveConfig) Canonical() ([]byte, error) {
	return yaml.Marshal(canonicalConfig{
		ManifestMeta: schema.NewMeta(ResolutionKind, ResolutionVersion),
		Project:      c.Project,
		Version:      c.Version,
		Platform:     c.Platform.String(),
		BuildType:    c.BuildType,
		Verbose:      c.Verbose,
		Dependencies: lo.Map(c.Dependencies, func(d manifest.DependencyRecord, _ int) canonicalDependency {
			return canonicalDependency{Name: d.Name(), Version: d.VersionConstraint()}
		}),
		Options: c.Options,
		Conflicts: lo.Map(c.Conflicts, func(e *ConflictingOptionError, _ int) string {
			return e.Error()
		}),
	})
}
