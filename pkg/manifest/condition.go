// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/platform"
)

// When restricts a condition to matching platforms. Every non-empty list must
// contain the platform's value; an empty When always matches.
type When struct {
	OS       []platform.OS `yaml:"os,omitempty"`
	Arch     []string      `yaml:"arch,omitempty"`
	Compiler []string      `yaml:"compiler,omitempty"`
}

func (w *When) Matches(p platform.Descriptor) bool {
	if w == nil {
		return true
	}
	if len(w.OS) > 0 && !slices.Contains(w.OS, p.OS) {
		return false
	}
	if len(w.Arch) > 0 && !containsFold(w.Arch, p.Arch) {
		return false
	}
	if len(w.Compiler) > 0 && !containsFold(w.Compiler, p.Compiler) {
		return false
	}
	return true
}

func (w *When) String() string {
	if w == nil {
		return "always"
	}
	var parts []string
	if len(w.OS) > 0 {
		parts = append(parts, "os="+strings.Join(lo.Map(w.OS, func(o platform.OS, _ int) string { return o.String() }), ","))
	}
	if len(w.Arch) > 0 {
		parts = append(parts, "arch="+strings.Join(w.Arch, ","))
	}
	if len(w.Compiler) > 0 {
		parts = append(parts, "compiler="+strings.Join(w.Compiler, ","))
	}
	if len(parts) == 0 {
		return "always"
	}
	return strings.Join(parts, " ")
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool {
		return strings.EqualFold(s, v)
	})
}

// Condition is a `conditions` entry as written in the manifest.
type Condition struct {
	When     *When          `yaml:"when,omitempty"`
	Requires []*Requirement `yaml:"requires,omitempty"`
	Options  Options        `yaml:"options,omitempty"`
	Message  string         `yaml:"message,omitempty"`
}

func (c *Condition) compile(index int) (PlatformCondition, error) {
	where := fmt.Sprintf("condition #%d", index+1)
	seen := map[string]bool{}
	extra := make([]DependencyRecord, 0, len(c.Requires))
	for _, r := range c.Requires {
		if r == nil {
			return PlatformCondition{}, fmt.Errorf("%w: %s has an empty requirement", ErrMalformedManifest, where)
		}
		if err := r.validate(where); err != nil {
			return PlatformCondition{}, err
		}
		if seen[r.Name] {
			return PlatformCondition{}, fmt.Errorf("%w: %s requires %q more than once", ErrMalformedManifest, where, r.Name)
		}
		seen[r.Name] = true
		extra = append(extra, r.record())
	}
	for k := range c.Options {
		if err := validateOptionKey(k); err != nil {
			return PlatformCondition{}, err
		}
	}

	when := c.When
	return PlatformCondition{
		index:             index,
		when:              when,
		Predicate:         when.Matches,
		extraDependencies: extra,
		extraOptions:      c.Options.Copy(),
		Message:           c.Message,
	}, nil
}

// PlatformCondition contributes dependencies and options only when its
// predicate holds for the target platform.
type PlatformCondition struct {
	index             int
	when              *When
	Predicate         func(platform.Descriptor) bool
	extraDependencies []DependencyRecord
	extraOptions      Options
	Message           string
}

// NewPlatformCondition builds a condition from an arbitrary predicate.
func NewPlatformCondition(predicate func(platform.Descriptor) bool, deps []DependencyRecord, options Options, message string) PlatformCondition {
	return PlatformCondition{
		index:             -1,
		Predicate:         predicate,
		extraDependencies: slices.Clone(deps),
		extraOptions:      options.Copy(),
		Message:           message,
	}
}

func (c PlatformCondition) Holds(p platform.Descriptor) bool {
	return c.Predicate == nil || c.Predicate(p)
}

func (c PlatformCondition) ExtraDependencies() []DependencyRecord {
	return slices.Clone(c.extraDependencies)
}

func (c PlatformCondition) ExtraOptions() Options {
	return c.extraOptions.Copy()
}

// Name identifies the condition in logs and conflict reports.
func (c PlatformCondition) Name() string {
	if c.index < 0 {
		if c.Message != "" {
			return c.Message
		}
		return "custom condition"
	}
	return fmt.Sprintf("condition #%d (%s)", c.index+1, c.when.String())
}
