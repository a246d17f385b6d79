// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/merger"
	"novelrt.io/x/sdk/pkg/schema"
)

const (
	Kind     = "ResolutionLock"
	Version  = "v1"
	FileName = "novelrt-lock.yaml"
)

var (
	ErrInvalidLockfile   = errors.New("invalid lockfile")
	ErrLockfileOutOfSync = errors.New("lockfile is out of sync with the manifest")
)

// Lockfile records a resolution for one platform, so that later builds can
// detect when the manifest or the defaults changed underneath them.
type Lockfile struct {
	schema.ManifestMeta `yaml:",inline"`
	Platform            string           `yaml:"platform"`
	BuildType           string           `yaml:"build-type"`
	Dependencies        []*Dependency    `yaml:"dependencies"`
	Options             manifest.Options `yaml:"options"`
}

type Dependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func (d *Dependency) String() string {
	return d.Name + "/" + d.Version
}

func New(cfg *merger.EffectiveConfig) *Lockfile {
	return &Lockfile{
		ManifestMeta: schema.NewMeta(Kind, Version),
		Platform:     cfg.Platform.String(),
		BuildType:    cfg.BuildType.String(),
		Dependencies: lo.Map(cfg.Dependencies, func(d manifest.DependencyRecord, _ int) *Dependency {
			return &Dependency{Name: d.Name(), Version: d.VersionConstraint()}
		}),
		Options: cfg.Options.Map(),
	}
}

// Path is where the lockfile of the project at projectDir lives.
func Path(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

func Read(path string) (*Lockfile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadContents(bytes)
}

func ReadContents(contents []byte) (*Lockfile, error) {
	var l Lockfile
	if err := yaml.Unmarshal(contents, &l); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLockfile, err)
	}
	if err := schema.NewMeta(Kind, Version).ValidateSchema(l.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLockfile, err)
	}
	return &l, nil
}

func (l *Lockfile) Marshal() ([]byte, error) {
	return yaml.MarshalWithOptions(l, yaml.IndentSequence(true))
}

func Write(path string, cfg *merger.EffectiveConfig) error {
	bytes, err := New(cfg).Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0o644)
}

// Check compares the lockfile at path against cfg and reports every difference.
func Check(path string, cfg *merger.EffectiveConfig) error {
	existing, err := Read(path)
	if err != nil {
		return err
	}
	if diffs := existing.Diff(New(cfg)); len(diffs) > 0 {
		return fmt.Errorf("%w. run 'nrt resolve --lock' to update it:\n  %s", ErrLockfileOutOfSync, strings.Join(diffs, "\n  "))
	}
	return nil
}

// Diff lists how expected differs from l, in a stable order.
func (l *Lockfile) Diff(expected *Lockfile) []string {
	var diffs []string
	if l.Platform != expected.Platform {
		diffs = append(diffs, fmt.Sprintf("platform: %s -> %s", l.Platform, expected.Platform))
	}
	if l.BuildType != expected.BuildType {
		diffs = append(diffs, fmt.Sprintf("build-type: %s -> %s", l.BuildType, expected.BuildType))
	}

	locked := lo.SliceToMap(l.Dependencies, func(d *Dependency) (string, string) { return d.Name, d.Version })
	wanted := lo.SliceToMap(expected.Dependencies, func(d *Dependency) (string, string) { return d.Name, d.Version })
	diffs = append(diffs, diffMaps("dependency", locked, wanted)...)

	diffs = append(diffs, diffMaps("option",
		lo.MapValues(l.Options, func(v manifest.Value, _ string) string { return v.String() }),
		lo.MapValues(expected.Options, func(v manifest.Value, _ string) string { return v.String() }))...)
	return diffs
}

func diffMaps(what string, locked, wanted map[string]string) []string {
	keys := lo.Union(lo.Keys(locked), lo.Keys(wanted))
	slices.Sort(keys)

	var diffs []string
	for _, k := range keys {
		was, hadIt := locked[k]
		is, hasIt := wanted[k]
		switch {
		case !hadIt:
			diffs = append(diffs, fmt.Sprintf("%s %s added (%s)", what, k, is))
		case !hasIt:
			diffs = append(diffs, fmt.Sprintf("%s %s removed", what, k))
		case was != is:
			diffs = append(diffs, fmt.Sprintf("%s %s: %s -> %s", what, k, was, is))
		}
	}
	return diffs
}
