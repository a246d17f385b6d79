// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
)

// Version is one row of `nrt engine list`.
type Version struct {
	Version   *semver.Version `json:"version,omitempty" yaml:"version"`
	Installed bool            `json:"installed,omitempty" yaml:"installed,omitempty"`
	Remote    bool            `json:"remote,omitempty" yaml:"remote,omitempty"`
	// Default is the engine new projects are generated against: the newest installed one.
	Default bool     `json:"default,omitempty" yaml:"default,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

type Versions []*Version

func NewVersions(installed []*Installed, remote map[*semver.Version][]string) Versions {
	m := map[string]*Version{}
	add := func(e *Version) {
		existing, ok := m[e.Version.String()]
		if !ok {
			m[e.Version.String()] = e
			return
		}
		existing.Installed = existing.Installed || e.Installed
		existing.Remote = existing.Remote || e.Remote
		existing.Tags = append(existing.Tags, e.Tags...)
	}

	for _, i := range installed {
		add(&Version{Version: i.Version, Installed: true})
	}
	for v, tags := range remote {
		add(&Version{Version: v, Remote: true, Tags: lo.Without(tags, v.String())})
	}
	if latest, ok := lo.Last(installed); ok {
		m[latest.Version.String()].Default = true
	}

	r := Versions(lo.Values(m))
	r.Sort()
	return r
}

// Sort by semantic version number
func (v Versions) Sort() {
	slices.SortFunc(v, func(a, b *Version) int {
		return a.Version.Compare(b.Version)
	})
}

func (v Versions) Table() string {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Rows(lo.Map(v, func(row *Version, _ int) []string {
			indicator := ""
			version := row.Version.String()

			if len(row.Tags) > 0 {
				tags := slices.Clone(row.Tags)
				slices.Sort(tags)
				version = fmt.Sprintf("%s\t(%s)", version, strings.Join(tags, ", "))
			}

			switch {
			case row.Default:
				indicator = "*"
				version = lipgloss.NewStyle().
					Foreground(lipgloss.Color("2")).
					Bold(true).
					Render(version)
			case !row.Installed:
				version = lipgloss.NewStyle().
					Faint(true).
					Italic(true).
					Render(version)
			}

			return []string{indicator, version}
		})...).
		String()
}
