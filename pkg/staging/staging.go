// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package staging

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/utils"
)

const (
	BinDir     = "bin"
	ShadersDir = "bin/Resources/Shaders"
)

// ArtifactCopySpec describes which build outputs end up where in the runtime layout.
type ArtifactCopySpec struct {
	Pattern         string        `yaml:"pattern"`
	DestinationRoot string        `yaml:"destination"`
	OnlyOn          []platform.OS `yaml:"only-on,omitempty"`
}

func (s ArtifactCopySpec) AppliesTo(p *platform.Descriptor) bool {
	return len(s.OnlyOn) == 0 || slices.Contains(s.OnlyOn, p.OS)
}

func (s ArtifactCopySpec) Validate() error {
	if s.Pattern == "" {
		return fmt.Errorf("stage entry is missing 'pattern'")
	}
	if _, err := filepath.Match(s.Pattern, ""); err != nil {
		return fmt.Errorf("invalid stage pattern %q: %w", s.Pattern, err)
	}
	if filepath.IsAbs(s.DestinationRoot) {
		return fmt.Errorf("stage destination %q must be relative to the output directory", s.DestinationRoot)
	}
	// the output root itself is the build directory for `nrt build`
	switch dest := filepath.ToSlash(filepath.Clean(filepath.FromSlash(s.DestinationRoot))); {
	case dest == ".":
		return fmt.Errorf("stage destination must name a directory below the output directory")
	case dest == ".." || strings.HasPrefix(dest, "../"):
		return fmt.Errorf("stage destination %q leaves the output directory", s.DestinationRoot)
	}
	return nil
}

// DefaultSpecs are used when a project does not declare its own.
func DefaultSpecs() []ArtifactCopySpec {
	return []ArtifactCopySpec{
		{Pattern: "*.dll", DestinationRoot: BinDir, OnlyOn: []platform.OS{platform.Windows}},
		{Pattern: "*.spv", DestinationRoot: ShadersDir},
	}
}

// Copy finds every file below fromDir whose base name matches pattern and copies
// it flat into toDir, overwriting existing files. Zero matches is not an error.
// When several matches share a base name only the most recently modified one is
// staged, so the count is the number of files in toDir the call wrote.
func Copy(pattern, fromDir, toDir string) (int, error) {
	from, to := filepath.Clean(fromDir), filepath.Clean(toDir)
	// an output tree below the searched tree holds earlier copies, not build outputs
	skipOutput := to != from && isWithin(to, from)

	type match struct {
		src     string
		modTime time.Time
	}
	staged := map[string]match{}
	var order []string

	err := filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipOutput && path != from && isWithin(path, to) {
				return filepath.SkipDir
			}
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil || !ok {
			return err
		}
		dst := filepath.Join(to, d.Name())
		if filepath.Clean(path) == dst {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		prev, dup := staged[dst]
		if !dup {
			staged[dst] = match{src: path, modTime: info.ModTime()}
			order = append(order, dst)
			return nil
		}
		keep, drop := prev.src, path
		if info.ModTime().After(prev.modTime) {
			staged[dst] = match{src: path, modTime: info.ModTime()}
			keep, drop = path, prev.src
		}
		slog.Warn("artifacts share a name, staging the newest", "destination", dst, "staged", keep, "skipped", drop)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to search %q for %q: %w", fromDir, pattern, err)
	}
	if len(order) == 0 {
		return 0, nil
	}

	if err := utils.EnsureDirs(to); err != nil {
		return 0, err
	}

	copied := 0
	for _, dst := range order {
		src := staged[dst].src
		if err := utils.CopyFile(src, dst); err != nil {
			return copied, fmt.Errorf("failed to stage %q: %w", src, err)
		}
		copied++
	}
	return copied, nil
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Result is the number of files staged per spec, in spec order.
type Result struct {
	Spec  ArtifactCopySpec
	Count int
}

type Stager struct {
	Platform *platform.Descriptor
}

func NewStager(p *platform.Descriptor) *Stager {
	return &Stager{Platform: p}
}

// Stage applies each spec that targets the stager's platform. Files copied before a
// failure stay where they are.
func (s *Stager) Stage(specs []ArtifactCopySpec, fromDir, outputRoot string) ([]Result, error) {
	applicable := lo.Filter(specs, func(spec ArtifactCopySpec, _ int) bool {
		return spec.AppliesTo(s.Platform)
	})

	results := make([]Result, 0, len(applicable))
	for _, spec := range applicable {
		dest := utils.ResolvePath(outputRoot, filepath.FromSlash(spec.DestinationRoot))
		n, err := Copy(spec.Pattern, fromDir, dest)
		results = append(results, Result{Spec: spec, Count: n})
		if err != nil {
			return results, err
		}
		slog.Info("staged artifacts", "pattern", spec.Pattern, "destination", dest, "count", n)
	}
	return results, nil
}

// Total sums the staged counts.
func Total(results []Result) int {
	return lo.SumBy(results, func(r Result) int { return r.Count })
}
