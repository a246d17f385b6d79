// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package project scaffolds new NovelRT game projects from an embedded template.
package project

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/utils"
)

//go:embed all:template
var templateFS embed.FS

const (
	templateRoot = "template"
	nameSegment  = "PROJECT_NAME"

	DefaultVersion = "0.0.1"

	namePlaceholder        = "###PROJECT_NAME###"
	descriptionPlaceholder = "###PROJECT_DESCRIPTION###"
	versionPlaceholder     = "###PROJECT_VERSION###"
	enginePlaceholder      = "###NOVELRT_ENGINE_SUBDIR###"
)

var (
	ErrFileExists  = errors.New("file already exists")
	ErrInvalidName = errors.New("invalid project name")

	validName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

type Opts struct {
	// Dir is created if missing
	Dir         string
	Name        string
	Description string
	Version     string
	// EnginePath points at an installed engine build. Empty falls back to find_package.
	EnginePath string
	Force      bool
}

type Result struct {
	Name string
	Dir  string
	// Files are relative to Dir, in template order
	Files []string
}

type file struct {
	rel      string
	contents []byte
	mode     fs.FileMode
}

func (o *Opts) withDefaults() (Opts, error) {
	opts := *o
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return opts, err
	}
	opts.Dir = dir
	if opts.Name == "" {
		opts.Name = filepath.Base(dir)
	}
	if !validName.MatchString(opts.Name) {
		return opts, fmt.Errorf("%w %q: must start with a letter and contain only letters, digits, '-' and '_'", ErrInvalidName, opts.Name)
	}
	if opts.Description == "" {
		opts.Description = opts.Name + " app"
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	return opts, nil
}

// Generate writes a new project into opts.Dir. Nothing is written if any target
// file already exists, unless opts.Force is set.
func Generate(o Opts) (*Result, error) {
	opts, err := o.withDefaults()
	if err != nil {
		return nil, err
	}

	files, err := render(&opts)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		for _, f := range files {
			target := filepath.Join(opts.Dir, f.rel)
			if _, err := os.Stat(target); err == nil {
				return nil, fmt.Errorf("%w: %s. use --force to overwrite", ErrFileExists, target)
			}
		}
	}

	for _, f := range files {
		target := filepath.Join(opts.Dir, f.rel)
		if err := utils.EnsureDirs(filepath.Dir(target)); err != nil {
			return nil, err
		}
		if err := os.WriteFile(target, f.contents, f.mode); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", target, err)
		}
		slog.Debug("generated", "file", f.rel)
	}
	slog.Info("created project", "name", opts.Name, "dir", opts.Dir)

	return &Result{
		Name:  opts.Name,
		Dir:   opts.Dir,
		Files: lo.Map(files, func(f file, _ int) string { return f.rel }),
	}, nil
}

func render(opts *Opts) ([]file, error) {
	replacer := strings.NewReplacer(
		namePlaceholder, opts.Name,
		descriptionPlaceholder, opts.Description,
		versionPlaceholder, opts.Version,
		enginePlaceholder, engineDirective(opts.EnginePath),
	)

	var files []file
	err := fs.WalkDir(templateFS, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		contents, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(p, templateRoot+"/")
		segments := lo.Map(strings.Split(rel, "/"), func(s string, _ int) string {
			if s == nameSegment {
				return opts.Name
			}
			return s
		})
		files = append(files, file{
			rel:      filepath.FromSlash(path.Join(segments...)),
			contents: []byte(replacer.Replace(string(contents))),
			mode:     0o644,
		})
		return nil
	})
	return files, err
}

func engineDirective(enginePath string) string {
	if enginePath == "" {
		return "find_package(NovelRT REQUIRED)"
	}
	include := filepath.ToSlash(filepath.Join(enginePath, "lib", "NovelRT.cmake"))
	return fmt.Sprintf("include(%q)", include)
}
