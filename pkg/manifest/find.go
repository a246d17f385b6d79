// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectEnvVar
// NOVELRT_PROJECT is a path to a project directory.
// This allows running a command against a project without changing directory
const ProjectEnvVar = "NOVELRT_PROJECT"

// FileNames are tried in order in each directory.
var FileNames = []string{"novelrt.yaml", "novelrt.yml", "novelrt.hcl"}

var ErrNoManifest = fmt.Errorf("no novelrt.yaml found in the current directory or any of its parents")

// Find locates the project manifest. NOVELRT_PROJECT takes precedence over the
// search through startDir and its ancestors.
func Find(startDir string) (string, error) {
	if dir, ok := os.LookupEnv(ProjectEnvVar); ok {
		p, found, err := findIn(dir)
		if err != nil {
			return "", err
		}
		if !found {
			return "", fmt.Errorf("%w (%s=%q)", ErrNoManifest, ProjectEnvVar, dir)
		}
		return p, nil
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		p, found, err := findIn(dir)
		if err != nil {
			return "", err
		}
		if found {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoManifest
		}
		dir = parent
	}
}

func findIn(dir string) (string, bool, error) {
	for _, name := range FileNames {
		f := filepath.Join(dir, name)
		info, err := os.Stat(f)
		if err == nil && !info.IsDir() {
			abs, err := filepath.Abs(f)
			return abs, err == nil, err
		}
	}
	return "", false, nil
}

// Load finds and reads the project manifest.
func Load(startDir string) (*Manifest, error) {
	p, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	return Read(p)
}
