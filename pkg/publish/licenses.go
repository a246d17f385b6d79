// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/conan"
)

const LicensesFilename = "LICENSES"

// CollectLicenses maps each dependency to the license files conan imported for it
// into buildDir. A build without imported licenses yields an empty map.
func CollectLicenses(buildDir string) (map[string][]string, error) {
	root := filepath.Join(buildDir, conan.LicensesDir)
	packages, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return map[string][]string{}, nil
	} else if err != nil {
		return nil, err
	}

	licenses := map[string][]string{}
	for _, pkg := range lo.Filter(packages, func(e os.DirEntry, _ int) bool { return e.IsDir() }) {
		var files []string
		err := filepath.WalkDir(filepath.Join(root, pkg.Name()), func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			slices.Sort(files)
			licenses[pkg.Name()] = files
		}
	}
	return licenses, nil
}

// WriteLicensesFile combines the dependencies' licenses into a single LICENSES file.
func WriteLicensesFile(licenses map[string][]string, outputDir string) error {
	var b strings.Builder

	b.WriteString("LICENSES\n")
	b.WriteString("============================================================\n\n")
	b.WriteString("This product includes third-party software.\n")
	b.WriteString("The license terms for each dependency are provided below.")

	names := lo.Keys(licenses)
	slices.Sort(names)

	for _, name := range names {
		b.WriteString("\n\n------------------------------------------------------------\n")
		fmt.Fprintf(&b, "Dependency: %s\n", name)
		for _, f := range licenses[name] {
			license, err := os.ReadFile(f)
			if err != nil {
				return err
			}
			b.WriteString("\n")
			b.WriteString(strings.TrimSpace(string(license)))
			b.WriteString("\n")
		}
	}

	return os.WriteFile(filepath.Join(outputDir, LicensesFilename), []byte(b.String()), 0o644)
}
