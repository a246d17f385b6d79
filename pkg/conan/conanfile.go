// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package conan

import (
	"bytes"
	"fmt"

	"novelrt.io/x/sdk/pkg/merger"
)

const ConanfileName = "conanfile.txt"

// LicensesDir is where the license files of every dependency are imported to,
// one subdirectory per package, relative to the build directory.
const LicensesDir = "licenses"

var DefaultGenerators = []string{"cmake_find_package", "cmake_paths"}

// RenderConanfile writes the resolved dependencies in conanfile.txt form. Only
// package-qualified options are passed on; root options belong to the build tool.
func RenderConanfile(cfg *merger.EffectiveConfig) []byte {
	var b bytes.Buffer

	b.WriteString("[requires]\n")
	for _, d := range cfg.Dependencies {
		b.WriteString(d.Reference() + "\n")
	}

	generators := cfg.Generators
	if len(generators) == 0 {
		generators = DefaultGenerators
	}
	b.WriteString("\n[generators]\n")
	for _, g := range generators {
		b.WriteString(g + "\n")
	}

	b.WriteString("\n[options]\n")
	for k, v := range cfg.Options.Qualified() {
		fmt.Fprintf(&b, "%s=%s\n", k, v)
	}

	b.WriteString("\n[imports]\n")
	fmt.Fprintf(&b, "., license* -> ./%s @ folder=True, ignore_case=True\n", LicensesDir)
	return b.Bytes()
}
