// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"maps"
	"slices"

	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/merger"
)

const DefaultCMake = "cmake"

// engineBuildDefinitions are forced off when building the engine from source.
var engineBuildDefinitions = map[string]string{
	"NOVELRT_BUILD_SAMPLES":       "OFF",
	"NOVELRT_BUILD_DOCUMENTATION": "OFF",
}

type CMake struct {
	Path string
}

func NewCMake(path string) *CMake {
	if path == "" {
		path = DefaultCMake
	}
	return &CMake{Path: path}
}

// ConfigureArgs translates the effective configuration into a configure invocation.
// Definitions after the fixed prefix are sorted by name.
func (c *CMake) ConfigureArgs(cfg *merger.EffectiveConfig, sourceDir, buildDir string) []string {
	args := []string{
		"-S", sourceDir,
		"-B", buildDir,
		"--no-warn-unused-cli",
		"-DCMAKE_BUILD_TYPE=" + cfg.BuildType.String(),
	}
	if cfg.Verbose {
		args = append(args, "-DCMAKE_VERBOSE_MAKEFILE=ON")
	}

	defs := Definitions(cfg)
	for _, k := range slices.Sorted(maps.Keys(defs)) {
		args = append(args, "-D"+k+"="+defs[k])
	}
	return args
}

// Definitions collects the -D values for a configuration. Later sources win:
// engine-build switches, manifest definitions, then root options.
func Definitions(cfg *merger.EffectiveConfig) map[string]string {
	defs := map[string]string{}
	if cfg.EngineBuild {
		maps.Copy(defs, engineBuildDefinitions)
	}
	for k, v := range cfg.Definitions {
		defs[k] = definitionValue(v)
	}
	for k, v := range cfg.Options.Root() {
		if merger.IsReserved(k) {
			continue
		}
		defs[k] = definitionValue(v)
	}
	return defs
}

func definitionValue(v manifest.Value) string {
	if b, ok := v.Bool(); ok {
		if b {
			return "ON"
		}
		return "OFF"
	}
	return v.String()
}

func (c *CMake) BuildArgs(cfg *merger.EffectiveConfig, buildDir string) []string {
	args := []string{"--build", buildDir, "--config", cfg.BuildType.String()}
	if cfg.Verbose {
		args = append(args, "--verbose")
	}
	return args
}

func (c *CMake) Configure(cfg *merger.EffectiveConfig, sourceDir, buildDir string) Invocation {
	return Invocation{Path: c.Path, Args: c.ConfigureArgs(cfg, sourceDir, buildDir)}
}

func (c *CMake) Build(cfg *merger.EffectiveConfig, buildDir string) Invocation {
	return Invocation{Path: c.Path, Args: c.BuildArgs(cfg, buildDir)}
}
