// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"novelrt.io/x/sdk/pkg/manifest/testdata"
	"novelrt.io/x/sdk/pkg/platform"
)

const header = "apiVersion: novelrt.io/v1\nkind: Project\n"

func TestReadContents(t *testing.T) {
	m, err := ReadContents(testdata.SampleYaml, "-")
	require.NoError(t, err)
	assert.Equal(t, "Sample", m.Spec.Name)

	records := m.Records()
	require.Len(t, records, 10)
	assert.Equal(t, "freetype", records[0].Name())
	assert.Equal(t, "2.10.1", records[0].VersionConstraint())

	openal, ok := lo.Find(records, func(r DependencyRecord) bool { return r.Name() == "openal" })
	require.True(t, ok)
	assert.Equal(t, Options{"shared": True}, openal.Options())
	assert.Equal(t, Options{"openal:shared": True}, openal.QualifiedOptions())
	assert.Equal(t, "openal/1.21.1", openal.Reference())

	_, ok = records[0].Constraint()
	assert.True(t, ok)
	_, ok = records[len(records)-1].Constraint()
	assert.False(t, ok, "four-part versions are kept as opaque strings")

	assert.Equal(t, True, m.Spec.DefaultOptions["freetype:shared"])
	assert.Equal(t, Value("Debug"), m.Spec.DefaultOptions["config"])

	domain, ok := m.Domain("config")
	require.True(t, ok)
	assert.Contains(t, domain, Value("RelWithDebInfo"))

	conditions := m.Conditions()
	require.Len(t, conditions, 1)
	assert.True(t, conditions[0].Holds(platform.Descriptor{OS: platform.Macos, Arch: "armv8", Compiler: "apple-clang"}))
	assert.False(t, conditions[0].Holds(platform.Descriptor{OS: platform.Linux, Arch: "x86_64", Compiler: "gcc"}))
	assert.Equal(t, "moltenvk", conditions[0].ExtraDependencies()[0].Name())
	assert.Contains(t, conditions[0].Name(), "os=Macos")
}

func TestHclMatchesYaml(t *testing.T) {
	fromYaml, err := ReadContents(testdata.SampleYaml, "novelrt.yaml")
	require.NoError(t, err)
	fromHcl, err := ReadHCL(testdata.SampleHcl, "novelrt.hcl")
	require.NoError(t, err)

	type flat struct {
		Name, Version string
		Options       Options
	}
	flatten := func(rs []DependencyRecord) []flat {
		return lo.Map(rs, func(r DependencyRecord, _ int) flat {
			return flat{r.Name(), r.VersionConstraint(), r.Options()}
		})
	}

	assert.Equal(t, flatten(fromYaml.Records()), flatten(fromHcl.Records()))
	assert.Equal(t, fromYaml.Spec.DefaultOptions, fromHcl.Spec.DefaultOptions)
	assert.Equal(t, fromYaml.Spec.Options, fromHcl.Spec.Options)
	assert.Equal(t, fromYaml.Spec.Definitions, fromHcl.Spec.Definitions)
	assert.Equal(t, fromYaml.Spec.Generators, fromHcl.Spec.Generators)

	yc, hc := fromYaml.Conditions(), fromHcl.Conditions()
	require.Len(t, hc, len(yc))
	assert.Equal(t, yc[0].ExtraOptions(), hc[0].ExtraOptions())
	assert.Equal(t, flatten(yc[0].ExtraDependencies()), flatten(hc[0].ExtraDependencies()))
	assert.Equal(t, yc[0].Message, hc[0].Message)
}

func TestNumericOptionsKeepSpelling(t *testing.T) {
	y := header + `spec:
  name: x
  version: 1.0.0
  options:
    level: [1.0, 2.0]
  default-options:
    "glm:version": 3.10
    level: 1.0
    count: 8
`
	h := `api_version = "novelrt.io/v1"
kind        = "Project"
project "x" {
  version         = "1.0.0"
  options         = { level = [1.0, 2.0] }
  default_options = { "glm:version" = 3.10, level = 1.0, count = 8 }
}
`
	fromYaml, err := ReadContents([]byte(y), "novelrt.yaml")
	require.NoError(t, err)
	fromHcl, err := ReadHCL([]byte(h), "novelrt.hcl")
	require.NoError(t, err)

	for _, m := range []*Manifest{fromYaml, fromHcl} {
		assert.Equal(t, Options{"glm:version": "3.10", "level": "1.0", "count": "8"}, m.Spec.DefaultOptions, m.AbsolutePath)
		assert.Equal(t, []Value{"1.0", "2.0"}, m.Spec.Options["level"], m.AbsolutePath)
	}
}

func TestDuplicateRecords(t *testing.T) {
	y := header + `spec:
  name: dupes
  version: 1.0.0
  requires:
    - openal/1.21.1
    - freetype/2.10.1
    - openal/1.20.0
`
	_, err := ReadContents([]byte(y), "-")
	assert.ErrorIs(t, err, ErrMalformedManifest)
	assert.ErrorContains(t, err, "openal")
}

func TestConditionDuplicates(t *testing.T) {
	within := header + `spec:
  name: dupes
  version: 1.0.0
  conditions:
    - when: {os: [Macos]}
      requires: [moltenvk/1.1.6, moltenvk/1.1.7]
`
	_, err := ReadContents([]byte(within), "-")
	assert.ErrorIs(t, err, ErrMalformedManifest)

	// a conditional requirement may repeat a base one; the merger keeps the base
	acrossBase := header + `spec:
  name: dupes
  version: 1.0.0
  requires: [glfw/3.3.6]
  conditions:
    - when: {os: [Linux]}
      requires: [glfw/3.3.5]
`
	m, err := ReadContents([]byte(acrossBase), "-")
	require.NoError(t, err)
	assert.Len(t, m.Conditions()[0].ExtraDependencies(), 1)
}

func TestMalformed(t *testing.T) {
	for name, y := range map[string]string{
		"missing version": header + "spec:\n  name: x\n  version: 1.0.0\n  requires:\n    - name: openal\n",
		"missing name":    header + "spec:\n  name: x\n  version: 1.0.0\n  requires:\n    - version: 1.0.0\n",
		"no separator":    header + "spec:\n  name: x\n  version: 1.0.0\n  requires: [openal]\n",
		"no spec":         header,
		"no project name": header + "spec:\n  version: 1.0.0\n",
		"wrong kind":      "apiVersion: novelrt.io/v1\nkind: Engine\nspec:\n  name: x\n  version: 1.0.0\n",
		"unknown field":   header + "spec:\n  name: x\n  version: 1.0.0\n  colour: blue\n",
		"unknown setting": header + "spec:\n  name: x\n  version: 1.0.0\n  settings: [cpu]\n",
		"bad option key":  header + "spec:\n  name: x\n  version: 1.0.0\n  default-options:\n    \"a:b:c\": 1\n",
		"nested value":    header + "spec:\n  name: x\n  version: 1.0.0\n  default-options:\n    config: {a: b}\n",
		"unknown os":      header + "spec:\n  name: x\n  version: 1.0.0\n  conditions:\n    - when: {os: [plan9]}\n",
		"bad definition":  header + "spec:\n  name: x\n  version: 1.0.0\n  definitions:\n    \"glfw:shared\": ON\n",
		"empty domain":    header + "spec:\n  name: x\n  version: 1.0.0\n  options:\n    config: []\n",
		"not yaml":        "{{{",
	} {
		_, err := ReadContents([]byte(y), "-")
		assert.ErrorIs(t, err, ErrMalformedManifest, name)
	}
}

func TestMissingFieldIsMalformed(t *testing.T) {
	_, err := ReadContents([]byte(header+"spec:\n  name: x\n  version: 1.0.0\n  requires:\n    - name: openal\n"), "-")
	assert.ErrorIs(t, err, MissingManifestField)
	assert.ErrorIs(t, err, ErrMalformedManifest)
}

func TestMalformedHcl(t *testing.T) {
	for name, h := range map[string]string{
		"no project":   "api_version = \"novelrt.io/v1\"\nkind = \"Project\"\n",
		"bad syntax":   "project {",
		"nested value": "api_version = \"novelrt.io/v1\"\nkind = \"Project\"\nproject \"x\" {\n  version = \"1\"\n  default_options = { a = { b = 1 } }\n}\n",
		"duplicate": "api_version = \"novelrt.io/v1\"\nkind = \"Project\"\nproject \"x\" {\n  version = \"1\"\n" +
			"  requires = [\"openal/1.21.1\"]\n  require \"openal\" {\n    version = \"1.20.0\"\n  }\n}\n",
	} {
		_, err := ReadHCL([]byte(h), "novelrt.hcl")
		assert.ErrorIs(t, err, ErrMalformedManifest, name)
	}
}

func TestRecordsAreImmutable(t *testing.T) {
	m, err := ReadContents(testdata.SampleYaml, "-")
	require.NoError(t, err)

	records := m.Records()
	openal, _ := lo.Find(records, func(r DependencyRecord) bool { return r.Name() == "openal" })
	opts := openal.Options()
	opts["shared"] = False
	records[0] = NewDependencyRecord("evil", "6.6.6", nil)

	again, _ := lo.Find(m.Records(), func(r DependencyRecord) bool { return r.Name() == "openal" })
	assert.Equal(t, True, again.Options()["shared"])
	assert.Equal(t, "freetype", m.Records()[0].Name())
}

func TestParseRequirement(t *testing.T) {
	r, err := ParseRequirement("vulkan-loader/1.2.198.0")
	require.NoError(t, err)
	assert.Equal(t, "vulkan-loader", r.Name)
	assert.Equal(t, "1.2.198.0", r.Version)

	r, err = ParseRequirement("glm@0.9.9.7")
	require.NoError(t, err)
	assert.Equal(t, "glm", r.Name)

	_, err = ParseRequirement("glm")
	assert.ErrorIs(t, err, ErrMalformedManifest)
}

func TestParseAssignment(t *testing.T) {
	k, v, err := ParseAssignment("freetype:shared=true")
	require.NoError(t, err)
	assert.Equal(t, "freetype:shared", k)
	assert.Equal(t, True, v)

	k, v, err = ParseAssignment("config=Release")
	require.NoError(t, err)
	assert.Equal(t, "config", k)
	assert.Equal(t, Value("Release"), v)

	_, _, err = ParseAssignment("config")
	assert.Error(t, err)
	_, _, err = ParseAssignment(":shared=1")
	assert.ErrorIs(t, err, ErrMalformedManifest)
}

func TestValueBool(t *testing.T) {
	for in, want := range map[Value]bool{"True": true, "on": true, "1": true, "False": false, "off": false, "no": false} {
		got, ok := in.Bool()
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := Value("Debug").Bool()
	assert.False(t, ok)
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "Sample")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "novelrt.yaml"), testdata.SampleYaml, 0o644))

	p, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, "novelrt.yaml", filepath.Base(p))

	m, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, evalSymlinks(t, root), evalSymlinks(t, m.Dir()))

	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "novelrt.hcl"), testdata.SampleHcl, 0o644))
	t.Setenv(ProjectEnvVar, other)
	p, err = Find(nested)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, "novelrt.hcl"))

	t.Setenv(ProjectEnvVar, t.TempDir())
	_, err = Find(nested)
	assert.ErrorIs(t, err, ErrNoManifest)
}

func evalSymlinks(t *testing.T, p string) string {
	t.Helper()
	r, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return r
}
