// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"novelrt.io/x/sdk/pkg/buildtool"
	"novelrt.io/x/sdk/pkg/engine"
	"novelrt.io/x/sdk/pkg/lockfile"
	"novelrt.io/x/sdk/pkg/manifest"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/sdkerrors"
	"novelrt.io/x/sdk/pkg/testutil"
	"novelrt.io/x/sdk/pkg/toolcheck"
)

type MainSuite struct {
	testutil.CommonSetupSuite
}

func TestSuite(t *testing.T) {
	suite.Run(t, &MainSuite{})
}

type resolvedDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type resolution struct {
	Project      string               `yaml:"project"`
	Platform     string               `yaml:"platform"`
	BuildType    string               `yaml:"build-type"`
	Dependencies []resolvedDependency `yaml:"dependencies"`
	Options      map[string]string    `yaml:"options"`
}

func (r *resolution) dependencyNames() []string {
	return lo.Map(r.Dependencies, func(d resolvedDependency, _ int) string { return d.Name })
}

// newProject generates a project and points NOVELRT_PROJECT at it.
func newProject(t *testing.T, name string) string {
	dir := filepath.Join(t.TempDir(), name)
	output := runOk(t, "new", name, "-o", dir)
	assert.Contains(t, output, "Created "+name)
	t.Setenv(manifest.ProjectEnvVar, dir)
	return dir
}

func runResolve(t *testing.T, args ...string) *resolution {
	output := runOk(t, append([]string{"resolve"}, args...)...)
	r := &resolution{}
	require.NoError(t, yaml.Unmarshal([]byte(output), r))
	return r
}

func (suite *MainSuite) TestNewAndResolve() {
	t := suite.T()
	dir := newProject(t, "Game")
	assert.FileExists(t, filepath.Join(dir, "novelrt.yaml"))
	assert.FileExists(t, filepath.Join(dir, "src", "Game", "main.cpp"))

	r := runResolve(t, "--platform", "linux/x86_64")
	assert.Equal(t, "Game", r.Project)
	assert.Equal(t, "Linux/x86_64/gcc", r.Platform)
	assert.Equal(t, "Debug", r.BuildType)
	assert.Contains(t, r.dependencyNames(), "glfw")
	assert.NotContains(t, r.dependencyNames(), "moltenvk")

	t.Run("platform conditions", func(t *testing.T) {
		r := runResolve(t, "--platform", "macos/armv8")
		assert.Contains(t, r.dependencyNames(), "moltenvk")
		assert.Equal(t, "True", r.Options["moltenvk:shared"])
	})

	t.Run("overrides", func(t *testing.T) {
		r := runResolve(t, "--platform", "linux/x86_64", "--config", "Release", "-o", "glfw:shared=False")
		assert.Equal(t, "Release", r.BuildType)
		assert.Equal(t, "False", r.Options["glfw:shared"])
	})

	t.Run("stable output", func(t *testing.T) {
		assert.Equal(t, runOk(t, "resolve", "--platform", "windows/x86_64"), runOk(t, "resolve", "--platform", "windows/x86_64"))
	})

	t.Run("table", func(t *testing.T) {
		output := runOk(t, "resolve", "--output", "table")
		assert.Contains(t, output, "Game 0.0.1")
		assert.Contains(t, output, "spdlog")
	})
}

func (suite *MainSuite) TestLockfile() {
	t := suite.T()
	dir := newProject(t, "Locked")

	runOk(t, "resolve", "--platform", "linux/x86_64", "--lock")
	assert.FileExists(t, lockfile.Path(dir))
	runOk(t, "resolve", "--platform", "linux/x86_64", "--check")

	_, err := run(t, "resolve", "--platform", "linux/x86_64", "--check", "-o", "glfw:shared=False")
	assert.ErrorIs(t, err, lockfile.ErrLockfileOutOfSync)
	assert.ErrorContains(t, err, "option glfw:shared")
}

func (suite *MainSuite) TestMalformedManifest() {
	t := suite.T()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "novelrt.yaml"), []byte("apiVersion: novelrt.io/v1\nkind: Project\nspec:\n  version: 1.0.0\n"), 0o644))
	t.Setenv(manifest.ProjectEnvVar, dir)

	_, err := run(t, "resolve")
	assert.ErrorIs(t, err, manifest.ErrMalformedManifest)
	assert.Equal(t, 2, sdkerrors.ExitCode(err))
}

func (suite *MainSuite) TestBuildAndTest() {
	t := suite.T()
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as cmake")
	}
	dir := newProject(t, "Game")

	// a stand-in for cmake that logs its arguments and "builds" the executable
	log := filepath.Join(t.TempDir(), "cmake.log")
	cmake := filepath.Join(t.TempDir(), "cmake")
	script := `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "cmake version 3.25.1"
  exit 0
fi
echo "$@" >> "` + log + `"
if [ "$1" = "--build" ]; then
  mkdir -p "$2/src/Game"
  printf '#!/bin/sh\necho "Hello from Game!"\nexit ${GAME_EXIT:-0}\n' > "$2/src/Game/Game"
  chmod +x "$2/src/Game/Game"
fi
`
	require.NoError(t, os.WriteFile(cmake, []byte(script), 0o755))
	t.Setenv(sdkconfig.CMakeEnvVar, cmake)

	runOk(t, "build", "--skip-install", "--config", "Release")

	calls, err := os.ReadFile(log)
	require.NoError(t, err)
	assert.Contains(t, string(calls), "-DCMAKE_BUILD_TYPE=Release")
	assert.Contains(t, string(calls), "--build "+filepath.Join(dir, "build")+" --config Release")
	assert.FileExists(t, filepath.Join(dir, "build", "bin", "Game"))

	t.Run("test", func(t *testing.T) {
		output := runOk(t, "test", "Game", "--expect", "Hello from Game!")
		assert.Contains(t, output, "Game ran successfully")
	})

	t.Run("exit code is propagated", func(t *testing.T) {
		t.Setenv("GAME_EXIT", "3")
		_, err := run(t, "test", "Game")
		assert.ErrorIs(t, err, buildtool.ErrTestFailed)
		assert.Equal(t, 3, sdkerrors.ExitCode(err))
	})

	t.Run("missing executable", func(t *testing.T) {
		_, err := run(t, "test", "NotThere")
		assert.ErrorIs(t, err, buildtool.ErrTestExecutableNotFound)
		assert.Equal(t, 5, sdkerrors.ExitCode(err))
	})
}

func (suite *MainSuite) TestBuildFailure() {
	t := suite.T()
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as cmake")
	}
	newProject(t, "Broken")

	cmake := filepath.Join(t.TempDir(), "cmake")
	writeTool(t, cmake, "cmake version 3.25.1", "echo 'CMake Error: no compiler' >&2\nexit 1")
	t.Setenv(sdkconfig.CMakeEnvVar, cmake)

	_, err := run(t, "build", "--skip-install")
	assert.ErrorIs(t, err, buildtool.ErrConfigureFailed)
	assert.ErrorContains(t, err, "CMake Error: no compiler")
	assert.Equal(t, 3, sdkerrors.ExitCode(err))
}

// writeTool writes a shell script that prints version for --version and runs body otherwise.
func writeTool(t *testing.T, path, version, body string) {
	t.Helper()
	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then\n  echo \"" + version + "\"\n  exit 0\nfi\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
}

func (suite *MainSuite) TestBuildChecksToolVersions() {
	t := suite.T()
	if runtime.GOOS == "windows" {
		t.Skip("uses shell scripts as tools")
	}
	dir := newProject(t, "Checked")

	configured := filepath.Join(t.TempDir(), "configured")
	cmake := filepath.Join(t.TempDir(), "cmake")
	t.Setenv(sdkconfig.CMakeEnvVar, cmake)

	t.Run("old cmake", func(t *testing.T) {
		writeTool(t, cmake, "cmake version 3.16.3", "touch '"+configured+"'")
		_, err := run(t, "build", "--skip-install")
		assert.ErrorIs(t, err, toolcheck.ErrToolTooOld)
		assert.ErrorContains(t, err, "3.19.8")
		assert.Equal(t, 6, sdkerrors.ExitCode(err))
		assert.NoFileExists(t, configured)
	})

	t.Run("old conan", func(t *testing.T) {
		writeTool(t, cmake, "cmake version 3.25.1", "touch '"+configured+"'")
		conan := filepath.Join(t.TempDir(), "conan")
		writeTool(t, conan, "Conan version 1.40.0", "exit 0")
		t.Setenv(sdkconfig.ConanEnvVar, conan)

		_, err := run(t, "build")
		assert.ErrorIs(t, err, toolcheck.ErrToolTooOld)
		assert.ErrorContains(t, err, "conan")
		assert.NoFileExists(t, configured)
	})

	t.Run("new project configure", func(t *testing.T) {
		writeTool(t, cmake, "cmake version 3.10.2", "touch '"+configured+"'")
		_, err := run(t, "new", "Other", "-o", filepath.Join(dir, "other"), "-c", "--skip-install")
		assert.ErrorIs(t, err, toolcheck.ErrToolTooOld)
		assert.NoFileExists(t, configured)
	})
}

func (suite *MainSuite) TestDoctorMissingTool() {
	t := suite.T()
	t.Setenv(sdkconfig.CMakeEnvVar, filepath.Join(t.TempDir(), "no-such-cmake"))

	_, err := run(t, "doctor", "--skip-install")
	assert.ErrorIs(t, err, buildtool.ErrToolNotFound)
	assert.Equal(t, 6, sdkerrors.ExitCode(err))
}

func (suite *MainSuite) TestEngineCommands() {
	t := suite.T()
	ctx := testutil.Context(t)
	client, _ := testutil.StartRegistry(t)
	testutil.PushEngine(t, ctx, client, "0.1.0")
	testutil.PushEngine(t, ctx, client, "0.2.0", "latest")

	output := runOk(t, "engine", "list", "--all")
	assert.Contains(t, output, "0.1.0")
	assert.Contains(t, output, "latest")

	runOk(t, "engine", "install", "latest")
	installed, err := engine.List(suite.Config())
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, "0.2.0", installed[0].Version.String())
	assert.FileExists(t, installed[0].CMakeInclude())

	t.Run("new projects use the installed engine", func(t *testing.T) {
		dir := newProject(t, "WithEngine")
		root, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
		require.NoError(t, err)
		assert.Contains(t, string(root), installed[0].CMakeInclude())
	})

	runOk(t, "engine", "uninstall", "0.2.0")
	installed, err = engine.List(suite.Config())
	require.NoError(t, err)
	assert.Empty(t, installed)

	_, err = run(t, "engine", "uninstall", "0.2.0")
	assert.ErrorIs(t, err, engine.ErrEngineNotInstalled)
}

func (suite *MainSuite) TestProfiles() {
	t := suite.T()
	config := suite.Config()
	profiles := filepath.Join(config.ConanConfigPath, "profiles")
	require.NoError(t, os.MkdirAll(profiles, 0o755))
	for _, name := range []string{"linux-gcc9-amd64", "macOS-appleclang12-amd64", "windows-vs2019-amd64"} {
		require.NoError(t, os.WriteFile(filepath.Join(profiles, name), []byte("[settings]\n"), 0o644))
	}

	output := runOk(t, "profiles", "--platform", "linux/x86_64")
	assert.Contains(t, output, "* linux-gcc9-amd64")
	assert.Contains(t, output, "windows-vs2019-amd64")
}

func (suite *MainSuite) TestVersion() {
	t := suite.T()
	output := runOk(t, "version")
	assert.Contains(t, output, "version:")
}

func (suite *MainSuite) TestCommandGroups() {
	t := suite.T()
	cmd, _, _ := createTestRootCmd(t, "--help")
	projectCommands := lo.Filter(cmd.Commands(), func(c *cobra.Command, _ int) bool {
		return c.GroupID == projectGroupId
	})
	assert.ElementsMatch(t, []string{"new", "resolve", "build", "test", "publish"}, lo.Map(projectCommands, func(c *cobra.Command, _ int) string {
		return c.Name()
	}))
}

func run(t *testing.T, args ...string) (string, error) {
	cmd, r, w := createTestRootCmd(t, args...)
	err := cmd.Execute()
	require.NoError(t, w.Close())

	output, readErr := io.ReadAll(r)
	require.NoError(t, readErr)
	return string(output), err
}

func runOk(t *testing.T, args ...string) string {
	output, err := run(t, args...)
	require.NoError(t, err, output)
	return output
}

func createTestRootCmd(t *testing.T, args ...string) (rootCmd *cobra.Command, r *os.File, w *os.File) {
	ctx := testutil.Context(t)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})

	app := App{
		Stderr: w,
		Stdout: w,
		Stdin:  nil,
		OsArgs: append([]string{NrtName}, args...),
	}

	rootCmd, err = RootCmd(ctx, &app)
	require.NoError(t, err)

	return
}
