// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sdkconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	"novelrt.io/x/sdk/pkg/sdkversion"
	"novelrt.io/x/sdk/pkg/utils"
)

type Config struct {
	HomePath string `yaml:"-"`

	CachePath string `yaml:"-"`
	// oci-layout dir containing raw pulled blobs
	OciLayoutCache string `yaml:"-"`
	// dir containing one subdir per installed engine version
	EnginePath string `yaml:"-"`
	// clone of the conan configuration repository
	ConanConfigPath string `yaml:"-"`

	InstallLockPath string `yaml:"-"`

	Registry         string `yaml:"registry,omitempty" env:"NOVELRT_REGISTRY"`
	RegistryAuthPath string `yaml:"registry-auth-path,omitempty" env:"NOVELRT_REGISTRY_AUTH"`
	Insecure         bool   `yaml:"insecure,omitempty" env:"NOVELRT_INSECURE_REGISTRY"`

	ConanConfigURL string `yaml:"conan-config-url,omitempty" env:"NOVELRT_CONAN_CONFIG_URL"`
	ConanProfile   string `yaml:"conan-profile,omitempty" env:"NOVELRT_CONAN_PROFILE"`

	CMakePath   string `yaml:"cmake,omitempty" env:"NOVELRT_CMAKE"`
	ConanPath   string `yaml:"conan,omitempty" env:"NOVELRT_CONAN"`
	SkipInstall bool   `yaml:"skip-install,omitempty" env:"NOVELRT_SKIP_INSTALL"`
}

func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(c.HomePath, c.OciLayoutCache, c.EnginePath)
}

// EngineDir is where the given engine version is (or would be) installed.
func (c *Config) EngineDir(version string) string {
	return filepath.Join(c.EnginePath, version)
}

func Get() (*Config, error) {
	homePath, err := getHomePath()
	if err != nil {
		return nil, err
	}
	return GetWithCustomHome(homePath)
}

// GetWithCustomHome reads the optional config file in homePath, then applies
// environment overrides on top.
func GetWithCustomHome(homePath string) (*Config, error) {
	config := Config{}

	configFilePath := filepath.Join(homePath, ConfigFileName)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("%q is directory and not a file", configFilePath)
		}

		bytes, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}

		if err := yaml.UnmarshalWithOptions(bytes, &config, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", configFilePath, err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return nil, err
	}

	if config.Registry == "" {
		config.Registry = DefaultOciRegistry
	}
	if config.ConanConfigURL == "" {
		config.ConanConfigURL = DefaultConanConfig
	}

	cacheDir := filepath.Join(homePath, "cache")
	config.HomePath = homePath
	config.CachePath = cacheDir
	config.OciLayoutCache = filepath.Join(cacheDir, "oci-layout")
	config.EnginePath = filepath.Join(homePath, "engine")
	config.ConanConfigPath = filepath.Join(homePath, "conan-config")
	config.InstallLockPath = filepath.Join(homePath, ".lock")
	return &config, nil
}

func getHomePath() (string, error) {
	if v, ok := os.LookupEnv(HomeEnvVar); ok {
		return v, nil
	}

	return getAppUserDataDirectory("novelrt")
}

func getAppUserDataDirectory(appName string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, ok := os.LookupEnv("APPDATA")
		if !ok {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(dir, appName), nil
	default:
		dir, ok := os.LookupEnv("HOME")
		if !ok {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(dir, "."+appName), nil
	}
}

func GetUserAgent() string {
	return fmt.Sprintf("%s/%s", UserAgentPrefix, sdkversion.Get().Version)
}
