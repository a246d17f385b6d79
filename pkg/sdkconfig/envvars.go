// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sdkconfig

const envVarPrefix = "NOVELRT_"

const (
	// HomeEnvVar
	// NOVELRT_HOME is the absolute path to the `nrt` home directory
	HomeEnvVar = envVarPrefix + "HOME"

	// RegistryEnvVar
	// NOVELRT_REGISTRY overrides the OCI registry engine distributions are downloaded from
	RegistryEnvVar = envVarPrefix + "REGISTRY"

	// RegistryAuthEnvVar
	// NOVELRT_REGISTRY_AUTH is a path to a docker-style config.json used to authenticate to the registry
	// 	default: $HOME/.docker/config.json
	RegistryAuthEnvVar = envVarPrefix + "REGISTRY_AUTH"

	// InsecureRegistryEnvVar
	// NOVELRT_INSECURE_REGISTRY allows plain http registries, without auth
	InsecureRegistryEnvVar = envVarPrefix + "INSECURE_REGISTRY"

	// ConanConfigURLEnvVar
	// NOVELRT_CONAN_CONFIG_URL is the git repository holding the conan profiles
	ConanConfigURLEnvVar = envVarPrefix + "CONAN_CONFIG_URL"

	// ConanProfileEnvVar
	// NOVELRT_CONAN_PROFILE picks a conan profile instead of selecting one for the current platform
	ConanProfileEnvVar = envVarPrefix + "CONAN_PROFILE"

	// CMakeEnvVar
	// NOVELRT_CMAKE is the cmake executable to use
	CMakeEnvVar = envVarPrefix + "CMAKE"

	// ConanEnvVar
	// NOVELRT_CONAN is the conan executable to use
	ConanEnvVar = envVarPrefix + "CONAN"

	// SkipInstallEnvVar
	// NOVELRT_SKIP_INSTALL skips `conan install` before configuring, for prepared build directories
	SkipInstallEnvVar = envVarPrefix + "SKIP_INSTALL"

	// LogLevelEnvVar
	// NOVELRT_LOG_LEVEL sets the log level.
	// 	Default: info
	//  Possible values: debug info warn error
	LogLevelEnvVar = envVarPrefix + "LOG_LEVEL"
)
