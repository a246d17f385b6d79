// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sdkconfig

const (
	ConfigFileName     = "novelrt-config.yaml"
	LockFileName       = "novelrt-lock.yaml"
	DefaultOciRegistry = "ghcr.io/novelrt"
	DefaultConanConfig = "https://github.com/NovelRT/ConanConfig.git"

	UserAgentPrefix = "nrt"
)
