// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import "regexp"

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidIdentifier reports whether key can be passed as a cmake cache
// variable or an environment variable name.
func IsValidIdentifier(key string) bool {
	return identifierRegex.MatchString(key)
}
