// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testdata

import _ "embed"

//go:embed novelrt.yaml
var SampleYaml []byte

//go:embed novelrt.hcl
var SampleHcl []byte
