// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package merger

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

type BuildType int

const (
	Debug BuildType = iota
	Release
	MinSizeRel
	RelWithDebInfo
)

var AllBuildTypes = []BuildType{Debug, Release, MinSizeRel, RelWithDebInfo}

func ParseBuildType(s string) (BuildType, error) {
	bt, ok := lo.Find(AllBuildTypes, func(b BuildType) bool {
		return strings.EqualFold(b.String(), strings.TrimSpace(s))
	})
	if !ok {
		return Debug, fmt.Errorf("unknown build configuration %q. must be one of %v", s, AllBuildTypes)
	}
	return bt, nil
}

func (b BuildType) String() string {
	switch b {
	case Release:
		return "Release"
	case MinSizeRel:
		return "MinSizeRel"
	case RelWithDebInfo:
		return "RelWithDebInfo"
	default:
		return "Debug"
	}
}

func (b BuildType) MarshalYAML() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BuildType) UnmarshalYAML(data []byte) error {
	var s string
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal build type: %w", err)
	}
	parsed, err := ParseBuildType(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

var _ yaml.BytesMarshaler = BuildType(0)
var _ yaml.BytesUnmarshaler = (*BuildType)(nil)
