// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sdkversion

// To be populated at build-time, e.g.:
// go build -ldflags "-X 'novelrt.io/x/sdk/pkg/sdkversion.Version=1.2.3'"
var (
	Version   string
	Commit    string
	BuildDate string
)

type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"build-date"`
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func Get() Info {
	return Info{
		Version:   orUnknown(Version),
		Commit:    orUnknown(Commit),
		BuildDate: orUnknown(BuildDate),
	}
}

func (i Info) String() string {
	return i.Version + " (" + i.Commit + ", built " + i.BuildDate + ")"
}
