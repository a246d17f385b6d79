// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
)

type OS int

const (
	Unknown OS = iota
	Windows
	Macos
	Linux
	FreeBSD
)

var AllOS = []OS{Windows, Macos, Linux, FreeBSD}

// ParseOS accepts both the settings spelling (Windows, Macos, Linux) and the
// GOOS spelling (windows, darwin, linux).
func ParseOS(s string) (OS, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windows", "win32", "win":
		return Windows, nil
	case "macos", "darwin", "osx", "mac":
		return Macos, nil
	case "linux":
		return Linux, nil
	case "freebsd":
		return FreeBSD, nil
	default:
		return Unknown, fmt.Errorf("unknown operating system %q. must be one of %v", s, AllOS)
	}
}

func (o OS) String() string {
	switch o {
	case Windows:
		return "Windows"
	case Macos:
		return "Macos"
	case Linux:
		return "Linux"
	case FreeBSD:
		return "FreeBSD"
	default:
		return "Unknown"
	}
}

// GOOS is the Go spelling, used for OCI platform matching.
func (o OS) GOOS() string {
	switch o {
	case Windows:
		return "windows"
	case Macos:
		return "darwin"
	case Linux:
		return "linux"
	case FreeBSD:
		return "freebsd"
	default:
		return "unknown"
	}
}

func (o OS) MarshalYAML() ([]byte, error) {
	if o == Unknown {
		return nil, fmt.Errorf("cannot marshal unknown operating system")
	}
	return []byte(o.String()), nil
}

func (o *OS) UnmarshalYAML(data []byte) error {
	var s string
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal os: %w", err)
	}
	parsed, err := ParseOS(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

var _ yaml.BytesUnmarshaler = (*OS)(nil)
var _ yaml.BytesMarshaler = OS(0)

// Descriptor is what platform-conditional requirements are evaluated against.
type Descriptor struct {
	OS       OS
	Arch     string
	Compiler string
}

// Parse reads "<os>/<arch>" with an optional trailing "/<compiler>".
func Parse(s string) (*Descriptor, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("failed to parse platform %q: expected format os/arch[/compiler]", s)
	}
	o, err := ParseOS(parts[0])
	if err != nil {
		return nil, err
	}
	d := &Descriptor{OS: o, Arch: normalizeArch(parts[1]), Compiler: defaultCompiler(o)}
	if len(parts) == 3 && parts[2] != "" {
		d.Compiler = parts[2]
	}
	return d, nil
}

func Current() *Descriptor {
	o, err := ParseOS(runtime.GOOS)
	if err != nil {
		o = Unknown
	}
	return &Descriptor{
		OS:       o,
		Arch:     normalizeArch(runtime.GOARCH),
		Compiler: defaultCompiler(o),
	}
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s/%s/%s", d.OS.String(), d.Arch, d.Compiler)
}

func (d *Descriptor) Equal(other *Descriptor) bool {
	return other != nil && d.OS == other.OS && d.Arch == other.Arch && d.Compiler == other.Compiler
}

// IsWindowsLike reports whether dynamic libraries have to sit next to the executable.
func (d *Descriptor) IsWindowsLike() bool {
	return d.OS == Windows
}

// ExecutableName appends the platform's executable suffix.
func (d *Descriptor) ExecutableName(name string) string {
	if d.IsWindowsLike() && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}

// ProfileID is the token dependency profiles are named after.
func (d *Descriptor) ProfileID() string {
	switch d.OS {
	case Macos:
		return "macOS"
	case Linux:
		return "linux"
	default:
		return "windows"
	}
}

func (d *Descriptor) ToOras() *v1.Platform {
	return &v1.Platform{OS: d.OS.GOOS(), Architecture: goArch(d.Arch)}
}

func (d *Descriptor) MarshalYAML() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Descriptor) UnmarshalYAML(data []byte) error {
	var s string
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal platform: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

var _ yaml.BytesUnmarshaler = (*Descriptor)(nil)
var _ yaml.BytesMarshaler = (*Descriptor)(nil)

func defaultCompiler(o OS) string {
	switch o {
	case Windows:
		return "msvc"
	case Macos:
		return "apple-clang"
	default:
		return "gcc"
	}
}

// normalizeArch maps GOARCH names onto the settings vocabulary.
func normalizeArch(arch string) string {
	switch strings.ToLower(arch) {
	case "amd64", "x86_64", "x64":
		return "x86_64"
	case "arm64", "aarch64", "armv8":
		return "armv8"
	case "386", "x86":
		return "x86"
	default:
		return strings.ToLower(arch)
	}
}

func goArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "armv8":
		return "arm64"
	case "x86":
		return "386"
	default:
		return arch
	}
}
