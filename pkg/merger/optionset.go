// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package merger

import (
	"iter"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"novelrt.io/x/sdk/pkg/manifest"
)

const (
	// ConfigOption selects the build configuration
	ConfigOption = "config"
	// VerboseOption raises build tool and log verbosity
	VerboseOption = "verbose"
	// EngineBuildOption marks a build of the engine itself, which skips samples and docs
	EngineBuildOption = "engineBuild"
)

// ReservedOptions steer nrt itself and are not forwarded to the build tool.
var ReservedOptions = []string{ConfigOption, VerboseOption, EngineBuildOption}

// Defaults are the lowest-precedence option values. A Defaults value never changes
// after construction.
type Defaults struct {
	values manifest.Options
}

func NewDefaults(values map[string]manifest.Value) Defaults {
	return Defaults{values: manifest.Options(values).Copy()}
}

// SDKDefaults mirrors what a freshly generated project builds with.
func SDKDefaults() Defaults {
	return NewDefaults(map[string]manifest.Value{
		ConfigOption:      manifest.Value(Debug.String()),
		VerboseOption:     manifest.False,
		EngineBuildOption: manifest.False,
	})
}

func (d Defaults) Get(key string) (manifest.Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d Defaults) Keys() []string {
	return d.values.Keys()
}

func (d Defaults) Map() manifest.Options {
	return d.values.Copy()
}

// OptionSet is the merged option mapping. Iteration is always in key order.
type OptionSet struct {
	values manifest.Options
}

func NewOptionSet(values manifest.Options) OptionSet {
	return OptionSet{values: values.Copy()}
}

func (o OptionSet) Get(key string) (manifest.Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o OptionSet) Len() int {
	return len(o.values)
}

func (o OptionSet) Keys() []string {
	return o.values.Keys()
}

func (o OptionSet) Map() manifest.Options {
	return o.values.Copy()
}

func (o OptionSet) All() iter.Seq2[string, manifest.Value] {
	return func(yield func(string, manifest.Value) bool) {
		for _, k := range o.values.Keys() {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// Qualified yields the `package:option` entries.
func (o OptionSet) Qualified() iter.Seq2[string, manifest.Value] {
	return o.filter(func(k string) bool {
		pkg, _ := manifest.SplitKey(k)
		return pkg != ""
	})
}

// Root yields the unqualified entries, reserved ones included.
func (o OptionSet) Root() iter.Seq2[string, manifest.Value] {
	return o.filter(func(k string) bool {
		pkg, _ := manifest.SplitKey(k)
		return pkg == ""
	})
}

func (o OptionSet) filter(keep func(string) bool) iter.Seq2[string, manifest.Value] {
	return func(yield func(string, manifest.Value) bool) {
		for k, v := range o.All() {
			if keep(k) && !yield(k, v) {
				return
			}
		}
	}
}

func IsReserved(key string) bool {
	return lo.Contains(ReservedOptions, key)
}

func (o OptionSet) MarshalYAML() ([]byte, error) {
	ms := make(yaml.MapSlice, 0, len(o.values))
	for k, v := range o.All() {
		ms = append(ms, yaml.MapItem{Key: k, Value: v.String()})
	}
	return yaml.Marshal(ms)
}

var _ yaml.BytesMarshaler = OptionSet{}
