// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

const (
	True  Value = "True"
	False Value = "False"
)

// Value is an option value. Booleans are normalized to True/False so that
// manifests written with `true`, `True` or `yes` merge to the same value.
type Value string

func ValueOf(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return True
		}
		return False
	case string:
		return Value(v)
	case Value:
		return v
	default:
		return Value(fmt.Sprint(v))
	}
}

func (v Value) String() string {
	return string(v)
}

// Bool interprets the value as a switch.
func (v Value) Bool() (bool, bool) {
	switch strings.ToLower(string(v)) {
	case "true", "on", "yes", "1":
		return true, true
	case "false", "off", "no", "0":
		return false, true
	}
	return false, false
}

func (v *Value) UnmarshalYAML(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal option value: %w", err)
	}
	switch raw.(type) {
	case map[string]any, []any:
		return fmt.Errorf("option values must be scalars, got %q", strings.TrimSpace(string(data)))
	case nil, bool, string:
		*v = ValueOf(raw)
	default:
		// numbers keep their spelling, 3.10 must not become 3.1
		if text, ok := numberText(data); ok {
			*v = Value(text)
		} else {
			*v = ValueOf(raw)
		}
	}
	return nil
}

func numberText(data []byte) (string, bool) {
	f, err := parser.ParseBytes(data, 0)
	if err != nil || len(f.Docs) != 1 || f.Docs[0].Body == nil {
		return "", false
	}
	switch n := f.Docs[0].Body.(type) {
	case *ast.IntegerNode, *ast.FloatNode, *ast.InfinityNode, *ast.NanNode:
		return n.GetToken().Value, true
	}
	return "", false
}

var _ yaml.BytesUnmarshaler = (*Value)(nil)

// Options maps an option name (either `package:option` or a bare root option) to its value.
type Options map[string]Value

func (o Options) Copy() Options {
	if o == nil {
		return Options{}
	}
	return maps.Clone(o)
}

// Keys in sorted order.
func (o Options) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

// SplitKey separates `package:option`; root options have an empty package.
func SplitKey(key string) (pkg, option string) {
	if i := strings.Index(key, ":"); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

func QualifyKey(pkg, option string) string {
	if pkg == "" || strings.Contains(option, ":") {
		return option
	}
	return pkg + ":" + option
}

func validateOptionKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty option name", ErrMalformedManifest)
	}
	if strings.Count(key, ":") > 1 {
		return fmt.Errorf("%w: option %q has more than one ':' separator", ErrMalformedManifest, key)
	}
	pkg, option := SplitKey(key)
	if strings.Contains(key, ":") && (pkg == "" || option == "") {
		return fmt.Errorf("%w: option %q must be of the form 'package:option'", ErrMalformedManifest, key)
	}
	return nil
}

// ParseAssignment reads a `key=value` command-line override.
func ParseAssignment(s string) (string, Value, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid option override %q: expected key=value", s)
	}
	k = strings.TrimSpace(k)
	if err := validateOptionKey(k); err != nil {
		return "", "", err
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		return k, ValueOf(b), nil
	}
	return k, Value(strings.TrimSpace(v)), nil
}
