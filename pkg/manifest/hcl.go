// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"novelrt.io/x/sdk/pkg/platform"
	"novelrt.io/x/sdk/pkg/staging"
)

// The HCL form mirrors the YAML one:
//
//	api_version = "novelrt.io/v1"
//	kind        = "Project"
//
//	project "Sample" {
//	  version  = "0.1.0"
//	  requires = ["freetype/2.10.1"]
//
//	  require "openal" {
//	    version = "1.21.1"
//	    options = { shared = true }
//	  }
//
//	  condition {
//	    when { os = ["Macos"] }
//	    requires = ["moltenvk/1.1.6"]
//	  }
//	}
//
// `requires` strings come before `require` blocks in the resulting record order.
type hclRoot struct {
	APIVersion string      `hcl:"api_version"`
	Kind       string      `hcl:"kind"`
	Project    *hclProject `hcl:"project,block"`
}

type hclProject struct {
	Name           string          `hcl:"name,label"`
	Version        string          `hcl:"version"`
	Settings       []string        `hcl:"settings,optional"`
	Generators     []string        `hcl:"generators,optional"`
	Requires       []string        `hcl:"requires,optional"`
	Require        []*hclRequire   `hcl:"require,block"`
	Options        hcl.Expression  `hcl:"options,optional"`
	DefaultOptions hcl.Expression  `hcl:"default_options,optional"`
	Definitions    hcl.Expression  `hcl:"definitions,optional"`
	Conditions     []*hclCondition `hcl:"condition,block"`
	Stage          []*hclStage     `hcl:"stage,block"`
}

type hclRequire struct {
	Name    string         `hcl:"name,label"`
	Version string         `hcl:"version"`
	Options hcl.Expression `hcl:"options,optional"`
}

type hclCondition struct {
	When     *hclWhen       `hcl:"when,block"`
	Requires []string       `hcl:"requires,optional"`
	Options  hcl.Expression `hcl:"options,optional"`
	Message  string         `hcl:"message,optional"`
}

type hclWhen struct {
	OS       []string `hcl:"os,optional"`
	Arch     []string `hcl:"arch,optional"`
	Compiler []string `hcl:"compiler,optional"`
}

type hclStage struct {
	Pattern     string   `hcl:"pattern"`
	Destination string   `hcl:"destination,optional"`
	OnlyOn      []string `hcl:"only_on,optional"`
}

// ReadHCL parses an HCL manifest into the same model ReadContents produces.
func ReadHCL(contents []byte, absPath string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(contents, absPath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrMalformedManifest, absPath, diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", ErrMalformedManifest, absPath, diags)
	}
	if root.Project == nil {
		return nil, fmt.Errorf("%w: 'project' block", MissingManifestField)
	}

	spec, err := root.Project.toSpec(contents)
	if err != nil {
		return nil, err
	}

	m := &Manifest{AbsolutePath: absPath, Spec: spec}
	m.APIVersion = root.APIVersion
	m.Kind = root.Kind
	if err := m.finalize(); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *hclProject) toSpec(src []byte) (*Spec, error) {
	s := &Spec{
		Name:       p.Name,
		Version:    p.Version,
		Settings:   p.Settings,
		Generators: p.Generators,
	}

	var err error
	if s.Requires, err = parseRequirements(p.Requires); err != nil {
		return nil, err
	}
	for _, r := range p.Require {
		opts, err := ctyOptions(r.Options, src)
		if err != nil {
			return nil, fmt.Errorf("require %q: %w", r.Name, err)
		}
		s.Requires = append(s.Requires, &Requirement{Name: r.Name, Version: r.Version, Options: opts})
	}

	if s.Options, err = ctyDomains(p.Options, src); err != nil {
		return nil, err
	}
	if s.DefaultOptions, err = ctyOptions(p.DefaultOptions, src); err != nil {
		return nil, err
	}
	if s.Definitions, err = ctyOptions(p.Definitions, src); err != nil {
		return nil, err
	}

	for _, c := range p.Conditions {
		cond := &Condition{Message: c.Message}
		if cond.Requires, err = parseRequirements(c.Requires); err != nil {
			return nil, err
		}
		if cond.Options, err = ctyOptions(c.Options, src); err != nil {
			return nil, err
		}
		if c.When != nil {
			oses, err := parseOSList(c.When.OS)
			if err != nil {
				return nil, err
			}
			cond.When = &When{OS: oses, Arch: c.When.Arch, Compiler: c.When.Compiler}
		}
		s.Conditions = append(s.Conditions, cond)
	}

	for _, st := range p.Stage {
		onlyOn, err := parseOSList(st.OnlyOn)
		if err != nil {
			return nil, err
		}
		s.Stage = append(s.Stage, staging.ArtifactCopySpec{
			Pattern:         st.Pattern,
			DestinationRoot: st.Destination,
			OnlyOn:          onlyOn,
		})
	}
	return s, nil
}

func parseRequirements(refs []string) ([]*Requirement, error) {
	out := make([]*Requirement, 0, len(refs))
	for _, ref := range refs {
		r, err := ParseRequirement(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseOSList(names []string) ([]platform.OS, error) {
	out := make([]platform.OS, 0, len(names))
	for _, n := range names {
		o, err := platform.ParseOS(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func evalMapping(expr hcl.Expression) (cty.Value, bool, error) {
	if expr == nil {
		return cty.NilVal, false, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, false, fmt.Errorf("%w: %w", ErrMalformedManifest, diags)
	}
	if v.IsNull() {
		return cty.NilVal, false, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return cty.NilVal, false, fmt.Errorf("%w: expected a mapping, got %s", ErrMalformedManifest, v.Type().FriendlyName())
	}
	return v, true, nil
}

func ctyOptions(expr hcl.Expression, src []byte) (Options, error) {
	v, ok, err := evalMapping(expr)
	if err != nil || !ok {
		return nil, err
	}
	out := Options{}
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		val, err := ctyScalar(ev)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", k.AsString(), err)
		}
		out[k.AsString()] = val
	}
	for k, e := range itemExprs(expr) {
		if text, ok := literalText(e, src); ok {
			out[k] = text
		}
	}
	return out, nil
}

func ctyDomains(expr hcl.Expression, src []byte) (map[string][]Value, error) {
	v, ok, err := evalMapping(expr)
	if err != nil || !ok {
		return nil, err
	}
	out := map[string][]Value{}
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		t := ev.Type()
		if ev.IsNull() || !(t.IsTupleType() || t.IsListType() || t.IsSetType()) {
			return nil, fmt.Errorf("%w: option %q must list its allowed values", ErrMalformedManifest, k.AsString())
		}
		var domain []Value
		for vit := ev.ElementIterator(); vit.Next(); {
			_, item := vit.Element()
			val, err := ctyScalar(item)
			if err != nil {
				return nil, fmt.Errorf("option %q: %w", k.AsString(), err)
			}
			domain = append(domain, val)
		}
		out[k.AsString()] = domain
	}
	for k, e := range itemExprs(expr) {
		tuple, ok := e.(*hclsyntax.TupleConsExpr)
		if !ok || len(tuple.Exprs) != len(out[k]) {
			continue
		}
		for i, item := range tuple.Exprs {
			if text, ok := literalText(item, src); ok {
				out[k][i] = text
			}
		}
	}
	return out, nil
}

// itemExprs maps the keys of an object literal to their value expressions.
func itemExprs(expr hcl.Expression) map[string]hclsyntax.Expression {
	obj, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil
	}
	out := map[string]hclsyntax.Expression{}
	for _, item := range obj.Items {
		k, diags := item.KeyExpr.Value(nil)
		if diags.HasErrors() || k.IsNull() || !k.IsKnown() || k.Type() != cty.String {
			continue
		}
		out[k.AsString()] = item.ValueExpr
	}
	return out
}

// literalText returns a number literal as written, 3.10 stays 3.10.
func literalText(expr hclsyntax.Expression, src []byte) (Value, bool) {
	lit, ok := expr.(*hclsyntax.LiteralValueExpr)
	if !ok || len(src) == 0 || lit.Val.IsNull() || lit.Val.Type() != cty.Number {
		return "", false
	}
	text := strings.TrimSpace(string(lit.SrcRange.SliceBytes(src)))
	if text == "" {
		return "", false
	}
	return Value(text), true
}

func ctyScalar(v cty.Value) (Value, error) {
	if v.IsNull() {
		return "", nil
	}
	switch v.Type() {
	case cty.Bool:
		return ValueOf(v.True()), nil
	case cty.String:
		return Value(v.AsString()), nil
	case cty.Number:
		return Value(v.AsBigFloat().Text('f', -1)), nil
	default:
		return "", fmt.Errorf("%w: option values must be scalars, got %s", ErrMalformedManifest, v.Type().FriendlyName())
	}
}
