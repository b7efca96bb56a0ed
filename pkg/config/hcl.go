// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclRoute struct {
	Name    string `hcl:"name,label"`
	Pattern string `hcl:"pattern,optional"`
}

type hclCategory struct {
	Category string     `hcl:"category,label"`
	Enabled  bool       `hcl:"enabled,optional"`
	Suffixes []string   `hcl:"suffixes,optional"`
	Ignore   []string   `hcl:"ignore,optional"`
	Routes   []hclRoute `hcl:"route,block"`
}

type hclGenericFolder struct {
	Name    string     `hcl:"name,label"`
	Enabled bool       `hcl:"enabled,optional"`
	Ignore  []string   `hcl:"ignore,optional"`
	Routes  []hclRoute `hcl:"route,block"`
}

type hclTarget struct {
	ProjectName *string `hcl:"project_name,optional"`
	Key         *string `hcl:"key,optional"`
	Value       string  `hcl:"value,optional"`
}

type hclProfile struct {
	Projects        []string           `hcl:"projects"`
	ExportRoot      string             `hcl:"export_root"`
	CreateSubfolder bool               `hcl:"create_subfolder,optional"`
	EmbedMarc       bool               `hcl:"embed_marc,optional"`
	Validate        bool               `hcl:"validate,optional"`
	RequiredFields  []string           `hcl:"required_fields,optional"`
	Categories      []hclCategory      `hcl:"category,block"`
	GenericFolders  []hclGenericFolder `hcl:"generic_folder,block"`
	Targets         []hclTarget        `hcl:"target,block"`
}

type hclFile struct {
	TempDir     string       `hcl:"temp_dir,optional"`
	AnchorTypes []string     `hcl:"anchor_types,optional"`
	Profiles    []hclProfile `hcl:"profile,block"`
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}

	var raw hclFile
	diags = gohcl.DecodeBody(file.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &File{
		TempDir:     raw.TempDir,
		AnchorTypes: raw.AnchorTypes,
	}
	for _, rp := range raw.Profiles {
		cfg.Profiles = append(cfg.Profiles, rp.toProfile())
	}

	return cfg, nil
}

func (rp hclProfile) toProfile() *Profile {
	prof := &Profile{
		Projects:         rp.Projects,
		ExportRoot:       rp.ExportRoot,
		CreateSubfolder:  rp.CreateSubfolder,
		EmbedMarc:        rp.EmbedMarc,
		ValidateMetadata: rp.Validate,
		RequiredFields:   rp.RequiredFields,
	}

	for _, c := range rp.Categories {
		prof.Categories = append(prof.Categories, CategoryRule{
			Category: Category(c.Category),
			Enabled:  c.Enabled,
			Suffixes: c.Suffixes,
			Ignore:   c.Ignore,
			Routes:   hclRoutes(c.Routes),
		})
	}

	for _, g := range rp.GenericFolders {
		prof.GenericFolders = append(prof.GenericFolders, GenericFolderRule{
			Name:    g.Name,
			Enabled: g.Enabled,
			Ignore:  g.Ignore,
			Routes:  hclRoutes(g.Routes),
		})
	}

	for _, t := range rp.Targets {
		sel := TargetSelector{ProjectName: t.ProjectName, Value: t.Value}
		if t.Key != nil {
			sel.Key = *t.Key
		}
		prof.Targets = append(prof.Targets, sel)
	}

	return prof
}

func hclRoutes(in []hclRoute) []DestinationRoute {
	var out []DestinationRoute
	for _, r := range in {
		out = append(out, DestinationRoute{Name: r.Name, Pattern: r.Pattern})
	}
	return out
}

// envObject exposes the process environment as env.NAME inside HCL expressions
func envObject() cty.Value {
	vals := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !hclIdentifier(k) {
			continue
		}
		vals[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vals)
}

func hclIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}
