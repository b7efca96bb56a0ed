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
	"bytes"
	"context"
	"encoding/xml"
	"strings"

	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&XMLParser{})
}

// 🔧 XMLParser reads the plugin style <config_plugin> document
type XMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *XMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xml")
}

type xmlDestination struct {
	Folder  string `xml:"folder,attr"`
	Name    string `xml:"name,attr"`
	Pattern string `xml:"pattern,attr"`
}

type xmlFolder struct {
	IncludeMedia      bool             `xml:"includeMedia"`
	IncludeMaster     bool             `xml:"includeMaster"`
	IncludeOcr        bool             `xml:"includeOcr"`
	IncludeSource     bool             `xml:"includeSource"`
	IncludeImport     bool             `xml:"includeImport"`
	IncludeExport     bool             `xml:"includeExport"`
	IncludeITM        bool             `xml:"includeITM"`
	IncludeValidation bool             `xml:"includeValidation"`
	GenericFolders    []string         `xml:"genericFolder"`
	OcrSuffixes       []string         `xml:"ocr>suffix"`
	Destinations      []xmlDestination `xml:"destination"`
}

type xmlTarget struct {
	ProjectName *string `xml:"projectName,attr"`
	Key         *string `xml:"key,attr"`
	Value       string  `xml:"value,attr"`
}

type xmlConfig struct {
	Projects       []string    `xml:"project"`
	ExportFolder   string      `xml:"exportFolder"`
	UseSubFolder   bool        `xml:"useSubFolderPerProcess"`
	IncludeMarcXML bool        `xml:"includeMarcXml"`
	Validate       bool        `xml:"validate"`
	RequiredFields []string    `xml:"requiredField"`
	Targets        []xmlTarget `xml:"target"`
	Folder         xmlFolder   `xml:"folder"`
}

type xmlPluginConfig struct {
	XMLName     xml.Name    `xml:"config_plugin"`
	TempFolder  string      `xml:"tempFolder"`
	AnchorTypes []string    `xml:"anchorType"`
	Configs     []xmlConfig `xml:"config"`
}

// 📝 Parse parses the config from XML
func (p *XMLParser) Parse(ctx context.Context, data []byte) (*File, error) {
	var raw xmlPluginConfig
	decoder := xml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Errorf("parsing XML: %w", err)
	}

	cfg := &File{
		TempDir:     strings.TrimSpace(raw.TempFolder),
		AnchorTypes: trimAll(raw.AnchorTypes),
	}
	for _, c := range raw.Configs {
		cfg.Profiles = append(cfg.Profiles, c.toProfile())
	}
	return cfg, nil
}

func (c xmlConfig) toProfile() *Profile {
	prof := &Profile{
		Projects:         trimAll(c.Projects),
		ExportRoot:       strings.TrimSpace(c.ExportFolder),
		CreateSubfolder:  c.UseSubFolder,
		EmbedMarc:        c.IncludeMarcXML,
		ValidateMetadata: c.Validate,
		RequiredFields:   trimAll(c.RequiredFields),
	}

	routesFor := func(folder string) []DestinationRoute {
		var out []DestinationRoute
		for _, d := range c.Folder.Destinations {
			if d.Folder == folder {
				out = append(out, DestinationRoute{Name: d.Name, Pattern: d.Pattern})
			}
		}
		return out
	}

	include := map[Category]bool{
		CategoryMedia:      c.Folder.IncludeMedia,
		CategoryMaster:     c.Folder.IncludeMaster,
		CategoryOCR:        c.Folder.IncludeOcr,
		CategorySource:     c.Folder.IncludeSource,
		CategoryImport:     c.Folder.IncludeImport,
		CategoryExport:     c.Folder.IncludeExport,
		CategoryITM:        c.Folder.IncludeITM,
		CategoryValidation: c.Folder.IncludeValidation,
	}
	for _, cat := range CategoryOrder {
		if !include[cat] {
			continue
		}
		rule := CategoryRule{Category: cat, Enabled: true, Routes: routesFor(string(cat))}
		if cat == CategoryOCR {
			rule.Suffixes = trimAll(c.Folder.OcrSuffixes)
		}
		prof.Categories = append(prof.Categories, rule)
	}

	for _, name := range trimAll(c.Folder.GenericFolders) {
		prof.GenericFolders = append(prof.GenericFolders, GenericFolderRule{
			Name:    name,
			Enabled: true,
			Routes:  routesFor(name),
		})
	}

	for _, t := range c.Targets {
		sel := TargetSelector{ProjectName: t.ProjectName, Value: t.Value}
		if t.Key != nil {
			sel.Key = *t.Key
		}
		prof.Targets = append(prof.Targets, sel)
	}

	return prof
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
