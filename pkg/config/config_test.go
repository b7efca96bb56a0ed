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
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func ptr(s string) *string { return &s }

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errIs       error
		errContains string
		check       func(t *testing.T, cfg *File)
	}{
		{
			name:     "valid_yaml",
			filename: "export.yaml",
			config: `
temp_dir: /scratch
profiles:
  - projects: ["*"]
    export_root: /export/{projectname}
    create_subfolder: true
    embed_marc: true
    validate: true
    required_fields: [TitleDocMain]
    categories:
      - category: media
        enabled: true
      - category: ocr
        enabled: true
        suffixes: [txt, alto]
    generic_folders:
      - name: thumbs
        enabled: true
        routes:
          - name: txt
            pattern: '\.txt$'
          - name: empty
    targets:
      - project_name: ""
        key: $(meta.status)
        value: ready
`,
			check: func(t *testing.T, cfg *File) {
				assert.Equal(t, "/scratch", cfg.TempDir, "temp dir should match")
				assert.Equal(t, DefaultAnchorTypes, cfg.AnchorTypes, "anchor types should default")
				require.Len(t, cfg.Profiles, 1)

				p := cfg.Profiles[0]
				assert.True(t, p.CreateSubfolder)
				assert.True(t, p.EmbedMarc)
				assert.True(t, p.ValidateMetadata, "validate should be read")
				assert.Equal(t, []string{"TitleDocMain"}, p.RequiredFields)
				require.Len(t, p.Categories, 2)
				assert.Equal(t, []string{"txt", "alto"}, p.Categories[1].Suffixes)

				require.Len(t, p.GenericFolders, 1)
				routes := p.GenericFolders[0].Routes
				require.Len(t, routes, 2)
				assert.NotNil(t, routes[0].Regexp(), "pattern should be compiled")
				assert.Nil(t, routes[1].Regexp(), "empty pattern stays nil")

				require.Len(t, p.Targets, 1)
				assert.True(t, p.Targets[0].CurrentProject())
			},
		},
		{
			name:     "valid_hcl",
			filename: "export.hcl",
			config: `
anchor_types = ["Periodical"]

profile {
  projects    = ["Manuscripts"]
  export_root = "/export"
  validate    = true

  category "source" {
    enabled = true
  }

  category "media" {
    enabled = true
    route "jpg" {
      pattern = "\\.jpg$"
    }
  }

  target {
    project_name = "Archive"
    key          = "$(meta.status)"
    value        = "ready"
  }
}
`,
			check: func(t *testing.T, cfg *File) {
				assert.Equal(t, []string{"Periodical"}, cfg.AnchorTypes)
				require.Len(t, cfg.Profiles, 1)
				p := cfg.Profiles[0]
				assert.True(t, p.ValidateMetadata, "validate should be read")
				require.Len(t, p.Categories, 2)
				assert.Equal(t, CategorySource, p.Categories[0].Category)
				require.Len(t, p.Categories[1].Routes, 1)
				assert.Equal(t, "jpg", p.Categories[1].Routes[0].Name)
				require.Len(t, p.Targets, 1)
				assert.Equal(t, "Archive", p.Targets[0].TargetProject())
			},
		},
		{
			name:     "valid_xml",
			filename: "plugin_export.xml",
			config: `<config_plugin>
  <config>
    <project>*</project>
    <exportFolder>/opt/export</exportFolder>
    <useSubFolderPerProcess>true</useSubFolderPerProcess>
    <includeMarcXml>true</includeMarcXml>
    <validate>true</validate>
    <target projectName="" key="$(meta.status)" value="ready"/>
    <folder>
      <includeMedia>true</includeMedia>
      <includeOcr>true</includeOcr>
      <includeITM>false</includeITM>
      <genericFolder>thumbs</genericFolder>
      <ocr>
        <suffix>txt</suffix>
      </ocr>
      <destination folder="thumbs" name="small" pattern="_s\.jpg$"/>
    </folder>
  </config>
</config_plugin>`,
			check: func(t *testing.T, cfg *File) {
				require.Len(t, cfg.Profiles, 1)
				p := cfg.Profiles[0]
				assert.Equal(t, "/opt/export", p.ExportRoot)
				assert.True(t, p.CreateSubfolder)
				assert.True(t, p.EmbedMarc)
				assert.True(t, p.ValidateMetadata, "validate should be read")
				require.Len(t, p.Categories, 2, "only included categories are configured")
				assert.Equal(t, CategoryMedia, p.Categories[0].Category)
				assert.Equal(t, []string{"txt"}, p.Categories[1].Suffixes)
				require.Len(t, p.GenericFolders, 1)
				require.Len(t, p.GenericFolders[0].Routes, 1)
				assert.Equal(t, "small", p.GenericFolders[0].Routes[0].Name)
				require.Len(t, p.Targets, 1)
			},
		},
		{
			name:     "valid_json",
			filename: "export.json",
			config:   `{"profiles":[{"projects":["*"],"export_root":"/out","categories":[{"category":"itm","enabled":true}]}]}`,
			check: func(t *testing.T, cfg *File) {
				require.Len(t, cfg.Profiles, 1)
				assert.Equal(t, CategoryITM, cfg.Profiles[0].Categories[0].Category)
			},
		},
		{
			name:     "missing_export_root",
			filename: "export.yaml",
			config: `
profiles:
  - projects: ["*"]
`,
			wantErr:     true,
			errContains: "export_root is required",
		},
		{
			name:     "duplicate_category",
			filename: "export.yaml",
			config: `
profiles:
  - projects: ["*"]
    export_root: /out
    categories:
      - category: media
        enabled: true
      - category: media
        enabled: false
`,
			wantErr:     true,
			errContains: `category "media" configured more than once`,
		},
		{
			name:     "unknown_category",
			filename: "export.yaml",
			config: `
profiles:
  - projects: ["*"]
    export_root: /out
    categories:
      - category: derivate
        enabled: true
`,
			wantErr:     true,
			errContains: `unknown category "derivate"`,
		},
		{
			name:     "bad_route_pattern",
			filename: "export.yaml",
			config: `
profiles:
  - projects: ["*"]
    export_root: /out
    generic_folders:
      - name: thumbs
        enabled: true
        routes:
          - name: broken
            pattern: '(['
`,
			wantErr:     true,
			errContains: "compiling pattern",
		},
		{
			name:     "target_missing_project_name",
			filename: "plugin_export.xml",
			config: `<config_plugin>
  <config>
    <project>*</project>
    <exportFolder>/opt/export</exportFolder>
    <target key="$(meta.status)" value="ready"/>
  </config>
</config_plugin>`,
			wantErr: true,
			errIs:   ErrMalformedTargets,
		},
		{
			name:     "unknown_field",
			filename: "export.yaml",
			config: `
profiles:
  - projects: ["*"]
    export_root: /out
    include_everything: true
`,
			wantErr:     true,
			errContains: "include_everything",
		},
		{
			name:        "unsupported_extension",
			filename:    "export.toml",
			config:      `profiles = []`,
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	ctx := zerolog.New(os.Stderr).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, tt.filename)
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			cfg, err := Load(ctx, configPath)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				if tt.errIs != nil {
					assert.True(t, errors.Is(err, tt.errIs), "error should wrap %v", tt.errIs)
				}
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				}
				return
			}

			require.NoError(t, err, "Load should succeed")
			assert.Equal(t, configPath, cfg.Location())
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestProfileFor(t *testing.T) {
	exact := &Profile{Projects: []string{"Manuscripts", "Maps"}, ExportRoot: "/a"}
	wildcard := &Profile{Projects: []string{WildcardProject}, ExportRoot: "/b"}

	cfg := &File{Profiles: []*Profile{wildcard, exact}}
	require.NoError(t, cfg.Validate())

	got, err := cfg.ProfileFor("Maps")
	require.NoError(t, err)
	assert.Same(t, exact, got, "exact match wins over wildcard regardless of order")

	got, err = cfg.ProfileFor("Newspapers")
	require.NoError(t, err)
	assert.Same(t, wildcard, got, "unknown project falls back to wildcard")

	noWildcard := &File{Profiles: []*Profile{exact}}
	require.NoError(t, noWildcard.Validate())
	_, err = noWildcard.ProfileFor("Newspapers")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoProfile))
	assert.False(t, noWildcard.HasProfile("Newspapers"))
}

func TestCheckTargets(t *testing.T) {
	tests := []struct {
		name    string
		targets []TargetSelector
		wantErr bool
	}{
		{name: "no_targets"},
		{
			name: "complete",
			targets: []TargetSelector{
				{ProjectName: ptr(""), Key: "$(meta.status)", Value: "ready"},
				{ProjectName: ptr("Archive"), Key: "$(meta.status)", Value: "archived"},
			},
		},
		{
			name:    "missing_project_name",
			targets: []TargetSelector{{Key: "$(meta.status)", Value: "ready"}},
			wantErr: true,
		},
		{
			name:    "missing_key",
			targets: []TargetSelector{{ProjectName: ptr("Archive"), Value: "ready"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Profile{Targets: tt.targets}
			err := p.CheckTargets()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedTargets))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTargetSelectorProject(t *testing.T) {
	tests := []struct {
		name        string
		selector    TargetSelector
		wantCurrent bool
		wantProject string
	}{
		{name: "blank_is_current", selector: TargetSelector{ProjectName: ptr("  ")}, wantCurrent: true},
		{name: "named_project", selector: TargetSelector{ProjectName: ptr(" Archive ")}, wantProject: "Archive"},
		{name: "unset_is_blank", selector: TargetSelector{}, wantCurrent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCurrent, tt.selector.CurrentProject())
			assert.Equal(t, tt.wantProject, tt.selector.TargetProject())
		})
	}
}

func TestNewRoute(t *testing.T) {
	r, err := NewRoute("img", `(?<!thumb)\.jpg$`)
	require.NoError(t, err, "lookbehind patterns are supported")
	ok, err := r.Regexp().MatchString("p1.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = NewRoute("", "x")
	require.Error(t, err)
}
