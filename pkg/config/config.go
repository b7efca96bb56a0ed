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
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNoProfile is returned when neither the project nor the wildcard has a profile
	ErrNoProfile = errors.New("no export profile configured for project")
	// ErrMalformedTargets is the fatal configuration error for target selectors with missing attributes
	ErrMalformedTargets = errors.New("malformed configuration file: missing attribute in target")
)

// WildcardProject matches every project without an explicit profile
const WildcardProject = "*"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*File, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🗂️ Category is one of the fixed content folder kinds of an object
type Category string

const (
	CategoryMedia      Category = "media"
	CategoryMaster     Category = "master"
	CategoryOCR        Category = "ocr"
	CategorySource     Category = "source"
	CategoryImport     Category = "import"
	CategoryExport     Category = "export"
	CategoryITM        Category = "itm"
	CategoryValidation Category = "validation"
)

// CategoryOrder is the order in which categories are evaluated
var CategoryOrder = []Category{
	CategoryMedia,
	CategoryMaster,
	CategoryOCR,
	CategorySource,
	CategoryImport,
	CategoryExport,
	CategoryITM,
	CategoryValidation,
}

// Known reports whether c is one of the fixed categories
func (c Category) Known() bool {
	for _, k := range CategoryOrder {
		if k == c {
			return true
		}
	}
	return false
}

// 🧭 DestinationRoute names a destination sub-folder and the filenames routed into it
type DestinationRoute struct {
	Name    string `json:"name" yaml:"name"`
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	re *regexp2.Regexp
}

// NewRoute builds a compiled route
func NewRoute(name, pattern string) (DestinationRoute, error) {
	r := DestinationRoute{Name: name, Pattern: pattern}
	if err := r.compile(); err != nil {
		return DestinationRoute{}, err
	}
	return r, nil
}

// Regexp returns the compiled pattern, nil when the pattern is empty
func (r *DestinationRoute) Regexp() *regexp2.Regexp {
	return r.re
}

func (r *DestinationRoute) compile() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.Errorf("route name is required")
	}
	if r.Pattern == "" {
		r.re = nil
		return nil
	}
	re, err := regexp2.Compile(r.Pattern, regexp2.None)
	if err != nil {
		return errors.Errorf("route %s: compiling pattern %q: %w", r.Name, r.Pattern, err)
	}
	r.re = re
	return nil
}

// 📦 CategoryRule configures one fixed category
type CategoryRule struct {
	Category Category           `json:"category" yaml:"category"`
	Enabled  bool               `json:"enabled" yaml:"enabled"`
	Suffixes []string           `json:"suffixes,omitempty" yaml:"suffixes,omitempty"` // ocr only
	Ignore   []string           `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	Routes   []DestinationRoute `json:"routes,omitempty" yaml:"routes,omitempty"`
}

// 📦 GenericFolderRule configures an administrator defined extra folder
type GenericFolderRule struct {
	Name    string             `json:"name" yaml:"name"`
	Enabled bool               `json:"enabled" yaml:"enabled"`
	Ignore  []string           `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	Routes  []DestinationRoute `json:"routes,omitempty" yaml:"routes,omitempty"`
}

// 🎯 TargetSelector re-points an export pass at another project when Key evaluates to Value.
// A nil ProjectName means the attribute is missing; a blank one means the current project.
type TargetSelector struct {
	ProjectName *string `json:"project_name,omitempty" yaml:"project_name,omitempty"`
	Key         string  `json:"key" yaml:"key"`
	Value       string  `json:"value" yaml:"value"`
}

// CurrentProject reports whether the selector targets the object's own project.
// Callers run CheckTargets first, so ProjectName is set.
func (t TargetSelector) CurrentProject() bool {
	return t.TargetProject() == ""
}

// TargetProject returns the trimmed target project name, "" when ProjectName is unset
func (t TargetSelector) TargetProject() string {
	if t.ProjectName == nil {
		return ""
	}
	return strings.TrimSpace(*t.ProjectName)
}

// 📚 Profile is the export configuration selected for one project
type Profile struct {
	Projects         []string            `json:"projects" yaml:"projects"`
	ExportRoot       string              `json:"export_root" yaml:"export_root"`
	CreateSubfolder  bool                `json:"create_subfolder,omitempty" yaml:"create_subfolder,omitempty"`
	EmbedMarc        bool                `json:"embed_marc,omitempty" yaml:"embed_marc,omitempty"`
	ValidateMetadata bool                `json:"validate,omitempty" yaml:"validate,omitempty"`
	RequiredFields   []string            `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
	Categories       []CategoryRule      `json:"categories,omitempty" yaml:"categories,omitempty"`
	GenericFolders   []GenericFolderRule `json:"generic_folders,omitempty" yaml:"generic_folders,omitempty"`
	Targets          []TargetSelector    `json:"targets,omitempty" yaml:"targets,omitempty"`
}

// Category returns the rule configured for c, if any
func (p *Profile) Category(c Category) (*CategoryRule, bool) {
	for i := range p.Categories {
		if p.Categories[i].Category == c {
			return &p.Categories[i], true
		}
	}
	return nil, false
}

// Matches reports whether the profile is declared for the project name
func (p *Profile) Matches(project string) bool {
	for _, name := range p.Projects {
		if name == project {
			return true
		}
	}
	return false
}

// 🔍 CheckTargets reports the fatal arity error for target selectors
func (p *Profile) CheckTargets() error {
	names, keys := 0, 0
	for _, t := range p.Targets {
		if t.ProjectName != nil {
			names++
		}
		if strings.TrimSpace(t.Key) != "" {
			keys++
		}
	}
	if names != keys || keys != len(p.Targets) {
		return errors.Errorf("%d targets, %d project names, %d keys: %w", len(p.Targets), names, keys, ErrMalformedTargets)
	}
	return nil
}

// 🔍 Validate checks the profile and compiles its route patterns
func (p *Profile) Validate() error {
	if len(p.Projects) == 0 {
		return errors.Errorf("projects is required")
	}
	if strings.TrimSpace(p.ExportRoot) == "" {
		return errors.Errorf("export_root is required")
	}

	seen := map[Category]bool{}
	for i := range p.Categories {
		rule := &p.Categories[i]
		if !rule.Category.Known() {
			return errors.Errorf("unknown category %q", rule.Category)
		}
		if seen[rule.Category] {
			return errors.Errorf("category %q configured more than once", rule.Category)
		}
		seen[rule.Category] = true

		if err := compileRoutes(rule.Routes); err != nil {
			return errors.Errorf("category %s: %w", rule.Category, err)
		}
		if err := validateGlobs(rule.Ignore); err != nil {
			return errors.Errorf("category %s: %w", rule.Category, err)
		}
	}

	for i := range p.GenericFolders {
		rule := &p.GenericFolders[i]
		if strings.TrimSpace(rule.Name) == "" {
			return errors.Errorf("generic folder %d: name is required", i)
		}
		if err := compileRoutes(rule.Routes); err != nil {
			return errors.Errorf("generic folder %s: %w", rule.Name, err)
		}
		if err := validateGlobs(rule.Ignore); err != nil {
			return errors.Errorf("generic folder %s: %w", rule.Name, err)
		}
	}

	return p.CheckTargets()
}

func compileRoutes(routes []DestinationRoute) error {
	for i := range routes {
		if err := routes[i].compile(); err != nil {
			return err
		}
	}
	return nil
}

func validateGlobs(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return nil
}

// DefaultAnchorTypes are the structural types treated as multi-volume parents
var DefaultAnchorTypes = []string{"MultiVolumeWork", "Periodical", "Newspaper"}

// 📚 File is a complete configuration document
type File struct {
	TempDir     string     `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty"`
	AnchorTypes []string   `json:"anchor_types,omitempty" yaml:"anchor_types,omitempty"`
	Profiles    []*Profile `json:"profiles" yaml:"profiles"`

	location string
}

// Location returns the path the file was loaded from
func (f *File) Location() string {
	return f.location
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*File, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(ctx, path, data)
	if err != nil {
		return nil, err
	}
	cfg.location = path

	return cfg, nil
}

// 📝 Parse picks a parser by filename, parses and validates data
func Parse(ctx context.Context, filename string, data []byte) (*File, error) {
	p := GetParser(filename)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", filename)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks every profile and fills in defaults
func (f *File) Validate() error {
	if len(f.Profiles) == 0 {
		return errors.Errorf("at least one profile is required")
	}

	for i, p := range f.Profiles {
		if p == nil {
			return errors.Errorf("profile %d is empty", i)
		}
		if err := p.Validate(); err != nil {
			return errors.Errorf("profile %d (%s): %w", i, strings.Join(p.Projects, ","), err)
		}
	}

	if f.TempDir == "" {
		f.TempDir = filepath.ToSlash(os.TempDir())
	}
	if len(f.AnchorTypes) == 0 {
		f.AnchorTypes = append([]string(nil), DefaultAnchorTypes...)
	}

	return nil
}

// 🔎 ProfileFor returns the profile for project: exact match first, then the wildcard
func (f *File) ProfileFor(project string) (*Profile, error) {
	for _, p := range f.Profiles {
		if p.Matches(project) {
			return p, nil
		}
	}
	for _, p := range f.Profiles {
		if p.Matches(WildcardProject) {
			return p, nil
		}
	}
	return nil, errors.Errorf("%s: %w", project, ErrNoProfile)
}

// HasProfile reports whether project resolves to any profile
func (f *File) HasProfile(project string) bool {
	_, err := f.ProfileFor(project)
	return err == nil
}
