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

package plan

import (
	"context"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/metsexport/pkg/config"
	"github.com/walteh/metsexport/pkg/route"
	"github.com/walteh/metsexport/pkg/storage"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsafeDestination marks a route name that does not resolve to a folder inside the export root
var ErrUnsafeDestination = errors.New("route name does not resolve to a folder inside the export root")

// 🏷️ Kind says how a CopyTask is carried out
type Kind int

const (
	KindDirectory Kind = iota // recursive copy of Source into Destination
	KindFile                  // single file copy
	KindEnsureDir             // create Destination, nothing to copy
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindEnsureDir:
		return "mkdir"
	default:
		return "unknown"
	}
}

// 📦 CopyTask is one planned copy into the package
type CopyTask struct {
	Source      string
	Destination string
	Category    string
	Kind        Kind
}

// GenericCategory is the category tag used for generic folder tasks
func GenericCategory(name string) string {
	return "folder:" + name
}

// 🔄 Resolver is the substitution collaborator used for route names
type Resolver interface {
	Replace(template string) string
}

// 📁 GenericSource pairs a generic folder rule with its resolved path
type GenericSource struct {
	Rule config.GenericFolderRule
	Path string
}

// 📋 Input is everything the planner needs for one pass
type Input struct {
	Profile         *config.Profile
	Sources         map[config.Category]string
	Generic         []GenericSource
	DestinationRoot string
	ObjectTitle     string
}

// 🗺️ Planner turns a profile and resolved folders into ordered copy tasks.
// It only reads from storage.
type Planner struct {
	storage  storage.Storage
	replacer Resolver
}

// 🏭 New creates a planner
func New(st storage.Storage, replacer Resolver) *Planner {
	return &Planner{storage: st, replacer: replacer}
}

// 🎯 Plan emits tasks in category order, then generic folder order, then route and file order
func (p *Planner) Plan(ctx context.Context, in Input) ([]CopyTask, error) {
	if in.Profile == nil {
		return nil, errors.Errorf("profile is required")
	}
	logger := zerolog.Ctx(ctx)
	tasks := []CopyTask{}

	for _, cat := range config.CategoryOrder {
		rule, ok := in.Profile.Category(cat)
		if !ok || !rule.Enabled {
			continue
		}

		src := in.Sources[cat]
		if src == "" || !p.storage.Exists(ctx, src) {
			logger.Debug().Str("category", string(cat)).Str("source", src).Msg("source folder missing, skipping")
			continue
		}

		var (
			planned []CopyTask
			err     error
		)
		switch {
		case cat == config.CategoryOCR:
			planned, err = p.planOCR(ctx, src, in.DestinationRoot, rule)
		case len(rule.Routes) > 0:
			planned, err = p.planRoutes(ctx, string(cat), src, in.DestinationRoot, rule.Routes, rule.Ignore)
		default:
			dst := path.Join(in.DestinationRoot, defaultName(cat, src, in.ObjectTitle))
			planned, err = p.planWhole(ctx, string(cat), src, dst, rule.Ignore)
		}
		if err != nil {
			return nil, errors.Errorf("planning %s: %w", cat, err)
		}
		tasks = append(tasks, planned...)
	}

	for _, g := range in.Generic {
		if !g.Rule.Enabled {
			continue
		}
		if g.Path == "" || !p.storage.Exists(ctx, g.Path) {
			logger.Debug().Str("folder", g.Rule.Name).Str("source", g.Path).Msg("generic folder missing, skipping")
			continue
		}

		category := GenericCategory(g.Rule.Name)
		var (
			planned []CopyTask
			err     error
		)
		if len(g.Rule.Routes) > 0 {
			planned, err = p.planRoutes(ctx, category, g.Path, in.DestinationRoot, g.Rule.Routes, g.Rule.Ignore)
		} else {
			planned, err = p.planWhole(ctx, category, g.Path, path.Join(in.DestinationRoot, path.Base(g.Path)), g.Rule.Ignore)
		}
		if err != nil {
			return nil, errors.Errorf("planning generic folder %s: %w", g.Rule.Name, err)
		}
		tasks = append(tasks, planned...)
	}

	return tasks, nil
}

// defaultName is the destination folder used when a category declares no routes
func defaultName(cat config.Category, src, title string) string {
	switch cat {
	case config.CategorySource, config.CategoryImport, config.CategoryExport:
		return title + "_" + string(cat)
	default:
		return path.Base(src)
	}
}

// planWhole copies the folder in one task, or entry by entry when ignore patterns apply
func (p *Planner) planWhole(ctx context.Context, category, src, dst string, ignore []string) ([]CopyTask, error) {
	if len(ignore) == 0 {
		return []CopyTask{{Source: src, Destination: dst, Category: category, Kind: KindDirectory}}, nil
	}

	entries, err := p.storage.ListEntries(ctx, src)
	if err != nil {
		return nil, err
	}

	tasks := []CopyTask{{Destination: dst, Category: category, Kind: KindEnsureDir}}
	for _, entry := range entries {
		name := path.Base(entry)
		if ignored(ctx, ignore, name) {
			continue
		}
		tasks = append(tasks, p.entryTask(ctx, category, entry, path.Join(dst, name)))
	}
	return tasks, nil
}

// planOCR copies every top level entry whose suffix passes the filter, 1:1 into the root
func (p *Planner) planOCR(ctx context.Context, src, root string, rule *config.CategoryRule) ([]CopyTask, error) {
	entries, err := p.storage.ListEntries(ctx, src)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(rule.Suffixes))
	for _, s := range rule.Suffixes {
		allowed[s] = true
	}

	var tasks []CopyTask
	for _, entry := range entries {
		name := path.Base(entry)
		if len(allowed) > 0 && !allowed[Suffix(name)] {
			continue
		}
		if ignored(ctx, rule.Ignore, name) {
			continue
		}
		tasks = append(tasks, p.entryTask(ctx, string(config.CategoryOCR), entry, path.Join(root, name)))
	}
	return tasks, nil
}

// planRoutes creates one folder per route and fills it with the matching entries
func (p *Planner) planRoutes(ctx context.Context, category, src, root string, routes []config.DestinationRoute, ignore []string) ([]CopyTask, error) {
	entries, err := p.storage.ListEntries(ctx, src)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(entries))
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := path.Base(entry)
		if ignored(ctx, ignore, name) {
			continue
		}
		byName[name] = entry
		names = append(names, name)
	}

	rules := make([]route.Rule, 0, len(routes))
	for i := range routes {
		name := routes[i].Name
		if p.replacer != nil {
			name = p.replacer.Replace(name)
		}
		if err := checkRouteName(name); err != nil {
			return nil, errors.Errorf("route %q resolved to %q: %w", routes[i].Name, name, err)
		}
		rules = append(rules, route.Rule{Name: name, Pattern: routes[i].Regexp()})
	}

	var tasks []CopyTask
	for _, a := range route.Route(names, rules) {
		dst := path.Join(root, a.Name)
		tasks = append(tasks, CopyTask{Destination: dst, Category: category, Kind: KindEnsureDir})
		for _, name := range a.Files {
			tasks = append(tasks, p.entryTask(ctx, category, byName[name], path.Join(dst, name)))
		}
	}
	return tasks, nil
}

// checkRouteName accepts only relative names that stay below the export root
func checkRouteName(name string) error {
	if strings.TrimSpace(name) == "" || path.IsAbs(name) {
		return ErrUnsafeDestination
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return ErrUnsafeDestination
	}
	return nil
}

func (p *Planner) entryTask(ctx context.Context, category, src, dst string) CopyTask {
	kind := KindFile
	if p.storage.IsDirectory(ctx, src) {
		kind = KindDirectory
	}
	return CopyTask{Source: src, Destination: dst, Category: category, Kind: kind}
}

// 🔤 Suffix returns the last non-empty "_" separated token of name
func Suffix(name string) string {
	trimmed := strings.TrimRight(name, "_")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "_")
	return parts[len(parts)-1]
}

// 🔍 ignored checks if a name matches any ignore pattern
func ignored(ctx context.Context, patterns []string, name string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Str("name", name).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			zerolog.Ctx(ctx).Debug().Str("name", name).Str("pattern", pattern).Msg("entry ignored by pattern")
			return true
		}
	}
	return false
}
