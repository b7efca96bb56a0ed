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

// Package object models the digitised object (process) an export runs for.
package object

import (
	"bytes"
	"context"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/metsexport/pkg/config"
	"github.com/walteh/metsexport/pkg/storage"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DescriptorFile is the optional per-object descriptor inside the object directory
const DescriptorFile = "process.yaml"

// 📄 Descriptor is the on-disk shape of process.yaml
type Descriptor struct {
	ID           string            `yaml:"id"`
	Title        string            `yaml:"title"`
	Project      string            `yaml:"project"`
	MetadataFile string            `yaml:"metadata_file"`
	Folders      map[string]string `yaml:"folders"`
}

// 📦 Object is one digitised object with its folders and active project
type Object struct {
	ID           string
	Title        string
	Dir          string
	MetadataFile string

	folders map[string]string

	mu      sync.Mutex
	project string
}

// 🏭 New creates an object rooted at dir with the default folder layout
func New(dir, title, project string) *Object {
	dir = path.Clean(dir)
	if title == "" {
		title = path.Base(dir)
	}
	return &Object{
		ID:           title,
		Title:        title,
		Dir:          dir,
		MetadataFile: path.Join(dir, "meta.xml"),
		folders:      map[string]string{},
		project:      project,
	}
}

// 📥 Load reads an object directory, applying process.yaml when present
func Load(ctx context.Context, st storage.Storage, dir string) (*Object, error) {
	obj := New(dir, "", "")

	descPath := path.Join(obj.Dir, DescriptorFile)
	if !st.Exists(ctx, descPath) {
		zerolog.Ctx(ctx).Debug().Str("dir", obj.Dir).Msg("no object descriptor, using defaults")
		return obj, nil
	}

	data, err := st.ReadFile(ctx, descPath)
	if err != nil {
		return nil, errors.Errorf("reading object descriptor: %w", err)
	}

	var desc Descriptor
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&desc); err != nil {
		return nil, errors.Errorf("parsing object descriptor %s: %w", descPath, err)
	}

	if desc.Title != "" {
		obj.Title = desc.Title
		obj.ID = desc.Title
	}
	if desc.ID != "" {
		obj.ID = desc.ID
	}
	obj.project = desc.Project
	if desc.MetadataFile != "" {
		obj.MetadataFile = obj.resolve(desc.MetadataFile)
	}
	for name, p := range desc.Folders {
		obj.folders[name] = obj.resolve(p)
	}

	return obj, nil
}

func (o *Object) resolve(p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(o.Dir, p)
}

// Project returns the active project name
func (o *Object) Project() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.project
}

// SetProject overrides the active project
func (o *Object) SetProject(project string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.project = project
}

// 🔁 SwapProject makes project active and returns the function that restores the previous one
func (o *Object) SwapProject(project string) (restore func()) {
	o.mu.Lock()
	previous := o.project
	o.project = project
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.SetProject(previous)
		})
	}
}

// 📁 CategoryPath returns where the object keeps the content of c
func (o *Object) CategoryPath(c config.Category) string {
	if p, ok := o.folders[string(c)]; ok {
		return p
	}
	switch c {
	case config.CategoryMedia:
		return path.Join(o.Dir, "images", o.Title+"_media")
	case config.CategoryMaster:
		return path.Join(o.Dir, "images", o.Title+"_master")
	case config.CategoryOCR:
		return path.Join(o.Dir, "ocr")
	case config.CategorySource:
		return path.Join(o.Dir, "images", o.Title+"_source")
	case config.CategoryImport:
		return path.Join(o.Dir, "import")
	case config.CategoryExport:
		return path.Join(o.Dir, "export")
	case config.CategoryITM:
		return path.Join(o.Dir, "taskmanager")
	case config.CategoryValidation:
		return path.Join(o.Dir, "validation")
	default:
		return ""
	}
}

// SourcePaths resolves every fixed category
func (o *Object) SourcePaths() map[config.Category]string {
	out := make(map[config.Category]string, len(config.CategoryOrder))
	for _, c := range config.CategoryOrder {
		out[c] = o.CategoryPath(c)
	}
	return out
}

// GenericFolderPath resolves an administrator defined folder name
func (o *Object) GenericFolderPath(name string) string {
	if p, ok := o.folders[name]; ok {
		return p
	}
	return path.Join(o.Dir, "images", o.Title+"_"+strings.TrimSpace(name))
}

// ImportDir is where externally produced bibliographic fragments are dropped
func (o *Object) ImportDir() string {
	return o.CategoryPath(config.CategoryImport)
}
