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

package merge

import (
	"context"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/metsexport/pkg/mets"
	"github.com/walteh/metsexport/pkg/storage"
	"gitlab.com/tozd/go/errors"
)

const (
	FieldSource  = "CatalogIDSource"
	FieldDigital = "CatalogIDDigital"

	// FragmentSuffix ends every bibliographic fragment file name
	FragmentSuffix = "_marc.xml"
	candidateGlob  = "*" + FragmentSuffix
)

// 🏷️ Identifiers are the catalogue identifiers read from the structural units
type Identifiers struct {
	Source        string
	Digital       string
	AnchorSource  string
	AnchorDigital string
}

// 🔗 Binding holds the fragment chosen for each identifier slot, "" when none matched
type Binding struct {
	PrimarySource  string
	PrimaryDigital string
	AnchorSource   string
	AnchorDigital  string
}

// HasPrimary reports whether a primary identifier matched
func (b Binding) HasPrimary() bool {
	return b.PrimarySource != "" || b.PrimaryDigital != ""
}

// HasAnchor reports whether an anchor identifier matched
func (b Binding) HasAnchor() bool {
	return b.AnchorSource != "" || b.AnchorDigital != ""
}

// Primary returns the primary fragments, digital first
func (b Binding) Primary() []string {
	return nonEmpty(b.PrimaryDigital, b.PrimarySource)
}

// Anchor returns the anchor fragments, digital first
func (b Binding) Anchor() []string {
	return nonEmpty(b.AnchorDigital, b.AnchorSource)
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// 🔎 ReadIdentifiers reads both identifiers from the primary unit and, when present, the anchor
func ReadIdentifiers(st *mets.Structure) Identifiers {
	var ids Identifiers
	ids.Source, _ = st.Primary.Field(FieldSource)
	ids.Digital, _ = st.Primary.Field(FieldDigital)
	if st.Anchor != nil {
		ids.AnchorSource, _ = st.Anchor.Field(FieldSource)
		ids.AnchorDigital, _ = st.Anchor.Field(FieldDigital)
	}
	return ids
}

// 🎯 Resolve picks the first candidate whose name ends with <id>_marc.xml, independently per slot.
// An empty identifier never matches.
func Resolve(ids Identifiers, candidates []string) Binding {
	return Binding{
		PrimarySource:  first(ids.Source, candidates),
		PrimaryDigital: first(ids.Digital, candidates),
		AnchorSource:   first(ids.AnchorSource, candidates),
		AnchorDigital:  first(ids.AnchorDigital, candidates),
	}
}

func first(id string, candidates []string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	for _, c := range candidates {
		if strings.HasSuffix(path.Base(c), id+FragmentSuffix) {
			return c
		}
	}
	return ""
}

// 📂 Candidates lists the fragment files of the import directory
func Candidates(ctx context.Context, st storage.Storage, importDir string) ([]string, error) {
	if importDir == "" || !st.IsDirectory(ctx, importDir) {
		return nil, nil
	}
	entries, err := st.ListEntries(ctx, importDir)
	if err != nil {
		return nil, errors.Errorf("listing import directory: %w", err)
	}

	var out []string
	for _, entry := range entries {
		if ok, _ := doublestar.Match(candidateGlob, path.Base(entry)); ok && !st.IsDirectory(ctx, entry) {
			out = append(out, entry)
		}
	}
	zerolog.Ctx(ctx).Debug().Str("dir", importDir).Int("candidates", len(out)).Msg("found fragment candidates")
	return out, nil
}
