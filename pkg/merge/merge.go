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

// Package merge splices bibliographic fragments into exported METS documents.
package merge

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/walteh/metsexport/pkg/config"
	"github.com/walteh/metsexport/pkg/mets"
	"github.com/walteh/metsexport/pkg/storage"
	"gitlab.com/tozd/go/errors"
)

const (
	// WrapperType is the MDTYPE of the section holding the fragments
	WrapperType = "MARC"
	// FragmentTag replaces the root tag of every spliced fragment
	FragmentTag = "marc"
)

// 📄 Target names the exported documents to merge into
type Target struct {
	Primary string
	Anchor  string // may be "" or missing on disk
}

// 📊 Report is the outcome of one merge. Problems never abort the caller.
type Report struct {
	Binding  Binding
	Written  []string
	Problems []string
}

// OK reports whether every document merged cleanly
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) problem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// 🧬 Merger embeds fragments into the documents of a Target through storage
type Merger struct {
	storage     storage.Storage
	anchorTypes []string
}

// 🏭 New creates a merger
func New(st storage.Storage, anchorTypes []string) *Merger {
	return &Merger{storage: st, anchorTypes: anchorTypes}
}

// 🔀 Merge resolves the binding for the target and rewrites each document that gained fragments.
// It is a no-op when the profile does not embed records.
func (m *Merger) Merge(ctx context.Context, target Target, profile *config.Profile, candidates []string) *Report {
	logger := zerolog.Ctx(ctx)
	report := &Report{}

	if profile == nil || !profile.EmbedMarc {
		logger.Debug().Msg("embedding bibliographic records disabled")
		return report
	}
	if len(candidates) == 0 {
		return report
	}

	primary, err := m.read(ctx, target.Primary)
	if err != nil {
		report.problem("merging %s: %v", target.Primary, err)
		return report
	}

	var anchor *mets.Document
	if target.Anchor != "" && m.storage.Exists(ctx, target.Anchor) {
		anchor, err = m.read(ctx, target.Anchor)
		if err != nil {
			report.problem("merging %s: %v", target.Anchor, err)
		}
	}

	st, err := primary.Split(m.anchorTypes)
	if err != nil {
		report.problem("merging %s: %v", target.Primary, err)
		return report
	}
	ids := ReadIdentifiers(st)
	if ids.AnchorSource == "" && ids.AnchorDigital == "" && anchor != nil {
		// the exported primary only points at its anchor, so read it from the anchor document
		if root, err := anchor.LogicalRoot(); err == nil {
			ids.AnchorSource, _ = root.Field(FieldSource)
			ids.AnchorDigital, _ = root.Field(FieldDigital)
		}
	}

	report.Binding = Resolve(ids, candidates)
	logger.Debug().
		Str("primary_digital", report.Binding.PrimaryDigital).
		Str("primary_source", report.Binding.PrimarySource).
		Str("anchor_digital", report.Binding.AnchorDigital).
		Str("anchor_source", report.Binding.AnchorSource).
		Msg("resolved bibliographic binding")

	if report.Binding.HasPrimary() {
		m.embedAndWrite(ctx, report, primary, target.Primary, report.Binding.Primary())
	}
	if anchor != nil && report.Binding.HasAnchor() {
		m.embedAndWrite(ctx, report, anchor, target.Anchor, report.Binding.Anchor())
	}

	return report
}

func (m *Merger) embedAndWrite(ctx context.Context, report *Report, doc *mets.Document, dst string, fragments []string) {
	var contents [][]byte
	for _, f := range fragments {
		data, err := m.storage.ReadFile(ctx, f)
		if err != nil {
			report.problem("merging %s: %v", dst, err)
			return
		}
		contents = append(contents, data)
	}

	if HasWrapper(doc) {
		zerolog.Ctx(ctx).Warn().Str("document", dst).Msg("document already carries a MARC section, appending another one")
	}

	if err := Embed(doc, contents...); err != nil {
		report.problem("merging %s: %v", dst, err)
		return
	}

	data, err := doc.Bytes()
	if err != nil {
		report.problem("merging %s: %v", dst, err)
		return
	}
	if err := m.storage.WriteFile(ctx, dst, data); err != nil {
		report.problem("merging %s: %v", dst, err)
		return
	}
	report.Written = append(report.Written, dst)
}

func (m *Merger) read(ctx context.Context, p string) (*mets.Document, error) {
	data, err := m.storage.ReadFile(ctx, p)
	if err != nil {
		return nil, err
	}
	return mets.Parse(data)
}

// 🧩 Embed appends one MARC wrapper holding the fragments, in order, to the first descriptive section.
// The document is untouched when a fragment fails to parse.
func Embed(doc *mets.Document, fragments ...[]byte) error {
	if len(fragments) == 0 {
		return nil
	}
	sec := doc.FirstDescriptiveSection()
	if sec == nil {
		return errors.Errorf("document has no descriptive section")
	}

	roots := make([]*etree.Element, 0, len(fragments))
	for i, data := range fragments {
		frag := etree.NewDocument()
		if err := frag.ReadFromBytes(data); err != nil {
			return errors.Errorf("parsing fragment %d: %w", i, err)
		}
		root := frag.Root()
		if root == nil {
			return errors.Errorf("fragment %d has no root element", i)
		}
		frag.RemoveChild(root)
		root.Tag = FragmentTag
		roots = append(roots, root)
	}

	wrap := mets.NewElement(sec, "mdWrap")
	wrap.CreateAttr("MDTYPE", WrapperType)
	data := mets.NewElement(sec, "xmlData")
	for _, root := range roots {
		data.AddChild(root)
	}
	wrap.AddChild(data)
	sec.AddChild(wrap)
	return nil
}

// HasWrapper reports whether the first descriptive section already holds a MARC wrapper
func HasWrapper(doc *mets.Document) bool {
	sec := doc.FirstDescriptiveSection()
	if sec == nil {
		return false
	}
	for _, c := range sec.ChildElements() {
		if c.Tag == "mdWrap" && c.SelectAttrValue("MDTYPE", "") == WrapperType {
			return true
		}
	}
	return false
}
