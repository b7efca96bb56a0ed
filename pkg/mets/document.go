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

// Package mets reads and reshapes METS package metadata documents.
package mets

import (
	"strings"

	"github.com/beevik/etree"
	"gitlab.com/tozd/go/errors"
)

const (
	NamespaceMETS  = "http://www.loc.gov/METS/"
	NamespaceMODS  = "http://www.loc.gov/mods/v3"
	NamespaceGoobi = "http://meta.goobi.org/v1.5.1/"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
)

// ErrNoLogicalRoot is returned for documents without a logical structure map
var ErrNoLogicalRoot = errors.New("no logical structural unit")

// 📄 Document is a METS tree with addressable sections
type Document struct {
	doc *etree.Document
}

// 📝 Parse reads a METS document
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Errorf("parsing METS: %w", err)
	}
	root := doc.Root()
	if root == nil || !is(root, NamespaceMETS, "mets") {
		return nil, errors.Errorf("root element is not mets:mets")
	}
	return &Document{doc: doc}, nil
}

// Copy returns a deep copy
func (d *Document) Copy() *Document {
	return &Document{doc: d.doc.Copy()}
}

// Bytes serialises the document with two-space indentation
func (d *Document) Bytes() ([]byte, error) {
	out := d.doc.Copy()
	out.Indent(2)
	data, err := out.WriteToBytes()
	if err != nil {
		return nil, errors.Errorf("writing METS: %w", err)
	}
	return data, nil
}

// Root returns the mets:mets element
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// DescriptiveSections returns every mets:dmdSec in document order
func (d *Document) DescriptiveSections() []*etree.Element {
	return children(d.Root(), NamespaceMETS, "dmdSec")
}

// FirstDescriptiveSection returns the first mets:dmdSec, nil when there is none
func (d *Document) FirstDescriptiveSection() *etree.Element {
	secs := d.DescriptiveSections()
	if len(secs) == 0 {
		return nil
	}
	return secs[0]
}

// DescriptiveSection returns the mets:dmdSec with the given ID
func (d *Document) DescriptiveSection(id string) *etree.Element {
	for _, sec := range d.DescriptiveSections() {
		if sec.SelectAttrValue("ID", "") == id {
			return sec
		}
	}
	return nil
}

// structMap returns the first mets:structMap of the given TYPE
func (d *Document) structMap(typ string) *etree.Element {
	for _, sm := range children(d.Root(), NamespaceMETS, "structMap") {
		if strings.EqualFold(sm.SelectAttrValue("TYPE", ""), typ) {
			return sm
		}
	}
	return nil
}

// 🌳 LogicalRoot returns the top structural unit of the logical structure map
func (d *Document) LogicalRoot() (*Unit, error) {
	sm := d.structMap("LOGICAL")
	if sm == nil {
		return nil, ErrNoLogicalRoot
	}
	divs := children(sm, NamespaceMETS, "div")
	if len(divs) == 0 {
		return nil, ErrNoLogicalRoot
	}
	return &Unit{el: divs[0], doc: d}, nil
}

// ✂️ TrimMetadata strips surrounding whitespace from every descriptive field value
func (d *Document) TrimMetadata() {
	walk(d.Root(), func(el *etree.Element) {
		if el.NamespaceURI() != NamespaceGoobi || len(el.ChildElements()) > 0 {
			return
		}
		if text := el.Text(); text != strings.TrimSpace(text) {
			el.SetText(strings.TrimSpace(text))
		}
	})
}

func is(el *etree.Element, ns, local string) bool {
	return el.Tag == local && el.NamespaceURI() == ns
}

func children(parent *etree.Element, ns, local string) []*etree.Element {
	if parent == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if is(c, ns, local) {
			out = append(out, c)
		}
	}
	return out
}

func walk(el *etree.Element, fn func(*etree.Element)) {
	if el == nil {
		return
	}
	fn(el)
	for _, c := range el.ChildElements() {
		walk(c, fn)
	}
}

// NewElement creates an element in the same namespace prefix as sibling
func NewElement(sibling *etree.Element, local string) *etree.Element {
	el := etree.NewElement(local)
	el.Space = sibling.Space
	return el
}
