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

package mets

import (
	"strings"

	"github.com/beevik/etree"
)

// 🧱 Unit is a logical structural unit (a mets:div in the LOGICAL structMap)
type Unit struct {
	el  *etree.Element
	doc *Document
}

// Type returns the structural type, e.g. Monograph or Periodical
func (u *Unit) Type() string {
	return u.el.SelectAttrValue("TYPE", "")
}

// ID returns the div ID
func (u *Unit) ID() string {
	return u.el.SelectAttrValue("ID", "")
}

// DMDIDs returns the descriptive section IDs attached to the unit
func (u *Unit) DMDIDs() []string {
	return strings.Fields(u.el.SelectAttrValue("DMDID", ""))
}

// Children returns the direct child units
func (u *Unit) Children() []*Unit {
	var out []*Unit
	for _, c := range children(u.el, NamespaceMETS, "div") {
		out = append(out, &Unit{el: c, doc: u.doc})
	}
	return out
}

// IsAnchor reports whether the unit's type is one of anchorTypes
func (u *Unit) IsAnchor(anchorTypes []string) bool {
	for _, t := range anchorTypes {
		if t == u.Type() {
			return true
		}
	}
	return false
}

// 🔎 Field returns the first value of the named descriptive field attached to the unit
func (u *Unit) Field(name string) (string, bool) {
	for _, id := range u.DMDIDs() {
		sec := u.doc.DescriptiveSection(id)
		if sec == nil {
			continue
		}
		var (
			value string
			found bool
		)
		walk(sec, func(el *etree.Element) {
			if found || !is(el, NamespaceGoobi, "metadata") {
				return
			}
			if el.SelectAttrValue("name", "") == name {
				value, found = el.Text(), true
			}
		})
		if found {
			return value, true
		}
	}
	return "", false
}

// 🧩 Structure is the logical root split into primary and optional anchor
type Structure struct {
	Primary *Unit
	Anchor  *Unit
}

// 🧩 Split resolves the primary unit: an anchor root with children hands over to its first child
func (d *Document) Split(anchorTypes []string) (*Structure, error) {
	root, err := d.LogicalRoot()
	if err != nil {
		return nil, err
	}
	if root.IsAnchor(anchorTypes) {
		if kids := root.Children(); len(kids) > 0 {
			return &Structure{Primary: kids[0], Anchor: root}, nil
		}
	}
	return &Structure{Primary: root}, nil
}

// 📦 Package is the set of documents written for one object
type Package struct {
	Primary *Document
	Anchor  *Document
}

// 📦 Prepare builds the export documents: trimmed copies, and for anchored objects a separate
// anchor document that the primary points to through anchorHref
func (d *Document) Prepare(anchorTypes []string, anchorHref string) (*Package, error) {
	primary := d.Copy()
	primary.TrimMetadata()

	st, err := primary.Split(anchorTypes)
	if err != nil {
		return nil, err
	}
	if st.Anchor == nil {
		return &Package{Primary: primary}, nil
	}

	anchor := primary.Copy()
	anchorIDs := st.Anchor.DMDIDs()

	// primary: anchor div reduced to a pointer
	for _, id := range anchorIDs {
		if sec := primary.DescriptiveSection(id); sec != nil {
			primary.Root().RemoveChild(sec)
		}
	}
	st.Anchor.el.RemoveAttr("DMDID")
	ensureXLink(primary.Root())
	mptr := NewElement(st.Anchor.el, "mptr")
	mptr.CreateAttr("LOCTYPE", "URL")
	mptr.CreateAttr("xlink:href", anchorHref)
	st.Anchor.el.InsertChildAt(0, mptr)

	// anchor: only the anchor's own descriptive sections and logical unit
	keep := map[string]bool{}
	for _, id := range anchorIDs {
		keep[id] = true
	}
	root := anchor.Root()
	for _, sec := range anchor.DescriptiveSections() {
		if !keep[sec.SelectAttrValue("ID", "")] {
			root.RemoveChild(sec)
		}
	}
	for _, local := range []string{"fileSec", "structLink"} {
		for _, el := range children(root, NamespaceMETS, local) {
			root.RemoveChild(el)
		}
	}
	for _, sm := range children(root, NamespaceMETS, "structMap") {
		if !strings.EqualFold(sm.SelectAttrValue("TYPE", ""), "LOGICAL") {
			root.RemoveChild(sm)
		}
	}
	if anchorRoot, err := anchor.LogicalRoot(); err == nil {
		for _, kid := range anchorRoot.Children() {
			walk(kid.el, func(el *etree.Element) {
				el.RemoveAttr("DMDID")
			})
		}
	}

	return &Package{Primary: primary, Anchor: anchor}, nil
}

func ensureXLink(root *etree.Element) {
	for _, a := range root.Attr {
		if a.Space == "xmlns" && a.Value == NamespaceXLink {
			return
		}
	}
	root.CreateAttr("xmlns:xlink", NamespaceXLink)
}
