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

// Package text resolves substitution placeholders in configured templates.
package text

import (
	"regexp"
	"strings"

	"github.com/walteh/metsexport/pkg/mets"
)

// 🔭 Scope selects which structural unit a $(meta...) placeholder reads from
type Scope string

const (
	ScopeDefault    Scope = ""
	ScopeTopStruct  Scope = "topstruct"
	ScopeFirstChild Scope = "firstchild"
)

// 📚 MetadataSource resolves descriptive field values
type MetadataSource interface {
	Field(scope Scope, name string) (string, bool)
}

// 🏷️ Variables are the object level values available to templates
type Variables struct {
	ProcessTitle string
	ProcessID    string
	ProjectName  string
}

var (
	metaPattern = regexp.MustCompile(`\$\(meta(?:\.(topstruct|firstchild))?\.([^()\s]+)\)`)
	varPattern  = regexp.MustCompile(`(?i)\{(processtitle|processid|projectname)\}`)
)

// 🔄 Replacer implements the substitution collaborator
type Replacer struct {
	vars Variables
	meta MetadataSource
}

// 🏭 NewReplacer creates a replacer. meta may be nil.
func NewReplacer(vars Variables, meta MetadataSource) *Replacer {
	return &Replacer{vars: vars, meta: meta}
}

// Replace resolves every placeholder in template. Unknown metadata resolves to "".
func (r *Replacer) Replace(template string) string {
	out := varPattern.ReplaceAllStringFunc(template, func(m string) string {
		switch strings.ToLower(varPattern.FindStringSubmatch(m)[1]) {
		case "processtitle":
			return r.vars.ProcessTitle
		case "processid":
			return r.vars.ProcessID
		default:
			return r.vars.ProjectName
		}
	})

	return metaPattern.ReplaceAllStringFunc(out, func(m string) string {
		if r.meta == nil {
			return ""
		}
		sub := metaPattern.FindStringSubmatch(m)
		value, _ := r.meta.Field(Scope(sub[1]), sub[2])
		return value
	})
}

// WithProject returns a copy of the replacer that reports project as the project name
func (r *Replacer) WithProject(project string) *Replacer {
	vars := r.vars
	vars.ProjectName = project
	return &Replacer{vars: vars, meta: r.meta}
}

type structureSource struct {
	st *mets.Structure
}

// FromStructure exposes a split logical structure as a MetadataSource.
// The default scope reads the primary unit and falls back to the anchor.
func FromStructure(st *mets.Structure) MetadataSource {
	return &structureSource{st: st}
}

func (s *structureSource) Field(scope Scope, name string) (string, bool) {
	switch scope {
	case ScopeTopStruct:
		if s.st.Anchor != nil {
			return s.st.Anchor.Field(name)
		}
		return s.st.Primary.Field(name)
	case ScopeFirstChild:
		if s.st.Anchor != nil {
			return s.st.Primary.Field(name)
		}
		if kids := s.st.Primary.Children(); len(kids) > 0 {
			return kids[0].Field(name)
		}
		return "", false
	default:
		if v, ok := s.st.Primary.Field(name); ok {
			return v, true
		}
		if s.st.Anchor != nil {
			return s.st.Anchor.Field(name)
		}
		return "", false
	}
}
