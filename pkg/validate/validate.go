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

// Package validate checks a METS document before it is exported.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/metsexport/pkg/config"
	"github.com/walteh/metsexport/pkg/mets"
	"gitlab.com/tozd/go/errors"
)

// ✅ Structural validates the logical structure and the configured required fields
type Structural struct {
	anchorTypes []string
}

// 🏭 New creates a structural validator
func New(anchorTypes []string) *Structural {
	return &Structural{anchorTypes: anchorTypes}
}

// 🔍 Validate returns every finding in document order. A document passes when there are none.
func (v *Structural) Validate(ctx context.Context, doc *mets.Document, profile *config.Profile) (bool, []string) {
	var messages []string

	root, err := doc.LogicalRoot()
	if err != nil {
		if errors.Is(err, mets.ErrNoLogicalRoot) {
			return false, []string{"no logical structure found"}
		}
		return false, []string{err.Error()}
	}

	if strings.TrimSpace(root.Type()) == "" {
		messages = append(messages, fmt.Sprintf("logical root %s has no type", label(root)))
	}

	walkUnits(root, func(u *mets.Unit) {
		for _, id := range u.DMDIDs() {
			if doc.DescriptiveSection(id) == nil {
				messages = append(messages, fmt.Sprintf("%s references missing descriptive section %s", label(u), id))
			}
		}
	})

	if root.IsAnchor(v.anchorTypes) && len(root.Children()) == 0 {
		messages = append(messages, fmt.Sprintf("anchor %s has no child", label(root)))
	}

	if profile != nil && len(profile.RequiredFields) > 0 {
		st, err := doc.Split(v.anchorTypes)
		if err == nil {
			for _, field := range profile.RequiredFields {
				if value, ok := st.Primary.Field(field); !ok || strings.TrimSpace(value) == "" {
					messages = append(messages, fmt.Sprintf("required field %s is missing on %s", field, label(st.Primary)))
				}
			}
		}
	}

	for _, m := range messages {
		zerolog.Ctx(ctx).Debug().Str("finding", m).Msg("validation finding")
	}

	return len(messages) == 0, messages
}

func walkUnits(u *mets.Unit, fn func(*mets.Unit)) {
	fn(u)
	for _, c := range u.Children() {
		walkUnits(c, fn)
	}
}

func label(u *mets.Unit) string {
	typ := u.Type()
	if typ == "" {
		typ = "unit"
	}
	if id := u.ID(); id != "" {
		return fmt.Sprintf("%s (%s)", typ, id)
	}
	return typ
}
