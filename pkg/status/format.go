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

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/metsexport/pkg/plan"
)

// 🎨 Display configuration
const (
	taskIndent    = 4  // spaces to indent task entries
	nameWidth     = 40 // width for the destination path
	categoryWidth = 15 // width for the category
	kindWidth     = 10 // width for the task kind
)

// 🎯 FormatTask formats a copy task for display
func FormatTask(task plan.CopyTask, skipped bool) string {
	var prefix string
	switch {
	case skipped:
		prefix = color.HiBlackString("-")
	case task.Kind == plan.KindEnsureDir:
		prefix = color.CyanString("+")
	default:
		prefix = color.GreenString("✓")
	}

	kind := task.Kind.String()
	if skipped {
		kind = "skipped"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", taskIndent),
		prefix,
		fmt.Sprintf("%-*s", nameWidth, task.Destination),
		color.New(categoryColor(task.Category)).Sprint(fmt.Sprintf("%-*s", categoryWidth, task.Category)),
		fmt.Sprintf("%-*s", kindWidth, kind),
	)
}

func categoryColor(category string) color.Attribute {
	switch {
	case strings.HasPrefix(category, "folder:"):
		return color.FgMagenta
	case category == "ocr":
		return color.FgYellow
	default:
		return color.FgBlue
	}
}
