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

// Package status prints the end of run summary of an export.
package status

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/walteh/metsexport/pkg/export"
)

// 📊 Totals counts results across a run
type Totals struct {
	Objects   int
	Succeeded int
	Failed    int
	Passes    int
	Copied    int
	Problems  int
}

// Summarize counts results
func Summarize(results []*export.Result) Totals {
	var t Totals
	for _, r := range results {
		if r == nil {
			continue
		}
		t.Objects++
		if r.Success {
			t.Succeeded++
		} else {
			t.Failed++
		}
		t.Passes += len(r.Passes)
		t.Problems += len(r.Problems)
		for _, p := range r.Passes {
			t.Copied += p.Copy.Copied
		}
	}
	return t
}

// 📋 Print writes one table row per pass followed by every problem
func Print(w io.Writer, results []*export.Result) error {
	data := pterm.TableData{{"Object", "Project", "State", "Destination", "Copied", "Skipped"}}
	for _, r := range results {
		if r == nil {
			continue
		}
		if len(r.Passes) == 0 {
			state := "no target"
			if !r.Success {
				state = "failed"
			}
			data = append(data, []string{r.Object, "", state, "", "0", "0"})
			continue
		}
		for _, p := range r.Passes {
			data = append(data, []string{
				p.Object,
				p.Project,
				p.State.String(),
				p.Destination,
				strconv.Itoa(p.Copy.Copied),
				strconv.Itoa(p.Copy.Skipped),
			})
		}
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render(); err != nil {
		return err
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		for _, problem := range r.Problems {
			pterm.Error.WithWriter(w).Println(fmt.Sprintf("%s: %s", r.Object, problem))
		}
	}

	t := Summarize(results)
	line := fmt.Sprintf("%d objects, %d passes, %d files copied", t.Objects, t.Passes, t.Copied)
	if t.Failed > 0 {
		pterm.Warning.WithWriter(w).Println(fmt.Sprintf("%s, %d failed", line, t.Failed))
	} else {
		pterm.Success.WithWriter(w).Println(line)
	}
	return nil
}
