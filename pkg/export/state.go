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

package export

import (
	"context"

	"github.com/walteh/metsexport/pkg/merge"
	"github.com/walteh/metsexport/pkg/plan"
)

// 🚦 State is where a pass is in the export sequence
type State int

const (
	StateIdle State = iota
	StateProfileSelected
	StateMetadataPrepared
	StateValidated
	StateFoldersCopied
	StateMetadataFinalized
	StateDone
	StateAborted
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProfileSelected:
		return "profile-selected"
	case StateMetadataPrepared:
		return "metadata-prepared"
	case StateValidated:
		return "validated"
	case StateFoldersCopied:
		return "folders-copied"
	case StateMetadataFinalized:
		return "metadata-finalized"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// 📦 PassResult is the outcome of one export pass
type PassResult struct {
	Object      string
	Project     string
	Destination string
	State       State
	Tasks       int
	Copy        plan.Summary
	Merge       *merge.Report
	Problems    []string
}

// 📊 Result is the outcome of exporting one object
type Result struct {
	Object   string
	Success  bool
	Matched  int
	Passes   []PassResult
	Problems []string
}

func (r *Result) fail(problems ...string) *Result {
	r.Success = false
	r.Problems = append(r.Problems, problems...)
	return r
}

// 📣 Reporter is told about pass boundaries and every copy task
type Reporter interface {
	plan.Observer
	StartPass(ctx context.Context, object, project string)
	EndPass(ctx context.Context, pass PassResult)
}

type nopReporter struct{}

func (nopReporter) ObserveTask(context.Context, plan.CopyTask, bool) {}
func (nopReporter) StartPass(context.Context, string, string)        {}
func (nopReporter) EndPass(context.Context, PassResult)              {}
