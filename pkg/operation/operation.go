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

package operation

import (
	"context"

	"github.com/walteh/metsexport/pkg/export"
	"github.com/walteh/metsexport/pkg/object"
	"github.com/walteh/metsexport/pkg/storage"
	"gitlab.com/tozd/go/errors"
)

// 🚀 Exporter exports one object
type Exporter interface {
	Export(ctx context.Context, obj *object.Object) (*export.Result, error)
}

// 🔧 Options contains configuration for the runner
type Options struct {
	// Exporter runs the passes of one object
	Exporter Exporter
	// Storage is used to load object directories
	Storage storage.Storage
	// Jobs is the number of objects exported at the same time, 1 when unset
	Jobs int
	// Project overrides the project of every loaded object when set
	Project string
}

// 🏭 New creates a new runner with the given options
func New(opts Options) (*Runner, error) {
	if opts.Exporter == nil {
		return nil, errors.Errorf("exporter is required")
	}
	if opts.Storage == nil {
		return nil, errors.Errorf("storage is required")
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Runner{opts: opts}, nil
}
