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

	"github.com/rs/zerolog"
	"github.com/walteh/metsexport/pkg/export"
	"github.com/walteh/metsexport/pkg/object"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🏃 Runner exports batches of objects
type Runner struct {
	opts Options
}

// 📥 Load reads every object directory, applying the project override
func (r *Runner) Load(ctx context.Context, dirs []string) ([]*object.Object, error) {
	objs := make([]*object.Object, 0, len(dirs))
	for _, dir := range dirs {
		obj, err := object.Load(ctx, r.opts.Storage, dir)
		if err != nil {
			return nil, errors.Errorf("loading object %s: %w", dir, err)
		}
		if r.opts.Project != "" {
			obj.SetProject(r.opts.Project)
		}
		if obj.Project() == "" {
			return nil, errors.Errorf("object %s has no project", obj.Title)
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// 🏃 Run loads and exports every directory
func (r *Runner) Run(ctx context.Context, dirs []string) ([]*export.Result, error) {
	objs, err := r.Load(ctx, dirs)
	if err != nil {
		return nil, err
	}
	return r.Export(ctx, objs)
}

// ⚡ Export exports objects, at most Jobs at a time. Results keep the input order.
func (r *Runner) Export(ctx context.Context, objs []*object.Object) ([]*export.Result, error) {
	logger := zerolog.Ctx(ctx)
	results := make([]*export.Result, len(objs))

	var g errgroup.Group
	g.SetLimit(r.opts.Jobs)

	for i, obj := range objs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = &export.Result{Object: obj.Title, Problems: []string{err.Error()}}
				return nil
			}

			res, err := r.opts.Exporter.Export(ctx, obj)
			results[i] = res
			if err != nil {
				logger.Error().Err(err).Str("object", obj.Title).Msg("export failed")
				return errors.Errorf("exporting %s: %w", obj.Title, err)
			}
			return nil
		})
	}

	// faults do not stop the other objects
	err := g.Wait()
	return results, err
}
