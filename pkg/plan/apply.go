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

package plan

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/metsexport/pkg/storage"
	"gitlab.com/tozd/go/errors"
)

// 👀 Observer is told about every task Apply finishes
type Observer interface {
	ObserveTask(ctx context.Context, task CopyTask, skipped bool)
}

// 📊 Summary counts what Apply did
type Summary struct {
	Copied  int
	Created int
	Skipped int
}

// ⚡ Apply executes tasks in order. Missing sources are skipped, the first failure stops the run.
func Apply(ctx context.Context, st storage.Storage, tasks []CopyTask, observer Observer) (Summary, error) {
	logger := zerolog.Ctx(ctx)
	var summary Summary

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		skipped := false
		switch task.Kind {
		case KindEnsureDir:
			if err := st.CreateDirectories(ctx, task.Destination); err != nil {
				return summary, errors.Errorf("creating %s: %w", task.Destination, err)
			}
			summary.Created++
		case KindDirectory, KindFile:
			if !st.Exists(ctx, task.Source) {
				logger.Debug().Str("source", task.Source).Msg("source vanished, skipping")
				skipped = true
				summary.Skipped++
				break
			}
			var err error
			if task.Kind == KindDirectory {
				err = st.CopyDirectory(ctx, task.Source, task.Destination, false)
			} else {
				err = st.CopyFile(ctx, task.Source, task.Destination)
			}
			if err != nil {
				return summary, errors.Errorf("copying %s to %s: %w", task.Source, task.Destination, err)
			}
			summary.Copied++
		default:
			return summary, errors.Errorf("unknown task kind %d", task.Kind)
		}

		logger.Trace().
			Str("kind", task.Kind.String()).
			Str("category", task.Category).
			Str("source", task.Source).
			Str("destination", task.Destination).
			Bool("skipped", skipped).
			Msg("task applied")

		if observer != nil {
			observer.ObserveTask(ctx, task, skipped)
		}
	}

	return summary, nil
}
