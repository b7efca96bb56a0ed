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

package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/metsexport/cmd/metsexport/opts"
	"github.com/walteh/metsexport/pkg/export"
	"github.com/walteh/metsexport/pkg/log"
	"github.com/walteh/metsexport/pkg/operation"
	"github.com/walteh/metsexport/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewExportCmd creates the export command
func NewExportCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		jobs    int
		project string
	)

	cmd := &cobra.Command{
		Use:   "export <object-dir>...",
		Short: "Export digitised objects into their configured packages",
		Long: `Export copies the configured content folders of each object into its export
folder, writes the METS metadata next to them and embeds any MARC records found
in the object's import folder.
It will:
1. Select the target projects of each object
2. Validate the metadata when the profile asks for it
3. Copy the content folders
4. Write and enrich the metadata documents`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "export").Logger().WithContext(cmd.Context())
			ctx = log.NewContext(ctx, opts.Logger)
			logger := log.FromContext(ctx)

			dirs, err := absolute(args)
			if err != nil {
				return err
			}

			orchestrator := export.New(opts.Storage, opts.Config, export.WithReporter(opts.Logger))
			runner, err := operation.New(operation.Options{
				Exporter: orchestrator,
				Storage:  opts.Storage,
				Jobs:     jobs,
				Project:  project,
			})
			if err != nil {
				return errors.Errorf("creating runner: %w", err)
			}

			logger.Header(fmt.Sprintf("exporting %d objects", len(dirs)))
			results, runErr := runner.Run(ctx, dirs)

			logger.LogNewline()
			reportOutcomes(ctx, results)
			if err := status.Print(cmd.OutOrStdout(), results); err != nil {
				return errors.Errorf("printing summary: %w", err)
			}

			if runErr != nil {
				return errors.Errorf("running export: %w", runErr)
			}
			if t := status.Summarize(results); t.Failed > 0 {
				return errors.Errorf("%d of %d objects failed", t.Failed, t.Objects)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "number of objects exported at the same time")
	cmd.Flags().StringVarP(&project, "project", "p", "", "project of every object, overriding process.yaml")

	return cmd
}

// reportOutcomes notes objects that were skipped or not exported
func reportOutcomes(ctx context.Context, results []*export.Result) {
	logger := log.FromContext(ctx)
	for _, r := range results {
		switch {
		case r == nil:
		case !r.Success:
			logger.Warningf("%s was not exported", r.Object)
		case r.Matched == 0:
			logger.Infof("%s matched no target condition, nothing exported", r.Object)
		}
	}
}

func absolute(dirs []string) ([]string, error) {
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Errorf("resolving %s: %w", dir, err)
		}
		out = append(out, filepath.ToSlash(abs))
	}
	return out, nil
}
