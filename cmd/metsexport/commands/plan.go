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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/metsexport/cmd/metsexport/opts"
	"github.com/walteh/metsexport/pkg/export"
	"github.com/walteh/metsexport/pkg/log"
	"github.com/walteh/metsexport/pkg/operation"
	"github.com/walteh/metsexport/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewPlanCmd creates the plan command
func NewPlanCmd(opts *opts.RootOpts) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "plan <object-dir>",
		Short: "Print the copy tasks an export would run",
		Long: `Plan resolves the profile of the object's project and prints every copy task
in the order export would run them. Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := log.NewContext(cmd.Context(), opts.Logger)

			dirs, err := absolute(args)
			if err != nil {
				return err
			}

			orchestrator := export.New(opts.Storage, opts.Config)
			runner, err := operation.New(operation.Options{Exporter: orchestrator, Storage: opts.Storage, Project: project})
			if err != nil {
				return errors.Errorf("creating runner: %w", err)
			}

			objs, err := runner.Load(ctx, dirs)
			if err != nil {
				return err
			}

			tasks, root, err := orchestrator.Plan(ctx, objs[0])
			if err != nil {
				return errors.Errorf("planning %s: %w", objs[0].Title, err)
			}

			if len(tasks) == 0 {
				log.FromContext(ctx).Infof("%s has nothing to copy", objs[0].Title)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s -> %s (%s)\n", objs[0].Title, root, objs[0].Project())
			for _, task := range tasks {
				fmt.Fprintln(out, status.FormatTask(task, false))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "project of the object, overriding process.yaml")

	return cmd
}
