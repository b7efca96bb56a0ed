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

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/metsexport/cmd/metsexport/commands"
	"github.com/walteh/metsexport/cmd/metsexport/opts"
	"github.com/walteh/metsexport/pkg/log"
	"github.com/walteh/metsexport/pkg/storage"
)

// newRootCmd wires the commands around shared options
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metsexport",
		Short: "Export digitised objects as METS packages",
		Long: `metsexport copies the content folders of digitised objects into export
packages, writes their METS metadata and embeds MARC records found next to them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			level := zerolog.InfoLevel
			if o.Debug {
				level = zerolog.DebugLevel
			}
			logger := setupLogging(level)
			cmd.SetContext(logger.WithContext(cmd.Context()))

			if o.Logger == nil {
				o.Logger = log.New(cmd.OutOrStdout(), level)
			}
			if o.Storage == nil {
				o.Storage = storage.NewOS()
			}
			return o.LoadConfig(cmd.Context())
		},
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewExportCmd(o),
		commands.NewPlanCmd(o),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "metsexport.yaml", "config file path (yaml, hcl, json or xml)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(level zerolog.Level) zerolog.Logger {
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}
