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

package opts

import (
	"context"

	"github.com/walteh/metsexport/pkg/config"
	"github.com/walteh/metsexport/pkg/log"
	"github.com/walteh/metsexport/pkg/storage"
	"gitlab.com/tozd/go/errors"
)

// RootOpts holds the dependencies shared by every command
type RootOpts struct {
	ConfigFile string
	Debug      bool

	Config  *config.File
	Storage storage.Storage
	Logger  *log.Logger
}

// LoadConfig loads the configuration file once
func (o *RootOpts) LoadConfig(ctx context.Context) error {
	if o.Config != nil {
		return nil
	}
	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	o.Config = cfg
	return nil
}
