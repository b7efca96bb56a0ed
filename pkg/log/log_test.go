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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/metsexport/pkg/export"
	"github.com/walteh/metsexport/pkg/merge"
	"github.com/walteh/metsexport/pkg/plan"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "start_pass",
			op: func(t *testing.T, logger *Logger) {
				logger.StartPass(context.Background(), "book", "Archive")
			},
			wantLogs: []string{
				"[exporting book]",
				"◆ book • Archive",
			},
		},
		{
			name: "observe_task",
			op: func(t *testing.T, logger *Logger) {
				logger.ObserveTask(context.Background(), plan.CopyTask{
					Source:      "/data/book/images/book_media",
					Destination: "/export/book_media",
					Category:    "media",
					Kind:        plan.KindDirectory,
				}, false)
			},
			wantLogs: []string{
				"✓ /export/book_media                       media           directory",
			},
		},
		{
			name: "end_pass_done_with_merge_problem",
			op: func(t *testing.T, logger *Logger) {
				logger.EndPass(context.Background(), export.PassResult{
					Object:      "book",
					Project:     "Archive",
					Destination: "/export",
					State:       export.StateDone,
					Merge:       &merge.Report{Problems: []string{"merging /export/book.xml: broken"}},
				})
			},
			wantLogs: []string{
				"⚠️  merging /export/book.xml: broken",
				"✅ exported book to /export",
			},
		},
		{
			name: "end_pass_aborted",
			op: func(t *testing.T, logger *Logger) {
				logger.EndPass(context.Background(), export.PassResult{
					Object:  "book",
					Project: "Public",
					State:   export.StateAborted,
				})
			},
			wantLogs: []string{
				"❌ export of book into Public aborted",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("exporting 2 objects")
			},
			wantLogs: []string{
				"metsexport • exporting 2 objects",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create buffer for console output
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}
