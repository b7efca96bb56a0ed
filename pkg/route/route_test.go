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

package route

import (
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(t *testing.T, name, pattern string) Rule {
	t.Helper()
	if pattern == "" {
		return Rule{Name: name}
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	require.NoError(t, err, "pattern %q should compile", pattern)
	return Rule{Name: name, Pattern: re}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		rules func(t *testing.T) []Rule
		want  []Assignment
	}{
		{
			name:  "split_by_extension",
			files: []string{"p1.txt", "p1.jpg", "notes.csv"},
			rules: func(t *testing.T) []Rule {
				return []Rule{rule(t, "txt", `\.txt$`), rule(t, "img", `\.jpg$`)}
			},
			want: []Assignment{
				{Name: "txt", Files: []string{"p1.txt"}},
				{Name: "img", Files: []string{"p1.jpg"}},
			},
		},
		{
			name:  "non_exclusive",
			files: []string{"00000001.jpg", "00000002.tif"},
			rules: func(t *testing.T) []Rule {
				return []Rule{rule(t, "all", `0000`), rule(t, "first", `0001`)}
			},
			want: []Assignment{
				{Name: "all", Files: []string{"00000001.jpg", "00000002.tif"}},
				{Name: "first", Files: []string{"00000001.jpg"}},
			},
		},
		{
			name:  "unanchored_search",
			files: []string{"scan_master.tif", "master"},
			rules: func(t *testing.T) []Rule {
				return []Rule{rule(t, "m", `master`)}
			},
			want: []Assignment{{Name: "m", Files: []string{"scan_master.tif", "master"}}},
		},
		{
			name:  "empty_pattern_creates_empty_assignment",
			files: []string{"a.txt"},
			rules: func(t *testing.T) []Rule {
				return []Rule{rule(t, "placeholder", "")}
			},
			want: []Assignment{{Name: "placeholder", Files: []string{}}},
		},
		{
			name:  "no_rules",
			files: []string{"a.txt"},
			rules: func(t *testing.T) []Rule { return nil },
			want:  []Assignment{},
		},
		{
			name:  "no_files",
			files: nil,
			rules: func(t *testing.T) []Rule {
				return []Rule{rule(t, "txt", `\.txt$`)}
			},
			want: []Assignment{{Name: "txt", Files: []string{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.files, tt.rules(t))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	files := []string{"c.jpg", "a.jpg", "b.txt"}
	rules := []Rule{rule(t, "img", `jpg`), rule(t, "any", `.`)}

	first := Route(files, rules)
	second := Route(files, rules)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"c.jpg", "a.jpg"}, first[0].Files, "listing order is kept")
}

func TestFiles(t *testing.T) {
	got := Files([]Assignment{
		{Name: "txt", Files: []string{"a.txt"}},
		{Name: "txt", Files: []string{"b.txt"}},
		{Name: "img", Files: []string{}},
	})
	assert.Equal(t, map[string][]string{
		"txt": {"a.txt", "b.txt"},
		"img": {},
	}, got)
}

func TestFilesKeepsEmptyDestinations(t *testing.T) {
	got := Files(Route([]string{"a.txt"}, []Rule{{Name: "none"}, {Name: "unset", Pattern: nil}}))
	require.Contains(t, got, "none")
	assert.NotNil(t, got["none"], "empty destination should map to an empty list")
	assert.Empty(t, got["none"])

	got = Files([]Assignment{{Name: "nil"}})
	assert.Equal(t, map[string][]string{"nil": {}}, got)
}
