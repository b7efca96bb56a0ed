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

// Package route assigns filenames to named destinations by pattern.
package route

import (
	"github.com/dlclark/regexp2"
)

// 🧭 Rule pairs a destination name with an optional compiled pattern
type Rule struct {
	Name    string
	Pattern *regexp2.Regexp
}

// 📦 Assignment lists the files routed to one destination
type Assignment struct {
	Name  string
	Files []string
}

// 🎯 Route maps files to rules in rule order, keeping the listing order inside each rule.
// A pattern matches when it is found anywhere in the filename, and a file may land in
// several assignments. Rules without a pattern yield an empty assignment.
func Route(files []string, rules []Rule) []Assignment {
	out := make([]Assignment, 0, len(rules))
	for _, rule := range rules {
		a := Assignment{Name: rule.Name, Files: []string{}}
		if rule.Pattern != nil {
			for _, f := range files {
				if Matches(rule.Pattern, f) {
					a.Files = append(a.Files, f)
				}
			}
		}
		out = append(out, a)
	}
	return out
}

// Matches reports an unanchored match of re in name. Match timeouts count as no match.
func Matches(re *regexp2.Regexp, name string) bool {
	ok, err := re.MatchString(name)
	return err == nil && ok
}

// Files flattens assignments into name -> files, merging rules that share a name
func Files(assignments []Assignment) map[string][]string {
	m := make(map[string][]string, len(assignments))
	for _, a := range assignments {
		if _, ok := m[a.Name]; !ok {
			m[a.Name] = []string{}
		}
		m[a.Name] = append(m[a.Name], a.Files...)
	}
	return m
}
