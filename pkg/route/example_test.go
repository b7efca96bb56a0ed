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

package route_test

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/walteh/metsexport/pkg/route"
)

func ExampleRoute() {
	rules := []route.Rule{
		{Name: "txt", Pattern: regexp2.MustCompile(`\.txt$`, regexp2.None)},
		{Name: "img", Pattern: regexp2.MustCompile(`\.jpg$`, regexp2.None)},
		{Name: "empty"},
	}

	for _, a := range route.Route([]string{"p1.txt", "p1.jpg", "notes.csv"}, rules) {
		fmt.Printf("%s: %v\n", a.Name, a.Files)
	}

	// Output:
	// txt: [p1.txt]
	// img: [p1.jpg]
	// empty: []
}
