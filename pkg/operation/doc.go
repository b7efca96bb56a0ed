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

/*
Package operation runs exports for a batch of objects.

🎯 Purpose:
- Loads every object directory given on the command line
- Exports each object through an Exporter
- Bounds how many objects are exported at the same time

🔄 Flow:
1. Load the object descriptor of each directory
2. Export the objects, at most Jobs at a time
3. Return the results in input order

⚡ Concurrency:
Objects never share passes. Each object's passes run one after another inside
its own Export call, so the project swap of one object cannot be observed by
another. A storage fault in one object does not cancel the others; the first
fault is returned after every object finished.

🔍 Example:

	runner, err := operation.New(operation.Options{Exporter: orchestrator, Storage: st, Jobs: 4})
	results, err := runner.Run(ctx, dirs)
*/
package operation
