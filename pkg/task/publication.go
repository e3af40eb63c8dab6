/*
   Copyright @ 2024 The anaconda backend authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package task

// Publishable wraps a task for invocation across the process boundary. The
// result is translated to wire-safe values: a list of strings, empty for
// tasks without a consumable result.
type Publishable struct {
	name    string
	status  func() Status
	execute func() ([]string, error)
}

// NewPublishable builds the wire adapter of a task.
func NewPublishable(name string, status func() Status, execute func() ([]string, error)) *Publishable {
	return &Publishable{name: name, status: status, execute: execute}
}

// Name returns the human readable task name.
func (p *Publishable) Name() string {
	return p.name
}

// Status returns the current execution state.
func (p *Publishable) Status() Status {
	return p.status()
}

// Execute runs the task and returns its wire result.
func (p *Publishable) Execute() ([]string, error) {
	return p.execute()
}
