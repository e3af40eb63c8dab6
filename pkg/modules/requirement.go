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

package modules

// Requirement types.
const (
	RequirementPackage = "package"
	RequirementGroup   = "group"
)

// Requirement names a payload item a module needs installed on the target.
type Requirement struct {
	Type   string
	Name   string
	Reason string
}

// ForPackage builds a package requirement.
func ForPackage(name, reason string) Requirement {
	return Requirement{Type: RequirementPackage, Name: name, Reason: reason}
}

// ForGroup builds a package group requirement.
func ForGroup(name, reason string) Requirement {
	return Requirement{Type: RequirementGroup, Name: name, Reason: reason}
}
