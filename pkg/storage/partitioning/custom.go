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

package partitioning

import (
	"github.com/carlzhc/anaconda/pkg/kickstart"
)

// Custom is the directive-driven strategy: part/reqpart directives are kept
// as declared and handed to the layout planner unchanged.
type Custom struct {
	Base

	partitions []kickstart.PartData
}

// NewCustom returns a custom partitioning strategy.
func NewCustom() *Custom {
	return &Custom{Base: newBase(MethodCustom)}
}

// Partitions returns the declared part directives.
func (p *Custom) Partitions() []kickstart.PartData {
	return p.partitions
}

// ProcessKickstart consumes the part directives.
func (p *Custom) ProcessKickstart(data *kickstart.Data) error {
	if !data.ReqPart.Seen {
		return nil
	}
	p.partitions = append([]kickstart.PartData(nil), data.ReqPart.Partitions...)
	return nil
}

// SetupKickstart writes the part directives back into the handler.
func (p *Custom) SetupKickstart(data *kickstart.Data) {
	if len(p.partitions) == 0 {
		return
	}
	data.ReqPart.Seen = true
	data.ReqPart.Partitions = append([]kickstart.PartData(nil), p.partitions...)
}

// ValidateWithTask builds the validation task over the scratch model.
func (p *Custom) ValidateWithTask() *ValidationTask {
	return NewValidationTask(p.model)
}
