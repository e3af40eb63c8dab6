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
	"github.com/carlzhc/anaconda/pkg/storage/model"
)

// RawTool is the strategy backing an external partitioning tool. The tool
// receives the raw device tree and hands a mutated model back wholesale.
type RawTool struct {
	Base
}

// NewRawTool returns a raw-tool partitioning strategy.
func NewRawTool() *RawTool {
	return &RawTool{Base: newBase(MethodRawTool)}
}

// DeviceTree exposes the scratch model's device tree to the tool.
func (p *RawTool) DeviceTree() *model.DeviceTree {
	return p.model.Devicetree
}

// AcceptModel takes the tool's mutated model as the new scratch model.
func (p *RawTool) AcceptModel(m *model.Model) {
	p.model = m
	p.StorageChangedSignal.Emit()
}

// ProcessKickstart is a no-op: the external tool drives the layout.
func (p *RawTool) ProcessKickstart(data *kickstart.Data) error {
	return nil
}

// SetupKickstart is a no-op for the same reason.
func (p *RawTool) SetupKickstart(data *kickstart.Data) {
}

// ValidateWithTask builds the validation task over the scratch model.
func (p *RawTool) ValidateWithTask() *ValidationTask {
	return NewValidationTask(p.model)
}
