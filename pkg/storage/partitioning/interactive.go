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

// Interactive is the strategy behind interactive editing. The editor works
// on a playground copy; applying splices the playground's collections back
// into the scratch model so holders of the scratch model observe the edits
// without being handed a new object.
type Interactive struct {
	Base

	playground *model.Model
}

// NewInteractive returns an interactive partitioning strategy.
func NewInteractive() *Interactive {
	return &Interactive{Base: newBase(MethodInteractive)}
}

// Playground returns the editing copy, creating it on first use.
func (p *Interactive) Playground() *model.Model {
	if p.playground == nil {
		p.playground = p.model.Copy()
	}
	return p.playground
}

// DiscardPlayground throws the editing copy away.
func (p *Interactive) DiscardPlayground() {
	p.playground = nil
}

// ApplyPlayground splices the playground edits into the scratch model and
// discards the playground.
func (p *Interactive) ApplyPlayground() {
	if p.playground == nil {
		return
	}
	p.model.Splice(p.playground)
	p.playground = nil
}

// OnStorageReset drops the playground together with the stale scratch model.
func (p *Interactive) OnStorageReset(canonical *model.Model) {
	p.playground = nil
	p.Base.OnStorageReset(canonical)
}

// ProcessKickstart is a no-op: interactive edits come from the editor, not
// from directives.
func (p *Interactive) ProcessKickstart(data *kickstart.Data) error {
	return nil
}

// SetupKickstart is a no-op for the same reason.
func (p *Interactive) SetupKickstart(data *kickstart.Data) {
}

// ValidateWithTask builds the validation task over the scratch model.
func (p *Interactive) ValidateWithTask() *ValidationTask {
	return NewValidationTask(p.model)
}
