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

// Package partitioning implements the partitioning strategies. Every
// strategy edits its own scratch copy of the storage model; the scratch
// model becomes canonical only through the orchestrator's two-phase commit.
package partitioning

import (
	"fmt"

	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/signal"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/utils/mutx"
)

// Method identifies a partitioning strategy.
type Method string

const (
	MethodAutomatic   Method = "AUTOMATIC"
	MethodManual      Method = "MANUAL"
	MethodCustom      Method = "CUSTOM"
	MethodInteractive Method = "INTERACTIVE"
	MethodRawTool     Method = "RAW_TOOL"
)

// configureLocks serializes one in-flight configuration per strategy
// instance.
var configureLocks = mutx.NewGlobalLocks()

// Strategy is the contract every partitioning variant fulfills.
type Strategy interface {
	Method() Method
	Model() *model.Model

	ProcessKickstart(data *kickstart.Data) error
	SetupKickstart(data *kickstart.Data)

	// OnStorageReset replaces the scratch model with a copy of the new
	// canonical model.
	OnStorageReset(canonical *model.Model)
	// OnSelectedDisksChanged updates the disk constraint of the strategy.
	OnSelectedDisksChanged(disks []string)

	ValidateWithTask() *ValidationTask
}

// Base carries the state shared by every strategy.
type Base struct {
	method Method
	model  *model.Model

	selectedDisks []string

	// StorageChangedSignal fires when the scratch model is replaced.
	StorageChangedSignal signal.Notifier
}

func newBase(method Method) Base {
	return Base{method: method, model: model.New()}
}

// Method returns the strategy's method.
func (b *Base) Method() Method {
	return b.method
}

// Model returns the scratch model.
func (b *Base) Model() *model.Model {
	return b.model
}

// SelectedDisks returns the current disk constraint.
func (b *Base) SelectedDisks() []string {
	return b.selectedDisks
}

// OnStorageReset installs a copy of the canonical model as the new scratch
// model.
func (b *Base) OnStorageReset(canonical *model.Model) {
	b.model = canonical.Copy()
	b.StorageChangedSignal.Emit()
}

// OnSelectedDisksChanged records the new disk constraint.
func (b *Base) OnSelectedDisksChanged(disks []string) {
	b.selectedDisks = append([]string(nil), disks...)
}

// NewPartitioning returns a fresh strategy instance for the method.
func NewPartitioning(method Method) (Strategy, error) {
	switch method {
	case MethodAutomatic:
		return NewAutomatic(), nil
	case MethodManual:
		return NewManual(), nil
	case MethodCustom:
		return NewCustom(), nil
	case MethodInteractive:
		return NewInteractive(), nil
	case MethodRawTool:
		return NewRawTool(), nil
	}
	return nil, fmt.Errorf("unknown partitioning method %q", method)
}
