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
	"fmt"

	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils"
)

// Automatic is the autopart strategy: a default layout planned over the
// selected disks.
type Automatic struct {
	Base

	enabled    bool
	schemeType string
	fstype     string
	encrypted  bool
	passphrase string
	noHome     bool
	noSwap     bool
}

// NewAutomatic returns an automatic partitioning strategy.
func NewAutomatic() *Automatic {
	return &Automatic{Base: newBase(MethodAutomatic)}
}

// Enabled reports whether autopart was requested.
func (p *Automatic) Enabled() bool {
	return p.enabled
}

// ProcessKickstart consumes the autopart directive.
func (p *Automatic) ProcessKickstart(data *kickstart.Data) error {
	if !data.AutoPart.Seen {
		return nil
	}
	p.enabled = data.AutoPart.AutoPart
	p.schemeType = data.AutoPart.Type
	p.fstype = data.AutoPart.FSType
	p.encrypted = data.AutoPart.Encrypted
	p.passphrase = data.AutoPart.Passphrase
	p.noHome = data.AutoPart.NoHome
	p.noSwap = data.AutoPart.NoSwap
	return nil
}

// SetupKickstart writes the autopart directive back into the handler.
func (p *Automatic) SetupKickstart(data *kickstart.Data) {
	if !p.enabled {
		return
	}
	data.AutoPart.Seen = true
	data.AutoPart.AutoPart = true
	data.AutoPart.Type = p.schemeType
	data.AutoPart.FSType = p.fstype
	data.AutoPart.Encrypted = p.encrypted
	data.AutoPart.Passphrase = p.passphrase
	data.AutoPart.NoHome = p.noHome
	data.AutoPart.NoSwap = p.noSwap
}

// AutomaticConfigureTask plans the default layout on the scratch model.
type AutomaticConfigureTask struct {
	task.Base
	strategy *Automatic
}

// ConfigureWithTask builds the planning task.
func (p *Automatic) ConfigureWithTask() task.Plain {
	return &AutomaticConfigureTask{strategy: p}
}

// Name returns the task name.
func (t *AutomaticConfigureTask) Name() string {
	return "Configure automatic partitioning"
}

// Run wipes the usable leaves of the selected disks and plans the default
// layout on the first of them.
func (t *AutomaticConfigureTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		p := t.strategy
		m := p.model

		fstype := p.fstype
		if fstype == "" {
			fstype = m.DefaultFSType
		}

		var usable []*model.Device
		for _, d := range m.Devicetree.Leaves() {
			if d.Protected || d.Size == 0 || d.Type == "disk" {
				continue
			}
			if len(p.selectedDisks) > 0 &&
				!utils.SubsetOf(m.Devicetree.DisksOf(d), p.selectedDisks) {
				continue
			}
			usable = append(usable, d)
		}
		if len(usable) == 0 {
			return struct{}{}, &model.InvalidStorageError{
				Reasons: []string{"no usable device for automatic partitioning"},
			}
		}

		for _, d := range usable {
			m.ScheduleAction(&model.Action{Kind: model.ActionDestroyFormat, Device: d.Name})
		}

		mounts := []string{"/", "/boot"}
		if !p.noHome {
			mounts = append(mounts, "/home")
		}
		if !p.noSwap {
			mounts = append(mounts, "swap")
		}
		for i, mp := range mounts {
			if i >= len(usable) {
				break
			}
			format := model.Format{Type: fstype, Mountpoint: mp}
			if mp == "swap" {
				format = model.Format{Type: "swap"}
			}
			m.ScheduleAction(&model.Action{
				Kind:   model.ActionCreateFormat,
				Device: usable[i].Name,
				Format: format,
			})
		}
		if len(mounts) > len(usable) {
			return struct{}{}, &model.InvalidStorageError{
				Reasons: []string{fmt.Sprintf("automatic partitioning needs %d devices, found %d",
					len(mounts), len(usable))},
			}
		}
		return struct{}{}, nil
	})
	return err
}

// ValidateWithTask builds the validation task over the scratch model.
func (p *Automatic) ValidateWithTask() *ValidationTask {
	return NewValidationTask(p.model)
}
