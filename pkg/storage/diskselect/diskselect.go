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

// Package diskselect implements the disk selection module: which disks the
// installation may use, must ignore, and must not touch.
package diskselect

import (
	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/modules"
	"github.com/carlzhc/anaconda/pkg/signal"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/utils"
)

// Module is the disk selection module.
type Module struct {
	model *model.Model

	selectedDisks    []string
	ignoredDisks     []string
	exclusiveDisks   []string
	protectedDevices []string
	diskImages       map[string]string

	// SelectedDisksChangedSignal fires with the new selection.
	SelectedDisksChangedSignal signal.Signal[[]string]
	// ProtectedDevicesChangedSignal fires with the new protected set.
	ProtectedDevicesChangedSignal signal.Signal[[]string]
}

// NewModule returns a disk selection module.
func NewModule() *Module {
	return &Module{diskImages: map[string]string{}}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "DISK_SELECTION"
}

// OnStorageChanged adopts the new canonical model.
func (m *Module) OnStorageChanged(storage *model.Model) {
	m.model = storage
}

// SelectedDisks returns the disks picked for installation.
func (m *Module) SelectedDisks() []string {
	return m.selectedDisks
}

// SetSelectedDisks stores the selection and notifies listeners.
func (m *Module) SetSelectedDisks(disks []string) {
	if utils.SliceEqualSlice(m.selectedDisks, disks) {
		return
	}
	m.selectedDisks = append([]string(nil), disks...)
	m.SelectedDisksChangedSignal.Emit(m.selectedDisks)
}

// IgnoredDisks returns the disks the installation must not see.
func (m *Module) IgnoredDisks() []string {
	return m.ignoredDisks
}

// SetIgnoredDisks stores the ignored set.
func (m *Module) SetIgnoredDisks(disks []string) {
	m.ignoredDisks = append([]string(nil), disks...)
}

// ExclusiveDisks returns the only disks the installation may see.
func (m *Module) ExclusiveDisks() []string {
	return m.exclusiveDisks
}

// SetExclusiveDisks stores the exclusive set.
func (m *Module) SetExclusiveDisks(disks []string) {
	m.exclusiveDisks = append([]string(nil), disks...)
}

// ProtectedDevices returns the devices that must not be touched.
func (m *Module) ProtectedDevices() []string {
	return m.protectedDevices
}

// SetProtectedDevices stores the protected set and notifies listeners.
func (m *Module) SetProtectedDevices(devices []string) {
	if utils.SliceEqualSlice(m.protectedDevices, devices) {
		return
	}
	m.protectedDevices = append([]string(nil), devices...)
	if m.model != nil {
		m.model.ProtectDevices(m.protectedDevices)
	}
	m.ProtectedDevicesChangedSignal.Emit(m.protectedDevices)
}

// DiskImages returns the disk image files by name.
func (m *Module) DiskImages() map[string]string {
	return m.diskImages
}

// SetDiskImages stores the disk image mapping.
func (m *Module) SetDiskImages(images map[string]string) {
	m.diskImages = map[string]string{}
	for k, v := range images {
		m.diskImages[k] = v
	}
}

// ProcessKickstart consumes the ignoredisk directive.
func (m *Module) ProcessKickstart(data *kickstart.Data) error {
	if !data.IgnoreDisk.Seen {
		return nil
	}
	m.SetIgnoredDisks(data.IgnoreDisk.IgnoredDisks)
	m.SetExclusiveDisks(data.IgnoreDisk.OnlyUseDisks)
	return nil
}

// SetupKickstart writes the directive back into the handler.
func (m *Module) SetupKickstart(data *kickstart.Data) {
	if len(m.ignoredDisks) == 0 && len(m.exclusiveDisks) == 0 {
		return
	}
	data.IgnoreDisk.Seen = true
	data.IgnoreDisk.IgnoredDisks = append([]string(nil), m.ignoredDisks...)
	data.IgnoreDisk.OnlyUseDisks = append([]string(nil), m.exclusiveDisks...)
}

// CollectRequirements returns no requirements; disk selection is
// configuration only.
func (m *Module) CollectRequirements() []modules.Requirement {
	return nil
}
