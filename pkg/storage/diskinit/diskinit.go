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

// Package diskinit implements the disk initialization module: which devices
// may be cleared before partitioning and how.
package diskinit

import (
	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/modules"
	"github.com/carlzhc/anaconda/pkg/storage/model"
)

// Module is the disk initialization module.
type Module struct {
	model *model.Model

	initializationMode int
	drivesToClear      []string
	devicesToClear     []string
	initializeLabels   bool
	formatUnrecognized bool
	defaultDiskLabel   string
}

// NewModule returns a disk initialization module with clearing disabled.
func NewModule() *Module {
	return &Module{initializationMode: kickstart.ClearNone}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "DISK_INITIALIZATION"
}

// OnStorageChanged adopts the new canonical model.
func (m *Module) OnStorageChanged(storage *model.Model) {
	m.model = storage
}

// InitializationMode returns the clearpart mode.
func (m *Module) InitializationMode() int {
	return m.initializationMode
}

// SetInitializationMode stores the clearpart mode.
func (m *Module) SetInitializationMode(mode int) {
	m.initializationMode = mode
}

// DrivesToClear returns the drives restricted for clearing.
func (m *Module) DrivesToClear() []string {
	return m.drivesToClear
}

// DevicesToClear returns the devices listed for clearing.
func (m *Module) DevicesToClear() []string {
	return m.devicesToClear
}

// InitializeLabelsEnabled reports whether empty disks get a fresh label.
func (m *Module) InitializeLabelsEnabled() bool {
	return m.initializeLabels
}

// FormatUnrecognizedEnabled reports whether disks with an unrecognized
// format may be reformatted.
func (m *Module) FormatUnrecognizedEnabled() bool {
	return m.formatUnrecognized
}

// SetFormatUnrecognizedEnabled stores the flag.
func (m *Module) SetFormatUnrecognizedEnabled(enabled bool) {
	m.formatUnrecognized = enabled
}

// SetDefaultDiskLabel stores the label type for initialized disks.
func (m *Module) SetDefaultDiskLabel(label string) {
	m.defaultDiskLabel = label
}

// DefaultDiskLabel returns the label type for initialized disks.
func (m *Module) DefaultDiskLabel() string {
	return m.defaultDiskLabel
}

// ProcessKickstart consumes the clearpart directive.
func (m *Module) ProcessKickstart(data *kickstart.Data) error {
	if !data.ClearPart.Seen {
		return nil
	}
	m.initializationMode = data.ClearPart.Type
	m.drivesToClear = append([]string(nil), data.ClearPart.Drives...)
	m.devicesToClear = append([]string(nil), data.ClearPart.Devices...)
	m.initializeLabels = data.ClearPart.InitLabel
	return nil
}

// SetupKickstart writes the directive back into the handler.
func (m *Module) SetupKickstart(data *kickstart.Data) {
	if m.initializationMode == kickstart.ClearNone &&
		!m.initializeLabels && len(m.drivesToClear) == 0 && len(m.devicesToClear) == 0 {
		return
	}
	data.ClearPart.Seen = true
	data.ClearPart.Type = m.initializationMode
	data.ClearPart.Drives = append([]string(nil), m.drivesToClear...)
	data.ClearPart.Devices = append([]string(nil), m.devicesToClear...)
	data.ClearPart.InitLabel = m.initializeLabels
}

// CollectRequirements returns no requirements.
func (m *Module) CollectRequirements() []modules.Requirement {
	return nil
}
