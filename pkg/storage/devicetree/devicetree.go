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

// Package devicetree implements the device tree module: read-only device
// queries for publication over the bus.
package devicetree

import (
	"fmt"

	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/modules"
	"github.com/carlzhc/anaconda/pkg/storage/model"
)

// DeviceData is the wire representation of one device.
type DeviceData struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Size       uint64 `json:"size"`
	Type       string `json:"type"`
	Protected  bool   `json:"protected"`
	FormatType string `json:"format_type"`
	Mountpoint string `json:"mountpoint"`
}

// Module is the device tree module.
type Module struct {
	model *model.Model
}

// NewModule returns a device tree module without a model; queries before
// the first storage reset fail with ErrUnavailableStorage.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "DEVICE_TREE"
}

// OnStorageChanged adopts the new canonical model.
func (m *Module) OnStorageChanged(storage *model.Model) {
	m.model = storage
}

// GetDevices returns the visible device names in tree order.
func (m *Module) GetDevices() ([]string, error) {
	if m.model == nil {
		return nil, model.ErrUnavailableStorage
	}
	names := []string{}
	for _, d := range m.model.Devicetree.Devices {
		names = append(names, d.Name)
	}
	return names, nil
}

// GetDeviceData returns the wire attributes of a device.
func (m *Module) GetDeviceData(name string) (DeviceData, error) {
	if m.model == nil {
		return DeviceData{}, model.ErrUnavailableStorage
	}
	d := m.model.Devicetree.GetDeviceByName(name)
	if d == nil {
		return DeviceData{}, fmt.Errorf("device %q does not exist", name)
	}
	return DeviceData{
		Name:       d.Name,
		Path:       d.Path,
		Size:       d.Size,
		Type:       d.Type,
		Protected:  d.Protected,
		FormatType: d.Format.Type,
		Mountpoint: d.Format.Mountpoint,
	}, nil
}

// GetDisks returns the visible disk names.
func (m *Module) GetDisks() ([]string, error) {
	if m.model == nil {
		return nil, model.ErrUnavailableStorage
	}
	disks := []string{}
	for _, d := range m.model.Devicetree.Devices {
		if d.Type == "disk" {
			disks = append(disks, d.Name)
		}
	}
	return disks, nil
}

// GetActions renders the pending actions.
func (m *Module) GetActions() ([]string, error) {
	if m.model == nil {
		return nil, model.ErrUnavailableStorage
	}
	actions := []string{}
	for _, a := range m.model.Devicetree.Actions {
		actions = append(actions, fmt.Sprintf("%s on %s", a.Kind, a.Device))
	}
	return actions, nil
}

// ResolveDevice resolves a device specifier to a name.
func (m *Module) ResolveDevice(spec string) (string, error) {
	if m.model == nil {
		return "", model.ErrUnavailableStorage
	}
	d := m.model.Devicetree.ResolveDevice(spec)
	if d == nil {
		return "", nil
	}
	return d.Name, nil
}

// ProcessKickstart is a no-op; the device tree is state, not configuration.
func (m *Module) ProcessKickstart(data *kickstart.Data) error {
	return nil
}

// SetupKickstart is a no-op for the same reason.
func (m *Module) SetupKickstart(data *kickstart.Data) {
}

// CollectRequirements returns no requirements.
func (m *Module) CollectRequirements() []modules.Requirement {
	return nil
}
