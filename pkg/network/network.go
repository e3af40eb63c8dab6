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

// Package network implements the network module: hostname handling,
// kickstart round-trip and the initialization tasks reconciling the
// directives with the live connection manager state.
//
// The connection manager itself is opaque behind the Backend interface; the
// module never reaches past it.
package network

import (
	"strings"

	"github.com/carlzhc/anaconda/pkg/configuration"
	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/modules"
	"github.com/carlzhc/anaconda/pkg/signal"
	"github.com/carlzhc/anaconda/pkg/task"
)

// Device is one network device as reported by the backend.
type Device struct {
	Interface string
	HWAddress string
	Wireless  bool
}

// Connection is one connection record of the backend. Controller names the
// master of a subordinate connection; empty for ordinary connections.
type Connection struct {
	UUID          string
	ID            string
	Interface     string
	HWAddress     string
	Controller    string
	Autoconnect   bool
	OnDisk        bool
	FromKickstart bool
	BootProto     string
	IP            string
	Netmask       string
	Gateway       string
	Nameserver    string
}

// IsSubordinate reports whether the connection is enslaved to a master.
func (c *Connection) IsSubordinate() bool {
	return c.Controller != ""
}

// Backend is the opaque connection-manager client.
type Backend interface {
	Devices() ([]Device, error)
	DeviceByInterface(iface string) (*Device, error)

	AvailableConnections(iface string) ([]*Connection, error)
	ActiveConnection(iface string) (*Connection, error)
	ConnectionByUUID(uuid string) (*Connection, error)

	// AddConnection registers a new connection with the manager.
	AddConnection(c *Connection) error
	// CommitConnection persists a connection's settings to disk.
	CommitConnection(c *Connection) error
	ActivateConnection(uuid string) error
	DeactivateConnection(uuid string) error

	// HasPersistentFile reports whether the device owns an on-disk record.
	HasPersistentFile(iface string) bool
	// UpdateOnbootValue edits the on-disk record directly, bypassing the
	// live connection manager.
	UpdateOnbootValue(iface string, onboot bool) error
}

// Module is the network backend module.
type Module struct {
	backend Backend

	hostname string
	// HostnameChangedSignal fires with the new value on every change.
	HostnameChangedSignal signal.Signal[string]

	directives []kickstart.NetworkData

	// BootifHWAddress is the MAC of the boot device, taken from the
	// BOOTIF boot option.
	BootifHWAddress string
	// IfnameOptions are "ifname=<name>:<mac>" boot option values pinning
	// interface names to hardware addresses.
	IfnameOptions []string
}

// NewModule returns a network module without a backend. The backend is
// attached once the connection manager is reachable; tasks created before
// that short-circuit.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "NETWORK"
}

// SetBackend attaches the connection manager client.
func (m *Module) SetBackend(b Backend) {
	m.backend = b
}

// Hostname returns the configured hostname.
func (m *Module) Hostname() string {
	return m.hostname
}

// SetHostname stores the hostname and notifies listeners.
func (m *Module) SetHostname(hostname string) {
	if m.hostname == hostname {
		return
	}
	m.hostname = hostname
	m.HostnameChangedSignal.Emit(hostname)
}

// Directives returns the stored network directives.
func (m *Module) Directives() []kickstart.NetworkData {
	return m.directives
}

// ProcessKickstart consumes the network section.
func (m *Module) ProcessKickstart(data *kickstart.Data) error {
	m.directives = append([]kickstart.NetworkData(nil), data.Network.Devices...)
	if data.Network.Hostname != "" {
		m.SetHostname(data.Network.Hostname)
	}
	for _, nd := range data.Network.Devices {
		if nd.Hostname != "" {
			m.SetHostname(nd.Hostname)
		}
	}
	return nil
}

// SetupKickstart writes the module state back into the handler.
func (m *Module) SetupKickstart(data *kickstart.Data) {
	data.Network.Seen = len(m.directives) > 0 || m.hostname != ""
	data.Network.Devices = append([]kickstart.NetworkData(nil), m.directives...)
	data.Network.Hostname = m.hostname
}

// CollectRequirements returns the packages the configured devices need on
// the target system.
func (m *Module) CollectRequirements() []modules.Requirement {
	var reqs []modules.Requirement
	for _, nd := range m.directives {
		if len(nd.TeamSlaves) > 0 {
			reqs = append(reqs, modules.ForPackage("teamd", "Necessary for network team device configuration."))
			break
		}
	}
	return reqs
}

// canConfigure is the uniform guard of the initialization tasks.
func (m *Module) canConfigure() bool {
	return m.backend != nil && configuration.CanConfigureNetwork()
}

// ForPublication returns the wire adapters of the initialization tasks.
func (m *Module) ForPublication(supportedDevices []string) []*task.Publishable {
	apply := m.ApplyKickstartWithTask(supportedDevices)
	consolidate := m.ConsolidateInitramfsConnectionsWithTask()
	onboot := m.SetRealOnbootValuesFromKickstartWithTask()
	dump := m.DumpMissingIfcfgFilesWithTask()

	return []*task.Publishable{
		task.NewPublishable(apply.Name(), apply.Status, apply.Run),
		task.NewPublishable(consolidate.Name(), consolidate.Status, consolidate.Run),
		task.NewPublishable(onboot.Name(), onboot.Status, onboot.Run),
		task.NewPublishable(dump.Name(), dump.Status, dump.Run),
	}
}

// deviceNameFromNetworkData resolves the target device name of a directive.
// An empty return means the directive cannot be bound to a device.
func deviceNameFromNetworkData(b Backend, nd kickstart.NetworkData, bootifHW string) string {
	spec := nd.Device

	if strings.EqualFold(spec, "bootif") {
		spec = bootifHW
	}

	name := spec
	if strings.Contains(spec, ":") {
		name = ""
		if devices, err := b.Devices(); err == nil {
			for _, d := range devices {
				if strings.EqualFold(d.HWAddress, spec) {
					name = d.Interface
					break
				}
			}
		}
	}

	if nd.VLANID != "" {
		if nd.InterfaceName != "" {
			return nd.InterfaceName
		}
		if name == "" {
			return ""
		}
		return name + "." + nd.VLANID
	}
	return name
}
