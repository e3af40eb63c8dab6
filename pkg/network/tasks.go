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

package network

import (
	"strings"

	"github.com/google/uuid"

	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils"
	"github.com/carlzhc/anaconda/utils/log"
)

// ApplyKickstartTask applies the network directives to the live system.
type ApplyKickstartTask struct {
	task.Base
	module           *Module
	supportedDevices []string
}

// ApplyKickstartWithTask builds the task applying the stored directives.
func (m *Module) ApplyKickstartWithTask(supportedDevices []string) *ApplyKickstartTask {
	return &ApplyKickstartTask{module: m, supportedDevices: supportedDevices}
}

// Name returns the task name.
func (t *ApplyKickstartTask) Name() string {
	return "Apply kickstart"
}

// Run applies each directive and returns the device names touched.
func (t *ApplyKickstartTask) Run() ([]string, error) {
	return task.Execute(t.Name(), &t.Base, func() ([]string, error) {
		m := t.module
		if !m.canConfigure() || len(m.directives) == 0 {
			return []string{}, nil
		}

		var applied []string
		for _, nd := range m.directives {
			if nd.ESSID != "" {
				log.Infof("%s: wireless configuration is not supported, skipping %q", t.Name(), nd.ESSID)
				continue
			}

			name := deviceNameFromNetworkData(m.backend, nd, m.BootifHWAddress)
			if name == "" {
				log.Warnf("%s: no device found for directive %q", t.Name(), nd.Device)
				continue
			}
			if len(t.supportedDevices) > 0 && !utils.ContainsString(t.supportedDevices, name) {
				log.Infof("%s: device %s is not supported, skipping", t.Name(), name)
				continue
			}

			existing := kickstartConnectionFor(m.backend, name)
			if existing != nil {
				if nd.Activate {
					if err := m.backend.ActivateConnection(existing.UUID); err != nil {
						return nil, err
					}
				}
				applied = append(applied, name)
				continue
			}

			conn := connectionFromDirective(name, nd)
			if err := m.backend.AddConnection(conn); err != nil {
				return nil, err
			}
			if err := m.backend.CommitConnection(conn); err != nil {
				return nil, err
			}
			if nd.Activate {
				if err := m.backend.ActivateConnection(conn.UUID); err != nil {
					return nil, err
				}
			}
			applied = append(applied, name)
		}
		if applied == nil {
			applied = []string{}
		}
		return applied, nil
	})
}

func kickstartConnectionFor(b Backend, iface string) *Connection {
	conns, err := b.AvailableConnections(iface)
	if err != nil {
		return nil
	}
	for _, c := range conns {
		if c.FromKickstart {
			return c
		}
	}
	return nil
}

func connectionFromDirective(iface string, nd kickstart.NetworkData) *Connection {
	proto := nd.BootProto
	if proto == "" {
		proto = "dhcp"
	}
	return &Connection{
		UUID:          uuid.NewString(),
		ID:            iface,
		Interface:     iface,
		Autoconnect:   nd.OnBoot,
		FromKickstart: true,
		BootProto:     proto,
		IP:            nd.IP,
		Netmask:       nd.Netmask,
		Gateway:       nd.Gateway,
		Nameserver:    nd.Nameserver,
	}
}

// ConsolidateInitramfsConnectionsTask reduces the connections the initramfs
// left behind to one persistent connection per device.
type ConsolidateInitramfsConnectionsTask struct {
	task.Base
	module *Module
}

// ConsolidateInitramfsConnectionsWithTask builds the consolidation task.
func (m *Module) ConsolidateInitramfsConnectionsWithTask() *ConsolidateInitramfsConnectionsTask {
	return &ConsolidateInitramfsConnectionsTask{module: m}
}

// Name returns the task name.
func (t *ConsolidateInitramfsConnectionsTask) Name() string {
	return "Consolidate initramfs connections"
}

// Run consolidates every device with two or more non-subordinate available
// connections and returns the consolidated device names.
func (t *ConsolidateInitramfsConnectionsTask) Run() ([]string, error) {
	return task.Execute(t.Name(), &t.Base, func() ([]string, error) {
		m := t.module
		if !m.canConfigure() {
			return []string{}, nil
		}

		devices, err := m.backend.Devices()
		if err != nil {
			return nil, err
		}

		consolidated := []string{}
		for _, dev := range devices {
			conns, err := m.backend.AvailableConnections(dev.Interface)
			if err != nil {
				return nil, err
			}
			if len(conns) < 2 {
				continue
			}
			if anySubordinate(conns) {
				continue
			}

			keeper := selectPrimaryConnection(conns, dev.Interface)
			if keeper == nil {
				log.Warnf("%s: no primary connection for %s, skipping", t.Name(), dev.Interface)
				continue
			}

			active, err := m.backend.ActiveConnection(dev.Interface)
			if err != nil {
				return nil, err
			}

			for _, c := range conns {
				if c.UUID == keeper.UUID {
					continue
				}
				if err := m.backend.DeactivateConnection(c.UUID); err != nil {
					return nil, err
				}
			}

			// The keeper takes over from a deactivated active connection; a
			// device that had no active connection stays down.
			if active != nil && active.UUID != keeper.UUID {
				if err := m.backend.ActivateConnection(keeper.UUID); err != nil {
					return nil, err
				}
			}
			if err := m.backend.CommitConnection(keeper); err != nil {
				return nil, err
			}
			consolidated = append(consolidated, dev.Interface)
		}
		return consolidated, nil
	})
}

func anySubordinate(conns []*Connection) bool {
	for _, c := range conns {
		if c.IsSubordinate() {
			return true
		}
	}
	return false
}

// selectPrimaryConnection picks the connection to keep: an on-disk one
// first, then one bound to the device's interface name, then any connection
// not already disk-backed.
func selectPrimaryConnection(conns []*Connection, iface string) *Connection {
	for _, c := range conns {
		if c.OnDisk {
			return c
		}
	}
	for _, c := range conns {
		if c.Interface == iface {
			return c
		}
	}
	for _, c := range conns {
		if !c.OnDisk {
			return c
		}
	}
	return nil
}

// SetRealOnbootValuesFromKickstartTask propagates the onboot values of the
// directives to the persistent configuration.
type SetRealOnbootValuesFromKickstartTask struct {
	task.Base
	module *Module
}

// SetRealOnbootValuesFromKickstartWithTask builds the onboot task.
func (m *Module) SetRealOnbootValuesFromKickstartWithTask() *SetRealOnbootValuesFromKickstartTask {
	return &SetRealOnbootValuesFromKickstartTask{module: m}
}

// Name returns the task name.
func (t *SetRealOnbootValuesFromKickstartTask) Name() string {
	return "Set real onboot values from kickstart"
}

// Run updates the boot activation of every directive target and returns the
// updated device names. A directive combining a VLAN with bonded or teamed
// subordinates targets both the master and the VLAN device.
func (t *SetRealOnbootValuesFromKickstartTask) Run() ([]string, error) {
	return task.Execute(t.Name(), &t.Base, func() ([]string, error) {
		m := t.module
		if !m.canConfigure() || len(m.directives) == 0 {
			return []string{}, nil
		}

		updated := []string{}
		for _, nd := range m.directives {
			for _, target := range onbootTargets(m.backend, nd, m.BootifHWAddress) {
				if err := t.updateOnboot(target, nd.OnBoot); err != nil {
					return nil, err
				}
				updated = append(updated, target)
			}

			// Subordinates of a master directive get the same value.
			for _, slave := range subordinateSpecs(nd) {
				if err := t.updateOnboot(slave, nd.OnBoot); err != nil {
					return nil, err
				}
				updated = append(updated, slave)
			}
		}
		return updated, nil
	})
}

// onbootTargets resolves the devices whose boot activation a directive
// controls.
func onbootTargets(b Backend, nd kickstart.NetworkData, bootifHW string) []string {
	name := deviceNameFromNetworkData(b, nd, bootifHW)
	if name == "" {
		return nil
	}
	if nd.VLANID != "" && nd.IsSubordinateSpec() {
		// The VLAN rides on a bonding master that needs its own update.
		master := nd.Device
		if strings.EqualFold(master, "bootif") || strings.Contains(master, ":") {
			master = strings.TrimSuffix(name, "."+nd.VLANID)
		}
		return []string{master, name}
	}
	return []string{name}
}

func subordinateSpecs(nd kickstart.NetworkData) []string {
	var slaves []string
	slaves = append(slaves, nd.BondSlaves...)
	slaves = append(slaves, nd.TeamSlaves...)
	slaves = append(slaves, nd.BridgeSlaves...)
	return slaves
}

// updateOnboot enables boot activation directly on disk so the change does
// not activate the connection as a side effect. Disabling goes through the
// live connection when exactly one matches; otherwise on disk as well.
func (t *SetRealOnbootValuesFromKickstartTask) updateOnboot(iface string, onboot bool) error {
	b := t.module.backend
	if onboot {
		return b.UpdateOnbootValue(iface, true)
	}

	conns, err := b.AvailableConnections(iface)
	if err != nil {
		return err
	}
	if len(conns) == 1 {
		conns[0].Autoconnect = false
		return b.CommitConnection(conns[0])
	}
	return b.UpdateOnbootValue(iface, false)
}

// DumpMissingIfcfgFilesTask writes persistent records for wired devices
// missing one.
type DumpMissingIfcfgFilesTask struct {
	task.Base
	module *Module
}

// DumpMissingIfcfgFilesWithTask builds the dump task.
func (m *Module) DumpMissingIfcfgFilesWithTask() *DumpMissingIfcfgFilesTask {
	return &DumpMissingIfcfgFilesTask{module: m}
}

// Name returns the task name.
func (t *DumpMissingIfcfgFilesTask) Name() string {
	return "Dump missing ifcfg files"
}

// Run returns the devices whose persistent record was created.
func (t *DumpMissingIfcfgFilesTask) Run() ([]string, error) {
	return task.Execute(t.Name(), &t.Base, func() ([]string, error) {
		m := t.module
		if !m.canConfigure() {
			return []string{}, nil
		}

		devices, err := m.backend.Devices()
		if err != nil {
			return nil, err
		}

		dumped := []string{}
		for _, dev := range devices {
			if dev.Wireless || m.backend.HasPersistentFile(dev.Interface) {
				continue
			}

			conns, err := m.backend.AvailableConnections(dev.Interface)
			if err != nil {
				return nil, err
			}

			conn, synthesize := t.pickConnection(dev, conns)
			if conn == nil {
				continue
			}
			if !synthesize {
				// Rebind identity to the interface name; pin the hardware
				// address when an ifname= boot option fixes that mapping.
				conn.Interface = dev.Interface
				conn.ID = dev.Interface
				if ifnamePinsDevice(m.IfnameOptions, dev) {
					conn.HWAddress = dev.HWAddress
				}
			}
			if err := m.backend.CommitConnection(conn); err != nil {
				return nil, err
			}
			dumped = append(dumped, dev.Interface)
		}
		return dumped, nil
	})
}

// pickConnection decides which connection to promote to an on-disk record.
// The second return is true when the connection was synthesized from default
// configuration.
func (t *DumpMissingIfcfgFilesTask) pickConnection(dev Device, conns []*Connection) (*Connection, bool) {
	if len(conns) == 0 {
		return &Connection{
			UUID:        uuid.NewString(),
			ID:          dev.Interface,
			Interface:   dev.Interface,
			Autoconnect: false,
			BootProto:   "dhcp",
		}, true
	}

	var candidates []*Connection
	for _, c := range conns {
		if !c.IsSubordinate() {
			candidates = append(candidates, c)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, false
	case 1:
		return candidates[0], false
	}

	if active, err := t.module.backend.ActiveConnection(dev.Interface); err == nil && active != nil {
		for _, c := range candidates {
			if c.UUID == active.UUID {
				return c, false
			}
		}
	}
	for _, c := range candidates {
		if c.Interface == dev.Interface {
			return c, false
		}
	}
	return nil, false
}

func ifnamePinsDevice(options []string, dev Device) bool {
	for _, opt := range options {
		parts := strings.SplitN(opt, ":", 2)
		if len(parts) == 2 && parts[0] == dev.Interface {
			return true
		}
	}
	return false
}
