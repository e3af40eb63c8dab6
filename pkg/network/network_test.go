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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlzhc/anaconda/pkg/configuration"
	"github.com/carlzhc/anaconda/pkg/kickstart"
)

// fakeBackend counts every call so the guard property can assert that a
// disabled configuration performs zero backend calls.
type fakeBackend struct {
	calls int

	devices     []Device
	connections map[string][]*Connection
	active      map[string]*Connection
	persistent  map[string]bool

	committed   []*Connection
	activated   []string
	deactivated []string
	onboot      map[string]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		connections: map[string][]*Connection{},
		active:      map[string]*Connection{},
		persistent:  map[string]bool{},
		onboot:      map[string]bool{},
	}
}

func (f *fakeBackend) Devices() ([]Device, error) {
	f.calls++
	return f.devices, nil
}

func (f *fakeBackend) DeviceByInterface(iface string) (*Device, error) {
	f.calls++
	for i := range f.devices {
		if f.devices[i].Interface == iface {
			return &f.devices[i], nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) AvailableConnections(iface string) ([]*Connection, error) {
	f.calls++
	return f.connections[iface], nil
}

func (f *fakeBackend) ActiveConnection(iface string) (*Connection, error) {
	f.calls++
	return f.active[iface], nil
}

func (f *fakeBackend) ConnectionByUUID(uuid string) (*Connection, error) {
	f.calls++
	for _, conns := range f.connections {
		for _, c := range conns {
			if c.UUID == uuid {
				return c, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeBackend) AddConnection(c *Connection) error {
	f.calls++
	f.connections[c.Interface] = append(f.connections[c.Interface], c)
	return nil
}

func (f *fakeBackend) CommitConnection(c *Connection) error {
	f.calls++
	c.OnDisk = true
	f.committed = append(f.committed, c)
	return nil
}

func (f *fakeBackend) ActivateConnection(uuid string) error {
	f.calls++
	f.activated = append(f.activated, uuid)
	return nil
}

func (f *fakeBackend) DeactivateConnection(uuid string) error {
	f.calls++
	f.deactivated = append(f.deactivated, uuid)
	return nil
}

func (f *fakeBackend) HasPersistentFile(iface string) bool {
	f.calls++
	return f.persistent[iface]
}

func (f *fakeBackend) UpdateOnbootValue(iface string, onboot bool) error {
	f.calls++
	f.onboot[iface] = onboot
	return nil
}

func moduleWithBackend(b Backend) *Module {
	m := NewModule()
	m.SetBackend(b)
	return m
}

func TestGuardDisabledConfigurationSkipsBackend(t *testing.T) {
	a := assert.New(t)

	configuration.SetCanConfigureNetwork(false)
	defer configuration.SetCanConfigureNetwork(true)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3"}}
	m := moduleWithBackend(backend)
	m.directives = []kickstart.NetworkData{{Device: "ens3", OnBoot: true}}

	out, err := m.ApplyKickstartWithTask(nil).Run()
	a.NoError(err)
	a.Empty(out)

	out, err = m.ConsolidateInitramfsConnectionsWithTask().Run()
	a.NoError(err)
	a.Empty(out)

	out, err = m.SetRealOnbootValuesFromKickstartWithTask().Run()
	a.NoError(err)
	a.Empty(out)

	out, err = m.DumpMissingIfcfgFilesWithTask().Run()
	a.NoError(err)
	a.Empty(out)

	a.Equal(0, backend.calls)
}

func TestGuardNilBackend(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	m.directives = []kickstart.NetworkData{{Device: "ens3"}}

	out, err := m.ApplyKickstartWithTask(nil).Run()
	a.NoError(err)
	a.Empty(out)
}

func TestApplyKickstart(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{
		{Interface: "ens3", HWAddress: "52:54:00:12:34:56"},
		{Interface: "ens4", HWAddress: "52:54:00:ab:cd:ef"},
	}
	m := moduleWithBackend(backend)
	m.directives = []kickstart.NetworkData{
		{Device: "ens3", BootProto: "dhcp", OnBoot: true, Activate: true},
		{Device: "wlan0", ESSID: "lab"}, // wireless is skipped
	}

	out, err := m.ApplyKickstartWithTask(nil).Run()
	require.NoError(err)
	a.Equal([]string{"ens3"}, out)

	require.Len(backend.committed, 1)
	conn := backend.committed[0]
	a.Equal("ens3", conn.Interface)
	a.True(conn.FromKickstart)
	a.True(conn.Autoconnect)
	a.Equal([]string{conn.UUID}, backend.activated)
}

func TestApplyKickstartResolvesBootif(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3", HWAddress: "52:54:00:12:34:56"}}
	m := moduleWithBackend(backend)
	m.BootifHWAddress = "52:54:00:12:34:56"
	m.directives = []kickstart.NetworkData{{Device: "bootif", Activate: false}}

	out, err := m.ApplyKickstartWithTask(nil).Run()
	a.NoError(err)
	a.Equal([]string{"ens3"}, out)
	a.Empty(backend.activated)
}

func TestApplyKickstartReusesKickstartConnection(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3"}}
	existing := &Connection{UUID: "uuid-1", Interface: "ens3", FromKickstart: true}
	backend.connections["ens3"] = []*Connection{existing}

	m := moduleWithBackend(backend)
	m.directives = []kickstart.NetworkData{{Device: "ens3", Activate: true}}

	out, err := m.ApplyKickstartWithTask(nil).Run()
	a.NoError(err)
	a.Equal([]string{"ens3"}, out)
	a.Empty(backend.committed)
	a.Equal([]string{"uuid-1"}, backend.activated)
}

func TestConsolidateSelectsOnDiskConnection(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3"}}
	keeper := &Connection{UUID: "uuid-disk", Interface: "ens3", OnDisk: true}
	backend.connections["ens3"] = []*Connection{
		{UUID: "uuid-mem", Interface: "ens3"},
		keeper,
	}

	m := moduleWithBackend(backend)
	out, err := m.ConsolidateInitramfsConnectionsWithTask().Run()
	a.NoError(err)
	a.Equal([]string{"ens3"}, out)
	a.Equal([]string{"uuid-mem"}, backend.deactivated)
	a.Equal([]*Connection{keeper}, backend.committed)
}

func TestConsolidateActivatesKeeperReplacingActive(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3"}}
	inMemory := &Connection{UUID: "uuid-mem", Interface: "ens3"}
	keeper := &Connection{UUID: "uuid-disk", Interface: "ens3", OnDisk: true}
	backend.connections["ens3"] = []*Connection{inMemory, keeper}
	backend.active["ens3"] = inMemory

	m := moduleWithBackend(backend)
	out, err := m.ConsolidateInitramfsConnectionsWithTask().Run()
	a.NoError(err)
	a.Equal([]string{"ens3"}, out)
	a.Equal([]string{"uuid-mem"}, backend.deactivated)
	a.Equal([]string{"uuid-disk"}, backend.activated)
}

func TestConsolidateLeavesActiveKeeperAlone(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3"}}
	keeper := &Connection{UUID: "uuid-disk", Interface: "ens3", OnDisk: true}
	backend.connections["ens3"] = []*Connection{
		{UUID: "uuid-mem", Interface: "ens3"},
		keeper,
	}
	backend.active["ens3"] = keeper

	m := moduleWithBackend(backend)
	_, err := m.ConsolidateInitramfsConnectionsWithTask().Run()
	a.NoError(err)
	a.Empty(backend.activated)
}

func TestConsolidateSkipsSubordinates(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens9"}}
	backend.connections["ens9"] = []*Connection{
		{UUID: "uuid-a", Interface: "ens9"},
		{UUID: "uuid-b", Interface: "ens9", Controller: "bond0"},
	}

	m := moduleWithBackend(backend)
	out, err := m.ConsolidateInitramfsConnectionsWithTask().Run()
	a.NoError(err)
	a.Empty(out)
	a.Empty(backend.deactivated)
}

func TestOnbootVlanOverBondTargetsBothDevices(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	m := moduleWithBackend(backend)
	m.directives = []kickstart.NetworkData{{
		Device:     "bond0",
		VLANID:     "222",
		BondSlaves: []string{"ens9", "ens10"},
		OnBoot:     true,
	}}

	out, err := m.SetRealOnbootValuesFromKickstartWithTask().Run()
	a.NoError(err)
	a.Contains(out, "bond0")
	a.Contains(out, "bond0.222")
	a.Contains(out, "ens9")
	a.Contains(out, "ens10")

	// Enabling goes straight to disk, never through a live activation.
	a.True(backend.onboot["bond0"])
	a.True(backend.onboot["bond0.222"])
	a.Empty(backend.activated)
}

func TestOnbootOffUpdatesSingleLiveConnection(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	conn := &Connection{UUID: "uuid-1", Interface: "ens3", Autoconnect: true}
	backend.connections["ens3"] = []*Connection{conn}

	m := moduleWithBackend(backend)
	m.directives = []kickstart.NetworkData{{Device: "ens3", OnBoot: false}}

	out, err := m.SetRealOnbootValuesFromKickstartWithTask().Run()
	a.NoError(err)
	a.Equal([]string{"ens3"}, out)
	a.False(conn.Autoconnect)
	a.NotContains(backend.onboot, "ens3")
}

func TestOnbootOffAmbiguousFallsBackToDisk(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	backend.connections["ens3"] = []*Connection{
		{UUID: "uuid-1", Interface: "ens3", Autoconnect: true},
		{UUID: "uuid-2", Interface: "ens3", Autoconnect: true},
	}

	m := moduleWithBackend(backend)
	m.directives = []kickstart.NetworkData{{Device: "ens3", OnBoot: false}}

	out, err := m.SetRealOnbootValuesFromKickstartWithTask().Run()
	a.NoError(err)
	a.Equal([]string{"ens3"}, out)
	onboot, seen := backend.onboot["ens3"]
	a.True(seen)
	a.False(onboot)
}

func TestDumpMissingIfcfgSynthesizesDefault(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3"}}

	m := moduleWithBackend(backend)
	out, err := m.DumpMissingIfcfgFilesWithTask().Run()
	require.NoError(err)
	a.Equal([]string{"ens3"}, out)

	require.Len(backend.committed, 1)
	conn := backend.committed[0]
	a.Equal("ens3", conn.Interface)
	a.Equal("dhcp", conn.BootProto)
	a.False(conn.Autoconnect)
	a.NotEmpty(conn.UUID)
}

func TestDumpMissingIfcfgPromotesSingleConnection(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3", HWAddress: "52:54:00:12:34:56"}}
	backend.connections["ens3"] = []*Connection{
		{UUID: "uuid-1", Interface: "", ID: "Wired connection 1"},
	}

	m := moduleWithBackend(backend)
	m.IfnameOptions = []string{"ens3:52:54:00:12:34:56"}

	out, err := m.DumpMissingIfcfgFilesWithTask().Run()
	require.NoError(err)
	a.Equal([]string{"ens3"}, out)

	require.Len(backend.committed, 1)
	conn := backend.committed[0]
	a.Equal("ens3", conn.Interface)
	a.Equal("ens3", conn.ID)
	a.Equal("52:54:00:12:34:56", conn.HWAddress)
}

func TestDumpMissingIfcfgPrefersActiveConnection(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3"}}
	active := &Connection{UUID: "uuid-2", Interface: ""}
	backend.connections["ens3"] = []*Connection{
		{UUID: "uuid-1", Interface: ""},
		active,
	}
	backend.active["ens3"] = active

	m := moduleWithBackend(backend)
	out, err := m.DumpMissingIfcfgFilesWithTask().Run()
	require.NoError(err)
	a.Equal([]string{"ens3"}, out)
	require.Len(backend.committed, 1)
	a.Equal("uuid-2", backend.committed[0].UUID)
}

func TestDumpMissingIfcfgSkipsExistingRecord(t *testing.T) {
	a := assert.New(t)

	backend := newFakeBackend()
	backend.devices = []Device{{Interface: "ens3"}}
	backend.persistent["ens3"] = true

	m := moduleWithBackend(backend)
	out, err := m.DumpMissingIfcfgFilesWithTask().Run()
	a.NoError(err)
	a.Empty(out)
	a.Empty(backend.committed)
}

func TestKickstartRoundTrip(t *testing.T) {
	a := assert.New(t)

	data := kickstart.NewData()
	data.Network.Seen = true
	data.Network.Hostname = "installer.test"
	data.Network.Devices = []kickstart.NetworkData{
		{Device: "ens3", BootProto: "dhcp", OnBoot: true, Activate: true},
		{Device: "bond0", VLANID: "222", BondSlaves: []string{"ens9", "ens10"}},
	}

	m := NewModule()
	a.NoError(m.ProcessKickstart(data))
	a.Equal("installer.test", m.Hostname())

	out := kickstart.NewData()
	m.SetupKickstart(out)
	a.True(out.Network.Seen)
	a.Equal(data.Network.Devices, out.Network.Devices)
	a.Equal("installer.test", out.Network.Hostname)
}

func TestHostnameSignal(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	var seen []string
	m.HostnameChangedSignal.Connect(func(h string) { seen = append(seen, h) })

	m.SetHostname("a")
	m.SetHostname("a")
	m.SetHostname("b")
	a.Equal([]string{"a", "b"}, seen)
}

func TestCollectRequirementsTeam(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	m.directives = []kickstart.NetworkData{{Device: "team0", TeamSlaves: []string{"ens3", "ens4"}}}
	reqs := m.CollectRequirements()
	a.Len(reqs, 1)
	a.Equal("teamd", reqs[0].Name)
}
