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

// Package model implements the shared storage model: the device tree, the
// queued action list and the disk selection constraints.
//
// The model is mutated only through the action queue. Strategies edit a
// scratch copy produced by Copy; the orchestration layer promotes a
// validated copy to canonical either by swapping the pointer or, when other
// components hold references into the canonical model, by splicing the
// internal collections into the existing identity (Splice).
package model

import (
	"strings"

	"github.com/carlzhc/anaconda/utils"
)

// Format describes the formatting of a device.
type Format struct {
	Type       string
	Mountpoint string
	Label      string
	Options    string
}

// Mountable reports whether the format can carry a mount point.
func (f Format) Mountable() bool {
	switch f.Type {
	case "", "swap", "biosboot", "prepboot", "lvmpv", "mdmember":
		return false
	}
	return true
}

// Device is one node of the device tree.
type Device struct {
	Name      string
	Path      string
	Size      uint64
	Type      string // "disk", "part", "lvm", "crypt", "loop"
	Protected bool
	Format    Format
	Parents   []string
}

// Action kinds. Destroy actions sort before create actions at execution
// time; the queue preserves scheduling order within a kind.
type ActionKind string

const (
	ActionCreateFormat  ActionKind = "create format"
	ActionDestroyFormat ActionKind = "destroy format"
	ActionCreateDevice  ActionKind = "create device"
	ActionDestroyDevice ActionKind = "destroy device"
	ActionSetMountpoint ActionKind = "set mountpoint"
)

// Action is one queued mutation of the device tree.
type Action struct {
	Kind   ActionKind
	Device string
	Format Format
}

// DeviceTree holds the devices and the pending actions.
type DeviceTree struct {
	Devices []*Device
	Actions []*Action
	Hidden  []*Device
	Names   map[string]*Device
	Roots   []string
}

// NewDeviceTree returns an empty tree.
func NewDeviceTree() *DeviceTree {
	return &DeviceTree{
		Names: map[string]*Device{},
	}
}

// AddDevice inserts a device. Insertion order is preserved and is the
// iteration order of Leaves.
func (t *DeviceTree) AddDevice(d *Device) {
	t.Devices = append(t.Devices, d)
	t.Names[d.Name] = d
}

// GetDeviceByName returns the named device or nil.
func (t *DeviceTree) GetDeviceByName(name string) *Device {
	return t.Names[name]
}

// ResolveDevice resolves a device specifier (a name or a /dev path) to
// exactly one device, or nil.
func (t *DeviceTree) ResolveDevice(spec string) *Device {
	if spec == "" {
		return nil
	}
	name := strings.TrimPrefix(spec, "/dev/")
	if d, ok := t.Names[name]; ok {
		return d
	}
	for _, d := range t.Devices {
		if d.Path == spec {
			return d
		}
	}
	return nil
}

// Leaves returns the devices that no other visible device builds upon, in
// insertion order.
func (t *DeviceTree) Leaves() []*Device {
	parents := map[string]bool{}
	for _, d := range t.Devices {
		for _, p := range d.Parents {
			parents[p] = true
		}
	}

	var leaves []*Device
	for _, d := range t.Devices {
		if !parents[d.Name] {
			leaves = append(leaves, d)
		}
	}
	return leaves
}

// DisksOf returns the names of the physical disks the device lives on.
func (t *DeviceTree) DisksOf(d *Device) []string {
	var disks []string
	var walk func(dev *Device)
	walk = func(dev *Device) {
		if dev.Type == "disk" {
			if !utils.ContainsString(disks, dev.Name) {
				disks = append(disks, dev.Name)
			}
			return
		}
		for _, name := range dev.Parents {
			if parent := t.Names[name]; parent != nil {
				walk(parent)
			}
		}
	}
	walk(d)
	return disks
}

// Hide moves a device and everything built on it out of the visible tree.
func (t *DeviceTree) Hide(d *Device) {
	for _, child := range t.Devices {
		if utils.ContainsString(child.Parents, d.Name) {
			t.Hide(child)
		}
	}

	var visible []*Device
	for _, dev := range t.Devices {
		if dev == d {
			t.Hidden = append(t.Hidden, dev)
			continue
		}
		visible = append(visible, dev)
	}
	t.Devices = visible
	delete(t.Names, d.Name)
}

// Model is the storage model shared by the modules.
type Model struct {
	Devicetree *DeviceTree

	IgnoredDisks     []string
	ExclusiveDisks   []string
	ProtectedDevices []string
	DiskImages       map[string]string

	DefaultFSType string
	Packages      []string
}

// New returns an empty model.
func New() *Model {
	return &Model{
		Devicetree:    NewDeviceTree(),
		DiskImages:    map[string]string{},
		DefaultFSType: "ext4",
	}
}

// Copy returns an isolated deep copy for speculative editing.
func (m *Model) Copy() *Model {
	c := &Model{
		Devicetree:       copyTree(m.Devicetree),
		IgnoredDisks:     append([]string(nil), m.IgnoredDisks...),
		ExclusiveDisks:   append([]string(nil), m.ExclusiveDisks...),
		ProtectedDevices: append([]string(nil), m.ProtectedDevices...),
		DiskImages:       map[string]string{},
		DefaultFSType:    m.DefaultFSType,
		Packages:         append([]string(nil), m.Packages...),
	}
	for k, v := range m.DiskImages {
		c.DiskImages[k] = v
	}
	return c
}

func copyTree(t *DeviceTree) *DeviceTree {
	c := NewDeviceTree()
	for _, d := range t.Devices {
		c.AddDevice(copyDevice(d))
	}
	for _, d := range t.Hidden {
		c.Hidden = append(c.Hidden, copyDevice(d))
	}
	for _, a := range t.Actions {
		dup := *a
		c.Actions = append(c.Actions, &dup)
	}
	c.Roots = append([]string(nil), t.Roots...)
	return c
}

func copyDevice(d *Device) *Device {
	dup := *d
	dup.Parents = append([]string(nil), d.Parents...)
	return &dup
}

// Splice copies the internal collections of another model into the
// receiver, preserving the receiver's identity. Components holding a
// reference to this model observe the new state without being handed a new
// object.
func (m *Model) Splice(other *Model) {
	m.Devicetree.Devices = other.Devicetree.Devices
	m.Devicetree.Actions = other.Devicetree.Actions
	m.Devicetree.Hidden = other.Devicetree.Hidden
	m.Devicetree.Names = other.Devicetree.Names
	m.Devicetree.Roots = other.Devicetree.Roots
}

// ScheduleAction appends an action to the queue and applies its effect to
// the in-memory tree so later queries observe the planned state.
func (m *Model) ScheduleAction(a *Action) {
	m.Devicetree.Actions = append(m.Devicetree.Actions, a)

	d := m.Devicetree.GetDeviceByName(a.Device)
	if d == nil {
		return
	}
	switch a.Kind {
	case ActionCreateFormat:
		d.Format = a.Format
	case ActionDestroyFormat:
		d.Format = Format{}
	case ActionSetMountpoint:
		d.Format.Mountpoint = a.Format.Mountpoint
		if a.Format.Options != "" {
			d.Format.Options = a.Format.Options
		}
	}
}

// ProtectDevices marks exactly the named devices as protected.
func (m *Model) ProtectDevices(names []string) {
	m.ProtectedDevices = append([]string(nil), names...)
	for _, d := range m.Devicetree.Devices {
		d.Protected = utils.ContainsString(names, d.Name)
	}
}

// MountPoints returns the visible devices by their mount point.
func (m *Model) MountPoints() map[string]*Device {
	result := map[string]*Device{}
	for _, d := range m.Devicetree.Devices {
		if d.Format.Mountpoint != "" {
			result[d.Format.Mountpoint] = d
		}
	}
	return result
}

// Populate fills the device tree from the scanner and applies the disk
// selection constraints. The previous tree content is discarded.
func (m *Model) Populate(scanner Scanner) error {
	devices, err := scanner.Scan()
	if err != nil {
		return err
	}

	tree := NewDeviceTree()
	for _, d := range devices {
		tree.AddDevice(d)
	}
	m.Devicetree = tree

	// Ignored disks and disks outside the exclusive set are hidden with
	// everything built on them.
	for _, d := range append([]*Device(nil), tree.Devices...) {
		if d.Type != "disk" {
			continue
		}
		if utils.ContainsString(m.IgnoredDisks, d.Name) {
			tree.Hide(d)
			continue
		}
		if len(m.ExclusiveDisks) > 0 && !utils.ContainsString(m.ExclusiveDisks, d.Name) {
			tree.Hide(d)
		}
	}

	m.ProtectDevices(m.ProtectedDevices)
	return nil
}
