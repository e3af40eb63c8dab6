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

// Package kickstart holds the plain data records the modules exchange with
// the kickstart parser. The parser itself lives outside this repository;
// modules only consume and produce these records.
package kickstart

import (
	"fmt"
	"strings"
)

// TimeoutUnset marks a bootloader timeout that was never configured.
const TimeoutUnset = -1

// Data is the handler object carrying every parsed section.
type Data struct {
	Network    NetworkSection
	Mount      MountSection
	Bootloader BootloaderSection
	IgnoreDisk IgnoreDiskSection
	ClearPart  ClearPartSection
	Snapshot   SnapshotSection
	AutoPart   AutoPartSection
	ReqPart    ReqPartSection
}

// NewData returns a handler with every section unseen.
func NewData() *Data {
	d := &Data{}
	d.Bootloader.Timeout = TimeoutUnset
	return d
}

// String renders the kickstart text of all seen sections.
func (d *Data) String() string {
	var b strings.Builder
	b.WriteString(d.Network.String())
	b.WriteString(d.IgnoreDisk.String())
	b.WriteString(d.ClearPart.String())
	b.WriteString(d.AutoPart.String())
	b.WriteString(d.ReqPart.String())
	b.WriteString(d.Mount.String())
	b.WriteString(d.Snapshot.String())
	b.WriteString(d.Bootloader.String())
	return b.String()
}

// NetworkData is one network directive.
type NetworkData struct {
	Device        string
	BootProto     string
	IP            string
	Netmask       string
	Gateway       string
	Nameserver    string
	Hostname      string
	ESSID         string
	OnBoot        bool
	Activate      bool
	InterfaceName string
	VLANID        string
	BondSlaves    []string
	BondOpts      string
	TeamSlaves    []string
	BridgeSlaves  []string
}

// IsSubordinateSpec reports whether the directive configures subordinate
// devices under a bonding, teaming or bridging master.
func (n NetworkData) IsSubordinateSpec() bool {
	return len(n.BondSlaves) > 0 || len(n.TeamSlaves) > 0 || len(n.BridgeSlaves) > 0
}

func (n NetworkData) String() string {
	var b strings.Builder
	b.WriteString("network")
	if n.Device != "" {
		fmt.Fprintf(&b, " --device=%s", n.Device)
	}
	if n.BootProto != "" {
		fmt.Fprintf(&b, " --bootproto=%s", n.BootProto)
	}
	if n.IP != "" {
		fmt.Fprintf(&b, " --ip=%s", n.IP)
	}
	if n.Netmask != "" {
		fmt.Fprintf(&b, " --netmask=%s", n.Netmask)
	}
	if n.Gateway != "" {
		fmt.Fprintf(&b, " --gateway=%s", n.Gateway)
	}
	if n.Nameserver != "" {
		fmt.Fprintf(&b, " --nameserver=%s", n.Nameserver)
	}
	if n.Hostname != "" {
		fmt.Fprintf(&b, " --hostname=%s", n.Hostname)
	}
	if n.ESSID != "" {
		fmt.Fprintf(&b, " --essid=%s", n.ESSID)
	}
	if n.InterfaceName != "" {
		fmt.Fprintf(&b, " --interfacename=%s", n.InterfaceName)
	}
	if n.VLANID != "" {
		fmt.Fprintf(&b, " --vlanid=%s", n.VLANID)
	}
	if len(n.BondSlaves) > 0 {
		fmt.Fprintf(&b, " --bondslaves=%s", strings.Join(n.BondSlaves, ","))
	}
	if n.BondOpts != "" {
		fmt.Fprintf(&b, " --bondopts=%s", n.BondOpts)
	}
	if len(n.TeamSlaves) > 0 {
		fmt.Fprintf(&b, " --teamslaves=%s", strings.Join(n.TeamSlaves, ","))
	}
	if len(n.BridgeSlaves) > 0 {
		fmt.Fprintf(&b, " --bridgeslaves=%s", strings.Join(n.BridgeSlaves, ","))
	}
	if n.OnBoot {
		b.WriteString(" --onboot=yes")
	} else {
		b.WriteString(" --onboot=no")
	}
	if !n.Activate {
		b.WriteString(" --no-activate")
	}
	b.WriteString("\n")
	return b.String()
}

// NetworkSection carries the network directives.
type NetworkSection struct {
	Seen     bool
	Devices  []NetworkData
	Hostname string
}

func (s NetworkSection) String() string {
	if !s.Seen {
		return ""
	}
	var b strings.Builder
	for _, n := range s.Devices {
		b.WriteString(n.String())
	}
	if s.Hostname != "" {
		fmt.Fprintf(&b, "network --hostname=%s\n", s.Hostname)
	}
	return b.String()
}

// MountData is one mount directive.
type MountData struct {
	MountPoint string
	Device     string
	Reformat   bool
	Format     string
	MkfsOpts   string
	MountOpts  string
}

func (m MountData) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mount %s %s", m.Device, m.MountPoint)
	if m.Reformat {
		b.WriteString(" --reformat")
		if m.Format != "" {
			fmt.Fprintf(&b, "=%s", m.Format)
		}
	}
	if m.MkfsOpts != "" {
		fmt.Fprintf(&b, " --mkfsoptions=%q", m.MkfsOpts)
	}
	if m.MountOpts != "" {
		fmt.Fprintf(&b, " --mountoptions=%q", m.MountOpts)
	}
	b.WriteString("\n")
	return b.String()
}

// MountSection carries the mount directives of the manual partitioning.
type MountSection struct {
	Seen        bool
	MountPoints []MountData
}

func (s MountSection) String() string {
	if !s.Seen {
		return ""
	}
	var b strings.Builder
	for _, m := range s.MountPoints {
		b.WriteString(m.String())
	}
	return b.String()
}

// BootloaderSection carries the bootloader directive.
type BootloaderSection struct {
	Seen           bool
	Disabled       bool
	Location       string
	ExtLinux       bool
	BootDrive      string
	DriveOrder     []string
	NoMBR          bool
	LeaveBootOrder bool
	AppendLine     string
	Timeout        int
	Password       string
	IsCrypted      bool
}

func (s BootloaderSection) String() string {
	if !s.Seen {
		return ""
	}
	var b strings.Builder
	b.WriteString("bootloader")
	if s.Disabled {
		b.WriteString(" --disabled")
	}
	if s.Location != "" {
		fmt.Fprintf(&b, " --location=%s", s.Location)
	}
	if s.ExtLinux {
		b.WriteString(" --extlinux")
	}
	if s.BootDrive != "" {
		fmt.Fprintf(&b, " --boot-drive=%s", s.BootDrive)
	}
	if len(s.DriveOrder) > 0 {
		fmt.Fprintf(&b, " --driveorder=%s", strings.Join(s.DriveOrder, ","))
	}
	if s.NoMBR {
		b.WriteString(" --nombr")
	}
	if s.LeaveBootOrder {
		b.WriteString(" --leavebootorder")
	}
	if s.AppendLine != "" {
		fmt.Fprintf(&b, " --append=%q", s.AppendLine)
	}
	if s.Timeout != TimeoutUnset {
		fmt.Fprintf(&b, " --timeout=%d", s.Timeout)
	}
	if s.Password != "" {
		fmt.Fprintf(&b, " --password=%s", s.Password)
		if s.IsCrypted {
			b.WriteString(" --iscrypted")
		}
	}
	b.WriteString("\n")
	return b.String()
}

// IgnoreDiskSection carries the ignoredisk directive.
type IgnoreDiskSection struct {
	Seen         bool
	IgnoredDisks []string
	OnlyUseDisks []string
}

func (s IgnoreDiskSection) String() string {
	if !s.Seen {
		return ""
	}
	var b strings.Builder
	b.WriteString("ignoredisk")
	if len(s.IgnoredDisks) > 0 {
		fmt.Fprintf(&b, " --drives=%s", strings.Join(s.IgnoredDisks, ","))
	}
	if len(s.OnlyUseDisks) > 0 {
		fmt.Fprintf(&b, " --only-use=%s", strings.Join(s.OnlyUseDisks, ","))
	}
	b.WriteString("\n")
	return b.String()
}

// Clearpart modes.
const (
	ClearNone = iota
	ClearLinux
	ClearAll
	ClearList
)

// ClearPartSection carries the clearpart directive.
type ClearPartSection struct {
	Seen      bool
	Type      int
	Drives    []string
	Devices   []string
	InitLabel bool
}

func (s ClearPartSection) String() string {
	if !s.Seen {
		return ""
	}
	var b strings.Builder
	b.WriteString("clearpart")
	switch s.Type {
	case ClearNone:
		b.WriteString(" --none")
	case ClearLinux:
		b.WriteString(" --linux")
	case ClearAll:
		b.WriteString(" --all")
	case ClearList:
		b.WriteString(" --list=" + strings.Join(s.Devices, ","))
	}
	if len(s.Drives) > 0 {
		fmt.Fprintf(&b, " --drives=%s", strings.Join(s.Drives, ","))
	}
	if s.InitLabel {
		b.WriteString(" --initlabel")
	}
	b.WriteString("\n")
	return b.String()
}

// SnapshotData is one snapshot directive.
type SnapshotData struct {
	Name   string
	Origin string
	When   string // "pre-install" or "post-install"
}

// SnapshotSection carries the snapshot directives.
type SnapshotSection struct {
	Seen     bool
	Requests []SnapshotData
}

func (s SnapshotSection) String() string {
	if !s.Seen {
		return ""
	}
	var b strings.Builder
	for _, r := range s.Requests {
		fmt.Fprintf(&b, "snapshot %s --name=%s --when=%s\n", r.Origin, r.Name, r.When)
	}
	return b.String()
}

// AutoPartSection carries the autopart directive.
type AutoPartSection struct {
	Seen       bool
	AutoPart   bool
	Type       string // "lvm", "btrfs", "plain", "thinp"
	FSType     string
	Encrypted  bool
	Passphrase string
	NoHome     bool
	NoBoot     bool
	NoSwap     bool
}

func (s AutoPartSection) String() string {
	if !s.Seen || !s.AutoPart {
		return ""
	}
	var b strings.Builder
	b.WriteString("autopart")
	if s.Type != "" {
		fmt.Fprintf(&b, " --type=%s", s.Type)
	}
	if s.FSType != "" {
		fmt.Fprintf(&b, " --fstype=%s", s.FSType)
	}
	if s.Encrypted {
		b.WriteString(" --encrypted")
	}
	if s.NoHome {
		b.WriteString(" --nohome")
	}
	if s.NoBoot {
		b.WriteString(" --noboot")
	}
	if s.NoSwap {
		b.WriteString(" --noswap")
	}
	b.WriteString("\n")
	return b.String()
}

// PartData is one part/partition directive.
type PartData struct {
	MountPoint string
	Size       uint64 // MiB
	Grow       bool
	OnDisk     string
	FSType     string
}

func (p PartData) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "part %s", p.MountPoint)
	if p.Size > 0 {
		fmt.Fprintf(&b, " --size=%d", p.Size)
	}
	if p.Grow {
		b.WriteString(" --grow")
	}
	if p.OnDisk != "" {
		fmt.Fprintf(&b, " --ondisk=%s", p.OnDisk)
	}
	if p.FSType != "" {
		fmt.Fprintf(&b, " --fstype=%s", p.FSType)
	}
	b.WriteString("\n")
	return b.String()
}

// ReqPartSection carries the part directives of the custom partitioning.
type ReqPartSection struct {
	Seen       bool
	Partitions []PartData
}

func (s ReqPartSection) String() string {
	if !s.Seen {
		return ""
	}
	var b strings.Builder
	for _, p := range s.Partitions {
		b.WriteString(p.String())
	}
	return b.String()
}
