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

package bootloader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carlzhc/anaconda/pkg/configuration"
	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/storage/model"
)

func fixtureModel() *model.Model {
	m := model.New()
	m.Devicetree.AddDevice(&model.Device{Name: "sda", Path: "/dev/sda", Size: 100 << 30, Type: "disk"})
	m.Devicetree.AddDevice(&model.Device{Name: "sda1", Path: "/dev/sda1", Size: 1 << 30, Type: "part",
		Parents: []string{"sda"}, Format: model.Format{Type: "ext4", Mountpoint: "/boot"}})
	m.Devicetree.AddDevice(&model.Device{Name: "sdb", Path: "/dev/sdb", Size: 50 << 30, Type: "disk"})
	return m
}

func TestGetBootDriveNeedsStorage(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	_, err := m.GetBootDrive()
	a.ErrorIs(err, model.ErrUnavailableStorage)
}

func TestGetBootDriveResolution(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	m.OnStorageChanged(fixtureModel())

	// The disk carrying /boot wins.
	drive, err := m.GetBootDrive()
	a.NoError(err)
	a.Equal("sda", drive)

	// An explicit drive overrides it.
	m.SetDrive("sdb")
	drive, err = m.GetBootDrive()
	a.NoError(err)
	a.Equal("sdb", drive)
}

func TestProcessKickstartRejectsPartitionLocationForGrub2(t *testing.T) {
	a := assert.New(t)

	data := kickstart.NewData()
	data.Bootloader.Seen = true
	data.Bootloader.Location = "partition"

	err := NewModule().ProcessKickstart(data)
	var invalid *model.InvalidStorageError
	a.ErrorAs(err, &invalid)
}

func TestProcessKickstartRejectsForeignCryptedPassword(t *testing.T) {
	a := assert.New(t)

	data := kickstart.NewData()
	data.Bootloader.Seen = true
	data.Bootloader.Password = "$6$salt$hash"
	data.Bootloader.IsCrypted = true

	err := NewModule().ProcessKickstart(data)
	var invalid *model.InvalidStorageError
	a.ErrorAs(err, &invalid)

	data.Bootloader.Password = "grub.pbkdf2.sha512.10000.AAAA"
	a.NoError(NewModule().ProcessKickstart(data))
}

func TestExtlinuxAcceptsPartitionLocation(t *testing.T) {
	a := assert.New(t)

	data := kickstart.NewData()
	data.Bootloader.Seen = true
	data.Bootloader.ExtLinux = true
	data.Bootloader.Location = "partition"

	m := NewModule()
	a.NoError(m.ProcessKickstart(data))
	a.Equal(TypeExtLinux, m.Type())
	a.Equal(LocationPartition, m.PreferredLocation())
}

func TestKickstartRoundTrip(t *testing.T) {
	a := assert.New(t)

	data := kickstart.NewData()
	data.Bootloader.Seen = true
	data.Bootloader.Location = "mbr"
	data.Bootloader.BootDrive = "sda"
	data.Bootloader.DriveOrder = []string{"sda", "sdb"}
	data.Bootloader.AppendLine = "console=ttyS0"
	data.Bootloader.Timeout = 5
	data.Bootloader.LeaveBootOrder = true

	m := NewModule()
	a.NoError(m.ProcessKickstart(data))

	out := kickstart.NewData()
	m.SetupKickstart(out)
	a.Equal(data.Bootloader, out.Bootloader)
}

func TestModeNoneSkipsInstallation(t *testing.T) {
	a := assert.New(t)

	data := kickstart.NewData()
	data.Bootloader.Seen = true
	data.Bootloader.Location = "none"

	m := NewModule()
	a.NoError(m.ProcessKickstart(data))
	a.Equal(ModeSkipped, m.Mode())

	out := kickstart.NewData()
	m.SetupKickstart(out)
	a.Equal("none", out.Bootloader.Location)
}

func TestCollectRequirements(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	reqs := m.CollectRequirements()
	a.Len(reqs, 2)
	a.Equal("grub2", reqs[0].Name)

	m.SetMode(ModeDisabled)
	a.Empty(m.CollectRequirements())

	m = NewModule()
	m.bootloaderType = TypeExtLinux
	reqs = m.CollectRequirements()
	a.Len(reqs, 1)
	a.Equal("extlinux", reqs[0].Name)

	configuration.SetTargetType(configuration.TargetDirectory)
	defer configuration.SetTargetType(configuration.TargetHardware)
	a.Empty(NewModule().CollectRequirements())
}
