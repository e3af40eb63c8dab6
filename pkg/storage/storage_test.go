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

package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/storage/checker"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/pkg/storage/partitioning"
)

type fixtureScanner struct {
	devices []*model.Device
	err     error
}

func (s *fixtureScanner) Scan() ([]*model.Device, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.devices, nil
}

func scannerWithDisk() *fixtureScanner {
	return &fixtureScanner{devices: []*model.Device{
		{Name: "sda", Path: "/dev/sda", Size: 100 << 30, Type: "disk"},
		{Name: "sda1", Path: "/dev/sda1", Size: 1 << 30, Type: "part",
			Parents: []string{"sda"}, Format: model.Format{Type: "ext4", Mountpoint: "/boot"}},
		{Name: "sda2", Path: "/dev/sda2", Size: 99 << 30, Type: "part",
			Parents: []string{"sda"}, Format: model.Format{Type: "ext4"}},
	}}
}

func TestResetSwapsModelOnSuccess(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	s := NewModule(scannerWithDisk())
	old := s.Model()

	notified := 0
	s.StorageChangedSignal.Connect(func(*model.Model) { notified++ })

	names, err := s.ResetWithTask().Run()
	require.NoError(err)
	a.Equal([]string{"sda", "sda1", "sda2"}, names)
	a.Equal(1, notified)
	a.NotSame(old, s.Model())
}

func TestResetFailureLeavesCanonicalUntouched(t *testing.T) {
	a := assert.New(t)

	boom := errors.New("scan failed")
	s := NewModule(&fixtureScanner{err: boom})
	old := s.Model()

	notified := 0
	s.StorageChangedSignal.Connect(func(*model.Model) { notified++ })

	_, err := s.ResetWithTask().Run()
	a.ErrorIs(err, boom)
	a.Equal(0, notified)
	a.Same(old, s.Model())
}

func TestResetAppliesDiskSelectionConstraints(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	scanner := scannerWithDisk()
	scanner.devices = append(scanner.devices,
		&model.Device{Name: "sdb", Path: "/dev/sdb", Size: 10 << 30, Type: "disk"})

	s := NewModule(scanner)
	s.DiskSelection.SetIgnoredDisks([]string{"sdb"})
	s.DiskSelection.SetProtectedDevices([]string{"sda1"})

	_, err := s.ResetWithTask().Run()
	require.NoError(err)

	a.Nil(s.Model().Devicetree.GetDeviceByName("sdb"))
	a.True(s.Model().Devicetree.GetDeviceByName("sda1").Protected)
}

func TestApplyPartitioningTwoPhaseCommit(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	s := NewModule(scannerWithDisk())
	_, err := s.ResetWithTask().Run()
	require.NoError(err)
	canonical := s.Model()

	strategy, err := s.CreatePartitioning(partitioning.MethodManual)
	require.NoError(err)

	// An invalid scratch model must not be promoted.
	err = s.ApplyPartitioning(strategy)
	var invalid *model.InvalidStorageError
	a.ErrorAs(err, &invalid)
	a.Same(canonical, s.Model())

	// Fix the scratch model and promote it.
	strategy.Model().ScheduleAction(&model.Action{
		Kind:   model.ActionCreateFormat,
		Device: "sda2",
		Format: model.Format{Type: "ext4", Mountpoint: "/"},
	})
	notified := 0
	s.StorageChangedSignal.Connect(func(*model.Model) { notified++ })

	require.NoError(s.ApplyPartitioning(strategy))
	a.Equal(1, notified)
	a.NotSame(canonical, s.Model())
	a.Equal("sda2", s.Model().MountPoints()["/"].Name)
}

func TestApplyPartitioningHonorsCheckerPolicy(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	s := NewModule(scannerWithDisk())
	_, err := s.ResetWithTask().Run()
	require.NoError(err)
	canonical := s.Model()

	strategy, err := s.CreatePartitioning(partitioning.MethodManual)
	require.NoError(err)
	strategy.Model().ScheduleAction(&model.Action{
		Kind:   model.ActionCreateFormat,
		Device: "sda2",
		Format: model.Format{Type: "ext4", Mountpoint: "/"},
	})
	strategy.Model().ScheduleAction(&model.Action{
		Kind:   model.ActionSetMountpoint,
		Device: "sda1",
		Format: model.Format{Mountpoint: "/etc"},
	})

	err = s.ApplyPartitioning(strategy)
	var invalid *model.InvalidStorageError
	a.ErrorAs(err, &invalid)
	a.Contains(invalid.Reasons[0], "/etc must be on the root filesystem")
	a.Same(canonical, s.Model())

	// Relaxing the policy lets the same layout through.
	s.Checker.SetConstraint(checker.ConstraintMustBeOnRoot, []string{})
	require.NoError(s.ApplyPartitioning(strategy))
	a.NotSame(canonical, s.Model())
}

func TestPartitioningReturnsCreatedStrategy(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	s := NewModule(scannerWithDisk())
	a.Nil(s.Partitioning(partitioning.MethodManual))

	first, err := s.CreatePartitioning(partitioning.MethodManual)
	require.NoError(err)
	second, err := s.CreatePartitioning(partitioning.MethodManual)
	require.NoError(err)

	a.Same(second, s.Partitioning(partitioning.MethodManual))
	a.NotSame(first, s.Partitioning(partitioning.MethodManual))
	a.Nil(s.Partitioning(partitioning.MethodAutomatic))
}

func TestCreatePartitioningObservesLaterChanges(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	s := NewModule(scannerWithDisk())
	strategy, err := s.CreatePartitioning(partitioning.MethodManual)
	require.NoError(err)

	// Disk selection changes after creation still reach the strategy.
	s.DiskSelection.SetSelectedDisks([]string{"sda"})
	manual := strategy.(*partitioning.Manual)
	a.Equal([]string{"sda"}, manual.SelectedDisks())

	// So do storage resets.
	_, err = s.ResetWithTask().Run()
	require.NoError(err)
	a.NotNil(strategy.Model().Devicetree.GetDeviceByName("sda1"))
}

func TestSubModulesResyncOnReset(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	s := NewModule(scannerWithDisk())

	_, err := s.DeviceTree.GetDevices()
	a.ErrorIs(err, model.ErrUnavailableStorage)
	_, err = s.Bootloader.GetBootDrive()
	a.ErrorIs(err, model.ErrUnavailableStorage)

	_, err = s.ResetWithTask().Run()
	require.NoError(err)

	devices, err := s.DeviceTree.GetDevices()
	require.NoError(err)
	a.Contains(devices, "sda1")

	drive, err := s.Bootloader.GetBootDrive()
	require.NoError(err)
	a.Equal("sda", drive)
}

func TestProcessKickstartFansOut(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	data := kickstart.NewData()
	data.IgnoreDisk.Seen = true
	data.IgnoreDisk.IgnoredDisks = []string{"sdz"}
	data.ClearPart.Seen = true
	data.ClearPart.Type = kickstart.ClearAll
	data.Mount.Seen = true
	data.Mount.MountPoints = []kickstart.MountData{
		{MountPoint: "/", Device: "/dev/sda2", Reformat: true},
	}

	s := NewModule(scannerWithDisk())
	require.NoError(s.ProcessKickstart(data))

	a.Equal([]string{"sdz"}, s.DiskSelection.IgnoredDisks())
	a.Equal(kickstart.ClearAll, s.DiskInitialization.InitializationMode())
	require.Len(s.strategies, 1)
	a.Equal(partitioning.MethodManual, s.strategies[0].Method())

	out := kickstart.NewData()
	s.SetupKickstart(out)
	a.True(out.IgnoreDisk.Seen)
	a.True(out.ClearPart.Seen)
	a.True(out.Mount.Seen)
	a.Equal(data.Mount.MountPoints, out.Mount.MountPoints)
}

func TestCollectRequirementsUnion(t *testing.T) {
	a := assert.New(t)
	require := require.New(t)

	data := kickstart.NewData()
	data.Snapshot.Seen = true
	data.Snapshot.Requests = []kickstart.SnapshotData{
		{Name: "root-pre", Origin: "fedora/root", When: "pre-install"},
	}

	s := NewModule(scannerWithDisk())
	require.NoError(s.ProcessKickstart(data))

	var names []string
	for _, r := range s.CollectRequirements() {
		names = append(names, r.Name)
	}
	a.Contains(names, "lvm2")
	a.Contains(names, "grub2")
}

func TestInstallAndTeardownSequences(t *testing.T) {
	a := assert.New(t)

	s := NewModule(scannerWithDisk())

	install := s.InstallWithTasks()
	a.Len(install, 3)
	a.Equal("Activate the filesystems", install[0].Name())
	a.Equal("Mount the filesystems", install[1].Name())
	a.Equal("Write the storage configuration", install[2].Name())

	teardown := s.TeardownWithTasks()
	a.Len(teardown, 2)
	a.Equal("Unmount the filesystems", teardown[0].Name())
	a.Equal("Tear down the disk images", teardown[1].Name())
}
