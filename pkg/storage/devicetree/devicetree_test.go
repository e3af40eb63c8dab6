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

package devicetree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carlzhc/anaconda/pkg/storage/model"
)

func fixtureModel() *model.Model {
	m := model.New()
	m.Devicetree.AddDevice(&model.Device{Name: "sda", Path: "/dev/sda", Size: 64 << 30, Type: "disk"})
	m.Devicetree.AddDevice(&model.Device{
		Name: "sda1", Path: "/dev/sda1", Size: 1 << 30, Type: "part",
		Parents: []string{"sda"},
		Format:  model.Format{Type: "ext4", Mountpoint: "/boot"},
	})
	return m
}

func TestQueriesBeforeResetFail(t *testing.T) {
	a := assert.New(t)

	m := NewModule()

	_, err := m.GetDevices()
	a.ErrorIs(err, model.ErrUnavailableStorage)
	_, err = m.GetDeviceData("sda")
	a.ErrorIs(err, model.ErrUnavailableStorage)
	_, err = m.GetDisks()
	a.ErrorIs(err, model.ErrUnavailableStorage)
	_, err = m.GetActions()
	a.ErrorIs(err, model.ErrUnavailableStorage)
	_, err = m.ResolveDevice("sda")
	a.ErrorIs(err, model.ErrUnavailableStorage)
}

func TestDeviceQueries(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	m.OnStorageChanged(fixtureModel())

	devices, err := m.GetDevices()
	a.NoError(err)
	a.Equal([]string{"sda", "sda1"}, devices)

	disks, err := m.GetDisks()
	a.NoError(err)
	a.Equal([]string{"sda"}, disks)

	data, err := m.GetDeviceData("sda1")
	a.NoError(err)
	a.Equal("ext4", data.FormatType)
	a.Equal("/boot", data.Mountpoint)

	_, err = m.GetDeviceData("sdz")
	a.Error(err)
}

func TestResolveDevice(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	m.OnStorageChanged(fixtureModel())

	name, err := m.ResolveDevice("/dev/sda1")
	a.NoError(err)
	a.Equal("sda1", name)

	name, err = m.ResolveDevice("missing")
	a.NoError(err)
	a.Empty(name)
}

func TestGetActionsRendersQueue(t *testing.T) {
	a := assert.New(t)

	storage := fixtureModel()
	storage.ScheduleAction(&model.Action{
		Kind:   model.ActionCreateFormat,
		Device: "sda1",
		Format: model.Format{Type: "xfs"},
	})

	m := NewModule()
	m.OnStorageChanged(storage)

	actions, err := m.GetActions()
	a.NoError(err)
	a.Equal([]string{"create format on sda1"}, actions)
}
