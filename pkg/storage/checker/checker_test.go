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

package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carlzhc/anaconda/pkg/storage/model"
)

func modelWithRoot(size uint64) *model.Model {
	m := model.New()
	m.Devicetree.AddDevice(&model.Device{
		Name: "sda1", Type: "part", Size: size,
		Format: model.Format{Type: "ext4", Mountpoint: "/"},
	})
	return m
}

func TestCheckFlagsSmallRoot(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	a.Empty(m.Check(modelWithRoot(10 << 30)))

	reasons := m.Check(modelWithRoot(100 << 20))
	a.Len(reasons, 1)
	a.Contains(reasons[0], "root filesystem")
}

func TestCheckFlagsSeparateSystemPath(t *testing.T) {
	a := assert.New(t)

	storage := modelWithRoot(10 << 30)
	storage.Devicetree.AddDevice(&model.Device{
		Name: "sda2", Type: "part", Size: 1 << 30,
		Format: model.Format{Type: "ext4", Mountpoint: "/etc"},
	})

	m := NewModule()
	reasons := m.Check(storage)
	a.Len(reasons, 1)
	a.Contains(reasons[0], "/etc must be on the root filesystem")
}

func TestSetConstraintOverride(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	m.SetConstraint(ConstraintMinRootSize, uint64(50<<20))
	a.Empty(m.Check(modelWithRoot(100 << 20)))

	v, ok := m.Constraint(ConstraintMinRootSize)
	a.True(ok)
	a.Equal(uint64(50<<20), v)
}
