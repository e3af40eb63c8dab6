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

package diskinit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carlzhc/anaconda/pkg/kickstart"
)

func TestDefaultsToClearNone(t *testing.T) {
	a := assert.New(t)

	m := NewModule()
	a.Equal(kickstart.ClearNone, m.InitializationMode())

	out := kickstart.NewData()
	m.SetupKickstart(out)
	a.False(out.ClearPart.Seen)
}

func TestKickstartRoundTrip(t *testing.T) {
	a := assert.New(t)

	data := kickstart.NewData()
	data.ClearPart.Seen = true
	data.ClearPart.Type = kickstart.ClearList
	data.ClearPart.Drives = []string{"sda"}
	data.ClearPart.Devices = []string{"sda2"}
	data.ClearPart.InitLabel = true

	m := NewModule()
	a.NoError(m.ProcessKickstart(data))
	a.Equal(kickstart.ClearList, m.InitializationMode())
	a.Equal([]string{"sda"}, m.DrivesToClear())
	a.Equal([]string{"sda2"}, m.DevicesToClear())
	a.True(m.InitializeLabelsEnabled())

	out := kickstart.NewData()
	m.SetupKickstart(out)
	a.Equal(data.ClearPart, out.ClearPart)
}
