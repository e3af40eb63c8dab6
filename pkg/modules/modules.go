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

// Package modules defines the contracts every backend module fulfills.
//
// A module consumes its kickstart sections through ProcessKickstart and
// reproduces them through SetupKickstart; processing then setting up must
// yield semantically equivalent configuration. Optional behaviors are
// declared through the capability interfaces, never probed by reflection.
package modules

import (
	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/task"
)

// Module is the base contract of every backend module.
type Module interface {
	Name() string

	// ProcessKickstart applies the module's kickstart sections to the
	// module state.
	ProcessKickstart(data *kickstart.Data) error

	// SetupKickstart writes the module state back into the handler.
	SetupKickstart(data *kickstart.Data)

	// CollectRequirements returns the payload requirements of the current
	// configuration.
	CollectRequirements() []Requirement
}

// Publisher is implemented by modules that expose tasks across the process
// boundary.
type Publisher interface {
	ForPublication() []*task.Publishable
}

// Configurable modules prepare themselves before the installation runs.
type Configurable interface {
	ConfigureWithTask() task.Plain
}

// Executable modules take part in the installation execution phase.
type Executable interface {
	ExecuteWithTask() task.Plain
}

// Installable modules contribute an ordered task sequence to the
// installation.
type Installable interface {
	InstallWithTasks() []task.Plain
}
