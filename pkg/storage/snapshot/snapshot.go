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

// Package snapshot implements the snapshot module: LVM thin snapshot
// requests taken before or after the installation.
package snapshot

import (
	"fmt"

	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/modules"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils/exec"
	"github.com/carlzhc/anaconda/utils/log"
)

// Snapshot timing values.
const (
	WhenPreInstall  = "pre-install"
	WhenPostInstall = "post-install"
)

// Module is the snapshot module.
type Module struct {
	model    *model.Model
	requests []kickstart.SnapshotData
}

// NewModule returns a snapshot module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "SNAPSHOT"
}

// OnStorageChanged adopts the new canonical model.
func (m *Module) OnStorageChanged(storage *model.Model) {
	m.model = storage
}

// Requests returns the snapshot requests for the given timing.
func (m *Module) Requests(when string) []kickstart.SnapshotData {
	var out []kickstart.SnapshotData
	for _, r := range m.requests {
		if r.When == when {
			out = append(out, r)
		}
	}
	return out
}

// ProcessKickstart consumes the snapshot directives.
func (m *Module) ProcessKickstart(data *kickstart.Data) error {
	if !data.Snapshot.Seen {
		return nil
	}
	for _, r := range data.Snapshot.Requests {
		if r.When != WhenPreInstall && r.When != WhenPostInstall {
			return fmt.Errorf("invalid snapshot timing %q", r.When)
		}
	}
	m.requests = append([]kickstart.SnapshotData(nil), data.Snapshot.Requests...)
	return nil
}

// SetupKickstart writes the directives back into the handler.
func (m *Module) SetupKickstart(data *kickstart.Data) {
	if len(m.requests) == 0 {
		return
	}
	data.Snapshot.Seen = true
	data.Snapshot.Requests = append([]kickstart.SnapshotData(nil), m.requests...)
}

// CollectRequirements requests the LVM tooling when snapshots are
// configured.
func (m *Module) CollectRequirements() []modules.Requirement {
	if len(m.requests) == 0 {
		return nil
	}
	return []modules.Requirement{
		modules.ForPackage("lvm2", "Necessary for snapshot creation."),
	}
}

// CreateTask creates the snapshots of one timing.
type CreateTask struct {
	task.Base
	executor exec.Executor
	requests []kickstart.SnapshotData
}

// CreateWithTask builds the creation task for the given timing.
func (m *Module) CreateWithTask(when string) *CreateTask {
	return &CreateTask{
		executor: &exec.CommandExecutor{},
		requests: m.Requests(when),
	}
}

// Name returns the task name.
func (t *CreateTask) Name() string {
	return "Create snapshots"
}

// Run creates every requested snapshot.
func (t *CreateTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		for _, r := range t.requests {
			log.Infof("creating snapshot %s of %s", r.Name, r.Origin)
			if err := t.executor.ExecuteCommand("lvcreate", "-s", "-n", r.Name, r.Origin); err != nil {
				return struct{}{}, fmt.Errorf("snapshot %s: %w", r.Name, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}
