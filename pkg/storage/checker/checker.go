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

// Package checker implements the storage checker module: the policy knobs
// the structural validation honors.
package checker

import (
	"fmt"

	"github.com/carlzhc/anaconda/pkg/configuration"
	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/modules"
	"github.com/carlzhc/anaconda/pkg/storage/model"
)

// Constraint names.
const (
	ConstraintMinRootSize       = "min_root_size"
	ConstraintMustBeOnRoot      = "must_be_on_root"
	ConstraintSwapIsRecommended = "swap_is_recommended"
	ConstraintLUKS2MinRAM       = "luks2_min_ram_size"
)

// Module is the storage checker module.
type Module struct {
	constraints map[string]interface{}
}

// NewModule returns a checker with the default policy.
func NewModule() *Module {
	return &Module{
		constraints: map[string]interface{}{
			ConstraintMinRootSize:       uint64(250 << 20),
			ConstraintMustBeOnRoot:      []string{"/bin", "/dev", "/sbin", "/etc", "/lib", "/root", "/mnt", "lost+found", "/proc"},
			ConstraintSwapIsRecommended: false,
			ConstraintLUKS2MinRAM:       uint64(128 << 20),
		},
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "STORAGE_CHECKER"
}

// OnStorageChanged is a no-op; the policy does not derive from the model.
func (m *Module) OnStorageChanged(storage *model.Model) {
}

// Constraint returns the value of a policy knob.
func (m *Module) Constraint(name string) (interface{}, bool) {
	v, ok := m.constraints[name]
	return v, ok
}

// SetConstraint overrides a policy knob.
func (m *Module) SetConstraint(name string, value interface{}) {
	m.constraints[name] = value
}

// Check runs the policy checks over a model and returns the violations.
func (m *Module) Check(storage *model.Model) []string {
	var reasons []string
	mounts := storage.MountPoints()

	if min, ok := m.constraints[ConstraintMinRootSize].(uint64); ok {
		if root := mounts["/"]; root != nil && root.Size < min {
			reasons = append(reasons, fmt.Sprintf(
				"the root filesystem on %s is smaller than %d bytes", root.Name, min))
		}
	}
	if paths, ok := m.constraints[ConstraintMustBeOnRoot].([]string); ok {
		for _, path := range paths {
			if d := mounts[path]; d != nil {
				reasons = append(reasons, fmt.Sprintf(
					"%s must be on the root filesystem, not on %s", path, d.Name))
			}
		}
	}
	return reasons
}

// AllowImperfectDevices reports whether degraded devices may be used,
// taken from the installer configuration.
func (m *Module) AllowImperfectDevices() bool {
	return configuration.AllowImperfectDevices()
}

// ProcessKickstart is a no-op; the checker has no directives.
func (m *Module) ProcessKickstart(data *kickstart.Data) error {
	return nil
}

// SetupKickstart is a no-op for the same reason.
func (m *Module) SetupKickstart(data *kickstart.Data) {
}

// CollectRequirements returns no requirements.
func (m *Module) CollectRequirements() []modules.Requirement {
	return nil
}
