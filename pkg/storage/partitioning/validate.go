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

package partitioning

import (
	"fmt"

	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/pkg/task"
)

// Validate runs the structural checks over a model. A non-nil return is
// always an *model.InvalidStorageError.
func Validate(m *model.Model) error {
	var reasons []string

	seen := map[string]string{}
	hasRoot := false
	for _, d := range m.Devicetree.Devices {
		mp := d.Format.Mountpoint
		if mp == "" {
			continue
		}
		if !d.Format.Mountable() {
			reasons = append(reasons,
				fmt.Sprintf("device %s is mounted at %s without a mountable format", d.Name, mp))
		}
		if prev, ok := seen[mp]; ok {
			reasons = append(reasons,
				fmt.Sprintf("mount point %s is used by %s and %s", mp, prev, d.Name))
		}
		seen[mp] = d.Name
		if mp == "/" {
			hasRoot = true
		}
	}
	if !hasRoot {
		reasons = append(reasons, "no device is mounted at /")
	}

	if len(reasons) > 0 {
		return &model.InvalidStorageError{Reasons: reasons}
	}
	return nil
}

// ValidationTask checks a scratch model before promotion.
type ValidationTask struct {
	task.Base
	model *model.Model
}

// NewValidationTask builds a validation task over the model.
func NewValidationTask(m *model.Model) *ValidationTask {
	return &ValidationTask{model: m}
}

// Name returns the task name.
func (t *ValidationTask) Name() string {
	return "Validate a storage configuration"
}

// Run performs the validation.
func (t *ValidationTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		return struct{}{}, Validate(t.model)
	})
	return err
}
