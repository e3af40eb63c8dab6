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
	"github.com/carlzhc/anaconda/pkg/configuration"
	"github.com/carlzhc/anaconda/pkg/metrics"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils/log"
)

// ResetTask rescans the devices into a new model. The canonical model is
// swapped only when the whole rescan succeeds; a failure leaves it
// untouched and emits no change notification.
type ResetTask struct {
	task.Base
	module *Module
}

// ResetWithTask builds the reset task.
func (s *Module) ResetWithTask() *ResetTask {
	return &ResetTask{module: s}
}

// Name returns the task name.
func (t *ResetTask) Name() string {
	return "Reset the storage model"
}

// Run rescans and returns the visible device names of the new model.
func (t *ResetTask) Run() ([]string, error) {
	return task.Execute(t.Name(), &t.Base, func() ([]string, error) {
		s := t.module

		fresh := model.New()
		fresh.IgnoredDisks = append([]string(nil), s.DiskSelection.IgnoredDisks()...)
		fresh.ExclusiveDisks = append([]string(nil), s.DiskSelection.ExclusiveDisks()...)
		fresh.ProtectedDevices = append([]string(nil), s.DiskSelection.ProtectedDevices()...)
		fresh.DiskImages = s.DiskSelection.DiskImages()
		fresh.DefaultFSType = configuration.DefaultFSType()

		if err := fresh.Populate(s.scanner); err != nil {
			log.Errorf("storage reset failed: %v", err)
			return nil, err
		}

		names := []string{}
		for _, d := range fresh.Devicetree.Devices {
			names = append(names, d.Name)
		}

		s.setModel(fresh)
		metrics.IncStorageReset()
		log.Infof("storage model reset, %d devices", len(names))
		return names, nil
	})
}
