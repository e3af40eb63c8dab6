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
	"path/filepath"

	"github.com/carlzhc/anaconda/pkg/configuration"
	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils/exec"
	"github.com/carlzhc/anaconda/utils/log"
)

// UnmountFilesystemsTask unmounts everything below the system root.
type UnmountFilesystemsTask struct {
	task.Base
	module   *Module
	executor exec.Executor
	sysroot  string
}

// UnmountFilesystemsWithTask builds the unmount task.
func (s *Module) UnmountFilesystemsWithTask() *UnmountFilesystemsTask {
	return &UnmountFilesystemsTask{
		module:   s,
		executor: &exec.CommandExecutor{},
		sysroot:  configuration.SystemRoot(),
	}
}

// Name returns the task name.
func (t *UnmountFilesystemsTask) Name() string {
	return "Unmount the filesystems"
}

// Run unmounts children before parents, the reverse of the mount order.
func (t *UnmountFilesystemsTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		devices := mountOrder(t.module.Model())
		for i := len(devices) - 1; i >= 0; i-- {
			target := filepath.Join(t.sysroot, devices[i].Format.Mountpoint)
			log.Infof("unmounting %s", target)
			if err := t.executor.ExecuteCommand("umount", target); err != nil {
				return struct{}{}, err
			}
		}
		for _, d := range t.module.Model().Devicetree.Devices {
			if d.Format.Type == "swap" {
				if err := t.executor.ExecuteCommand("swapoff", d.Path); err != nil {
					log.Warnf("swapoff %s: %v", d.Path, err)
				}
			}
		}
		return struct{}{}, nil
	})
	return err
}

// TeardownDiskImagesTask detaches the loop devices of the disk images.
type TeardownDiskImagesTask struct {
	task.Base
	module   *Module
	executor exec.Executor
}

// TeardownDiskImagesWithTask builds the teardown task.
func (s *Module) TeardownDiskImagesWithTask() *TeardownDiskImagesTask {
	return &TeardownDiskImagesTask{module: s, executor: &exec.CommandExecutor{}}
}

// Name returns the task name.
func (t *TeardownDiskImagesTask) Name() string {
	return "Tear down the disk images"
}

// Run detaches every attached disk image.
func (t *TeardownDiskImagesTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		for name, file := range t.module.Model().DiskImages {
			log.Infof("detaching disk image %s (%s)", name, file)
			if err := t.executor.ExecuteCommand("losetup", "--detach-all-associated", file); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return err
}
