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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/carlzhc/anaconda/pkg/configuration"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils/exec"
	"github.com/carlzhc/anaconda/utils/log"
)

// mountOrder returns the mounted devices sorted parent mount points first.
func mountOrder(m *model.Model) []*model.Device {
	points := m.MountPoints()
	paths := make([]string, 0, len(points))
	for mp := range points {
		paths = append(paths, mp)
	}
	sort.Slice(paths, func(i, j int) bool {
		di := strings.Count(paths[i], "/")
		dj := strings.Count(paths[j], "/")
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})

	devices := make([]*model.Device, 0, len(paths))
	for _, mp := range paths {
		devices = append(devices, points[mp])
	}
	return devices
}

// ActivateFilesystemsTask turns the planned filesystems on.
type ActivateFilesystemsTask struct {
	task.Base
	module   *Module
	executor exec.Executor
}

// ActivateFilesystemsWithTask builds the activation task.
func (s *Module) ActivateFilesystemsWithTask() *ActivateFilesystemsTask {
	return &ActivateFilesystemsTask{module: s, executor: &exec.CommandExecutor{}}
}

// Name returns the task name.
func (t *ActivateFilesystemsTask) Name() string {
	return "Activate the filesystems"
}

// Run settles the device nodes and enables the swap devices.
func (t *ActivateFilesystemsTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		if err := t.executor.ExecuteCommand("udevadm", "settle"); err != nil {
			return struct{}{}, err
		}
		for _, d := range t.module.Model().Devicetree.Devices {
			if d.Format.Type != "swap" {
				continue
			}
			if err := t.executor.ExecuteCommand("swapon", d.Path); err != nil {
				return struct{}{}, fmt.Errorf("swapon %s: %w", d.Path, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

// MountFilesystemsTask mounts the planned filesystems under the system
// root.
type MountFilesystemsTask struct {
	task.Base
	module   *Module
	executor exec.Executor
	sysroot  string
}

// MountFilesystemsWithTask builds the mount task.
func (s *Module) MountFilesystemsWithTask() *MountFilesystemsTask {
	return &MountFilesystemsTask{
		module:   s,
		executor: &exec.CommandExecutor{},
		sysroot:  configuration.SystemRoot(),
	}
}

// Name returns the task name.
func (t *MountFilesystemsTask) Name() string {
	return "Mount the filesystems"
}

// Run mounts parents before children.
func (t *MountFilesystemsTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		for _, d := range mountOrder(t.module.Model()) {
			target := filepath.Join(t.sysroot, d.Format.Mountpoint)
			if err := os.MkdirAll(target, 0o755); err != nil {
				return struct{}{}, err
			}
			args := []string{d.Path, target}
			if d.Format.Options != "" {
				args = append([]string{"-o", d.Format.Options}, args...)
			}
			log.Infof("mounting %s at %s", d.Path, target)
			if err := t.executor.ExecuteCommand("mount", args...); err != nil {
				return struct{}{}, fmt.Errorf("mount %s: %w", d.Path, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

// WriteConfigurationTask writes the storage configuration of the installed
// system.
type WriteConfigurationTask struct {
	task.Base
	module  *Module
	sysroot string
}

// WriteConfigurationWithTask builds the configuration task.
func (s *Module) WriteConfigurationWithTask() *WriteConfigurationTask {
	return &WriteConfigurationTask{module: s, sysroot: configuration.SystemRoot()}
}

// Name returns the task name.
func (t *WriteConfigurationTask) Name() string {
	return "Write the storage configuration"
}

// Run writes the fstab of the target system.
func (t *WriteConfigurationTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		var b strings.Builder
		for _, d := range mountOrder(t.module.Model()) {
			opts := d.Format.Options
			if opts == "" {
				opts = "defaults"
			}
			fmt.Fprintf(&b, "%s %s %s %s 0 0\n", d.Path, d.Format.Mountpoint, d.Format.Type, opts)
		}
		for _, d := range t.module.Model().Devicetree.Devices {
			if d.Format.Type == "swap" {
				fmt.Fprintf(&b, "%s none swap defaults 0 0\n", d.Path)
			}
		}

		path := filepath.Join(t.sysroot, "etc/fstab")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return struct{}{}, err
		}
		log.Infof("writing %s", path)
		return struct{}{}, os.WriteFile(path, []byte(b.String()), 0o644)
	})
	return err
}
