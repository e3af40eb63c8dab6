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

package bootloader

import (
	"path/filepath"

	"github.com/carlzhc/anaconda/pkg/configuration"
	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils/exec"
	"github.com/carlzhc/anaconda/utils/log"
)

// ConfigureTask writes the boot manager configuration in the target system.
type ConfigureTask struct {
	task.Base
	module   *Module
	executor exec.Executor
	sysroot  string
}

// ConfigureWithTask builds the configuration task.
func (m *Module) ConfigureWithTask() *ConfigureTask {
	return &ConfigureTask{
		module:   m,
		executor: &exec.CommandExecutor{},
		sysroot:  configuration.SystemRoot(),
	}
}

// Name returns the task name.
func (t *ConfigureTask) Name() string {
	return "Configure the bootloader"
}

// Run regenerates the boot manager configuration.
func (t *ConfigureTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		m := t.module
		if m.mode != ModeEnabled {
			log.Infof("%s: bootloader is %s, nothing to do", t.Name(), m.mode)
			return struct{}{}, nil
		}

		config := filepath.Join(t.sysroot, "boot/grub2/grub.cfg")
		args := []string{t.sysroot, "grub2-mkconfig", "-o", "/boot/grub2/grub.cfg"}
		if m.bootloaderType == TypeExtLinux {
			config = filepath.Join(t.sysroot, "boot/extlinux/extlinux.conf")
			args = []string{t.sysroot, "extlinux", "--install", "/boot/extlinux"}
		}
		log.Infof("writing bootloader configuration %s", config)
		return struct{}{}, t.executor.ExecuteCommand("chroot", args...)
	})
	return err
}

// InstallTask installs the boot manager's first stage on the boot drive.
type InstallTask struct {
	task.Base
	module   *Module
	executor exec.Executor
	sysroot  string
}

// InstallWithTask builds the installation task.
func (m *Module) InstallWithTask() *InstallTask {
	return &InstallTask{
		module:   m,
		executor: &exec.CommandExecutor{},
		sysroot:  configuration.SystemRoot(),
	}
}

// Name returns the task name.
func (t *InstallTask) Name() string {
	return "Install the bootloader"
}

// Run installs the first stage. Skipped and disabled modes do nothing.
func (t *InstallTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		m := t.module
		if m.mode != ModeEnabled {
			log.Infof("%s: bootloader is %s, nothing to do", t.Name(), m.mode)
			return struct{}{}, nil
		}
		if err := m.validate(); err != nil {
			return struct{}{}, err
		}

		drive, err := m.GetBootDrive()
		if err != nil {
			return struct{}{}, err
		}

		log.Infof("installing bootloader to /dev/%s", drive)
		if m.bootloaderType == TypeExtLinux {
			return struct{}{}, t.executor.ExecuteCommand(
				"chroot", t.sysroot, "dd", "if=/usr/share/syslinux/mbr.bin", "of=/dev/"+drive)
		}
		return struct{}{}, t.executor.ExecuteCommand(
			"chroot", t.sysroot, "grub2-install", "/dev/"+drive)
	})
	return err
}
