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

// Package bootloader implements the bootloader module: the boot drive and
// installation policy of the boot manager.
package bootloader

import (
	"strings"

	"github.com/carlzhc/anaconda/pkg/configuration"
	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/modules"
	"github.com/carlzhc/anaconda/pkg/storage/model"
)

// Mode of the bootloader installation.
type Mode string

const (
	ModeEnabled  Mode = "enabled"
	ModeDisabled Mode = "disabled"
	// ModeSkipped keeps the configuration but skips the installation.
	ModeSkipped Mode = "skipped"
)

// Preferred location of the first stage.
type Location string

const (
	LocationDefault   Location = "default"
	LocationMBR       Location = "mbr"
	LocationPartition Location = "partition"
)

// Bootloader types.
const (
	TypeDefault  = "DEFAULT"
	TypeExtLinux = "EXTLINUX"
)

// GRUB2 crypted passwords carry this prefix.
const grub2PasswordPrefix = "grub.pbkdf2."

// Module is the bootloader module.
type Module struct {
	model *model.Model

	mode              Mode
	bootloaderType    string
	preferredLocation Location
	drive             string
	driveOrder        []string
	keepMBR           bool
	keepBootOrder     bool
	extraArguments    string
	timeout           int
	password          string
	passwordCrypted   bool
}

// NewModule returns an enabled bootloader module with defaults.
func NewModule() *Module {
	return &Module{
		mode:              ModeEnabled,
		bootloaderType:    TypeDefault,
		preferredLocation: LocationDefault,
		timeout:           kickstart.TimeoutUnset,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "BOOTLOADER"
}

// OnStorageChanged adopts the new canonical model.
func (m *Module) OnStorageChanged(storage *model.Model) {
	m.model = storage
}

// Mode returns the installation mode.
func (m *Module) Mode() Mode {
	return m.mode
}

// SetMode stores the installation mode.
func (m *Module) SetMode(mode Mode) {
	m.mode = mode
}

// Type returns the bootloader type.
func (m *Module) Type() string {
	return m.bootloaderType
}

// PreferredLocation returns the first stage location.
func (m *Module) PreferredLocation() Location {
	return m.preferredLocation
}

// Drive returns the configured boot drive, which may be empty.
func (m *Module) Drive() string {
	return m.drive
}

// SetDrive stores the boot drive.
func (m *Module) SetDrive(drive string) {
	m.drive = drive
}

// DriveOrder returns the disk order given to the boot manager.
func (m *Module) DriveOrder() []string {
	return m.driveOrder
}

// ExtraArguments returns the kernel command line additions.
func (m *Module) ExtraArguments() string {
	return m.extraArguments
}

// Timeout returns the menu timeout, TimeoutUnset when not configured.
func (m *Module) Timeout() int {
	return m.timeout
}

// KeepMBR reports whether the MBR must stay untouched.
func (m *Module) KeepMBR() bool {
	return m.keepMBR
}

// KeepBootOrder reports whether the firmware boot order must stay untouched.
func (m *Module) KeepBootOrder() bool {
	return m.keepBootOrder
}

// Password returns the boot menu password and whether it is crypted.
func (m *Module) Password() (string, bool) {
	return m.password, m.passwordCrypted
}

// SetPassword stores the boot menu password.
func (m *Module) SetPassword(password string, crypted bool) {
	m.password = password
	m.passwordCrypted = crypted
}

// GetBootDrive resolves the drive the boot manager installs to: the
// configured drive when set, the first disk of the device mounted at /boot
// otherwise, the first visible disk as a last resort.
func (m *Module) GetBootDrive() (string, error) {
	if m.model == nil {
		return "", model.ErrUnavailableStorage
	}
	if m.drive != "" {
		return m.drive, nil
	}
	if boot, ok := m.model.MountPoints()["/boot"]; ok {
		if disks := m.model.Devicetree.DisksOf(boot); len(disks) > 0 {
			return disks[0], nil
		}
	}
	for _, d := range m.model.Devicetree.Devices {
		if d.Type == "disk" {
			return d.Name, nil
		}
	}
	return "", &model.InvalidStorageError{Reasons: []string{"no disk for the bootloader"}}
}

// ProcessKickstart consumes the bootloader directive.
func (m *Module) ProcessKickstart(data *kickstart.Data) error {
	if !data.Bootloader.Seen {
		return nil
	}
	s := data.Bootloader

	switch {
	case s.Disabled:
		m.mode = ModeDisabled
	default:
		m.mode = ModeEnabled
	}
	if s.ExtLinux {
		m.bootloaderType = TypeExtLinux
	}
	switch s.Location {
	case "mbr":
		m.preferredLocation = LocationMBR
	case "partition":
		m.preferredLocation = LocationPartition
	case "none":
		m.mode = ModeSkipped
	default:
		m.preferredLocation = LocationDefault
	}
	m.drive = s.BootDrive
	m.driveOrder = append([]string(nil), s.DriveOrder...)
	m.keepMBR = s.NoMBR
	m.keepBootOrder = s.LeaveBootOrder
	m.extraArguments = s.AppendLine
	m.timeout = s.Timeout
	m.password = s.Password
	m.passwordCrypted = s.IsCrypted

	return m.validate()
}

// SetupKickstart writes the directive back into the handler.
func (m *Module) SetupKickstart(data *kickstart.Data) {
	s := &data.Bootloader
	s.Seen = true
	s.Disabled = m.mode == ModeDisabled
	s.ExtLinux = m.bootloaderType == TypeExtLinux
	switch {
	case m.mode == ModeSkipped:
		s.Location = "none"
	case m.preferredLocation == LocationMBR:
		s.Location = "mbr"
	case m.preferredLocation == LocationPartition:
		s.Location = "partition"
	default:
		s.Location = ""
	}
	s.BootDrive = m.drive
	s.DriveOrder = append([]string(nil), m.driveOrder...)
	s.NoMBR = m.keepMBR
	s.LeaveBootOrder = m.keepBootOrder
	s.AppendLine = m.extraArguments
	s.Timeout = m.timeout
	s.Password = m.password
	s.IsCrypted = m.passwordCrypted
}

// validate enforces the GRUB2 rules: the first stage cannot go to a
// partition and a crypted password must be a GRUB2 hash.
func (m *Module) validate() error {
	if m.bootloaderType != TypeDefault {
		return nil
	}
	var reasons []string
	if m.preferredLocation == LocationPartition {
		reasons = append(reasons, "GRUB2 does not support installation to a partition")
	}
	if m.passwordCrypted && m.password != "" &&
		!strings.HasPrefix(m.password, grub2PasswordPrefix) {
		reasons = append(reasons, "the GRUB2 password is not valid, use grub2-mkpasswd-pbkdf2")
	}
	if len(reasons) > 0 {
		return &model.InvalidStorageError{Reasons: reasons}
	}
	return nil
}

// CollectRequirements returns the bootloader packages. A disabled
// bootloader or a directory target needs none.
func (m *Module) CollectRequirements() []modules.Requirement {
	if m.mode == ModeDisabled {
		return nil
	}
	if configuration.TargetType() == configuration.TargetDirectory {
		return nil
	}
	if m.bootloaderType == TypeExtLinux {
		return []modules.Requirement{
			modules.ForPackage("extlinux", "Necessary for the extlinux bootloader."),
		}
	}
	return []modules.Requirement{
		modules.ForPackage("grub2", "Necessary for the GRUB2 bootloader."),
		modules.ForPackage("grub2-tools", "Necessary for the GRUB2 bootloader."),
	}
}
