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

// Package configuration loads the installer environment configuration and
// exposes it through package-level accessors. The configuration describes
// the environment the backend runs in, not the installation being performed;
// that belongs to the kickstart data.
package configuration

import (
	"errors"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/carlzhc/anaconda/utils"
	"github.com/carlzhc/anaconda/utils/log"
)

const configPath = "/etc/anaconda/"

const (
	// TargetHardware installs onto the machine's own disks.
	TargetHardware = "hardware"
	// TargetImage installs into disk image files.
	TargetImage = "image"
	// TargetDirectory installs into a plain directory tree.
	TargetDirectory = "directory"
)

type System struct {
	CanConfigureNetwork bool `json:"canConfigureNetwork"`
}

type Target struct {
	Type       string `json:"type"`
	SystemRoot string `json:"systemRoot"`
}

type Storage struct {
	DefaultFSType         string `json:"defaultFstype"`
	AllowImperfectDevices bool   `json:"allowImperfectDevices"`
}

type InstallerConf struct {
	System  System  `json:"system"`
	Target  Target  `json:"target"`
	Storage Storage `json:"storage"`
}

var (
	GlobalConfig *viper.Viper

	mu                 sync.RWMutex
	installerConf      = defaults()
	configModifyNotice []chan<- struct{}
)

func defaults() InstallerConf {
	return InstallerConf{
		System: System{CanConfigureNetwork: true},
		Target: Target{Type: TargetHardware, SystemRoot: utils.DefaultSysroot},
		Storage: Storage{
			DefaultFSType:         "ext4",
			AllowImperfectDevices: false,
		},
	}
}

func init() {
	log.Info("Loading installer configuration ...")
	GlobalConfig = initConfig()
	go dynamicConfig()
}

func initConfig() *viper.Viper {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName("backend")
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		// The installer environment ships without a configuration file in
		// the common case; the defaults apply.
		log.Infof("No installer configuration found, using defaults: %s", err)
		return v
	}

	conf := defaults()
	if err := v.Unmarshal(&conf, decodeOpt); err != nil {
		log.Errorf("Failed to unmarshal the configuration: %s, using defaults", err)
		return v
	}
	if err := validate(conf); err != nil {
		log.Errorf("Failed to validate the configuration: %s, using defaults", err)
		return v
	}

	mu.Lock()
	installerConf = conf
	mu.Unlock()
	return v
}

var decodeOpt = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
))

func validate(conf InstallerConf) error {
	switch conf.Target.Type {
	case TargetHardware, TargetImage, TargetDirectory:
	default:
		return errors.New("unknown target type " + conf.Target.Type)
	}
	if conf.Target.SystemRoot == "" {
		return errors.New("target system root must not be empty")
	}
	return nil
}

func dynamicConfig() {
	GlobalConfig.WatchConfig()
	GlobalConfig.OnConfigChange(func(event fsnotify.Event) {
		log.Infof("Detect config change: %s", event.String())
		conf := defaults()
		if err := GlobalConfig.Unmarshal(&conf, decodeOpt); err != nil {
			log.Errorf("Failed to unmarshal the configuration: %s, ignore this change", err)
			return
		}
		if err := validate(conf); err != nil {
			log.Errorf("Failed to validate the configuration: %s, ignore this change", err)
			return
		}
		mu.Lock()
		installerConf = conf
		mu.Unlock()
		for _, c := range configModifyNotice {
			log.Info("Generates the configuration change event")
			c <- struct{}{}
		}
	})
}

// RegisterListenerChan registers a channel notified on configuration change.
func RegisterListenerChan(c chan<- struct{}) {
	configModifyNotice = append(configModifyNotice, c)
}

// CanConfigureNetwork reports whether the installer environment permits
// changing the network configuration at all. The network initialization
// tasks are no-ops when it is false.
func CanConfigureNetwork() bool {
	mu.RLock()
	defer mu.RUnlock()
	return installerConf.System.CanConfigureNetwork
}

// SetCanConfigureNetwork overrides the network configuration policy. Used by
// boot options and tests.
func SetCanConfigureNetwork(v bool) {
	mu.Lock()
	defer mu.Unlock()
	installerConf.System.CanConfigureNetwork = v
}

// TargetType returns the kind of the installation target.
func TargetType() string {
	mu.RLock()
	defer mu.RUnlock()
	return installerConf.Target.Type
}

// SetTargetType overrides the installation target kind.
func SetTargetType(t string) {
	mu.Lock()
	defer mu.Unlock()
	installerConf.Target.Type = t
}

// SystemRoot returns the mount point of the installed system.
func SystemRoot() string {
	mu.RLock()
	defer mu.RUnlock()
	return installerConf.Target.SystemRoot
}

// DefaultFSType returns the filesystem type used when nothing is requested.
func DefaultFSType() string {
	mu.RLock()
	defer mu.RUnlock()
	return installerConf.Storage.DefaultFSType
}

// AllowImperfectDevices reports whether devices with detection problems may
// be used for installation.
func AllowImperfectDevices() bool {
	mu.RLock()
	defer mu.RUnlock()
	return installerConf.Storage.AllowImperfectDevices
}
