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

	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/signal"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils"
)

// MountPointRequest declares the desired use of one device. DeviceSpec is a
// specifier (name or path), not a resolved device; it must resolve to
// exactly one device at apply time.
type MountPointRequest struct {
	MountPoint    string
	DeviceSpec    string
	Reformat      bool
	FormatType    string
	FormatOptions string
	MountOptions  string
}

// Manual is the mount-point assignment strategy.
type Manual struct {
	Base

	enabled  bool
	requests []MountPointRequest

	// EnabledChangedSignal fires with the new value.
	EnabledChangedSignal signal.Signal[bool]
	// RequestsChangedSignal fires after the request list is replaced.
	RequestsChangedSignal signal.Notifier
}

// NewManual returns a manual partitioning strategy.
func NewManual() *Manual {
	return &Manual{Base: newBase(MethodManual)}
}

// Enabled reports whether manual partitioning was requested.
func (p *Manual) Enabled() bool {
	return p.enabled
}

// SetEnabled stores the flag and notifies listeners.
func (p *Manual) SetEnabled(enabled bool) {
	if p.enabled == enabled {
		return
	}
	p.enabled = enabled
	p.EnabledChangedSignal.Emit(enabled)
}

// Requests returns the declared requests.
func (p *Manual) Requests() []MountPointRequest {
	return p.requests
}

// SetRequests replaces the request list and notifies listeners.
func (p *Manual) SetRequests(requests []MountPointRequest) {
	p.requests = append([]MountPointRequest(nil), requests...)
	p.RequestsChangedSignal.Emit()
}

// ProcessKickstart consumes the mount section.
func (p *Manual) ProcessKickstart(data *kickstart.Data) error {
	if !data.Mount.Seen {
		return nil
	}
	var requests []MountPointRequest
	for _, m := range data.Mount.MountPoints {
		requests = append(requests, MountPointRequest{
			MountPoint:    m.MountPoint,
			DeviceSpec:    m.Device,
			Reformat:      m.Reformat,
			FormatType:    m.Format,
			FormatOptions: m.MkfsOpts,
			MountOptions:  m.MountOpts,
		})
	}
	p.SetRequests(requests)
	p.SetEnabled(true)
	return nil
}

// SetupKickstart writes the requests back into the handler.
func (p *Manual) SetupKickstart(data *kickstart.Data) {
	if !p.enabled {
		return
	}
	data.Mount.Seen = true
	data.Mount.MountPoints = nil
	for _, r := range p.requests {
		data.Mount.MountPoints = append(data.Mount.MountPoints, kickstart.MountData{
			MountPoint: r.MountPoint,
			Device:     r.DeviceSpec,
			Reformat:   r.Reformat,
			Format:     r.FormatType,
			MkfsOpts:   r.FormatOptions,
			MountOpts:  r.MountOptions,
		})
	}
}

// GatherRequests returns one request per usable leaf device: a declared
// request where one matches, a synthesized default otherwise. Each declared
// request matches at most one device.
func (p *Manual) GatherRequests() []MountPointRequest {
	tree := p.model.Devicetree
	pool := append([]MountPointRequest(nil), p.requests...)

	var gathered []MountPointRequest
	for _, d := range tree.Leaves() {
		if d.Protected || d.Size == 0 {
			continue
		}
		if len(p.selectedDisks) > 0 && !utils.SubsetOf(tree.DisksOf(d), p.selectedDisks) {
			continue
		}

		matched := -1
		for i, r := range pool {
			if tree.ResolveDevice(r.DeviceSpec) == d {
				matched = i
				break
			}
		}
		if matched >= 0 {
			gathered = append(gathered, pool[matched])
			pool = append(pool[:matched], pool[matched+1:]...)
			continue
		}

		gathered = append(gathered, MountPointRequest{
			MountPoint: d.Format.Mountpoint,
			DeviceSpec: d.Name,
			Reformat:   false,
			FormatType: d.Format.Type,
		})
	}
	return gathered
}

// ManualConfigureTask schedules the actions of the declared requests on the
// scratch model.
type ManualConfigureTask struct {
	task.Base
	strategy *Manual
}

// ConfigureWithTask builds the configuration task.
func (p *Manual) ConfigureWithTask() task.Plain {
	return &ManualConfigureTask{strategy: p}
}

// Name returns the task name.
func (t *ManualConfigureTask) Name() string {
	return "Configure the mount points"
}

// Run translates every request into scheduled actions.
func (t *ManualConfigureTask) Run() error {
	_, err := task.Execute(t.Name(), &t.Base, func() (struct{}, error) {
		p := t.strategy
		key := string(p.Method())
		if !configureLocks.TryAcquire(key) {
			return struct{}{}, fmt.Errorf("a configuration of %s partitioning is already running", p.Method())
		}
		defer configureLocks.Release(key)

		m := p.model
		for _, r := range p.requests {
			d := m.Devicetree.ResolveDevice(r.DeviceSpec)
			if d == nil {
				return struct{}{}, &model.InvalidStorageError{
					Reasons: []string{fmt.Sprintf("device %q does not exist", r.DeviceSpec)},
				}
			}

			if r.Reformat {
				format := r.FormatType
				if format == "" {
					format = m.DefaultFSType
				}
				m.ScheduleAction(&model.Action{
					Kind:   model.ActionCreateFormat,
					Device: d.Name,
					Format: model.Format{
						Type:       format,
						Mountpoint: r.MountPoint,
						Options:    r.FormatOptions,
					},
				})
				continue
			}
			if r.MountPoint != "" {
				m.ScheduleAction(&model.Action{
					Kind:   model.ActionSetMountpoint,
					Device: d.Name,
					Format: model.Format{
						Mountpoint: r.MountPoint,
						Options:    r.MountOptions,
					},
				})
			}
		}
		return struct{}{}, nil
	})
	return err
}

// ValidateWithTask builds the validation task over the scratch model.
func (p *Manual) ValidateWithTask() *ValidationTask {
	return NewValidationTask(p.model)
}
