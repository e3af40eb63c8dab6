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

// Package storage implements the storage orchestrator: one canonical model,
// a fixed set of sub-modules observing it, and the partitioning strategies
// promoting their scratch models through a two-phase commit.
package storage

import (
	"errors"
	"sync"

	"github.com/carlzhc/anaconda/pkg/kickstart"
	"github.com/carlzhc/anaconda/pkg/modules"
	"github.com/carlzhc/anaconda/pkg/signal"
	"github.com/carlzhc/anaconda/pkg/storage/bootloader"
	"github.com/carlzhc/anaconda/pkg/storage/checker"
	"github.com/carlzhc/anaconda/pkg/storage/devicetree"
	"github.com/carlzhc/anaconda/pkg/storage/diskinit"
	"github.com/carlzhc/anaconda/pkg/storage/diskselect"
	"github.com/carlzhc/anaconda/pkg/storage/model"
	"github.com/carlzhc/anaconda/pkg/storage/partitioning"
	"github.com/carlzhc/anaconda/pkg/storage/snapshot"
	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils/log"
)

// subModule is the contract the orchestrator needs from its sub-modules.
type subModule interface {
	Name() string
	ProcessKickstart(data *kickstart.Data) error
	SetupKickstart(data *kickstart.Data)
	CollectRequirements() []modules.Requirement
	OnStorageChanged(storage *model.Model)
}

// Module is the storage orchestrator.
type Module struct {
	mu      sync.RWMutex
	model   *model.Model
	scanner model.Scanner

	Checker            *checker.Module
	DeviceTree         *devicetree.Module
	DiskInitialization *diskinit.Module
	DiskSelection      *diskselect.Module
	Snapshot           *snapshot.Module
	Bootloader         *bootloader.Module

	// Fixed fan-out order of configuration processing.
	submodules []subModule

	strategies []partitioning.Strategy

	// StorageChangedSignal fires with the new canonical model after every
	// swap.
	StorageChangedSignal signal.Signal[*model.Model]
}

// NewModule returns a storage orchestrator scanning with the given scanner.
func NewModule(scanner model.Scanner) *Module {
	s := &Module{
		scanner:            scanner,
		Checker:            checker.NewModule(),
		DeviceTree:         devicetree.NewModule(),
		DiskInitialization: diskinit.NewModule(),
		DiskSelection:      diskselect.NewModule(),
		Snapshot:           snapshot.NewModule(),
		Bootloader:         bootloader.NewModule(),
	}
	s.submodules = []subModule{
		s.Checker,
		s.DeviceTree,
		s.DiskInitialization,
		s.DiskSelection,
		s.Snapshot,
		s.Bootloader,
	}

	s.StorageChangedSignal.Connect(func(m *model.Model) {
		for _, sub := range s.submodules {
			sub.OnStorageChanged(m)
		}
	})
	return s
}

// Name returns the module name.
func (s *Module) Name() string {
	return "STORAGE"
}

// Model returns the canonical storage model, creating it lazily.
func (s *Module) Model() *model.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		s.model = model.New()
	}
	return s.model
}

// setModel swaps the canonical model and notifies every observer.
func (s *Module) setModel(m *model.Model) {
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
	s.StorageChangedSignal.Emit(m)
}

// CreatePartitioning returns a new strategy instance seeded with the
// current canonical model and disk selection, subscribed to future changes
// of both.
func (s *Module) CreatePartitioning(method partitioning.Method) (partitioning.Strategy, error) {
	strategy, err := partitioning.NewPartitioning(method)
	if err != nil {
		return nil, err
	}

	strategy.OnStorageReset(s.Model())
	strategy.OnSelectedDisksChanged(s.DiskSelection.SelectedDisks())

	s.StorageChangedSignal.Connect(strategy.OnStorageReset)
	s.DiskSelection.SelectedDisksChangedSignal.Connect(strategy.OnSelectedDisksChanged)

	s.strategies = append(s.strategies, strategy)
	return strategy, nil
}

// ApplyPartitioning validates the strategy's scratch model against the
// structural checks and the checker policy, then promotes a copy of it to
// canonical. A validation failure is returned as *model.InvalidStorageError
// and leaves the canonical model untouched.
func (s *Module) ApplyPartitioning(strategy partitioning.Strategy) error {
	scratch := strategy.Model()

	var reasons []string
	if err := partitioning.Validate(scratch); err != nil {
		var invalid *model.InvalidStorageError
		if !errors.As(err, &invalid) {
			return err
		}
		reasons = append(reasons, invalid.Reasons...)
	}
	reasons = append(reasons, s.Checker.Check(scratch)...)
	if len(reasons) > 0 {
		return &model.InvalidStorageError{Reasons: reasons}
	}

	log.Infof("applying %s partitioning", strategy.Method())
	s.setModel(scratch.Copy())
	return nil
}

// Partitioning returns the most recently created strategy of the method, or
// nil when none exists.
func (s *Module) Partitioning(method partitioning.Method) partitioning.Strategy {
	for i := len(s.strategies) - 1; i >= 0; i-- {
		if s.strategies[i].Method() == method {
			return s.strategies[i]
		}
	}
	return nil
}

// ProcessKickstart fans the configuration out to every sub-module in
// registration order and creates the strategies the directives ask for.
func (s *Module) ProcessKickstart(data *kickstart.Data) error {
	for _, sub := range s.submodules {
		if err := sub.ProcessKickstart(data); err != nil {
			return err
		}
	}

	var requested []partitioning.Method
	if data.AutoPart.Seen && data.AutoPart.AutoPart {
		requested = append(requested, partitioning.MethodAutomatic)
	}
	if data.Mount.Seen {
		requested = append(requested, partitioning.MethodManual)
	}
	if data.ReqPart.Seen {
		requested = append(requested, partitioning.MethodCustom)
	}
	for _, method := range requested {
		strategy, err := s.CreatePartitioning(method)
		if err != nil {
			return err
		}
		if err := strategy.ProcessKickstart(data); err != nil {
			return err
		}
	}
	return nil
}

// SetupKickstart writes the configuration of every sub-module and strategy
// back into the handler.
func (s *Module) SetupKickstart(data *kickstart.Data) {
	for _, sub := range s.submodules {
		sub.SetupKickstart(data)
	}
	for _, strategy := range s.strategies {
		strategy.SetupKickstart(data)
	}
}

// CollectRequirements aggregates the requirements of every sub-module,
// union by append.
func (s *Module) CollectRequirements() []modules.Requirement {
	var reqs []modules.Requirement
	for _, sub := range s.submodules {
		reqs = append(reqs, sub.CollectRequirements()...)
	}
	return reqs
}

// InstallWithTasks returns the fixed installation sequence. The caller owns
// execution.
func (s *Module) InstallWithTasks() []task.Plain {
	return []task.Plain{
		s.ActivateFilesystemsWithTask(),
		s.MountFilesystemsWithTask(),
		s.WriteConfigurationWithTask(),
	}
}

// TeardownWithTasks returns the fixed teardown sequence.
func (s *Module) TeardownWithTasks() []task.Plain {
	return []task.Plain{
		s.UnmountFilesystemsWithTask(),
		s.TeardownDiskImagesWithTask(),
	}
}
