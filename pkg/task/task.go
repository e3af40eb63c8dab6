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

// Package task implements the unit of deferred work shared by all modules.
//
// A task runs at most once. Its Run method executes synchronously and may
// block on external calls; retry and timeout policy belong to the caller.
// Cancellation is not supported.
package task

import (
	"errors"
	"sync"
	"time"

	"github.com/carlzhc/anaconda/pkg/metrics"
	"github.com/carlzhc/anaconda/pkg/signal"
)

// Status of a task execution.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ErrAlreadyStarted is returned when Run is invoked a second time.
var ErrAlreadyStarted = errors.New("task has already been started")

// Plain is a task whose result is not consumed by the caller. Installation
// and teardown sequences are lists of plain tasks.
type Plain interface {
	Name() string
	Run() error
}

// Base carries the run-once lifecycle shared by every task. Embed it and
// drive Run through Execute.
type Base struct {
	mu     sync.Mutex
	status Status
	err    error

	// SucceededSignal fires after a successful run, before Run returns.
	SucceededSignal signal.Notifier
	// FailedSignal fires after a failed run, before Run returns.
	FailedSignal signal.Notifier
}

// Status returns the current execution state.
func (b *Base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status == "" {
		return StatusIdle
	}
	return b.status
}

// Err returns the error of a failed run, if any.
func (b *Base) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Base) begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != "" && b.status != StatusIdle {
		return ErrAlreadyStarted
	}
	b.status = StatusRunning
	return nil
}

func (b *Base) finish(err error) {
	b.mu.Lock()
	if err != nil {
		b.status = StatusFailed
		b.err = err
	} else {
		b.status = StatusSucceeded
	}
	b.mu.Unlock()

	if err != nil {
		b.FailedSignal.Emit()
	} else {
		b.SucceededSignal.Emit()
	}
}

// Execute runs fn under the base's run-once gate. It moves the status to
// running, invokes fn, records the outcome and emits the completion signal.
// A second call returns ErrAlreadyStarted without invoking fn.
func Execute[T any](name string, b *Base, fn func() (T, error)) (T, error) {
	var zero T
	if err := b.begin(); err != nil {
		return zero, err
	}

	started := time.Now()
	value, err := fn()
	metrics.ObserveTaskRun(name, time.Since(started).Seconds(), err)

	b.finish(err)
	return value, err
}
