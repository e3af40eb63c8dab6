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

// Package runners executes the task sequences the modules produce. The
// modules only sequence tasks; a runner owns execution timing.
package runners

import (
	"context"
	"fmt"

	"github.com/carlzhc/anaconda/pkg/task"
	"github.com/carlzhc/anaconda/utils/log"
)

// Runnable is one long-lived or one-shot runner.
type Runnable interface {
	Start(ctx context.Context) error
}

// TaskRunner runs a task sequence in order, stopping at the first failure.
type TaskRunner struct {
	name  string
	tasks []task.Plain
}

// NewTaskRunner returns a runner over the sequence.
func NewTaskRunner(name string, tasks []task.Plain) *TaskRunner {
	return &TaskRunner{name: name, tasks: tasks}
}

// Start runs the sequence. The context is checked between tasks; a running
// task is never interrupted.
func (r *TaskRunner) Start(ctx context.Context) error {
	for _, t := range r.tasks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		log.Infof("%s: running task %q", r.name, t.Name())
		if err := t.Run(); err != nil {
			return fmt.Errorf("%s: task %q: %w", r.name, t.Name(), err)
		}
	}
	log.Infof("%s: %d tasks finished", r.name, len(r.tasks))
	return nil
}
