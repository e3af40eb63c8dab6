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

package runners

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carlzhc/anaconda/pkg/task"
)

type fakeTask struct {
	name string
	err  error
	runs *[]string
}

func (t *fakeTask) Name() string {
	return t.name
}

func (t *fakeTask) Run() error {
	*t.runs = append(*t.runs, t.name)
	return t.err
}

func TestTaskRunnerRunsInOrder(t *testing.T) {
	a := assert.New(t)

	var runs []string
	r := NewTaskRunner("install", []task.Plain{
		&fakeTask{name: "first", runs: &runs},
		&fakeTask{name: "second", runs: &runs},
	})

	a.NoError(r.Start(context.Background()))
	a.Equal([]string{"first", "second"}, runs)
}

func TestTaskRunnerStopsAtFirstFailure(t *testing.T) {
	a := assert.New(t)

	var runs []string
	boom := errors.New("boom")
	r := NewTaskRunner("install", []task.Plain{
		&fakeTask{name: "first", runs: &runs, err: boom},
		&fakeTask{name: "second", runs: &runs},
	})

	err := r.Start(context.Background())
	a.ErrorIs(err, boom)
	a.Equal([]string{"first"}, runs)
}

func TestTaskRunnerHonorsCancelledContext(t *testing.T) {
	a := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var runs []string
	r := NewTaskRunner("install", []task.Plain{
		&fakeTask{name: "first", runs: &runs},
	})

	a.ErrorIs(r.Start(ctx), context.Canceled)
	a.Empty(runs)
}
