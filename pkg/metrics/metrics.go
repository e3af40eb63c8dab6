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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace     = "anaconda"
	taskSubSystem = "task"
)

var (
	taskRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: taskSubSystem,
			Name:      "runs_total",
			Help:      "Number of task executions by task name and result.",
		},
		[]string{"task", "result"},
	)
	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: taskSubSystem,
			Name:      "duration_seconds",
			Help:      "Duration of task executions.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"task"},
	)
	storageResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_resets_total",
			Help:      "Number of times the canonical storage model was replaced.",
		},
	)
)

func init() {
	prometheus.MustRegister(taskRuns, taskDuration, storageResets)
}

// ObserveTaskRun records one finished task execution.
func ObserveTaskRun(name string, seconds float64, err error) {
	result := "succeeded"
	if err != nil {
		result = "failed"
	}
	taskRuns.WithLabelValues(name, result).Inc()
	taskDuration.WithLabelValues(name).Observe(seconds)
}

// IncStorageReset records one swap of the canonical storage model.
func IncStorageReset() {
	storageResets.Inc()
}
