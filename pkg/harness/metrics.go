/*
Copyright 2026 the E-Pasar Authors.

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

package harness

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteMetrics writes the summary in Prometheus text format, suitable for
// the node exporter textfile collector.
func WriteMetrics(path string, s Summary) error {
	registry := prometheus.NewRegistry()

	tests := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "epasar_e2e",
		Name:      "tests",
		Help:      "Number of tests by category and outcome in the last run.",
	}, []string{"category", "outcome"})

	successRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "epasar_e2e",
		Name:      "success_ratio",
		Help:      "Ratio of passed to attempted tests in the last run.",
	})

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "epasar_e2e",
		Name:      "last_run_timestamp_seconds",
		Help:      "When the last run finished.",
	})

	registry.MustRegister(tests, successRatio, lastRun)

	for _, c := range s.Categories {
		category := categoryName(c.Category)

		tests.WithLabelValues(category, Passed.String()).Set(float64(c.Passed))
		tests.WithLabelValues(category, Failed.String()).Set(float64(c.Total - c.Passed))
		tests.WithLabelValues(category, Skipped.String()).Set(float64(c.Skipped))
	}

	successRatio.Set(s.SuccessRate / 100)
	lastRun.SetToCurrentTime()

	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}

	return nil
}
