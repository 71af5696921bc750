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
	"io"
	"slices"
)

// RawResponseKey holds the response text when a body is not a JSON object.
const RawResponseKey = "raw_response"

// Payload is a decoded response body.
type Payload map[string]any

// Category groups results for reporting.
type Category string

// Outcome is the verdict on a single test.
type Outcome int

const (
	Failed Outcome = iota
	Passed
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// TestResult is one recorded outcome.
type TestResult struct {
	Name     string
	Category Category
	Outcome  Outcome
	Message  string
	Payload  Payload

	// ContractErrors lists ways the response deviated from the API
	// contract.  They are informational and do not affect the outcome.
	ContractErrors []string
}

// ResultLog accumulates outcomes in execution order.
type ResultLog struct {
	out     io.Writer
	style   style
	total   int
	passed  int
	skipped int
	results []TestResult
}

// NewResultLog creates a log that echoes every outcome to out.  A nil
// writer discards the transcript.
func NewResultLog(out io.Writer, color bool) *ResultLog {
	if out == nil {
		out = io.Discard
	}

	return &ResultLog{
		out:   out,
		style: style{color: color},
	}
}

// Record appends a pass or fail.  It always counts towards the total.
func (l *ResultLog) Record(result TestResult) {
	if result.Outcome == Skipped {
		l.Skip(result.Name, result.Category, result.Message)
		return
	}

	l.total++

	if result.Outcome == Passed {
		l.passed++
	}

	l.results = append(l.results, result)

	fmt.Fprintln(l.out, l.style.line(result))
}

// Skip appends a result for a test that was never attempted.  Skips are
// tallied separately and do not count towards the total.
func (l *ResultLog) Skip(name string, category Category, reason string) {
	result := TestResult{
		Name:     name,
		Category: category,
		Outcome:  Skipped,
		Message:  reason,
	}

	l.skipped++
	l.results = append(l.results, result)

	fmt.Fprintln(l.out, l.style.line(result))
}

// Section writes a heading to the transcript.
func (l *ResultLog) Section(title string) {
	fmt.Fprintf(l.out, "\n%s\n", l.style.heading("🔍 "+title+"..."))
}

// Results returns a copy of everything recorded so far.
func (l *ResultLog) Results() []TestResult {
	return slices.Clone(l.results)
}

// CategorySummary is the tally for one category.
type CategorySummary struct {
	Category Category
	Total    int
	Passed   int
	Skipped  int
}

// Summary is a snapshot of the log.
type Summary struct {
	Total   int
	Passed  int
	Skipped int

	// SuccessRate is a percentage, zero when nothing ran.
	SuccessRate float64

	// Failures are the failed results in execution order.
	Failures []TestResult

	// ContractViolations are results whose responses broke the contract.
	ContractViolations []TestResult

	// Categories are ordered by first appearance.
	Categories []CategorySummary
}

// HasRun is true when at least one test was attempted.
func (s Summary) HasRun() bool {
	return s.Total > 0
}

// OK is true when tests ran and every one of them passed.
func (s Summary) OK() bool {
	return s.HasRun() && s.Passed == s.Total
}

// Summary computes totals and breakdowns.
func (l *ResultLog) Summary() Summary {
	s := Summary{
		Total:   l.total,
		Passed:  l.passed,
		Skipped: l.skipped,
	}

	if s.Total > 0 {
		s.SuccessRate = float64(s.Passed) / float64(s.Total) * 100
	}

	index := map[Category]int{}

	for _, result := range l.results {
		i, ok := index[result.Category]
		if !ok {
			i = len(s.Categories)
			index[result.Category] = i

			s.Categories = append(s.Categories, CategorySummary{Category: result.Category})
		}

		c := &s.Categories[i]

		switch result.Outcome {
		case Passed:
			c.Total++
			c.Passed++
		case Failed:
			c.Total++

			s.Failures = append(s.Failures, result)
		case Skipped:
			c.Skipped++
		}

		if len(result.ContractErrors) > 0 {
			s.ContractViolations = append(s.ContractViolations, result)
		}
	}

	return s
}
