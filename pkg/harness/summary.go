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
	"strings"
)

// PrintSummary writes the final tally.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))

	if !s.HasRun() {
		fmt.Fprintln(w, "📊 Test Results: no tests run")
	} else {
		fmt.Fprintf(w, "📊 Test Results: %d/%d tests passed\n", s.Passed, s.Total)
		fmt.Fprintf(w, "✅ Success Rate: %.1f%%\n", s.SuccessRate)
	}

	if s.Skipped > 0 {
		fmt.Fprintf(w, "⏭️ Skipped: %d\n", s.Skipped)
	}

	if len(s.Failures) > 0 {
		fmt.Fprintln(w, "\n❌ Failed Tests:")

		for _, r := range s.Failures {
			fmt.Fprintf(w, "   - %s: %s\n", r.Name, r.Message)
		}
	}

	if len(s.ContractViolations) > 0 {
		fmt.Fprintln(w, "\n⚠️ Contract Violations:")

		for _, r := range s.ContractViolations {
			fmt.Fprintf(w, "   - %s: %s\n", r.Name, strings.Join(r.ContractErrors, "; "))
		}
	}

	if len(s.Categories) > 0 {
		fmt.Fprintln(w, "\n📂 By Category:")

		for _, c := range s.Categories {
			line := fmt.Sprintf("   %s: %d/%d passed", categoryName(c.Category), c.Passed, c.Total)
			if c.Skipped > 0 {
				line += fmt.Sprintf(" (%d skipped)", c.Skipped)
			}

			fmt.Fprintln(w, line)
		}
	}
}

func categoryName(c Category) string {
	if c == "" {
		return "uncategorized"
	}

	return string(c)
}
