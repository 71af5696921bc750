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

//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/epasar/marketplace-e2e/pkg/config"
	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/test/api"
)

var _ = Describe("Run Reporting", func() {
	Context("When a run completes", func() {
		var summary harness.Summary

		BeforeEach(func() {
			run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
			Expect(err).NotTo(HaveOccurred())

			summary, err = run.Execute(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		Describe("Given a terminal", func() {
			It("should print the tally", func() {
				out := &bytes.Buffer{}
				harness.PrintSummary(out, summary)

				Expect(out.String()).To(SatisfyAll(
					ContainSubstring(fmt.Sprintf("📊 Test Results: %d/%d tests passed", summary.Total, summary.Total)),
					ContainSubstring("✅ Success Rate: 100.0%"),
					ContainSubstring("📂 By Category:"),
					Not(ContainSubstring("Failed Tests")),
				))
			})
		})

		Describe("Given a metrics file", func() {
			It("should write Prometheus metrics", func() {
				path := filepath.Join(GinkgoT().TempDir(), "e2e.prom")

				Expect(harness.WriteMetrics(path, summary)).To(Succeed())

				data, err := os.ReadFile(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(SatisfyAll(
					ContainSubstring("epasar_e2e_success_ratio 1"),
					ContainSubstring(`epasar_e2e_tests{category="communication",outcome="failed"} 0`),
				))
			})
		})
	})
})

var _ = Describe("Scenario Selection", func() {
	Context("When scenarios are named", func() {
		Describe("Given known names", func() {
			It("should run only those scenarios", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx, "User Search", "Authentication")
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.OK()).To(BeTrue())
				Expect(run.Transcript.String()).NotTo(ContainSubstring("🔍 Public Catalog..."))
				Expect(run.Transcript.String()).To(MatchRegexp(`(?s)🔍 Authentication\.\.\..*🔍 User Search\.\.\.`))
			})
		})

		Describe("Given an unknown name", func() {
			It("should refuse to run", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				_, err = run.Execute(ctx, "Checkout")
				Expect(err).To(MatchError(harness.ErrUnknownScenario))
				Expect(run.Log.Results()).To(BeEmpty())
			})
		})
	})
})
