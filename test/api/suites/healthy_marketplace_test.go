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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/epasar/marketplace-e2e/pkg/config"
	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/scenarios"
	"github.com/epasar/marketplace-e2e/test/api"
)

var _ = Describe("Healthy Marketplace", func() {
	Context("When running every scenario", func() {
		Describe("Given the seeded accounts", func() {
			It("should pass every test", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), true)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx)
				Expect(err).NotTo(HaveOccurred())

				Expect(summary.Failures).To(BeEmpty())
				Expect(summary.Skipped).To(BeZero())
				Expect(summary.OK()).To(BeTrue())
				Expect(summary.SuccessRate).To(BeNumerically("==", 100))
			})

			It("should honour the API contract", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), true)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx)
				Expect(err).NotTo(HaveOccurred())

				Expect(summary.ContractViolations).To(BeEmpty())
			})

			It("should establish a session for every role", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				_, err = run.Execute(ctx, "Authentication")
				Expect(err).NotTo(HaveOccurred())

				for _, role := range []harness.Role{harness.RoleSeller, harness.RoleBuyer, harness.RoleAdmin} {
					session, ok := run.Session(role)
					Expect(ok).To(BeTrue())
					Expect(session.Token).NotTo(BeEmpty())
					Expect(session.UserID).NotTo(BeZero())
				}
			})

			It("should echo every outcome to the transcript", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				_, err = run.Execute(ctx, "Public Catalog", "Authentication")
				Expect(err).NotTo(HaveOccurred())

				Expect(run.Transcript.String()).To(SatisfyAll(
					ContainSubstring("🔍 Public Catalog..."),
					ContainSubstring("🔍 Authentication..."),
					ContainSubstring("✅ List Products: Status: 200"),
					ContainSubstring("✅ Profile Without Token: Status: 301"),
				))
			})

			It("should group results by category", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx)
				Expect(err).NotTo(HaveOccurred())

				Expect(summary.Categories).To(ContainElement(SatisfyAll(
					HaveField("Category", Equal(scenarios.CategoryReports)),
					HaveField("Total", BeNumerically(">", 0)),
				)))
			})
		})
	})
})
