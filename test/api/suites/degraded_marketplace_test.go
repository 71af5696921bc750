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
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/epasar/marketplace-e2e/pkg/config"
	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
	"github.com/epasar/marketplace-e2e/test/api"
)

func skippedNames(run *api.Run) []string {
	var names []string

	for _, result := range run.Log.Results() {
		if result.Outcome == harness.Skipped {
			names = append(names, result.Name)
		}
	}

	return names
}

var _ = Describe("Degraded Marketplace", func() {
	endpoints := marketplace.NewEndpoints()

	Context("When logins fail", func() {
		BeforeEach(func() {
			service.SetFault(http.MethodPost, endpoints.Login(), http.StatusInternalServerError)
		})

		Describe("Given scenarios that need a session", func() {
			It("should skip them rather than fail them", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx)
				Expect(err).NotTo(HaveOccurred())

				Expect(summary.OK()).To(BeFalse())
				Expect(summary.Skipped).To(Equal(10))
				Expect(skippedNames(run)).NotTo(ContainElement("Public Catalog"))
				Expect(skippedNames(run)).NotTo(ContainElement("Product Views"))
			})

			It("should report each failed login", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx, "Authentication")
				Expect(err).NotTo(HaveOccurred())

				Expect(summary.Failures).To(HaveLen(4))
				Expect(summary.Failures).To(ContainElements(
					HaveField("Name", Equal("Seller Login")),
					HaveField("Name", Equal("Buyer Login")),
					HaveField("Name", Equal("Admin Login")),
					HaveField("Name", Equal("Login Invalid Password")),
				))
				Expect(summary.Failures).To(HaveEach(HaveField("Message", HavePrefix("expected "))))
			})
		})

		Describe("Given the fault is cleared", func() {
			It("should recover", func() {
				service.ClearFaults()

				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx, "Authentication")
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.OK()).To(BeTrue())
			})
		})
	})

	Context("When the product listing is unavailable", func() {
		BeforeEach(func() {
			service.SetFault(http.MethodGet, endpoints.ListProducts(), http.StatusServiceUnavailable)
		})

		Describe("Given scenarios that need a captured product", func() {
			It("should skip them", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx)
				Expect(err).NotTo(HaveOccurred())

				Expect(summary.Failures).To(HaveLen(1))
				Expect(summary.Failures[0].Name).To(Equal("List Products"))
				Expect(summary.Failures[0].Message).To(HavePrefix("expected 200, got 503. Response: "))

				Expect(skippedNames(run)).To(Equal([]string{
					"Product Views",
					"Recommendations",
					"Contact Seller",
					"Report Conversation",
				}))
			})

			It("should flag the undocumented status", func() {
				run, err := api.NewRun(service.BaseURL, config.DefaultAccounts(), true)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx, "Public Catalog")
				Expect(err).NotTo(HaveOccurred())

				Expect(summary.ContractViolations).To(ContainElement(HaveField("Name", Equal("List Products"))))
			})
		})
	})

	Context("When the marketplace is unreachable", func() {
		Describe("Given any scenario", func() {
			It("should record transport failures without aborting", func() {
				run, err := api.NewRun(api.UnreachableURL(), config.DefaultAccounts(), false)
				Expect(err).NotTo(HaveOccurred())

				summary, err := run.Execute(ctx)
				Expect(err).NotTo(HaveOccurred())

				Expect(summary.HasRun()).To(BeTrue())
				Expect(summary.Passed).To(BeZero())
				Expect(summary.Failures).To(HaveEach(HaveField("Message", HavePrefix("request failed: "))))
				Expect(summary.Skipped).To(Equal(11))
			})
		})
	})
})
