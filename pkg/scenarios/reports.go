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

//nolint:revive,staticcheck // dot imports are standard for Gomega matchers
package scenarios

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	. "github.com/onsi/gomega"
	"github.com/spjmurray/go-util/pkg/set"

	"k8s.io/utils/ptr"

	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

// reportAttachment is uploaded as evidence with every report.
const reportAttachment = "This is a test report attachment file."

// loadBalanceReports is how many reports are filed to observe how they
// are spread across administrators.
const loadBalanceReports = 3

// ReportConversation has the buyer report their conversation with the
// seller, attaching a file, then files further reports to see them spread
// across administrators.
func (s *Suite) ReportConversation() harness.Scenario {
	return harness.Scenario{
		Name:     "Report Conversation",
		Category: CategoryReports,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleBuyer),
			harness.RequireValue(KeyBuyerConversationID),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			buyer := scope.As(harness.RoleBuyer)
			run := scope.Run()

			conversationID, _ := run.Int(KeyBuyerConversationID)

			result, ok := s.report(ctx, buyer, "Report Conversation", marketplace.ReportRequest{
				ConversationID: conversationID,
				Title:          "Test Report " + uniqueSuffix(),
				Description:    "Testing report system",
			})
			if !ok {
				return
			}

			run.SetInt(KeyReportConversationID, result.AdminConversation.DisputeID)
			run.Set(KeyReportAdmin, result.AssignedAdmin.Username)

			buyer.Expect("Report Admin Assigned", result.AssignedAdmin.Username, Not(BeEmpty()), "admin conversation %d assigned to %s", result.AdminConversation.DisputeID, result.AssignedAdmin.Username)

			assigned := []string{result.AssignedAdmin.Username}

			for i := 2; i <= loadBalanceReports; i++ {
				name := fmt.Sprintf("Load Balance Report %d", i)

				result, ok := s.report(ctx, buyer, name, marketplace.ReportRequest{
					ConversationID: conversationID,
					Title:          fmt.Sprintf("Load Balance Test Report %d %s", i, uniqueSuffix()),
					Description:    fmt.Sprintf("Testing load balancing - report %d", i),
				})
				if ok {
					assigned = append(assigned, result.AssignedAdmin.Username)
				}
			}

			var distinct []string

			for name := range set.New[string](assigned...).All() {
				distinct = append(distinct, name)
			}

			slices.Sort(distinct)

			// A single administrator is acceptable, it takes every report.
			buyer.Expect("Load Balancing Verification", assigned, SatisfyAll(HaveLen(loadBalanceReports), HaveEach(Not(BeEmpty()))), "%d reports distributed among %d administrators: %s", len(assigned), len(distinct), strings.Join(distinct, ", "))
		},
	}
}

// report files a report with an attachment as evidence.
func (s *Suite) report(ctx context.Context, scope *harness.Scope, name string, request marketplace.ReportRequest) (marketplace.ReportResult, bool) {
	ok, payload := scope.Request(ctx, harness.Request{
		Name:   name,
		Method: http.MethodPost,
		Path:   s.endpoints.ReportConversation(),
		Body:   request,
		Files: []harness.File{
			{
				Field:       marketplace.AttachmentField,
				Name:        "test_report.txt",
				ContentType: "text/plain",
				Content:     []byte(reportAttachment),
			},
		},
		ExpectedStatus: http.StatusOK,
	})
	if !ok {
		return marketplace.ReportResult{}, false
	}

	result, ok := data[marketplace.ReportResult](scope, name, payload)
	if !ok {
		return marketplace.ReportResult{}, false
	}

	return result, true
}

// AdminWorkload checks reports are spread across administrators and that
// an administrator can resolve the reported conversation.
func (s *Suite) AdminWorkload() harness.Scenario {
	return harness.Scenario{
		Name:     "Admin Workload",
		Category: CategoryReports,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleAdmin),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			admin := scope.As(harness.RoleAdmin)
			run := scope.Run()

			ok, payload := admin.Request(ctx, harness.Request{
				Name:           "Admin Workload",
				Method:         http.MethodGet,
				Path:           s.endpoints.AdminWorkload(),
				ExpectedStatus: http.StatusOK,
			})
			if ok {
				s.checkWorkload(admin, run, payload)
			}

			conversationID, ok := run.Int(KeyReportConversationID)
			if !ok {
				return
			}

			ok, payload = admin.Request(ctx, harness.Request{
				Name:   "Resolve Reported Conversation",
				Method: http.MethodPatch,
				Path:   s.endpoints.ManageConversation(conversationID),
				Body: marketplace.ManageRequest{
					Action:    marketplace.ActionResolve,
					AdminNote: ptr.To("Resolved by the automated suite"),
				},
				ExpectedStatus: http.StatusOK,
			})
			if !ok {
				return
			}

			if conversation, ok := data[marketplace.Conversation](admin, "Resolve Reported Conversation", payload); ok {
				admin.Expect("Reported Conversation Resolved", conversation, SatisfyAll(
					HaveField("IsResolved", BeTrue()),
					HaveField("Status", Equal(marketplace.StatusResolved)),
				), "conversation %d %s", conversation.DisputeID, conversation.Status)
			}
		},
	}
}

func (s *Suite) checkWorkload(admin *harness.Scope, run *harness.RunContext, payload harness.Payload) {
	workload, ok := items[marketplace.AdminWorkload](admin, "Admin Workload", payload)
	if !ok || !admin.Expect("Administrators Listed", workload, Not(BeEmpty()), "%d administrators", len(workload)) {
		return
	}

	names := make([]string, len(workload))

	var reports int

	for i := range workload {
		names[i] = workload[i].Username
		reports += workload[i].ActiveReports
	}

	var distinct []string

	for name := range set.New[string](names...).All() {
		distinct = append(distinct, name)
	}

	admin.Expect("Administrators Distinct", len(distinct), Equal(len(names)), "%d active reports across %d administrators", reports, len(distinct))

	if assigned, ok := run.Value(KeyReportAdmin); ok {
		admin.Expect("Assigned Admin Listed", names, ContainElement(assigned), "%s carries the report", assigned)
	}
}
