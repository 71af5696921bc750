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

// Package scenarios contains the ordered end-to-end checks of the
// marketplace API.  Scenarios share state through the run context: early
// scenarios log in and capture IDs that later ones build on, and a
// scenario whose inputs were never captured is skipped.
package scenarios

import (
	"github.com/epasar/marketplace-e2e/pkg/config"
	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

// Categories group results in the summary.
const (
	CategoryCatalog         harness.Category = "catalog"
	CategoryAuth            harness.Category = "auth"
	CategoryAI              harness.Category = "ai"
	CategoryViews           harness.Category = "views"
	CategoryRecommendations harness.Category = "recommendations"
	CategoryCommunication   harness.Category = "communication"
	CategoryReports         harness.Category = "reports"
)

// Values captured for later scenarios.
const (
	KeyProductID            harness.Key = "productID"
	KeySellerID             harness.Key = "sellerID"
	KeyCategoryID           harness.Key = "categoryID"
	KeyConversationID       harness.Key = "conversationID"
	KeyBuyerConversationID  harness.Key = "buyerConversationID"
	KeyReportConversationID harness.Key = "reportConversationID"
	KeyReportAdmin          harness.Key = "reportAdmin"
)

// Suite builds scenarios.
type Suite struct {
	accounts  config.Accounts
	endpoints *marketplace.Endpoints
}

// New returns a suite logging in with the given accounts.
func New(accounts config.Accounts) *Suite {
	return &Suite{
		accounts:  accounts,
		endpoints: marketplace.NewEndpoints(),
	}
}

// All returns every scenario in execution order.
func (s *Suite) All() []harness.Scenario {
	return []harness.Scenario{
		s.PublicCatalog(),
		s.Authentication(),
		s.CategorySuggestion(),
		s.ImageGeneration(),
		s.ProductViews(),
		s.Recommendations(),
		s.ShoppingBasics(),
		s.UserSearch(),
		s.Conversations(),
		s.ContactSeller(),
		s.ContactAdmin(),
		s.ReportConversation(),
		s.AdminWorkload(),
	}
}
