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
	"net/http"

	. "github.com/onsi/gomega"

	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

// minimumConfidence is the confidence a correct suggestion must exceed.
const minimumConfidence = 50

type suggestionCase struct {
	name        string
	productName string
	description string
	category    int
}

//nolint:gochecknoglobals
var suggestionCases = []suggestionCase{
	{
		name:        "Apple",
		productName: "Fresh Red Apple",
		description: "Crisp and sweet apples picked from the highlands",
		category:    1,
	},
	{
		name:        "Carrot",
		productName: "Organic Carrot",
		description: "Fresh organic carrots grown without pesticides",
		category:    2,
	},
}

// CategorySuggestion checks the AI picks the right category for well
// known produce, and rejects incomplete requests.
func (s *Suite) CategorySuggestion() harness.Scenario {
	return harness.Scenario{
		Name:     "AI Category Suggestion",
		Category: CategoryAI,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleSeller),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			seller := scope.As(harness.RoleSeller)

			for _, c := range suggestionCases {
				name := c.name + " Category Suggestion"

				ok, payload := seller.Request(ctx, harness.Request{
					Name:   name,
					Method: http.MethodPost,
					Path:   s.endpoints.SuggestCategory(),
					Body: marketplace.CategorySuggestionRequest{
						ProductName: c.productName,
						Description: c.description,
					},
					ExpectedStatus: http.StatusOK,
				})
				if !ok {
					continue
				}

				suggestion, ok := data[marketplace.CategorySuggestion](seller, name, payload)
				if !ok {
					continue
				}

				seller.Expect(c.name+" Category Accuracy", suggestion, SatisfyAll(
					HaveField("SuggestedCategory", Equal(c.category)),
					HaveField("Confidence", BeNumerically(">", minimumConfidence)),
				), "suggested %s with %.0f%% confidence", suggestion.CategoryName, suggestion.Confidence)
			}

			seller.Request(ctx, harness.Request{
				Name:   "Category Suggestion Without Name",
				Method: http.MethodPost,
				Path:   s.endpoints.SuggestCategory(),
				Body: marketplace.CategorySuggestionRequest{
					Description: "A product with no name",
				},
				ExpectedStatus: http.StatusBadRequest,
			})
		},
	}
}

// ImageGeneration checks product images can be generated and browsed.
func (s *Suite) ImageGeneration() harness.Scenario {
	return harness.Scenario{
		Name:     "AI Image Generation",
		Category: CategoryAI,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleSeller),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			seller := scope.As(harness.RoleSeller)

			ok, payload := seller.Request(ctx, harness.Request{
				Name:           "Generate Product Image",
				Method:         http.MethodPost,
				Path:           s.endpoints.GenerateImage(),
				Body:           marketplace.NewImageRequest("Organic Carrot").WithCategory("Vegetables").Build(),
				ExpectedStatus: http.StatusOK,
			})
			if ok {
				if image, ok := data[marketplace.GeneratedImage](seller, "Generate Product Image", payload); ok {
					seller.Expect("Generated Image Path", image.ImagePath, Not(BeEmpty()), "saved to %s", image.ImagePath)
				}
			}

			const count = 3

			ok, payload = seller.Request(ctx, harness.Request{
				Name:           "Product Image Options",
				Method:         http.MethodPost,
				Path:           s.endpoints.ImageOptions(),
				Body:           marketplace.NewImageRequest("Fresh Organic Tomatoes").WithCategory("Vegetables").WithCount(count).Build(),
				ExpectedStatus: http.StatusOK,
			})
			if ok {
				if options, ok := items[marketplace.ImageOption](seller, "Product Image Options", payload); ok {
					seller.Expect("Image Options Count", len(options), BeNumerically("<=", count), "%d options", len(options))
				}
			}
		},
	}
}
