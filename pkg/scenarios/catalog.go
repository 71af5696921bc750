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
	"strconv"

	. "github.com/onsi/gomega"

	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

// expectedCategories are seeded into every marketplace database.
//
//nolint:gochecknoglobals
var expectedCategories = []string{"Fruits", "Vegetables", "Seeds", "Spices"}

// PublicCatalog browses the catalog anonymously and captures a product,
// its seller and its category for later scenarios.
func (s *Suite) PublicCatalog() harness.Scenario {
	return harness.Scenario{
		Name:     "Public Catalog",
		Category: CategoryCatalog,
		Run: func(ctx context.Context, scope *harness.Scope) {
			public := scope.Anonymous()

			s.listProducts(ctx, public)

			ok, payload := public.Request(ctx, harness.Request{
				Name:           "List Categories",
				Method:         http.MethodGet,
				Path:           s.endpoints.ListCategories(),
				ExpectedStatus: http.StatusOK,
			})
			if ok {
				if categories, ok := items[marketplace.Category](public, "List Categories", payload); ok {
					s.checkCategories(ctx, public, categories)
				}
			}

			ok, payload = public.Request(ctx, harness.Request{
				Name:           "Categories Info",
				Method:         http.MethodGet,
				Path:           s.endpoints.CategoriesInfo(),
				ExpectedStatus: http.StatusOK,
			})
			if ok {
				if info, ok := items[marketplace.CategoryInfo](public, "Categories Info", payload); ok {
					public.Expect("Category Keywords", info, SatisfyAll(Not(BeEmpty()), HaveEach(HaveField("Keywords", Not(BeEmpty())))), "%d categories with keywords", len(info))
				}
			}
		},
	}
}

// checkCategories looks for the seeded categories and filters the catalog
// by every category listed.
func (s *Suite) checkCategories(ctx context.Context, scope *harness.Scope, categories []marketplace.Category) {
	if !scope.Expect("Categories Available", categories, Not(BeEmpty()), "%d categories", len(categories)) {
		return
	}

	names := make([]string, len(categories))
	for i := range categories {
		names[i] = categories[i].CategoryName
	}

	for _, expected := range expectedCategories {
		scope.Expect("Category: "+expected, names, ContainElement(ContainSubstring(expected)), "found in categories")
	}

	for _, category := range categories {
		name := fmt.Sprintf("Category Filter: %s (ID: %d)", category.CategoryName, category.CategoryID)

		// A token makes the server filter by the caller's ID instead.
		ok, payload := scope.Request(ctx, harness.Request{
			Name:           name,
			Method:         http.MethodGet,
			Path:           s.endpoints.ProductsByCategory(category.CategoryID),
			ExpectedStatus: http.StatusOK,
		})
		if !ok {
			continue
		}

		if products, ok := items[marketplace.Product](scope, name, payload); ok {
			scope.Expect(name+" Products", products, HaveEach(HaveField("CategoryID", Equal(category.CategoryID))), "%d products in category", len(products))
		}
	}
}

func (s *Suite) listProducts(ctx context.Context, scope *harness.Scope) {
	ok, payload := scope.Request(ctx, harness.Request{
		Name:           "List Products",
		Method:         http.MethodGet,
		Path:           s.endpoints.ListProducts(),
		ExpectedStatus: http.StatusOK,
	})
	if !ok {
		return
	}

	products, ok := items[marketplace.Product](scope, "List Products", payload)
	if !ok || !scope.Expect("Products Available", products, Not(BeEmpty()), "%d products", len(products)) {
		return
	}

	product := products[0]

	run := scope.Run()
	run.SetInt(KeyProductID, product.ProductID)
	run.SetInt(KeySellerID, product.UserID)
	run.SetInt(KeyCategoryID, product.CategoryID)

	// A token makes the server look up the caller instead of the product.
	ok, payload = scope.Request(ctx, harness.Request{
		Name:           "Get Product",
		Method:         http.MethodGet,
		Path:           s.endpoints.GetProduct(product.ProductID),
		ExpectedStatus: http.StatusOK,
	})
	if ok {
		if detail, ok := data[marketplace.Product](scope, "Get Product", payload); ok {
			scope.Expect("Product Detail Matches", detail.ProductName, Equal(product.ProductName), "%s", detail.ProductName)

			if detail.Seller != nil {
				scope.Expect("Product Seller", detail.Seller.UserID, Equal(product.UserID), "sold by %s", detail.Seller.Username)
			}
		}
	}

	for _, p := range products {
		scope.Request(ctx, harness.Request{
			Name:                fmt.Sprintf("Image for %s (ID: %d)", p.ProductName, p.ProductID),
			Method:              http.MethodGet,
			Path:                s.endpoints.ProductImage(p.ProductID),
			Headers:             map[string]string{"Accept": "image/*"},
			ExpectedStatus:      http.StatusOK,
			ExpectedContentType: "image/",
		})
	}
}

// ProductViews tracks a view of the captured product and checks it is
// counted.
func (s *Suite) ProductViews() harness.Scenario {
	return harness.Scenario{
		Name:     "Product Views",
		Category: CategoryViews,
		Requires: []harness.Requirement{
			harness.RequireValue(KeyProductID),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			public := scope.Anonymous()
			productID, _ := scope.Run().Int(KeyProductID)

			public.Request(ctx, harness.Request{
				Name:           "Track Product View",
				Method:         http.MethodPost,
				Path:           s.endpoints.TrackView(productID),
				ExpectedStatus: http.StatusOK,
			})

			ok, payload := public.Request(ctx, harness.Request{
				Name:           "Product View Stats",
				Method:         http.MethodGet,
				Path:           s.endpoints.ViewStats(productID),
				ExpectedStatus: http.StatusOK,
			})
			if ok {
				if stats, ok := data[marketplace.ViewStats](public, "Product View Stats", payload); ok {
					public.Expect("View Stats Product", stats.ProductID.String(), Equal(strconv.Itoa(productID)))
					public.Expect("View Counted", stats.TotalViews, BeNumerically(">=", 1), "%d total views, %d recent", stats.TotalViews, stats.RecentViews)
				}
			}

			s.productList(ctx, public, "Popular Products", s.endpoints.PopularProducts(5), 5)
		},
	}
}

// productList fetches a limited list of products and checks the limit is
// honoured.
func (s *Suite) productList(ctx context.Context, scope *harness.Scope, name, path string, limit int) {
	ok, payload := scope.Request(ctx, harness.Request{
		Name:           name,
		Method:         http.MethodGet,
		Path:           path,
		ExpectedStatus: http.StatusOK,
	})
	if !ok {
		return
	}

	if products, ok := items[marketplace.Product](scope, name, payload); ok {
		scope.Expect(name+" Limit", len(products), BeNumerically("<=", limit), "%d products", len(products))
	}
}

// Recommendations exercises every recommendation source.
func (s *Suite) Recommendations() harness.Scenario {
	return harness.Scenario{
		Name:     "Recommendations",
		Category: CategoryRecommendations,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleBuyer),
			harness.RequireValue(KeyProductID),
			harness.RequireValue(KeyCategoryID),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			run := scope.Run()
			productID, _ := run.Int(KeyProductID)
			categoryID, _ := run.Int(KeyCategoryID)

			public := scope.Anonymous()

			s.productList(ctx, scope.As(harness.RoleBuyer), "User Recommendations", s.endpoints.UserRecommendations(5), 5)
			s.productList(ctx, public, "Trending Products", s.endpoints.TrendingRecommendations(5), 5)
			s.productList(ctx, public, "Similar Products", s.endpoints.ProductRecommendations(productID, 3), 3)
			s.productList(ctx, public, "Category Recommendations", s.endpoints.CategoryRecommendations(categoryID, 5), 5)
		},
	}
}

// ShoppingBasics checks the cart and order history of a fresh buyer.
func (s *Suite) ShoppingBasics() harness.Scenario {
	return harness.Scenario{
		Name:     "Shopping Basics",
		Category: CategoryCatalog,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleBuyer),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			buyer := scope.As(harness.RoleBuyer)

			// An empty cart is reported as not found.
			buyer.Request(ctx, harness.Request{
				Name:           "View Cart",
				Method:         http.MethodGet,
				Path:           s.endpoints.ViewCart(),
				ExpectedStatus: http.StatusNotFound,
			})

			// No approved orders is reported as a bad request.
			buyer.Request(ctx, harness.Request{
				Name:           "User Orders",
				Method:         http.MethodGet,
				Path:           s.endpoints.UserOrders(),
				ExpectedStatus: http.StatusBadRequest,
			})
		},
	}
}
