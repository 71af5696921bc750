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

package marketplace

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// Endpoints contains all API endpoint paths, relative to the base URL.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// pathParam renders a path parameter in simple style.
func pathParam(name string, value any) string {
	s, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
	if err != nil {
		return url.PathEscape(fmt.Sprint(value))
	}

	return s
}

// withQuery appends a form style query parameter.
func withQuery(path, name string, value any) string {
	s, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		s = url.QueryEscape(name) + "=" + url.QueryEscape(fmt.Sprint(value))
	}

	return path + "?" + s
}

// Authentication endpoints.
func (e *Endpoints) Login() string {
	return "/login"
}

func (e *Endpoints) Profile() string {
	return "/profile"
}

// Catalog endpoints.
func (e *Endpoints) ListProducts() string {
	return "/products"
}

// GetProduct must be requested anonymously, a bearer token makes the
// server look up the caller's ID instead.
func (e *Endpoints) GetProduct(productID int) string {
	return "/products/product/" + pathParam("id", productID)
}

// ProductsByCategory shares the product lookup's token quirk.
func (e *Endpoints) ProductsByCategory(categoryID int) string {
	return "/products/category/" + pathParam("id", categoryID)
}

func (e *Endpoints) ProductImage(productID int) string {
	return "/products/image/" + pathParam("id", productID)
}

func (e *Endpoints) ListCategories() string {
	return "/category"
}

func (e *Endpoints) CategoriesInfo() string {
	return "/products/categories-info"
}

// AI assistance endpoints.
func (e *Endpoints) SuggestCategory() string {
	return "/products/suggest-category"
}

func (e *Endpoints) GenerateImage() string {
	return "/products/generate-image"
}

func (e *Endpoints) ImageOptions() string {
	return "/products/image-options"
}

// View tracking endpoints.
func (e *Endpoints) TrackView(productID int) string {
	return "/products/track-view/" + pathParam("id", productID)
}

func (e *Endpoints) ViewStats(productID int) string {
	return "/products/view-stats/" + pathParam("id", productID)
}

func (e *Endpoints) PopularProducts(limit int) string {
	return withQuery("/products/popular", "limit", limit)
}

// Recommendation endpoints.
func (e *Endpoints) UserRecommendations(limit int) string {
	return withQuery("/products/recommendations/user", "limit", limit)
}

func (e *Endpoints) ProductRecommendations(productID, limit int) string {
	return withQuery("/products/recommendations/product/"+pathParam("productId", productID), "limit", limit)
}

func (e *Endpoints) TrendingRecommendations(limit int) string {
	return withQuery("/products/recommendations/trending", "limit", limit)
}

func (e *Endpoints) CategoryRecommendations(categoryID, limit int) string {
	return withQuery("/products/recommendations/category/"+pathParam("categoryId", categoryID), "limit", limit)
}

// Shopping endpoints.
func (e *Endpoints) ViewCart() string {
	return "/cart/view"
}

func (e *Endpoints) UserOrders() string {
	return "/orders/user"
}

// Communication endpoints.
func (e *Endpoints) SearchUsers(username string) string {
	return withQuery("/communication/search-users", "username", username)
}

func (e *Endpoints) CreateDispute() string {
	return "/communication/create-dispute"
}

func (e *Endpoints) MyConversations() string {
	return "/communication/my-conversations"
}

func (e *Endpoints) ConversationMessages(conversationID int) string {
	return fmt.Sprintf("/communication/conversation/%s/messages", pathParam("disputeId", conversationID))
}

func (e *Endpoints) SendMessage(conversationID int) string {
	return fmt.Sprintf("/communication/conversation/%s/send-message", pathParam("disputeId", conversationID))
}

func (e *Endpoints) ManageConversation(conversationID int) string {
	return fmt.Sprintf("/communication/conversation/%s/manage", pathParam("disputeId", conversationID))
}

func (e *Endpoints) UnreadCount() string {
	return "/communication/unread-count"
}

func (e *Endpoints) ContactSeller() string {
	return "/communication/contact-seller"
}

func (e *Endpoints) ContactAdmin() string {
	return "/communication/contact-admin"
}

func (e *Endpoints) ReportConversation() string {
	return "/communication/report-conversation"
}

func (e *Endpoints) AdminWorkload() string {
	return "/communication/admin-workload"
}
