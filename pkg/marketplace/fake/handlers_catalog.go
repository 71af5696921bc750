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

package fake

import (
	"cmp"
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var credentials marketplace.Credentials
	if !decode(r, &credentials) || credentials.Username == "" || credentials.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	u := s.store.userByName(credentials.Username)
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if u.Password != credentials.Password {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	session := marketplace.Session{
		Token:    s.store.issueToken(u),
		UserAuth: u.UserAuth,
	}

	writeJSON(w, http.StatusOK, "Login successful", session)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "Profile fetched successfully", currentUser(r).Profile)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	if len(s.store.products) == 0 {
		writeError(w, http.StatusUnauthorized, "No products found")
		return
	}

	writeJSON(w, http.StatusOK, "All products fetched successfully", s.store.products)
}

// lookupID reproduces the marketplace's product lookups using the caller's
// ID rather than the path parameter when a token is present.
func (s *Server) lookupID(w http.ResponseWriter, r *http.Request) (int, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		u := s.lookupToken(header)
		if u == nil {
			writeError(w, http.StatusInternalServerError, "Error verifying token: invalid token")
			return 0, false
		}

		return u.UserID, true
	}

	id, ok := intParam(r, "id")
	if !ok {
		writeError(w, http.StatusUnauthorized, "Required parameters (searchBy or id) not provided.")
		return 0, false
	}

	return id, true
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupID(w, r)
	if !ok {
		return
	}

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	product, ok := s.store.product(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Product ID %d does not exist", id))
		return
	}

	if seller := s.store.userByID(product.UserID); seller != nil {
		summary := seller.summary()
		product.Seller = &summary
	}

	writeJSON(w, http.StatusOK, "Single product with seller info fetched successfully", product)
}

func (s *Server) productsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupID(w, r)
	if !ok {
		return
	}

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	products := []marketplace.Product{}

	for _, p := range s.store.products {
		if p.CategoryID == id {
			products = append(products, p)
		}
	}

	if len(products) == 0 {
		writeError(w, http.StatusPaymentRequired, fmt.Sprintf("No products found for category ID=%d", id))
		return
	}

	writeJSON(w, http.StatusOK, "Product by category fetched successfully", products)
}

// productImage serves a placeholder of the image's type, products without
// an image get the default JPEG.
func (s *Server) productImage(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.store.lock.Lock()
	product, ok := s.store.product(id)
	s.store.lock.Unlock()

	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid product id")
		return
	}

	contentType := "image/jpeg"

	switch strings.ToLower(path.Ext(product.ProductImage)) {
	case ".png":
		contentType = "image/png"
	case ".svg":
		contentType = "image/svg+xml"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(placeholderImage)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	categories := make([]marketplace.Category, len(s.store.categories))
	for i := range s.store.categories {
		categories[i] = s.store.categories[i].Category
	}

	writeJSON(w, http.StatusOK, "Category names fetched successfully", categories)
}

func (s *Server) categoriesInfo(w http.ResponseWriter, r *http.Request) {
	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	info := make([]marketplace.CategoryInfo, len(s.store.categories))
	for i, c := range s.store.categories {
		info[i] = marketplace.CategoryInfo{
			ID:       c.CategoryID,
			Name:     c.CategoryName,
			Keywords: c.keywords,
		}
	}

	writeJSON(w, http.StatusOK, "Categories information retrieved successfully", info)
}

func (s *Server) suggestCategory(w http.ResponseWriter, r *http.Request) {
	var request marketplace.CategorySuggestionRequest
	if !decode(r, &request) || request.ProductName == "" || request.Description == "" {
		writeError(w, http.StatusBadRequest, "Product name and description are required for category suggestion")
		return
	}

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	writeJSON(w, http.StatusOK, "Category suggestion generated successfully", s.store.suggest(request.ProductName, request.Description))
}

// placeholderImage is the JPEG start of image marker followed by padding.
//
//nolint:gochecknoglobals
var placeholderImage = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *Server) generateImage(w http.ResponseWriter, r *http.Request) {
	var request marketplace.ImageRequest
	if !decode(r, &request) || request.ProductName == "" {
		writeError(w, http.StatusBadRequest, "Product name is required for image generation")
		return
	}

	image := marketplace.GeneratedImage{
		ImagePath: "/uploads/products/" + slug(request.ProductName) + ".jpg",
		ImageInfo: marketplace.ImageInfo{
			Photographer:    "E-Pasar Demo",
			PhotographerURL: "https://unsplash.com",
			Source:          "Demo Mode",
			Note:            "Image service unavailable, demo image used",
		},
	}

	writeJSON(w, http.StatusOK, "Demo image generated successfully", image)
}

const maxImageOptions = 10

func (s *Server) imageOptions(w http.ResponseWriter, r *http.Request) {
	var request marketplace.ImageRequest
	if !decode(r, &request) || request.ProductName == "" {
		writeError(w, http.StatusBadRequest, "Product name is required")
		return
	}

	count := 5
	if request.Count != nil && *request.Count > 0 {
		count = min(*request.Count, maxImageOptions)
	}

	options := make([]marketplace.ImageOption, count)
	for i := range options {
		id := fmt.Sprintf("%s-%d", slug(request.ProductName), i+1)

		options[i] = marketplace.ImageOption{
			ID:              id,
			URL:             "https://images.example.com/small/" + id + ".jpg",
			RegularURL:      "https://images.example.com/regular/" + id + ".jpg",
			Description:     request.ProductName,
			Photographer:    "E-Pasar Demo",
			PhotographerURL: "https://unsplash.com",
		}
	}

	writeJSON(w, http.StatusOK, "Image options retrieved successfully", options)
}

func (s *Server) trackView(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	if _, ok := s.store.product(id); !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	s.store.views[id]++

	writeError(w, http.StatusOK, "Product view tracked successfully")
}

func (s *Server) viewStats(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	// The product ID is echoed as the raw path parameter.
	stats := struct {
		TotalViews  int    `json:"totalViews"`
		RecentViews int    `json:"recentViews"`
		ProductID   string `json:"productId"`
	}{
		TotalViews:  s.store.views[id],
		RecentViews: s.store.views[id],
		ProductID:   chi.URLParam(r, "id"),
	}

	writeJSON(w, http.StatusOK, "View statistics retrieved successfully", stats)
}

// byViews returns products ordered by most viewed, then by ID.
func (s *Server) byViews(filter func(marketplace.Product) bool) []marketplace.Product {
	var products []marketplace.Product

	for _, p := range s.store.products {
		if filter == nil || filter(p) {
			products = append(products, p)
		}
	}

	slices.SortStableFunc(products, func(a, b marketplace.Product) int {
		if c := cmp.Compare(s.store.views[b.ProductID], s.store.views[a.ProductID]); c != 0 {
			return c
		}

		return cmp.Compare(a.ProductID, b.ProductID)
	})

	return products
}

func truncate(products []marketplace.Product, n int) []marketplace.Product {
	if products == nil {
		return []marketplace.Product{}
	}

	return products[:min(n, len(products))]
}

func (s *Server) popular(w http.ResponseWriter, r *http.Request) {
	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	writeJSON(w, http.StatusOK, "Popular products retrieved successfully", truncate(s.byViews(nil), limit(r, 10)))
}

// userRecommendations favours categories the user has bought from, which
// the fake has no record of, so it falls back to the most viewed products
// the user does not sell.
func (s *Server) userRecommendations(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	products := s.byViews(func(p marketplace.Product) bool {
		return p.UserID != u.UserID
	})

	writeJSON(w, http.StatusOK, "User recommendations retrieved successfully", truncate(products, limit(r, 10)))
}

func (s *Server) productRecommendations(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "productId")

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	product, ok := s.store.product(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	products := s.byViews(func(p marketplace.Product) bool {
		return p.CategoryID == product.CategoryID && p.ProductID != product.ProductID
	})

	writeJSON(w, http.StatusOK, "Product recommendations retrieved successfully", truncate(products, limit(r, 5)))
}

func (s *Server) trendingRecommendations(w http.ResponseWriter, r *http.Request) {
	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	writeJSON(w, http.StatusOK, "Trending products retrieved successfully", truncate(s.byViews(nil), limit(r, 10)))
}

func (s *Server) categoryRecommendations(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "categoryId")

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	products := s.byViews(func(p marketplace.Product) bool {
		return p.CategoryID == id
	})

	writeJSON(w, http.StatusOK, "Category recommendations retrieved successfully", truncate(products, limit(r, 10)))
}

func (s *Server) viewCart(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "No items in cart")
}

func (s *Server) userOrders(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusBadRequest, "No orders found")
}
