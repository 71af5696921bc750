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
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

type contextKey int

const userKey contextKey = iota

// fault forces a status for a method and path.
type fault struct {
	method string
	path   string
}

// Server is an in-memory marketplace API for exercising the suite without
// a real backend.
type Server struct {
	store *store

	faultLock sync.Mutex
	faults    map[fault]int
}

// New returns a server seeded with the default users.
func New() *Server {
	return NewWithUsers(DefaultUsers())
}

// NewWithUsers returns a server seeded with the given users.
func NewWithUsers(users []User) *Server {
	return &Server{
		store:  newStore(users),
		faults: map[fault]int{},
	}
}

// SetFault makes every request for the method and path fail with status.
func (s *Server) SetFault(method, path string, status int) {
	s.faultLock.Lock()
	defer s.faultLock.Unlock()

	s.faults[fault{method: method, path: path}] = status
}

// ClearFaults removes all injected faults.
func (s *Server) ClearFaults() {
	s.faultLock.Lock()
	defer s.faultLock.Unlock()

	clear(s.faults)
}

func (s *Server) faultInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.faultLock.Lock()
		status, ok := s.faults[fault{method: r.Method, path: r.URL.Path}]
		s.faultLock.Unlock()

		if ok {
			writeError(w, status, "injected fault")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.faultInjection)

	r.Post("/login", s.login)
	r.With(s.auth(allUsers...)).Get("/profile", s.profile)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Get("/categories-info", s.categoriesInfo)
		r.Get("/popular", s.popular)
		r.Post("/track-view/{id}", s.trackView)
		r.Get("/view-stats/{id}", s.viewStats)

		r.Group(func(r chi.Router) {
			r.Use(s.auth(marketplace.UserAuthSeller))
			r.Post("/suggest-category", s.suggestCategory)
			r.Post("/generate-image", s.generateImage)
			r.Post("/image-options", s.imageOptions)
		})

		r.With(s.auth(allUsers...)).Get("/recommendations/user", s.userRecommendations)
		r.Get("/recommendations/product/{productId}", s.productRecommendations)
		r.Get("/recommendations/trending", s.trendingRecommendations)
		r.Get("/recommendations/category/{categoryId}", s.categoryRecommendations)

		r.Get("/product/{id}", s.getProduct)
		r.Get("/category/{id}", s.productsByCategory)
		r.Get("/image/{id}", s.productImage)
	})

	r.Get("/category", s.listCategories)

	r.With(s.auth(marketplace.UserAuthUser, marketplace.UserAuthSeller)).Get("/cart/view", s.viewCart)
	r.With(s.auth(marketplace.UserAuthUser, marketplace.UserAuthSeller)).Get("/orders/user", s.userOrders)

	r.Route("/communication", func(r chi.Router) {
		r.Use(s.auth(allUsers...))

		r.Get("/search-users", s.searchUsers)
		r.Post("/create-dispute", s.createDispute)
		r.Get("/my-conversations", s.myConversations)
		r.Get("/conversation/{disputeId}/messages", s.conversationMessages)
		r.Post("/conversation/{disputeId}/send-message", s.sendMessage)
		r.Get("/unread-count", s.unreadCount)
		r.Post("/contact-seller", s.contactSeller)
		r.Post("/contact-admin", s.contactAdmin)
		r.Post("/report-conversation", s.reportConversation)

		r.Group(func(r chi.Router) {
			r.Use(s.auth(marketplace.UserAuthAdmin, marketplace.UserAuthSuperAdmin))
			r.Patch("/conversation/{disputeId}/manage", s.manageConversation)
			r.Get("/admin-workload", s.adminWorkload)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})

	return r
}

//nolint:gochecknoglobals
var allUsers = []string{
	marketplace.UserAuthUser,
	marketplace.UserAuthSeller,
	marketplace.UserAuthAdmin,
	marketplace.UserAuthSuperAdmin,
}

// lookupToken resolves a bearer token, with or without the scheme.
func (s *Server) lookupToken(header string) *User {
	parts := strings.Fields(header)

	token := header
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		token = parts[1]
	}

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	return s.store.tokens[token]
}

// auth mirrors the marketplace's unusual status codes: 301 without a
// token, 500 for a bad token and 302 for the wrong role.
func (s *Server) auth(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusMovedPermanently, "No token provided")
				return
			}

			u := s.lookupToken(header)
			if u == nil {
				writeError(w, http.StatusInternalServerError, "Error verifying token: invalid token")
				return
			}

			if !slices.Contains(roles, u.UserAuth) {
				writeError(w, http.StatusFound, "User not authorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

func currentUser(r *http.Request) *User {
	u, _ := r.Context().Value(userKey).(*User)
	return u
}

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(envelope{Status: status, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, message, nil)
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, false
	}

	return v, true
}

func limit(r *http.Request, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || v <= 0 {
		return fallback
	}

	return v
}
