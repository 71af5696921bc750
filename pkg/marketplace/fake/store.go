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
	"slices"
	"strings"
	"sync"

	"github.com/epasar/marketplace-e2e/pkg/marketplace"

	"k8s.io/apimachinery/pkg/util/rand"
)

// User is an account known to the fake.
type User struct {
	marketplace.Profile

	Password string
}

func (u *User) summary() marketplace.UserSummary {
	return marketplace.UserSummary{
		UserID:    u.UserID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserAuth:  u.UserAuth,
	}
}

func (u *User) isAdmin() bool {
	return u.UserAuth == marketplace.UserAuthAdmin || u.UserAuth == marketplace.UserAuthSuperAdmin
}

type category struct {
	marketplace.Category

	keywords []string
}

type report struct {
	marketplace.Report

	resolved bool
}

// store is the in-memory marketplace state.
type store struct {
	lock sync.Mutex

	users      []*User
	tokens     map[string]*User
	products   []marketplace.Product
	categories []category
	views      map[int]int
	disputes   []*marketplace.Conversation
	messages   []*marketplace.Message
	reports    []*report
}

// DefaultUsers are the seeded accounts, matching a development database.
func DefaultUsers() []User {
	return []User{
		{
			Profile: marketplace.Profile{
				UserID:    1,
				Username:  "admin_test",
				Email:     "admin@epasar.test",
				FirstName: "Admin",
				LastName:  "Tester",
				UserAuth:  marketplace.UserAuthAdmin,
			},
			Password: "admin123",
		},
		{
			Profile: marketplace.Profile{
				UserID:    2,
				Username:  "seller_test",
				Email:     "seller@epasar.test",
				FirstName: "Siti",
				LastName:  "Seller",
				UserAuth:  marketplace.UserAuthSeller,
			},
			Password: "seller123",
		},
		{
			Profile: marketplace.Profile{
				UserID:    3,
				Username:  "buyer_test",
				Email:     "buyer@epasar.test",
				FirstName: "Bala",
				LastName:  "Buyer",
				UserAuth:  marketplace.UserAuthUser,
			},
			Password: "buyer123",
		},
		{
			Profile: marketplace.Profile{
				UserID:    4,
				Username:  "support_admin",
				Email:     "support@epasar.test",
				FirstName: "Support",
				LastName:  "Desk",
				UserAuth:  marketplace.UserAuthSuperAdmin,
			},
			Password: "support123",
		},
	}
}

func newStore(users []User) *store {
	s := &store{
		tokens: map[string]*User{},
		views:  map[int]int{},
		categories: []category{
			{
				Category: marketplace.Category{CategoryID: 1, CategoryName: "Fruits"},
				keywords: []string{"apple", "banana", "orange", "mango", "durian", "papaya", "fruit"},
			},
			{
				Category: marketplace.Category{CategoryID: 2, CategoryName: "Vegetables"},
				keywords: []string{"carrot", "tomato", "spinach", "cabbage", "onion", "vegetable"},
			},
			{
				Category: marketplace.Category{CategoryID: 3, CategoryName: "Seeds"},
				keywords: []string{"seed", "grain", "rice", "wheat", "corn", "chia", "sunflower", "sesame"},
			},
			{
				Category: marketplace.Category{CategoryID: 4, CategoryName: "Spices"},
				keywords: []string{"spice", "pepper", "ginger", "turmeric", "cumin", "cinnamon", "chili"},
			},
		},
	}

	for i := range users {
		s.users = append(s.users, &users[i])
	}

	s.products = []marketplace.Product{
		{ProductID: 1, UserID: 2, ProductName: "Fresh Red Apple", Price: 4.5, MOQ: 10, AvailableQty: 500, Description: "Crisp apples from Cameron Highlands", ProdStatus: "Active", CategoryID: 1},
		{ProductID: 2, UserID: 2, ProductName: "Organic Carrot", Price: 3.2, MOQ: 20, AvailableQty: 800, Description: "Pesticide free carrots", ProdStatus: "Active", CategoryID: 2},
		{ProductID: 3, UserID: 2, ProductName: "Musang King Durian", Price: 45, MOQ: 1, AvailableQty: 40, Description: "Premium durian", ProdStatus: "Active", CategoryID: 1},
		{ProductID: 4, UserID: 2, ProductName: "Organic Chia Seeds", Price: 12, MOQ: 5, AvailableQty: 200, Description: "Heirloom chia for planting", ProdStatus: "Active", CategoryID: 3, ProductImage: "4.png"},
		{ProductID: 5, UserID: 2, ProductName: "Sarawak Black Pepper", Price: 18, MOQ: 2, AvailableQty: 150, Description: "Sun dried pepper from Sarawak", ProdStatus: "Active", CategoryID: 4, ProductImage: "5.jpg"},
	}

	return s
}

func (s *store) userByName(username string) *User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}

	return nil
}

func (s *store) userByID(id int) *User {
	for _, u := range s.users {
		if u.UserID == id {
			return u
		}
	}

	return nil
}

func (s *store) issueToken(u *User) string {
	token := rand.String(32)
	s.tokens[token] = u

	return token
}

func (s *store) product(id int) (marketplace.Product, bool) {
	for _, p := range s.products {
		if p.ProductID == id {
			return p, true
		}
	}

	return marketplace.Product{}, false
}

func (s *store) dispute(id int) *marketplace.Conversation {
	for _, d := range s.disputes {
		if d.DisputeID == id {
			return d
		}
	}

	return nil
}

func participant(d *marketplace.Conversation, u *User) bool {
	return d.LodgedBy == u.UserID || d.LodgedAgainst == u.UserID || (d.HandledBy != nil && *d.HandledBy == u.UserID)
}

func (s *store) createDispute(d marketplace.Conversation) *marketplace.Conversation {
	d.DisputeID = len(s.disputes) + 1

	if d.Status == "" {
		d.Status = marketplace.StatusOpen
	}

	if d.Priority == "" {
		d.Priority = marketplace.PriorityMedium
	}

	s.disputes = append(s.disputes, &d)

	return &d
}

func (s *store) addMessage(disputeID int, sender *User, text, messageType string) *marketplace.Message {
	m := &marketplace.Message{
		MessageID:   len(s.messages) + 1,
		DisputeID:   disputeID,
		SentBy:      sender.UserID,
		Message:     text,
		MessageType: messageType,
	}

	s.messages = append(s.messages, m)

	return m
}

func (s *store) messagesFor(disputeID int) []marketplace.Message {
	out := []marketplace.Message{}

	for _, m := range s.messages {
		if m.DisputeID == disputeID {
			message := *m

			if u := s.userByID(m.SentBy); u != nil {
				summary := u.summary()
				message.User = &summary
			}

			out = append(out, message)
		}
	}

	return out
}

// activeReports counts unresolved reports assigned to an admin.
func (s *store) activeReports(adminID int) int {
	var n int

	for _, r := range s.reports {
		if r.AssignedAdminID == adminID && !r.resolved {
			n++
		}
	}

	return n
}

// leastLoadedAdmin picks the admin with the fewest active reports, the
// lowest user ID breaks ties.
func (s *store) leastLoadedAdmin() *User {
	var best *User

	for _, u := range s.users {
		if !u.isAdmin() {
			continue
		}

		if best == nil || s.activeReports(u.UserID) < s.activeReports(best.UserID) {
			best = u
		}
	}

	return best
}

// suggest scores every category by keyword matches in the product text.
func (s *store) suggest(productName, description string) marketplace.CategorySuggestion {
	text := strings.ToLower(productName + " " + description)

	best := marketplace.CategorySuggestion{
		SuggestedCategory: s.categories[0].CategoryID,
		CategoryName:      s.categories[0].CategoryName,
		Confidence:        20,
		Reason:            "no category keywords matched",
		MatchedKeywords:   []string{},
	}

	var bestMatches []string

	for _, c := range s.categories {
		var matches []string

		for _, keyword := range c.keywords {
			if strings.Contains(text, keyword) {
				matches = append(matches, keyword)
			}
		}

		if len(matches) > len(bestMatches) {
			bestMatches = matches
			best = marketplace.CategorySuggestion{
				SuggestedCategory: c.CategoryID,
				CategoryName:      c.CategoryName,
				Confidence:        float64(min(60+15*len(matches), 95)),
				Reason:            "matched keywords: " + strings.Join(matches, ", "),
				MatchedKeywords:   slices.Clone(matches),
			}
		}
	}

	return best
}
