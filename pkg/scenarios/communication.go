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

	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/types"

	"k8s.io/apimachinery/pkg/util/rand"
	"k8s.io/utils/ptr"

	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

// uniqueSuffix keeps conversations created by concurrent runs apart.
func uniqueSuffix() string {
	return rand.String(8)
}

func (s *Suite) searchUsers(ctx context.Context, scope *harness.Scope, name, term string) ([]marketplace.UserSummary, bool) {
	ok, payload := scope.Request(ctx, harness.Request{
		Name:           name,
		Method:         http.MethodGet,
		Path:           s.endpoints.SearchUsers(term),
		ExpectedStatus: http.StatusOK,
	})
	if !ok {
		return nil, false
	}

	return items[marketplace.UserSummary](scope, name, payload)
}

// UserSearch checks buyers and sellers can never discover administrators,
// while administrators can find anyone.
func (s *Suite) UserSearch() harness.Scenario {
	return harness.Scenario{
		Name:     "User Search",
		Category: CategoryCommunication,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleSeller),
			harness.RequireSession(harness.RoleBuyer),
			harness.RequireSession(harness.RoleAdmin),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			seller := scope.As(harness.RoleSeller)
			buyer := scope.As(harness.RoleBuyer)
			admin := scope.As(harness.RoleAdmin)

			for _, term := range []string{"test", "admin"} {
				s.expectNoAdmins(ctx, buyer, "Buyer", s.accounts.Buyer.Username, term)
				s.expectNoAdmins(ctx, seller, "Seller", s.accounts.Seller.Username, term)
			}

			name := "Seller Search For Buyers"

			if users, ok := s.searchUsers(ctx, seller, name, "buyer"); ok {
				buyers := slices.DeleteFunc(slices.Clone(users), func(u marketplace.UserSummary) bool {
					return u.UserAuth != marketplace.UserAuthUser
				})

				seller.Expect(name+" Found", usernames(buyers), ContainElement(s.accounts.Buyer.Username), "%d buyer accounts", len(buyers))
			}

			name = "Admin Search For Buyer"

			if users, ok := s.searchUsers(ctx, admin, name, s.accounts.Buyer.Username); ok {
				admin.Expect(name+" Found", usernames(users), ContainElement(s.accounts.Buyer.Username))
			}

			name = "Admin Search For Admins"

			if users, ok := s.searchUsers(ctx, admin, name, "admin"); ok {
				found := slices.ContainsFunc(users, marketplace.UserSummary.IsAdmin)

				if found {
					admin.Record(name+" Visible", true, "administrators are searchable by administrators", nil)
				} else {
					// Only reachable when the searching admin is the sole administrator.
					scope.Run().Log.Skip(name+" Visible", CategoryCommunication, "no other administrators exist")
				}
			}

			buyer.Request(ctx, harness.Request{
				Name:           "Search Without Term",
				Method:         http.MethodGet,
				Path:           s.endpoints.SearchUsers(""),
				ExpectedStatus: http.StatusBadRequest,
			})
		},
	}
}

// expectNoAdmins searches as a non-administrator, who must never find an
// administrator or themselves.
func (s *Suite) expectNoAdmins(ctx context.Context, scope *harness.Scope, role, self, term string) {
	name := fmt.Sprintf("%s Search %q", role, term)

	users, ok := s.searchUsers(ctx, scope, name, term)
	if !ok {
		return
	}

	admins := slices.DeleteFunc(slices.Clone(users), func(u marketplace.UserSummary) bool {
		return !u.IsAdmin()
	})

	scope.Expect(name+" Hides Admins", usernames(admins), BeEmpty(), "%d users, no administrators", len(users))
	scope.Expect(name+" Excludes Self", usernames(users), Not(ContainElement(self)))
}

// Conversations opens a conversation from the seller to an administrator
// and exchanges a message.
func (s *Suite) Conversations() harness.Scenario {
	return harness.Scenario{
		Name:     "Conversations",
		Category: CategoryCommunication,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleSeller),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			seller := scope.As(harness.RoleSeller)
			suffix := uniqueSuffix()

			// No priority is sent, the server must default it.
			dispute := marketplace.NewDisputeRequest("Automated test "+suffix, "Conversation opened by the end-to-end suite").
				WithTargetUsername(s.accounts.Admin.Username).
				Build()

			ok, payload := seller.Request(ctx, harness.Request{
				Name:           "Create Conversation",
				Method:         http.MethodPost,
				Path:           s.endpoints.CreateDispute(),
				Body:           dispute,
				ExpectedStatus: http.StatusOK,
			})
			if !ok {
				return
			}

			conversation, ok := data[marketplace.Conversation](seller, "Create Conversation", payload)
			if !ok {
				return
			}

			scope.Run().SetInt(KeyConversationID, conversation.DisputeID)

			seller.Expect("Default Priority Assignment", conversation.Priority, Equal(marketplace.PriorityMedium), "conversation %d", conversation.DisputeID)

			text := "Hello from the automated suite " + suffix

			ok, payload = seller.Request(ctx, harness.Request{
				Name:   "Send Message",
				Method: http.MethodPost,
				Path:   s.endpoints.SendMessage(conversation.DisputeID),
				Body: marketplace.MessageRequest{
					Message: text,
				},
				ExpectedStatus: http.StatusOK,
			})
			if ok {
				if message, ok := data[marketplace.Message](seller, "Send Message", payload); ok {
					seller.Expect("Sent Message Type", message.MessageType, Equal(marketplace.MessageTypeMessage))
				}
			}

			s.expectMessage(ctx, seller, "Read Messages", conversation.DisputeID, text)

			listed := ContainElement(HaveField("DisputeID", Equal(conversation.DisputeID)))

			s.myConversations(ctx, seller, "Seller Conversations", listed)

			// Each role only sees conversations it takes part in.
			if _, ok := scope.Run().Session(harness.RoleBuyer); ok {
				s.myConversations(ctx, scope.As(harness.RoleBuyer), "Buyer Conversations", Not(listed))
			}

			// The administrator has not read the conversation yet.
			if _, ok := scope.Run().Session(harness.RoleAdmin); ok {
				admin := scope.As(harness.RoleAdmin)

				s.myConversations(ctx, admin, "Admin Conversations", listed)

				ok, payload = admin.Request(ctx, harness.Request{
					Name:           "Unread Count",
					Method:         http.MethodGet,
					Path:           s.endpoints.UnreadCount(),
					ExpectedStatus: http.StatusOK,
				})
				if ok {
					if unread, ok := data[marketplace.UnreadCount](admin, "Unread Count", payload); ok {
						admin.Expect("Unread Messages Pending", unread.UnreadCount, BeNumerically(">=", 1), "%d unread", unread.UnreadCount)
					}
				}
			}
		},
	}
}

// myConversations lists the caller's conversations and matches them.
func (s *Suite) myConversations(ctx context.Context, scope *harness.Scope, name string, matcher types.GomegaMatcher) {
	ok, payload := scope.Request(ctx, harness.Request{
		Name:           name,
		Method:         http.MethodGet,
		Path:           s.endpoints.MyConversations(),
		ExpectedStatus: http.StatusOK,
	})
	if !ok {
		return
	}

	if conversations, ok := items[marketplace.Conversation](scope, name, payload); ok {
		scope.Expect(name+" Listed", conversations, matcher, "%d conversations", len(conversations))
	}
}

// expectMessage reads a conversation and checks it holds the message.
func (s *Suite) expectMessage(ctx context.Context, scope *harness.Scope, name string, conversationID int, text string) {
	ok, payload := scope.Request(ctx, harness.Request{
		Name:           name,
		Method:         http.MethodGet,
		Path:           s.endpoints.ConversationMessages(conversationID),
		ExpectedStatus: http.StatusOK,
	})
	if !ok {
		return
	}

	messages, ok := data[marketplace.ConversationMessages](scope, name, payload)
	if !ok {
		return
	}

	scope.Expect(name+" Contains Message", messages.Messages, ContainElement(HaveField("Message", Equal(text))), "%d messages", len(messages.Messages))
}

// ContactSeller has the buyer contact the seller of the captured product.
func (s *Suite) ContactSeller() harness.Scenario {
	return harness.Scenario{
		Name:     "Contact Seller",
		Category: CategoryCommunication,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleBuyer),
			harness.RequireValue(KeySellerID),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			buyer := scope.As(harness.RoleBuyer)
			run := scope.Run()

			sellerID, _ := run.Int(KeySellerID)
			text := "Is this still available? " + uniqueSuffix()

			request := marketplace.ContactSellerRequest{
				SellerID:       sellerID,
				InitialMessage: text,
			}

			if productID, ok := run.Int(KeyProductID); ok {
				request.ProductID = ptr.To(productID)
			}

			ok, payload := buyer.Request(ctx, harness.Request{
				Name:           "Contact Seller",
				Method:         http.MethodPost,
				Path:           s.endpoints.ContactSeller(),
				Body:           request,
				ExpectedStatus: http.StatusOK,
			})
			if !ok {
				return
			}

			result, ok := data[marketplace.ContactSellerResult](buyer, "Contact Seller", payload)
			if !ok {
				return
			}

			run.SetInt(KeyBuyerConversationID, result.ConversationID)

			if result.Seller != nil {
				buyer.Expect("Contacted Seller", result.Seller.ID, Equal(sellerID), "@%s, new conversation: %t", result.Seller.Username, result.IsNewConversation)
			}

			s.expectMessage(ctx, buyer, "Seller Conversation Messages", result.ConversationID, text)
		},
	}
}

// ContactAdmin opens a support conversation from the seller.
func (s *Suite) ContactAdmin() harness.Scenario {
	return harness.Scenario{
		Name:     "Contact Admin",
		Category: CategoryCommunication,
		Requires: []harness.Requirement{
			harness.RequireSession(harness.RoleSeller),
		},
		Run: func(ctx context.Context, scope *harness.Scope) {
			seller := scope.As(harness.RoleSeller)

			ok, payload := seller.Request(ctx, harness.Request{
				Name:   "Contact Admin",
				Method: http.MethodPost,
				Path:   s.endpoints.ContactAdmin(),
				Body: marketplace.ContactAdminRequest{
					Subject: "General Inquiry " + uniqueSuffix(),
					Message: "Opening conversation with admin support.",
				},
				ExpectedStatus: http.StatusOK,
			})
			if !ok {
				return
			}

			if result, ok := data[marketplace.ContactAdminResult](seller, "Contact Admin", payload); ok {
				seller.Expect("Admin Assigned", result.AssignedAdmin.Username, Not(BeEmpty()), "assigned to %s", result.AssignedAdmin.Username)
			}
		},
	}
}
