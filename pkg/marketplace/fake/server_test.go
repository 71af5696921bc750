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

package fake_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
	"github.com/epasar/marketplace-e2e/pkg/marketplace/fake"
)

//nolint:gochecknoglobals
var endpoints = marketplace.NewEndpoints()

func serve(t *testing.T, h http.Handler, req *http.Request, token string) (int, harness.Payload) {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var payload harness.Payload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))

	return w.Code, payload
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) (int, harness.Payload) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	return serve(t, h, req, token)
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()

	status, payload := call(t, h, http.MethodPost, endpoints.Login(), "", marketplace.Credentials{Username: username, Password: password})
	require.Equal(t, http.StatusOK, status)

	session, err := marketplace.Data[marketplace.Session](payload)
	require.NoError(t, err)

	return session.Token
}

func report(t *testing.T, h http.Handler, token string, conversationID int) (int, harness.Payload) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	require.NoError(t, writer.WriteField("conversationId", strconv.Itoa(conversationID)))
	require.NoError(t, writer.WriteField("title", "Rude seller"))
	require.NoError(t, writer.WriteField("description", "Seller was rude"))

	part, err := writer.CreateFormFile(marketplace.AttachmentField, "evidence.txt")
	require.NoError(t, err)

	_, err = part.Write([]byte("transcript"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, endpoints.ReportConversation(), body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return serve(t, h, req, token)
}

// TestLogin ensures each login failure has its own status.
func TestLogin(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()

	status, _ := call(t, h, http.MethodPost, endpoints.Login(), "", marketplace.Credentials{Username: "buyer_test"})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, h, http.MethodPost, endpoints.Login(), "", marketplace.Credentials{Username: "nobody", Password: "x"})
	require.Equal(t, http.StatusNotFound, status)

	status, payload := call(t, h, http.MethodPost, endpoints.Login(), "", marketplace.Credentials{Username: "buyer_test", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid password", marketplace.StatusMessage(payload))

	require.NotEmpty(t, login(t, h, "buyer_test", "buyer123"))
}

// TestAuthorization ensures authentication failures use the marketplace's
// status codes.
func TestAuthorization(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()
	buyer := login(t, h, "buyer_test", "buyer123")

	status, _ := call(t, h, http.MethodGet, endpoints.Profile(), "", nil)
	require.Equal(t, http.StatusMovedPermanently, status)

	status, _ = call(t, h, http.MethodGet, endpoints.Profile(), "not-a-token", nil)
	require.Equal(t, http.StatusInternalServerError, status)

	status, _ = call(t, h, http.MethodPost, endpoints.SuggestCategory(), buyer, marketplace.CategorySuggestionRequest{ProductName: "Apple", Description: "Red"})
	require.Equal(t, http.StatusFound, status)

	status, payload := call(t, h, http.MethodGet, endpoints.Profile(), buyer, nil)
	require.Equal(t, http.StatusOK, status)

	profile, err := marketplace.Data[marketplace.Profile](payload)
	require.NoError(t, err)
	require.Equal(t, "buyer_test", profile.Username)
	require.Equal(t, marketplace.UserAuthUser, profile.UserAuth)
}

// TestGetProductIgnoresPathWithToken ensures an authenticated request looks
// up the caller's ID instead of the requested product.
func TestGetProductIgnoresPathWithToken(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()
	seller := login(t, h, "seller_test", "seller123")

	status, payload := call(t, h, http.MethodGet, endpoints.GetProduct(1), "", nil)
	require.Equal(t, http.StatusOK, status)

	product, err := marketplace.Data[marketplace.Product](payload)
	require.NoError(t, err)
	require.Equal(t, 1, product.ProductID)
	require.NotNil(t, product.Seller)
	require.Equal(t, "seller_test", product.Seller.Username)

	status, payload = call(t, h, http.MethodGet, endpoints.GetProduct(1), seller, nil)
	require.Equal(t, http.StatusOK, status)

	product, err = marketplace.Data[marketplace.Product](payload)
	require.NoError(t, err)
	require.Equal(t, 2, product.ProductID)
}

// TestProductsByCategory ensures the category filter shares the product
// lookup's token quirk and rejects empty categories.
func TestProductsByCategory(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()
	seller := login(t, h, "seller_test", "seller123")

	status, payload := call(t, h, http.MethodGet, endpoints.ProductsByCategory(1), "", nil)
	require.Equal(t, http.StatusOK, status)

	products, err := marketplace.Items[marketplace.Product](payload)
	require.NoError(t, err)
	require.Len(t, products, 2)

	for i := range products {
		require.Equal(t, 1, products[i].CategoryID)
	}

	status, payload = call(t, h, http.MethodGet, endpoints.ProductsByCategory(1), seller, nil)
	require.Equal(t, http.StatusOK, status)

	products, err = marketplace.Items[marketplace.Product](payload)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Organic Carrot", products[0].ProductName)

	status, payload = call(t, h, http.MethodGet, endpoints.ProductsByCategory(9), "", nil)
	require.Equal(t, http.StatusPaymentRequired, status)
	require.Equal(t, "No products found for category ID=9", marketplace.StatusMessage(payload))
}

// TestProductImage ensures images are served with a content type derived
// from the stored file name.
func TestProductImage(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()

	for id, contentType := range map[int]string{1: "image/jpeg", 4: "image/png", 5: "image/jpeg"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, endpoints.ProductImage(id), nil))

		require.Equal(t, http.StatusOK, w.Code, id)
		require.Equal(t, contentType, w.Header().Get("Content-Type"), id)
		require.NotEmpty(t, w.Body.Bytes(), id)
	}

	status, payload := call(t, h, http.MethodGet, endpoints.ProductImage(99), "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid product id", marketplace.StatusMessage(payload))
}

// TestSuggestCategory ensures keywords drive the suggestion.
func TestSuggestCategory(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()
	seller := login(t, h, "seller_test", "seller123")

	status, payload := call(t, h, http.MethodPost, endpoints.SuggestCategory(), seller, marketplace.CategorySuggestionRequest{ProductName: "Organic Carrot", Description: "Fresh vegetable"})
	require.Equal(t, http.StatusOK, status)

	suggestion, err := marketplace.Data[marketplace.CategorySuggestion](payload)
	require.NoError(t, err)
	require.Equal(t, 2, suggestion.SuggestedCategory)
	require.Equal(t, []string{"carrot", "vegetable"}, suggestion.MatchedKeywords)
	require.InDelta(t, 90.0, suggestion.Confidence, 0.001)

	status, _ = call(t, h, http.MethodPost, endpoints.SuggestCategory(), seller, marketplace.CategorySuggestionRequest{ProductName: "Organic Carrot"})
	require.Equal(t, http.StatusBadRequest, status)
}

// TestViews ensures tracked views are counted and drive popularity.
func TestViews(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()

	for range 2 {
		status, _ := call(t, h, http.MethodPost, endpoints.TrackView(3), "", nil)
		require.Equal(t, http.StatusOK, status)
	}

	status, _ := call(t, h, http.MethodPost, endpoints.TrackView(99), "", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, payload := call(t, h, http.MethodGet, endpoints.ViewStats(3), "", nil)
	require.Equal(t, http.StatusOK, status)

	stats, err := marketplace.Data[marketplace.ViewStats](payload)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalViews)
	require.Equal(t, "3", stats.ProductID.String())

	status, payload = call(t, h, http.MethodGet, endpoints.PopularProducts(2), "", nil)
	require.Equal(t, http.StatusOK, status)

	popular, err := marketplace.Items[marketplace.Product](payload)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	require.Equal(t, 3, popular[0].ProductID)
	require.Equal(t, 1, popular[1].ProductID)
}

// TestSearchUsers ensures callers never find themselves and only
// administrators find administrators.
func TestSearchUsers(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()
	buyer := login(t, h, "buyer_test", "buyer123")
	admin := login(t, h, "admin_test", "admin123")

	status, _ := call(t, h, http.MethodGet, endpoints.SearchUsers(""), buyer, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, payload := call(t, h, http.MethodGet, endpoints.SearchUsers("test"), buyer, nil)
	require.Equal(t, http.StatusOK, status)

	users, err := marketplace.Items[marketplace.UserSummary](payload)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "seller_test", users[0].Username)

	status, payload = call(t, h, http.MethodGet, endpoints.SearchUsers("admin"), admin, nil)
	require.Equal(t, http.StatusOK, status)

	users, err = marketplace.Items[marketplace.UserSummary](payload)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "support_admin", users[0].Username)
}

// TestConversationAccess ensures only participants and administrators can
// read a conversation, and reading marks messages as read.
func TestConversationAccess(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()
	buyer := login(t, h, "buyer_test", "buyer123")
	seller := login(t, h, "seller_test", "seller123")
	admin := login(t, h, "admin_test", "admin123")

	status, payload := call(t, h, http.MethodPost, endpoints.CreateDispute(), buyer, marketplace.NewDisputeRequest("Late", "Order is late").WithTargetUsername("seller_test").Build())
	require.Equal(t, http.StatusOK, status)

	conversation, err := marketplace.Data[marketplace.Conversation](payload)
	require.NoError(t, err)
	require.Equal(t, marketplace.StatusOpen, conversation.Status)
	require.Equal(t, marketplace.PriorityMedium, conversation.Priority)

	status, _ = call(t, h, http.MethodPost, endpoints.SendMessage(conversation.DisputeID), buyer, marketplace.MessageRequest{Message: "Where is it?"})
	require.Equal(t, http.StatusOK, status)

	status, payload = call(t, h, http.MethodGet, endpoints.UnreadCount(), seller, nil)
	require.Equal(t, http.StatusOK, status)

	unread, err := marketplace.Data[marketplace.UnreadCount](payload)
	require.NoError(t, err)
	require.Equal(t, 2, unread.UnreadCount)

	status, payload = call(t, h, http.MethodGet, endpoints.ConversationMessages(conversation.DisputeID), seller, nil)
	require.Equal(t, http.StatusOK, status)

	messages, err := marketplace.Data[marketplace.ConversationMessages](payload)
	require.NoError(t, err)
	require.Len(t, messages.Messages, 2)
	require.Equal(t, marketplace.MessageTypeSystem, messages.Messages[0].MessageType)

	_, payload = call(t, h, http.MethodGet, endpoints.UnreadCount(), seller, nil)

	unread, err = marketplace.Data[marketplace.UnreadCount](payload)
	require.NoError(t, err)
	require.Zero(t, unread.UnreadCount)

	status, _ = call(t, h, http.MethodGet, endpoints.ConversationMessages(conversation.DisputeID), admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, h, http.MethodGet, endpoints.ConversationMessages(99), buyer, nil)
	require.Equal(t, http.StatusNotFound, status)
}

// TestContactSellerReusesConversation ensures a second inquiry lands in the
// existing open conversation.
func TestContactSellerReusesConversation(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()
	buyer := login(t, h, "buyer_test", "buyer123")

	request := marketplace.ContactSellerRequest{SellerID: 2, InitialMessage: "Hello"}

	_, payload := call(t, h, http.MethodPost, endpoints.ContactSeller(), buyer, request)

	first, err := marketplace.Data[marketplace.ContactSellerResult](payload)
	require.NoError(t, err)
	require.True(t, first.IsNewConversation)

	_, payload = call(t, h, http.MethodPost, endpoints.ContactSeller(), buyer, request)

	second, err := marketplace.Data[marketplace.ContactSellerResult](payload)
	require.NoError(t, err)
	require.False(t, second.IsNewConversation)
	require.Equal(t, first.ConversationID, second.ConversationID)

	status, _ := call(t, h, http.MethodPost, endpoints.ContactSeller(), buyer, marketplace.ContactSellerRequest{})
	require.Equal(t, http.StatusBadRequest, status)
}

// TestReportBalancesAdmins ensures reports go to the least loaded admin and
// resolving the admin conversation releases the load.
func TestReportBalancesAdmins(t *testing.T) {
	t.Parallel()

	h := fake.New().Handler()
	buyer := login(t, h, "buyer_test", "buyer123")
	admin := login(t, h, "admin_test", "admin123")

	_, payload := call(t, h, http.MethodPost, endpoints.CreateDispute(), buyer, marketplace.NewDisputeRequest("Rude", "Seller was rude").WithTargetID(2).Build())

	conversation, err := marketplace.Data[marketplace.Conversation](payload)
	require.NoError(t, err)

	status, payload := report(t, h, buyer, conversation.DisputeID)
	require.Equal(t, http.StatusOK, status)

	first, err := marketplace.Data[marketplace.ReportResult](payload)
	require.NoError(t, err)
	require.Equal(t, 1, first.AssignedAdmin.ID)
	require.Equal(t, marketplace.PriorityHigh, first.AdminConversation.Priority)
	require.Equal(t, []string{"evidence.txt"}, first.Report.Attachments)

	_, payload = report(t, h, buyer, conversation.DisputeID)

	second, err := marketplace.Data[marketplace.ReportResult](payload)
	require.NoError(t, err)
	require.Equal(t, 4, second.AssignedAdmin.ID)

	status, _ = call(t, h, http.MethodGet, endpoints.AdminWorkload(), buyer, nil)
	require.Equal(t, http.StatusFound, status)

	manage := marketplace.ManageRequest{Action: marketplace.ActionResolve}

	status, _ = call(t, h, http.MethodPatch, endpoints.ManageConversation(first.AdminConversation.DisputeID), admin, manage)
	require.Equal(t, http.StatusOK, status)

	status, payload = call(t, h, http.MethodGet, endpoints.AdminWorkload(), admin, nil)
	require.Equal(t, http.StatusOK, status)

	workload, err := marketplace.Items[marketplace.AdminWorkload](payload)
	require.NoError(t, err)
	require.Equal(t, []marketplace.AdminWorkload{
		{AdminID: 1, Username: "admin_test", ActiveReports: 0},
		{AdminID: 4, Username: "support_admin", ActiveReports: 1},
	}, workload)

	status, _ = report(t, h, buyer, 99)
	require.Equal(t, http.StatusNotFound, status)
}

// TestFaults ensures injected faults override routing until cleared.
func TestFaults(t *testing.T) {
	t.Parallel()

	server := fake.New()
	h := server.Handler()

	server.SetFault(http.MethodGet, endpoints.ListProducts(), http.StatusServiceUnavailable)

	status, payload := call(t, h, http.MethodGet, endpoints.ListProducts(), "", nil)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "injected fault", marketplace.StatusMessage(payload))

	server.ClearFaults()

	status, _ = call(t, h, http.MethodGet, endpoints.ListProducts(), "", nil)
	require.Equal(t, http.StatusOK, status)
}

// TestNotFound ensures unknown routes get an enveloped 404.
func TestNotFound(t *testing.T) {
	t.Parallel()

	status, payload := call(t, fake.New().Handler(), http.MethodGet, "/wishlist", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "route not found", marketplace.StatusMessage(payload))
}
