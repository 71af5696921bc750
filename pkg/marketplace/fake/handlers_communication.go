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
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"k8s.io/utils/ptr"

	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

const maxSearchResults = 10

// maxAttachmentMemory bounds multipart parsing of report attachments.
const maxAttachmentMemory = 10 << 20

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("username"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "Username search term is required")
		return
	}

	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	users := []marketplace.UserSummary{}

	for _, candidate := range s.store.users {
		if candidate.UserID == u.UserID || !strings.Contains(strings.ToLower(candidate.Username), strings.ToLower(term)) {
			continue
		}

		// Only administrators may find other administrators.
		if candidate.isAdmin() && !u.isAdmin() {
			continue
		}

		users = append(users, candidate.summary())

		if len(users) == maxSearchResults {
			break
		}
	}

	writeJSON(w, http.StatusOK, "Users found successfully", users)
}

func (s *Server) createDispute(w http.ResponseWriter, r *http.Request) {
	var request marketplace.DisputeRequest
	if !decode(r, &request) || request.Title == "" || request.Description == "" || (request.TargetUsername == nil && request.LodgedAgainst == nil) {
		writeError(w, http.StatusBadRequest, "Title, description, and target user (ID or username) are required")
		return
	}

	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	var target *User

	if request.TargetUsername != nil {
		if target = s.store.userByName(*request.TargetUsername); target == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("User with username '%s' not found", *request.TargetUsername))
			return
		}
	} else if target = s.store.userByID(*request.LodgedAgainst); target == nil {
		writeError(w, http.StatusNotFound, "Target user not found")
		return
	}

	dispute := s.store.createDispute(marketplace.Conversation{
		Title:         request.Title,
		Description:   request.Description,
		LodgedBy:      u.UserID,
		LodgedAgainst: target.UserID,
		Priority:      ptr.Deref(request.Priority, marketplace.PriorityMedium),
	})

	s.store.addMessage(dispute.DisputeID, u, fmt.Sprintf("Conversation started with %s %s (@%s)", target.FirstName, target.LastName, target.Username), marketplace.MessageTypeSystem)

	writeJSON(w, http.StatusOK, "Communication thread created successfully", dispute)
}

func (s *Server) myConversations(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	conversations := []marketplace.Conversation{}

	for _, d := range s.store.disputes {
		if !participant(d, u) {
			continue
		}

		conversation := *d

		if complainant := s.store.userByID(d.LodgedBy); complainant != nil {
			conversation.Complainant = ptr.To(complainant.summary())
		}

		if respondent := s.store.userByID(d.LodgedAgainst); respondent != nil {
			conversation.Respondent = ptr.To(respondent.summary())
		}

		conversations = append(conversations, conversation)
	}

	writeJSON(w, http.StatusOK, "Conversations retrieved successfully", conversations)
}

// conversation resolves the path's conversation and checks the caller
// may see it, writing an error response if not.
func (s *Server) conversation(w http.ResponseWriter, r *http.Request, u *User) *marketplace.Conversation {
	id, _ := intParam(r, "disputeId")

	d := s.store.dispute(id)
	if d == nil {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return nil
	}

	if !participant(d, u) && !u.isAdmin() {
		writeError(w, http.StatusForbidden, "Access denied to this conversation")
		return nil
	}

	return d
}

func (s *Server) conversationMessages(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	d := s.conversation(w, r, u)
	if d == nil {
		return
	}

	// Reading marks everything sent by others as read.
	for _, m := range s.store.messages {
		if m.DisputeID == d.DisputeID && m.SentBy != u.UserID {
			m.IsRead = true
		}
	}

	messages := marketplace.ConversationMessages{
		Dispute:  *d,
		Messages: s.store.messagesFor(d.DisputeID),
	}

	writeJSON(w, http.StatusOK, "Messages retrieved successfully", messages)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var request marketplace.MessageRequest
	if !decode(r, &request) || strings.TrimSpace(request.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message content is required")
		return
	}

	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	d := s.conversation(w, r, u)
	if d == nil {
		return
	}

	m := *s.store.addMessage(d.DisputeID, u, request.Message, ptr.Deref(request.MessageType, marketplace.MessageTypeMessage))
	m.User = ptr.To(u.summary())

	writeJSON(w, http.StatusOK, "Message sent successfully", m)
}

func (s *Server) manageConversation(w http.ResponseWriter, r *http.Request) {
	var request marketplace.ManageRequest
	if !decode(r, &request) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u := currentUser(r)
	id, _ := intParam(r, "disputeId")

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	d := s.store.dispute(id)
	if d == nil {
		writeError(w, http.StatusNotFound, "Dispute not found")
		return
	}

	switch {
	case request.Action == marketplace.ActionAssign && request.HandledBy != nil:
		d.HandledBy = ptr.To(*request.HandledBy)
		d.Status = marketplace.StatusInProgress
	case request.Action == marketplace.ActionResolve:
		d.Status = marketplace.StatusResolved
		d.IsResolved = true
	case request.Action == marketplace.ActionClose:
		d.Status = marketplace.StatusClosed
		d.IsResolved = true
	case request.Status != nil:
		d.Status = *request.Status
	}

	if d.IsResolved {
		for _, entry := range s.store.reports {
			if entry.AdminConversationID == d.DisputeID {
				entry.resolved = true
			}
		}
	}

	if note := ptr.Deref(request.AdminNote, ""); note != "" {
		s.store.addMessage(d.DisputeID, u, note, marketplace.MessageTypeAdminNote)
	}

	writeJSON(w, http.StatusOK, "Dispute updated successfully", d)
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	var count int

	for _, m := range s.store.messages {
		if m.IsRead || m.SentBy == u.UserID {
			continue
		}

		if d := s.store.dispute(m.DisputeID); d != nil && participant(d, u) {
			count++
		}
	}

	writeJSON(w, http.StatusOK, "Unread count retrieved successfully", marketplace.UnreadCount{UnreadCount: count})
}

// contactSeller reuses an open conversation between the buyer and seller
// where one exists.
func (s *Server) contactSeller(w http.ResponseWriter, r *http.Request) {
	var request marketplace.ContactSellerRequest
	if !decode(r, &request) || request.SellerID == 0 {
		writeError(w, http.StatusBadRequest, "Seller ID is required")
		return
	}

	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	seller := s.store.userByID(request.SellerID)
	if seller == nil || seller.UserAuth != marketplace.UserAuthSeller {
		writeError(w, http.StatusNotFound, "Seller not found")
		return
	}

	if seller.UserID == u.UserID {
		writeError(w, http.StatusBadRequest, "You cannot contact yourself")
		return
	}

	var (
		dispute *marketplace.Conversation
		isNew   bool
	)

	for _, d := range s.store.disputes {
		if d.LodgedBy == u.UserID && d.LodgedAgainst == seller.UserID && !d.IsResolved {
			dispute = d
			break
		}
	}

	if dispute == nil {
		title := "Inquiry with " + seller.Username

		if request.ProductID != nil {
			if product, ok := s.store.product(*request.ProductID); ok {
				title = "Inquiry about " + product.ProductName
			}
		}

		dispute = s.store.createDispute(marketplace.Conversation{
			Title:         title,
			Description:   "Buyer inquiry",
			LodgedBy:      u.UserID,
			LodgedAgainst: seller.UserID,
		})
		isNew = true

		s.store.addMessage(dispute.DisputeID, u, fmt.Sprintf("Conversation started with %s %s (@%s)", seller.FirstName, seller.LastName, seller.Username), marketplace.MessageTypeSystem)
	}

	if request.InitialMessage != "" {
		s.store.addMessage(dispute.DisputeID, u, request.InitialMessage, marketplace.MessageTypeMessage)
	}

	result := marketplace.ContactSellerResult{
		ConversationID:    dispute.DisputeID,
		IsNewConversation: isNew,
		Seller: &marketplace.Contact{
			ID:       seller.UserID,
			Username: seller.Username,
			Name:     seller.FirstName + " " + seller.LastName,
		},
	}

	writeJSON(w, http.StatusOK, "Conversation ready", result)
}

func (s *Server) contactAdmin(w http.ResponseWriter, r *http.Request) {
	var request marketplace.ContactAdminRequest
	if !decode(r, &request) || request.Subject == "" || request.Message == "" {
		writeError(w, http.StatusBadRequest, "Subject and message are required")
		return
	}

	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	admin := s.store.leastLoadedAdmin()
	if admin == nil {
		writeError(w, http.StatusServiceUnavailable, "No administrators available")
		return
	}

	dispute := s.store.createDispute(marketplace.Conversation{
		Title:         request.Subject,
		Description:   request.Message,
		LodgedBy:      u.UserID,
		LodgedAgainst: admin.UserID,
		HandledBy:     ptr.To(admin.UserID),
	})

	s.store.addMessage(dispute.DisputeID, u, request.Message, marketplace.MessageTypeMessage)

	result := marketplace.ContactAdminResult{
		ConversationID: dispute.DisputeID,
		AssignedAdmin: &marketplace.Contact{
			ID:       admin.UserID,
			Username: admin.Username,
		},
	}

	writeJSON(w, http.StatusOK, "Admin conversation created successfully", result)
}

func (s *Server) reportConversation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAttachmentMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Report must be submitted as a multipart form")
		return
	}

	conversationID, err := strconv.Atoi(r.FormValue("conversationId"))
	title := r.FormValue("title")
	description := r.FormValue("description")

	if err != nil || title == "" || description == "" {
		writeError(w, http.StatusBadRequest, "Conversation ID, title and description are required")
		return
	}

	var attachments []string

	for _, header := range r.MultipartForm.File[marketplace.AttachmentField] {
		attachments = append(attachments, header.Filename)
	}

	u := currentUser(r)

	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	reported := s.store.dispute(conversationID)
	if reported == nil || !participant(reported, u) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	admin := s.store.leastLoadedAdmin()
	if admin == nil {
		writeError(w, http.StatusServiceUnavailable, "No administrators available")
		return
	}

	adminConversation := s.store.createDispute(marketplace.Conversation{
		Title:         "Report: " + title,
		Description:   description,
		LodgedBy:      u.UserID,
		LodgedAgainst: admin.UserID,
		HandledBy:     ptr.To(admin.UserID),
		Priority:      marketplace.PriorityHigh,
	})

	s.store.addMessage(adminConversation.DisputeID, u, fmt.Sprintf("Reported conversation #%d: %s", reported.DisputeID, description), marketplace.MessageTypeSystem)

	entry := &report{
		Report: marketplace.Report{
			ReportID:            len(s.store.reports) + 1,
			ConversationID:      reported.DisputeID,
			Title:               title,
			Description:         description,
			AssignedAdminID:     admin.UserID,
			AdminConversationID: adminConversation.DisputeID,
			Attachments:         attachments,
		},
	}

	s.store.reports = append(s.store.reports, entry)

	result := marketplace.ReportResult{
		Report:            entry.Report,
		AdminConversation: *adminConversation,
		AssignedAdmin: &marketplace.Contact{
			ID:       admin.UserID,
			Username: admin.Username,
		},
	}

	writeJSON(w, http.StatusOK, "Report submitted successfully", result)
}

func (s *Server) adminWorkload(w http.ResponseWriter, r *http.Request) {
	s.store.lock.Lock()
	defer s.store.lock.Unlock()

	workload := []marketplace.AdminWorkload{}

	for _, u := range s.store.users {
		if u.isAdmin() {
			workload = append(workload, marketplace.AdminWorkload{
				AdminID:       u.UserID,
				Username:      u.Username,
				ActiveReports: s.store.activeReports(u.UserID),
			})
		}
	}

	writeJSON(w, http.StatusOK, "Admin workload retrieved successfully", workload)
}
