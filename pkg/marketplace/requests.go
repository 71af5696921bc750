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
	"k8s.io/utils/ptr"
)

// Priority of a conversation.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Conversation management actions.
const (
	ActionAssign  = "assign"
	ActionResolve = "resolve"
	ActionClose   = "close"
)

// Credentials log a user in.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CategorySuggestionRequest asks which category a product belongs in.
type CategorySuggestionRequest struct {
	ProductName string `json:"productName,omitempty"`
	Description string `json:"description,omitempty"`
}

// ImageRequest asks for a generated image, or a set of candidates.
type ImageRequest struct {
	ProductName string  `json:"productName"`
	Category    *string `json:"category,omitempty"`
	Count       *int    `json:"count,omitempty"`
}

// ImageRequestBuilder builds image requests.
type ImageRequestBuilder struct {
	request ImageRequest
}

// NewImageRequest creates a builder for the named product.
func NewImageRequest(productName string) *ImageRequestBuilder {
	return &ImageRequestBuilder{
		request: ImageRequest{
			ProductName: productName,
		},
	}
}

// WithCategory sets the category used to refine the image search.
func (b *ImageRequestBuilder) WithCategory(category string) *ImageRequestBuilder {
	b.request.Category = ptr.To(category)
	return b
}

// WithCount sets how many candidates to return.
func (b *ImageRequestBuilder) WithCount(count int) *ImageRequestBuilder {
	b.request.Count = ptr.To(count)
	return b
}

func (b *ImageRequestBuilder) Build() ImageRequest {
	return b.request
}

// DisputeRequest opens a conversation with another user.
type DisputeRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	TargetUsername *string `json:"targetUsername,omitempty"`
	LodgedAgainst  *int    `json:"lodgedAgainst,omitempty"`
	Priority       *string `json:"priority,omitempty"`
}

// DisputeRequestBuilder builds dispute requests.
type DisputeRequestBuilder struct {
	request DisputeRequest
}

// NewDisputeRequest creates a builder, a target must be set before use.
func NewDisputeRequest(title, description string) *DisputeRequestBuilder {
	return &DisputeRequestBuilder{
		request: DisputeRequest{
			Title:       title,
			Description: description,
		},
	}
}

// WithTargetUsername targets a user by name.
func (b *DisputeRequestBuilder) WithTargetUsername(username string) *DisputeRequestBuilder {
	b.request.TargetUsername = ptr.To(username)
	b.request.LodgedAgainst = nil

	return b
}

// WithTargetID targets a user by ID.
func (b *DisputeRequestBuilder) WithTargetID(userID int) *DisputeRequestBuilder {
	b.request.LodgedAgainst = ptr.To(userID)
	b.request.TargetUsername = nil

	return b
}

// WithPriority sets the priority, the server defaults to medium.
func (b *DisputeRequestBuilder) WithPriority(priority string) *DisputeRequestBuilder {
	b.request.Priority = ptr.To(priority)
	return b
}

func (b *DisputeRequestBuilder) Build() DisputeRequest {
	return b.request
}

// MessageRequest sends a message to a conversation.
type MessageRequest struct {
	Message     string  `json:"message"`
	MessageType *string `json:"messageType,omitempty"`
}

// Conversation statuses.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// ManageRequest is an administrative action on a conversation.  Any
// admin note is appended to the conversation whatever the action.
type ManageRequest struct {
	Action    string  `json:"action"`
	Status    *string `json:"status,omitempty"`
	HandledBy *int    `json:"handledBy,omitempty"`
	AdminNote *string `json:"adminNote,omitempty"`
}

// ContactSellerRequest opens, or reopens, a conversation with a seller.
type ContactSellerRequest struct {
	SellerID       int    `json:"sellerId"`
	ProductID      *int   `json:"productId,omitempty"`
	InitialMessage string `json:"initialMessage,omitempty"`
}

// ContactAdminRequest opens a support conversation.
type ContactAdminRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ReportRequest reports a conversation, it is sent as a multipart form
// so attachments may accompany it.
type ReportRequest struct {
	ConversationID int    `json:"conversationId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
}

// AttachmentField is the form field report attachments are sent in.
const AttachmentField = "attachments"
