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
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing required field")
)

// User role names as reported by the API.
const (
	UserAuthSuperAdmin = "SuperAdmin"
	UserAuthAdmin      = "Admin"
	UserAuthSeller     = "Seller"
	UserAuthUser       = "User"
)

// Message types.
const (
	MessageTypeMessage   = "message"
	MessageTypeSystem    = "system"
	MessageTypeAdminNote = "admin_note"
)

// Session is returned by a successful login.
type Session struct {
	Token    string `json:"token"`
	UserAuth string `json:"userAuth"`

	// Older servers report the user as userID, newer ones as id.
	UserIDLegacy int `json:"userID,omitempty"`
	UserID       int `json:"id,omitempty"`
}

func (s *Session) Validate() error {
	if s.Token == "" {
		return fmt.Errorf("%w: token", ErrMissingField)
	}

	return nil
}

// ID returns the user ID whichever field it was reported in.
func (s *Session) ID() int {
	if s.UserID != 0 {
		return s.UserID
	}

	return s.UserIDLegacy
}

// Profile describes the logged in user.
type Profile struct {
	UserID    int    `json:"UserID"`
	Username  string `json:"Username"`
	Email     string `json:"Email"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	ContactNo string `json:"ContactNo"`
	UserAuth  string `json:"UserAuth"`
}

// Product is a catalog entry.
type Product struct {
	ProductID    int      `json:"ProductID"`
	UserID       int      `json:"UserID"`
	ProductName  string   `json:"ProductName"`
	PromoActive  bool     `json:"PromoActive"`
	Price        float64  `json:"Price"`
	DiscPrice    *float64 `json:"DiscPrice"`
	MOQ          int      `json:"MOQ"`
	AvailableQty int      `json:"AvailableQty"`
	Description  string   `json:"Description"`
	ProdStatus   string   `json:"ProdStatus"`
	CategoryID   int      `json:"CategoryID"`
	ProductImage string   `json:"ProductImage,omitempty"`

	// Seller is only populated when fetching a single product.
	Seller *UserSummary `json:"Seller,omitempty"`
}

func (p *Product) Validate() error {
	if p.ProductID == 0 {
		return fmt.Errorf("%w: ProductID", ErrMissingField)
	}

	return nil
}

// Category is a product category.
type Category struct {
	CategoryID    int    `json:"CategoryID"`
	CategoryName  string `json:"CategoryName"`
	CategoryImage string `json:"CategoryImage,omitempty"`
}

// CategorySuggestion is the AI verdict on where a product belongs.
type CategorySuggestion struct {
	SuggestedCategory int      `json:"suggestedCategory"`
	CategoryName      string   `json:"categoryName"`
	Confidence        float64  `json:"confidence"`
	Reason            string   `json:"reason"`
	MatchedKeywords   []string `json:"matchedKeywords"`
}

func (s *CategorySuggestion) Validate() error {
	if s.SuggestedCategory == 0 {
		return fmt.Errorf("%w: suggestedCategory", ErrMissingField)
	}

	return nil
}

// CategoryInfo describes a category and the keywords used to detect it.
type CategoryInfo struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// ImageInfo credits the source of a generated image.
type ImageInfo struct {
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographerUrl"`
	Source          string `json:"source"`
	Note            string `json:"note"`
	Error           string `json:"error,omitempty"`
}

// GeneratedImage is the result of AI image generation.
type GeneratedImage struct {
	ImagePath string    `json:"imagePath"`
	ImageInfo ImageInfo `json:"imageInfo"`
}

func (i *GeneratedImage) Validate() error {
	if i.ImagePath == "" {
		return fmt.Errorf("%w: imagePath", ErrMissingField)
	}

	return nil
}

// ImageOption is one candidate image for a product.
type ImageOption struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	RegularURL      string `json:"regularUrl"`
	Description     string `json:"description"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographerUrl"`
}

// ViewStats are view counters for a product.
type ViewStats struct {
	TotalViews  int `json:"totalViews"`
	RecentViews int `json:"recentViews"`

	// ProductID is echoed from the path, so may be a string or a number.
	ProductID json.Number `json:"productId"`
}

// UserSummary is a user as embedded in other resources.
type UserSummary struct {
	UserID    int    `json:"UserID"`
	Username  string `json:"Username"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	UserAuth  string `json:"UserAuth"`
}

// IsAdmin is true for administrative users.
func (u UserSummary) IsAdmin() bool {
	return u.UserAuth == UserAuthAdmin || u.UserAuth == UserAuthSuperAdmin
}

// Conversation is a dispute thread between users.
type Conversation struct {
	DisputeID     int          `json:"DisputeID"`
	Title         string       `json:"Title"`
	Description   string       `json:"Description"`
	LodgedBy      int          `json:"LodgedBy"`
	LodgedAgainst int          `json:"LodgedAgainst"`
	HandledBy     *int         `json:"HandledBy"`
	Priority      string       `json:"Priority,omitempty"`
	Status        string       `json:"Status"`
	IsResolved    bool         `json:"IsResolved"`
	Complainant   *UserSummary `json:"Complainant,omitempty"`
	Respondent    *UserSummary `json:"Respondent,omitempty"`
}

func (c *Conversation) Validate() error {
	if c.DisputeID == 0 {
		return fmt.Errorf("%w: DisputeID", ErrMissingField)
	}

	return nil
}

// Message is a single message in a conversation.
type Message struct {
	MessageID   int          `json:"MessageID"`
	DisputeID   int          `json:"DisputeID"`
	SentBy      int          `json:"SentBy"`
	Message     string       `json:"Message"`
	MessageType string       `json:"MessageType"`
	IsRead      bool         `json:"IsRead"`
	User        *UserSummary `json:"USER,omitempty"`
}

// ConversationMessages is a conversation with its messages.
type ConversationMessages struct {
	Dispute  Conversation `json:"dispute"`
	Messages []Message    `json:"messages"`
}

// UnreadCount is the number of unread messages for the user.
type UnreadCount struct {
	UnreadCount int `json:"unreadCount"`
}

// Contact describes the other party of a new conversation.
type Contact struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// ContactSellerResult is returned when a buyer contacts a seller.
type ContactSellerResult struct {
	ConversationID    int      `json:"conversationId"`
	IsNewConversation bool     `json:"isNewConversation"`
	Seller            *Contact `json:"seller,omitempty"`
}

func (r *ContactSellerResult) Validate() error {
	if r.ConversationID == 0 {
		return fmt.Errorf("%w: conversationId", ErrMissingField)
	}

	return nil
}

// ContactAdminResult is returned when a user opens a support conversation.
type ContactAdminResult struct {
	ConversationID int      `json:"conversationId"`
	AssignedAdmin  *Contact `json:"assignedAdmin"`
}

func (r *ContactAdminResult) Validate() error {
	if r.ConversationID == 0 {
		return fmt.Errorf("%w: conversationId", ErrMissingField)
	}

	if r.AssignedAdmin == nil {
		return fmt.Errorf("%w: assignedAdmin", ErrMissingField)
	}

	return nil
}

// Report is a conversation reported to the administrators.
type Report struct {
	ReportID            int      `json:"ReportID"`
	ConversationID      int      `json:"ConversationID"`
	Title               string   `json:"Title"`
	Description         string   `json:"Description"`
	AssignedAdminID     int      `json:"AssignedAdminID"`
	AdminConversationID int      `json:"AdminConversationID"`
	Attachments         []string `json:"Attachments,omitempty"`
}

// ReportResult is returned when a conversation is reported.
type ReportResult struct {
	Report            Report       `json:"report"`
	AdminConversation Conversation `json:"adminConversation"`
	AssignedAdmin     *Contact     `json:"assignedAdmin"`
}

func (r *ReportResult) Validate() error {
	if r.AdminConversation.DisputeID == 0 {
		return fmt.Errorf("%w: adminConversation.DisputeID", ErrMissingField)
	}

	if r.AssignedAdmin == nil {
		return fmt.Errorf("%w: assignedAdmin", ErrMissingField)
	}

	return nil
}

// AdminWorkload is the report load carried by one administrator.
type AdminWorkload struct {
	AdminID       int    `json:"adminId"`
	Username      string `json:"username"`
	ActiveReports int    `json:"activeReports"`
}
